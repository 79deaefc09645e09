package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/repository"
	"github.com/iliyamo/event-seat-booking/internal/service"
)

const paymentQueueName = "payment.outcome"

// PaymentProcessor is the slice of the confirmation coordinator the
// consumer needs.  Implemented by service.ConfirmationService.
type PaymentProcessor interface {
	Confirm(ctx context.Context, holdID, paymentRef string) (*model.Allocation, error)
	Reject(ctx context.Context, holdID string) error
}

// StartPaymentConsumer connects to RabbitMQ, declares the durable
// payment.outcome queue and consumes outcome events until ctx is
// cancelled.  Delivery is at-least-once: duplicates and late arrivals
// resolve to staleness outcomes inside the coordinator and are
// acknowledged as handled.  The function runs a reconnect loop with
// exponential backoff; start it in its own goroutine.
func StartPaymentConsumer(ctx context.Context, url string, processor PaymentProcessor) {
	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			log.Println("payment-consumer: stopped")
			return
		default:
		}

		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("payment-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			select {
			case <-ctx.Done():
				log.Println("payment-consumer: stopped")
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(ctx, conn, processor); err != nil {
			log.Printf("payment-consumer: consume loop ended: %v; reconnecting", err)
			select {
			case <-ctx.Done():
				log.Println("payment-consumer: stopped")
				return
			case <-time.After(2 * time.Second):
			}
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, processor PaymentProcessor) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("payment-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(paymentQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(paymentQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			requeue, err := handleOutcome(d.Body, processor)
			if err != nil {
				log.Printf("payment-consumer: handle outcome failed: %v (requeue=%t)", err, requeue)
				_ = d.Nack(false, requeue)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// handleOutcome applies one payment outcome.  The returned bool says
// whether a failing message should be requeued: malformed payloads are
// poison and must not loop, infrastructure failures are transient and
// deserve redelivery.
func handleOutcome(body []byte, processor PaymentProcessor) (bool, error) {
	var ev PaymentOutcomeEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return false, fmt.Errorf("unmarshal: %w", err)
	}
	if ev.ReservationID == "" {
		return false, errors.New("missing reservation_id")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch ev.Outcome {
	case OutcomeSuccess:
		_, err := processor.Confirm(ctx, ev.ReservationID, ev.PaymentRef)
		if err != nil && !definitive(err) {
			return true, fmt.Errorf("confirm %s: %w", ev.ReservationID, err)
		}
		if err != nil {
			// Stale or duplicate delivery: the hold already resolved or
			// expired.  Definitive, acknowledge and move on.
			log.Printf("payment-consumer: success for %s resolved as: %v", ev.ReservationID, err)
		}
		return false, nil
	case OutcomeFailure:
		err := processor.Reject(ctx, ev.ReservationID)
		if err != nil && !definitive(err) {
			return true, fmt.Errorf("reject %s: %w", ev.ReservationID, err)
		}
		return false, nil
	default:
		return false, fmt.Errorf("unknown outcome %q", ev.Outcome)
	}
}

// definitive reports whether the error is a final, non-retryable
// outcome for an at-least-once delivery.
func definitive(err error) bool {
	return errors.Is(err, service.ErrHoldAlreadyResolved) ||
		errors.Is(err, service.ErrHoldExpired) ||
		errors.Is(err, repository.ErrHoldNotFound)
}
