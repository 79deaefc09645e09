package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/event-seat-booking/internal/model"
)

const allocationQueueName = "allocation.confirmed"

// Publisher emits domain events to RabbitMQ.  Errors are logged and
// returned so callers can ignore failures without interrupting the
// main request flow; event delivery never gates a durable outcome.
type Publisher struct {
	url string
}

// NewPublisher returns a Publisher that dials the given AMQP URL per
// publish.  Connection churn is acceptable at confirmation volume; a
// pooled channel would be the first change if that assumption breaks.
func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

// PublishAllocationConfirmed publishes an AllocationConfirmedEvent to
// the durable "allocation.confirmed" queue.  Messages are marked
// persistent so they survive broker restarts.
func (p *Publisher) PublishAllocationConfirmed(ctx context.Context, a *model.Allocation) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent).
	if _, err := ch.QueueDeclare(allocationQueueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	ev := AllocationConfirmedEvent{
		AllocationID: a.ID,
		HoldID:       a.HoldID,
		SeatKey:      a.SeatKey,
		ClaimantID:   a.ClaimantID,
		PaymentRef:   a.PaymentRef,
		ConfirmedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", allocationQueueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
