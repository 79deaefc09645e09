package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iliyamo/event-seat-booking/internal/lock"
	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/repository"
)

// fakeClock is a settable clock so expiry can be simulated without
// sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// fakeLocker implements lock.Locker with the same semantics as the
// Redis implementation: atomic acquire, compare-and-delete release.
type fakeLocker struct {
	mu   sync.Mutex
	held map[string]string
	seq  int
}

func newFakeLocker() *fakeLocker { return &fakeLocker{held: map[string]string{}} }

func (l *fakeLocker) Acquire(_ context.Context, key string, _ time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return "", lock.ErrBusy
	}
	l.seq++
	token := fmt.Sprintf("tok-%d", l.seq)
	l.held[key] = token
	return token, nil
}

func (l *fakeLocker) Release(_ context.Context, key, token string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		return true, nil
	}
	return false, nil
}

func (l *fakeLocker) heldCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}

// memStore is an in-memory implementation of SeatStore, HoldStore and
// AllocationStore with the same conditional-write semantics as the
// MySQL repositories: transitions compare against the expected prior
// status under one mutex and report repository.ErrConflict on a miss.
type memStore struct {
	mu     sync.Mutex
	seats  map[string]*model.Seat
	holds  map[string]*model.Hold
	allocs map[string]*model.Allocation

	createErr        error // injected CreatePending failure
	confirmConflicts int   // force the next n ConfirmHold calls to conflict
}

func newMemStore(seatKeys ...string) *memStore {
	s := &memStore{
		seats:  map[string]*model.Seat{},
		holds:  map[string]*model.Hold{},
		allocs: map[string]*model.Allocation{},
	}
	for _, key := range seatKeys {
		s.seats[key] = &model.Seat{SeatKey: key, Status: model.SeatAvailable}
	}
	return s
}

func (s *memStore) GetByKey(_ context.Context, seatKey string) (*model.Seat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seat, ok := s.seats[seatKey]
	if !ok {
		return nil, repository.ErrSeatNotFound
	}
	cp := *seat
	return &cp, nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*model.Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.holds[id]
	if !ok {
		return nil, repository.ErrHoldNotFound
	}
	cp := *h
	return &cp, nil
}

func (s *memStore) PendingBySeat(_ context.Context, seatKey string) (*model.Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.holds {
		if h.SeatKey == seatKey && h.Status == model.HoldPending {
			cp := *h
			return &cp, nil
		}
	}
	return nil, repository.ErrHoldNotFound
}

func (s *memStore) CreatePending(_ context.Context, h *model.Hold) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	seat, ok := s.seats[h.SeatKey]
	if !ok || seat.Status == model.SeatAllocated {
		return repository.ErrConflict
	}
	cp := *h
	s.holds[h.ID] = &cp
	seat.Status = model.SeatHeld
	return nil
}

func (s *memStore) MarkExpired(_ context.Context, holdID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.holds[holdID]
	if !ok || h.Status != model.HoldPending {
		return repository.ErrConflict
	}
	h.Status = model.HoldExpired
	if seat, ok := s.seats[h.SeatKey]; ok && seat.Status == model.SeatHeld {
		seat.Status = model.SeatAvailable
	}
	return nil
}

func (s *memStore) ListExpiredPending(_ context.Context, now time.Time, limit int) ([]model.Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Hold
	for _, h := range s.holds {
		if h.Status == model.HoldPending && !h.ExpiresAt.After(now) {
			out = append(out, *h)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *memStore) ConfirmHold(_ context.Context, a *model.Allocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmConflicts > 0 {
		s.confirmConflicts--
		return repository.ErrConflict
	}
	h, ok := s.holds[a.HoldID]
	if !ok || h.Status != model.HoldPending {
		return repository.ErrConflict
	}
	seat, ok := s.seats[a.SeatKey]
	if !ok || seat.Status != model.SeatHeld {
		return repository.ErrConflict
	}
	h.Status = model.HoldConfirmed
	cp := *a
	cp.Status = model.AllocationConfirmed
	s.allocs[a.ID] = &cp
	seat.Status = model.SeatAllocated
	a.Status = model.AllocationConfirmed
	return nil
}

func (s *memStore) setSeatStatus(seatKey string, status model.SeatStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seats[seatKey].Status = status
}

func (s *memStore) seatStatus(seatKey string) model.SeatStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seats[seatKey].Status
}

func (s *memStore) holdStatus(holdID string) model.HoldStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holds[holdID].Status
}

func (s *memStore) holdCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.holds)
}

func (s *memStore) allocationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.allocs)
}

// fakePublisher records confirmed allocations and can simulate broker
// failures.
type fakePublisher struct {
	mu        sync.Mutex
	published []model.Allocation
	err       error
}

func (p *fakePublisher) PublishAllocationConfirmed(_ context.Context, a *model.Allocation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, *a)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}
