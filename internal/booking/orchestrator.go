// Package booking drives seat selections through their lifecycle: holding
// seats, promoting paid holds to tickets, and releasing or cancelling them.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/metinatakli/cinema-booking-core/internal/clock"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
	"github.com/metinatakli/cinema-booking-core/internal/lock"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	defaultHoldTTL    = 10 * time.Minute
	defaultLockExpiry = 5 * time.Second
	defaultLockWait   = time.Second
	defaultCurrency   = "usd"
	defaultMaxSeats   = 10
)

type Deps struct {
	Locker          domain.Locker
	Holds           domain.HoldStore
	Seats           domain.SeatRepository
	Tickets         domain.TicketRepository
	Payments        domain.PaymentRepository
	Reconciliations domain.ReconciliationRepository
	Provider        domain.PaymentProvider
	Publisher       domain.EventPublisher
	Notifier        domain.Notifier
	Clock           clock.Clock
	Logger          *slog.Logger
	// MeterProvider defaults to the global provider.
	MeterProvider metric.MeterProvider
}

type Orchestrator struct {
	locker          domain.Locker
	holds           domain.HoldStore
	seats           domain.SeatRepository
	tickets         domain.TicketRepository
	payments        domain.PaymentRepository
	reconciliations domain.ReconciliationRepository
	provider        domain.PaymentProvider
	publisher       domain.EventPublisher
	notifier        domain.Notifier
	clock           clock.Clock
	logger          *slog.Logger
	metrics         metrics

	holdTTL    time.Duration
	lockExpiry time.Duration
	lockWait   time.Duration
	currency   string
	maxSeats   int
}

type Option func(*Orchestrator)

func WithHoldTTL(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.holdTTL = d
		}
	}
}

// WithLockExpiry bounds how long a crashed caller can keep seats locked.
func WithLockExpiry(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.lockExpiry = d
		}
	}
}

func WithLockWait(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.lockWait = d
		}
	}
}

func WithCurrency(currency string) Option {
	return func(o *Orchestrator) {
		if currency != "" {
			o.currency = currency
		}
	}
}

func WithMaxSeats(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxSeats = n
		}
	}
}

func New(deps Deps, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		locker:          deps.Locker,
		holds:           deps.Holds,
		seats:           deps.Seats,
		tickets:         deps.Tickets,
		payments:        deps.Payments,
		reconciliations: deps.Reconciliations,
		provider:        deps.Provider,
		publisher:       deps.Publisher,
		notifier:        deps.Notifier,
		clock:           deps.Clock,
		logger:          deps.Logger,
		holdTTL:         defaultHoldTTL,
		lockExpiry:      defaultLockExpiry,
		lockWait:        defaultLockWait,
		currency:        defaultCurrency,
		maxSeats:        defaultMaxSeats,
	}

	if o.clock == nil {
		o.clock = clock.Real{}
	}

	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	meterProvider := deps.MeterProvider
	if meterProvider == nil {
		meterProvider = otel.GetMeterProvider()
	}
	o.metrics = newMetrics(meterProvider)

	for _, opt := range opts {
		opt(o)
	}

	return o
}

func (o *Orchestrator) HoldTTL() time.Duration {
	return o.holdTTL
}

// lockSeats takes every seat lock of the selection or none of them. A timeout
// is reported as contention, which callers may retry.
func (o *Orchestrator) lockSeats(ctx context.Context, showtimeID int, seatIDs []int) (lock.Locks, error) {
	locks, err := lock.AcquireAll(ctx, o.locker, lock.SeatKeys(showtimeID, seatIDs), o.lockExpiry, o.lockWait)
	if err != nil {
		if errors.Is(err, domain.ErrLockTimeout) {
			o.metrics.lockContention.Add(ctx, 1)
			return nil, fmt.Errorf("%w: %w", domain.ErrSeatContended, err)
		}

		return nil, err
	}

	return locks, nil
}

func (o *Orchestrator) unlock(ctx context.Context, locks lock.Locks) {
	if err := locks.Release(context.WithoutCancel(ctx)); err != nil {
		// the locks lapse on their own after lockExpiry
		o.logger.WarnContext(ctx, "failed to release seat locks", "error", err)
	}
}

// unavailableSeats must run under the seat locks. Any store failure is
// returned as-is so the caller rejects the request instead of assuming the
// seats are free.
func (o *Orchestrator) unavailableSeats(ctx context.Context, showtimeID int, seatIDs []int) ([]int, error) {
	booked, err := o.tickets.BookedSeatIDs(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	var unavailable []int

	for _, seatID := range seatIDs {
		if slices.Contains(booked, seatID) {
			unavailable = append(unavailable, seatID)
			continue
		}

		claim, err := o.holds.Claim(ctx, showtimeID, seatID)
		if err != nil {
			return nil, err
		}

		if claim != nil {
			unavailable = append(unavailable, seatID)
		}
	}

	return unavailable, nil
}

// resolveSeats loads the requested seats and rejects ids that are not part of
// the showtime's hall.
func (o *Orchestrator) resolveSeats(ctx context.Context, showtimeID int, seatIDs []int) (*domain.ShowtimeSeats, error) {
	showtimeSeats, err := o.seats.GetSeatsByShowtimeAndSeatIds(ctx, showtimeID, seatIDs)
	if err != nil {
		return nil, err
	}

	if len(showtimeSeats.Seats) != len(seatIDs) {
		return nil, domain.ErrUnknownSeat
	}

	return showtimeSeats, nil
}

func (o *Orchestrator) publish(ctx context.Context, eventType domain.EventType, key string, payload any) {
	event := domain.Event{
		Type:       eventType,
		Key:        key,
		OccurredAt: o.clock.Now(),
		Payload:    payload,
	}

	if err := o.publisher.Publish(ctx, event); err != nil {
		o.logger.WarnContext(ctx, "failed to publish event", "type", eventType, "key", key, "error", err)
	}
}

func (o *Orchestrator) notify(ctx context.Context, n domain.Notification) {
	if o.notifier == nil {
		return
	}

	if err := o.notifier.Notify(ctx, n); err != nil {
		o.logger.WarnContext(ctx, "failed to send notification", "kind", n.Kind, "holdId", n.HoldID, "error", err)
	}
}

func (o *Orchestrator) validateSelection(seatIDs []int, holderID string) error {
	if len(seatIDs) == 0 || holderID == "" {
		return domain.ErrInvalidSelection
	}

	if len(seatIDs) > o.maxSeats {
		return fmt.Errorf("%w: at most %d seats", domain.ErrTooManySeats, o.maxSeats)
	}

	return nil
}

// normalizeSeatIDs sorts and dedupes so every caller sees the same lock order.
func normalizeSeatIDs(seatIDs []int) []int {
	ids := slices.Clone(seatIDs)
	slices.Sort(ids)

	return slices.Compact(ids)
}
