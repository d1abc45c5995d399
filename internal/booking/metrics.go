package booking

import (
	"context"

	"github.com/metinatakli/cinema-booking-core/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/metinatakli/cinema-booking-core/internal/booking"

type metrics struct {
	holdsCreated    metric.Int64Counter
	seatConflicts   metric.Int64Counter
	lockContention  metric.Int64Counter
	ticketsIssued   metric.Int64Counter
	reconciliations metric.Int64Counter
}

// newMetrics falls back to no-op instruments, so a broken meter provider never
// blocks bookings.
func newMetrics(provider metric.MeterProvider) metrics {
	meter := provider.Meter(meterName)

	return metrics{
		holdsCreated: counter(meter, "booking.holds.created",
			"Seat selections that produced a hold"),
		seatConflicts: counter(meter, "booking.seat.conflicts",
			"Selections rejected because a seat was booked or held"),
		lockContention: counter(meter, "booking.lock.contention",
			"Operations that timed out waiting for seat locks"),
		ticketsIssued: counter(meter, "booking.tickets.issued",
			"Tickets written by promotion or counter sale"),
		reconciliations: counter(meter, "booking.reconciliations",
			"Payments recorded for manual reconciliation"),
	}
}

func counter(meter metric.Meter, name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		return noop.Int64Counter{}
	}

	return c
}

func (m metrics) ticketIssued(ctx context.Context, method domain.PaymentMethod) {
	m.ticketsIssued.Add(ctx, 1, metric.WithAttributes(attribute.String("method", string(method))))
}

func (m metrics) reconciliationRecorded(ctx context.Context, reason domain.ReconciliationReason) {
	m.reconciliations.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", string(reason))))
}
