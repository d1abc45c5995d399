package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/metinatakli/cinema-booking-core/internal/domain"
	"github.com/shopspring/decimal"
)

type PromoteInput struct {
	HoldID string
	// HolderID is checked against the hold when the gateway reports it.
	HolderID    string
	Amount      decimal.Decimal
	Currency    string
	Method      domain.PaymentMethod
	ProviderRef string
}

// Promote turns a paid hold into a ticket. It is idempotent per hold: a
// repeated call returns the ticket the first call created. Money that arrives
// for a hold that cannot be promoted is recorded for reconciliation before the
// error is returned.
func (o *Orchestrator) Promote(ctx context.Context, input PromoteInput) (*domain.Ticket, error) {
	if ticket, err := o.existingTicket(ctx, input.HoldID); ticket != nil || err != nil {
		return ticket, err
	}

	hold, err := o.holds.Get(ctx, input.HoldID)
	if err != nil {
		if errors.Is(err, domain.ErrHoldNotFound) {
			// promotion removes the hold after writing the ticket
			if ticket, err := o.existingTicket(ctx, input.HoldID); ticket != nil || err != nil {
				return ticket, err
			}

			return nil, o.reconcile(ctx, nil, input, domain.ReasonHoldExpired, "hold was gone when payment arrived")
		}

		return nil, err
	}

	if !hold.OwnedBy(input.HolderID) && input.HolderID != "" {
		return nil, o.reconcile(ctx, hold, input, domain.ReasonHoldExpired, "payment holder does not own the hold")
	}

	if !input.Amount.Equal(hold.TotalPrice) {
		detail := fmt.Sprintf("paid %s, hold total %s", input.Amount, hold.TotalPrice)
		return nil, o.reconcile(ctx, hold, input, domain.ReasonAmountMismatch, detail)
	}

	locks, err := o.lockSeats(ctx, hold.ShowtimeID, hold.SeatIDs())
	if err != nil {
		return nil, err
	}
	defer o.unlock(ctx, locks)

	// a duplicate delivery may have finished while this one waited for the locks
	if ticket, err := o.existingTicket(ctx, input.HoldID); ticket != nil || err != nil {
		return ticket, err
	}

	if err := o.verifyClaims(ctx, hold); err != nil {
		if errors.Is(err, domain.ErrHoldNotFound) {
			return nil, o.reconcile(ctx, hold, input, domain.ReasonHoldExpired, "hold expired before promotion")
		}

		return nil, err
	}

	ticket := &domain.Ticket{
		ShowtimeID: hold.ShowtimeID,
		HoldID:     hold.ID,
		CustomerID: hold.HolderID,
		SeatIDs:    hold.SeatIDs(),
		TotalPrice: hold.TotalPrice,
		Payment: domain.Payment{
			Method:   input.Method,
			Amount:   input.Amount,
			Currency: o.currencyOf(input.Currency),
		},
	}

	if input.ProviderRef != "" {
		ticket.Payment.ProviderRef = &input.ProviderRef
	}

	if err := o.tickets.Create(ctx, ticket); err != nil {
		if errors.Is(err, domain.ErrSeatUnavailable) {
			return nil, o.reconcile(ctx, hold, input, domain.ReasonSeatConflict, err.Error())
		}

		return nil, err
	}

	o.finishPromotion(ctx, *hold, ticket)

	return ticket, nil
}

type CounterBookingInput struct {
	ShowtimeID int
	SeatIDs    []int
	StaffID    string
	CashAmount decimal.Decimal
}

// BookAtCounter sells seats for cash in one step. Holding, validating and
// promoting happen under a single lock span.
func (o *Orchestrator) BookAtCounter(ctx context.Context, input CounterBookingInput) (*domain.Ticket, error) {
	seatIDs := normalizeSeatIDs(input.SeatIDs)
	if err := o.validateSelection(seatIDs, input.StaffID); err != nil {
		return nil, err
	}

	showtimeSeats, err := o.resolveSeats(ctx, input.ShowtimeID, seatIDs)
	if err != nil {
		return nil, err
	}

	locks, err := o.lockSeats(ctx, input.ShowtimeID, seatIDs)
	if err != nil {
		return nil, err
	}
	defer o.unlock(ctx, locks)

	unavailable, err := o.unavailableSeats(ctx, input.ShowtimeID, seatIDs)
	if err != nil {
		return nil, err
	}

	if len(unavailable) > 0 {
		return nil, domain.NewSeatUnavailableError(unavailable)
	}

	hold := domain.NewHold(showtimeSeats, input.StaffID, o.clock.Now(), o.holdTTL)

	if input.CashAmount.LessThan(hold.TotalPrice) {
		return nil, fmt.Errorf("%w: total is %s", domain.ErrInsufficientPayment, hold.TotalPrice)
	}

	if err := o.holds.Put(ctx, hold); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		ShowtimeID: hold.ShowtimeID,
		HoldID:     hold.ID,
		CustomerID: input.StaffID,
		SeatIDs:    hold.SeatIDs(),
		TotalPrice: hold.TotalPrice,
		Payment: domain.Payment{
			Method:   domain.PaymentMethodCash,
			Amount:   hold.TotalPrice,
			Currency: o.currency,
		},
	}

	if err := o.tickets.Create(ctx, ticket); err != nil {
		if removeErr := o.holds.Remove(ctx, hold); removeErr != nil {
			o.logger.WarnContext(ctx, "failed to drop counter hold", "holdId", hold.ID, "error", removeErr)
		}

		return nil, err
	}

	o.finishPromotion(ctx, hold, ticket)

	return ticket, nil
}

func (o *Orchestrator) existingTicket(ctx context.Context, holdID string) (*domain.Ticket, error) {
	ticket, err := o.tickets.GetByHoldID(ctx, holdID)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return ticket, nil
}

// verifyClaims checks, under the seat locks, that the hold is still live and
// every seat claim still points at it.
func (o *Orchestrator) verifyClaims(ctx context.Context, hold *domain.Hold) error {
	current, err := o.holds.Get(ctx, hold.ID)
	if err != nil {
		return err
	}

	if current.Expired(o.clock.Now()) {
		return domain.ErrHoldNotFound
	}

	for _, seatID := range hold.SeatIDs() {
		claim, err := o.holds.Claim(ctx, hold.ShowtimeID, seatID)
		if err != nil {
			return err
		}

		if claim == nil || claim.HoldID != hold.ID {
			return domain.ErrHoldNotFound
		}
	}

	return nil
}

// finishPromotion runs after the ticket is durable; nothing here may fail the
// booking.
func (o *Orchestrator) finishPromotion(ctx context.Context, hold domain.Hold, ticket *domain.Ticket) {
	if err := o.holds.Remove(ctx, hold); err != nil {
		// the booked row outranks the leftover claim until its TTL runs out
		o.logger.WarnContext(ctx, "failed to remove promoted hold", "holdId", hold.ID, "error", err)
	}

	o.metrics.ticketIssued(ctx, ticket.Payment.Method)

	o.logger.InfoContext(ctx, "hold promoted",
		"holdId", hold.ID,
		"ticketId", ticket.ID,
		"showtimeId", ticket.ShowtimeID,
		"seatIds", ticket.SeatIDs,
		"method", ticket.Payment.Method)

	o.publish(ctx, domain.EventTicketBooked, hold.ID, map[string]any{
		"ticketId":   ticket.ID,
		"holdId":     hold.ID,
		"showtimeId": ticket.ShowtimeID,
		"seatIds":    ticket.SeatIDs,
		"totalPrice": ticket.TotalPrice,
	})

	o.notify(ctx, domain.Notification{
		Kind:       domain.NotifyTicketBooked,
		HolderID:   hold.HolderID,
		Email:      hold.ContactEmail,
		HoldID:     hold.ID,
		TicketID:   ticket.ID,
		ShowtimeID: ticket.ShowtimeID,
		MovieName:  hold.MovieName,
		SeatIDs:    ticket.SeatIDs,
	})
}

// reconcile records a payment that could not be turned into a ticket. It
// returns the error matching the reason, or the storage error if the record
// could not be written, so the gateway retries the delivery.
func (o *Orchestrator) reconcile(
	ctx context.Context,
	hold *domain.Hold,
	input PromoteInput,
	reason domain.ReconciliationReason,
	detail string) error {

	rec := &domain.Reconciliation{
		HoldID:      input.HoldID,
		HolderID:    input.HolderID,
		Reason:      reason,
		Amount:      input.Amount,
		Currency:    o.currencyOf(input.Currency),
		ProviderRef: input.ProviderRef,
		Detail:      detail,
	}

	if hold != nil {
		rec.HolderID = hold.HolderID
		rec.ShowtimeID = hold.ShowtimeID
	}

	if err := o.reconciliations.Create(ctx, rec); err != nil {
		return fmt.Errorf("record reconciliation for hold %s: %w", input.HoldID, err)
	}

	o.metrics.reconciliationRecorded(ctx, reason)

	o.logger.ErrorContext(ctx, "payment requires reconciliation",
		"reconciliationId", rec.ID,
		"holdId", rec.HoldID,
		"reason", reason,
		"amount", rec.Amount,
		"providerRef", rec.ProviderRef,
		"detail", detail)

	event := domain.Event{
		Type:       domain.EventReconciliationRequired,
		Key:        rec.HoldID,
		OccurredAt: o.clock.Now(),
		Payload: map[string]any{
			"reconciliationId": rec.ID,
			"holdId":           rec.HoldID,
			"reason":           reason,
			"amount":           rec.Amount,
			"currency":         rec.Currency,
			"providerRef":      rec.ProviderRef,
		},
	}

	if err := o.publisher.Publish(ctx, event); err != nil {
		o.logger.ErrorContext(ctx, "failed to publish reconciliation event", "holdId", rec.HoldID, "error", err)
	}

	reconciled := &domain.ReconciledError{
		ReconciliationID: rec.ID,
		Reason:           reason,
		Err:              domain.ErrHoldExpired,
	}

	switch reason {
	case domain.ReasonAmountMismatch:
		reconciled.Err = domain.ErrAmountMismatch
	case domain.ReasonSeatConflict:
		reconciled.Err = domain.ErrSeatUnavailable
	}

	return reconciled
}

func (o *Orchestrator) currencyOf(currency string) string {
	if currency == "" {
		return o.currency
	}

	return currency
}
