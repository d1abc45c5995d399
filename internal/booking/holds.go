package booking

import (
	"context"
	"errors"
	"time"

	"github.com/metinatakli/cinema-booking-core/internal/domain"
)

type SelectSeatsInput struct {
	ShowtimeID   int
	SeatIDs      []int
	HolderID     string
	ContactEmail string
}

// SelectSeats holds every requested seat for the holder, or none of them.
func (o *Orchestrator) SelectSeats(ctx context.Context, input SelectSeatsInput) (*domain.Hold, error) {
	seatIDs := normalizeSeatIDs(input.SeatIDs)
	if err := o.validateSelection(seatIDs, input.HolderID); err != nil {
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
		o.metrics.seatConflicts.Add(ctx, 1)
		return nil, domain.NewSeatUnavailableError(unavailable)
	}

	hold := domain.NewHold(showtimeSeats, input.HolderID, o.clock.Now(), o.holdTTL)
	hold.ContactEmail = input.ContactEmail

	if err := o.holds.Put(ctx, hold); err != nil {
		if errors.Is(err, domain.ErrSeatUnavailable) {
			o.metrics.seatConflicts.Add(ctx, 1)
		}

		return nil, err
	}

	o.metrics.holdsCreated.Add(ctx, 1)

	o.logger.InfoContext(ctx, "seats held",
		"holdId", hold.ID,
		"showtimeId", hold.ShowtimeID,
		"seatIds", seatIDs,
		"expiresAt", hold.ExpiresAt)

	o.publish(ctx, domain.EventHoldCreated, hold.ID, map[string]any{
		"holdId":     hold.ID,
		"showtimeId": hold.ShowtimeID,
		"seatIds":    seatIDs,
		"expiresAt":  hold.ExpiresAt,
	})

	return &hold, nil
}

// GetHold returns the holder's own hold and how long it has left.
func (o *Orchestrator) GetHold(ctx context.Context, holdID, holderID string) (*domain.Hold, time.Duration, error) {
	hold, err := o.ownedHold(ctx, holdID, holderID)
	if err != nil {
		return nil, 0, err
	}

	remaining, err := o.holds.TimeRemaining(ctx, hold.ID)
	if err != nil {
		return nil, 0, err
	}

	return hold, remaining, nil
}

// CancelHold releases a hold on its owner's request. Someone else's hold, and
// one that was promoted or released in the meantime, is reported as not found.
func (o *Orchestrator) CancelHold(ctx context.Context, holdID, holderID string) error {
	hold, err := o.ownedHold(ctx, holdID, holderID)
	if err != nil {
		return err
	}

	return o.release(ctx, *hold, "cancelled")
}

// Release drops a hold after a failed payment. A hold that is already gone
// needs nothing more.
func (o *Orchestrator) Release(ctx context.Context, holdID string) error {
	hold, err := o.holds.Get(ctx, holdID)
	if err != nil {
		if errors.Is(err, domain.ErrHoldNotFound) {
			return nil
		}

		return err
	}

	err = o.release(ctx, *hold, "payment_failed")
	if errors.Is(err, domain.ErrHoldNotFound) {
		return nil
	}

	return err
}

func (o *Orchestrator) release(ctx context.Context, hold domain.Hold, reason string) error {
	locks, err := o.lockSeats(ctx, hold.ShowtimeID, hold.SeatIDs())
	if err != nil {
		return err
	}
	defer o.unlock(ctx, locks)

	// a promotion or another release may have won the locks first
	ticket, err := o.existingTicket(ctx, hold.ID)
	if err != nil {
		return err
	}

	if ticket != nil {
		return domain.ErrHoldNotFound
	}

	if err := o.verifyClaims(ctx, &hold); err != nil {
		return err
	}

	if err := o.holds.Remove(ctx, hold); err != nil {
		return err
	}

	o.logger.InfoContext(ctx, "hold released", "holdId", hold.ID, "reason", reason)

	o.publish(ctx, domain.EventHoldReleased, hold.ID, map[string]any{
		"holdId":     hold.ID,
		"showtimeId": hold.ShowtimeID,
		"seatIds":    hold.SeatIDs(),
		"reason":     reason,
	})

	return nil
}

// CreateCheckout starts a gateway payment for the holder's hold and records it
// as pending.
func (o *Orchestrator) CreateCheckout(ctx context.Context, holdID, holderID string) (*domain.CheckoutSession, error) {
	hold, err := o.ownedHold(ctx, holdID, holderID)
	if err != nil {
		return nil, err
	}

	checkoutSession, err := o.provider.CreateCheckoutSession(ctx, *hold)
	if err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		HoldID:      hold.ID,
		Method:      domain.PaymentMethodCard,
		Amount:      hold.TotalPrice,
		Currency:    o.currency,
		Status:      domain.PaymentStatusPending,
		ProviderRef: &checkoutSession.ID,
	}

	if err := o.payments.CreatePending(ctx, payment); err != nil {
		return nil, err
	}

	return checkoutSession, nil
}

func (o *Orchestrator) ownedHold(ctx context.Context, holdID, holderID string) (*domain.Hold, error) {
	hold, err := o.holds.Get(ctx, holdID)
	if err != nil {
		return nil, err
	}

	if !hold.OwnedBy(holderID) {
		return nil, domain.ErrHoldNotFound
	}

	return hold, nil
}
