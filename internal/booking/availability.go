package booking

import (
	"context"
	"errors"

	"github.com/metinatakli/cinema-booking-core/internal/domain"
)

// DeriveAvailability computes each seat's state from booked seat ids and live
// claims. A booked seat stays booked even if a stale claim still exists.
func DeriveAvailability(seats []domain.Seat, booked []int, held map[int]domain.SeatClaim) []domain.SeatAvailability {
	bookedSet := make(map[int]struct{}, len(booked))
	for _, id := range booked {
		bookedSet[id] = struct{}{}
	}

	result := make([]domain.SeatAvailability, len(seats))

	for i, seat := range seats {
		state := domain.SeatAvailable

		if _, ok := bookedSet[seat.ID]; ok {
			state = domain.SeatBooked
		} else if _, ok := held[seat.ID]; ok {
			state = domain.SeatHeld
		}

		result[i] = domain.SeatAvailability{Seat: seat, State: state}
	}

	return result
}

// Availability is a display view and takes no locks; it may be stale by the
// time the caller acts on it.
func (o *Orchestrator) Availability(ctx context.Context, showtimeID int) (*domain.ShowtimeSeats, []domain.SeatAvailability, error) {
	showtimeSeats, err := o.seats.GetSeatsByShowtime(ctx, showtimeID)
	if err != nil {
		return nil, nil, err
	}

	booked, err := o.tickets.BookedSeatIDs(ctx, showtimeID)
	if err != nil {
		return nil, nil, err
	}

	held, err := o.holds.HeldSeats(ctx, showtimeID)
	if err != nil {
		return nil, nil, err
	}

	return showtimeSeats, DeriveAvailability(showtimeSeats.Seats, booked, held), nil
}

func (o *Orchestrator) IsBookable(ctx context.Context, showtimeID, seatID int) (bool, error) {
	if _, err := o.resolveSeats(ctx, showtimeID, []int{seatID}); err != nil {
		if errors.Is(err, domain.ErrUnknownSeat) {
			return false, domain.ErrRecordNotFound
		}

		return false, err
	}

	unavailable, err := o.unavailableSeats(ctx, showtimeID, []int{seatID})
	if err != nil {
		return false, err
	}

	return len(unavailable) == 0, nil
}
