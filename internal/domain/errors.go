package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrRecordNotFound         = errors.New("record not found")
	ErrSeatUnavailable        = errors.New("seat(s) are already booked or held")
	ErrSeatContended          = errors.New("seat(s) are temporarily contended, please retry")
	ErrHoldNotFound           = errors.New("hold not found or has expired")
	ErrHoldExpired            = errors.New("hold expired before the payment could be applied")
	ErrInvalidSignature       = errors.New("payment callback signature is invalid")
	ErrAmountMismatch         = errors.New("paid amount does not match the hold total")
	ErrInsufficientPayment    = errors.New("cash amount does not cover the ticket total")
	ErrTicketNotFound         = errors.New("ticket not found")
	ErrTicketAlreadyCancelled = errors.New("ticket is already cancelled")
	ErrStoreUnavailable       = errors.New("hold store is unavailable")
	ErrUnknownSeat            = errors.New("one or more seats do not exist for the showtime")
	ErrInvalidSelection       = errors.New("at least one seat must be selected")
	ErrTooManySeats           = errors.New("too many seats in one selection")
)

// SeatUnavailableError names the seats that made a selection fail.
type SeatUnavailableError struct {
	SeatIDs []int
}

func (e *SeatUnavailableError) Error() string {
	ids := make([]string, len(e.SeatIDs))
	for i, id := range e.SeatIDs {
		ids[i] = strconv.Itoa(id)
	}

	return fmt.Sprintf("%s: %s", ErrSeatUnavailable.Error(), strings.Join(ids, ","))
}

func (e *SeatUnavailableError) Is(target error) bool {
	return target == ErrSeatUnavailable
}

func NewSeatUnavailableError(seatIDs []int) error {
	return &SeatUnavailableError{SeatIDs: seatIDs}
}
