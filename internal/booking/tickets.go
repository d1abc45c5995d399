package booking

import (
	"context"

	"github.com/metinatakli/cinema-booking-core/internal/domain"
)

func (o *Orchestrator) GetTicket(ctx context.Context, ticketID int) (*domain.Ticket, error) {
	return o.tickets.GetByID(ctx, ticketID)
}

// CancelTicket frees a ticket's seats durably. The seat locks keep it from
// interleaving with a selection of the same seats.
func (o *Orchestrator) CancelTicket(ctx context.Context, ticketID int) (*domain.Ticket, error) {
	ticket, err := o.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if ticket.Status == domain.TicketCancelled {
		return nil, domain.ErrTicketAlreadyCancelled
	}

	locks, err := o.lockSeats(ctx, ticket.ShowtimeID, ticket.SeatIDs)
	if err != nil {
		return nil, err
	}
	defer o.unlock(ctx, locks)

	cancelled, err := o.tickets.Cancel(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	o.logger.InfoContext(ctx, "ticket cancelled", "ticketId", cancelled.ID, "seatIds", cancelled.SeatIDs)

	o.publish(ctx, domain.EventTicketCancelled, cancelled.HoldID, map[string]any{
		"ticketId":   cancelled.ID,
		"showtimeId": cancelled.ShowtimeID,
		"seatIds":    cancelled.SeatIDs,
	})

	return cancelled, nil
}
