package app

import (
	"fmt"
	"net/http"

	"github.com/metinatakli/cinema-booking-core/api"
	"github.com/metinatakli/cinema-booking-core/internal/booking"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
)

func (app *Application) BookAtCounter(w http.ResponseWriter, r *http.Request) {
	var input api.CounterBookingRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	ticket, err := app.bookings.BookAtCounter(r.Context(), booking.CounterBookingInput{
		ShowtimeID: input.ShowtimeId,
		SeatIDs:    input.SeatIdList,
		StaffID:    input.StaffId,
		CashAmount: input.CashAmount,
	})
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	headers := http.Header{"Location": []string{fmt.Sprintf("/tickets/%d", ticket.ID)}}

	err = app.writeJSON(w, http.StatusCreated, api.TicketResponse{Ticket: toApiTicket(ticket)}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetTicket(w http.ResponseWriter, r *http.Request, ticketID api.TicketId) {
	if ticketID < 1 {
		app.badRequestResponse(w, r, errInvalidID("ticketId"))
		return
	}

	ticket, err := app.bookings.GetTicket(r.Context(), ticketID)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, api.TicketResponse{Ticket: toApiTicket(ticket)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CancelTicket(w http.ResponseWriter, r *http.Request, ticketID api.TicketId) {
	if ticketID < 1 {
		app.badRequestResponse(w, r, errInvalidID("ticketId"))
		return
	}

	ticket, err := app.bookings.CancelTicket(r.Context(), ticketID)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, api.TicketResponse{Ticket: toApiTicket(ticket)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiTicket(ticket *domain.Ticket) api.Ticket {
	return api.Ticket{
		TicketId:      ticket.ID,
		HoldId:        ticket.HoldID,
		ShowtimeId:    ticket.ShowtimeID,
		SeatIds:       ticket.SeatIDs,
		TotalPrice:    ticket.TotalPrice,
		Status:        string(ticket.Status),
		PaymentMethod: string(ticket.Payment.Method),
		CreatedAt:     ticket.CreatedAt,
		CancelledAt:   ticket.CancelledAt,
	}
}
