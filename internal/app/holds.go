package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/metinatakli/cinema-booking-core/api"
	"github.com/metinatakli/cinema-booking-core/internal/booking"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
)

func (app *Application) CreateHold(w http.ResponseWriter, r *http.Request, showtimeID api.ShowtimeId) {
	logger := app.contextGetLogger(r)

	if showtimeID < 1 {
		app.badRequestResponse(w, r, errInvalidID("showtimeId"))
		return
	}

	var input api.CreateHoldJSONRequestBody

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

	selection := booking.SelectSeatsInput{
		ShowtimeID: showtimeID,
		SeatIDs:    input.SeatIdList,
		HolderID:   app.holderID(r),
	}

	if input.Email != nil {
		selection.ContactEmail = *input.Email
	}

	hold, err := app.bookings.SelectSeats(r.Context(), selection)
	if err != nil {
		logger.Warn("seat selection rejected", "showtime_id", showtimeID, "seat_ids", input.SeatIdList, "error", err)
		app.bookingErrorResponse(w, r, err)
		return
	}

	resp := api.HoldResponse{
		Hold: toApiHold(hold, app.bookings.HoldTTL()),
	}

	headers := http.Header{"Location": []string{fmt.Sprintf("/holds/%s", hold.ID)}}

	err = app.writeJSON(w, http.StatusCreated, resp, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetHold(w http.ResponseWriter, r *http.Request, holdID api.HoldId) {
	hold, remaining, err := app.bookings.GetHold(r.Context(), holdID, app.holderID(r))
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	resp := api.HoldResponse{
		Hold: toApiHold(hold, remaining),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CancelHold(w http.ResponseWriter, r *http.Request, holdID api.HoldId) {
	err := app.bookings.CancelHold(r.Context(), holdID, app.holderID(r))
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) CreateCheckout(w http.ResponseWriter, r *http.Request, holdID api.HoldId) {
	checkoutSession, err := app.bookings.CreateCheckout(r.Context(), holdID, app.holderID(r))
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	resp := api.CheckoutSessionResponse{
		RedirectUrl: checkoutSession.URL,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiHold(hold *domain.Hold, remaining time.Duration) api.Hold {
	seats := make([]api.HoldSeat, len(hold.Seats))
	for i, s := range hold.Seats {
		seats[i] = api.HoldSeat{
			Id:         s.ID,
			Row:        s.Row,
			Column:     s.Col,
			Type:       s.SeatType,
			ExtraPrice: s.ExtraPrice,
		}
	}

	return api.Hold{
		HoldId:           hold.ID,
		ShowtimeId:       hold.ShowtimeID,
		MovieName:        hold.MovieName,
		TheaterName:      hold.TheaterName,
		HallName:         hold.HallName,
		Date:             hold.Date,
		Seats:            seats,
		BasePrice:        hold.BasePrice,
		TotalPrice:       hold.TotalPrice,
		ExpiresAt:        hold.ExpiresAt,
		RemainingSeconds: int(remaining.Seconds()),
	}
}
