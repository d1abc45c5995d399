package app

import (
	"net/http"

	"github.com/metinatakli/cinema-booking-core/api"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
)

func (app *Application) GetSeatMap(w http.ResponseWriter, r *http.Request, showtimeID api.ShowtimeId) {
	logger := app.contextGetLogger(r)

	if showtimeID < 1 {
		app.badRequestResponse(w, r, errInvalidID("showtimeId"))
		return
	}

	showtimeSeats, seats, err := app.bookings.Availability(r.Context(), showtimeID)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	if len(seats) == 0 {
		logger.Warn("seat map not found for showtime", "showtime_id", showtimeID)
		app.notFoundResponse(w, r)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toSeatMapResponse(showtimeSeats, seats), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetSeatAvailability(w http.ResponseWriter, r *http.Request, showtimeID api.ShowtimeId, seatID int) {
	if showtimeID < 1 {
		app.badRequestResponse(w, r, errInvalidID("showtimeId"))
		return
	}

	if seatID < 1 {
		app.badRequestResponse(w, r, errInvalidID("seatId"))
		return
	}

	bookable, err := app.bookings.IsBookable(r.Context(), showtimeID, seatID)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	resp := api.SeatAvailabilityResponse{
		ShowtimeId: showtimeID,
		SeatId:     seatID,
		Bookable:   bookable,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toSeatMapResponse(showtimeSeats *domain.ShowtimeSeats, seats []domain.SeatAvailability) api.SeatMapResponse {
	return api.SeatMapResponse{
		ShowtimeId:  showtimeSeats.ShowtimeID,
		TheaterId:   showtimeSeats.TheaterID,
		TheaterName: showtimeSeats.TheaterName,
		MovieName:   showtimeSeats.MovieName,
		HallId:      showtimeSeats.HallID,
		HallName:    showtimeSeats.HallName,
		Date:        showtimeSeats.Date,
		BasePrice:   showtimeSeats.Price,
		SeatRows:    toSeatRows(seats),
	}
}

func toSeatRows(seats []domain.SeatAvailability) []api.SeatRow {
	// Seats are pre-sorted by Row,Column (ascending), so rows can be cut in a
	// single pass.

	var seatRows []api.SeatRow
	currentRow := api.SeatRow{Row: seats[0].Row}

	for _, v := range seats {
		if v.Row != currentRow.Row {
			seatRows = append(seatRows, currentRow)
			currentRow = api.SeatRow{Row: v.Row}
		}

		currentRow.Seats = append(currentRow.Seats, api.Seat{
			Id:         v.ID,
			Row:        v.Row,
			Column:     v.Col,
			Type:       v.Type,
			ExtraPrice: v.ExtraPrice,
			State:      api.SeatState(v.State),
		})
	}

	seatRows = append(seatRows, currentRow)

	return seatRows
}
