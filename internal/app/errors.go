package app

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/cinema-booking-core/api"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
	appvalidator "github.com/metinatakli/cinema-booking-core/internal/validator"
)

const (
	ErrInternalServer = "The server encountered a problem and could not process your request"
	ErrNotFound       = "The requested resource not found"
	ErrContended      = "The selected seats are busy, please retry shortly"
	ErrUnavailable    = "Booking is temporarily unavailable, please retry shortly"
	ErrValidation     = "One or more fields are invalid"

	retryAfterSeconds = "1"
)

func (app *Application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.contextGetLogger(r).Error(err.Error(), "method", method, "uri", uri)
}

func (app *Application) newErrorResponse(r *http.Request, message string) api.ErrorResponse {
	return api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.sendError(w, r, status, app.newErrorResponse(r, message), nil)
}

func (app *Application) sendError(w http.ResponseWriter, r *http.Request, status int, resp any, headers http.Header) {
	err := app.writeJSON(w, status, resp, headers)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *Application) notFoundResponseWithErr(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusNotFound, err.Error())
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *Application) editConflictResponseWithErr(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusConflict, err.Error())
}

func (app *Application) unprocessableEntityResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
}

func (app *Application) retryLaterResponse(w http.ResponseWriter, r *http.Request, message string) {
	headers := http.Header{"Retry-After": []string{retryAfterSeconds}}
	app.sendError(w, r, http.StatusServiceUnavailable, app.newErrorResponse(r, message), headers)
}

func (app *Application) seatConflictResponse(w http.ResponseWriter, r *http.Request, err *domain.SeatUnavailableError) {
	resp := api.SeatConflictResponse{
		ErrorResponse: app.newErrorResponse(r, "Some of the selected seats are already booked or held"),
		SeatIds:       err.SeatIDs,
	}

	app.sendError(w, r, http.StatusConflict, resp, nil)
}

func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		app.badRequestResponse(w, r, err)
		return
	}

	resp := api.ValidationErrorResponse{
		ErrorResponse: app.newErrorResponse(r, ErrValidation),
	}

	for _, e := range validationErrors {
		resp.ValidationErrors = append(resp.ValidationErrors, api.ValidationError{
			Field: lowerFirst(e.Field()),
			Issue: appvalidator.ValidationMessage(e),
		})
	}

	app.sendError(w, r, http.StatusUnprocessableEntity, resp, nil)
}

// parameterErrorResponse answers requests whose path, query or header
// parameters could not be bound.
func (app *Application) parameterErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *api.InvalidParamFormatError

	if errors.As(err, &invalid) {
		switch invalid.ParamName {
		case "page", "pageSize":
			err = fmt.Errorf("%s must be an integer value", invalid.ParamName)
		case "showtimeId", "seatId", "ticketId", "reconciliationId":
			err = errInvalidID(invalid.ParamName)
		}
	}

	app.badRequestResponse(w, r, err)
}

// bookingErrorResponse maps the booking error taxonomy onto HTTP statuses.
func (app *Application) bookingErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var seatErr *domain.SeatUnavailableError

	switch {
	case errors.As(err, &seatErr):
		app.seatConflictResponse(w, r, seatErr)
	case errors.Is(err, domain.ErrSeatContended):
		app.retryLaterResponse(w, r, ErrContended)
	case errors.Is(err, domain.ErrStoreUnavailable):
		app.logError(r, err)
		app.retryLaterResponse(w, r, ErrUnavailable)
	case errors.Is(err, domain.ErrSeatUnavailable),
		errors.Is(err, domain.ErrHoldExpired),
		errors.Is(err, domain.ErrAmountMismatch),
		errors.Is(err, domain.ErrTicketAlreadyCancelled):
		app.editConflictResponseWithErr(w, r, err)
	case errors.Is(err, domain.ErrHoldNotFound),
		errors.Is(err, domain.ErrTicketNotFound),
		errors.Is(err, domain.ErrUnknownSeat):
		app.notFoundResponseWithErr(w, r, err)
	case errors.Is(err, domain.ErrRecordNotFound):
		app.notFoundResponse(w, r)
	case errors.Is(err, domain.ErrInvalidSignature),
		errors.Is(err, domain.ErrInvalidSelection),
		errors.Is(err, domain.ErrTooManySeats):
		app.badRequestResponse(w, r, err)
	case errors.Is(err, domain.ErrInsufficientPayment):
		app.unprocessableEntityResponse(w, r, err)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}

	return strings.ToLower(s[:1]) + s[1:]
}
