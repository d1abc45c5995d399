package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (POST /counter/bookings)
	BookAtCounter(w http.ResponseWriter, r *http.Request)
	// (GET /healthcheck)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// (DELETE /holds/{holdId})
	CancelHold(w http.ResponseWriter, r *http.Request, holdId HoldId)
	// (GET /holds/{holdId})
	GetHold(w http.ResponseWriter, r *http.Request, holdId HoldId)
	// (POST /holds/{holdId}/checkout)
	CreateCheckout(w http.ResponseWriter, r *http.Request, holdId HoldId)
	// (GET /reconciliations)
	ListReconciliations(w http.ResponseWriter, r *http.Request, params ListReconciliationsParams)
	// (POST /reconciliations/{reconciliationId}/resolve)
	ResolveReconciliation(w http.ResponseWriter, r *http.Request, reconciliationId int)
	// (POST /showtimes/{showtimeId}/holds)
	CreateHold(w http.ResponseWriter, r *http.Request, showtimeId ShowtimeId)
	// (GET /showtimes/{showtimeId}/seats)
	GetSeatMap(w http.ResponseWriter, r *http.Request, showtimeId ShowtimeId)
	// (GET /showtimes/{showtimeId}/seats/{seatId})
	GetSeatAvailability(w http.ResponseWriter, r *http.Request, showtimeId ShowtimeId, seatId int)
	// (DELETE /tickets/{ticketId})
	CancelTicket(w http.ResponseWriter, r *http.Request, ticketId TicketId)
	// (GET /tickets/{ticketId})
	GetTicket(w http.ResponseWriter, r *http.Request, ticketId TicketId)
	// (POST /webhook)
	PaymentWebhook(w http.ResponseWriter, r *http.Request, params PaymentWebhookParams)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, handler http.Handler) {
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

// BookAtCounter operation middleware
func (siw *ServerInterfaceWrapper) BookAtCounter(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.BookAtCounter(w, r)
	}))
}

// GetHealth operation middleware
func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetHealth(w, r)
	}))
}

// CancelHold operation middleware
func (siw *ServerInterfaceWrapper) CancelHold(w http.ResponseWriter, r *http.Request) {
	holdId, ok := siw.holdIdParam(w, r)
	if !ok {
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CancelHold(w, r, holdId)
	}))
}

// GetHold operation middleware
func (siw *ServerInterfaceWrapper) GetHold(w http.ResponseWriter, r *http.Request) {
	holdId, ok := siw.holdIdParam(w, r)
	if !ok {
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetHold(w, r, holdId)
	}))
}

// CreateCheckout operation middleware
func (siw *ServerInterfaceWrapper) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	holdId, ok := siw.holdIdParam(w, r)
	if !ok {
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CreateCheckout(w, r, holdId)
	}))
}

// ListReconciliations operation middleware
func (siw *ServerInterfaceWrapper) ListReconciliations(w http.ResponseWriter, r *http.Request) {
	var err error

	// Parameter object where we will unmarshal all parameters from the context
	var params ListReconciliationsParams

	// ------------- Optional query parameter "page" -------------

	err = runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &params.Page)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "page", Err: err})
		return
	}

	// ------------- Optional query parameter "pageSize" -------------

	err = runtime.BindQueryParameter("form", true, false, "pageSize", r.URL.Query(), &params.PageSize)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "pageSize", Err: err})
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListReconciliations(w, r, params)
	}))
}

// ResolveReconciliation operation middleware
func (siw *ServerInterfaceWrapper) ResolveReconciliation(w http.ResponseWriter, r *http.Request) {
	var reconciliationId int

	if !siw.bindPath(w, r, "reconciliationId", &reconciliationId) {
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ResolveReconciliation(w, r, reconciliationId)
	}))
}

// CreateHold operation middleware
func (siw *ServerInterfaceWrapper) CreateHold(w http.ResponseWriter, r *http.Request) {
	var showtimeId ShowtimeId

	if !siw.bindPath(w, r, "showtimeId", &showtimeId) {
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CreateHold(w, r, showtimeId)
	}))
}

// GetSeatMap operation middleware
func (siw *ServerInterfaceWrapper) GetSeatMap(w http.ResponseWriter, r *http.Request) {
	var showtimeId ShowtimeId

	if !siw.bindPath(w, r, "showtimeId", &showtimeId) {
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetSeatMap(w, r, showtimeId)
	}))
}

// GetSeatAvailability operation middleware
func (siw *ServerInterfaceWrapper) GetSeatAvailability(w http.ResponseWriter, r *http.Request) {
	var (
		showtimeId ShowtimeId
		seatId     int
	)

	if !siw.bindPath(w, r, "showtimeId", &showtimeId) {
		return
	}

	if !siw.bindPath(w, r, "seatId", &seatId) {
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetSeatAvailability(w, r, showtimeId, seatId)
	}))
}

// CancelTicket operation middleware
func (siw *ServerInterfaceWrapper) CancelTicket(w http.ResponseWriter, r *http.Request) {
	var ticketId TicketId

	if !siw.bindPath(w, r, "ticketId", &ticketId) {
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CancelTicket(w, r, ticketId)
	}))
}

// GetTicket operation middleware
func (siw *ServerInterfaceWrapper) GetTicket(w http.ResponseWriter, r *http.Request) {
	var ticketId TicketId

	if !siw.bindPath(w, r, "ticketId", &ticketId) {
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetTicket(w, r, ticketId)
	}))
}

// PaymentWebhook operation middleware
func (siw *ServerInterfaceWrapper) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var err error

	// Parameter object where we will unmarshal all parameters from the context
	var params PaymentWebhookParams

	headers := r.Header

	// ------------- Required header parameter "Stripe-Signature" -------------
	if valueList, found := headers[http.CanonicalHeaderKey("Stripe-Signature")]; found {
		var StripeSignature string
		n := len(valueList)
		if n != 1 {
			siw.ErrorHandlerFunc(w, r, &TooManyValuesForParamError{ParamName: "Stripe-Signature", Count: n})
			return
		}

		err = runtime.BindStyledParameterWithOptions("simple", "Stripe-Signature", valueList[0], &StripeSignature, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationHeader, Explode: false, Required: true})
		if err != nil {
			siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "Stripe-Signature", Err: err})
			return
		}

		params.StripeSignature = StripeSignature

	} else {
		err := fmt.Errorf("Header parameter Stripe-Signature is required, but not found")
		siw.ErrorHandlerFunc(w, r, &RequiredHeaderError{ParamName: "Stripe-Signature", Err: err})
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.PaymentWebhook(w, r, params)
	}))
}

func (siw *ServerInterfaceWrapper) holdIdParam(w http.ResponseWriter, r *http.Request) (HoldId, bool) {
	var holdId HoldId

	return holdId, siw.bindPath(w, r, "holdId", &holdId)
}

// bindPath binds a required simple-style path parameter and reports binding
// failures through ErrorHandlerFunc.
func (siw *ServerInterfaceWrapper) bindPath(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}

	return true
}

type UnescapedCookieParamError struct {
	ParamName string
	Err       error
}

func (e *UnescapedCookieParamError) Error() string {
	return fmt.Sprintf("error unescaping cookie parameter '%s'", e.ParamName)
}

func (e *UnescapedCookieParamError) Unwrap() error {
	return e.Err
}

type UnmarshalingParamError struct {
	ParamName string
	Err       error
}

func (e *UnmarshalingParamError) Error() string {
	return fmt.Sprintf("Error unmarshaling parameter %s as JSON: %s", e.ParamName, e.Err.Error())
}

func (e *UnmarshalingParamError) Unwrap() error {
	return e.Err
}

type RequiredParamError struct {
	ParamName string
}

func (e *RequiredParamError) Error() string {
	return fmt.Sprintf("Query argument %s is required, but not found", e.ParamName)
}

type RequiredHeaderError struct {
	ParamName string
	Err       error
}

func (e *RequiredHeaderError) Error() string {
	return fmt.Sprintf("Header parameter %s is required, but not found", e.ParamName)
}

func (e *RequiredHeaderError) Unwrap() error {
	return e.Err
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

type TooManyValuesForParamError struct {
	ParamName string
	Count     int
}

func (e *TooManyValuesForParamError) Error() string {
	return fmt.Sprintf("Expected one value for %s, got %d", e.ParamName, e.Count)
}

// Handler creates http.Handler with routing matching OpenAPI spec.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux creates http.Handler with routing matching OpenAPI spec based on the provided mux.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseRouter: r,
	})
}

func HandlerFromMuxWithBaseURL(si ServerInterface, r chi.Router, baseURL string) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseURL:    baseURL,
		BaseRouter: r,
	})
}

// HandlerWithOptions creates http.Handler with additional options
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/counter/bookings", wrapper.BookAtCounter)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/healthcheck", wrapper.GetHealth)
	})
	r.Group(func(r chi.Router) {
		r.Delete(options.BaseURL+"/holds/{holdId}", wrapper.CancelHold)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/holds/{holdId}", wrapper.GetHold)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/holds/{holdId}/checkout", wrapper.CreateCheckout)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/reconciliations", wrapper.ListReconciliations)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/reconciliations/{reconciliationId}/resolve", wrapper.ResolveReconciliation)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/showtimes/{showtimeId}/holds", wrapper.CreateHold)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/showtimes/{showtimeId}/seats", wrapper.GetSeatMap)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/showtimes/{showtimeId}/seats/{seatId}", wrapper.GetSeatAvailability)
	})
	r.Group(func(r chi.Router) {
		r.Delete(options.BaseURL+"/tickets/{ticketId}", wrapper.CancelTicket)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/tickets/{ticketId}", wrapper.GetTicket)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/webhook", wrapper.PaymentWebhook)
	})

	return r
}
