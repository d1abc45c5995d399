package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/metinatakli/cinema-booking-core/internal/jsonutil"
	"go.opentelemetry.io/otel/trace"
)

func (app *Application) writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	return jsonutil.WriteJSON(w, status, data, headers)
}

func (app *Application) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return jsonutil.ReadJSON(w, r, dst)
}

func errInvalidID(name string) error {
	return fmt.Errorf("%s must be a positive integer", name)
}

// contextGetLogger returns a logger tagged with the request and trace ids.
func (app *Application) contextGetLogger(r *http.Request) *slog.Logger {
	logger := app.logger.With("request_id", middleware.GetReqID(r.Context()))

	spanCtx := trace.SpanContextFromContext(r.Context())
	if spanCtx.HasTraceID() {
		logger = logger.With("trace_id", spanCtx.TraceID().String())
	}

	return logger
}
