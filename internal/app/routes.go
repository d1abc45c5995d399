package app

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/metinatakli/cinema-booking-core/api"
	appmiddleware "github.com/metinatakli/cinema-booking-core/internal/middleware"
	"github.com/riandyrn/otelchi"
)

var _ api.ServerInterface = (*Application)(nil)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(appmiddleware.NotFoundHandler)
	r.MethodNotAllowed(appmiddleware.MethodNotAllowedHandler)

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(appmiddleware.RecoverPanic(app.logger))

	r.Get("/openapi.json", app.GetOpenAPISpec)

	return api.HandlerWithOptions(app, api.ChiServerOptions{
		BaseRouter:       r,
		Middlewares:      []api.MiddlewareFunc{app.holderSession},
		ErrorHandlerFunc: app.parameterErrorResponse,
	})
}

// holderSession loads the guest session on hold routes, where the session
// token identifies the seat holder.
func (app *Application) holderSession(next http.Handler) http.Handler {
	withSession := app.sessionManager.LoadAndSave(app.ensureGuestUserSession(next))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(chi.RouteContext(r.Context()).RoutePattern(), "/holds") {
			withSession.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}
