package app

import (
	"context"
	"net/http"
	"time"

	"github.com/metinatakli/cinema-booking-core/api"
)

const (
	statusUp       = "UP"
	statusDown     = "DOWN"
	statusDegraded = "DEGRADED"

	healthcheckTimeout = 2 * time.Second
)

func (app *Application) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthcheckTimeout)
	defer cancel()

	dependencies := map[string]string{
		"database": statusUp,
		"redis":    statusUp,
	}

	if err := app.db.Ping(ctx); err != nil {
		app.contextGetLogger(r).Error("database healthcheck failed", "error", err)
		dependencies["database"] = statusDown
	}

	if err := app.redis.Ping(ctx).Err(); err != nil {
		app.contextGetLogger(r).Error("redis healthcheck failed", "error", err)
		dependencies["redis"] = statusDown
	}

	status := statusUp
	httpStatus := http.StatusOK

	for _, v := range dependencies {
		if v != statusUp {
			status = statusDegraded
			httpStatus = http.StatusServiceUnavailable
		}
	}

	resp := api.HealthcheckResponse{
		Status: status,
		SystemInfo: api.SystemInfo{
			Version:     version,
			Environment: app.config.Env,
		},
		Dependencies: dependencies,
	}

	err := app.writeJSON(w, httpStatus, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(app.openapi)
}
