package main

import (
	"log/slog"
	"os"

	"github.com/metinatakli/cinema-booking-core/internal/app"
)

func main() {
	err := app.Run()
	if err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
