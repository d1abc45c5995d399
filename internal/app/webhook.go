package app

import (
	"io"
	"net/http"

	"github.com/metinatakli/cinema-booking-core/api"
)

const maxWebhookBytes = 65536

// PaymentWebhook answers 2xx only once the callback has been fully
// applied or durably recorded for reconciliation, so the gateway keeps
// redelivering until then.
func (app *Application) PaymentWebhook(w http.ResponseWriter, r *http.Request, params api.PaymentWebhookParams) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBytes)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	result, err := app.confirmations.ConfirmPaymentCallback(r.Context(), payload, params.StripeSignature)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	resp := api.WebhookResponse{
		Outcome: string(result.Outcome),
		HoldId:  result.HoldID,
	}

	if result.Ticket != nil {
		resp.TicketId = &result.Ticket.ID
	}

	if result.Reason != "" {
		reason := string(result.Reason)
		resp.Reason = &reason
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
