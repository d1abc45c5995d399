package booking

import (
	"context"
	"errors"
	"log/slog"

	"github.com/metinatakli/cinema-booking-core/internal/domain"
)

type ConfirmationResult struct {
	Outcome domain.CallbackOutcome
	HoldID  string
	Ticket  *domain.Ticket
	// Reason is set when Outcome is CallbackReconciled.
	Reason domain.ReconciliationReason
}

// ConfirmationHandler authenticates gateway callbacks and moves the referenced
// hold to its next state.
type ConfirmationHandler struct {
	provider     domain.PaymentProvider
	payments     domain.PaymentRepository
	orchestrator *Orchestrator
	logger       *slog.Logger
}

func NewConfirmationHandler(
	provider domain.PaymentProvider,
	payments domain.PaymentRepository,
	orchestrator *Orchestrator,
	logger *slog.Logger) *ConfirmationHandler {

	return &ConfirmationHandler{
		provider:     provider,
		payments:     payments,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// ConfirmPaymentCallback never acts on a payload it could not verify.
func (h *ConfirmationHandler) ConfirmPaymentCallback(
	ctx context.Context,
	payload []byte,
	signature string) (*ConfirmationResult, error) {

	callback, err := h.provider.VerifyCallback(payload, signature)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected payment callback", "security", true, "error", err)
		return nil, err
	}

	result := &ConfirmationResult{
		Outcome: callback.Outcome,
		HoldID:  callback.HoldID,
	}

	if callback.HoldID == "" && callback.Outcome != domain.CallbackIgnored {
		h.logger.WarnContext(ctx, "payment callback without hold reference", "eventId", callback.EventID)
		result.Outcome = domain.CallbackIgnored
		return result, nil
	}

	switch callback.Outcome {
	case domain.CallbackSucceeded:
		ticket, err := h.orchestrator.Promote(ctx, PromoteInput{
			HoldID:      callback.HoldID,
			HolderID:    callback.HolderID,
			Amount:      callback.Amount,
			Currency:    callback.Currency,
			Method:      domain.PaymentMethodCard,
			ProviderRef: callback.ProviderRef,
		})

		// the record is durable, so a retry from the gateway would change nothing
		var reconciled *domain.ReconciledError
		if errors.As(err, &reconciled) {
			result.Outcome = domain.CallbackReconciled
			result.Reason = reconciled.Reason
			return result, nil
		}

		if err != nil {
			return nil, err
		}

		result.Ticket = ticket

	case domain.CallbackFailed:
		if err := h.payments.MarkFailed(ctx, callback.HoldID, "payment was not completed"); err != nil {
			return nil, err
		}

		if err := h.orchestrator.Release(ctx, callback.HoldID); err != nil {
			// the hold still expires on its own
			h.logger.WarnContext(ctx, "failed to release hold after payment failure",
				"holdId", callback.HoldID, "error", err)
		}

	default:
		h.logger.DebugContext(ctx, "ignoring payment callback", "eventId", callback.EventID)
	}

	return result, nil
}
