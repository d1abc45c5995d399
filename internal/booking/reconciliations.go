package booking

import (
	"context"

	"github.com/metinatakli/cinema-booking-core/internal/domain"
)

func (o *Orchestrator) ListReconciliations(
	ctx context.Context,
	pagination domain.Pagination) ([]domain.Reconciliation, *domain.Metadata, error) {

	return o.reconciliations.ListOpen(ctx, pagination)
}

// ResolveReconciliation marks a record as handled by an operator. Refunds
// happen outside this service.
func (o *Orchestrator) ResolveReconciliation(ctx context.Context, id int) error {
	if err := o.reconciliations.Resolve(ctx, id); err != nil {
		return err
	}

	o.logger.InfoContext(ctx, "reconciliation resolved", "reconciliationId", id)

	return nil
}
