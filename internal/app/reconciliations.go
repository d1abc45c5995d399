package app

import (
	"net/http"

	"github.com/metinatakli/cinema-booking-core/api"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
)

type paginationParams struct {
	Page     int `validate:"gte=1,lte=1000"`
	PageSize int `validate:"gte=1,lte=100"`
}

func (app *Application) ListReconciliations(w http.ResponseWriter, r *http.Request, query api.ListReconciliationsParams) {
	page, pageSize := 1, 20

	if query.Page != nil {
		page = *query.Page
	}

	if query.PageSize != nil {
		pageSize = *query.PageSize
	}

	err := app.validator.Struct(paginationParams{Page: page, PageSize: pageSize})
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	records, metadata, err := app.bookings.ListReconciliations(r.Context(), domain.Pagination{
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ReconciliationListResponse{
		Reconciliations: make([]api.Reconciliation, len(records)),
	}

	for i, rec := range records {
		resp.Reconciliations[i] = api.Reconciliation{
			Id:          rec.ID,
			HoldId:      rec.HoldID,
			HolderId:    rec.HolderID,
			ShowtimeId:  rec.ShowtimeID,
			Reason:      string(rec.Reason),
			Amount:      rec.Amount,
			Currency:    rec.Currency,
			ProviderRef: rec.ProviderRef,
			Detail:      rec.Detail,
			Status:      string(rec.Status),
			CreatedAt:   rec.CreatedAt,
		}
	}

	if metadata != nil {
		resp.Metadata = &api.Metadata{
			CurrentPage:  metadata.CurrentPage,
			FirstPage:    metadata.FirstPage,
			LastPage:     metadata.LastPage,
			PageSize:     metadata.PageSize,
			TotalRecords: metadata.TotalRecords,
		}
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) ResolveReconciliation(w http.ResponseWriter, r *http.Request, id int) {
	if id < 1 {
		app.badRequestResponse(w, r, errInvalidID("reconciliationId"))
		return
	}

	err := app.bookings.ResolveReconciliation(r.Context(), id)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
