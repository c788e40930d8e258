package http

import (
	"context"
	"net/http"

	"github.com/cimillas/pro-portal/services/api/internal/adapter"
	"github.com/cimillas/pro-portal/services/api/internal/domain"
)

// OfferCatalog backs the offer list around the wizard. *adapter.Adapters
// satisfies it.
type OfferCatalog interface {
	GetFilteredOffers(ctx context.Context, filters domain.OfferFilters) adapter.Result[[]domain.Offer]
	DeleteDraftOffers(ctx context.Context, ids []string, count int) adapter.Result[struct{}]
	GetUserHasBookings(ctx context.Context) adapter.Result[bool]
}

// HandleListOffers serves GET /offers with the list filters as query
// parameters.
func HandleListOffers(catalog OfferCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		if _, ok := requireUser(w, r); !ok {
			return
		}
		q := r.URL.Query()
		res := catalog.GetFilteredOffers(r.Context(), domain.OfferFilters{
			NameOrISBN:          q.Get("nameOrIsbn"),
			OffererID:           q.Get("offererId"),
			VenueID:             q.Get("venueId"),
			CategoryID:          q.Get("categoryId"),
			Status:              q.Get("status"),
			CreationMode:        q.Get("creationMode"),
			PeriodBeginningDate: q.Get("periodBeginningDate"),
			PeriodEndingDate:    q.Get("periodEndingDate"),
		})
		writeResult(w, res.IsOk, res)
	}
}

// HandleDeleteDrafts serves POST /offers/drafts/delete.
func HandleDeleteDrafts(catalog OfferCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		if _, ok := requireUser(w, r); !ok {
			return
		}
		var req deleteDraftsRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if len(req.IDs) == 0 {
			writeError(w, http.StatusBadRequest, codeOfferRequired, domain.ErrOfferRequired.Error())
			return
		}
		res := catalog.DeleteDraftOffers(r.Context(), req.IDs, len(req.IDs))
		writeResult(w, res.IsOk, res)
	}
}

// HandleUserHasBookings serves GET /offers/has-bookings.
func HandleUserHasBookings(catalog OfferCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		if _, ok := requireUser(w, r); !ok {
			return
		}
		res := catalog.GetUserHasBookings(r.Context())
		writeResult(w, res.IsOk, res)
	}
}

// writeResult sends an adapter Result as is; a failed one is a 502 since
// the backend is the party that failed.
func writeResult(w http.ResponseWriter, ok bool, res any) {
	status := http.StatusOK
	if !ok {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, res)
}

type deleteDraftsRequest struct {
	IDs []string `json:"ids"`
}
