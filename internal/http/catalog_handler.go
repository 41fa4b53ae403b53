package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/foodexpress/storefront/internal/catalog"
)

// StaleDataHeader is set when a response shows previous data because the
// underlying fetch failed or came back empty.
const StaleDataHeader = "X-Stale-Data"

type CatalogHandler struct {
	timeout time.Duration
}

func NewCatalogHandler(timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{timeout: timeout}
}

// ListVendors reloads the vendor list and returns the subset matching the
// optional search term. A stale read is not an error: the previous list
// is served with the stale marker header set.
func (h *CatalogHandler) ListVendors(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	state := getClientState(r.Context())
	if state == nil {
		respondError(w, http.StatusInternalServerError, "no_session", "session state missing")
		return
	}

	state.Selector.SetSearch(r.URL.Query().Get("search"))

	if err := state.Selector.LoadVendors(ctx); err != nil {
		var stale *catalog.StaleReadWarning
		if !errors.As(err, &stale) {
			respondError(w, http.StatusInternalServerError, "vendor_load_failed", err.Error())
			return
		}
		log.Printf("serving stale vendor list: %v", stale)
		w.Header().Set(StaleDataHeader, "true")
	}

	respondJSON(w, http.StatusOK, state.Selector.VisibleVendors())
}

// SelectVendor picks a vendor from the loaded list and fetches its items.
func (h *CatalogHandler) SelectVendor(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	state := getClientState(r.Context())
	if state == nil {
		respondError(w, http.StatusInternalServerError, "no_session", "session state missing")
		return
	}

	vendorID := chi.URLParam(r, "vendor_id")
	vendor, ok := state.Selector.VendorByID(vendorID)
	if !ok {
		respondError(w, http.StatusNotFound, "vendor_not_found", "vendor is not in the loaded list")
		return
	}

	if err := state.Selector.SelectVendor(ctx, vendor); err != nil {
		var stale *catalog.StaleReadWarning
		if !errors.As(err, &stale) {
			respondError(w, http.StatusInternalServerError, "item_load_failed", err.Error())
			return
		}
		log.Printf("serving stale item list for vendor %s: %v", vendorID, stale)
		w.Header().Set(StaleDataHeader, "true")
	}

	respondJSON(w, http.StatusOK, state.Selector.VisibleItems())
}

// DeselectVendor navigates back to the vendor list.
func (h *CatalogHandler) DeselectVendor(w http.ResponseWriter, r *http.Request) {
	state := getClientState(r.Context())
	if state == nil {
		respondError(w, http.StatusInternalServerError, "no_session", "session state missing")
		return
	}

	state.Selector.ClearSelection()
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListItems returns the selected vendor's items matching the optional
// search term.
func (h *CatalogHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	state := getClientState(r.Context())
	if state == nil {
		respondError(w, http.StatusInternalServerError, "no_session", "session state missing")
		return
	}

	if _, ok := state.Selector.Selected(); !ok {
		respondError(w, http.StatusConflict, "no_vendor_selected", "select a vendor first")
		return
	}

	state.Selector.SetSearch(r.URL.Query().Get("search"))
	respondJSON(w, http.StatusOK, state.Selector.VisibleItems())
}
