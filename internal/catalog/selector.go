package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/foodexpress/storefront/internal/domain"
)

// Source produces catalog data. The storefront treats it as an opaque
// remote collaborator; implementations live in internal/repository and
// the cached decorator in this package.
type Source interface {
	FetchVendors(ctx context.Context) ([]domain.Vendor, error)
	FetchItems(ctx context.Context, vendorID string) ([]domain.CatalogItem, error)
}

// StaleReadWarning signals that a fetch failed or came back empty and the
// selector kept its previous data instead of clearing it. Callers may
// surface it or ignore it; the displayed catalog stays usable either way.
type StaleReadWarning struct {
	Resource string
	Cause    error
}

func (w *StaleReadWarning) Error() string {
	if w.Cause == nil {
		return fmt.Sprintf("%s fetch returned nothing, showing previous data", w.Resource)
	}
	return fmt.Sprintf("%s fetch failed, showing previous data: %v", w.Resource, w.Cause)
}

func (w *StaleReadWarning) Unwrap() error {
	return w.Cause
}

// Selector holds the vendor list, the chosen vendor and its items, and
// the search term. Filtering is pure and recomputed on every read.
type Selector struct {
	mu       sync.Mutex
	source   Source
	vendors  []domain.Vendor
	selected *domain.Vendor
	items    []domain.CatalogItem
	search   string
}

func NewSelector(source Source) *Selector {
	return &Selector{source: source}
}

// LoadVendors replaces the vendor collection wholesale. Cart and checkout
// state are untouched. A failed or empty fetch keeps the previous list
// and returns a *StaleReadWarning.
func (s *Selector) LoadVendors(ctx context.Context) error {
	vendors, err := s.source.FetchVendors(ctx)
	if err != nil || len(vendors) == 0 {
		return &StaleReadWarning{Resource: "vendors", Cause: err}
	}

	s.mu.Lock()
	s.vendors = vendors
	s.mu.Unlock()
	return nil
}

// SelectVendor marks v as the active vendor and fetches its items. Any
// vendor from the loaded set is acceptable; no validation happens here.
// If the item fetch fails the selection still takes effect and the
// previous item collection stays visible.
func (s *Selector) SelectVendor(ctx context.Context, v domain.Vendor) error {
	s.mu.Lock()
	s.selected = &v
	s.mu.Unlock()

	items, err := s.source.FetchItems(ctx, v.ID)
	if err != nil || len(items) == 0 {
		return &StaleReadWarning{Resource: "items", Cause: err}
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// ClearSelection navigates back to the vendor list.
func (s *Selector) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
	s.items = nil
}

func (s *Selector) Selected() (domain.Vendor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return domain.Vendor{}, false
	}
	return *s.selected, true
}

// VendorByID looks a vendor up in the loaded list.
func (s *Selector) VendorByID(id string) (domain.Vendor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.vendors {
		if v.ID == id {
			return v, true
		}
	}
	return domain.Vendor{}, false
}

// ItemByID looks an item up in the selected vendor's catalog.
func (s *Selector) ItemByID(id string) (domain.CatalogItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return domain.CatalogItem{}, false
}

func (s *Selector) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = term
}

func (s *Selector) Search() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search
}

// VisibleVendors returns the vendors whose name contains the search term
// as a case-insensitive substring. An empty term yields the full list.
func (s *Selector) VisibleVendors() []domain.Vendor {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Vendor, 0, len(s.vendors))
	for _, v := range s.vendors {
		if matches(v.Name, s.search) {
			out = append(out, v)
		}
	}
	return out
}

// VisibleItems is the same filter over the selected vendor's items.
func (s *Selector) VisibleItems() []domain.CatalogItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.CatalogItem, 0, len(s.items))
	for _, it := range s.items {
		if matches(it.Name, s.search) {
			out = append(out, it)
		}
	}
	return out
}

func matches(name, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(term))
}
