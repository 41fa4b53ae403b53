package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/foodexpress/storefront/internal/catalog"
	"github.com/foodexpress/storefront/internal/domain"
	"github.com/foodexpress/storefront/internal/session"
)

type stubSource struct {
	vendors []domain.Vendor
	items   map[string][]domain.CatalogItem
	err     error
}

func (s *stubSource) FetchVendors(context.Context) ([]domain.Vendor, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vendors, nil
}

func (s *stubSource) FetchItems(_ context.Context, vendorID string) ([]domain.CatalogItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.items[vendorID], nil
}

type stubWriter struct {
	orderID   uuid.UUID
	headerErr error
	lines     []domain.OrderLine
}

func (w *stubWriter) CreateOrder(context.Context, domain.OrderSubmission) (uuid.UUID, error) {
	if w.headerErr != nil {
		return uuid.Nil, w.headerErr
	}
	return w.orderID, nil
}

func (w *stubWriter) CreateOrderLines(_ context.Context, _ uuid.UUID, lines []domain.OrderLine) error {
	w.lines = lines
	return nil
}

func stubCatalog() *stubSource {
	return &stubSource{
		vendors: []domain.Vendor{{ID: "v1", Name: "Pizza Palace"}},
		items: map[string][]domain.CatalogItem{
			"v1": {
				{ID: "i1", VendorID: "v1", Name: "Margherita", Price: 9.99},
				{ID: "i2", VendorID: "v1", Name: "Garlic Bread", Price: 3.50},
			},
		},
	}
}

// newTestState builds a client state with a selected vendor so cart
// operations have a catalog to pull items from.
func newTestState(t *testing.T, writer session.OrderWriter) *ClientState {
	t.Helper()

	state := &ClientState{
		Selector: catalog.NewSelector(stubCatalog()),
		Session:  session.New(writer, nil, time.Hour),
	}
	t.Cleanup(state.Session.Close)

	if err := state.Selector.LoadVendors(context.Background()); err != nil {
		t.Fatalf("load vendors: %v", err)
	}
	v, ok := state.Selector.VendorByID("v1")
	if !ok {
		t.Fatal("vendor v1 missing")
	}
	if err := state.Selector.SelectVendor(context.Background(), v); err != nil {
		t.Fatalf("select vendor: %v", err)
	}
	return state
}

func withState(r *http.Request, state *ClientState) *http.Request {
	ctx := context.WithValue(r.Context(), "client_state", state)
	return r.WithContext(ctx)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func fillCheckout(t *testing.T, state *ClientState) {
	t.Helper()
	state.Session.AddToCart(domain.CatalogItem{ID: "i1", Price: 9.99})
	state.Session.SetCustomerField(domain.FieldName, "Ada Lovelace")
	state.Session.SetCustomerField(domain.FieldEmail, "ada@example.com")
	state.Session.SetCustomerField(domain.FieldPhone, "+1-555-0101")
	state.Session.SetCustomerField(domain.FieldAddress, "12 Analytical Way")
	if err := state.Session.OpenCart(); err != nil {
		t.Fatalf("open cart: %v", err)
	}
	if err := state.Session.OpenCheckout(); err != nil {
		t.Fatalf("open checkout: %v", err)
	}
}

func TestAddItem_Success(t *testing.T) {
	state := newTestState(t, &stubWriter{orderID: uuid.New()})
	handler := NewSessionHandler(5 * time.Second)

	body, _ := json.Marshal(AddItemRequestDTO{ItemID: "i1"})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/cart/items", bytes.NewReader(body))
	request = withState(request, state)

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Errorf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}

	var response CartResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Lines) != 1 {
		t.Fatalf("Expected 1 cart line, got %d", len(response.Lines))
	}
	if response.Total != "9.99" {
		t.Errorf("Expected total 9.99, got %s", response.Total)
	}
}

func TestAddItem_UnknownItem(t *testing.T) {
	state := newTestState(t, &stubWriter{orderID: uuid.New()})
	handler := NewSessionHandler(5 * time.Second)

	body, _ := json.Marshal(AddItemRequestDTO{ItemID: "nope"})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/cart/items", bytes.NewReader(body))
	request = withState(request, state)

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}
	if len(state.Session.Lines()) != 0 {
		t.Errorf("Expected empty cart, got %d lines", len(state.Session.Lines()))
	}
}

func TestAdjustQuantity_RemovesLineAtZero(t *testing.T) {
	state := newTestState(t, &stubWriter{orderID: uuid.New()})
	handler := NewSessionHandler(5 * time.Second)

	item, _ := state.Selector.ItemByID("i1")
	state.Session.AddToCart(item)
	state.Session.AddToCart(item)

	body, _ := json.Marshal(AdjustQuantityRequestDTO{Delta: -2})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("PUT", "/api/v1/cart/items/i1", bytes.NewReader(body))
	request = withState(request, state)
	request = withURLParam(request, "item_id", "i1")

	handler.AdjustQuantity(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if len(state.Session.Lines()) != 0 {
		t.Errorf("Expected line removed, got %d lines", len(state.Session.Lines()))
	}
}

func TestOpenCheckout_IllegalFromBrowsing(t *testing.T) {
	state := newTestState(t, &stubWriter{orderID: uuid.New()})
	handler := NewSessionHandler(5 * time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/checkout/open", nil)
	request = withState(request, state)

	handler.OpenCheckout(recorder, request)

	if recorder.Code != http.StatusConflict {
		t.Errorf("Expected status code %d, got %d", http.StatusConflict, recorder.Code)
	}
}

func TestSetCustomerField_RejectsUnknownField(t *testing.T) {
	state := newTestState(t, &stubWriter{orderID: uuid.New()})
	handler := NewSessionHandler(5 * time.Second)

	body, _ := json.Marshal(CustomerFieldRequestDTO{Field: "favourite_color", Value: "orange"})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("PUT", "/api/v1/checkout/customer", bytes.NewReader(body))
	request = withState(request, state)

	handler.SetCustomerField(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestSubmit_Success(t *testing.T) {
	orderID := uuid.New()
	state := newTestState(t, &stubWriter{orderID: orderID})
	handler := NewSessionHandler(5 * time.Second)
	fillCheckout(t, state)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/checkout/submit", nil)
	request = withState(request, state)

	handler.Submit(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("Expected status code %d, got %d: %s", http.StatusCreated, recorder.Code, recorder.Body.String())
	}

	var response SubmitResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Result != string(session.ResultSubmitted) {
		t.Errorf("Expected result %s, got %s", session.ResultSubmitted, response.Result)
	}
	if response.OrderID != orderID.String() {
		t.Errorf("Expected order id %s, got %s", orderID, response.OrderID)
	}
	if state.Session.Phase() != domain.PhaseConfirmed {
		t.Errorf("Expected phase %s, got %s", domain.PhaseConfirmed, state.Session.Phase())
	}
}

func TestSubmit_ValidationFailureIs422(t *testing.T) {
	state := newTestState(t, &stubWriter{orderID: uuid.New()})
	handler := NewSessionHandler(5 * time.Second)

	state.Session.AddToCart(domain.CatalogItem{ID: "i1", Price: 9.99})
	if err := state.Session.OpenCart(); err != nil {
		t.Fatalf("open cart: %v", err)
	}
	if err := state.Session.OpenCheckout(); err != nil {
		t.Fatalf("open checkout: %v", err)
	}

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/checkout/submit", nil)
	request = withState(request, state)

	handler.Submit(recorder, request)

	if recorder.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status code %d, got %d", http.StatusUnprocessableEntity, recorder.Code)
	}

	var response map[string]any
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	missing, ok := response["missing"].([]any)
	if !ok || len(missing) != 4 {
		t.Errorf("Expected 4 missing fields, got %v", response["missing"])
	}
}

func TestSubmit_HeaderFailureIs502(t *testing.T) {
	state := newTestState(t, &stubWriter{headerErr: errors.New("store unreachable")})
	handler := NewSessionHandler(5 * time.Second)
	fillCheckout(t, state)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/checkout/submit", nil)
	request = withState(request, state)

	handler.Submit(recorder, request)

	if recorder.Code != http.StatusBadGateway {
		t.Errorf("Expected status code %d, got %d", http.StatusBadGateway, recorder.Code)
	}
	if state.Session.Phase() != domain.PhaseCheckout {
		t.Errorf("Expected phase preserved at %s, got %s", domain.PhaseCheckout, state.Session.Phase())
	}
}

func TestSubmit_OutsideCheckoutIs409(t *testing.T) {
	state := newTestState(t, &stubWriter{orderID: uuid.New()})
	handler := NewSessionHandler(5 * time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/checkout/submit", nil)
	request = withState(request, state)

	handler.Submit(recorder, request)

	if recorder.Code != http.StatusConflict {
		t.Errorf("Expected status code %d, got %d", http.StatusConflict, recorder.Code)
	}
}
