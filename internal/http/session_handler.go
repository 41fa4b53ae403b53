package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/foodexpress/storefront/internal/domain"
	"github.com/foodexpress/storefront/internal/session"
)

type SessionHandler struct {
	timeout time.Duration
}

func NewSessionHandler(timeout time.Duration) *SessionHandler {
	return &SessionHandler{timeout: timeout}
}

type AddItemRequestDTO struct {
	ItemID string `json:"item_id"`
}

type AdjustQuantityRequestDTO struct {
	Delta int `json:"delta"`
}

type CustomerFieldRequestDTO struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type CartResponseDTO struct {
	Lines     []domain.CartLine `json:"lines"`
	ItemCount int               `json:"item_count"`
	Total     string            `json:"total"`
	Phase     string            `json:"phase"`
}

type SubmitResponseDTO struct {
	Result  string `json:"result"`
	OrderID string `json:"order_id,omitempty"`
}

func (h *SessionHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	state := getClientState(r.Context())
	if state == nil {
		respondError(w, http.StatusInternalServerError, "no_session", "session state missing")
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(state))
}

// AddItem puts one unit of a catalog item into the cart. The item must
// come from the currently selected vendor's catalog; the cart captures
// its price as of now.
func (h *SessionHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	state := getClientState(r.Context())
	if state == nil {
		respondError(w, http.StatusInternalServerError, "no_session", "session state missing")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ItemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id is required")
		return
	}

	item, ok := state.Selector.ItemByID(req.ItemID)
	if !ok {
		respondError(w, http.StatusNotFound, "item_not_found", "item is not in the selected catalog")
		return
	}

	state.Session.AddToCart(item)
	respondJSON(w, http.StatusCreated, cartResponse(state))
}

// AdjustQuantity applies a signed delta to one cart line. Dropping to
// zero removes the line; unknown item ids are tolerated as a no-op.
func (h *SessionHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	state := getClientState(r.Context())
	if state == nil {
		respondError(w, http.StatusInternalServerError, "no_session", "session state missing")
		return
	}

	var req AdjustQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	state.Session.AdjustQuantity(chi.URLParam(r, "item_id"), req.Delta)
	respondJSON(w, http.StatusOK, cartResponse(state))
}

func (h *SessionHandler) OpenCart(w http.ResponseWriter, r *http.Request) {
	h.phaseChange(w, r, func(s *session.Session) error { return s.OpenCart() })
}

func (h *SessionHandler) CloseCart(w http.ResponseWriter, r *http.Request) {
	h.phaseChange(w, r, func(s *session.Session) error { return s.CloseCart() })
}

func (h *SessionHandler) OpenCheckout(w http.ResponseWriter, r *http.Request) {
	h.phaseChange(w, r, func(s *session.Session) error { return s.OpenCheckout() })
}

func (h *SessionHandler) CloseCheckout(w http.ResponseWriter, r *http.Request) {
	h.phaseChange(w, r, func(s *session.Session) error { return s.CloseCheckout() })
}

func (h *SessionHandler) phaseChange(w http.ResponseWriter, r *http.Request, op func(*session.Session) error) {
	state := getClientState(r.Context())
	if state == nil {
		respondError(w, http.StatusInternalServerError, "no_session", "session state missing")
		return
	}

	if err := op(state.Session); err != nil {
		if errors.Is(err, session.ErrIllegalTransition) {
			respondError(w, http.StatusConflict, "illegal_transition", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "phase_change_failed", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"phase": state.Session.Phase().String()})
}

// SetCustomerField writes one checkout form field. Validation happens at
// submit time, not here.
func (h *SessionHandler) SetCustomerField(w http.ResponseWriter, r *http.Request) {
	state := getClientState(r.Context())
	if state == nil {
		respondError(w, http.StatusInternalServerError, "no_session", "session state missing")
		return
	}

	var req CustomerFieldRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if !state.Session.SetCustomerField(domain.CustomerField(req.Field), req.Value) {
		respondError(w, http.StatusBadRequest, "invalid_field", "field must be one of name, email, phone, address")
		return
	}

	respondJSON(w, http.StatusOK, state.Session.Customer())
}

// Submit runs the checkout submission and maps the session's outcome
// taxonomy onto HTTP statuses: validation failures are 422, a failed
// header write is 502 (retryable, nothing changed), and a placed order is
// 201 even when the line write failed (the accepted inconsistency is
// reported in the body).
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	state := getClientState(r.Context())
	if state == nil {
		respondError(w, http.StatusInternalServerError, "no_session", "session state missing")
		return
	}

	outcome, err := state.Session.Submit(ctx)
	if err != nil {
		var vErr *session.ValidationError
		if errors.As(err, &vErr) {
			respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":   "validation_failed",
				"missing": vErr.Missing,
			})
			return
		}
		if errors.Is(err, session.ErrNotInCheckout) {
			respondError(w, http.StatusConflict, "not_in_checkout", err.Error())
			return
		}
		var sErr *session.SubmissionError
		if errors.As(err, &sErr) {
			respondError(w, http.StatusBadGateway, "submission_failed", sErr.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "submit_failed", err.Error())
		return
	}

	resp := SubmitResponseDTO{Result: string(outcome.Result)}
	if outcome.OrderID != uuid.Nil {
		resp.OrderID = outcome.OrderID.String()
	}
	respondJSON(w, http.StatusCreated, resp)
}

func cartResponse(state *ClientState) CartResponseDTO {
	lines := state.Session.Lines()
	return CartResponseDTO{
		Lines:     lines,
		ItemCount: state.Session.ItemCount(),
		Total:     state.Session.DisplayTotal(),
		Phase:     state.Session.Phase().String(),
	}
}
