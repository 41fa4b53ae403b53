package session

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/foodexpress/storefront/internal/domain"
)

// DefaultResetDelay is how long the confirmation screen stays up before
// the session drops back to browsing.
const DefaultResetDelay = 3 * time.Second

// OrderWriter is the persistence collaborator the session submits to.
// The two writes are sequential and dependent: lines are only written
// after the header insert returned an id. They are not wrapped in a
// distributed transaction; a crash between them can leave a header with
// no lines.
type OrderWriter interface {
	CreateOrder(ctx context.Context, sub domain.OrderSubmission) (uuid.UUID, error)
	CreateOrderLines(ctx context.Context, orderID uuid.UUID, lines []domain.OrderLine) error
}

// Notifier is told about placed orders after the store writes succeed.
// Failures are logged and never affect the submission outcome.
type Notifier interface {
	NotifyOrderPlaced(ctx context.Context, orderID uuid.UUID, sub domain.OrderSubmission) error
}

// SubmitResult discriminates the three ways a submission can end once
// validation has passed.
type SubmitResult string

const (
	ResultSubmitted    SubmitResult = "SUBMITTED"
	ResultHeaderFailed SubmitResult = "HEADER_FAILED"
	ResultLinesFailed  SubmitResult = "LINES_FAILED"
)

// Outcome of a Submit call. For ResultLinesFailed the order header exists
// in the store (OrderID is set) but the line insert failed; LinesErr
// carries the cause so callers can decide how to surface it.
type Outcome struct {
	Result   SubmitResult
	OrderID  uuid.UUID
	LinesErr error
}

// Session owns the cart ledger, the checkout phase and the customer form
// draft for one user interaction. It is safe for concurrent use; all cart
// mutation is serialized behind one mutex.
type Session struct {
	mu       sync.Mutex
	cart     []domain.CartLine
	phase    domain.Phase
	customer domain.CustomerInfo

	writer     OrderWriter
	notifier   Notifier
	resetDelay time.Duration
	resetTimer *time.Timer
	closed     bool
}

// New creates an empty browsing session. notifier may be nil. A
// non-positive resetDelay falls back to DefaultResetDelay.
func New(writer OrderWriter, notifier Notifier, resetDelay time.Duration) *Session {
	if resetDelay <= 0 {
		resetDelay = DefaultResetDelay
	}
	return &Session{
		phase:      domain.PhaseBrowsing,
		writer:     writer,
		notifier:   notifier,
		resetDelay: resetDelay,
	}
}

// AddToCart merges the item into the ledger: an existing line for the
// same item id gets its quantity bumped, otherwise a new line with
// quantity 1 is appended. Insertion order is preserved for display.
func (s *Session) AddToCart(item domain.CatalogItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		if s.cart[i].Item.ID == item.ID {
			s.cart[i].Quantity++
			return
		}
	}
	s.cart = append(s.cart, domain.CartLine{Item: item, Quantity: 1})
}

// AdjustQuantity applies delta to the line for itemID, clamping at zero;
// a line that reaches zero is removed outright. Unknown ids are a no-op.
func (s *Session) AdjustQuantity(itemID string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		if s.cart[i].Item.ID != itemID {
			continue
		}
		q := s.cart[i].Quantity + delta
		if q <= 0 {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
		} else {
			s.cart[i].Quantity = q
		}
		return
	}
}

// Lines returns a copy of the cart in insertion order.
func (s *Session) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.CartLine, len(s.cart))
	copy(out, s.cart)
	return out
}

// ItemCount is the summed quantity across all lines (the cart badge).
func (s *Session) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, l := range s.cart {
		n += l.Quantity
	}
	return n
}

// Total sums price times quantity over all lines at full float64
// precision. Rounding is a display concern, see DisplayTotal.
func (s *Session) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalLocked()
}

func (s *Session) totalLocked() float64 {
	sum := 0.0
	for _, l := range s.cart {
		sum += l.Subtotal()
	}
	return sum
}

// DisplayTotal is the total formatted to two decimals.
func (s *Session) DisplayTotal() string {
	return domain.FormatAmount(s.Total())
}

func (s *Session) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Customer returns the current form draft.
func (s *Session) Customer() domain.CustomerInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customer
}

// SetCustomerField writes one field of the draft. No validation happens
// at write time; Submit checks the full form.
func (s *Session) SetCustomerField(field domain.CustomerField, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customer.SetField(field, value)
}

func (s *Session) OpenCart() error { return s.transition(domain.PhaseCartOpen) }

func (s *Session) CloseCart() error { return s.transition(domain.PhaseBrowsing) }

func (s *Session) OpenCheckout() error { return s.transition(domain.PhaseCheckout) }

// CloseCheckout backs out to browsing. The cart and the customer draft
// survive, so reopening resumes where the user left off.
func (s *Session) CloseCheckout() error { return s.transition(domain.PhaseBrowsing) }

func (s *Session) transition(next domain.Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if !s.phase.CanTransitionTo(next) {
		return ErrIllegalTransition
	}
	s.phase = next
	return nil
}

// Submit validates the customer form, builds the order snapshot and
// performs the two dependent store writes. On full success the cart is
// cleared, the phase moves to Confirmed and the auto-reset timer starts.
//
// A failed or id-less header insert returns a *SubmissionError and leaves
// cart, draft and phase untouched so the user can retry. A failed line
// insert after a created header is the documented accepted inconsistency:
// the order counts as placed and the outcome reports ResultLinesFailed.
func (s *Session) Submit(ctx context.Context) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.phase != domain.PhaseCheckout {
		return nil, ErrNotInCheckout
	}
	if missing := s.missingFields(); len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	sub := s.buildSubmission()

	orderID, err := s.writer.CreateOrder(ctx, sub)
	if err != nil {
		return &Outcome{Result: ResultHeaderFailed}, &SubmissionError{Cause: err}
	}
	if orderID == uuid.Nil {
		return &Outcome{Result: ResultHeaderFailed}, &SubmissionError{Cause: ErrNoOrderID}
	}

	outcome := &Outcome{Result: ResultSubmitted, OrderID: orderID}
	if err := s.writer.CreateOrderLines(ctx, orderID, sub.Lines); err != nil {
		outcome.Result = ResultLinesFailed
		outcome.LinesErr = err
	}

	s.cart = nil
	s.phase = domain.PhaseConfirmed
	s.scheduleResetLocked()

	if s.notifier != nil {
		go func() {
			nctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.notifier.NotifyOrderPlaced(nctx, orderID, sub); err != nil {
				log.Printf("order placed notification failed: %v", err)
			}
		}()
	}

	return outcome, nil
}

func (s *Session) missingFields() []domain.CustomerField {
	var missing []domain.CustomerField
	for _, f := range []domain.CustomerField{
		domain.FieldName, domain.FieldEmail, domain.FieldPhone, domain.FieldAddress,
	} {
		if strings.TrimSpace(s.customer.Field(f)) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

func (s *Session) buildSubmission() domain.OrderSubmission {
	lines := make([]domain.OrderLine, 0, len(s.cart))
	for _, l := range s.cart {
		lines = append(lines, domain.OrderLine{
			ItemID:    l.Item.ID,
			Quantity:  l.Quantity,
			UnitPrice: l.Item.Price,
		})
	}
	return domain.OrderSubmission{
		CustomerName:    s.customer.Name,
		CustomerEmail:   s.customer.Email,
		CustomerPhone:   s.customer.Phone,
		DeliveryAddress: s.customer.Address,
		Total:           s.totalLocked(),
		Status:          domain.OrderStatusPending,
		Lines:           lines,
		CapturedAt:      time.Now().UTC(),
	}
}

func (s *Session) scheduleResetLocked() {
	if s.resetTimer != nil {
		s.resetTimer.Stop()
	}
	s.resetTimer = time.AfterFunc(s.resetDelay, s.reset)
}

// reset is the timer-driven Confirmed -> Browsing transition: the
// confirmation screen expires and the customer draft is wiped.
func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.phase != domain.PhaseConfirmed {
		return
	}
	s.phase = domain.PhaseBrowsing
	s.customer = domain.CustomerInfo{}
}

// Close tears the session down and cancels a pending auto-reset so the
// timer cannot mutate a discarded session.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
}
