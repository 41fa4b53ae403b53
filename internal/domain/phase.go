package domain

// Phase of the shopping session.
type Phase string

const (
	PhaseBrowsing  Phase = "BROWSING"
	PhaseCartOpen  Phase = "CART_OPEN"
	PhaseCheckout  Phase = "CHECKOUT"
	PhaseConfirmed Phase = "CONFIRMED"
)

// legalTransitions is the full phase machine:
//
//	Browsing  --openCart-->      CartOpen
//	CartOpen  --closeCart-->     Browsing
//	CartOpen  --openCheckout-->  Checkout
//	Checkout  --closeCheckout--> Browsing
//	Checkout  --submit-->        Confirmed
//	Confirmed --timer-->         Browsing
var legalTransitions = map[Phase][]Phase{
	PhaseBrowsing:  {PhaseCartOpen},
	PhaseCartOpen:  {PhaseBrowsing, PhaseCheckout},
	PhaseCheckout:  {PhaseBrowsing, PhaseConfirmed},
	PhaseConfirmed: {PhaseBrowsing},
}

func (p Phase) CanTransitionTo(next Phase) bool {
	for _, allowed := range legalTransitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the phase ends user-driven progression;
// only the reset timer leaves Confirmed.
func (p Phase) IsTerminal() bool {
	return p == PhaseConfirmed
}

// String representation (for logging)
func (p Phase) String() string {
	return string(p)
}
