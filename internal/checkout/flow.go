package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"genwear/internal/cart"
	"genwear/internal/domain"
	"genwear/internal/service/order"
	"genwear/internal/validation"

	validatorv10 "github.com/go-playground/validator/v10"
)

// State tracks one checkout attempt through the flow.
type State int

const (
	// StateCollecting: the shipping form is editable.
	StateCollecting State = iota
	// StateAwaitingPayment: card entry is up; cash-on-delivery never
	// enters this state.
	StateAwaitingPayment
	// StateSubmitting: the order-creation request is in flight and the
	// submit affordance is disabled.
	StateSubmitting
	// StateSucceeded: the order was created; submission stays disabled
	// and the flow schedules a redirect.
	StateSucceeded
	// StateFailed: payment or order creation failed; the cart is intact
	// and retry is allowed.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCollecting:
		return "collecting"
	case StateAwaitingPayment:
		return "awaiting_payment"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrSubmitInFlight rejects a second submit while one is running.
	ErrSubmitInFlight = errors.New("checkout already submitting")
	// ErrAlreadyCompleted rejects submits after a successful order.
	ErrAlreadyCompleted = errors.New("checkout already completed")
	// ErrEmptyCart rejects checkout with nothing in the cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrCardRequired rejects a card checkout without card details.
	ErrCardRequired = errors.New("card details required")
)

// Confirmation is the success payload of an order-creation call.
type Confirmation struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
}

// Result is what a successful checkout hands back to the caller: the
// confirmation plus how long to show it before redirecting away.
type Result struct {
	Confirmation
	RedirectAfter time.Duration
}

// OrderPlacer issues the single order-creation request.
type OrderPlacer interface {
	Place(ctx context.Context, in order.CreateInput) (Confirmation, error)
}

// ShippingForm is the checkout shipping input.
type ShippingForm = order.AddressInput

// Flow runs one checkout attempt against a cart engine: collect shipping
// and payment input, authorize card payments through the provider, place
// exactly one order, then clear the cart.
type Flow struct {
	mu            sync.Mutex
	engine        *cart.Engine
	payments      PaymentProvider
	orders        OrderPlacer
	validate      *validatorv10.Validate
	redirectDelay time.Duration

	state  State
	errMsg string
	result *Result
}

// NewFlow builds a Flow in the Collecting state.
func NewFlow(engine *cart.Engine, payments PaymentProvider, orders OrderPlacer, redirectDelay time.Duration) *Flow {
	return &Flow{
		engine:        engine,
		payments:      payments,
		orders:        orders,
		validate:      validation.New(),
		redirectDelay: redirectDelay,
		state:         StateCollecting,
	}
}

// State returns the current flow state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// ErrorMessage returns the message surfaced by the last failure, empty when
// none.
func (f *Flow) ErrorMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}

// Result returns the confirmation after a successful submit, nil before.
func (f *Flow) Result() *Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// Submit runs the checkout once. Card payments pass through the payment
// provider first; cash-on-delivery goes straight to order creation. Any
// failure leaves the cart untouched so the user can retry; after the first
// success further submits are rejected.
func (f *Flow) Submit(ctx context.Context, form ShippingForm, method domain.PaymentMethod, card *Card) (*Result, error) {
	snap, err := f.begin(form, method, card)
	if err != nil {
		return nil, err
	}

	if method == domain.PaymentCard {
		f.setState(StateAwaitingPayment)
		if err := f.payments.Authorize(ctx, snap.TotalCents, *card); err != nil {
			f.fail(err)
			return nil, err
		}
	}

	f.setState(StateSubmitting)
	in := order.CreateInput{
		TotalCents:      snap.TotalCents,
		DiscountCents:   snap.DiscountCents,
		DiscountCode:    snap.DiscountCode,
		ShippingAddress: form,
		PaymentMethod:   string(method),
	}
	for _, l := range snap.Lines {
		in.Items = append(in.Items, order.ItemInput{
			ProductID:  l.ProductID,
			Name:       l.Name,
			PriceCents: l.PriceCents,
			Image:      l.Image,
			Quantity:   l.Quantity,
			Size:       l.Size,
			Color:      l.Color,
			Custom:     l.Custom,
		})
	}

	conf, err := f.orders.Place(ctx, in)
	if err != nil {
		f.fail(err)
		return nil, err
	}

	f.engine.Clear(ctx)
	f.engine.RemoveDiscount()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateSucceeded
	f.errMsg = ""
	f.result = &Result{Confirmation: conf, RedirectAfter: f.redirectDelay}
	return f.result, nil
}

// begin validates the inputs and captures the cart snapshot under the
// flow's submit guard. Validation failures are inline: they change no flow
// state and set no banner message.
func (f *Flow) begin(form ShippingForm, method domain.PaymentMethod, card *Card) (cart.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StateAwaitingPayment, StateSubmitting:
		return cart.Snapshot{}, ErrSubmitInFlight
	case StateSucceeded:
		return cart.Snapshot{}, ErrAlreadyCompleted
	}

	if method != domain.PaymentCard && method != domain.PaymentCashOnDelivery {
		return cart.Snapshot{}, errors.New("unsupported payment method")
	}
	if method == domain.PaymentCard && card == nil {
		return cart.Snapshot{}, ErrCardRequired
	}
	if err := f.validate.Struct(form); err != nil {
		return cart.Snapshot{}, err
	}

	snap := f.engine.Snapshot()
	if len(snap.Lines) == 0 {
		return cart.Snapshot{}, ErrEmptyCart
	}
	return snap, nil
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// fail records the failure message and parks the flow in Failed. Failed is
// re-enterable: the next Submit runs the whole flow again.
func (f *Flow) fail(err error) {
	f.mu.Lock()
	f.state = StateFailed
	f.errMsg = err.Error()
	f.mu.Unlock()
}
