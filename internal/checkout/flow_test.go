package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"genwear/internal/cart"
	"genwear/internal/domain"
	"genwear/internal/service/order"
)

type stubPlacer struct {
	mu     sync.Mutex
	calls  int
	lastIn order.CreateInput
	conf   Confirmation
	err    error

	// block, when non-nil, holds Place until closed
	block chan struct{}
}

func (s *stubPlacer) Place(_ context.Context, in order.CreateInput) (Confirmation, error) {
	s.mu.Lock()
	s.calls++
	s.lastIn = in
	block := s.block
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	if s.err != nil {
		return Confirmation{}, s.err
	}
	return s.conf, nil
}

type stubProvider struct {
	err   error
	calls int

	// block, when non-nil, holds Authorize until closed
	block chan struct{}
}

func (s *stubProvider) Authorize(_ context.Context, _ int64, _ Card) error {
	s.calls++
	if s.block != nil {
		<-s.block
	}
	return s.err
}

func shippingForm() ShippingForm {
	return ShippingForm{
		FullName:   "Ada Wong",
		Email:      "ada@example.com",
		Street:     "1 Market St",
		City:       "Springfield",
		PostalCode: "90210",
		Country:    "US",
	}
}

func loadedEngine(t *testing.T) *cart.Engine {
	t.Helper()
	e := cart.New(cart.Session{DeviceID: "dev"}, cart.NewMemoryStore(), nil, nil)
	e.Hydrate(context.Background())
	e.AddItem(context.Background(), domain.CartLine{
		ProductID:  "p1",
		Name:       "Classic Tee",
		PriceCents: 2499,
		Quantity:   1,
		Size:       "M",
	})
	e.UpdateQuantity(context.Background(), "p1", 2)
	return e
}

func TestSubmitCardSuccess(t *testing.T) {
	engine := loadedEngine(t)
	engine.ApplyDiscount("GEN101")
	provider := &stubProvider{}
	placer := &stubPlacer{conf: Confirmation{OrderID: "o1", OrderNumber: "GW-1001"}}
	flow := NewFlow(engine, provider, placer, 2500*time.Millisecond)

	card := validCard()
	res, err := flow.Submit(context.Background(), shippingForm(), domain.PaymentCard, &card)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.OrderNumber != "GW-1001" || res.RedirectAfter != 2500*time.Millisecond {
		t.Fatalf("unexpected result %+v", res)
	}
	if flow.State() != StateSucceeded {
		t.Fatalf("expected Succeeded, got %v", flow.State())
	}
	if provider.calls != 1 || placer.calls != 1 {
		t.Fatalf("expected one authorize and one place, got %d and %d", provider.calls, placer.calls)
	}

	// subtotal 4998, 10% off
	in := placer.lastIn
	if in.TotalCents != 4499 || in.DiscountCents != 499 || in.DiscountCode != "GEN101" {
		t.Fatalf("unexpected totals in order input: %+v", in)
	}
	if len(in.Items) != 1 || in.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items in order input: %+v", in.Items)
	}
	if in.PaymentMethod != "card" {
		t.Fatalf("unexpected payment method %q", in.PaymentMethod)
	}

	if engine.TotalItems() != 0 || engine.DiscountCode() != "" {
		t.Fatalf("expected cart cleared after success")
	}
}

func TestSubmitCashOnDeliverySkipsPayment(t *testing.T) {
	engine := loadedEngine(t)
	provider := &stubProvider{err: errors.New("should not be called")}
	placer := &stubPlacer{conf: Confirmation{OrderID: "o1", OrderNumber: "GW-1001"}}
	flow := NewFlow(engine, provider, placer, 0)

	if _, err := flow.Submit(context.Background(), shippingForm(), domain.PaymentCashOnDelivery, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if provider.calls != 0 {
		t.Fatalf("cod must not touch the payment provider")
	}
	if placer.lastIn.PaymentMethod != "cod" {
		t.Fatalf("unexpected payment method %q", placer.lastIn.PaymentMethod)
	}
}

func TestSubmitCardRequiresCard(t *testing.T) {
	flow := NewFlow(loadedEngine(t), &stubProvider{}, &stubPlacer{}, 0)
	_, err := flow.Submit(context.Background(), shippingForm(), domain.PaymentCard, nil)
	if !errors.Is(err, ErrCardRequired) {
		t.Fatalf("expected ErrCardRequired, got %v", err)
	}
	if flow.State() != StateCollecting {
		t.Fatalf("inline validation must not change state, got %v", flow.State())
	}
}

func TestSubmitRejectsEmptyCart(t *testing.T) {
	engine := cart.New(cart.Session{DeviceID: "dev"}, cart.NewMemoryStore(), nil, nil)
	engine.Hydrate(context.Background())
	flow := NewFlow(engine, &stubProvider{}, &stubPlacer{}, 0)

	_, err := flow.Submit(context.Background(), shippingForm(), domain.PaymentCashOnDelivery, nil)
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestSubmitRejectsInvalidForm(t *testing.T) {
	placer := &stubPlacer{}
	flow := NewFlow(loadedEngine(t), &stubProvider{}, placer, 0)

	form := shippingForm()
	form.Email = "not-an-email"
	if _, err := flow.Submit(context.Background(), form, domain.PaymentCashOnDelivery, nil); err == nil {
		t.Fatalf("expected validation error")
	}
	if placer.calls != 0 {
		t.Fatalf("invalid form must not reach order creation")
	}
	if flow.State() != StateCollecting {
		t.Fatalf("inline validation must not change state, got %v", flow.State())
	}
}

func TestPaymentDeclineKeepsCart(t *testing.T) {
	engine := loadedEngine(t)
	provider := &stubProvider{err: ErrPaymentDeclined}
	placer := &stubPlacer{}
	flow := NewFlow(engine, provider, placer, 0)

	card := validCard()
	_, err := flow.Submit(context.Background(), shippingForm(), domain.PaymentCard, &card)
	if !errors.Is(err, ErrPaymentDeclined) {
		t.Fatalf("expected ErrPaymentDeclined, got %v", err)
	}
	if placer.calls != 0 {
		t.Fatalf("declined payment must not place an order")
	}
	if flow.State() != StateFailed {
		t.Fatalf("expected Failed, got %v", flow.State())
	}
	if flow.ErrorMessage() == "" {
		t.Fatalf("expected failure message")
	}
	if engine.TotalItems() != 2 {
		t.Fatalf("cart must survive a declined payment")
	}
}

func TestOrderFailureKeepsCartAndAllowsRetry(t *testing.T) {
	engine := loadedEngine(t)
	placer := &stubPlacer{err: errors.New("server error")}
	flow := NewFlow(engine, &stubProvider{}, placer, 0)

	if _, err := flow.Submit(context.Background(), shippingForm(), domain.PaymentCashOnDelivery, nil); err == nil {
		t.Fatalf("expected order failure")
	}
	if flow.State() != StateFailed {
		t.Fatalf("expected Failed, got %v", flow.State())
	}
	if engine.TotalItems() != 2 {
		t.Fatalf("cart must survive an order failure")
	}

	// Failed is re-enterable
	placer.err = nil
	placer.conf = Confirmation{OrderID: "o2", OrderNumber: "GW-1002"}
	res, err := flow.Submit(context.Background(), shippingForm(), domain.PaymentCashOnDelivery, nil)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.OrderNumber != "GW-1002" {
		t.Fatalf("unexpected retry result %+v", res)
	}
	if placer.calls != 2 {
		t.Fatalf("expected exactly two place calls, got %d", placer.calls)
	}
}

func TestSubmitAfterSuccessIsRejected(t *testing.T) {
	flow := NewFlow(loadedEngine(t), &stubProvider{}, &stubPlacer{conf: Confirmation{OrderID: "o1", OrderNumber: "GW-1001"}}, 0)

	if _, err := flow.Submit(context.Background(), shippingForm(), domain.PaymentCashOnDelivery, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	_, err := flow.Submit(context.Background(), shippingForm(), domain.PaymentCashOnDelivery, nil)
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
}

func TestConcurrentSubmitPlacesExactlyOneOrder(t *testing.T) {
	engine := loadedEngine(t)
	placer := &stubPlacer{
		conf:  Confirmation{OrderID: "o1", OrderNumber: "GW-1001"},
		block: make(chan struct{}),
	}
	flow := NewFlow(engine, &stubProvider{}, placer, 0)

	firstDone := make(chan error, 1)
	go func() {
		_, err := flow.Submit(context.Background(), shippingForm(), domain.PaymentCashOnDelivery, nil)
		firstDone <- err
	}()

	// wait for the first submit to reach the in-flight state
	deadline := time.After(2 * time.Second)
	for flow.State() != StateSubmitting {
		select {
		case <-deadline:
			t.Fatalf("first submit never reached Submitting")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	_, err := flow.Submit(context.Background(), shippingForm(), domain.PaymentCashOnDelivery, nil)
	if !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}

	close(placer.block)
	if err := <-firstDone; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if placer.calls != 1 {
		t.Fatalf("expected exactly one order placed, got %d", placer.calls)
	}
}

func TestSubmitDuringPaymentIsRejected(t *testing.T) {
	engine := loadedEngine(t)
	provider := &stubProvider{block: make(chan struct{})}
	placer := &stubPlacer{conf: Confirmation{OrderID: "o1", OrderNumber: "GW-1001"}}
	flow := NewFlow(engine, provider, placer, 0)

	firstDone := make(chan error, 1)
	go func() {
		card := validCard()
		_, err := flow.Submit(context.Background(), shippingForm(), domain.PaymentCard, &card)
		firstDone <- err
	}()

	// wait for the first submit to block inside the payment provider
	deadline := time.After(2 * time.Second)
	for flow.State() != StateAwaitingPayment {
		select {
		case <-deadline:
			t.Fatalf("first submit never reached AwaitingPayment")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	card := validCard()
	_, err := flow.Submit(context.Background(), shippingForm(), domain.PaymentCard, &card)
	if !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight during payment, got %v", err)
	}

	close(provider.block)
	if err := <-firstDone; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("expected exactly one authorization, got %d", provider.calls)
	}
	if placer.calls != 1 {
		t.Fatalf("expected exactly one order placed, got %d", placer.calls)
	}
}

func TestSubmitSnapshotIgnoresLaterCartMutations(t *testing.T) {
	engine := loadedEngine(t)
	placer := &stubPlacer{
		conf:  Confirmation{OrderID: "o1", OrderNumber: "GW-1001"},
		block: make(chan struct{}),
	}
	flow := NewFlow(engine, &stubProvider{}, placer, 0)

	done := make(chan error, 1)
	go func() {
		_, err := flow.Submit(context.Background(), shippingForm(), domain.PaymentCashOnDelivery, nil)
		done <- err
	}()

	deadline := time.After(2 * time.Second)
	for flow.State() != StateSubmitting {
		select {
		case <-deadline:
			t.Fatalf("submit never reached Submitting")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// mutate the cart while the order request is in flight
	engine.UpdateQuantity(context.Background(), "p1", 9)

	close(placer.block)
	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := placer.lastIn.Items[0].Quantity; got != 2 {
		t.Fatalf("order must use the snapshot quantity 2, got %d", got)
	}
	if got := placer.lastIn.TotalCents; got != 4998 {
		t.Fatalf("order must use the snapshot total 4998, got %d", got)
	}
}
