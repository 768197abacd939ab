package checkout

import (
	"context"
	"errors"
	"testing"
	"time"
)

func validCard() Card {
	return Card{Number: "4242 4242 4242 4242", Expiry: "12/39", CVV: "123"}
}

func TestSimulatorAuthorizeSuccess(t *testing.T) {
	sim := NewSimulator(0, 1.0)
	if err := sim.Authorize(context.Background(), 2499, validCard()); err != nil {
		t.Fatalf("authorize: %v", err)
	}
}

func TestSimulatorAuthorizeDeclined(t *testing.T) {
	sim := NewSimulator(0, 0)
	err := sim.Authorize(context.Background(), 2499, validCard())
	if !errors.Is(err, ErrPaymentDeclined) {
		t.Fatalf("expected ErrPaymentDeclined, got %v", err)
	}
}

func TestSimulatorStructLiteral(t *testing.T) {
	// a Simulator built without NewSimulator still authorizes
	sim := &Simulator{SuccessRate: 1.0}
	if err := sim.Authorize(context.Background(), 2499, validCard()); err != nil {
		t.Fatalf("authorize: %v", err)
	}
}

func TestSimulatorRejectsZeroAmount(t *testing.T) {
	sim := NewSimulator(0, 1.0)
	if err := sim.Authorize(context.Background(), 0, validCard()); err == nil {
		t.Fatalf("expected error for zero amount")
	}
}

func TestSimulatorHonorsContextDuringDelay(t *testing.T) {
	sim := NewSimulator(5*time.Second, 1.0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sim.Authorize(ctx, 2499, validCard())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestValidateCard(t *testing.T) {
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		card    Card
		wantErr bool
	}{
		{"valid", Card{Number: "4242424242424242", Expiry: "12/39", CVV: "123"}, false},
		{"valid with spaces", Card{Number: "4242 4242 4242 4242", Expiry: "12/39", CVV: "1234"}, false},
		{"valid same month", Card{Number: "4242424242424242", Expiry: "03/26", CVV: "123"}, false},
		{"too short number", Card{Number: "42424242", Expiry: "12/39", CVV: "123"}, true},
		{"too long number", Card{Number: "42424242424242424242", Expiry: "12/39", CVV: "123"}, true},
		{"letters in number", Card{Number: "4242abcd42424242", Expiry: "12/39", CVV: "123"}, true},
		{"bad expiry format", Card{Number: "4242424242424242", Expiry: "2039-12", CVV: "123"}, true},
		{"expired", Card{Number: "4242424242424242", Expiry: "02/26", CVV: "123"}, true},
		{"short cvv", Card{Number: "4242424242424242", Expiry: "12/39", CVV: "12"}, true},
		{"long cvv", Card{Number: "4242424242424242", Expiry: "12/39", CVV: "12345"}, true},
		{"letters in cvv", Card{Number: "4242424242424242", Expiry: "12/39", CVV: "12a"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateCard(tc.card, now)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
