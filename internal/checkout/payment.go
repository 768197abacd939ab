package checkout

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"
)

// ErrPaymentDeclined is the generic failure surfaced when the gateway does
// not authorize a charge. No gateway detail leaks to the user.
var ErrPaymentDeclined = errors.New("payment declined, please try again")

// Card carries the simulated card-entry fields. Validation is format-only;
// there is no Luhn check and no real verification behind it.
type Card struct {
	Number string
	Expiry string // MM/YY
	CVV    string
}

// PaymentProvider authorizes a charge before an order is committed. The
// simulator below is one implementation; a real gateway can be substituted
// without touching the checkout flow.
type PaymentProvider interface {
	Authorize(ctx context.Context, amountCents int64, card Card) error
}

// Simulator is a stand-in gateway: it validates card formats, waits an
// artificial delay, then succeeds with a fixed probability.
type Simulator struct {
	Delay       time.Duration
	SuccessRate float64

	// roll overrides the random draw in tests.
	roll func() float64
}

// NewSimulator builds a Simulator with the given delay and success rate in
// [0, 1].
func NewSimulator(delay time.Duration, successRate float64) *Simulator {
	return &Simulator{Delay: delay, SuccessRate: successRate, roll: rand.Float64}
}

func (s *Simulator) Authorize(ctx context.Context, amountCents int64, card Card) error {
	if amountCents <= 0 {
		return errors.New("nothing to charge")
	}
	if err := validateCard(card, time.Now()); err != nil {
		return err
	}
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	roll := s.roll
	if roll == nil {
		roll = rand.Float64
	}
	if roll() < s.SuccessRate {
		return nil
	}
	return ErrPaymentDeclined
}

func validateCard(card Card, now time.Time) error {
	number := strings.ReplaceAll(strings.TrimSpace(card.Number), " ", "")
	if !allDigits(number) || len(number) < 13 || len(number) > 19 {
		return errors.New("invalid card number")
	}
	exp, err := time.Parse("01/06", strings.TrimSpace(card.Expiry))
	if err != nil {
		return errors.New("invalid expiry date")
	}
	// valid through the end of the expiry month
	if exp.AddDate(0, 1, 0).Before(now) {
		return errors.New("card expired")
	}
	cvv := strings.TrimSpace(card.CVV)
	if !allDigits(cvv) || len(cvv) < 3 || len(cvv) > 4 {
		return errors.New("invalid cvv")
	}
	return nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
