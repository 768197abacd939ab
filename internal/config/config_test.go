package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected shutdown timeout %v", cfg.ShutdownTimeout)
	}
	if cfg.PaymentSuccessRate != 0.8 {
		t.Fatalf("unexpected success rate %v", cfg.PaymentSuccessRate)
	}
	if cfg.RedirectDelay != 2500*time.Millisecond {
		t.Fatalf("unexpected redirect delay %v", cfg.RedirectDelay)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("PAYMENT_SUCCESS_RATE", "0.5")
	t.Setenv("PAYMENT_DELAY_MS", "100")

	cfg := FromEnv()
	if cfg.HTTPAddr != ":9999" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected shutdown timeout %v", cfg.ShutdownTimeout)
	}
	if cfg.PaymentSuccessRate != 0.5 {
		t.Fatalf("unexpected success rate %v", cfg.PaymentSuccessRate)
	}
	if cfg.PaymentDelay != 100*time.Millisecond {
		t.Fatalf("unexpected payment delay %v", cfg.PaymentDelay)
	}
}

func TestFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "soon")
	t.Setenv("PAYMENT_SUCCESS_RATE", "1.5")

	cfg := FromEnv()
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("invalid seconds must fall back, got %v", cfg.ShutdownTimeout)
	}
	if cfg.PaymentSuccessRate != 0.8 {
		t.Fatalf("out-of-range rate must fall back, got %v", cfg.PaymentSuccessRate)
	}
}
