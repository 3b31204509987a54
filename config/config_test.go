package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_URL", "https://api.example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: unexpected error: %v", err)
	}
	if cfg.AppPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.AppPort)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Fatalf("expected 7 day token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.PaymentCurrency != "BDT" {
		t.Fatalf("expected BDT currency, got %q", cfg.PaymentCurrency)
	}
	if cfg.ServerURL != "https://api.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.ServerURL)
	}
	if cfg.IsLive {
		t.Fatal("expected sandbox mode by default")
	}
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestLoad_RejectsUnknownGateway(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PAYMENT_GATEWAY", "paypal")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported gateway")
	}
}

func TestLoad_TrustedProxies(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,172.16.0.1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: unexpected error: %v", err)
	}
	if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[0] != "10.0.0.0/8" || cfg.TrustedProxies[1] != "172.16.0.1" {
		t.Fatalf("unexpected trusted proxies %v", cfg.TrustedProxies)
	}
}
