package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("VERIFY_TOKEN", "")
	t.Setenv("UNIT_MAP_JSON", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.VerifyToken != "conectifisio_2024_seguro" {
		t.Fatalf("VerifyToken = %q", cfg.VerifyToken)
	}
	if cfg.DefaultUnit != "SCS" {
		t.Fatalf("DefaultUnit = %q, want SCS", cfg.DefaultUnit)
	}
	if cfg.TypingDelay != 400*time.Millisecond {
		t.Fatalf("TypingDelay = %v", cfg.TypingDelay)
	}
	if cfg.WixTimeout != 5*time.Second {
		t.Fatalf("WixTimeout = %v", cfg.WixTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TYPING_DELAY", "250ms")
	t.Setenv("ADMIN_RATE_LIMIT", "12")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.TypingDelay != 250*time.Millisecond {
		t.Fatalf("TypingDelay = %v", cfg.TypingDelay)
	}
	if cfg.AdminRateLimit != 12 {
		t.Fatalf("AdminRateLimit = %d", cfg.AdminRateLimit)
	}
	if len(cfg.CORSAllowed) != 2 || cfg.CORSAllowed[1] != "https://b.example" {
		t.Fatalf("CORSAllowed = %v", cfg.CORSAllowed)
	}
}

func TestGetEnvAsDurationInvalid(t *testing.T) {
	t.Setenv("WIX_TIMEOUT", "not-a-duration")
	cfg := Load()
	if cfg.WixTimeout != 5*time.Second {
		t.Fatalf("invalid duration should fall back to default, got %v", cfg.WixTimeout)
	}
}
