package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnvLayersFileThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contesthub.yaml")
	content := []byte(`
server:
  port: "9000"
  site_domain: "https://contesthub.example.com/"
database:
  driver: memory
  name: contests_from_file
payment:
  provider: stub
identity:
  provider: jwt
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("DB_NAME", "contests_from_env")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("IDEMPOTENCY_TTL_HOURS", "2")

	cfg, err := FromEnv(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.APIPort != "9000" {
		t.Fatalf("expected port from file, got %q", cfg.APIPort)
	}
	if cfg.DBName != "contests_from_env" {
		t.Fatalf("expected env to override file, got %q", cfg.DBName)
	}
	if cfg.DBDriver != "memory" || cfg.PaymentProvider != "stub" || cfg.IdentityProvider != "jwt" {
		t.Fatalf("unexpected providers: %+v", cfg)
	}
	if cfg.SiteDomain != "https://contesthub.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.SiteDomain)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
	}
	if cfg.IdempotencyTTL != 2*time.Hour {
		t.Fatalf("unexpected idempotency ttl: %s", cfg.IdempotencyTTL)
	}
}

func TestFromEnvRequiresStripeSecret(t *testing.T) {
	t.Setenv("PAYMENT_PROVIDER", "stripe")
	t.Setenv("STRIPE_SECRET", "")
	t.Setenv("STRIP_SECRET", "")

	if _, err := FromEnv(""); err == nil {
		t.Fatalf("expected missing stripe secret to fail")
	}
}

func TestFromEnvDefaultsOriginsToSiteDomain(t *testing.T) {
	t.Setenv("PAYMENT_PROVIDER", "stub")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("SITE_DOMAIN", "https://contesthub.example.com/")

	cfg, err := FromEnv("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://contesthub.example.com" {
		t.Fatalf("expected site domain as the only origin, got %v", cfg.AllowedOrigins)
	}
}
