package config

import (
	"testing"
	"time"
)

func TestNewConfigDefaults(t *testing.T) {
	for _, key := range []string{"ROOMMATE_SERVICE_PORT", "LISTING_COLLECTION", "LISTING_CACHE_TTL", "SMTP_PORT", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := NewConfig()
	if cfg.Port != "3000" || cfg.ListingCollection != "add" || cfg.ListingDBName != "roommate" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ListingCacheTTL != 30*time.Minute || cfg.SMTPPort != 587 {
		t.Errorf("ttl = %v smtp port = %d", cfg.ListingCacheTTL, cfg.SMTPPort)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("origins = %v", cfg.AllowedOrigins)
	}
}

func TestNewConfigFromEnvironment(t *testing.T) {
	t.Setenv("ROOMMATE_SERVICE_PORT", "8080")
	t.Setenv("LISTING_CACHE_TTL", "5m")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("ALLOWED_ORIGINS", "https://roommate.example.com, http://localhost:5173 ,")

	cfg := NewConfig()
	if cfg.Port != "8080" || cfg.ListingCacheTTL != 5*time.Minute || cfg.SMTPPort != 2525 {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://localhost:5173" {
		t.Errorf("origins = %q", cfg.AllowedOrigins)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("LISTING_CACHE_TTL", "-1s")
	t.Setenv("SMTP_PORT", "smtp")

	cfg := NewConfig()
	if cfg.ListingCacheTTL != 30*time.Minute || cfg.SMTPPort != 587 {
		t.Errorf("ttl = %v smtp port = %d", cfg.ListingCacheTTL, cfg.SMTPPort)
	}
}
