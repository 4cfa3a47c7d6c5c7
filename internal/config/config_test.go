package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port default: got %q", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("GinMode default: got %q", cfg.GinMode)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel default: got %q", cfg.LogLevel)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Fatalf("APIBasePath default: got %q", cfg.APIBasePath)
	}
	if cfg.ScoreMin != 1 || cfg.ScoreMax != 5 {
		t.Fatalf("score bounds default: got [%d,%d]", cfg.ScoreMin, cfg.ScoreMax)
	}
	if !cfg.ListAllowDuplicateItems {
		t.Fatal("duplicate list items must be allowed by default")
	}
	if cfg.Refuge.BaseURL == "" || cfg.Refuge.PerPage != 50 {
		t.Fatalf("Refuge defaults: %+v", cfg.Refuge)
	}
	if cfg.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("IdempotencyTTL default: got %v", cfg.IdempotencyTTL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("LOG_LEVEL", "warning") // normalized to warn
	t.Setenv("GIN_MODE", "bogus")    // normalized to release
	t.Setenv("API_BASE_PATH", "api/v2/")
	t.Setenv("SCORE_MAX", "10")
	t.Setenv("LIST_ALLOW_DUPLICATE_ITEMS", "off")
	t.Setenv("NEARBY_RADIUS_KM", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9999" {
		t.Fatalf("Port: got %q", cfg.Port)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel: got %q", cfg.LogLevel)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("GinMode: got %q", cfg.GinMode)
	}
	if cfg.APIBasePath != "/api/v2" {
		t.Fatalf("APIBasePath: got %q", cfg.APIBasePath)
	}
	if cfg.ScoreMax != 10 {
		t.Fatalf("ScoreMax: got %d", cfg.ScoreMax)
	}
	if cfg.ListAllowDuplicateItems {
		t.Fatal("LIST_ALLOW_DUPLICATE_ITEMS=off must disable duplicates")
	}
	if cfg.NearbyRadiusKm != 2.5 {
		t.Fatalf("NearbyRadiusKm: got %v", cfg.NearbyRadiusKm)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("CORS origins: got %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := []struct{ key, val string }{
		{"LOG_LEVEL", "verbose"},
		{"READ_TIMEOUT", "-1s"},
		{"MAX_HEADER_BYTES", "-5"},
		{"SCORE_MIN", "7"}, // min above default max
		{"LIST_NAME_MAX_LEN", "0"},
		{"NEARBY_MAX_RESULTS", "0"},
		{"NEARBY_RADIUS_KM", "-1"},
		{"REFUGE_PER_PAGE", "500"},
		{"REFUGE_SEED_LAT", "120"},
		{"RATE_RPS", "-1"},
		{"RATE_BURST", "0"},
		{"IDEMPOTENCY_TTL", "-1h"},
		{"OTEL_TRACES_SAMPLER_ARG", "2"},
	}
	for _, c := range cases {
		t.Run(c.key, func(t *testing.T) {
			t.Setenv(c.key, c.val)
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%s must fail validation", c.key, c.val)
			}
		})
	}
}

func TestGetboolParsing(t *testing.T) {
	t.Setenv("X_BOOL", "yes")
	if !getbool("X_BOOL", false) {
		t.Fatal("yes must parse as true")
	}
	t.Setenv("X_BOOL", "garbage")
	if !getbool("X_BOOL", true) {
		t.Fatal("unparseable value must fall back to default")
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", "/"},
		{"/", "/"},
		{"api", "/api"},
		{"/api/", "/api"},
		{"  /api/v1/  ", "/api/v1"},
	}
	for _, c := range cases {
		if got := normalizeBasePath(c.in); got != c.want {
			t.Fatalf("normalizeBasePath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
