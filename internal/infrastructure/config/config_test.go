package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "5000" || cfg.LogLevel != "info" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.TokenTTL != 168*time.Hour {
		t.Errorf("TokenTTL = %s, want 168h", cfg.TokenTTL)
	}
	if cfg.LegacyUntaggedVisible {
		t.Error("legacy untagged visibility must default to off")
	}
	if cfg.Login.MaxAttempts != 5 || cfg.Login.Window != 15*time.Minute {
		t.Errorf("unexpected login defaults: %+v", cfg.Login)
	}
	if cfg.Mongo.Database != "lc_studio" || cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("unexpected store defaults: %+v %+v", cfg.Mongo, cfg.Redis)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":              "s3cret",
		"PORT":                    "8080",
		"TOKEN_TTL":               "0s",
		"LEGACY_UNTAGGED_VISIBLE": "true",
		"LOGIN_MAX_ATTEMPTS":      "3",
		"REDIS_PASSWORD":          "pw",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.TokenTTL != 0 || !cfg.LegacyUntaggedVisible || cfg.Login.MaxAttempts != 3 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Redis.Password != "pw" {
		t.Errorf("Redis.Password = %q, want pw", cfg.Redis.Password)
	}
}

func TestLoad_RequiresSecret(t *testing.T) {
	if _, err := load(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatal("expected an error without JWT_SECRET")
	}
}

func TestLoad_RejectsNonPositiveAttempts(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":         "s3cret",
		"LOGIN_MAX_ATTEMPTS": "0",
	}))
	if err == nil {
		t.Fatal("expected an error for LOGIN_MAX_ATTEMPTS=0")
	}
}
