package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/clinic")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("port = %q, want 8000", cfg.Port)
	}
	if cfg.ClinicTimezone != "Asia/Manila" {
		t.Errorf("timezone = %q, want Asia/Manila", cfg.ClinicTimezone)
	}
	if !cfg.IsDev() {
		t.Error("default env should be development")
	}
	if cfg.RequestTimeout != 30 {
		t.Errorf("request timeout = %d, want 30", cfg.RequestTimeout)
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Error("expected error without DATABASE_URL")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/clinic")
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "super-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Port)
	}
	if cfg.IsDev() {
		t.Error("ENV=production should not be dev")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Env:            "production",
		ClinicTimezone: "Asia/Manila",
		RequestTimeout: 30,
	}
	if err := cfg.Validate(); err == nil {
		t.Error("production without JWT secret or issuer should fail validation")
	}

	cfg.JWTSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	cfg.ClinicTimezone = "Mars/Olympus"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown timezone should fail validation")
	}

	cfg.ClinicTimezone = "Asia/Manila"
	cfg.RequestTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero timeout should fail validation")
	}
}
