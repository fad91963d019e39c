package config

import (
	"testing"
	"time"

	"dashboard-session-core/timeout"
)

func TestPolicies_Defaults(t *testing.T) {
	cfg := &Config{}
	p := cfg.Policies()
	if p.Standard.Session != timeout.DefaultSession {
		t.Errorf("standard session = %v, want %v", p.Standard.Session, timeout.DefaultSession)
	}
	if p.Standard.Inactivity != timeout.DefaultInactivity {
		t.Errorf("standard inactivity = %v, want %v", p.Standard.Inactivity, timeout.DefaultInactivity)
	}
	if p.Admin.Session != timeout.DefaultAdminSession {
		t.Errorf("admin session = %v, want %v", p.Admin.Session, timeout.DefaultAdminSession)
	}
	if p.Admin.Inactivity != timeout.DefaultAdminInactivity {
		t.Errorf("admin inactivity = %v, want %v", p.Admin.Inactivity, timeout.DefaultAdminInactivity)
	}
}

func TestPolicies_Overrides(t *testing.T) {
	cfg := &Config{
		SessionTTL:         "10m",
		InactivityTTL:      "5m",
		AdminSessionTTL:    "1h",
		AdminInactivityTTL: "20m",
	}
	p := cfg.Policies()
	if p.Standard.Session != 10*time.Minute || p.Standard.Inactivity != 5*time.Minute {
		t.Errorf("standard = %+v, want 10m/5m", p.Standard)
	}
	if p.Admin.Session != time.Hour || p.Admin.Inactivity != 20*time.Minute {
		t.Errorf("admin = %+v, want 1h/20m", p.Admin)
	}
}

func TestPolicies_InvalidFallsBack(t *testing.T) {
	cfg := &Config{SessionTTL: "soon", InactivityTTL: "-5m"}
	p := cfg.Policies()
	if p.Standard.Session != timeout.DefaultSession {
		t.Errorf("invalid duration must fall back, got %v", p.Standard.Session)
	}
	if p.Standard.Inactivity != timeout.DefaultInactivity {
		t.Errorf("negative duration must fall back, got %v", p.Standard.Inactivity)
	}
}

func TestValidate(t *testing.T) {
	ok := &Config{SessionTTL: "30m"}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	bad := &Config{SessionTTL: "half an hour"}
	if err := bad.Validate(); err == nil {
		t.Error("Validate should reject unparseable durations")
	}
	neg := &Config{AdminInactivityTTL: "-1m"}
	if err := neg.Validate(); err == nil {
		t.Error("Validate should reject non-positive durations")
	}
}

func TestLoad_DefaultsApply(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SessionTTL != "30m" {
		t.Errorf("SessionTTL default = %q, want %q", cfg.SessionTTL, "30m")
	}
	if cfg.AdminSessionTTL != "2h" {
		t.Errorf("AdminSessionTTL default = %q, want %q", cfg.AdminSessionTTL, "2h")
	}
}
