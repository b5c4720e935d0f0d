package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	if p.VisaWeeksSponsoredSlow != 8 || p.VisaWeeksSponsored != 4 || p.VisaWeeksDefault != 2 {
		t.Errorf("unexpected visa weeks: %+v", p)
	}
	if p.DeliveryDaysLocal != 3 || p.DeliveryDaysDefault != 7 {
		t.Errorf("unexpected delivery days: %+v", p)
	}
}

func TestIsSponsoredLocation(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		location string
		want     bool
	}{
		{"AE", true},
		{"Dubai, AE", true},
		{"Abu Dhabi, UAE", true},
		{"uae", true},
		{"Cairo, EG", false},
		{"", false},
		// "AE" должен матчиться как токен, не как подстрока.
		{"AEROSPACE CITY", false},
	}
	for _, tt := range tests {
		if got := p.IsSponsoredLocation(tt.location); got != tt.want {
			t.Errorf("IsSponsoredLocation(%q) = %v, want %v", tt.location, got, tt.want)
		}
	}
}

func TestIsSlowVisaNationality(t *testing.T) {
	p := DefaultPolicy()

	if !p.IsSlowVisaNationality("pk") {
		t.Error("case-insensitive nationality match failed")
	}
	if p.IsSlowVisaNationality("EG") {
		t.Error("EG wrongly classified as slow-visa")
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "caseflow.yaml")
	blob := []byte(`
api_addr: ":9090"
recheck_cron: "*/30 * * * *"
policy:
  visa_weeks_sponsored_slow: 10
`)
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("API_PORT", "7070")
	t.Setenv("DB_URL", "postgres://test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// env поверх YAML, YAML поверх defaults.
	if cfg.APIAddr != ":7070" {
		t.Errorf("APIAddr = %q, want env override :7070", cfg.APIAddr)
	}
	if cfg.DatabaseURL != "postgres://test" {
		t.Errorf("DatabaseURL = %q, want env value", cfg.DatabaseURL)
	}
	if cfg.RecheckCron != "*/30 * * * *" {
		t.Errorf("RecheckCron = %q, want YAML value", cfg.RecheckCron)
	}
	if cfg.Policy.VisaWeeksSponsoredSlow != 10 {
		t.Errorf("VisaWeeksSponsoredSlow = %d, want YAML override 10", cfg.Policy.VisaWeeksSponsoredSlow)
	}
	// Непереопределённые поля — из defaults.
	if cfg.Policy.DeliveryDaysDefault != 7 {
		t.Errorf("DeliveryDaysDefault = %d, want default 7", cfg.Policy.DeliveryDaysDefault)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/caseflow.yaml"); err == nil {
		t.Error("Load accepted missing config file")
	}
}
