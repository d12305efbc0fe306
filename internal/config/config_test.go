package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "horde.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
[server]
tick_rate = "20ms"
seed = 42

[difficulty]
window = 5
adaptation_rate = 0.25

[wave]
overrun_policy = "cheapest"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.TickRate != 20*time.Millisecond {
		t.Errorf("tick_rate = %v", cfg.Server.TickRate)
	}
	if cfg.Server.Seed != 42 {
		t.Errorf("seed = %d", cfg.Server.Seed)
	}
	if cfg.Difficulty.Window != 5 || cfg.Difficulty.AdaptationRate != 0.25 {
		t.Errorf("difficulty = %+v", cfg.Difficulty)
	}
	// Untouched keys keep their defaults.
	if cfg.Difficulty.TargetSurvivalRate != 0.7 {
		t.Errorf("target_survival_rate = %v", cfg.Difficulty.TargetSurvivalRate)
	}
	if cfg.Pool.MaxSize != 50 {
		t.Errorf("pool.max_size = %d", cfg.Pool.MaxSize)
	}
	if cfg.Wave.OverrunPolicy != "cheapest" {
		t.Errorf("overrun_policy = %q", cfg.Wave.OverrunPolicy)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if cfg == nil || cfg.Server.Name != "horde" {
		t.Fatalf("defaults not returned: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad toml", "[server\nname="},
		{"inverted multiplier", "[difficulty]\nmin_multiplier = 2.0\nmax_multiplier = 1.0\n"},
		{"unknown overrun policy", "[wave]\noverrun_policy = \"never\"\n"},
		{"zero window", "[difficulty]\nwindow = 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tt.body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
