package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cosmic/game"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"PORT", "ALLOWED_ORIGINS", "SNAPSHOT_INTERVAL", "PING_INTERVAL", "PING_TIMEOUT", "HUB_TARGET_ENERGY"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 3000 || cfg.SnapshotInterval != time.Second || cfg.PingInterval != 2*time.Second || cfg.PingTimeout != 5*time.Second {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.HubTargets[game.Energy] != 500 || cfg.HubTargets[game.Water] != 200 {
		t.Fatalf("targets = %v", cfg.HubTargets)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Fatalf("origins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "8081")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("SNAPSHOT_INTERVAL", "250ms")
	t.Setenv("HUB_TARGET_MINERAL", "40")
	t.Setenv("INTENT_RATE", "30.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8081 || cfg.SnapshotInterval != 250*time.Millisecond || cfg.IntentRate != 30.5 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins = %q", cfg.AllowedOrigins)
	}
	if cfg.HubTargets[game.Mineral] != 40 || cfg.HubTargets[game.Energy] != 500 {
		t.Fatalf("targets = %v", cfg.HubTargets)
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	// godotenv never overrides a variable that is already present, even empty.
	t.Setenv("PING_TIMEOUT", "")
	os.Unsetenv("PING_TIMEOUT")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PING_TIMEOUT=9s\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PingTimeout != 9*time.Second {
		t.Fatalf("PingTimeout = %s, want 9s", cfg.PingTimeout)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":              "http",
		"SNAPSHOT_INTERVAL": "soon",
		"PING_INTERVAL":     "-1s",
		"SEND_BUFFER":       "0",
		"INTENT_RATE":       "fast",
		"HUB_TARGET_WATER":  "lots",
	}
	for name, val := range cases {
		t.Run(name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(name, val)
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%q accepted", name, val)
			}
		})
	}
}

func TestGetEnvVariable(t *testing.T) {
	if _, err := GetEnvVariable(""); err == nil {
		t.Fatalf("empty name accepted")
	}
	t.Setenv("COSMIC_TEST_VAR", "x")
	if v, err := GetEnvVariable("COSMIC_TEST_VAR"); err != nil || v != "x" {
		t.Fatalf("got %q, %v", v, err)
	}
}
