package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"cosmic/game"
)

type Config struct {
	Port             int
	AllowedOrigins   []string
	SnapshotInterval time.Duration
	PingInterval     time.Duration
	PingTimeout      time.Duration
	SendBuffer       int
	IntentRate       float64
	IntentBurst      int
	HubTargets       map[game.ResourceType]int
}

// Default returns the configuration used when no environment is set.
func Default() Config {
	targets := make(map[game.ResourceType]int, len(game.DefaultTargets))
	for res, n := range game.DefaultTargets {
		targets[res] = n
	}
	return Config{
		Port:             3000,
		SnapshotInterval: time.Second,
		PingInterval:     2 * time.Second,
		PingTimeout:      5 * time.Second,
		SendBuffer:       256,
		IntentRate:       120,
		IntentBurst:      60,
		HubTargets:       targets,
	}
}

// Load reads an optional .env file and then the process environment.
// Unset variables keep their defaults.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	cfg := Default()

	var err error
	if cfg.Port, err = intVar("PORT", cfg.Port); err != nil {
		return Config{}, err
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("PORT: %d out of range", cfg.Port)
	}
	if v, err := GetEnvVariable("ALLOWED_ORIGINS"); err == nil {
		cfg.AllowedOrigins = splitList(v)
	}
	if cfg.SnapshotInterval, err = durationVar("SNAPSHOT_INTERVAL", cfg.SnapshotInterval); err != nil {
		return Config{}, err
	}
	if cfg.PingInterval, err = durationVar("PING_INTERVAL", cfg.PingInterval); err != nil {
		return Config{}, err
	}
	if cfg.PingTimeout, err = durationVar("PING_TIMEOUT", cfg.PingTimeout); err != nil {
		return Config{}, err
	}
	if cfg.SendBuffer, err = intVar("SEND_BUFFER", cfg.SendBuffer); err != nil {
		return Config{}, err
	}
	if cfg.IntentBurst, err = intVar("INTENT_BURST", cfg.IntentBurst); err != nil {
		return Config{}, err
	}
	if v, err := GetEnvVariable("INTENT_RATE"); err == nil {
		f, perr := strconv.ParseFloat(v, 64)
		if perr != nil || f <= 0 {
			return Config{}, fmt.Errorf("INTENT_RATE: invalid value %q", v)
		}
		cfg.IntentRate = f
	}
	for _, res := range game.Resources {
		name := "HUB_TARGET_" + strings.ToUpper(string(res))
		if cfg.HubTargets[res], err = intVar(name, cfg.HubTargets[res]); err != nil {
			return Config{}, err
		}
	}

	log.Printf("config: port=%d snapshot=%s ping=%s/%s origins=%v",
		cfg.Port, cfg.SnapshotInterval, cfg.PingInterval, cfg.PingTimeout, cfg.AllowedOrigins)
	return cfg, nil
}

func GetEnvVariable(v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("input param empty")
	}
	b := os.Getenv(v)
	if b == "" {
		return "", fmt.Errorf("failed to get variable for %s", v)
	}

	return b, nil
}

func intVar(name string, def int) (int, error) {
	v, err := GetEnvVariable(name)
	if err != nil {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: invalid value %q", name, v)
	}
	return n, nil
}

func durationVar(name string, def time.Duration) (time.Duration, error) {
	v, err := GetEnvVariable(name)
	if err != nil {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", name, v)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
