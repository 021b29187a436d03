package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Analyze.Recovery != nil || cfg.Genetic.Population != nil {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestLoadConfigDecodesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[analyze]
strategies = ["ic", "gcd"]
freq-weight = 0.05
recovery = "genetic"
min-ngram = 2

[genetic]
population = 120
seed = 7
progress = false

[history]
enabled = false
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if strings.Join(cfg.Analyze.Strategies, ",") != "ic,gcd" {
		t.Fatalf("unexpected strategies %v", cfg.Analyze.Strategies)
	}
	if cfg.Analyze.FreqWeight == nil || *cfg.Analyze.FreqWeight != 0.05 {
		t.Fatalf("unexpected freq-weight %v", cfg.Analyze.FreqWeight)
	}
	if cfg.Analyze.Recovery == nil || *cfg.Analyze.Recovery != "genetic" {
		t.Fatalf("unexpected recovery %v", cfg.Analyze.Recovery)
	}
	if cfg.Analyze.MaxNgram != nil {
		t.Fatalf("expected max-ngram unset")
	}
	if cfg.Genetic.Population == nil || *cfg.Genetic.Population != 120 {
		t.Fatalf("unexpected population %v", cfg.Genetic.Population)
	}
	if cfg.Genetic.Seed == nil || *cfg.Genetic.Seed != 7 {
		t.Fatalf("unexpected seed %v", cfg.Genetic.Seed)
	}
	if cfg.History.Enabled == nil || *cfg.History.Enabled {
		t.Fatalf("unexpected history.enabled %v", cfg.History.Enabled)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[analyze]\nkey-len = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "key-len") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadConfigValidatesValues(t *testing.T) {
	for _, data := range []string{
		"[genetic]\ncrossover = 1.5\n",
		"[genetic]\npopulation = -4\n",
		"[analyze]\nrecovery = \"brute\"\n",
		"[analyze]\nstrategies = [\"ic\", \"kasiski\"]\n",
	} {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "invalid config") {
			t.Fatalf("expected validation error for %q, got %v", data, err)
		}
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	if got := DefaultConfigPath(); got != filepath.Join("/tmp/cfg", "vigsolve", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/tmp/data", "vigsolve", "history.db") {
		t.Fatalf("unexpected db path %q", got)
	}
}
