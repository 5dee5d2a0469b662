package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("a missing config file is not an error: %v", err)
	}
	want := DefaultConfig()
	if cfg.Model != want.Model || cfg.MaxTurns != want.MaxTurns || cfg.BaseURL != want.BaseURL {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yml")
	cfg := DefaultConfig()
	cfg.APIKey = "sk-test"
	cfg.Model = "gpt-4o"
	cfg.MaxTurns = 7
	cfg.AutoConfirm = true
	cfg.PromptCostPer1K = 0.005

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.APIKey != "sk-test" || loaded.Model != "gpt-4o" || loaded.MaxTurns != 7 {
		t.Fatalf("round trip lost fields: %+v", loaded)
	}
	if !loaded.AutoConfirm {
		t.Fatal("auto_confirm lost")
	}
	if loaded.PromptCostPer1K != 0.005 {
		t.Fatalf("prompt cost = %f", loaded.PromptCostPer1K)
	}
}

func TestLoadConfigBackfillsZeroValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	partial := "api_key: sk-partial\nmax_turns: 0\nmodel: \"\"\n"
	if err := os.WriteFile(path, []byte(partial), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIKey != "sk-partial" {
		t.Fatalf("api key = %q", cfg.APIKey)
	}
	if cfg.MaxTurns != 20 {
		t.Fatalf("max turns = %d, want the backfilled default", cfg.MaxTurns)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Fatalf("model = %q, want the backfilled default", cfg.Model)
	}
	if cfg.OutputLimitBytes != defaultOutputLimit {
		t.Fatalf("output limit = %d", cfg.OutputLimitBytes)
	}
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("model: [unclosed"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("malformed yaml must surface an error")
	}
}

func TestSaveConfigRequiresPath(t *testing.T) {
	if err := SaveConfig(DefaultConfig(), ""); err == nil {
		t.Fatal("empty path must be rejected")
	}
}
