package app

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIKey              string  `yaml:"api_key"`
	BaseURL             string  `yaml:"base_url"`
	Model               string  `yaml:"model"`
	MaxTokens           int     `yaml:"max_tokens"`
	MaxTurns            int     `yaml:"max_turns"`
	AutoConfirm         bool    `yaml:"auto_confirm"`
	ExecTimeoutSec      int     `yaml:"exec_timeout_sec"`
	OutputLimitBytes    int     `yaml:"output_limit_bytes"`
	TrajectoryDir       string  `yaml:"trajectory_dir"`
	PromptCostPer1K     float64 `yaml:"prompt_cost_per_1k"`
	CompletionCostPer1K float64 `yaml:"completion_cost_per_1k"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:          "https://api.openai.com/v1/chat/completions",
		Model:            "gpt-4o-mini",
		MaxTokens:        4096,
		MaxTurns:         20,
		ExecTimeoutSec:   120,
		OutputLimitBytes: defaultOutputLimit,
		TrajectoryDir:    DefaultTrajectoryDir(),
	}
}

func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1/chat/completions"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 20
	}
	if cfg.OutputLimitBytes <= 0 {
		cfg.OutputLimitBytes = defaultOutputLimit
	}
	if cfg.TrajectoryDir == "" {
		cfg.TrajectoryDir = DefaultTrajectoryDir()
	}
	return cfg, nil
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		return errors.New("no path provided for config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "nano-agent", "config.yml")
}

func DefaultTrajectoryDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "nano-agent", "trajectories")
	}
	return filepath.Join(base, "nano-agent", "trajectories")
}
