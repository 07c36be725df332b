package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	envConfigPath            = "PROFILER_CONFIG"
	envRequestTimeoutSeconds = "PROFILER_REQUEST_TIMEOUT_SECONDS"
	envHostDenyEnable        = "PROFILER_HOST_DENY_ENABLE"
)

const defaultRequestTimeoutSeconds = 30

// Config is the root runtime configuration loaded from config.json.
type Config struct {
	Bridge  BridgeConfig  `json:"bridge"`
	Host    HostConfig    `json:"host"`
	Logging LoggingConfig `json:"logging,omitempty"`
}

// BridgeConfig controls the web side of the bridge.
type BridgeConfig struct {
	RequestTimeoutSeconds int `json:"request_timeout_seconds"`
}

// RequestTimeout returns the per-call deadline commands wrap around bridge
// calls. Zero or negative disables the deadline; the bridge itself never
// imposes one.
func (c BridgeConfig) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// HostConfig controls the simulated privileged side of the bridge.
type HostConfig struct {
	MenuButtonEnabled bool `json:"menu_button_enabled"`
	DenyEnable        bool `json:"deny_enable"`
	ResponseDelayMS   int  `json:"response_delay_ms"`
}

// ResponseDelay returns how long the host waits before answering a request.
func (c HostConfig) ResponseDelay() time.Duration {
	if c.ResponseDelayMS <= 0 {
		return 0
	}
	return time.Duration(c.ResponseDelayMS) * time.Millisecond
}

// LoggingConfig controls structured log output format and verbosity.
type LoggingConfig struct {
	Format    string `json:"format,omitempty"`
	Level     string `json:"level,omitempty"`
	AddSource bool   `json:"add_source,omitempty"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Bridge: BridgeConfig{RequestTimeoutSeconds: defaultRequestTimeoutSeconds},
	}
}

// LoadConfig resolves config.json, unmarshals it over the defaults, and
// applies environment overrides. A missing config file is not an error; the
// bridge runs fine on defaults.
func LoadConfig() (*Config, error) {
	configPath, err := findConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := json.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides injects selected env-driven settings on top of file
// config. Values that do not parse are ignored.
func applyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if raw := strings.TrimSpace(os.Getenv(envRequestTimeoutSeconds)); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil {
			cfg.Bridge.RequestTimeoutSeconds = seconds
		}
	}

	if raw := strings.TrimSpace(os.Getenv(envHostDenyEnable)); raw != "" {
		if deny, err := strconv.ParseBool(raw); err == nil {
			cfg.Host.DenyEnable = deny
		}
	}
}

// findConfigPath resolves the active config file location.
//
// Precedence is PROFILER_CONFIG first, then cwd-local fallback paths. An
// empty path with a nil error means no file exists and defaults apply.
func findConfigPath() (string, error) {
	if value := strings.TrimSpace(os.Getenv(envConfigPath)); value != "" {
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return value, nil
		}
		return "", fmt.Errorf("PROFILER_CONFIG does not point to a file: %s", value)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current working directory: %w", err)
	}

	candidates := []string{
		filepath.Join(cwd, "config.json"),
		filepath.Join(cwd, "config", "config.json"),
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", nil
}
