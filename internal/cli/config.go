package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/slots/pkg/slots"
)

// Allocator modes accepted by the mode setting.
const (
	ModeStrict       = "strict"
	ModeRelaxed      = "relaxed"
	ModeUnrestricted = "unrestricted"
)

// maxCapacity keeps a typo from reserving gigabytes up front.
const maxCapacity = 1 << 20

// ConfigFileName is the default project config file name.
const ConfigFileName = ".slotsctl.json"

// Config holds all configuration options.
type Config struct {
	Capacity      int    `json:"capacity"`
	Mode          string `json:"mode"`
	RuntimeChecks *bool  `json:"runtime_checks,omitempty"` //nolint:tagliatelle // snake_case for config file
	HistoryFile   string `json:"history_file,omitempty"`   //nolint:tagliatelle // snake_case for config file

	// Resolved (computed, not serialized)
	EffectiveCwd string        `json:"-"`
	Sources      ConfigSources `json:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// fileConfig is the on-disk shape. Pointers distinguish "unset" from zero.
type fileConfig struct {
	Capacity      *int    `json:"capacity"`
	Mode          *string `json:"mode"`
	RuntimeChecks *bool   `json:"runtime_checks"` //nolint:tagliatelle // snake_case for config file
	HistoryFile   *string `json:"history_file"`   //nolint:tagliatelle // snake_case for config file
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Capacity: 8,
		Mode:     ModeStrict,
	}
}

// Checks maps the runtime_checks setting onto the library option.
func (c Config) Checks() slots.Checks {
	switch {
	case c.RuntimeChecks == nil:
		return slots.ChecksDefault
	case *c.RuntimeChecks:
		return slots.ChecksOn
	default:
		return slots.ChecksOff
	}
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	Env             map[string]string // environment variables

	// Flag overrides; nil means not given.
	Capacity      *int
	Mode          *string
	RuntimeChecks *bool
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/slotsctl/config.json or $XDG_CONFIG_HOME/slotsctl/config.json)
// 3. Project config file at default location (.slotsctl.json, if exists)
// 4. Explicit config file via ConfigPath (replaces 3)
// 5. CLI overrides.
func LoadConfig(input LoadConfigInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := DefaultConfig()

	globalPath := getGlobalConfigPath(input.Env)
	if globalPath != "" {
		globalCfg, loaded, err := loadConfigFile(globalPath, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = mergeConfig(cfg, globalCfg)
			cfg.Sources.Global = globalPath
		}
	}

	projectPath, mustExist := filepath.Join(workDir, ConfigFileName), false
	if input.ConfigPath != "" {
		projectPath, mustExist = input.ConfigPath, true
		if !filepath.IsAbs(projectPath) {
			projectPath = filepath.Join(workDir, projectPath)
		}
	}

	projectCfg, loaded, err := loadConfigFile(projectPath, mustExist)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg = mergeConfig(cfg, projectCfg)
		cfg.Sources.Project = projectPath
	}

	cfg = mergeConfig(cfg, fileConfig{
		Capacity:      input.Capacity,
		Mode:          input.Mode,
		RuntimeChecks: input.RuntimeChecks,
	})

	err = validateConfig(cfg)
	if err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir

	if cfg.HistoryFile != "" && !filepath.IsAbs(cfg.HistoryFile) {
		cfg.HistoryFile = filepath.Join(workDir, cfg.HistoryFile)
	}

	return cfg, nil
}

// getGlobalConfigPath returns the path to the global config file.
// Returns empty string if neither XDG_CONFIG_HOME nor HOME is set.
func getGlobalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "slotsctl", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "slotsctl", "config.json")
	}

	return ""
}

// loadConfigFile loads a config file. If mustExist is false, a missing file
// is not an error and reports loaded=false.
func loadConfigFile(path string, mustExist bool) (fileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return fileConfig{}, false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
			}

			return fileConfig{}, false, nil
		}

		return fileConfig{}, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
	}

	cfg, err := parseConfig(data)
	if err != nil {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, true, nil
}

func parseConfig(data []byte) (fileConfig, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg fileConfig

	err = json.Unmarshal(standardized, &cfg)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

func mergeConfig(base Config, overlay fileConfig) Config {
	if overlay.Capacity != nil {
		base.Capacity = *overlay.Capacity
	}

	if overlay.Mode != nil {
		base.Mode = *overlay.Mode
	}

	if overlay.RuntimeChecks != nil {
		checks := *overlay.RuntimeChecks
		base.RuntimeChecks = &checks
	}

	if overlay.HistoryFile != nil {
		base.HistoryFile = *overlay.HistoryFile
	}

	return base
}

func validateConfig(cfg Config) error {
	if cfg.Capacity < 0 || cfg.Capacity > maxCapacity {
		return fmt.Errorf("%w, got %d", ErrCapacityInvalid, cfg.Capacity)
	}

	switch cfg.Mode {
	case ModeStrict, ModeRelaxed, ModeUnrestricted:
	default:
		return fmt.Errorf("%w, got %q", ErrModeInvalid, cfg.Mode)
	}

	return nil
}

// FormatConfig renders the effective config as JSON.
func FormatConfig(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("format config: %w", err)
	}

	return string(data), nil
}
