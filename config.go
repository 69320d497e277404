package onboard

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talentops/onboard/engine"
	"github.com/talentops/onboard/gateway/httpgw"
)

// Store backends supported by the bootstrap.
const (
	StoreMemory = "memory"
	StoreFS     = "fs"
	StoreSQLite = "sqlite"
)

// StoreConfig selects the process store backend.
type StoreConfig struct {
	// Backend is one of memory, fs, sqlite; defaults to memory.
	Backend string `json:"backend" yaml:"backend"`
	// Path is the base directory (fs) or database file (sqlite).
	Path string `json:"path" yaml:"path"`
}

// ListenerConfig holds HTTP server listener settings.
type ListenerConfig struct {
	// Addr is the listen address, defaults to :8080.
	Addr string `json:"addr" yaml:"addr"`
}

// Config is a serialisable representation of the service configuration. It
// can be populated from YAML or JSON; the zero value is useful - nested
// fields inherit their package defaults.
type Config struct {
	Listener   ListenerConfig          `json:"listener" yaml:"listener"`
	Store      StoreConfig             `json:"store" yaml:"store"`
	Gateway    *httpgw.Config          `json:"gateway,omitempty" yaml:"gateway,omitempty"`
	Onboarding engine.OnboardingConfig `json:"onboarding" yaml:"onboarding"`
	LogLevel   string                  `json:"logLevel" yaml:"logLevel"`
}

// DefaultConfig returns a Config populated with package defaults.
func DefaultConfig() *Config {
	return &Config{
		Listener: ListenerConfig{Addr: ":8080"},
		Store:    StoreConfig{Backend: StoreMemory},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch c.Store.Backend {
	case "", StoreMemory:
	case StoreFS, StoreSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the %s backend", c.Store.Backend)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Gateway != nil {
		if err := c.Gateway.Validate(); err != nil {
			return fmt.Errorf("gateway: %w", err)
		}
	}
	return nil
}

// LoadConfig reads the YAML config file at the given path.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode YAML config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
