// Package container describes asset containers: the named roots whose
// listings are indexed.
package container

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a container configuration is incomplete.
var ErrInvalidConfig = errors.New("invalid container config")

// Container is the owner of a listing.
type Container interface {
	// Handle identifies the container, e.g. in cache keys.
	Handle() string

	// WatcherEnabled reports whether a file watcher keeps the container's
	// listing up to date.
	WatcherEnabled() bool
}

// Driver names
const (
	DriverLocal  = "local"
	DriverTar    = "tar"
	DriverRemote = "remote"
	DriverGitHub = "github"
)

// Config is a container as configured in a YAML file.
type Config struct {
	Name     string        `yaml:"handle"`
	Driver   string        `yaml:"driver"`
	Root     string        `yaml:"root"`
	Index    string        `yaml:"index,omitempty"`
	Revision string        `yaml:"revision,omitempty"`
	Watch    bool          `yaml:"watch"`
	CacheTTL time.Duration `yaml:"cache_ttl,omitempty"`
}

var _ Container = (*Config)(nil)

// Handle implements Container
func (c *Config) Handle() string {
	return c.Name
}

// WatcherEnabled implements Container
func (c *Config) WatcherEnabled() bool {
	return c.Watch
}

// Validate checks that the config names a handle and a known driver with its root.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: missing handle", ErrInvalidConfig)
	}
	switch c.Driver {
	case DriverLocal, DriverRemote, DriverGitHub:
	case DriverTar:
		if c.Index == "" {
			return fmt.Errorf("%w: tar driver requires an index", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, c.Driver)
	}
	if c.Root == "" {
		return fmt.Errorf("%w: missing root", ErrInvalidConfig)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("%w: negative cache_ttl", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and validates a container config file.
func LoadConfig(fn string) (*Config, error) {
	fc, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}
	return ParseConfig(fc)
}

// ParseConfig parses and validates a YAML container config.
func ParseConfig(fc []byte) (*Config, error) {
	var res Config
	err := yaml.Unmarshal(fc, &res)
	if err != nil {
		return nil, fmt.Errorf("cannot parse container config: %w", err)
	}
	if res.Driver == "" {
		res.Driver = DriverLocal
	}
	if res.Driver == DriverGitHub && res.Revision == "" {
		res.Revision = "main"
	}
	err = res.Validate()
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Settings are process-wide options read from the environment.
type Settings struct {
	StoreDir    string `envconfig:"STORE" default:".assetidx"` // badger directory, or "memory"
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	GitHubToken string `envconfig:"GITHUB_TOKEN"`
}

// LoadSettings reads ASSETIDX_* environment variables. The GitHub token also
// falls back to $GITHUB_TOKEN.
func LoadSettings() (*Settings, error) {
	var res Settings
	err := envconfig.Process("assetidx", &res)
	if err != nil {
		return nil, fmt.Errorf("cannot load settings: %w", err)
	}
	return &res, nil
}
