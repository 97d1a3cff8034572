package clientcli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultEndpoint is the default server endpoint URL.
	DefaultEndpoint = "http://localhost:5708"
	// DefaultMountRoot is the mount root a cardfs server uses unless configured otherwise.
	DefaultMountRoot = "/sdcard"
)

// Profile is one named server in the client config file.
type Profile struct {
	Name      string        `yaml:"name"`
	Endpoint  string        `yaml:"endpoint"`
	MountRoot string        `yaml:"mount_root,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	Default   bool          `yaml:"default,omitempty"`
}

// ConfigFile is the on-disk client config: a list of server profiles.
type ConfigFile struct {
	Profiles []Profile `yaml:"profiles"`
}

func (c *ConfigFile) index(name string) int {
	return slices.IndexFunc(c.Profiles, func(p Profile) bool { return p.Name == name })
}

// GetProfile returns the named profile, or the default profile when name is
// empty.
func (c *ConfigFile) GetProfile(name string) (*Profile, error) {
	if name == "" {
		return c.GetDefaultProfile()
	}
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	i := c.index(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return &c.Profiles[i], nil
}

// GetDefaultProfile returns the profile marked as default, falling back to
// the first one.
func (c *ConfigFile) GetDefaultProfile() (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	if i := slices.IndexFunc(c.Profiles, func(p Profile) bool { return p.Default }); i >= 0 {
		return &c.Profiles[i], nil
	}
	return &c.Profiles[0], nil
}

// AddProfile appends p. It fails with ErrProfileExists if the name is taken.
func (c *ConfigFile) AddProfile(p Profile) error {
	if c.index(p.Name) >= 0 {
		return fmt.Errorf("%w: %s", ErrProfileExists, p.Name)
	}
	c.Profiles = append(c.Profiles, p)
	return nil
}

// UpdateProfile replaces the profile with the same name.
func (c *ConfigFile) UpdateProfile(p Profile) error {
	i := c.index(p.Name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, p.Name)
	}
	c.Profiles[i] = p
	return nil
}

// RemoveProfile deletes the named profile.
func (c *ConfigFile) RemoveProfile(name string) error {
	i := c.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	c.Profiles = slices.Delete(c.Profiles, i, i+1)
	return nil
}

// SetDefault marks name as the only default profile.
func (c *ConfigFile) SetDefault(name string) error {
	if c.index(name) < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	for i := range c.Profiles {
		c.Profiles[i].Default = c.Profiles[i].Name == name
	}
	return nil
}

// ProfileNames returns the profile names in file order.
func (c *ConfigFile) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		names = append(names, p.Name)
	}
	return names
}

// Save writes the config file, creating its directory if needed. The file
// is private to the user.
func (c *ConfigFile) Save(path string) error {
	cleanPath := filepath.Clean(path)

	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(cleanPath, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// LoadConfigFile reads a config file written by Save.
func LoadConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(filepath.Clean(path)) //#nosec G304 -- path is user-provided config file
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &cfg, nil
}

// DefaultConfigPath returns ~/.cardfs/config.yaml, or "" if the home
// directory is unknown.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cardfs", "config.yaml")
}

// Config is the resolved client configuration for one server.
type Config struct {
	Endpoint  string
	MountRoot string        // virtual root relative remote paths are placed under
	Timeout   time.Duration // for list, delete and mkdir; 0 means DefaultTimeout
}

// Validate checks the fields that are set. The endpoint must be an absolute
// http(s) URL and the mount root an absolute path without a trailing slash.
func (c *Config) Validate() error {
	if c.Endpoint != "" {
		u, err := url.Parse(c.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidEndpoint, c.Endpoint)
		}
	}
	if c.MountRoot != "" {
		if len(c.MountRoot) < 2 || !strings.HasPrefix(c.MountRoot, "/") || strings.HasSuffix(c.MountRoot, "/") {
			return fmt.Errorf("%w: %q", ErrInvalidMountRoot, c.MountRoot)
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.Timeout)
	}
	return nil
}

// WithDefaults returns a copy with the endpoint and mount root filled in.
func (c *Config) WithDefaults() *Config {
	cfg := *c
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.MountRoot == "" {
		cfg.MountRoot = DefaultMountRoot
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &cfg
}

// ConfigFromProfile creates a Config from a Profile.
func ConfigFromProfile(p *Profile) *Config {
	if p == nil {
		return &Config{}
	}
	return &Config{
		Endpoint:  p.Endpoint,
		MountRoot: p.MountRoot,
		Timeout:   p.Timeout,
	}
}

// ConfigFromEnv reads CARDFS_ENDPOINT, CARDFS_MOUNT_ROOT and CARDFS_TIMEOUT.
// An unparsable timeout is ignored.
func ConfigFromEnv() *Config {
	cfg := &Config{
		Endpoint:  os.Getenv("CARDFS_ENDPOINT"),
		MountRoot: os.Getenv("CARDFS_MOUNT_ROOT"),
	}
	if d, err := time.ParseDuration(os.Getenv("CARDFS_TIMEOUT")); err == nil {
		cfg.Timeout = d
	}
	return cfg
}

// ProfileFromEnv returns the profile name from CARDFS_PROFILE.
func ProfileFromEnv() string {
	return os.Getenv("CARDFS_PROFILE")
}

// ConfigPathFromEnv returns the config file path from CARDFS_CONFIG.
func ConfigPathFromEnv() string {
	return os.Getenv("CARDFS_CONFIG")
}

// MergeConfig layers configs left to right. Zero fields never override a
// value set by an earlier config.
func MergeConfig(configs ...*Config) *Config {
	result := &Config{}
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		if cfg.Endpoint != "" {
			result.Endpoint = cfg.Endpoint
		}
		if cfg.MountRoot != "" {
			result.MountRoot = cfg.MountRoot
		}
		if cfg.Timeout != 0 {
			result.Timeout = cfg.Timeout
		}
	}
	return result
}
