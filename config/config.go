package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	cardfshttp "github.com/sagarc03/cardfs/http"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for cardfs.
type Config struct {
	Server  ServerConfig          `mapstructure:"server" yaml:"server"`
	Storage StorageConfig         `mapstructure:"storage" yaml:"storage"`
	List    ListConfig            `mapstructure:"list" yaml:"list"`
	CORS    cardfshttp.CORSConfig `mapstructure:"cors" yaml:"cors"`
	Metrics MetricsConfig         `mapstructure:"metrics" yaml:"metrics"`
	Log     LogConfig             `mapstructure:"log" yaml:"log"`
	Env     string                `mapstructure:"env" yaml:"env" validate:"required,oneof=dev development prod production"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port          int           `mapstructure:"port" yaml:"port" validate:"required,min=1,max=65535"`
	MaxUploadSize int64         `mapstructure:"max_upload_size" yaml:"max_upload_size" validate:"min=0"`
	ChunkSize     int           `mapstructure:"chunk_size" yaml:"chunk_size" validate:"required,min=512,max=1048576"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" validate:"min=0"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" validate:"min=0"`
	IdleTimeout   time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" validate:"min=0"`
}

// StorageConfig locates the volume and names its two path namespaces.
type StorageConfig struct {
	Path       string `mapstructure:"path" yaml:"path" validate:"required"`
	MountRoot  string `mapstructure:"mount_root" yaml:"mount_root" validate:"required,startswith=/"`
	VolumeRoot string `mapstructure:"volume_root" yaml:"volume_root" validate:"required,excludes=/"`
}

// ListConfig bounds directory listings.
type ListConfig struct {
	Depth    uint `mapstructure:"depth" yaml:"depth" validate:"ltefield=MaxDepth"`
	MaxDepth uint `mapstructure:"max_depth" yaml:"max_depth" validate:"required,min=1,max=256"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path" validate:"required,startswith=/"`
}

// LogConfig holds logging configuration. An empty Format picks JSON in
// production and colored text otherwise.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=text json"`
}

// IsProduction reports whether cardfs runs in a production environment.
func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

// LogFormat returns the log format to use, "text" or "json".
func (c *Config) LogFormat() string {
	if c.Log.Format != "" {
		return c.Log.Format
	}
	if c.IsProduction() {
		return "json"
	}
	return "text"
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"storage-path":    "storage.path",
	"port":            "server.port",
	"chunk-size":      "server.chunk_size",
	"max-upload-size": "server.max_upload_size",
	"mount-root":      "storage.mount_root",
	"list-depth":      "list.depth",
	"log-level":       "log.level",
	"log-format":      "log.format",
	"metrics":         "metrics.enabled",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5708)
	v.SetDefault("server.max_upload_size", 0) // 0 means no limit
	v.SetDefault("server.chunk_size", 4096)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 0) // downloads stream for as long as they need
	v.SetDefault("server.idle_timeout", 120*time.Second)

	v.SetDefault("storage.path", "./data")
	v.SetDefault("storage.mount_root", "/sdcard")
	v.SetDefault("storage.volume_root", "0:")

	v.SetDefault("list.depth", 12)
	v.SetDefault("list.max_depth", 32)

	v.SetDefault("cors.enabled", false)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "DELETE"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type"})
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "")
	v.SetDefault("env", "dev")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("CARDFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration Load produces with no files, environment
// or flags.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// WriteDefault writes the default configuration as YAML to path. It refuses
// to overwrite an existing file.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write config file: %w", err)
	}
	return f.Close()
}
