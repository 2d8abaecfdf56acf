package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/client"
	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

// EnvPrefix namespaces environment overrides (XUSERS_SERVER, XUSERS_TIMEOUT, ...).
const EnvPrefix = "XUSERS"

// Viper keys.
const (
	KeyServer    = "server"
	KeyLogLevel  = "log_level"
	KeyTimeout   = "timeout"
	KeyEphemeral = "ephemeral"
)

// Defaults.
const (
	DefaultServerURL = "http://localhost:8000"
	DefaultLogLevel  = "warn"
	DefaultTimeout   = 30 * time.Second
)

// Settings are the user-tunable options resolved from flags, environment
// and the optional config file, in that order of precedence.
type Settings struct {
	ServerURL string        `mapstructure:"server"`
	LogLevel  string        `mapstructure:"log_level"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Ephemeral bool          `mapstructure:"ephemeral"`
}

// NewViper returns a viper instance with defaults and env binding applied.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyServer, DefaultServerURL)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyEphemeral, false)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds the root command's persistent flags to their keys.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range map[string]string{
		KeyServer:    "server",
		KeyLogLevel:  "log-level",
		KeyTimeout:   "timeout",
		KeyEphemeral: "ephemeral",
	} {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

// Load reads the config file (configFile, or config.yaml under dir when
// configFile is empty) and resolves Settings. A missing default config file
// is not an error; a missing explicit one is.
func Load(v *viper.Viper, dir, configFile string) (*Settings, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir != "" {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Validate rejects unusable settings.
func (s *Settings) Validate() error {
	u, err := url.Parse(s.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server URL %q: must be http(s)://host[:port]", s.ServerURL)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", s.Timeout)
	}
	return nil
}

// ConfigPath returns the default config file location inside dir.
func ConfigPath(dir string) string {
	return filepath.Join(dir, "config.yaml")
}

type contextKey string

const configKey contextKey = "xusersctl-config"

// GlobalConfig holds shared state for all xusersctl commands.
// The root command's PersistentPreRunE injects it into the command context.
type GlobalConfig struct {
	Settings
	Logger         *zap.Logger
	Store          sdk.SessionStore
	ClientProvider *client.Provider
}

// WithTimeout derives a context bounded by the configured request timeout.
func (c *GlobalConfig) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.Timeout)
}

// InjectConfig adds config to the cobra command context.
func InjectConfig(ctx context.Context, cfg *GlobalConfig) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from the cobra command context.
// Returns (nil, false) if config is not present.
func FromContext(ctx context.Context) (*GlobalConfig, bool) {
	cfg, ok := ctx.Value(configKey).(*GlobalConfig)
	return cfg, ok
}

// MustFromContext retrieves config from context or panics.
// Only for RunE functions under the root command.
func MustFromContext(ctx context.Context) *GlobalConfig {
	cfg, ok := FromContext(ctx)
	if !ok {
		panic("xusersctl: config not found in context - this is a bug in xusersctl")
	}
	return cfg
}
