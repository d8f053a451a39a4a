package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/crimson-sun/vitigate/internal/logging"
	"github.com/crimson-sun/vitigate/internal/parser"
	"github.com/crimson-sun/vitigate/internal/tracing"
	"github.com/crimson-sun/vitigate/internal/upstream"
)

// Version is the current vitigate release version.
var Version = "0.3.0"

// EnvPrefix is prepended to every environment variable, e.g.
// VITIGATE_SERVER_LISTEN for server.listen.
const EnvPrefix = "VITIGATE"

// InsecureSecret is the signing secret used when none is configured. It is
// only accepted in debug mode.
const InsecureSecret = "change-me"

// Config holds all vitigate configuration.
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Auth     AuthConfig
	Log      LogConfig
	Tracing  tracing.Config
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Listen          string
	ShutdownTimeout time.Duration
	Debug           bool
}

// UpstreamConfig selects and tunes the upstream source.
type UpstreamConfig struct {
	Source  string // registered upstream source: "http", "dir"
	BaseURL string
	Dir     string
	Timeout time.Duration
	Charset string
	LogBody bool
}

// AuthConfig holds login credentials and token settings.
type AuthConfig struct {
	Secret      string
	Username    string
	Password    string
	TokenTTL    time.Duration
	ProtectData bool
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	tc := tracing.DefaultConfig()

	v.SetDefault("server.listen", "0.0.0.0:5000")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.debug", false)

	v.SetDefault("upstream.source", "http")
	v.SetDefault("upstream.base_url", "http://vitibrasil.cnpuv.embrapa.br/download")
	v.SetDefault("upstream.dir", "")
	v.SetDefault("upstream.timeout", 30*time.Second)
	v.SetDefault("upstream.charset", "utf-8")
	v.SetDefault("upstream.log_body", false)

	v.SetDefault("auth.secret", InsecureSecret)
	v.SetDefault("auth.username", "zorzi")
	v.SetDefault("auth.password", "biguxo")
	v.SetDefault("auth.token_ttl", 15*time.Minute)
	v.SetDefault("auth.protect_data", false)

	v.SetDefault("log.level", "info")

	v.SetDefault("tracing.enabled", tc.Enabled)
	v.SetDefault("tracing.exporter", tc.Exporter)
	v.SetDefault("tracing.otlp_endpoint", tc.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", tc.SampleRate)
	v.SetDefault("tracing.service_name", tc.ServiceName)
}

// NewViper returns a viper instance with defaults registered and environment
// overrides enabled.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile merges a YAML (or any viper-supported) config file into v.
func ReadFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	return nil
}

// Load builds a Config from v.
func Load(v *viper.Viper) Config {
	return Config{
		Server: ServerConfig{
			Listen:          v.GetString("server.listen"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			Debug:           v.GetBool("server.debug"),
		},
		Upstream: UpstreamConfig{
			Source:  v.GetString("upstream.source"),
			BaseURL: v.GetString("upstream.base_url"),
			Dir:     v.GetString("upstream.dir"),
			Timeout: v.GetDuration("upstream.timeout"),
			Charset: v.GetString("upstream.charset"),
			LogBody: v.GetBool("upstream.log_body"),
		},
		Auth: AuthConfig{
			Secret:      v.GetString("auth.secret"),
			Username:    v.GetString("auth.username"),
			Password:    v.GetString("auth.password"),
			TokenTTL:    v.GetDuration("auth.token_ttl"),
			ProtectData: v.GetBool("auth.protect_data"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
		Tracing: tracing.Config{
			Enabled:      v.GetBool("tracing.enabled"),
			Exporter:     v.GetString("tracing.exporter"),
			OTLPEndpoint: v.GetString("tracing.otlp_endpoint"),
			SampleRate:   v.GetFloat64("tracing.sample_rate"),
			ServiceName:  v.GetString("tracing.service_name"),
		},
	}
}

// Validate checks that the configuration is usable for serving. It returns
// all problems found, joined.
func (c Config) Validate() error {
	return c.validate(true)
}

// ValidateClient checks only the settings a one-shot fetch uses: upstream,
// logging and tracing.
func (c Config) ValidateClient() error {
	return c.validate(false)
}

func (c Config) validate(serving bool) error {
	var errs []error
	if serving {
		errs = append(errs, c.validateServing()...)
	}

	if !slices.Contains(upstream.Sources(), c.Upstream.Source) {
		errs = append(errs, fmt.Errorf("upstream.source %q is not one of %v", c.Upstream.Source, upstream.Sources()))
	}
	switch c.Upstream.Source {
	case "http":
		if c.Upstream.BaseURL == "" {
			errs = append(errs, fmt.Errorf("upstream.base_url is required for the http source"))
		}
	case "dir":
		if c.Upstream.Dir == "" {
			errs = append(errs, fmt.Errorf("upstream.dir is required for the dir source"))
		}
	}
	if c.Upstream.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("upstream.timeout must be positive, got %v", c.Upstream.Timeout))
	}
	if !parser.ValidCharset(c.Upstream.Charset) {
		errs = append(errs, fmt.Errorf("upstream.charset %q is not a known encoding", c.Upstream.Charset))
	}

	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}

	if c.Tracing.Enabled {
		switch c.Tracing.Exporter {
		case "stdout", "otlp", "none", "":
		default:
			errs = append(errs, fmt.Errorf("tracing.exporter %q is not one of stdout, otlp, none", c.Tracing.Exporter))
		}
		if c.Tracing.SampleRate <= 0 || c.Tracing.SampleRate > 1 {
			errs = append(errs, fmt.Errorf("tracing.sample_rate must be in (0, 1], got %v", c.Tracing.SampleRate))
		}
	}

	return errors.Join(errs...)
}

func (c Config) validateServing() []error {
	var errs []error
	if c.Server.Listen == "" {
		errs = append(errs, fmt.Errorf("server.listen must not be empty"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must be positive, got %v", c.Server.ShutdownTimeout))
	}
	if c.Auth.Secret == "" {
		errs = append(errs, fmt.Errorf("auth.secret must not be empty"))
	} else if c.Auth.Secret == InsecureSecret && !c.Server.Debug {
		errs = append(errs, fmt.Errorf("auth.secret is the insecure default; set VITIGATE_AUTH_SECRET or enable server.debug"))
	}
	if c.Auth.Username == "" || c.Auth.Password == "" {
		errs = append(errs, fmt.Errorf("auth.username and auth.password are required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("auth.token_ttl must be positive, got %v", c.Auth.TokenTTL))
	}
	return errs
}
