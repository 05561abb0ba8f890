package config

import (
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/startificial/requireflow/internal/errors"
)

const (
	DefaultListenAddr = ":8080"
	DefaultLogLevel   = "info"

	defaultDatabase           = "requireflow.db"
	defaultSessionTTLMinutes  = 10080 // 7 days
	defaultCacheTTLSeconds    = 300
	defaultGenerationModel    = "gemini-2.0-flash"
	defaultGenerationAttempts = 3
)

type Config struct {
	ListenAddr         string `mapstructure:"listen_addr"`
	Database           string `mapstructure:"database"`
	LogLevel           string `mapstructure:"log_level"`
	Debug              bool   `mapstructure:"debug"`
	SessionTTL         int    `mapstructure:"session_ttl"`
	CacheTTL           int    `mapstructure:"cache_ttl"`
	GenerationEndpoint string `mapstructure:"generation_endpoint"`
	GenerationModel    string `mapstructure:"generation_model"`
	GenerationAttempts int    `mapstructure:"generation_attempts"`
}

// Load reads configuration from the config file, environment variables and
// command line flags, in increasing order of precedence. The config file is
// requireflow.toml in /etc/requireflow or the working directory, or the file
// named by REQUIREFLOW_CONFIG.
func Load() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	v := viper.New()

	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("database", defaultDatabase)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("debug", false)
	v.SetDefault("session_ttl", defaultSessionTTLMinutes)
	v.SetDefault("cache_ttl", defaultCacheTTLSeconds)
	v.SetDefault("generation_endpoint", "")
	v.SetDefault("generation_model", defaultGenerationModel)
	v.SetDefault("generation_attempts", defaultGenerationAttempts)

	flags := pflag.NewFlagSet("requireflow", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.String("listen-addr", DefaultListenAddr, "Address for the HTTP API to listen on")
	flags.String("database", defaultDatabase, "Path to the SQLite database")
	flags.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	flags.Bool("debug", false, "Enable request pipeline debug logging")
	if err := flags.Parse(args); err != nil {
		return nil, errors.NewValidation("failed to parse flags: "+err.Error(), nil)
	}

	flagKeys := map[string]string{
		"listen-addr": "listen_addr",
		"database":    "database",
		"log-level":   "log_level",
		"debug":       "debug",
	}
	flags.Visit(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})

	v.SetEnvPrefix("REQUIREFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("REQUIREFLOW_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("requireflow")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/requireflow")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.NewValidation("Failed to read config file: "+err.Error(), nil)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.NewValidation("Failed to unmarshal config: "+err.Error(), nil)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the loaded configuration and returns a Validation error
// describing every invalid field.
func (c *Config) Validate() error {
	fields := map[string][]string{}

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		fields["log_level"] = append(fields["log_level"], "must be one of: debug, info, warning, error")
	}
	if c.ListenAddr == "" {
		fields["listen_addr"] = append(fields["listen_addr"], "must not be empty")
	}
	if c.Database == "" {
		fields["database"] = append(fields["database"], "must not be empty")
	}
	if c.SessionTTL <= 0 {
		fields["session_ttl"] = append(fields["session_ttl"], "must be a positive number of minutes")
	}
	if c.CacheTTL <= 0 {
		fields["cache_ttl"] = append(fields["cache_ttl"], "must be a positive number of seconds")
	}
	if c.GenerationAttempts < 1 {
		fields["generation_attempts"] = append(fields["generation_attempts"], "must be at least 1")
	}

	if len(fields) > 0 {
		return errors.NewValidation("Invalid configuration", fields)
	}
	return nil
}
