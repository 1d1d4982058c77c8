// Package config loads service settings from defaults, an optional YAML file,
// a .env file, GLOWCYCLE_* environment variables and bound flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mikecbrant/glowcycle/internal/generator"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "glowcycle"

// Config is the resolved service configuration.
type Config struct {
	Region   string
	Profile  string
	Table    string
	Endpoint string
	LogLevel string

	Generator generator.Config
	// MaxOutputTokens caps generator output.
	MaxOutputTokens int

	Query  QueryLimits
	Server Server
	Seed   Seed
}

// QueryLimits bound the context queries.
type QueryLimits struct {
	Journals int
	Periods  int
	Skins    int
}

// Server configures the HTTP adapter.
type Server struct {
	Addr         string
	AllowOrigins []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// WellnessPerMinute limits support requests per user; zero disables.
	WellnessPerMinute int
	WellnessBurst     int
}

// Seed throttles fixture writes.
type Seed struct {
	WritesPerSecond float64
	Burst           int
}

// SetDefaults installs the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("region", "us-east-1")
	v.SetDefault("profile", "")
	v.SetDefault("table", "GlowCycleTable")
	v.SetDefault("endpoint", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("generator.provider", generator.ProviderBedrock)
	v.SetDefault("generator.model", "")
	v.SetDefault("generator.api_key", "")
	v.SetDefault("generator.base_url", "")
	v.SetDefault("generator.max_output_tokens", 50)
	v.SetDefault("generator.temperature", generator.DefaultTemperature)
	v.SetDefault("generator.timeout", 30)
	v.SetDefault("query.journal_limit", 20)
	v.SetDefault("query.period_limit", 10)
	v.SetDefault("query.skin_limit", 5)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.wellness_per_minute", 30)
	v.SetDefault("server.wellness_burst", 5)
	v.SetDefault("seed.writes_per_second", 10.0)
	v.SetDefault("seed.burst", 1)
}

// Load reads configuration into v and resolves it. A non-empty file must
// exist; dotenv names an optional .env file.
func Load(v *viper.Viper, file, dotenv string) (Config, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", dotenv, err)
		}
	}
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// names used by the earlier deployment
	if err := v.BindEnv("table", "GLOWCYCLE_TABLE", "DYNAMODB_TABLE_NAME"); err != nil {
		return Config{}, err
	}
	if err := v.BindEnv("region", "GLOWCYCLE_REGION", "AWS_REGION"); err != nil {
		return Config{}, err
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", file, err)
		}
	}
	return resolve(v)
}

func resolve(v *viper.Viper) (Config, error) {
	c := Config{
		Region:   v.GetString("region"),
		Profile:  v.GetString("profile"),
		Table:    v.GetString("table"),
		Endpoint: v.GetString("endpoint"),
		LogLevel: strings.ToLower(v.GetString("log_level")),
		Generator: generator.Config{
			Provider:    strings.ToLower(v.GetString("generator.provider")),
			Model:       v.GetString("generator.model"),
			APIKey:      v.GetString("generator.api_key"),
			BaseURL:     v.GetString("generator.base_url"),
			Temperature: v.GetFloat64("generator.temperature"),
			Timeout:     v.GetInt("generator.timeout"),
		},
		MaxOutputTokens: v.GetInt("generator.max_output_tokens"),
		Query: QueryLimits{
			Journals: v.GetInt("query.journal_limit"),
			Periods:  v.GetInt("query.period_limit"),
			Skins:    v.GetInt("query.skin_limit"),
		},
		Server: Server{
			Addr:              v.GetString("server.addr"),
			AllowOrigins:      v.GetStringSlice("server.allow_origins"),
			ReadTimeout:       v.GetDuration("server.read_timeout"),
			WriteTimeout:      v.GetDuration("server.write_timeout"),
			WellnessPerMinute: v.GetInt("server.wellness_per_minute"),
			WellnessBurst:     v.GetInt("server.wellness_burst"),
		},
		Seed: Seed{
			WritesPerSecond: v.GetFloat64("seed.writes_per_second"),
			Burst:           v.GetInt("seed.burst"),
		},
	}
	return c, c.Validate()
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if c.Table == "" {
		return errors.New("config: table must be set")
	}
	switch c.Generator.Provider {
	case generator.ProviderBedrock:
	case generator.ProviderOpenAI:
		if c.Generator.APIKey == "" && c.Generator.BaseURL == "" {
			return errors.New("config: generator.api_key or generator.base_url is required for openai")
		}
	default:
		return fmt.Errorf("config: unknown generator.provider %q", c.Generator.Provider)
	}
	if c.MaxOutputTokens <= 0 {
		return errors.New("config: generator.max_output_tokens must be positive")
	}
	if c.Query.Journals <= 0 || c.Query.Periods <= 0 || c.Query.Skins <= 0 {
		return errors.New("config: query limits must be positive")
	}
	if c.Server.WellnessPerMinute < 0 {
		return errors.New("config: server.wellness_per_minute must not be negative")
	}
	if c.Seed.WritesPerSecond <= 0 {
		return errors.New("config: seed.writes_per_second must be positive")
	}
	return nil
}
