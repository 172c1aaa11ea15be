package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"user_management/internal/models"
	"user_management/internal/repository/db"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "USERS"

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	DB      db.Config     `mapstructure:"db"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Seed    SeedConfig    `mapstructure:"seed"`
}

type ServerConfig struct {
	Port              string        `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

// SeedConfig holds the accounts provisioned by the seed command.
type SeedConfig struct {
	Admin models.SeedAccount `mapstructure:"admin"`
	User  models.SeedAccount `mapstructure:"user"`
}

// Accounts returns the seed accounts in provisioning order.
func (s SeedConfig) Accounts() []models.SeedAccount {
	return []models.SeedAccount{s.Admin, s.User}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "app.db")
	v.SetDefault("db.max_open_conns", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.service_name", "user-management")

	v.SetDefault("seed.admin.name", "ADMIN")
	v.SetDefault("seed.admin.email", "admin@123.com")
	v.SetDefault("seed.admin.password", "AG3ND4DM-123_")
	v.SetDefault("seed.admin.role", string(models.RoleAdmin))
	v.SetDefault("seed.user.name", "USER")
	v.SetDefault("seed.user.email", "user@123.com")
	v.SetDefault("seed.user.password", "U$3R-2025_")
	v.SetDefault("seed.user.role", string(models.RoleUser))
}

// PathFromArgs parses --config from the command line. Empty means the
// default lookup of configs/config.yml.
func PathFromArgs(name string, args []string) (string, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	path := fs.StringP("config", "c", "", "path to config file (default configs/config.yml)")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	return *path, nil
}

// Load reads an optional .env, the config file and USERS_* environment
// overrides, in increasing precedence. A missing default config file is
// not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs") // configs/config.yml
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth.jwt_secret is empty; set it in the config file or USERS_AUTH_JWT_SECRET")
	}
	if _, err := db.ParseDialect(c.DB.Driver); err != nil {
		return fmt.Errorf("db.driver: %w", err)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	return nil
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{port: %s, db: %s, auth: *** (masked) ***, log: %s/%s, metrics: %t, tracing: %t}",
		c.Server.Port, c.DB.Driver, c.Log.Level, c.Log.Format, c.Metrics.Enabled, c.Tracing.Enabled)
}
