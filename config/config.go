package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

// Auth strategies. Exactly one is active per deployment; the two are
// never mixed in one running service.
const (
	AuthStrategyToken   = "token"
	AuthStrategySession = "session"
)

// Rate limit store backends.
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

type Config struct {
	Mode   string `mapstructure:"mode"` // "development" or "production"
	Server struct {
		HTTPPort    string        `mapstructure:"HTTPPort"`
		MetricsPort string        `mapstructure:"MetricsPort"`
		Timeout     time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Repositories struct {
		Postgres struct {
			Host     string `mapstructure:"host"`
			Password string `mapstructure:"password"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			DB       string `mapstructure:"db"`
			SSLMode  string `mapstructure:"sslmode"`
		} `mapstructure:"postgres"`
		Redis struct {
			Addr     string `mapstructure:"addr"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"repositories"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

// AuthConfig carries every secret and knob the credential components
// need. It is passed explicitly to constructors; nothing in the auth
// core reads ambient process configuration.
type AuthConfig struct {
	Strategy   string        `mapstructure:"strategy"` // "token" or "session"
	JWT        JWTConfig     `mapstructure:"jwt"`
	SessionTTL time.Duration `mapstructure:"sessionTTL"`
	Cookie     CookieConfig  `mapstructure:"cookie"`
}

type JWTConfig struct {
	SecretKey string        `mapstructure:"secretKey"`
	TokenTTL  time.Duration `mapstructure:"tokenTTL"`
	Issuer    string        `mapstructure:"issuer"`
	Audience  string        `mapstructure:"audience"`
}

// CookieConfig describes the session cookie for the stateful strategy.
type CookieConfig struct {
	Name     string `mapstructure:"name"`
	Path     string `mapstructure:"path"`
	Domain   string `mapstructure:"domain"`
	Secure   bool   `mapstructure:"secure"`
	SameSite string `mapstructure:"sameSite"` // "lax", "strict", "none"
}

// RateLimitConfig controls login throttling. Store must be "redis"
// when the service runs as more than one instance, otherwise the
// window is counted per instance instead of globally.
type RateLimitConfig struct {
	MaxAttempts int           `mapstructure:"maxAttempts"`
	Window      time.Duration `mapstructure:"window"`
	Store       string        `mapstructure:"store"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Secrets and per-environment values come from the environment
	// (godotenv loads .env in main before this runs).
	v.SetEnvPrefix("ADMIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{
		"auth.jwt.secretKey",
		"repositories.postgres.password",
		"repositories.redis.addr",
		"repositories.redis.password",
	} {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	if err = config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) validate() error {
	switch c.Auth.Strategy {
	case AuthStrategyToken:
		if c.Auth.JWT.SecretKey == "" {
			return fmt.Errorf("auth strategy %q requires auth.jwt.secretKey", c.Auth.Strategy)
		}
	case AuthStrategySession:
		if c.Auth.SessionTTL <= 0 {
			return fmt.Errorf("auth strategy %q requires a positive auth.sessionTTL", c.Auth.Strategy)
		}
	default:
		return fmt.Errorf("unknown auth strategy %q (want %q or %q)",
			c.Auth.Strategy, AuthStrategyToken, AuthStrategySession)
	}

	switch c.RateLimit.Store {
	case RateLimitStoreMemory, RateLimitStoreRedis:
	default:
		return fmt.Errorf("unknown rate limit store %q (want %q or %q)",
			c.RateLimit.Store, RateLimitStoreMemory, RateLimitStoreRedis)
	}
	if c.RateLimit.MaxAttempts <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit requires positive maxAttempts and window")
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
// The session cookie is only marked Secure in production.
func (c Config) IsProduction() bool {
	return c.Mode == "production"
}
