package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	AppEnv                    string
	AppPort                   string
	AllowedOrigins            string
	DBDriver                  string
	DBHost                    string
	DBPort                    string
	DBUser                    string
	DBPassword                string
	DBName                    string
	DBPath                    string
	DBMaxIdleConns            int
	DBMaxOpenConns            int
	RedisHost                 string
	RedisPort                 string
	RedisPassword             string
	RedisDB                   int
	JWTSecret                 string
	JWTExpirationHours        int
	JWTRefreshExpirationHours int
	LogLevel                  string
	LogFormat                 string
	RateLimitEnabled          bool
	RateLimitRequests         int
	RateLimitWindowSeconds    int
}

// RedisAddr returns host:port of the redis instance backing the rate limiter.
func (c Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("allowed.origins", "*")
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "tasklist")
	v.SetDefault("db.password", "tasklist")
	v.SetDefault("db.name", "tasklist")
	v.SetDefault("db.path", "tasklist.db")
	v.SetDefault("db.max.idle.conns", 10)
	v.SetDefault("db.max.open.conns", 100)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "your-super-secret-key-change-this-in-production")
	v.SetDefault("jwt.expiration.hours", 24)
	v.SetDefault("jwt.refresh.expiration.hours", 24*7)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("rate.limit.enabled", false)
	v.SetDefault("rate.limit.requests", 20)
	v.SetDefault("rate.limit.window.seconds", 60)
}

// Load reads configuration from the environment and, when configFile is not
// empty, from that file. Environment variables take precedence; keys map to
// variables by upper-casing and replacing dots with underscores
// (db.max.idle.conns -> DB_MAX_IDLE_CONNS).
func Load(configFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := Config{
		AppEnv:                    v.GetString("app.env"),
		AppPort:                   v.GetString("app.port"),
		AllowedOrigins:            v.GetString("allowed.origins"),
		DBDriver:                  v.GetString("db.driver"),
		DBHost:                    v.GetString("db.host"),
		DBPort:                    v.GetString("db.port"),
		DBUser:                    v.GetString("db.user"),
		DBPassword:                v.GetString("db.password"),
		DBName:                    v.GetString("db.name"),
		DBPath:                    v.GetString("db.path"),
		DBMaxIdleConns:            v.GetInt("db.max.idle.conns"),
		DBMaxOpenConns:            v.GetInt("db.max.open.conns"),
		RedisHost:                 v.GetString("redis.host"),
		RedisPort:                 v.GetString("redis.port"),
		RedisPassword:             v.GetString("redis.password"),
		RedisDB:                   v.GetInt("redis.db"),
		JWTSecret:                 v.GetString("jwt.secret"),
		JWTExpirationHours:        v.GetInt("jwt.expiration.hours"),
		JWTRefreshExpirationHours: v.GetInt("jwt.refresh.expiration.hours"),
		LogLevel:                  v.GetString("log.level"),
		LogFormat:                 v.GetString("log.format"),
		RateLimitEnabled:          v.GetBool("rate.limit.enabled"),
		RateLimitRequests:         v.GetInt("rate.limit.requests"),
		RateLimitWindowSeconds:    v.GetInt("rate.limit.window.seconds"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.JWTExpirationHours <= 0 || c.JWTRefreshExpirationHours <= 0 {
		return fmt.Errorf("token expirations must be positive")
	}
	if c.RateLimitEnabled && (c.RateLimitRequests <= 0 || c.RateLimitWindowSeconds <= 0) {
		return fmt.Errorf("rate limit requests and window must be positive when enabled")
	}
	return nil
}
