package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full runtime configuration. Every key has a default so the
// binaries start without a config file.
type Config struct {
	Server struct {
		Port           int    `mapstructure:"port"`
		AllowedOrigins string `mapstructure:"allowed_origins"`
		BodyLimit      int64  `mapstructure:"body_limit"`
		SecureCookie   bool   `mapstructure:"secure_cookie"`
	} `mapstructure:"server"`

	Database struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"database"`

	Redis struct {
		Addr     string        `mapstructure:"addr"`
		Password string        `mapstructure:"password"`
		DB       int           `mapstructure:"db"`
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"redis"`

	Auth struct {
		JWTSecret string        `mapstructure:"jwt_secret"`
		TokenTTL  time.Duration `mapstructure:"token_ttl"`
	} `mapstructure:"auth"`

	AI struct {
		APIKey string `mapstructure:"api_key"`
		Model  string `mapstructure:"model"`
	} `mapstructure:"ai"`

	Notifications struct {
		Enabled      bool          `mapstructure:"enabled"`
		PollInterval time.Duration `mapstructure:"poll_interval"`
	} `mapstructure:"notifications"`

	Store struct {
		Namespace string `mapstructure:"namespace"`
	} `mapstructure:"store"`

	Backup struct {
		Bucket    string `mapstructure:"bucket"`
		Region    string `mapstructure:"region"`
		Endpoint  string `mapstructure:"endpoint"`
		Prefix    string `mapstructure:"prefix"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"backup"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

// Load reads .env, then configs/config.yaml (optional), then the environment.
// Nested keys map to env vars with "_" in place of "." (SERVER_PORT, REDIS_ADDR).
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFile("configs/config.yaml")
}

// LoadFile is Load without the .env step, reading the given YAML path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Well-known variables win over the nested names.
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = origins
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", "")
	v.SetDefault("server.body_limit", 1<<20)
	v.SetDefault("server.secure_cookie", true)
	v.SetDefault("database.url", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", 10*time.Minute)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 12*time.Hour)
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "gpt-4o")
	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.poll_interval", 5*time.Minute)
	v.SetDefault("store.namespace", "default")
	v.SetDefault("backup.bucket", "")
	v.SetDefault("backup.region", "auto")
	v.SetDefault("backup.endpoint", "")
	v.SetDefault("backup.prefix", "invoizo")
	v.SetDefault("backup.access_key", "")
	v.SetDefault("backup.secret_key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
