package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Name string
		Env  string
		Port string
	} `mapstructure:"app"`

	Database struct {
		Driver          string
		DSN             string
		Host            string
		Port            string
		User            string
		Password        string
		Name            string
		SSLMode         string        `mapstructure:"sslmode"`
		TimeZone        string        `mapstructure:"timezone"`
		MaxIdleConns    int           `mapstructure:"max_idle_conns"`
		MaxOpenConns    int           `mapstructure:"max_open_conns"`
		ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
		LogLevel        string        `mapstructure:"log_level"`
		AutoMigrate     bool          `mapstructure:"auto_migrate"`
	} `mapstructure:"database"`

	JWT struct {
		Secret string
		TTL    time.Duration
		Issuer string
	} `mapstructure:"jwt"`

	Session struct {
		IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	} `mapstructure:"session"`

	Log struct {
		Level string
	} `mapstructure:"log"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	CORS struct {
		Origins string
	} `mapstructure:"cors"`

	Stock struct {
		LowThreshold int `mapstructure:"low_threshold"`
	} `mapstructure:"stock"`

	Seed struct {
		AdminEmail    string `mapstructure:"admin_email"`
		AdminPassword string `mapstructure:"admin_password"`
	} `mapstructure:"seed"`
}

var defaults = map[string]interface{}{
	"app.name":                   "Retail POS API",
	"app.env":                    "development",
	"app.port":                   "3000",
	"database.driver":            "postgres",
	"database.dsn":               "",
	"database.host":              "localhost",
	"database.port":              "5432",
	"database.user":              "postgres",
	"database.password":          "",
	"database.name":              "retail_pos",
	"database.sslmode":           "disable",
	"database.timezone":          "UTC",
	"database.max_idle_conns":    10,
	"database.max_open_conns":    100,
	"database.conn_max_lifetime": time.Hour,
	"database.log_level":         "warn",
	"database.auto_migrate":      true,
	"jwt.secret":                 "change-me-in-production",
	"jwt.ttl":                    24 * time.Hour,
	"jwt.issuer":                 "go-retail-pos",
	"session.idle_timeout":       5 * time.Minute,
	"log.level":                  "info",
	"metrics.enabled":            true,
	"cors.origins":               "*",
	"stock.low_threshold":        10,
	"seed.admin_email":           "admin@example.com",
	"seed.admin_password":        "admin123",
}

// Legacy variable names that keep working next to the APP_-style keys.
var aliases = map[string]string{
	"app.port":          "PORT",
	"database.dsn":      "DATABASE_URL",
	"database.driver":   "DB_DRIVER",
	"database.host":     "DB_HOST",
	"database.port":     "DB_PORT",
	"database.user":     "DB_USER",
	"database.password": "DB_PASSWORD",
	"database.name":     "DB_NAME",
	"jwt.secret":        "JWT_SECRET",
}

// Load reads .env (if present) and then the process environment.
// Keys map to variables by upper-casing and replacing dots, e.g. jwt.ttl -> JWT_TTL.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range aliases {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
