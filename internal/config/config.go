package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
		MaxConns int    `mapstructure:"max_conns"`
	} `mapstructure:"database"`

	JWT struct {
		Secret          string `mapstructure:"secret"`
		ExpirationHours int    `mapstructure:"expiration_hours"`
		Issuer          string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`

	// Auth holds the superadmin account created when the users table is empty.
	Auth struct {
		BootstrapName     string `mapstructure:"bootstrap_name"`
		BootstrapEmail    string `mapstructure:"bootstrap_email"`
		BootstrapPassword string `mapstructure:"bootstrap_password"`
	} `mapstructure:"auth"`

	Redis struct {
		Enabled  bool   `mapstructure:"enabled"`
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	// Storage is the S3-compatible bucket receipts are archived to.
	Storage struct {
		Enabled   bool   `mapstructure:"enabled"`
		Endpoint  string `mapstructure:"endpoint"`
		Region    string `mapstructure:"region"`
		Bucket    string `mapstructure:"bucket"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
		Prefix    string `mapstructure:"prefix"`
	} `mapstructure:"storage"`

	Scheduler struct {
		Enabled       bool   `mapstructure:"enabled"`
		ReconcileSpec string `mapstructure:"reconcile_spec"`
	} `mapstructure:"scheduler"`

	Business struct {
		Timezone    string `mapstructure:"timezone"`
		BrokerName  string `mapstructure:"broker_name"`
		CompanyName string `mapstructure:"company_name"`
	} `mapstructure:"business"`
}

// DSN builds the PostgreSQL connection string.
func (c *Config) DSN() string {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Name)
	params := []string{}
	if c.Database.SSLMode != "" {
		params = append(params, "sslmode="+c.Database.SSLMode)
	}
	if c.Database.MaxConns > 0 {
		params = append(params, "pool_max_conns="+strconv.Itoa(c.Database.MaxConns))
	}
	if len(params) > 0 {
		dsn += "?" + strings.Join(params, "&")
	}
	return dsn
}

func Load() *Config {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")

	v.AutomaticEnv()

	// Set sensible defaults (binary works without config file)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.cors_allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("server.cors_allowed_headers", []string{"Content-Type", "Authorization", "X-Request-ID"})
	v.SetDefault("jwt.expiration_hours", 24)
	v.SetDefault("jwt.issuer", "fleet-backend")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "fleet_db")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("auth.bootstrap_name", "Super Admin")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("storage.region", "auto")
	v.SetDefault("storage.prefix", "receipts")
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.reconcile_spec", "0 2 * * *")
	v.SetDefault("business.timezone", "Asia/Riyadh")
	v.SetDefault("business.broker_name", "Broker")
	v.SetDefault("business.company_name", "ESSA Transport")

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	applyEnv(&cfg)

	if cfg.JWT.Secret == "" || cfg.JWT.Secret == "${JWT_SECRET}" {
		log.Fatal("JWT_SECRET not found in environment or config file")
	}

	return &cfg
}

// applyEnv lets explicit environment variables win over file and defaults.
func applyEnv(cfg *Config) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}

	if cfg.JWT.Secret == "" || cfg.JWT.Secret == "${JWT_SECRET}" {
		cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	}

	if email := os.Getenv("BOOTSTRAP_ADMIN_EMAIL"); email != "" {
		cfg.Auth.BootstrapEmail = email
	}
	if pass := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"); pass != "" {
		cfg.Auth.BootstrapPassword = pass
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		cfg.Redis.Password = pass
	}

	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		cfg.Storage.Bucket = bucket
		cfg.Storage.Enabled = true
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		cfg.Storage.Endpoint = endpoint
	}
	if key := os.Getenv("S3_ACCESS_KEY"); key != "" {
		cfg.Storage.AccessKey = key
	}
	if secret := os.Getenv("S3_SECRET_KEY"); secret != "" {
		cfg.Storage.SecretKey = secret
	}
}
