package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates every setting the service reads at startup.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Password PasswordConfig
	OTP      OTPConfig
	Store    StoreConfig
	Redis    RedisConfig
	Notifx   NotifxConfig
	Mail     MailConfig
	Jobx     JobxConfig
	Billing  BillingConfig
}

type ServerConfig struct {
	Port        string
	CORSOrigins string
	APIKey      string
}

type AuthConfig struct {
	Secret          string
	Issuer          string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	VerificationTTL time.Duration
}

type PasswordConfig struct {
	Argon2Time    uint32
	Argon2Memory  uint32
	Argon2Threads uint8
}

type OTPConfig struct {
	Length     int
	BcryptCost int
	Window     time.Duration
}

type StoreConfig struct {
	Driver        string
	MongoURI      string
	MongoDatabase string
	Postgres      PostgresConfig
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the lib/pq connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Name, p.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type BillingConfig struct {
	StripeSecretKey     string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string
	CollaboratorTimeout time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnv("CORS_ORIGINS", "*"),
			APIKey:      getEnv("API_KEY", ""),
		},
		Auth: AuthConfig{
			Secret:          getEnv("APP_SECRET", ""),
			Issuer:          getEnv("JWT_ISSUER", "quizcraft"),
			AccessTTL:       getEnvDuration("JWT_ACCESS_TTL", 24*time.Hour),
			RefreshTTL:      getEnvDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
			VerificationTTL: getEnvDuration("JWT_VERIFICATION_TTL", 24*time.Hour),
		},
		Password: PasswordConfig{
			Argon2Time:    uint32(getEnvInt("PASSWORD_ARGON2_TIME", 1)),
			Argon2Memory:  uint32(getEnvInt("PASSWORD_ARGON2_MEMORY", 64*1024)),
			Argon2Threads: uint8(getEnvInt("PASSWORD_ARGON2_THREADS", 4)),
		},
		OTP: OTPConfig{
			Length:     getEnvInt("OTP_LENGTH", 6),
			BcryptCost: getEnvInt("OTP_BCRYPT_COST", 10),
			Window:     getEnvDuration("OTP_WINDOW", 2*time.Minute),
		},
		Store: StoreConfig{
			Driver:        strings.ToLower(getEnv("STORE_DRIVER", "mongo")),
			MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			MongoDatabase: getEnv("MONGO_DATABASE", "quizcraft"),
			Postgres: PostgresConfig{
				Host:     getEnv("DB_HOST", "localhost"),
				Port:     getEnvInt("DB_PORT", 5432),
				User:     getEnv("DB_USER", "postgres"),
				Password: getEnv("DB_PASSWORD", "postgres"),
				Name:     getEnv("DB_NAME", "quizcraft"),
				SSLMode:  getEnv("DB_SSLMODE", "disable"),
			},
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Notifx: loadNotifxConfig(),
		Mail:   loadMailConfig(),
		Jobx:   loadJobxConfig(),
		Billing: BillingConfig{
			StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			CheckoutSuccessURL:  getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/success"),
			CheckoutCancelURL:   getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/cancel"),
			CollaboratorTimeout: getEnvDuration("COLLABORATOR_TIMEOUT", 0),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no safe default.
func (c *Config) Validate() error {
	var missing []string
	if c.Auth.Secret == "" {
		missing = append(missing, "APP_SECRET")
	}
	if c.Server.APIKey == "" {
		missing = append(missing, "API_KEY")
	}
	if c.Billing.StripeSecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	switch c.Store.Driver {
	case "mongo", "postgres", "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.Mail.Delivery {
	case MailDeliveryDirect, MailDeliveryQueue:
	default:
		return fmt.Errorf("unknown MAIL_DELIVERY %q", c.Mail.Delivery)
	}
	if c.OTP.Length <= 0 {
		return fmt.Errorf("OTP_LENGTH must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
