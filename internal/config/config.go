package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Store drivers
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Server       ServerConfig       `env:",prefix=SERVER_"`
	Store        StoreConfig        `env:",prefix=STORE_"`
	Postgres     PostgresConfig     `env:",prefix=POSTGRES_"`
	Redis        RedisConfig        `env:",prefix=REDIS_"`
	JWT          JWTConfig          `env:",prefix=JWT_"`
	Security     SecurityConfig     `env:",prefix="`
	Verification VerificationConfig `env:",prefix=VERIFICATION_"`
	CORS         CORSConfig         `env:",prefix=CORS_"`
	Env          string             `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port            string   `env:"PORT,default=8080"`
	Host            string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout     Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout    Duration `env:"WRITE_TIMEOUT,default=15s"`
	ShutdownTimeout Duration `env:"SHUTDOWN_TIMEOUT,default=30s"`
}

type StoreConfig struct {
	Driver string `env:"DRIVER,default=postgres"`
}

type PostgresConfig struct {
	Host        string `env:"HOST,default=localhost"`
	Port        string `env:"PORT,default=5432"`
	User        string `env:"USER,default=account_service"`
	Password    string `env:"PASSWORD,default=account_service_password"`
	DBName      string `env:"DB,default=account_service_db"`
	SSLMode     string `env:"SSLMODE,default=disable"`
	AutoMigrate bool   `env:"AUTO_MIGRATE,default=true"`
}

type RedisConfig struct {
	Enabled       bool     `env:"ENABLED,default=false"`
	Host          string   `env:"HOST,default=localhost"`
	Port          string   `env:"PORT,default=6379"`
	Password      string   `env:"PASSWORD,default="`
	DB            int      `env:"DB,default=0"`
	TokenCacheTTL Duration `env:"TOKEN_CACHE_TTL,default=10m"`
}

type JWTConfig struct {
	Secret             string   `env:"SECRET,required"`
	AccessTokenExpiry  Duration `env:"ACCESS_TOKEN_EXPIRY,default=7d"`
	RefreshTokenExpiry Duration `env:"REFRESH_TOKEN_EXPIRY,default=30d"`
}

type SecurityConfig struct {
	BCryptCost int `env:"BCRYPT_COST,default=12"`
}

type VerificationConfig struct {
	CodeTTL     Duration `env:"CODE_TTL,default=5m"`
	PhoneRegion string   `env:"PHONE_REGION,default=KR"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom loads configuration from the given lookuper
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var config Config

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &config,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadWithDefaults loads configuration with default context
func LoadWithDefaults() (*Config, error) {
	return Load(context.Background())
}

func (c *Config) validate() error {
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q",
			StoreDriverPostgres, StoreDriverMemory, c.Store.Driver)
	}

	if c.Verification.CodeTTL.Duration <= 0 {
		return fmt.Errorf("VERIFICATION_CODE_TTL must be positive")
	}

	if c.Verification.PhoneRegion == "" {
		return fmt.Errorf("VERIFICATION_PHONE_REGION must not be empty")
	}

	return nil
}
