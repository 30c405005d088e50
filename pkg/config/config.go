package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes every environment variable read by Load.
const EnvPrefix = "ORGHUB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names, kept as constants so tests and deploy tooling stay in sync.
const (
	EnvAppEnv                 = "ORGHUB_APP_ENV"
	EnvPort                   = "ORGHUB_APP_PORT"
	EnvDBDSN                  = "ORGHUB_DB_DSN"
	EnvDBHost                 = "ORGHUB_DB_HOST"
	EnvDBUser                 = "ORGHUB_DB_USER"
	EnvDBName                 = "ORGHUB_DB_NAME"
	EnvRedisURL               = "ORGHUB_REDIS_URL"
	EnvJWTSecret              = "ORGHUB_JWT_SECRET"
	EnvJWTIssuer              = "ORGHUB_JWT_ISSUER"
	EnvJWTExpMins             = "ORGHUB_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "ORGHUB_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ORGHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"ORGHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ORGHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ORGHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"ORGHUB_DB_DSN"`

	LegacyHost     string `envconfig:"ORGHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"ORGHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ORGHUB_DB_USER"`
	LegacyPassword string `envconfig:"ORGHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"ORGHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"ORGHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ORGHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ORGHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ORGHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ORGHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ORGHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ORGHUB_REDIS_ADDR"`
	Password     string        `envconfig:"ORGHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORGHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORGHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ORGHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ORGHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORGHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ORGHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ORGHUB_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ORGHUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"ORGHUB_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"ORGHUB_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ORGHUB_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ORGHUB_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ORGHUB_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ORGHUB_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ORGHUB_ARGON_KEY_LEN" default:"32"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
