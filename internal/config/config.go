package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type AppConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	LoginURL     string
	ResetBaseURL string
}

type DbConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
}

type JWTConfig struct {
	Secret      string
	AccessTTL   time.Duration
	JWTIssuer   string
	JWTAudience string
	JWTKID      string
}

type AMQPConfig struct {
	URL      string
	Exchange string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type ExpiryConfig struct {
	SweepInterval time.Duration
}

type Config struct {
	AppConfig    *AppConfig
	DbConfig     *DbConfig
	JWTConfig    *JWTConfig
	AMQPConfig   *AMQPConfig
	CORSConfig   *CORSConfig
	ExpiryConfig *ExpiryConfig
}

func LoadConfig(logger *zap.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env is optional when the environment is already populated
		logger.Debug("no .env file loaded", zap.Error(err))
	}

	/** db config */
	dsn := os.Getenv("POSTGRES_DSN")

	maxOpenConns, err := intEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return nil, err
	}
	maxIdleConns, err := intEnv("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return nil, err
	}
	maxConnLifetime, err := durationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return nil, err
	}

	dbConfig := &DbConfig{
		DSN:             dsn,
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		MaxConnLifetime: maxConnLifetime,
	}

	/** app config */
	port := stringEnv("APP_PORT", "8080")

	readTimeout, err := durationEnv("APP_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := durationEnv("APP_WRITE_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	idleTimeout, err := durationEnv("APP_IDLE_TIMEOUT", time.Minute)
	if err != nil {
		return nil, err
	}

	appConfig := &AppConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		LoginURL:     stringEnv("APP_LOGIN_URL", "http://localhost:4200/login"),
		ResetBaseURL: stringEnv("APP_RESET_URL", "http://localhost:4200/reset-password"),
	}

	/** jwt config */
	accessTTL, err := durationEnv("ACCESS_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	jwtConfig := &JWTConfig{
		Secret:      os.Getenv("JWT_SECRET"),
		AccessTTL:   accessTTL,
		JWTIssuer:   stringEnv("JWT_ISSUER", "visitor-pass-service"),
		JWTAudience: stringEnv("JWT_AUDIENCE", "visitor-pass-app"),
		JWTKID:      os.Getenv("JWT_KID"),
	}

	/** amqp config */
	amqpConfig := &AMQPConfig{
		URL:      os.Getenv("AMQP_URL"),
		Exchange: stringEnv("AMQP_EXCHANGE", "visitor_pass_exchange"),
	}

	/** cors config */
	origins := stringEnv("CORS_ALLOWED_ORIGINS", "http://localhost:4200")
	corsConfig := &CORSConfig{
		AllowedOrigins: strings.Split(origins, ","),
	}

	/** pass expiry sweeper config */
	sweepInterval, err := durationEnv("PASS_EXPIRY_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}
	expiryConfig := &ExpiryConfig{SweepInterval: sweepInterval}

	return &Config{
		DbConfig:     dbConfig,
		AppConfig:    appConfig,
		JWTConfig:    jwtConfig,
		AMQPConfig:   amqpConfig,
		CORSConfig:   corsConfig,
		ExpiryConfig: expiryConfig,
	}, nil
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}
