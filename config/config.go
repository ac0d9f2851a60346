package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Backend names accepted in BACKEND.
const (
	BackendPostgres = "postgres"
	BackendREST     = "rest"
	BackendMemory   = "memory"
)

// ErrUnknownBackend is returned by Validate for an unsupported BACKEND.
var ErrUnknownBackend = errors.New("config: unknown backend")

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Backend string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RestURL    string
	RestAPIKey string
	Table      string

	PageSize          int
	ScrollThresholdPx int
	HasMorePolicy     string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	MaxPages       int

	CSVOutputPath string
	FixturesPath  string
	ChromeBin     string
	StorefrontURL string
	ListenAddr    string
	LogLevel      string

	// EnvFileLoaded reports whether a .env file was found.
	EnvFileLoaded bool
}

// Load reads the .env file (if any) and returns a populated Config struct.
func Load() *Config {
	loaded := godotenv.Load() == nil

	return &Config{
		Backend: strings.ToLower(getEnv("BACKEND", BackendPostgres)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "storefront"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "storefront123"),
		PostgresDB:       getEnv("POSTGRES_DB", "marketplace"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RestURL:    getEnv("REST_URL", ""),
		RestAPIKey: getEnv("REST_API_KEY", ""),
		Table:      getEnv("REST_TABLE", "vehicles"),

		PageSize:          getEnvInt("PAGE_SIZE", 12),
		ScrollThresholdPx: getEnvInt("SCROLL_THRESHOLD_PX", 200),
		HasMorePolicy:     getEnv("HAS_MORE_POLICY", "valid"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 250),
		MaxRetries:     getEnvInt("MAX_RETRIES", 5),
		MaxPages:       getEnvInt("MAX_PAGES", 0),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/vehicles.csv"),
		FixturesPath:  getEnv("FIXTURES_PATH", "./fixtures/vehicles.yaml"),
		ChromeBin:     getEnv("CHROME_BIN", ""),
		StorefrontURL: getEnv("STOREFRONT_URL", "http://localhost:8080/"),
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		EnvFileLoaded: loaded,
	}
}

// Validate checks the values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendPostgres, BackendMemory:
	case BackendREST:
		if c.RestURL == "" {
			return errors.New("config: REST_URL is required for the rest backend")
		}
	default:
		return fmt.Errorf("%w %q", ErrUnknownBackend, c.Backend)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("config: PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("config: MAX_CONCURRENCY must be positive, got %d", c.MaxConcurrency)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
