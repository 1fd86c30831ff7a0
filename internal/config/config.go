package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/claim-ledger/internal/platform/logging"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	HTTPAddr                   string
	ReadTimeout                time.Duration
	WriteTimeout               time.Duration
	ShutdownTimeout            time.Duration
	MutationTimeout            time.Duration
	CORSAllowedOrigins         []string
	StorageDriver              string
	DBURL                      string
	DBBinaryParameters         bool
	DBMaxOpenConns             int
	DBMaxIdleConns             int
	CacheEnabled               bool
	CacheTTL                   time.Duration
	RealtimeBufferSize         int
	RealtimePingInterval       time.Duration
	ImportWorkers              int
	WebhookURL                 string
	WebhookToken               string
	WebhookTimeout             time.Duration
	WebhookBufferSize          int
	WebhookRetries             int
	WebhookCircuitEnabled      bool
	WebhookCircuitFailureCount int
	WebhookCircuitOpenTimeout  time.Duration
	WebhookCircuitHalfOpenMax  int
	JobsEnabled                bool
	JobCachePurgeInterval      time.Duration
	JobHubStatsInterval        time.Duration
	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	LogLevel                   logging.Level
	LogFormat                  string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        strings.TrimSpace(getEnv("APP_SERVICE_NAME", "claim-ledger")),
		ServiceVersion:     strings.TrimSpace(getEnv("APP_SERVICE_VERSION", "dev")),
		HTTPAddr:           strings.TrimSpace(getEnv("APP_HTTP_ADDR", ":8080")),
		CORSAllowedOrigins: splitCSV(getEnv("APP_CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	if cfg.HTTPAddr == "" {
		return Config{}, fmt.Errorf("APP_HTTP_ADDR must not be empty")
	}

	logFormatDefault := LogFormatConsole
	if appEnv != EnvDev {
		logFormatDefault = LogFormatJSON
	}
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(getEnv("APP_LOG_FORMAT", logFormatDefault)))
	if cfg.LogFormat != LogFormatJSON && cfg.LogFormat != LogFormatConsole {
		return Config{}, fmt.Errorf("invalid APP_LOG_FORMAT %q: valid values are %s, %s", cfg.LogFormat, LogFormatJSON, LogFormatConsole)
	}

	if cfg.ReadTimeout, err = getEnvAsDuration("APP_READ_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	// Change streams are long lived, so writes are unbounded unless configured.
	if cfg.WriteTimeout, err = getEnvAsDuration("APP_WRITE_TIMEOUT", 0); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout < 0 {
		return Config{}, fmt.Errorf("APP_WRITE_TIMEOUT must be >= 0")
	}
	if cfg.ShutdownTimeout, err = getEnvAsDuration("APP_SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("APP_SHUTDOWN_TIMEOUT must be > 0")
	}
	if cfg.MutationTimeout, err = getEnvAsDuration("APP_MUTATION_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.MutationTimeout <= 0 {
		return Config{}, fmt.Errorf("APP_MUTATION_TIMEOUT must be > 0")
	}

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(getEnv("STORAGE_DRIVER", StorageMemory)))
	cfg.DBURL = strings.TrimSpace(getEnv("DB_URL", ""))
	switch cfg.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DBURL == "" {
			return Config{}, fmt.Errorf("DB_URL is required when STORAGE_DRIVER=%s", StoragePostgres)
		}
	default:
		return Config{}, fmt.Errorf("invalid STORAGE_DRIVER %q: valid values are %s, %s", cfg.StorageDriver, StorageMemory, StoragePostgres)
	}
	if cfg.DBBinaryParameters, err = getEnvAsBool("DB_BINARY_PARAMETERS", false); err != nil {
		return Config{}, err
	}
	if cfg.DBMaxOpenConns, err = getEnvAsInt("DB_MAX_OPEN_CONNS", 20); err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	if cfg.DBMaxIdleConns, err = getEnvAsInt("DB_MAX_IDLE_CONNS", 10); err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_IDLE_CONNS: %w", err)
	}
	if cfg.DBMaxOpenConns < 1 || cfg.DBMaxIdleConns < 0 {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be >= 1 and DB_MAX_IDLE_CONNS >= 0")
	}

	if cfg.CacheEnabled, err = getEnvAsBool("CACHE_ENABLED", true); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = getEnvAsDuration("CACHE_TTL", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	if cfg.RealtimeBufferSize, err = getEnvAsInt("REALTIME_BUFFER_SIZE", 16); err != nil {
		return Config{}, fmt.Errorf("parse REALTIME_BUFFER_SIZE: %w", err)
	}
	if cfg.RealtimeBufferSize < 1 {
		return Config{}, fmt.Errorf("REALTIME_BUFFER_SIZE must be >= 1")
	}
	if cfg.RealtimePingInterval, err = getEnvAsDuration("REALTIME_PING_INTERVAL", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RealtimePingInterval <= 0 {
		return Config{}, fmt.Errorf("REALTIME_PING_INTERVAL must be > 0")
	}

	if cfg.ImportWorkers, err = getEnvAsInt("IMPORT_WORKERS", 4); err != nil {
		return Config{}, fmt.Errorf("parse IMPORT_WORKERS: %w", err)
	}
	if cfg.ImportWorkers < 1 {
		return Config{}, fmt.Errorf("IMPORT_WORKERS must be >= 1")
	}

	cfg.WebhookURL = strings.TrimSpace(getEnv("WEBHOOK_URL", ""))
	cfg.WebhookToken = strings.TrimSpace(getEnv("WEBHOOK_TOKEN", ""))
	if cfg.WebhookTimeout, err = getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.WebhookBufferSize, err = getEnvAsInt("WEBHOOK_BUFFER_SIZE", 256); err != nil {
		return Config{}, fmt.Errorf("parse WEBHOOK_BUFFER_SIZE: %w", err)
	}
	if cfg.WebhookRetries, err = getEnvAsInt("WEBHOOK_RETRIES", 2); err != nil {
		return Config{}, fmt.Errorf("parse WEBHOOK_RETRIES: %w", err)
	}
	if cfg.WebhookTimeout <= 0 || cfg.WebhookBufferSize < 1 || cfg.WebhookRetries < 0 {
		return Config{}, fmt.Errorf("WEBHOOK_TIMEOUT must be > 0, WEBHOOK_BUFFER_SIZE >= 1 and WEBHOOK_RETRIES >= 0")
	}
	if cfg.WebhookCircuitEnabled, err = getEnvAsBool("WEBHOOK_CIRCUIT_ENABLED", true); err != nil {
		return Config{}, err
	}
	if cfg.WebhookCircuitFailureCount, err = getEnvAsInt("WEBHOOK_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return Config{}, fmt.Errorf("parse WEBHOOK_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.WebhookCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("WEBHOOK_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if cfg.WebhookCircuitOpenTimeout, err = getEnvAsDuration("WEBHOOK_CIRCUIT_OPEN_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.WebhookCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("WEBHOOK_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	if cfg.WebhookCircuitHalfOpenMax, err = getEnvAsInt("WEBHOOK_CIRCUIT_HALF_OPEN_MAX_REQ", 1); err != nil {
		return Config{}, fmt.Errorf("parse WEBHOOK_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.WebhookCircuitHalfOpenMax < 1 {
		return Config{}, fmt.Errorf("WEBHOOK_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	if cfg.JobsEnabled, err = getEnvAsBool("JOBS_ENABLED", true); err != nil {
		return Config{}, err
	}
	if cfg.JobCachePurgeInterval, err = getEnvAsDuration("JOB_CACHE_PURGE_INTERVAL", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.JobHubStatsInterval, err = getEnvAsDuration("JOB_HUB_STATS_INTERVAL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.JobCachePurgeInterval <= 0 || cfg.JobHubStatsInterval <= 0 {
		return Config{}, fmt.Errorf("JOB_CACHE_PURGE_INTERVAL and JOB_HUB_STATS_INTERVAL must be > 0")
	}

	if cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", false); err != nil {
		return Config{}, err
	}
	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", false); err != nil {
		return Config{}, err
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", false); err != nil {
		return Config{}, err
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))
	if cfg.PyroscopeUploadRate, err = getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}

	return out, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
