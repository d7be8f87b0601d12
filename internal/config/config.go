package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string

	DatabaseURL string

	JWTIssuer string
	JWTSecret string
	JWTTTL    time.Duration

	ResetTokenTTL       time.Duration
	ResetResendCooldown time.Duration

	DirectoryAPIURL      string
	DirectoryCountries   []string
	DirectoryTimeout     time.Duration
	IngestCronSpec       string
	IngestTimezone       string
	IngestEnabled        bool
	StartupCheckAttempts int
	StartupCheckBackoff  time.Duration

	SMTPHost       string
	SMTPUser       string
	SMTPPass       string
	MailName       string
	MailAddress    string
	MailSkipVerify bool

	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	ListCacheTTL time.Duration

	AuthRateLimitPerMin int
	APIRateLimitPerMin  int

	QueueCapacity    int
	QueueWaitTimeout time.Duration

	CORSAllowedOrigins []string

	BootstrapUserEmail    string
	BootstrapUserPassword string

	ReadinessProbeTimeout  time.Duration
	ServerStartGracePeriod time.Duration

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string
}

// defaultCountries is the fixed list the nightly ingestion pulls when
// DIRECTORY_COUNTRIES is not set.
var defaultCountries = []string{
	"argentina", "brasil", "chile", "colombia",
	"paraguai", "peru", "suriname", "uruguay",
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		Env:         env,
		HTTPPort:    getEnv("HTTP_PORT", "3000"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTIssuer: getEnv("JWT_ISSUER", "universities-api"),
		JWTSecret: os.Getenv("JWT_SECRET"),

		DirectoryAPIURL:      getEnv("DIRECTORY_API_URL", "http://universities.hipolabs.com/search"),
		DirectoryCountries:   splitCSV(getEnv("DIRECTORY_COUNTRIES", strings.Join(defaultCountries, ","))),
		IngestCronSpec:       getEnv("INGEST_CRON", "0 0 5 * * *"),
		IngestTimezone:       getEnv("CRON_TZ", "America/Sao_Paulo"),
		IngestEnabled:        getEnvBool("INGEST_ENABLED", true),
		StartupCheckAttempts: getEnvInt("DIRECTORY_CHECK_ATTEMPTS", 5),

		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPUser:       os.Getenv("SMTP_USER"),
		SMTPPass:       os.Getenv("SMTP_PASS"),
		MailName:       getEnv("MAIL_NAME", "Universities API"),
		MailAddress:    os.Getenv("MAIL_ADDRESS"),
		MailSkipVerify: getEnvBool("MAIL_SKIP_VERIFY", false),

		RedisEnabled:  getEnvBool("REDIS_ENABLED", false),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPrefix:   getEnv("REDIS_PREFIX", "universities"),

		AuthRateLimitPerMin: getEnvInt("AUTH_RATE_LIMIT_PER_MIN", 30),
		APIRateLimitPerMin:  getEnvInt("API_RATE_LIMIT_PER_MIN", 120),

		QueueCapacity: getEnvInt("UNIVERSITY_QUEUE_CAPACITY", 64),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		BootstrapUserEmail:    strings.TrimSpace(strings.ToLower(os.Getenv("BOOTSTRAP_USER_EMAIL"))),
		BootstrapUserPassword: os.Getenv("BOOTSTRAP_USER_PASSWORD"),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "universities-api"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", false),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", false),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", false),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"JWT_TTL", "1h", &cfg.JWTTTL},
		{"FORGOT_PASSWORD_TOKEN_EXP", "3600s", &cfg.ResetTokenTTL},
		{"FORGOT_PASSWORD_RESEND_EXP", "300s", &cfg.ResetResendCooldown},
		{"DIRECTORY_TIMEOUT", "15s", &cfg.DirectoryTimeout},
		{"DIRECTORY_CHECK_BACKOFF", "2s", &cfg.StartupCheckBackoff},
		{"LIST_CACHE_TTL", "60s", &cfg.ListCacheTTL},
		{"UNIVERSITY_QUEUE_WAIT_TIMEOUT", "30s", &cfg.QueueWaitTimeout},
		{"READINESS_PROBE_TIMEOUT", "2s", &cfg.ReadinessProbeTimeout},
		{"SERVER_START_GRACE_PERIOD", "0s", &cfg.ServerStartGracePeriod},
		{"OTEL_METRICS_EXPORT_INTERVAL", "10s", &cfg.OTELMetricsExportInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if len(c.JWTSecret) < 32 {
		errs = append(errs, "JWT_SECRET must be at least 32 chars")
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, "JWT_TTL must be > 0")
	}
	if c.ResetTokenTTL <= 0 {
		errs = append(errs, "FORGOT_PASSWORD_TOKEN_EXP must be > 0")
	}
	if c.ResetResendCooldown <= 0 {
		errs = append(errs, "FORGOT_PASSWORD_RESEND_EXP must be > 0")
	}
	if c.ResetResendCooldown > c.ResetTokenTTL {
		errs = append(errs, "FORGOT_PASSWORD_RESEND_EXP must not exceed FORGOT_PASSWORD_TOKEN_EXP")
	}
	if c.DirectoryAPIURL == "" {
		errs = append(errs, "DIRECTORY_API_URL is required")
	}
	if len(c.DirectoryCountries) == 0 {
		errs = append(errs, "DIRECTORY_COUNTRIES must name at least one country")
	}
	if c.StartupCheckAttempts <= 0 {
		errs = append(errs, "DIRECTORY_CHECK_ATTEMPTS must be > 0")
	}
	if c.SMTPHost != "" && c.MailAddress == "" {
		errs = append(errs, "MAIL_ADDRESS is required when SMTP_HOST is set")
	}
	if c.AuthRateLimitPerMin <= 0 {
		errs = append(errs, "AUTH_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.APIRateLimitPerMin <= 0 {
		errs = append(errs, "API_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.QueueCapacity <= 0 {
		errs = append(errs, "UNIVERSITY_QUEUE_CAPACITY must be > 0")
	}
	if c.QueueWaitTimeout <= 0 {
		errs = append(errs, "UNIVERSITY_QUEUE_WAIT_TIMEOUT must be > 0")
	}
	if c.IngestEnabled {
		if _, err := time.LoadLocation(c.IngestTimezone); err != nil {
			errs = append(errs, fmt.Sprintf("CRON_TZ %q is not a valid timezone", c.IngestTimezone))
		}
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
