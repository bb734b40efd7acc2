package observability

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/salesdesk/internal/config"
	"github.com/smallbiznis/salesdesk/internal/observability/logger"
	gormlogger "gorm.io/gorm/logger"
)

// Config holds observability configuration derived from environment variables.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	// SQL statements slower than SlowQueryThreshold are logged as warnings.
	SQLLogLevel        string
	SlowQueryThreshold time.Duration

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64

	// Requests to these paths are served without a server span.
	UntracedPaths []string
}

func LoadConfig(cfg config.Config) Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "salesdesk"
	}

	protocol := getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	if traces := getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", ""); traces != "" {
		protocol = traces
	}

	return Config{
		ServiceName:          serviceName,
		Environment:          getenv("DEPLOYMENT_ENV", cfg.Environment),
		Version:              getenv("SERVICE_VERSION", cfg.AppVersion),
		LogLevel:             strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFormat:            strings.ToLower(getenv("LOG_FORMAT", "json")),
		SQLLogLevel:          strings.ToLower(getenv("SQL_LOG_LEVEL", "warn")),
		SlowQueryThreshold:   getenvDuration("SQL_SLOW_QUERY_THRESHOLD", 200*time.Millisecond),
		OtelEnabled:          getenvBool("OTEL_ENABLED", true),
		OtelExporterEndpoint: getenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint),
		OtelExporterProtocol: normalizeProtocol(protocol),
		OtelSamplingRatio:    clampRatio(getenvFloat("OTEL_SAMPLING_RATIO", 0.1)),
		UntracedPaths:        []string{"/health", "/metrics"},
	}
}

func (c Config) Debug() bool {
	if strings.EqualFold(strings.TrimSpace(c.LogLevel), "debug") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// GormLogger maps the SQL settings onto the database logger. Debug mode logs every statement.
func (c Config) GormLogger() logger.GormLoggerConfig {
	out := logger.DefaultGormLoggerConfig()
	if c.SlowQueryThreshold > 0 {
		out.SlowThreshold = c.SlowQueryThreshold
	}
	switch strings.ToLower(strings.TrimSpace(c.SQLLogLevel)) {
	case "silent":
		out.Level = gormlogger.Silent
	case "error":
		out.Level = gormlogger.Error
	case "info":
		out.Level = gormlogger.Info
	case "warn", "":
		out.Level = gormlogger.Warn
	}
	if c.Debug() && out.Level != gormlogger.Silent {
		out.Level = gormlogger.Info
	}
	return out
}

func normalizeProtocol(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "http", "http/protobuf", "http/json":
		return "http"
	default:
		return "grpc"
	}
}

func clampRatio(ratio float64) float64 {
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

func getenv(key, def string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return strings.TrimSpace(def)
}

func getenvBool(key string, def bool) bool {
	parsed, err := strconv.ParseBool(getenv(key, ""))
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	parsed, err := strconv.ParseFloat(getenv(key, ""), 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	parsed, err := time.ParseDuration(getenv(key, ""))
	if err != nil {
		return def
	}
	return parsed
}
