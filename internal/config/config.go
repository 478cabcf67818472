package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP      HTTPConfig
	Graph     GraphConfig
	Traversal TraversalConfig
	Logging   LoggingConfig
	Telemetry TelemetryConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MetricsEnabled    bool
	AllowedOriginsCSV string
}

// Graph storage backends.
const (
	BackendNeo4j  = "neo4j"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// GraphConfig selects the storage backend and describes how to reach it.
type GraphConfig struct {
	Backend string
	// Name is the graph name accepted in /graphs/{graph}/... routes.
	Name string

	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int

	SQLitePath string
	// Fixture is a YAML dataset loaded into the memory backend at startup.
	Fixture string
}

// TraversalConfig holds request defaults for optional traversal parameters.
type TraversalConfig struct {
	DefaultDegree   int64
	DefaultCapacity int64
	DefaultLimit    int64
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	Colored       bool
	IncludeCaller bool
}

// TelemetryConfig controls trace export. An empty endpoint writes spans to stdout.
type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 8080
	defaultReadTimeout      = 10 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultGraphMaxSessions = 10
	defaultGraphName        = "hugegraph"
	defaultSQLitePath       = "data/graph.db"
	defaultDegree           = 10000
	defaultCapacity         = 10000000
	defaultLimit            = 10
	defaultServiceName      = "hopgraph"
)

// Load reads configuration from environment variables, applying defaults. When
// file is non-empty it is read first and environment variables override it.
func Load(file string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := Config{
		HTTP: HTTPConfig{
			Host:              v.GetString("SERVER_HOST"),
			MetricsEnabled:    parseBool(v, "SERVER_METRICS_ENABLED", false),
			AllowedOriginsCSV: v.GetString("SERVER_ALLOWED_ORIGINS"),
		},
		Logging: LoggingConfig{
			Level:         v.GetString("LOG_LEVEL"),
			Format:        v.GetString("LOG_FORMAT"),
			Colored:       parseBool(v, "LOG_COLOR", false),
			IncludeCaller: parseBool(v, "LOG_INCLUDE_CALLER", false),
		},
		Graph: GraphConfig{
			Backend:        strings.ToLower(strings.TrimSpace(v.GetString("GRAPH_BACKEND"))),
			Name:           v.GetString("GRAPH_NAME"),
			URI:            v.GetString("GRAPH_URI"),
			Database:       v.GetString("GRAPH_DATABASE"),
			Username:       v.GetString("GRAPH_USERNAME"),
			Password:       v.GetString("GRAPH_PASSWORD"),
			MaxConnections: parseInt(v, "GRAPH_MAX_CONNECTIONS", defaultGraphMaxSessions),
			SQLitePath:     v.GetString("GRAPH_SQLITE_PATH"),
			Fixture:        v.GetString("GRAPH_FIXTURE"),
		},
		Telemetry: TelemetryConfig{
			Enabled:      parseBool(v, "TELEMETRY_ENABLED", false),
			OTLPEndpoint: v.GetString("TELEMETRY_OTLP_ENDPOINT"),
			ServiceName:  v.GetString("TELEMETRY_SERVICE_NAME"),
		},
	}

	switch cfg.Graph.Backend {
	case BackendNeo4j, BackendSQLite, BackendMemory:
	default:
		return Config{}, fmt.Errorf("invalid GRAPH_BACKEND %q: want %s, %s or %s", cfg.Graph.Backend, BackendNeo4j, BackendSQLite, BackendMemory)
	}

	port, err := parsePort(v, "SERVER_PORT")
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	bounds := []struct {
		key string
		dst *int64
	}{
		{"TRAVERSAL_DEFAULT_DEGREE", &cfg.Traversal.DefaultDegree},
		{"TRAVERSAL_DEFAULT_CAPACITY", &cfg.Traversal.DefaultCapacity},
		{"TRAVERSAL_DEFAULT_LIMIT", &cfg.Traversal.DefaultLimit},
	}
	for _, b := range bounds {
		raw := v.GetString(b.key)
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s value %q: %w", b.key, raw, err)
		}
		if n != -1 && n <= 0 {
			return Config{}, fmt.Errorf("%s must be > 0 or -1, got %d", b.key, n)
		}
		*b.dst = n
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", defaultHost)
	v.SetDefault("SERVER_PORT", strconv.Itoa(defaultPort))
	v.SetDefault("SERVER_READ_TIMEOUT", defaultReadTimeout.String())
	v.SetDefault("SERVER_WRITE_TIMEOUT", defaultWriteTimeout.String())
	v.SetDefault("SERVER_IDLE_TIMEOUT", defaultIdleTimeout.String())
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout.String())
	v.SetDefault("SERVER_ALLOWED_ORIGINS", "")
	v.SetDefault("SERVER_METRICS_ENABLED", "")
	v.SetDefault("LOG_LEVEL", defaultLoggingLevel)
	v.SetDefault("LOG_FORMAT", defaultLoggingFormat)
	v.SetDefault("LOG_COLOR", "")
	v.SetDefault("LOG_INCLUDE_CALLER", "")
	v.SetDefault("GRAPH_BACKEND", BackendNeo4j)
	v.SetDefault("GRAPH_NAME", defaultGraphName)
	v.SetDefault("GRAPH_URI", "")
	v.SetDefault("GRAPH_DATABASE", "")
	v.SetDefault("GRAPH_USERNAME", "")
	v.SetDefault("GRAPH_PASSWORD", "")
	v.SetDefault("GRAPH_MAX_CONNECTIONS", "")
	v.SetDefault("GRAPH_SQLITE_PATH", defaultSQLitePath)
	v.SetDefault("GRAPH_FIXTURE", "")
	v.SetDefault("TRAVERSAL_DEFAULT_DEGREE", strconv.Itoa(defaultDegree))
	v.SetDefault("TRAVERSAL_DEFAULT_CAPACITY", strconv.Itoa(defaultCapacity))
	v.SetDefault("TRAVERSAL_DEFAULT_LIMIT", strconv.Itoa(defaultLimit))
	v.SetDefault("TELEMETRY_ENABLED", "")
	v.SetDefault("TELEMETRY_OTLP_ENDPOINT", "")
	v.SetDefault("TELEMETRY_SERVICE_NAME", defaultServiceName)
}

// parseBool falls back on unparsable values, as the env loader always has.
func parseBool(v *viper.Viper, key string, fallback bool) bool {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return fallback
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return val
}

func parseInt(v *viper.Viper, key string, fallback int) int {
	if val, err := strconv.Atoi(strings.TrimSpace(v.GetString(key))); err == nil {
		return val
	}
	return fallback
}

func parsePort(v *viper.Viper, key string) (int, error) {
	raw := v.GetString(key)
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("port %d is out of range", port)
	}
	return port, nil
}
