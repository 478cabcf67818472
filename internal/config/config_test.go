package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTP.Port != defaultPort || cfg.HTTP.Host != defaultHost {
		t.Errorf("unexpected listen address %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeout != defaultReadTimeout || cfg.HTTP.ShutdownTimeout != defaultShutdownTimeout {
		t.Errorf("unexpected timeouts %+v", cfg.HTTP)
	}
	if cfg.Graph.Backend != BackendNeo4j || cfg.Graph.Name != "hugegraph" {
		t.Errorf("unexpected graph config %+v", cfg.Graph)
	}
	if cfg.Graph.MaxConnections != defaultGraphMaxSessions {
		t.Errorf("expected %d sessions, got %d", defaultGraphMaxSessions, cfg.Graph.MaxConnections)
	}
	want := TraversalConfig{DefaultDegree: 10000, DefaultCapacity: 10000000, DefaultLimit: 10}
	if cfg.Traversal != want {
		t.Errorf("expected %+v, got %+v", want, cfg.Traversal)
	}
	if cfg.Telemetry.Enabled || cfg.Telemetry.ServiceName != defaultServiceName {
		t.Errorf("unexpected telemetry %+v", cfg.Telemetry)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_WRITE_TIMEOUT", "3s")
	t.Setenv("SERVER_METRICS_ENABLED", "true")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_COLOR", "not-a-bool")
	t.Setenv("GRAPH_BACKEND", "Memory")
	t.Setenv("GRAPH_FIXTURE", "testdata/graph.yaml")
	t.Setenv("TRAVERSAL_DEFAULT_LIMIT", "-1")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTP.Port != 9090 || cfg.HTTP.WriteTimeout != 3*time.Second || !cfg.HTTP.MetricsEnabled {
		t.Errorf("unexpected http config %+v", cfg.HTTP)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Colored {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
	if cfg.Graph.Backend != BackendMemory || cfg.Graph.Fixture != "testdata/graph.yaml" {
		t.Errorf("unexpected graph config %+v", cfg.Graph)
	}
	if cfg.Traversal.DefaultLimit != -1 {
		t.Errorf("expected unlimited default limit, got %d", cfg.Traversal.DefaultLimit)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hopgraph.yaml")
	doc := "graph_backend: sqlite\ngraph_sqlite_path: /tmp/g.db\nserver_port: 7070\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SERVER_PORT", "7171")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Graph.Backend != BackendSQLite || cfg.Graph.SQLitePath != "/tmp/g.db" {
		t.Errorf("unexpected graph config %+v", cfg.Graph)
	}
	if cfg.HTTP.Port != 7171 {
		t.Errorf("expected env to override file port, got %d", cfg.HTTP.Port)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		key, value, want string
	}{
		{"SERVER_PORT", "abc", "invalid SERVER_PORT"},
		{"SERVER_PORT", "70000", "out of range"},
		{"SERVER_READ_TIMEOUT", "soon", "invalid SERVER_READ_TIMEOUT"},
		{"SERVER_IDLE_TIMEOUT", "1", "invalid SERVER_IDLE_TIMEOUT"},
		{"GRAPH_BACKEND", "cassandra", "invalid GRAPH_BACKEND"},
		{"TRAVERSAL_DEFAULT_DEGREE", "0", "TRAVERSAL_DEFAULT_DEGREE"},
		{"TRAVERSAL_DEFAULT_CAPACITY", "lots", "invalid TRAVERSAL_DEFAULT_CAPACITY"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load("")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
