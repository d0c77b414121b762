package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaultsForDevProfile(t *testing.T) {
	lookup := mapLookup(map[string]string{})
	cfg, err := Load("storewise-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileDev {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileDev)
	}
	if cfg.HTTP.Address != ":8080" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.Observability.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if cfg.Auth.Required {
		t.Fatal("Auth.Required should default to false in dev")
	}
	if cfg.ObjectStore.Endpoint != "localhost:9000" {
		t.Fatalf("ObjectStore.Endpoint = %q", cfg.ObjectStore.Endpoint)
	}
	if cfg.Warehouse.Backend != WarehouseDuckDB {
		t.Fatalf("Warehouse.Backend = %q", cfg.Warehouse.Backend)
	}
	if cfg.Warehouse.MaxOpenConns != 10 {
		t.Fatalf("Warehouse.MaxOpenConns = %d", cfg.Warehouse.MaxOpenConns)
	}
	if cfg.Workflow.MaxRetries != 3 {
		t.Fatalf("Workflow.MaxRetries = %d", cfg.Workflow.MaxRetries)
	}
	if cfg.Workflow.RowLimit != 10 {
		t.Fatalf("Workflow.RowLimit = %d", cfg.Workflow.RowLimit)
	}
	if cfg.Workflow.SampleRows != 20 {
		t.Fatalf("Workflow.SampleRows = %d", cfg.Workflow.SampleRows)
	}
	if cfg.Workflow.Greeting == "" {
		t.Fatal("Workflow.Greeting should have a default")
	}
	if cfg.Cache.Enabled {
		t.Fatal("Cache.Enabled should default to false")
	}
	if cfg.Cache.TTL != 15*time.Minute {
		t.Fatalf("Cache.TTL = %s", cfg.Cache.TTL)
	}
	if cfg.Gateway.Model != "gpt-5" {
		t.Fatalf("Gateway.Model = %q", cfg.Gateway.Model)
	}
	if cfg.Gateway.Temperature != 0 {
		t.Fatalf("Gateway.Temperature = %f", cfg.Gateway.Temperature)
	}
	if cfg.Dataset.RefreshInterval != 15*time.Minute {
		t.Fatalf("Dataset.RefreshInterval = %s", cfg.Dataset.RefreshInterval)
	}
}

func TestLoadProdProfileDefaults(t *testing.T) {
	lookup := mapLookup(map[string]string{"STOREWISE_PROFILE": "prod"})
	cfg, err := Load("storewise-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileProd {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileProd)
	}
	if !cfg.Auth.Required {
		t.Fatal("Auth.Required should default to true in prod")
	}
	if cfg.Observability.LogLevel != slog.LevelInfo {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if !cfg.ObjectStore.UseSSL {
		t.Fatal("ObjectStore.UseSSL should default to true in prod")
	}
	if cfg.ObjectStore.AutoCreateBucket {
		t.Fatal("ObjectStore.AutoCreateBucket should default to false in prod")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	lookup := mapLookup(map[string]string{
		"STOREWISE_PROFILE":                        "test",
		"STOREWISE_SERVICE_NAME":                   "storewise-custom",
		"STOREWISE_HTTP_ADDR":                      ":9999",
		"STOREWISE_HTTP_READ_TIMEOUT":              "2s",
		"STOREWISE_HTTP_WRITE_TIMEOUT":             "3s",
		"STOREWISE_LOG_LEVEL":                      "error",
		"STOREWISE_AUTH_REQUIRED":                  "true",
		"STOREWISE_AUTH_STATIC_KEYS":               "k1:analyst:ask",
		"STOREWISE_GATEWAY_BASE_URL":               "https://api.example.com",
		"STOREWISE_GATEWAY_API_KEY":                "secret-key",
		"STOREWISE_GATEWAY_MODEL":                  "gpt-5.2",
		"STOREWISE_GATEWAY_TEMPERATURE":            "0.3",
		"STOREWISE_GATEWAY_TIMEOUT":                "21s",
		"STOREWISE_CACHE_ENABLED":                  "true",
		"STOREWISE_CACHE_ADDR":                     "redis.example.com:6380",
		"STOREWISE_CACHE_PASSWORD":                 "hunter2",
		"STOREWISE_CACHE_DB":                       "4",
		"STOREWISE_CACHE_TTL":                      "90s",
		"STOREWISE_CACHE_KEY_PREFIX":               "sw-test",
		"STOREWISE_WAREHOUSE_BACKEND":              "postgres",
		"STOREWISE_WAREHOUSE_DSN":                  "postgres://example",
		"STOREWISE_WAREHOUSE_MAX_OPEN_CONNS":       "42",
		"STOREWISE_WAREHOUSE_MAX_IDLE_CONNS":       "17",
		"STOREWISE_WAREHOUSE_STATEMENT_TIMEOUT":    "9s",
		"STOREWISE_OBJECTSTORE_ENDPOINT":           "s3.example.com",
		"STOREWISE_OBJECTSTORE_BUCKET":             "storewise-prod",
		"STOREWISE_OBJECTSTORE_REGION":             "us-west-2",
		"STOREWISE_OBJECTSTORE_ACCESS_KEY":         "abc",
		"STOREWISE_OBJECTSTORE_SECRET_KEY":         "def",
		"STOREWISE_OBJECTSTORE_USE_SSL":            "true",
		"STOREWISE_OBJECTSTORE_PREFIX":             "analytics",
		"STOREWISE_OBJECTSTORE_AUTO_CREATE_BUCKET": "false",
		"STOREWISE_DATASET_LOCAL_DIR":              "/var/lib/storewise",
		"STOREWISE_DATASET_REMOTE_PREFIX":          "datasets/v7",
		"STOREWISE_DATASET_REFRESH_INTERVAL":       "5m",
		"STOREWISE_WORKFLOW_MAX_RETRIES":           "5",
		"STOREWISE_WORKFLOW_ROW_LIMIT":             "25",
		"STOREWISE_WORKFLOW_SAMPLE_ROWS":           "12",
		"STOREWISE_WORKFLOW_GREETING":              "Hi there",
	})
	cfg, err := Load("storewise-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Service.Name != "storewise-custom" {
		t.Fatalf("Service.Name = %q", cfg.Service.Name)
	}
	if cfg.HTTP.Address != ":9999" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.HTTP.ReadTimeout != 2*time.Second {
		t.Fatalf("HTTP.ReadTimeout = %s", cfg.HTTP.ReadTimeout)
	}
	if cfg.HTTP.WriteTimeout != 3*time.Second {
		t.Fatalf("HTTP.WriteTimeout = %s", cfg.HTTP.WriteTimeout)
	}
	if cfg.Observability.LogLevel != slog.LevelError {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if !cfg.Auth.Required {
		t.Fatal("Auth.Required = false, want true")
	}
	if cfg.Auth.StaticKeys != "k1:analyst:ask" {
		t.Fatalf("StaticKeys = %q", cfg.Auth.StaticKeys)
	}
	if cfg.Gateway.BaseURL != "https://api.example.com" {
		t.Fatalf("Gateway.BaseURL = %q", cfg.Gateway.BaseURL)
	}
	if cfg.Gateway.APIKey != "secret-key" {
		t.Fatalf("Gateway.APIKey = %q", cfg.Gateway.APIKey)
	}
	if cfg.Gateway.Model != "gpt-5.2" {
		t.Fatalf("Gateway.Model = %q", cfg.Gateway.Model)
	}
	if cfg.Gateway.Temperature != 0.3 {
		t.Fatalf("Gateway.Temperature = %f", cfg.Gateway.Temperature)
	}
	if cfg.Gateway.Timeout != 21*time.Second {
		t.Fatalf("Gateway.Timeout = %s", cfg.Gateway.Timeout)
	}
	if !cfg.Cache.Enabled {
		t.Fatal("Cache.Enabled = false, want true")
	}
	if cfg.Cache.Addr != "redis.example.com:6380" {
		t.Fatalf("Cache.Addr = %q", cfg.Cache.Addr)
	}
	if cfg.Cache.Password != "hunter2" {
		t.Fatalf("Cache.Password = %q", cfg.Cache.Password)
	}
	if cfg.Cache.DB != 4 {
		t.Fatalf("Cache.DB = %d", cfg.Cache.DB)
	}
	if cfg.Cache.TTL != 90*time.Second {
		t.Fatalf("Cache.TTL = %s", cfg.Cache.TTL)
	}
	if cfg.Cache.KeyPrefix != "sw-test" {
		t.Fatalf("Cache.KeyPrefix = %q", cfg.Cache.KeyPrefix)
	}
	if cfg.Warehouse.Backend != WarehousePostgres {
		t.Fatalf("Warehouse.Backend = %q", cfg.Warehouse.Backend)
	}
	if cfg.Warehouse.DSN != "postgres://example" {
		t.Fatalf("Warehouse.DSN = %q", cfg.Warehouse.DSN)
	}
	if cfg.Warehouse.MaxOpenConns != 42 {
		t.Fatalf("Warehouse.MaxOpenConns = %d", cfg.Warehouse.MaxOpenConns)
	}
	if cfg.Warehouse.MaxIdleConns != 17 {
		t.Fatalf("Warehouse.MaxIdleConns = %d", cfg.Warehouse.MaxIdleConns)
	}
	if cfg.Warehouse.StatementTimeout != 9*time.Second {
		t.Fatalf("Warehouse.StatementTimeout = %s", cfg.Warehouse.StatementTimeout)
	}
	if cfg.ObjectStore.Endpoint != "s3.example.com" {
		t.Fatalf("ObjectStore.Endpoint = %q", cfg.ObjectStore.Endpoint)
	}
	if cfg.ObjectStore.Bucket != "storewise-prod" {
		t.Fatalf("ObjectStore.Bucket = %q", cfg.ObjectStore.Bucket)
	}
	if !cfg.ObjectStore.UseSSL {
		t.Fatal("ObjectStore.UseSSL = false, want true")
	}
	if cfg.ObjectStore.AutoCreateBucket {
		t.Fatal("ObjectStore.AutoCreateBucket = true, want false")
	}
	if cfg.Dataset.LocalDir != "/var/lib/storewise" {
		t.Fatalf("Dataset.LocalDir = %q", cfg.Dataset.LocalDir)
	}
	if cfg.Dataset.RemotePrefix != "datasets/v7" {
		t.Fatalf("Dataset.RemotePrefix = %q", cfg.Dataset.RemotePrefix)
	}
	if cfg.Dataset.RefreshInterval != 5*time.Minute {
		t.Fatalf("Dataset.RefreshInterval = %s", cfg.Dataset.RefreshInterval)
	}
	if cfg.Workflow.MaxRetries != 5 {
		t.Fatalf("Workflow.MaxRetries = %d", cfg.Workflow.MaxRetries)
	}
	if cfg.Workflow.RowLimit != 25 {
		t.Fatalf("Workflow.RowLimit = %d", cfg.Workflow.RowLimit)
	}
	if cfg.Workflow.SampleRows != 12 {
		t.Fatalf("Workflow.SampleRows = %d", cfg.Workflow.SampleRows)
	}
	if cfg.Workflow.Greeting != "Hi there" {
		t.Fatalf("Workflow.Greeting = %q", cfg.Workflow.Greeting)
	}
}

func TestLoadErrorsOnInvalidValues(t *testing.T) {
	tests := []map[string]string{
		{"STOREWISE_PROFILE": "oops"},
		{"STOREWISE_HTTP_READ_TIMEOUT": "NaN"},
		{"STOREWISE_WAREHOUSE_MAX_OPEN_CONNS": "oops"},
		{"STOREWISE_WAREHOUSE_BACKEND": "sqlite"},
		{"STOREWISE_CACHE_DB": "oops"},
		{"STOREWISE_GATEWAY_TEMPERATURE": "bad"},
		{"STOREWISE_WORKFLOW_MAX_RETRIES": "-1"},
		{"STOREWISE_WORKFLOW_ROW_LIMIT": "0"},
		{"STOREWISE_AUTH_REQUIRED": "not-bool"},
		{"STOREWISE_LOG_LEVEL": "verbose"},
	}
	for _, env := range tests {
		_, err := Load("storewise-api", mapLookup(env))
		if err == nil {
			t.Fatalf("Load() expected error for env %#v", env)
		}
	}
}

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}
