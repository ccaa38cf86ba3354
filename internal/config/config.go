package config

import (
	"fmt"
	"time"
)

// DefaultPath is used when no --config flag is given
const DefaultPath = "troubleshooter.yaml"

// Ontology backends
const (
	BackendFile     = "file"
	BackendFalkorDB = "falkordb"
)

// Warehouse drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the troubleshooter
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Ontology  OntologyConfig  `yaml:"ontology"`
	FalkorDB  FalkorDBConfig  `yaml:"falkordb"`
	Warehouse WarehouseConfig `yaml:"warehouse"`
	Checks    ChecksConfig    `yaml:"checks"`
	Diagnosis DiagnosisConfig `yaml:"diagnosis"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// OntologyConfig selects and configures the knowledge graph store
type OntologyConfig struct {
	// Backend is "file" (Turtle asset decoded in memory) or "falkordb"
	Backend string `yaml:"backend"`

	// Path is the Turtle file for the file backend
	Path string `yaml:"path"`

	// Namespace is the IRI prefix of the domain classes
	Namespace string `yaml:"namespace"`

	// MinVersion rejects ontologies whose owl:versionInfo is older. Empty disables the gate.
	MinVersion string `yaml:"min_version"`

	// Watch reloads the Turtle file when it changes
	Watch bool `yaml:"watch"`

	// CacheSize is the number of concept neighborhoods kept in the LRU; 0 disables caching
	CacheSize int `yaml:"cache_size"`
}

// FalkorDBConfig configures the FalkorDB ontology backend
type FalkorDBConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Password     string        `yaml:"password"`
	GraphName    string        `yaml:"graph_name"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	PoolSize     int           `yaml:"pool_size"`
}

// WarehouseConfig configures the warehouse connection pool
type WarehouseConfig struct {
	Driver string `yaml:"driver"`

	// DSN overrides the DSN composed from credentials
	DSN string `yaml:"dsn"`

	// EnvFile is loaded with godotenv before credentials are read
	EnvFile string `yaml:"env_file"`

	UserEnv     string `yaml:"user_env"`
	PasswordEnv string `yaml:"password_env"`
	HostEnv     string `yaml:"host_env"`
	DatabaseEnv string `yaml:"database_env"`
	SSLMode     string `yaml:"sslmode"`

	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`

	// Tables overrides warehouse table names by logical key
	Tables map[string]string `yaml:"tables"`
}

// ChecksConfig extends the built-in trigger bindings
type ChecksConfig struct {
	// Bindings maps a trigger label to a check name
	Bindings map[string]string `yaml:"bindings"`
}

// DiagnosisConfig tunes the pipeline
type DiagnosisConfig struct {
	// MaxDepth bounds the causal walk; -1 is unbounded
	MaxDepth int `yaml:"max_depth"`
}

// TracingConfig configures OpenTelemetry export
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	TLSCAPath   string `yaml:"tls_ca"`
	TLSInsecure bool   `yaml:"tls_insecure"`
}

// LoggingConfig configures log levels
type LoggingConfig struct {
	Level  string            `yaml:"level"`
	Levels map[string]string `yaml:"levels"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Ontology: OntologyConfig{
			Backend:   BackendFile,
			Path:      "ontology.ttl",
			Namespace: "http://www.slb.com/ontologies/Troubleshooting_ORA_FNFM_Ontology_#",
			CacheSize: 256,
		},
		FalkorDB: FalkorDBConfig{
			Host:         "localhost",
			Port:         6379,
			GraphName:    "troubleshooting",
			DialTimeout:  5 * time.Second,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			PoolSize:     10,
		},
		Warehouse: WarehouseConfig{
			Driver:          DriverPostgres,
			EnvFile:         ".env",
			UserEnv:         "WAREHOUSE_USER",
			PasswordEnv:     "WAREHOUSE_PASSWORD",
			HostEnv:         "WAREHOUSE_HOST",
			DatabaseEnv:     "WAREHOUSE_DATABASE",
			SSLMode:         "require",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Diagnosis: DiagnosisConfig{MaxDepth: -1},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// Validate checks that the configuration is valid.
// knownCheck reports whether a check name exists; nil skips binding validation.
func (c *Config) Validate(knownCheck func(string) bool) error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return NewConfigError("server.port must be between 1 and 65535")
	}

	switch c.Ontology.Backend {
	case BackendFile:
		if c.Ontology.Path == "" {
			return NewConfigError("ontology.path must be set for the file backend")
		}
	case BackendFalkorDB:
		if c.FalkorDB.Host == "" || c.FalkorDB.GraphName == "" {
			return NewConfigError("falkordb.host and falkordb.graph_name must be set for the falkordb backend")
		}
	default:
		return NewConfigError(fmt.Sprintf("ontology.backend %q is not supported (file, falkordb)", c.Ontology.Backend))
	}

	if c.Ontology.CacheSize < 0 {
		return NewConfigError("ontology.cache_size must not be negative")
	}

	switch c.Warehouse.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return NewConfigError(fmt.Sprintf("warehouse.driver %q is not supported (postgres, sqlite)", c.Warehouse.Driver))
	}

	if c.Diagnosis.MaxDepth < -1 {
		return NewConfigError("diagnosis.max_depth must be -1 (unbounded) or a non-negative depth")
	}

	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return NewConfigError("tracing.endpoint must be set when tracing is enabled")
	}

	if knownCheck != nil {
		for trigger, name := range c.Checks.Bindings {
			if !knownCheck(name) {
				return NewConfigError(fmt.Sprintf("checks.bindings[%q] refers to unknown check %q", trigger, name))
			}
		}
	}

	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	message string
}

// NewConfigError creates a new configuration error
func NewConfigError(message string) *ConfigError {
	return &ConfigError{message: message}
}

// Error returns the error message
func (e *ConfigError) Error() string {
	return e.message
}
