// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file
// when present), loads them into structured Go types and validates that
// required values are present so they can be reused across the
// application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for every block so a bare environment still runs locally.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process env before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the prefix VISITOR_. The prefix is stripped,
	keys are lowercased and a double underscore marks a nesting level:

	  VISITOR_SERVER__PORT          -> server.port         -> Config.Server.Port
	  VISITOR_STORE__DRIVER         -> store.driver        -> Config.Store.Driver
	  VISITOR_OBSERVABILITY__LOGGING__LEVEL -> observability.logging.level
*/

const (
	// EnvPrefix is the prefix every configuration variable carries.
	EnvPrefix = "VISITOR_"

	// CustomHandlerPortEnv is set by function hosts that run this binary as a
	// custom handler. When present it wins over server.port.
	CustomHandlerPortEnv = "FUNCTIONS_CUSTOMHANDLER_PORT"
)

// Config is the root configuration object for the application.
//
// The `koanf:"..."` tags specify where koanf maps values from and the
// `validate:"..."` tags are enforced by go-playground/validator.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Function      FunctionConfig       `koanf:"function" validate:"required"`
	Store         StoreConfig          `koanf:"store" validate:"required"`
	Database      DatabaseConfig       `koanf:"database"`
	S3            S3Config             `koanf:"s3"`
	Redis         RedisConfig          `koanf:"redis"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are whole seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// RateLimit is the number of requests per second allowed per client IP.
	// Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit" validate:"min=0"`
}

// Function authorization levels.
const (
	AuthLevelAnonymous = "anonymous"
	AuthLevelFunction  = "function"
)

// FunctionConfig describes the single HTTP-triggered function this
// service exposes.
type FunctionConfig struct {
	// Name is the function entry point name; it becomes the last route segment.
	Name string `koanf:"name" validate:"required"`

	// RoutePrefix is prepended to the function name ("api" -> /api/HttpExample).
	RoutePrefix string `koanf:"route_prefix"`

	// Methods lists the HTTP methods the trigger accepts.
	Methods []string `koanf:"methods" validate:"required,min=1,dive,oneof=GET POST"`

	// AuthLevel is either "anonymous" or "function".
	AuthLevel string `koanf:"auth_level" validate:"required,oneof=anonymous function"`

	// Key is the function key required when AuthLevel is "function".
	Key string `koanf:"key" validate:"required_if=AuthLevel function"`
}

// Route returns the path the function is mounted on.
func (f FunctionConfig) Route() string {
	prefix := strings.Trim(f.RoutePrefix, "/")
	if prefix == "" {
		return "/" + f.Name
	}
	return "/" + prefix + "/" + f.Name
}

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverS3       = "s3"
	DriverSQLite   = "sqlite"
)

// StoreConfig describes the document sink visitor records are written to.
type StoreConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=memory postgres mongo s3 sqlite"`

	// Database and Container address the target collection. Their meaning
	// depends on the driver (database/collection for mongo, bucket/prefix for
	// s3, schema/table for postgres, table for sqlite).
	Database  string `koanf:"database" validate:"required"`
	Container string `koanf:"container" validate:"required"`

	// Connection is the NAME of the environment variable holding the
	// connection string, not the connection string itself.
	Connection string `koanf:"connection" validate:"required"`

	// PartitionKey is the document path used as the partition key.
	PartitionKey string `koanf:"partition_key" validate:"required,startswith=/"`

	// CreateIfNotExists creates the container when it is missing.
	CreateIfNotExists bool `koanf:"create_if_not_exists"`

	// Async hands records to the background job queue instead of writing
	// them inline. Requires redis.address.
	Async bool `koanf:"async"`

	// WriteTimeout bounds a single write, in seconds.
	WriteTimeout int `koanf:"write_timeout" validate:"min=1"`
}

// ConnectionString resolves the secret reference in Connection.
func (s StoreConfig) ConnectionString() string {
	return os.Getenv(s.Connection)
}

// DatabaseConfig contains PostgreSQL pool tuning. The DSN itself comes from
// the store connection string.
type DatabaseConfig struct {
	MaxOpenConns    int `koanf:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime int `koanf:"conn_max_lifetime" validate:"min=0"`
	ConnMaxIdleTime int `koanf:"conn_max_idle_time" validate:"min=0"`
}

// S3Config carries object store options that do not fit a connection string.
type S3Config struct {
	Region       string `koanf:"region"`
	UsePathStyle bool   `koanf:"use_path_style"`
}

// RedisConfig contains Redis connection details.
// Address is "host:port"; empty means Redis is not used.
type RedisConfig struct {
	Address string `koanf:"address"`
}

// Default returns a configuration that runs locally with no environment at all.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "7071",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
		},
		Function: FunctionConfig{
			Name:        "HttpExample",
			RoutePrefix: "api",
			Methods:     []string{"POST"},
			AuthLevel:   AuthLevelAnonymous,
		},
		Store: StoreConfig{
			Driver:            DriverMemory,
			Database:          "my-database",
			Container:         "my-container",
			Connection:        "CosmosDbConnectionString",
			PartitionKey:      "/id",
			CreateIfNotExists: true,
			WriteTimeout:      10,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 3600,
			ConnMaxIdleTime: 300,
		},
		S3:            S3Config{Region: "us-east-1"},
		Observability: DefaultObservabilityConfig(),
	}
}

// LoadConfig loads configuration from environment variables on top of
// Default(), validates it and applies observability defaults.
//
// Behavior summary:
//   - Loads env vars with prefix VISITOR_
//   - Unmarshals into a Config pre-filled with defaults
//   - Validates required config blocks/fields
//   - Sets default observability if missing and pins its service name + environment
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := Default()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if port := os.Getenv(CustomHandlerPortEnv); port != "" {
		mainConfig.Server.Port = port
	}

	if err := mainConfig.validate(); err != nil {
		return nil, err
	}

	return mainConfig, nil
}

func (c *Config) validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.Store.Async && c.Redis.Address == "" {
		return fmt.Errorf("store.async requires redis.address")
	}

	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}

	// Service name is pinned so dashboards stay consistent.
	c.Observability.ServiceName = "visitor-function"
	c.Observability.Environment = c.Primary.Env

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	return nil
}
