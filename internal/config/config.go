package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by catpoint-server and catpoint-ctl.
type Config struct {
	// ServerAddress is the gRPC address of the security service.
	ServerAddress string `yaml:"server_addr" env:"SERVER_ADDR"`
	// HTTPAddress is the optional listen address of the ops endpoint (health, metrics, status).
	HTTPAddress string `yaml:"http_addr" env:"HTTP_ADDR"`
	// Timeout is the duration for network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// LogLevel is the minimum level for log output.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	// LogEncoding is either "console" or "json".
	LogEncoding string `yaml:"log_encoding" env:"LOG_ENCODING"`
	// Store selects and configures the state store backend.
	Store Store `yaml:"store" envPrefix:"STORE_"`
	// Classifier selects and configures the image classifier.
	Classifier Classifier `yaml:"classifier" envPrefix:"CLASSIFIER_"`
	// Kafka configures publishing of status events; empty brokers disable it.
	Kafka Kafka `yaml:"kafka" envPrefix:"KAFKA_"`
	// Archive configures image archiving to S3-compatible storage; empty endpoint disables it.
	Archive Archive `yaml:"archive" envPrefix:"ARCHIVE_"`
}

// Store configures the state store backend.
type Store struct {
	// Backend is one of "memory", "file" or "postgres".
	Backend string `yaml:"backend" env:"BACKEND"`
	// StateFile is the path of the JSON state file used by the file backend.
	StateFile string `yaml:"state_file" env:"STATE_FILE"`
	// PostgresDSN is the connection string used by the postgres backend.
	PostgresDSN string `yaml:"postgres_dsn" env:"POSTGRES_DSN"`
}

// Classifier configures the image classifier.
type Classifier struct {
	// Backend is one of "http" or "fake".
	Backend string `yaml:"backend" env:"BACKEND"`
	// Endpoint is the base URL of the prediction service used by the http backend.
	Endpoint string `yaml:"endpoint" env:"ENDPOINT"`
}

// Kafka configures the status event publisher.
type Kafka struct {
	// Brokers lists the bootstrap brokers.
	Brokers []string `yaml:"brokers" env:"BROKERS" envSeparator:","`
	// Topic receives one message per status event.
	Topic string `yaml:"topic" env:"TOPIC"`
}

// Archive configures the camera image archive.
type Archive struct {
	// Endpoint is the host:port of the S3-compatible server.
	Endpoint string `yaml:"endpoint" env:"ENDPOINT"`
	// AccessKey is the static access key.
	AccessKey string `yaml:"access_key" env:"ACCESS_KEY"`
	// SecretKey is the static secret key.
	SecretKey string `yaml:"secret_key" env:"SECRET_KEY"`
	// Bucket receives the archived images.
	Bucket string `yaml:"bucket" env:"BUCKET"`
	// Secure enables TLS.
	Secure bool `yaml:"secure" env:"SECURE"`
}

// Store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// Classifier backends.
const (
	ClassifierHTTP = "http"
	ClassifierFake = "fake"
)

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "catpoint-settings.yaml"

	// DefaultStateFilename is the default filename for the state JSON.
	DefaultStateFilename = "catpoint-state.json"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultKafkaTopic is the default topic for status events.
	DefaultKafkaTopic = "catpoint-status"

	// DefaultArchiveBucket is the default bucket for archived images.
	DefaultArchiveBucket = "catpoint-images"

	// DefaultFilePermissions is the default file permission for config and state files.
	DefaultFilePermissions = 0o600

	// envPrefix is prepended to every environment override.
	envPrefix = "CATPOINT_"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// errUnknownStoreBackend is returned for unsupported store backends.
	errUnknownStoreBackend = errors.New("unknown store backend")
	// errPostgresDSNRequired is returned when the postgres backend has no DSN.
	errPostgresDSNRequired = errors.New("postgres DSN must be provided")
	// errUnknownClassifierBackend is returned for unsupported classifier backends.
	errUnknownClassifierBackend = errors.New("unknown classifier backend")
	// errClassifierEndpointRequired is returned when the http classifier has no endpoint.
	errClassifierEndpointRequired = errors.New("classifier endpoint must be provided")
)

// Load reads configuration from the provided path, applies CATPOINT_*
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions, the file may hold credentials.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting
// and fills in defaults.
func Validate(settings *Config) error {
	if settings.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if settings.HTTPAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", settings.HTTPAddress); err != nil {
			return fmt.Errorf("invalid http address: %w", err)
		}
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if err := validateStore(&settings.Store); err != nil {
		return err
	}

	if err := validateClassifier(&settings.Classifier); err != nil {
		return err
	}

	if settings.Kafka.Topic == "" {
		settings.Kafka.Topic = DefaultKafkaTopic
	}

	if settings.Archive.Bucket == "" {
		settings.Archive.Bucket = DefaultArchiveBucket
	}

	return nil
}

func validateStore(store *Store) error {
	store.Backend = strings.ToLower(strings.TrimSpace(store.Backend))
	if store.Backend == "" {
		store.Backend = StoreFile
	}

	if store.StateFile == "" {
		store.StateFile = DefaultStateFilename
	}

	switch store.Backend {
	case StoreMemory, StoreFile:
		return nil
	case StorePostgres:
		if store.PostgresDSN == "" {
			return errPostgresDSNRequired
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", errUnknownStoreBackend, store.Backend)
	}
}

func validateClassifier(classifier *Classifier) error {
	classifier.Backend = strings.ToLower(strings.TrimSpace(classifier.Backend))
	if classifier.Backend == "" {
		classifier.Backend = ClassifierFake
	}

	switch classifier.Backend {
	case ClassifierFake:
		return nil
	case ClassifierHTTP:
		if classifier.Endpoint == "" {
			return errClassifierEndpointRequired
		}

		if _, err := url.ParseRequestURI(classifier.Endpoint); err != nil {
			return fmt.Errorf("invalid classifier endpoint: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", errUnknownClassifierBackend, classifier.Backend)
	}
}
