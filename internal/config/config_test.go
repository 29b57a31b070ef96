package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields, backend selection and defaults.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing socket.
	settings := new(Config)

	err := Validate(settings)
	require.ErrorIs(t, err, errServerSocketRequired)

	// Bad socket.
	settings = &Config{
		ServerAddress: "bad:address",
	}

	err = Validate(settings)
	require.Error(t, err)

	// Defaults.
	settings = &Config{
		ServerAddress: "127.0.0.1:0",
	}

	require.NoError(t, Validate(settings))
	require.Equal(t, DefaultTimeout, settings.Timeout)
	require.Equal(t, StoreFile, settings.Store.Backend)
	require.Equal(t, DefaultStateFilename, settings.Store.StateFile)
	require.Equal(t, ClassifierFake, settings.Classifier.Backend)
	require.Equal(t, DefaultKafkaTopic, settings.Kafka.Topic)
	require.Equal(t, DefaultArchiveBucket, settings.Archive.Bucket)

	// Postgres needs a DSN.
	settings = &Config{
		ServerAddress: "127.0.0.1:0",
		Store:         Store{Backend: "Postgres"},
	}

	require.ErrorIs(t, Validate(settings), errPostgresDSNRequired)

	// Unknown backends.
	settings = &Config{
		ServerAddress: "127.0.0.1:0",
		Store:         Store{Backend: "dynamodb"},
	}

	require.ErrorIs(t, Validate(settings), errUnknownStoreBackend)

	settings = &Config{
		ServerAddress: "127.0.0.1:0",
		Classifier:    Classifier{Backend: "rekognition"},
	}

	require.ErrorIs(t, Validate(settings), errUnknownClassifierBackend)

	// HTTP classifier needs an endpoint.
	settings = &Config{
		ServerAddress: "127.0.0.1:0",
		Classifier:    Classifier{Backend: ClassifierHTTP},
	}

	require.ErrorIs(t, Validate(settings), errClassifierEndpointRequired)

	settings.Classifier.Endpoint = "http://127.0.0.1:8000"
	require.NoError(t, Validate(settings))
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	settings := &Config{
		ServerAddress: "127.0.0.1:50051",
		HTTPAddress:   "127.0.0.1:8080",
		Timeout:       3 * time.Second,
		Store: Store{
			Backend:   StoreMemory,
			StateFile: "state.json",
		},
		Kafka: Kafka{
			Brokers: []string{"127.0.0.1:9092"},
		},
	}

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings.ServerAddress, loaded.ServerAddress)
	require.Equal(t, settings.HTTPAddress, loaded.HTTPAddress)
	require.Equal(t, settings.Timeout, loaded.Timeout)
	require.Equal(t, StoreMemory, loaded.Store.Backend)
	require.Equal(t, []string{"127.0.0.1:9092"}, loaded.Kafka.Brokers)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)

	require.ErrorIs(t, Save(path, nil), errConfigIsNotSet)
}

// TestLoad_EnvironmentOverrides verifies CATPOINT_* variables take precedence over YAML.
func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	require.NoError(t, Save(path, &Config{ServerAddress: "127.0.0.1:50051"}))

	t.Setenv("CATPOINT_SERVER_ADDR", "127.0.0.1:6000")
	t.Setenv("CATPOINT_STORE_BACKEND", StoreMemory)
	t.Setenv("CATPOINT_KAFKA_BROKERS", "a:9092,b:9092")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:6000", loaded.ServerAddress)
	require.Equal(t, StoreMemory, loaded.Store.Backend)
	require.Equal(t, []string{"a:9092", "b:9092"}, loaded.Kafka.Brokers)
}
