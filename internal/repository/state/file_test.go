package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/catpoint/internal/config"
	domain "github.com/oshokin/catpoint/internal/domain/alarm"
)

// TestFileRepository_Contract runs the shared contract against the file backend.
func TestFileRepository_Contract(t *testing.T) {
	t.Parallel()

	testRepositoryContract(t, NewFileRepository(filepath.Join(t.TempDir(), "state.json")))
}

// TestFileRepository_MissingFile verifies reads of a missing file return defaults without creating it.
func TestFileRepository_MissingFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "missing.json")
	repo := NewFileRepository(file)

	status, err := repo.AlarmStatus(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.NoAlarm, status)

	_, err = os.Stat(file)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestFileRepository_SharedFile ensures two repositories over one file see each other's writes.
func TestFileRepository_SharedFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "state.json")
	writer := NewFileRepository(file)
	reader := NewFileRepository(file)

	ctx := context.Background()
	require.NoError(t, writer.SetArmingStatus(ctx, domain.ArmedHome))
	require.NoError(t, writer.AddSensor(ctx, domain.NewSensor("Front Door", domain.Door)))

	status, err := reader.ArmingStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.ArmedHome, status)

	sensors, err := reader.Sensors(ctx)
	require.NoError(t, err)
	require.Len(t, sensors, 1)

	contents, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Contains(t, string(contents), `"ARMED_HOME"`)
	require.Contains(t, string(contents), `"Front Door"`)
}

// TestFileRepository_Corrupted verifies decoding errors propagate.
func TestFileRepository_Corrupted(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(file, []byte("{not json"), config.DefaultFilePermissions))

	repo := NewFileRepository(file)

	_, err := repo.AlarmStatus(context.Background())
	require.Error(t, err)

	require.Error(t, repo.SetAlarmStatus(context.Background(), domain.Alarm))

	require.NoError(t, os.WriteFile(file, []byte(`{"alarm_status": "SIREN"}`), config.DefaultFilePermissions))

	_, err = repo.Sensors(context.Background())
	require.ErrorIs(t, err, domain.ErrUnknownAlarmStatus)
}

// TestOpen verifies backend selection.
func TestOpen(t *testing.T) {
	t.Parallel()

	repo, closeRepo, err := Open(context.Background(), &config.Store{Backend: config.StoreMemory})
	require.NoError(t, err)
	require.IsType(t, new(MemoryRepository), repo)
	require.NoError(t, closeRepo())

	repo, closeRepo, err = Open(context.Background(), &config.Store{
		Backend:   config.StoreFile,
		StateFile: filepath.Join(t.TempDir(), "state.json"),
	})
	require.NoError(t, err)
	require.IsType(t, new(FileRepository), repo)
	require.NoError(t, closeRepo())

	_, closeRepo, err = Open(context.Background(), &config.Store{Backend: "etcd"})
	require.ErrorIs(t, err, errUnknownBackend)
	require.NotNil(t, closeRepo)
}
