package archive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errTestStore = errors.New("bucket unavailable")

// memoryStore records uploaded images.
type memoryStore struct {
	objects map[string][]byte
	err     error
}

// PutImage stores the image unless err is set.
func (m *memoryStore) PutImage(_ context.Context, key string, image []byte) error {
	if m.err != nil {
		return m.err
	}

	m.objects[key] = image

	return nil
}

// staticClassifier always returns the configured answer.
type staticClassifier struct {
	detected  bool
	threshold float32
}

// ImageContainsCat records the threshold and returns the fixed answer.
func (s *staticClassifier) ImageContainsCat(_ context.Context, _ []byte, threshold float32) (bool, error) {
	s.threshold = threshold

	return s.detected, nil
}

// newTestClassifier returns an archive classifier with a fixed clock and id.
func newTestClassifier(store ObjectStore, next *staticClassifier) *Classifier {
	c := NewClassifier(store, next)
	c.now = func() time.Time { return time.Date(2026, 10, 19, 23, 30, 0, 0, time.FixedZone("UTC-3", -3*60*60)) }
	c.newID = func() string { return "frame-1" }

	return c
}

// TestClassifier_ArchivesAndDelegates verifies the image is stored before delegation.
func TestClassifier_ArchivesAndDelegates(t *testing.T) {
	t.Parallel()

	store := &memoryStore{objects: make(map[string][]byte)}
	next := &staticClassifier{detected: true}

	detected, err := newTestClassifier(store, next).ImageContainsCat(context.Background(), []byte("jpeg"), 50)
	require.NoError(t, err)
	require.True(t, detected)
	require.InDelta(t, 50, next.threshold, 0.001)

	// The clock is converted to UTC, which moves the date forward.
	require.Equal(t, map[string][]byte{"images/2026/10/20/frame-1.jpg": []byte("jpeg")}, store.objects)
}

// TestClassifier_ArchiveFailureIsIgnored verifies classification still happens.
func TestClassifier_ArchiveFailureIsIgnored(t *testing.T) {
	t.Parallel()

	store := &memoryStore{err: errTestStore}
	next := &staticClassifier{detected: false}

	detected, err := newTestClassifier(store, next).ImageContainsCat(context.Background(), []byte("jpeg"), 50)
	require.NoError(t, err)
	require.False(t, detected)
}
