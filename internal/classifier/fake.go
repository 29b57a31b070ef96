package classifier

import (
	"context"
	"math/rand/v2"
	"sync"
)

// FakeClassifier answers at random. It stands in for a real model in demos
// and local runs.
type FakeClassifier struct {
	// rnd is the random source; guarded by mu because rand.Rand is not safe for concurrent use.
	rnd *rand.Rand
	mu  sync.Mutex
}

// NewFakeClassifier creates a classifier with a randomly seeded source.
func NewFakeClassifier() *FakeClassifier {
	return NewSeededFakeClassifier(rand.Uint64(), rand.Uint64())
}

// NewSeededFakeClassifier creates a classifier whose answers are reproducible.
func NewSeededFakeClassifier(seed1, seed2 uint64) *FakeClassifier {
	return &FakeClassifier{
		rnd: rand.New(rand.NewPCG(seed1, seed2)), //nolint:gosec // Not used for security.
	}
}

// ImageContainsCat draws a confidence in [0, 100) and compares it with the threshold.
func (f *FakeClassifier) ImageContainsCat(_ context.Context, _ []byte, confidenceThreshold float32) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.rnd.Float32()*100 >= confidenceThreshold, nil
}
