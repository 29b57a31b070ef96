package classifier

import (
	"context"
	"fmt"

	"github.com/oshokin/catpoint/internal/config"
)

// Classifier decides whether an encoded camera image contains a cat.
type Classifier interface {
	// ImageContainsCat reports whether a cat is present with at least the
	// given confidence, in percent (0-100).
	ImageContainsCat(ctx context.Context, image []byte, confidenceThreshold float32) (bool, error)
}

// New builds the classifier selected by the settings.
//
//nolint:ireturn // The backend is chosen at runtime.
func New(settings *config.Classifier, opts ...Option) (Classifier, error) {
	switch settings.Backend {
	case config.ClassifierHTTP:
		return NewHTTPClassifier(settings.Endpoint, opts...), nil
	case config.ClassifierFake, "":
		return NewFakeClassifier(), nil
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownBackend, settings.Backend)
	}
}
