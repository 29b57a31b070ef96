package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/oshokin/catpoint/internal/archive"
	"github.com/oshokin/catpoint/internal/classifier"
	"github.com/oshokin/catpoint/internal/config"
	"github.com/oshokin/catpoint/internal/logger"
	"github.com/oshokin/catpoint/internal/notify"
	repository "github.com/oshokin/catpoint/internal/repository/state"
	"github.com/oshokin/catpoint/internal/service/security"
	"github.com/oshokin/catpoint/internal/version"
)

// components is everything the transports need, built from the settings.
type components struct {
	// guard serializes access to the security service.
	guard *security.Guard
	// registry holds the exported metrics.
	registry *prometheus.Registry
	// closers release backend resources in reverse order.
	closers []func() error
}

// buildComponents opens the store, the classifier chain and the listeners.
// On error everything opened so far is released.
func buildComponents(ctx context.Context, settings *config.Config) (_ *components, err error) {
	c := &components{registry: prometheus.NewRegistry()}

	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, closeStore, err := repository.Open(ctx, &settings.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", settings.Store.Backend, err)
	}

	c.closers = append(c.closers, closeStore)

	detector, err := newDetector(ctx, settings)
	if err != nil {
		return nil, err
	}

	svc := security.New(store, detector)

	metrics, err := notify.NewMetricsListener(c.registry)
	if err != nil {
		return nil, err
	}

	current, err := svc.AlarmStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("read alarm status: %w", err)
	}

	metrics.Sync(current)

	svc.AddStatusListener(notify.NewLogListener())
	svc.AddStatusListener(metrics)

	if len(settings.Kafka.Brokers) > 0 {
		publisher, err := notify.NewKafkaPublisher(settings.Kafka.Brokers, settings.Kafka.Topic)
		if err != nil {
			return nil, err
		}

		c.closers = append(c.closers, publisher.Close)
		svc.AddStatusListener(publisher)

		logger.InfoKV(ctx, "Publishing status events", "brokers", settings.Kafka.Brokers, "topic", settings.Kafka.Topic)
	}

	c.guard = security.NewGuard(svc)

	return c, nil
}

// newDetector builds the configured classifier, wrapped by the image archive when enabled.
//
//nolint:ireturn // The backend is chosen at runtime.
func newDetector(ctx context.Context, settings *config.Config) (classifier.Classifier, error) {
	detector, err := classifier.New(&settings.Classifier,
		classifier.WithTimeout(settings.Timeout),
		classifier.WithUserAgent(version.UserAgent(serverName)))
	if err != nil {
		return nil, fmt.Errorf("create classifier: %w", err)
	}

	if settings.Archive.Endpoint == "" {
		return detector, nil
	}

	store, err := archive.NewMinioStore(ctx, &settings.Archive)
	if err != nil {
		return nil, fmt.Errorf("open image archive: %w", err)
	}

	logger.InfoKV(ctx, "Archiving camera images", "endpoint", settings.Archive.Endpoint, "bucket", settings.Archive.Bucket)

	return archive.NewClassifier(store, detector), nil
}

// Close releases every opened resource.
func (c *components) Close() error {
	var errs []error

	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}

	return errors.Join(errs...)
}
