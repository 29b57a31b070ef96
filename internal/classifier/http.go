package classifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/samber/lo"

	"github.com/oshokin/catpoint/internal/logger"
)

// catLabel is the label name that counts as a cat, compared case-insensitively.
const catLabel = "cat"

// predictPath is the prediction route of the classification service.
const predictPath = "/predict"

var (
	// errUnknownBackend is returned for classifier backends New does not know.
	errUnknownBackend = errors.New("unknown classifier backend")
	// errBadHTTPStatus is returned when the prediction service answers with a non-2xx status.
	errBadHTTPStatus = errors.New("unexpected http status")
)

// Label is one detected object class.
type Label struct {
	// Name is the class, e.g. "Cat" or "Sofa".
	Name string `json:"name"`
	// Confidence is the detection confidence in percent.
	Confidence float32 `json:"confidence"`
}

// PredictResponse is the body returned by POST /predict.
type PredictResponse struct {
	Labels []Label `json:"labels"`
}

// HTTPClassifier asks a remote prediction service for image labels.
type HTTPClassifier struct {
	// client is preconfigured with the service base URL.
	client *resty.Client
}

// Option configures the HTTP classifier.
type Option func(*resty.Client)

// WithTimeout limits the duration of each prediction request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *resty.Client) {
		if timeout > 0 {
			c.SetTimeout(timeout)
		}
	}
}

// WithUserAgent sets the User-Agent header of prediction requests.
func WithUserAgent(userAgent string) Option {
	return func(c *resty.Client) {
		if userAgent != "" {
			c.SetHeader("User-Agent", userAgent)
		}
	}
}

// NewHTTPClassifier creates a classifier for the service at baseURL.
func NewHTTPClassifier(baseURL string, opts ...Option) *HTTPClassifier {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	for _, opt := range opts {
		opt(client)
	}

	return &HTTPClassifier{client: client}
}

// ImageContainsCat uploads the image as multipart form data and checks the labels.
func (c *HTTPClassifier) ImageContainsCat(
	ctx context.Context,
	image []byte,
	confidenceThreshold float32,
) (bool, error) {
	var result PredictResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetFileReader("file", "frame.jpg", bytes.NewReader(image)).
		SetFormData(map[string]string{
			"threshold": strconv.FormatFloat(float64(confidenceThreshold), 'f', -1, 32),
		}).
		SetResult(&result).
		Post(predictPath)
	if err != nil {
		return false, fmt.Errorf("predict request: %w", err)
	}

	if resp.IsError() {
		return false, fmt.Errorf("%w: %s: %s", errBadHTTPStatus, resp.Status(), strings.TrimSpace(resp.String()))
	}

	detected := ContainsCat(result.Labels, confidenceThreshold)

	logger.DebugKV(ctx, "Image classified",
		"labels", len(result.Labels),
		"cat_detected", detected,
		"duration", resp.Time().String())

	return detected, nil
}

// ContainsCat reports whether any label is a cat with confidence at or above the threshold.
func ContainsCat(labels []Label, confidenceThreshold float32) bool {
	return lo.SomeBy(labels, func(label Label) bool {
		return strings.EqualFold(strings.TrimSpace(label.Name), catLabel) && label.Confidence >= confidenceThreshold
	})
}
