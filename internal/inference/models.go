// Package inference defines the interfaces to the two pre-trained predictive
// models: a regression model for estimated delivery time and a classifier for
// delay probability. The models are opaque, immutable artifacts hosted
// outside this process; the package only guarantees they receive a
// schema-complete feature record.
package inference

import (
	"context"
	"errors"

	"github.com/dishpatch/dishpatch/internal/features"
)

// Inference errors.
var (
	ErrModelUnavailable = errors.New("model server unavailable")
	ErrBadModelResponse = errors.New("malformed model server response")
)

// EtaPredictor scores the regression model.
type EtaPredictor interface {
	// PredictETA returns the estimated delivery time in minutes.
	PredictETA(ctx context.Context, record *features.FeatureRecord) (float64, error)
}

// DelayPredictor scores the classification model.
type DelayPredictor interface {
	// PredictDelayProbability returns the probability in [0,1] that the
	// delivery is late.
	PredictDelayProbability(ctx context.Context, record *features.FeatureRecord) (float64, error)
}

// DelayLabel is the classification verdict derived from the delay
// probability.
type DelayLabel string

const (
	LabelDelayed DelayLabel = "DELAYED"
	LabelOnTime  DelayLabel = "ON_TIME"
)

// DelayThreshold is the probability cutoff for the delayed label.
const DelayThreshold = 0.5

// Classify applies the threshold policy: strictly above 0.5 is delayed,
// exactly 0.5 is on-time.
func Classify(probability float64) DelayLabel {
	if probability > DelayThreshold {
		return LabelDelayed
	}
	return LabelOnTime
}
