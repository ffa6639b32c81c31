// Package prediction orchestrates one prediction request: derive the feature
// record, score both models, apply the delay threshold, and emit an audit
// entry.
package prediction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/dishpatch/dishpatch/internal/audit"
	"github.com/dishpatch/dishpatch/internal/features"
	"github.com/dishpatch/dishpatch/internal/inference"
	"github.com/dishpatch/dishpatch/internal/reference"
)

const tracerName = "github.com/dishpatch/dishpatch/internal/prediction"

// Result is one scored prediction.
type Result struct {
	// EtaMinutes is the regression model's estimated delivery time.
	EtaMinutes float64

	// DelayProbability is the classifier's probability of a late delivery.
	DelayProbability float64

	// DelayLabel is the thresholded verdict.
	DelayLabel inference.DelayLabel

	// Record is the feature record both models scored.
	Record *features.FeatureRecord
}

// ServiceConfig holds the service dependencies.
type ServiceConfig struct {
	Reference      *reference.Service
	EtaPredictor   inference.EtaPredictor
	DelayPredictor inference.DelayPredictor
	Logger         zerolog.Logger

	// AuditStore is optional; when set, scored predictions are recorded
	// asynchronously.
	AuditStore audit.Store

	// AuditTimeout bounds each async audit insert (default: 5s).
	AuditTimeout time.Duration
}

// Service runs predictions. It is stateless apart from its injected
// collaborators and safe for concurrent use.
type Service struct {
	reference      *reference.Service
	etaPredictor   inference.EtaPredictor
	delayPredictor inference.DelayPredictor
	logger         zerolog.Logger
	auditStore     audit.Store
	auditTimeout   time.Duration
}

// NewService creates a new prediction service.
func NewService(cfg ServiceConfig) *Service {
	auditTimeout := cfg.AuditTimeout
	if auditTimeout == 0 {
		auditTimeout = 5 * time.Second
	}

	return &Service{
		reference:      cfg.Reference,
		etaPredictor:   cfg.EtaPredictor,
		delayPredictor: cfg.DelayPredictor,
		logger:         cfg.Logger,
		auditStore:     cfg.AuditStore,
		auditTimeout:   auditTimeout,
	}
}

// Predict derives the feature record for raw at the injected timestamp and
// scores it against both models. Inference errors propagate to the caller;
// there are no retries at this layer, a failed prediction needs a new
// request.
func (s *Service) Predict(ctx context.Context, raw features.RawOrderInput, now time.Time) (*Result, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "prediction.Predict")
	defer span.End()

	start := time.Now()

	ageBins, err := s.reference.AgeBins(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "reference data unavailable")
		return nil, err
	}

	record, err := features.Derive(raw, now, ageBins)
	if err != nil {
		span.SetStatus(codes.Error, "derivation failed")
		return nil, err
	}
	if err := record.Validate(); err != nil {
		span.SetStatus(codes.Error, "incomplete feature record")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("prediction.traffic_ordinal", record.TrafficOrdinal),
		attribute.Int("prediction.distance_bin", record.DistanceBin),
		attribute.String("prediction.part_of_day", record.PartOfDay),
	)

	eta, err := s.etaPredictor.PredictETA(ctx, record)
	if err != nil {
		span.SetStatus(codes.Error, "eta model failed")
		return nil, err
	}

	probability, err := s.delayPredictor.PredictDelayProbability(ctx, record)
	if err != nil {
		span.SetStatus(codes.Error, "delay model failed")
		return nil, err
	}

	result := &Result{
		EtaMinutes:       eta,
		DelayProbability: probability,
		DelayLabel:       inference.Classify(probability),
		Record:           record,
	}

	s.logger.Debug().
		Float64("eta_minutes", result.EtaMinutes).
		Float64("delay_probability", result.DelayProbability).
		Str("delay_label", string(result.DelayLabel)).
		Dur("duration", time.Since(start)).
		Msg("prediction served")

	s.recordAudit(ctx, result, time.Since(start))

	return result, nil
}

// recordAudit emits an audit entry without blocking or failing the request.
func (s *Service) recordAudit(ctx context.Context, result *Result, latency time.Duration) {
	if s.auditStore == nil {
		return
	}

	entry := &audit.Entry{
		ID:               uuid.New().String(),
		RequestID:        requestIDFromContext(ctx),
		Record:           result.Record,
		EtaMinutes:       result.EtaMinutes,
		DelayProbability: result.DelayProbability,
		DelayLabel:       result.DelayLabel,
		LatencyMs:        float64(latency.Milliseconds()),
		CreatedAt:        time.Now().UTC(),
	}

	go func() {
		insertCtx, cancel := context.WithTimeout(context.Background(), s.auditTimeout)
		defer cancel()

		if err := s.auditStore.Insert(insertCtx, entry); err != nil {
			s.logger.Warn().Err(err).Str("entry_id", entry.ID).Msg("failed to record prediction audit entry")
		}
	}()
}
