package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dishpatch/dishpatch/internal/api/middleware"
	"github.com/dishpatch/dishpatch/internal/api/models"
	"github.com/dishpatch/dishpatch/internal/api/response"
	"github.com/dishpatch/dishpatch/internal/features"
	"github.com/dishpatch/dishpatch/internal/inference"
	"github.com/dishpatch/dishpatch/internal/prediction"
	"github.com/dishpatch/dishpatch/internal/provider/resilience"
	"github.com/dishpatch/dishpatch/internal/reference"
)

// PredictHandler handles prediction endpoints.
type PredictHandler struct {
	prediction *prediction.Service
}

// NewPredictHandler creates a new PredictHandler.
func NewPredictHandler(predictionService *prediction.Service) *PredictHandler {
	return &PredictHandler{prediction: predictionService}
}

// ComputePrediction handles POST /v1/predictions:compute - derive the feature
// record for an order and score it against both models.
func (h *PredictHandler) ComputePrediction(w http.ResponseWriter, r *http.Request) {
	var input models.PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if fieldErrors := input.Validate(); len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid prediction request", fieldErrors)
		return
	}

	// The request-time clock drives hour, week and day-of-month features.
	// Clients may pin it for reproducible derivations.
	now := time.Now()
	if input.PredictionTime != nil {
		now = input.PredictionTime.Time()
	}

	ctx := prediction.WithRequestID(r.Context(), middleware.GetRequestID(r.Context()))

	result, err := h.prediction.Predict(ctx, input.ToRawOrderInput(), now)
	if err != nil {
		switch {
		case errors.Is(err, features.ErrUnknownTrafficDensity):
			response.BadRequest(w, r, "unknown road traffic density", []models.FieldError{
				{Field: "roadTrafficDensity", Message: "must be one of low, medium, high, jam", Code: "UNKNOWN_VALUE"},
			})
		case errors.Is(err, features.ErrInvalidInput):
			response.UnprocessableEntity(w, r, err.Error())
		case errors.Is(err, reference.ErrUnavailable):
			response.ServiceUnavailable(w, r, "reference data is temporarily unavailable")
		case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, inference.ErrModelUnavailable):
			response.ServiceUnavailable(w, r, "model server is temporarily unavailable")
		case errors.Is(err, inference.ErrBadModelResponse):
			response.BadGateway(w, r, "model server returned an unusable response")
		default:
			response.InternalError(w, r, "failed to compute prediction")
		}
		return
	}

	resp := models.PredictResponse{
		GeneratedAt:      models.Timestamp(time.Now()),
		EtaMinutes:       result.EtaMinutes,
		DelayProbability: result.DelayProbability,
		DelayLabel:       string(result.DelayLabel),
		Features:         result.Record,
	}

	w.Header().Set("Cache-Control", "no-store")
	response.JSON(w, r, http.StatusOK, resp)
}
