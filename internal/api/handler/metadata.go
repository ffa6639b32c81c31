package handler

import (
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/dishpatch/dishpatch/internal/api/models"
	"github.com/dishpatch/dishpatch/internal/api/response"
	"github.com/dishpatch/dishpatch/internal/features"
	"github.com/dishpatch/dishpatch/internal/inference"
	"github.com/dishpatch/dishpatch/internal/reference"
)

// MetadataHandler handles metadata endpoints.
type MetadataHandler struct {
	reference *reference.Service
}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler(referenceService *reference.Service) *MetadataHandler {
	return &MetadataHandler{reference: referenceService}
}

// GetReferenceValues handles GET /v1/metadata/reference/{column} - distinct
// values for one reference column. Clients use these to populate the order
// form selects.
func (h *MetadataHandler) GetReferenceValues(w http.ResponseWriter, r *http.Request) {
	column := chi.URLParam(r, "column")

	values, err := h.reference.DistinctValues(r.Context(), column)
	if err != nil {
		switch {
		case errors.Is(err, reference.ErrUnknownColumn):
			response.NotFound(w, r, "unknown reference column: "+column)
		case errors.Is(err, reference.ErrUnavailable):
			response.ServiceUnavailable(w, r, "reference data is temporarily unavailable")
		default:
			response.InternalError(w, r, "failed to load reference values")
		}
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	response.JSON(w, r, http.StatusOK, models.ReferenceValues{
		Column: column,
		Values: values,
	})
}

// GetEnums handles GET /v1/metadata/enums - fixed enumerations used by the API.
func (h *MetadataHandler) GetEnums(w http.ResponseWriter, r *http.Request) {
	trafficDensities := make([]string, 0, len(features.TrafficOrdinals))
	for density := range features.TrafficOrdinals {
		trafficDensities = append(trafficDensities, density)
	}
	sort.Strings(trafficDensities)

	enums := models.Enums{
		ReferenceColumns: reference.Columns(),
		TrafficDensities: trafficDensities,
		PartsOfDay: []string{
			features.PartOfDayMorning,
			features.PartOfDayLunch,
			features.PartOfDayAfternoon,
			features.PartOfDayEvening,
			features.PartOfDayNight,
		},
		DelayLabels: []string{
			string(inference.LabelDelayed),
			string(inference.LabelOnTime),
		},
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	response.JSON(w, r, http.StatusOK, enums)
}
