// Package handler provides HTTP handlers for the Dishpatch API.
package handler

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/dishpatch/dishpatch/internal/api/models"
	"github.com/dishpatch/dishpatch/internal/api/response"
	"github.com/dishpatch/dishpatch/internal/provider/resilience"
	"github.com/dishpatch/dishpatch/internal/reference"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	reference *reference.Service
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry, referenceService *reference.Service) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
		reference: referenceService,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The service is
// ready when no model circuit is open: a single open circuit fails readiness
// because both models are required to serve a prediction.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	for _, endpoint := range h.registry.GetAllHealth() {
		if !endpoint.IsHealthy() {
			status = models.HealthStatusFail
			break
		}
	}

	health := models.Health{
		Status: status,
		Time:   models.Timestamp(time.Now()),
	}

	code := http.StatusOK
	if status == models.HealthStatusFail {
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, r, code, health)
}

// SystemStatus handles GET /v1/ops/status - model circuit and cache status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())

	overall := models.HealthStatusOK
	endpoints := h.registry.GetAllHealth()
	modelStatuses := make([]models.ModelStatus, 0, len(endpoints))
	for _, endpoint := range endpoints {
		status := circuitHealthStatus(endpoint.CircuitState)
		if status != models.HealthStatusOK && overall == models.HealthStatusOK {
			overall = models.HealthStatusDegraded
		}
		if status == models.HealthStatusFail {
			overall = models.HealthStatusFail
		}

		ms := models.ModelStatus{
			Model:  endpoint.Name,
			Status: status,
		}
		if endpoint.LastSuccessAt != nil {
			ts := models.Timestamp(*endpoint.LastSuccessAt)
			ms.LastSuccessAt = &ts
		}
		if endpoint.LastFailureAt != nil {
			ts := models.Timestamp(*endpoint.LastFailureAt)
			ms.LastFailureAt = &ts
		}
		if endpoint.LastError != "" {
			msg := endpoint.LastError
			ms.Message = &msg
		}
		modelStatuses = append(modelStatuses, ms)
	}

	cacheStats := h.reference.Stats()

	status := models.SystemStatus{
		Status: overall,
		Time:   now,
		Models: modelStatuses,
		ReferenceCache: models.ReferenceCache{
			Columns:      cacheStats.Columns,
			FreshColumns: cacheStats.FreshColumns,
		},
		Subsystems: []models.SubsystemStatus{referenceCacheSubsystem(cacheStats)},
	}
	response.JSON(w, r, http.StatusOK, status)
}

// referenceCacheSubsystem reports the cache as degraded when any cached
// column has gone stale (stale entries are still served on repository errors).
func referenceCacheSubsystem(stats reference.CacheStats) models.SubsystemStatus {
	sub := models.SubsystemStatus{
		Name:   "reference-cache",
		Status: models.HealthStatusOK,
	}
	if stats.FreshColumns < stats.Columns {
		sub.Status = models.HealthStatusDegraded
		detail := "serving stale reference values"
		sub.Detail = &detail
	}
	return sub
}

func circuitHealthStatus(state gobreaker.State) models.HealthStatus {
	switch state {
	case gobreaker.StateOpen:
		return models.HealthStatusFail
	case gobreaker.StateHalfOpen:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}
