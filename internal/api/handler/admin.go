package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dishpatch/dishpatch/internal/api/middleware"
	"github.com/dishpatch/dishpatch/internal/api/response"
	"github.com/dishpatch/dishpatch/internal/reference"
)

// AdminHandler handles admin endpoints.
type AdminHandler struct {
	reference *reference.Service
	logger    zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(referenceService *reference.Service, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		reference: referenceService,
		logger:    logger,
	}
}

// InvalidateReferenceCache handles POST /v1/admin/reference/invalidate -
// drop all cached reference values so the next read hits the database.
// Used after a history re-ingest changes the category sets.
func (h *AdminHandler) InvalidateReferenceCache(w http.ResponseWriter, r *http.Request) {
	h.reference.InvalidateCache()

	h.logger.Info().
		Str("subject", middleware.GetSubject(r.Context())).
		Msg("reference cache invalidated")

	response.NoContent(w, r)
}
