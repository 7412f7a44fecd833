package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/geocon-eng/pipeline-api/internal/repository"
	"github.com/geocon-eng/pipeline-api/internal/service"
)

// AuditHandler exposes the activity and deletion logs
type AuditHandler struct {
	auditService *service.AuditService
	logger       *zap.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *service.AuditService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// ListActivity godoc
// @Summary List activity log entries
// @Description Get the paginated activity log with optional filters, newest first
// @Tags Audit
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param action query string false "Filter by action"
// @Param entityType query string false "Filter by entity type" Enums(proposal, project)
// @Param entityNumber query string false "Filter by proposal or project number"
// @Param actor query string false "Filter by actor email"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ActivityLogDTO}
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /audit/activity [get]
func (h *AuditHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePageParams(r)

	filter := &repository.ActivityLogFilter{
		Action:       r.URL.Query().Get("action"),
		EntityType:   r.URL.Query().Get("entityType"),
		EntityNumber: r.URL.Query().Get("entityNumber"),
		Actor:        r.URL.Query().Get("actor"),
	}

	result, err := h.auditService.ListActivity(r.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list activity log", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ListDeletions godoc
// @Summary List deletion log entries
// @Description Get snapshots of deleted proposals and projects, newest first
// @Tags Audit
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param entityType query string false "Filter by entity type" Enums(proposal, project)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.DeletionLogDTO}
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /audit/deletions [get]
func (h *AuditHandler) ListDeletions(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePageParams(r)

	result, err := h.auditService.ListDeletions(r.Context(), r.URL.Query().Get("entityType"), page, pageSize)
	if err != nil {
		h.logger.Error("failed to list deletion log", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
