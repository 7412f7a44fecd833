package handler

import (
	"net/http"
	"regexp"

	"go.uber.org/zap"

	"github.com/geocon-eng/pipeline-api/internal/auth"
	"github.com/geocon-eng/pipeline-api/internal/service"
)

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// AnalyticsHandler handles HTTP requests for the analytics report
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	accessService    *service.AccessService
	logger           *zap.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler instance
func NewAnalyticsHandler(analyticsService *service.AnalyticsService, accessService *service.AccessService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		accessService:    accessService,
		logger:           logger,
	}
}

// GetReport godoc
// @Summary Get the analytics report
// @Description Recompute the full pipeline analytics report from all proposals
// @Description and projects
// @Tags Analytics
// @Produce json
// @Success 200 {object} domain.AnalyticsReportDTO
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Router /analytics [get]
func (h *AnalyticsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	report, err := h.analyticsService.GetAnalytics(r.Context())
	if err != nil {
		h.logger.Error("failed to build analytics report", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// GetMonthly godoc
// @Summary Get monthly analytics
// @Description Get the incremental rollup for one calendar month (YYYY-MM)
// @Tags Analytics
// @Produce json
// @Param month query string true "Month in YYYY-MM format"
// @Success 200 {object} domain.MonthlyAnalyticsDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Router /analytics/monthly [get]
func (h *AnalyticsHandler) GetMonthly(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	month := r.URL.Query().Get("month")
	if !monthPattern.MatchString(month) {
		respondWithError(w, http.StatusBadRequest, "month must be in YYYY-MM format")
		return
	}

	dto, err := h.analyticsService.GetMonthly(r.Context(), month)
	if err != nil {
		h.logger.Error("failed to get monthly analytics", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

func (h *AnalyticsHandler) authorize(w http.ResponseWriter, r *http.Request) bool {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return false
	}
	if !h.accessService.CanViewAnalytics(userCtx) {
		respondWithError(w, http.StatusForbidden, "You do not have access to analytics")
		return false
	}
	return true
}
