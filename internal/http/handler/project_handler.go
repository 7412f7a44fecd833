package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/geocon-eng/pipeline-api/internal/repository"
	"github.com/geocon-eng/pipeline-api/internal/service"
)

// ProjectHandler handles HTTP requests for projects and the legal queue
type ProjectHandler struct {
	projectService *service.ProjectService
	logger         *zap.Logger
}

// NewProjectHandler creates a new ProjectHandler instance
func NewProjectHandler(projectService *service.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// List godoc
// @Summary List projects
// @Description Get a paginated list of projects with optional filters
// @Tags Projects
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(pending_legal, pending_additional_info, active, completed, dead)
// @Param office query string false "Filter by office code"
// @Param projectManager query string false "Filter by project manager"
// @Param legalStatus query string false "Filter by legal status"
// @Param search query string false "Search project number, project name or client"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ProjectDTO}
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /projects [get]
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePageParams(r)

	filter := repository.ProjectFilter{
		Status:         domain.ProjectStatus(r.URL.Query().Get("status")),
		Office:         domain.OfficeCode(r.URL.Query().Get("office")),
		ProjectManager: r.URL.Query().Get("projectManager"),
		LegalStatus:    domain.LegalStatus(r.URL.Query().Get("legalStatus")),
		Search:         r.URL.Query().Get("search"),
	}

	if filter.Status != "" && !filter.Status.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}
	if filter.LegalStatus != "" && !filter.LegalStatus.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid legal status filter")
		return
	}

	result, err := h.projectService.List(r.Context(), filter, page, pageSize)
	if err != nil {
		h.respondServiceError(w, err, "failed to list projects")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Get godoc
// @Summary Get a project
// @Description Get a single project by ID
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} domain.ProjectDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /projects/{id} [get]
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	dto, err := h.projectService.GetByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "failed to get project")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// GetByNumber godoc
// @Summary Get a project by number
// @Description Get a single project by its project number
// @Tags Projects
// @Produce json
// @Param number path string true "Project number"
// @Success 200 {object} domain.ProjectDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /projects/number/{number} [get]
func (h *ProjectHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	if number == "" {
		respondWithError(w, http.StatusBadRequest, "Project number is required")
		return
	}

	dto, err := h.projectService.GetByNumber(r.Context(), number)
	if err != nil {
		h.respondServiceError(w, err, "failed to get project")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// UpdateLegalStatus godoc
// @Summary Update legal status
// @Description Move a project through the legal review queue. Signing releases
// @Description the project to the additional-info step; not signing kills it.
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param body body domain.UpdateLegalStatusRequest true "New legal status"
// @Success 200 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /projects/{id}/legal-status [put]
func (h *ProjectHandler) UpdateLegalStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateLegalStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.projectService.UpdateLegalStatus(r.Context(), id, &req)
	if err != nil {
		h.respondServiceError(w, err, "failed to update legal status")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// GetLegalHistory godoc
// @Summary Get legal status history
// @Description Get the full legal status trail for a project, newest first
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {array} domain.LegalStatusEventDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /projects/{id}/legal-history [get]
func (h *ProjectHandler) GetLegalHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	events, err := h.projectService.GetLegalHistory(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "failed to get legal history")
		return
	}

	respondJSON(w, http.StatusOK, events)
}

// GetLegalQueue godoc
// @Summary Get the legal queue
// @Description Get all projects with an open legal review, with counts per status
// @Tags Projects
// @Produce json
// @Success 200 {object} domain.LegalQueueDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /projects/legal-queue [get]
func (h *ProjectHandler) GetLegalQueue(w http.ResponseWriter, r *http.Request) {
	queue, err := h.projectService.GetLegalQueue(r.Context())
	if err != nil {
		h.respondServiceError(w, err, "failed to get legal queue")
		return
	}

	respondJSON(w, http.StatusOK, queue)
}

// SubmitInfo godoc
// @Summary Submit additional project information
// @Description Save a draft of the administrative intake form, or submit it
// @Description to finalize the project
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param body body domain.SubmitProjectInfoRequest true "Intake form"
// @Success 200 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /projects/{id}/info [post]
func (h *ProjectHandler) SubmitInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req domain.SubmitProjectInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.projectService.SubmitAdditionalInfo(r.Context(), id, &req)
	if err != nil {
		h.respondServiceError(w, err, "failed to submit project info")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// Complete godoc
// @Summary Mark a project complete
// @Description Close out a project without the full intake form
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} domain.ProjectDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /projects/{id}/complete [post]
func (h *ProjectHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	dto, err := h.projectService.MarkComplete(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "failed to complete project")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// Delete godoc
// @Summary Delete a project
// @Description Delete a project and revert its proposal to pending
// @Tags Projects
// @Accept json
// @Param id path string true "Project ID"
// @Param body body domain.DeleteRequest false "Deletion note"
// @Success 204 "No Content"
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req domain.DeleteRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.projectService.Delete(r.Context(), id, &req); err != nil {
		h.respondServiceError(w, err, "failed to delete project")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func (h *ProjectHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *ProjectHandler) respondServiceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		respondWithError(w, http.StatusNotFound, "Project not found")
	case errors.Is(err, service.ErrUserContextRequired):
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, service.ErrPermissionDenied):
		respondWithError(w, http.StatusForbidden, "You do not have permission to modify this project")
	case errors.Is(err, service.ErrProjectNotInLegal):
		respondWithError(w, http.StatusConflict, "Project is not in legal review")
	case errors.Is(err, service.ErrLegalReviewComplete):
		respondWithError(w, http.StatusConflict, "Legal review is already resolved")
	case errors.Is(err, service.ErrNotSignedReasonMissing):
		respondWithError(w, http.StatusBadRequest, "A reason is required when the contract is not signed")
	case errors.Is(err, service.ErrProjectNotPendingInfo):
		respondWithError(w, http.StatusConflict, "Project is not awaiting additional information")
	case errors.Is(err, service.ErrProjectNotActive):
		respondWithError(w, http.StatusConflict, "Project cannot be completed in its current status")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(logMsg, zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
