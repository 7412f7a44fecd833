package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/geocon-eng/pipeline-api/internal/repository"
	"github.com/geocon-eng/pipeline-api/internal/service"
)

// ProposalHandler handles HTTP requests for proposals
type ProposalHandler struct {
	proposalService *service.ProposalService
	logger          *zap.Logger
}

// NewProposalHandler creates a new ProposalHandler instance
func NewProposalHandler(proposalService *service.ProposalService, logger *zap.Logger) *ProposalHandler {
	return &ProposalHandler{
		proposalService: proposalService,
		logger:          logger,
	}
}

// Create godoc
// @Summary Create a proposal
// @Description Create a new fee proposal and assign its proposal number
// @Tags Proposals
// @Accept json
// @Produce json
// @Param proposal body domain.CreateProposalRequest true "Proposal data"
// @Success 201 {object} domain.ProposalDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /proposals [post]
func (h *ProposalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.proposalService.Create(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, err, "failed to create proposal")
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

// List godoc
// @Summary List proposals
// @Description Get a paginated list of proposals with optional filters
// @Tags Proposals
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(pending, lost, converted_to_project)
// @Param office query string false "Filter by office code"
// @Param projectManager query string false "Filter by project manager"
// @Param clientName query string false "Filter by client name"
// @Param search query string false "Search proposal number, project name or client"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ProposalDTO}
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /proposals [get]
func (h *ProposalHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePageParams(r)

	filter := repository.ProposalFilter{
		Status:         domain.ProposalStatus(r.URL.Query().Get("status")),
		Office:         domain.OfficeCode(r.URL.Query().Get("office")),
		ProjectManager: r.URL.Query().Get("projectManager"),
		ClientName:     r.URL.Query().Get("clientName"),
		CreatedBy:      r.URL.Query().Get("createdBy"),
		Search:         r.URL.Query().Get("search"),
	}

	if filter.Status != "" && !filter.Status.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}
	if filter.Office != "" && !filter.Office.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid office filter")
		return
	}

	result, err := h.proposalService.List(r.Context(), filter, page, pageSize)
	if err != nil {
		h.respondServiceError(w, err, "failed to list proposals")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Get godoc
// @Summary Get a proposal
// @Description Get a single proposal by ID
// @Tags Proposals
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {object} domain.ProposalDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /proposals/{id} [get]
func (h *ProposalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	dto, err := h.proposalService.GetByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "failed to get proposal")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// GetByNumber godoc
// @Summary Get a proposal by number
// @Description Get a single proposal by its proposal number
// @Tags Proposals
// @Produce json
// @Param number path string true "Proposal number"
// @Success 200 {object} domain.ProposalDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /proposals/number/{number} [get]
func (h *ProposalHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	if number == "" {
		respondWithError(w, http.StatusBadRequest, "Proposal number is required")
		return
	}

	dto, err := h.proposalService.GetByNumber(r.Context(), number)
	if err != nil {
		h.respondServiceError(w, err, "failed to get proposal")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// Update godoc
// @Summary Update a proposal
// @Description Update editable fields on a pending proposal
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param proposal body domain.UpdateProposalRequest true "Fields to update"
// @Success 200 {object} domain.ProposalDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /proposals/{id} [put]
func (h *ProposalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.proposalService.Update(r.Context(), id, &req)
	if err != nil {
		h.respondServiceError(w, err, "failed to update proposal")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// MarkSent godoc
// @Summary Mark a proposal as sent
// @Description Record that the proposal document went out to the client
// @Tags Proposals
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {object} domain.ProposalDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /proposals/{id}/sent [post]
func (h *ProposalHandler) MarkSent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	dto, err := h.proposalService.MarkSent(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "failed to mark proposal sent")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// MarkLost godoc
// @Summary Mark a proposal as lost
// @Description Close a pending proposal as lost with a reason
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param body body domain.MarkLostRequest true "Loss reason"
// @Success 200 {object} domain.ProposalDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /proposals/{id}/lost [post]
func (h *ProposalHandler) MarkLost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req domain.MarkLostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.proposalService.MarkLost(r.Context(), id, &req)
	if err != nil {
		h.respondServiceError(w, err, "failed to mark proposal lost")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// MarkWon godoc
// @Summary Mark a proposal as won
// @Description Convert a pending proposal into a project. Assigns the project
// @Description number and routes the project into legal review when needed.
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param body body domain.MarkWonRequest true "Win details"
// @Success 201 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /proposals/{id}/won [post]
func (h *ProposalHandler) MarkWon(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req domain.MarkWonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.proposalService.MarkWon(r.Context(), id, &req)
	if err != nil {
		h.respondServiceError(w, err, "failed to mark proposal won")
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

// Delete godoc
// @Summary Delete a proposal
// @Description Delete a proposal. Refused while an associated project exists.
// @Tags Proposals
// @Accept json
// @Param id path string true "Proposal ID"
// @Param body body domain.DeleteRequest false "Deletion note"
// @Success 204 "No Content"
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /proposals/{id} [delete]
func (h *ProposalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req domain.DeleteRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.proposalService.Delete(r.Context(), id, &req); err != nil {
		h.respondServiceError(w, err, "failed to delete proposal")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func (h *ProposalHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid proposal ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *ProposalHandler) respondServiceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrProposalNotFound):
		respondWithError(w, http.StatusNotFound, "Proposal not found")
	case errors.Is(err, service.ErrUserContextRequired):
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, service.ErrPermissionDenied), errors.Is(err, service.ErrProposalEditForbidden):
		respondWithError(w, http.StatusForbidden, "You do not have permission to modify this proposal")
	case errors.Is(err, service.ErrProposalNotPending):
		respondWithError(w, http.StatusConflict, "Proposal is no longer pending")
	case errors.Is(err, service.ErrProposalAlreadyLost):
		respondWithError(w, http.StatusConflict, "Proposal is already marked lost")
	case errors.Is(err, service.ErrProposalAlreadyConverted):
		respondWithError(w, http.StatusConflict, "Proposal has already been converted to a project")
	case errors.Is(err, service.ErrProjectExistsForProposal):
		respondWithError(w, http.StatusConflict, "Delete the associated project before deleting this proposal")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(logMsg, zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// parsePageParams reads page and pageSize query parameters with defaults
func parsePageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}

	return page, pageSize
}
