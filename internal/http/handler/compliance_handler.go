package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/geocon-eng/pipeline-api/internal/service"
)

// fileContractRequest is the body for filing an executed contract
type fileContractRequest struct {
	FileID *uuid.UUID `json:"fileId,omitempty"`
	Notes  string     `json:"notes,omitempty" validate:"max=2000"`
}

// issueInsuranceRequest is the body for issuing a certificate of insurance
type issueInsuranceRequest struct {
	Holder string     `json:"holder,omitempty" validate:"max=255"`
	FileID *uuid.UUID `json:"fileId,omitempty"`
	Notes  string     `json:"notes,omitempty" validate:"max=2000"`
}

// ComplianceHandler handles contract filing, insurance certificates,
// subcontractor requests and prevailing wage questions
type ComplianceHandler struct {
	complianceService *service.ComplianceService
	logger            *zap.Logger
}

// NewComplianceHandler creates a new ComplianceHandler instance
func NewComplianceHandler(complianceService *service.ComplianceService, logger *zap.Logger) *ComplianceHandler {
	return &ComplianceHandler{
		complianceService: complianceService,
		logger:            logger,
	}
}

// ListContracts godoc
// @Summary List executed contracts
// @Description Get executed contract records, optionally filtered by status
// @Tags Compliance
// @Produce json
// @Param status query string false "Filter by status" Enums(unfiled, filed)
// @Success 200 {array} domain.ExecutedContractDTO
// @Security BearerAuth
// @Router /contracts [get]
func (h *ComplianceHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	status := domain.ContractDeptStatus(r.URL.Query().Get("status"))

	dtos, err := h.complianceService.ListContracts(r.Context(), status)
	if err != nil {
		h.respondServiceError(w, err, "failed to list contracts")
		return
	}

	respondJSON(w, http.StatusOK, dtos)
}

// FileContract godoc
// @Summary File an executed contract
// @Description Mark an executed contract as filed, optionally linking the document
// @Tags Compliance
// @Accept json
// @Produce json
// @Param id path string true "Contract record ID"
// @Param body body fileContractRequest false "Filing details"
// @Success 200 {object} domain.ExecutedContractDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /contracts/{id}/file [post]
func (h *ComplianceHandler) FileContract(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req fileContractRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	dto, err := h.complianceService.FileContract(r.Context(), id, req.FileID, req.Notes)
	if err != nil {
		h.respondServiceError(w, err, "failed to file contract")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// ListInsurance godoc
// @Summary List insurance requests
// @Description Get certificate of insurance requests, optionally filtered by status
// @Tags Compliance
// @Produce json
// @Param status query string false "Filter by status" Enums(new_request, issued)
// @Success 200 {array} domain.InsuranceRequestDTO
// @Security BearerAuth
// @Router /insurance [get]
func (h *ComplianceHandler) ListInsurance(w http.ResponseWriter, r *http.Request) {
	status := domain.InsuranceDeptStatus(r.URL.Query().Get("status"))

	dtos, err := h.complianceService.ListInsuranceRequests(r.Context(), status)
	if err != nil {
		h.respondServiceError(w, err, "failed to list insurance requests")
		return
	}

	respondJSON(w, http.StatusOK, dtos)
}

// IssueInsurance godoc
// @Summary Issue a certificate of insurance
// @Description Mark an insurance request as issued and notify the project manager
// @Tags Compliance
// @Accept json
// @Produce json
// @Param id path string true "Insurance request ID"
// @Param body body issueInsuranceRequest false "Issue details"
// @Success 200 {object} domain.InsuranceRequestDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /insurance/{id}/issue [post]
func (h *ComplianceHandler) IssueInsurance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req issueInsuranceRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	dto, err := h.complianceService.IssueInsurance(r.Context(), id, req.Holder, req.FileID, req.Notes)
	if err != nil {
		h.respondServiceError(w, err, "failed to issue insurance")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// CreateSubRequest godoc
// @Summary Create a subcontractor request
// @Description Open a subcontractor agreement request
// @Tags Compliance
// @Accept json
// @Produce json
// @Param body body domain.CreateSubRequestRequest true "Request data"
// @Success 201 {object} domain.SubRequestDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /sub-requests [post]
func (h *ComplianceHandler) CreateSubRequest(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSubRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.complianceService.CreateSubRequest(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, err, "failed to create sub request")
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

// UpdateSubRequest godoc
// @Summary Update a subcontractor request
// @Description Update status or notes on a subcontractor request
// @Tags Compliance
// @Accept json
// @Produce json
// @Param id path string true "Sub request ID"
// @Param body body domain.UpdateSubRequestRequest true "Fields to update"
// @Success 200 {object} domain.SubRequestDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /sub-requests/{id} [put]
func (h *ComplianceHandler) UpdateSubRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateSubRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.complianceService.UpdateSubRequest(r.Context(), id, &req)
	if err != nil {
		h.respondServiceError(w, err, "failed to update sub request")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// ListSubRequests godoc
// @Summary List subcontractor requests
// @Description Get subcontractor requests, optionally filtered by status
// @Tags Compliance
// @Produce json
// @Param status query string false "Filter by department status"
// @Success 200 {array} domain.SubRequestDTO
// @Security BearerAuth
// @Router /sub-requests [get]
func (h *ComplianceHandler) ListSubRequests(w http.ResponseWriter, r *http.Request) {
	dtos, err := h.complianceService.ListSubRequests(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.respondServiceError(w, err, "failed to list sub requests")
		return
	}

	respondJSON(w, http.StatusOK, dtos)
}

// CreatePWDirQuestion godoc
// @Summary Create a prevailing wage question
// @Description Open a prevailing wage / DIR registration question
// @Tags Compliance
// @Accept json
// @Produce json
// @Param body body domain.CreatePWDirQuestionRequest true "Question data"
// @Success 201 {object} domain.PWDirQuestionDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /pw-dir-questions [post]
func (h *ComplianceHandler) CreatePWDirQuestion(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePWDirQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.complianceService.CreatePWDirQuestion(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, err, "failed to create question")
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

// UpdatePWDirQuestion godoc
// @Summary Answer a prevailing wage question
// @Description Record the answer to a prevailing wage / DIR question
// @Tags Compliance
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param body body domain.UpdatePWDirQuestionRequest true "Answer"
// @Success 200 {object} domain.PWDirQuestionDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /pw-dir-questions/{id} [put]
func (h *ComplianceHandler) UpdatePWDirQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req domain.UpdatePWDirQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.complianceService.UpdatePWDirQuestion(r.Context(), id, &req)
	if err != nil {
		h.respondServiceError(w, err, "failed to update question")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// ListPWDirQuestions godoc
// @Summary List prevailing wage questions
// @Description Get prevailing wage / DIR questions, optionally filtered by status
// @Tags Compliance
// @Produce json
// @Param status query string false "Filter by department status" Enums(incomplete, complete)
// @Success 200 {array} domain.PWDirQuestionDTO
// @Security BearerAuth
// @Router /pw-dir-questions [get]
func (h *ComplianceHandler) ListPWDirQuestions(w http.ResponseWriter, r *http.Request) {
	dtos, err := h.complianceService.ListPWDirQuestions(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.respondServiceError(w, err, "failed to list questions")
		return
	}

	respondJSON(w, http.StatusOK, dtos)
}

func (h *ComplianceHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *ComplianceHandler) respondServiceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrContractNotFound):
		respondWithError(w, http.StatusNotFound, "Contract record not found")
	case errors.Is(err, service.ErrInsuranceNotFound):
		respondWithError(w, http.StatusNotFound, "Insurance request not found")
	case errors.Is(err, service.ErrSubRequestNotFound):
		respondWithError(w, http.StatusNotFound, "Sub request not found")
	case errors.Is(err, service.ErrPWDirQuestionNotFound):
		respondWithError(w, http.StatusNotFound, "Question not found")
	case errors.Is(err, service.ErrContractAlreadyFiled):
		respondWithError(w, http.StatusConflict, "Contract is already filed")
	case errors.Is(err, service.ErrInsuranceAlreadyIssued):
		respondWithError(w, http.StatusConflict, "Certificate is already issued")
	case errors.Is(err, service.ErrUserContextRequired):
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(logMsg, zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
