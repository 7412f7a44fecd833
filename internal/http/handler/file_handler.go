package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/geocon-eng/pipeline-api/internal/service"
)

// FileHandler handles document uploads and downloads
type FileHandler struct {
	fileService *service.FileService
	maxUploadMB int64
	logger      *zap.Logger
}

// NewFileHandler creates a new FileHandler instance
func NewFileHandler(fileService *service.FileService, maxUploadMB int64, logger *zap.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		maxUploadMB: maxUploadMB,
		logger:      logger,
	}
}

// UploadToProposal godoc
// @Summary Upload a file to a proposal
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param number path string true "Proposal number"
// @Param file formData file true "File to upload"
// @Success 201 {object} domain.FileDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /proposals/number/{number}/files [post]
func (h *FileHandler) UploadToProposal(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	file, header, ok := h.parseUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	dto, err := h.fileService.UploadToProposal(r.Context(), number, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.respondServiceError(w, err, "failed to upload file")
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

// UploadToProject godoc
// @Summary Upload a file to a project
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param number path string true "Project number"
// @Param file formData file true "File to upload"
// @Success 201 {object} domain.FileDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /projects/number/{number}/files [post]
func (h *FileHandler) UploadToProject(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	file, header, ok := h.parseUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	dto, err := h.fileService.UploadToProject(r.Context(), number, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.respondServiceError(w, err, "failed to upload file")
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

// ListByEntity godoc
// @Summary List files for an entity
// @Tags Files
// @Produce json
// @Param entityType query string true "Entity type" Enums(proposal, project)
// @Param entityNumber query string true "Proposal or project number"
// @Success 200 {array} domain.FileDTO
// @Security BearerAuth
// @Router /files [get]
func (h *FileHandler) ListByEntity(w http.ResponseWriter, r *http.Request) {
	entityType := r.URL.Query().Get("entityType")
	entityNumber := r.URL.Query().Get("entityNumber")
	if entityType == "" || entityNumber == "" {
		respondWithError(w, http.StatusBadRequest, "entityType and entityNumber are required")
		return
	}

	dtos, err := h.fileService.ListByEntity(r.Context(), entityType, entityNumber)
	if err != nil {
		h.respondServiceError(w, err, "failed to list files")
		return
	}

	respondJSON(w, http.StatusOK, dtos)
}

// GetByID godoc
// @Summary Get file metadata
// @Tags Files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} domain.FileDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /files/{id} [get]
func (h *FileHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	dto, err := h.fileService.GetByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "failed to get file")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// Download godoc
// @Summary Download a file
// @Tags Files
// @Produce application/octet-stream
// @Param id path string true "File ID"
// @Success 200
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /files/{id}/download [get]
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	reader, filename, contentType, err := h.fileService.Download(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "failed to download file")
		return
	}
	defer reader.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	w.Header().Set("Content-Type", contentType)

	_, _ = io.Copy(w, reader)
}

// Delete godoc
// @Summary Delete a file
// @Tags Files
// @Param id path string true "File ID"
// @Success 204 "No Content"
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /files/{id} [delete]
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.fileService.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, err, "failed to delete file")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *FileHandler) parseUpload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(h.maxUploadMB * 1024 * 1024); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", h.maxUploadMB))
		return nil, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file field is required")
		return nil, nil, false
	}

	return file, header, true
}

func (h *FileHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *FileHandler) respondServiceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrFileNotFound):
		respondWithError(w, http.StatusNotFound, "File not found")
	case errors.Is(err, service.ErrProposalNotFound):
		respondWithError(w, http.StatusNotFound, "Proposal not found")
	case errors.Is(err, service.ErrProjectNotFound):
		respondWithError(w, http.StatusNotFound, "Project not found")
	case errors.Is(err, service.ErrUserContextRequired):
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
	default:
		h.logger.Error(logMsg, zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
