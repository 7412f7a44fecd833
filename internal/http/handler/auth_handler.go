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

// AuthHandler handles login and user administration
type AuthHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(userService *service.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		logger:      logger,
	}
}

// Login godoc
// @Summary Log in
// @Description Provision the user on first sign-in and return a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body domain.LoginRequest true "Login data"
// @Success 200 {object} domain.LoginResponse
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailDomainNotAllowed) {
			respondWithError(w, http.StatusForbidden, "Email domain is not allowed")
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Me godoc
// @Summary Get current authenticated user
// @Description Returns the profile of the authenticated user
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.UserDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	dto, err := h.userService.GetCurrent(r.Context())
	if err != nil {
		h.respondServiceError(w, err, "failed to get current user")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// ListUsers godoc
// @Summary List users
// @Description Returns all users. Admin only.
// @Tags Users
// @Produce json
// @Success 200 {array} domain.UserDTO
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Router /users [get]
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	dtos, err := h.userService.List(r.Context())
	if err != nil {
		h.respondServiceError(w, err, "failed to list users")
		return
	}

	respondJSON(w, http.StatusOK, dtos)
}

// UpdateUserRole godoc
// @Summary Update a user's role
// @Description Change a user's role and team number. Admin only.
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param body body domain.UpdateUserRoleRequest true "New role"
// @Success 200 {object} domain.UserDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /users/{id}/role [put]
func (h *AuthHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req domain.UpdateUserRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.userService.UpdateRole(r.Context(), id, &req)
	if err != nil {
		h.respondServiceError(w, err, "failed to update user role")
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

func (h *AuthHandler) respondServiceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrUserContextRequired):
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, service.ErrPermissionDenied):
		respondWithError(w, http.StatusForbidden, "Admin access required")
	case errors.Is(err, service.ErrUserNotFound):
		respondWithError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(logMsg, zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
