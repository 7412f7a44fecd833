package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/geocon-eng/pipeline-api/internal/service"
)

// validNotificationTypes contains all valid notification type values
var validNotificationTypes = map[string]bool{
	string(domain.NotificationLegalRequest):     true,
	string(domain.NotificationLegalUpdate):      true,
	string(domain.NotificationProjectCreated):   true,
	string(domain.NotificationInfoRequested):    true,
	string(domain.NotificationFollowUpReminder): true,
	string(domain.NotificationInsuranceIssued):  true,
}

// NotificationHandler handles HTTP requests for notifications
type NotificationHandler struct {
	notificationService *service.NotificationService
	logger              *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler instance
func NewNotificationHandler(notificationService *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// List godoc
// @Summary List notifications
// @Description Get paginated list of notifications for the current user
// @Tags Notifications
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param unreadOnly query bool false "Filter to show only unread notifications" default(false)
// @Param type query string false "Filter by notification type" Enums(legal_request, legal_update, project_created, info_requested, follow_up_reminder, insurance_issued)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.NotificationDTO}
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /notifications [get]
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePageParams(r)

	unreadOnly := r.URL.Query().Get("unreadOnly") == "true"
	notificationType := r.URL.Query().Get("type")

	if notificationType != "" && !validNotificationTypes[notificationType] {
		respondWithError(w, http.StatusBadRequest, "Invalid notification type")
		return
	}

	result, err := h.notificationService.GetForCurrentUser(r.Context(), page, pageSize, unreadOnly, notificationType)
	if err != nil {
		h.respondServiceError(w, err, "failed to list notifications")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetUnreadCount godoc
// @Summary Get unread notification count
// @Description Get the count of unread notifications for the current user
// @Tags Notifications
// @Produce json
// @Success 200 {object} domain.UnreadCountDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /notifications/count [get]
func (h *NotificationHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.notificationService.GetUnreadCount(r.Context())
	if err != nil {
		h.respondServiceError(w, err, "failed to get unread count")
		return
	}

	respondJSON(w, http.StatusOK, count)
}

// GetByID godoc
// @Summary Get notification by ID
// @Description Get a single notification by its ID
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID" format(uuid)
// @Success 200 {object} domain.NotificationDTO
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /notifications/{id} [get]
func (h *NotificationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	notification, err := h.notificationService.GetByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "failed to get notification")
		return
	}

	respondJSON(w, http.StatusOK, notification)
}

// MarkAsRead godoc
// @Summary Mark notification as read
// @Description Mark a single notification as read
// @Tags Notifications
// @Param id path string true "Notification ID" format(uuid)
// @Success 204 "No Content"
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	if err := h.notificationService.MarkAsRead(r.Context(), id); err != nil {
		h.respondServiceError(w, err, "failed to mark notification as read")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkAllAsRead godoc
// @Summary Mark all notifications as read
// @Description Mark all notifications for the current user as read
// @Tags Notifications
// @Success 204 "No Content"
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /notifications/read-all [put]
func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notificationService.MarkAllAsReadForUser(r.Context()); err != nil {
		h.respondServiceError(w, err, "failed to mark all notifications as read")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) respondServiceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrUserContextRequired):
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, service.ErrNotificationNotFound):
		respondWithError(w, http.StatusNotFound, "Notification not found")
	case errors.Is(err, service.ErrNotificationNotOwned):
		respondWithError(w, http.StatusForbidden, "You do not have access to this notification")
	default:
		h.logger.Error(logMsg, zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
