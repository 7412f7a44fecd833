package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/geocon-eng/pipeline-api/internal/auth"
	"github.com/geocon-eng/pipeline-api/internal/service"
)

// AuditConfig holds configuration for audit middleware
type AuditConfig struct {
	// SkipPaths contains paths that should not be audited
	SkipPaths []string
	// SkipMethods contains HTTP methods that should not be audited
	SkipMethods []string
}

// DefaultAuditConfig returns default audit configuration
func DefaultAuditConfig() *AuditConfig {
	return &AuditConfig{
		SkipPaths: []string{
			"/health",
			"/health/db",
			"/health/ready",
			"/swagger",
			"/api/v1/auth/login",
		},
		SkipMethods: []string{
			http.MethodOptions,
			http.MethodHead,
			http.MethodGet,
		},
	}
}

// AuditMiddleware records successful write requests in the activity log.
// Service-level actions (proposal_won, legal_status_updated, ...) carry the
// domain detail; this layer catches everything else.
type AuditMiddleware struct {
	auditService *service.AuditService
	config       *AuditConfig
	logger       *zap.Logger
}

// NewAuditMiddleware creates a new audit middleware
func NewAuditMiddleware(auditService *service.AuditService, config *AuditConfig, logger *zap.Logger) *AuditMiddleware {
	if config == nil {
		config = DefaultAuditConfig()
	}
	return &AuditMiddleware{
		auditService: auditService,
		config:       config,
		logger:       logger,
	}
}

// Audit returns middleware that logs modifications to the activity log
func (m *AuditMiddleware) Audit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.shouldAudit(r) {
			next.ServeHTTP(w, r)
			return
		}

		var requestBody []byte
		if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
			requestBody, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		rw := &responseCapture{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		// Only log successful modifications
		if rw.statusCode < 200 || rw.statusCode >= 300 {
			return
		}

		m.logRequest(r, requestBody)
	})
}

// shouldAudit determines if a request should be audited
func (m *AuditMiddleware) shouldAudit(r *http.Request) bool {
	for _, method := range m.config.SkipMethods {
		if r.Method == method {
			return false
		}
	}

	path := r.URL.Path
	for _, skipPath := range m.config.SkipPaths {
		if strings.HasPrefix(path, skipPath) {
			return false
		}
	}

	return true
}

// logRequest writes one activity log row for the request
func (m *AuditMiddleware) logRequest(r *http.Request, requestBody []byte) {
	if m.auditService == nil {
		return
	}

	actor := ""
	if userCtx, ok := auth.FromContext(r.Context()); ok {
		actor = userCtx.Email
	}

	entityType, entityNumber := m.extractEntityInfo(r)

	details := ""
	if len(requestBody) > 0 {
		var parsed map[string]interface{}
		if json.Unmarshal(requestBody, &parsed) == nil {
			delete(parsed, "password")
			delete(parsed, "secret")
			delete(parsed, "token")
			if sanitized, err := json.Marshal(parsed); err == nil {
				details = string(sanitized)
			}
		}
	}

	action := strings.ToLower(r.Method) + " " + r.URL.Path
	m.auditService.RecordActivity(r.Context(), action, entityType, entityNumber, actor, details)
}

// extractEntityInfo maps the request path onto an entity type and number
func (m *AuditMiddleware) extractEntityInfo(r *http.Request) (string, string) {
	entityNumber := ""
	path := r.URL.Path
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if number := routeCtx.URLParam("number"); number != "" {
			entityNumber = number
		}
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			path = pattern
		}
	}

	entityMap := map[string]string{
		"proposals":        "proposal",
		"projects":         "project",
		"contracts":        "executed_contract",
		"insurance":        "insurance_request",
		"sub-requests":     "sub_request",
		"pw-dir-questions": "pw_dir_question",
		"files":            "file",
		"users":            "user",
		"notifications":    "notification",
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	for _, part := range parts {
		if entityType, ok := entityMap[part]; ok {
			return entityType, entityNumber
		}
	}

	return "", entityNumber
}

// responseCapture wraps ResponseWriter to capture the status code
type responseCapture struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseCapture) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
