package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/geocon-eng/pipeline-api/internal/erp"
)

// ClientHandler serves client directory lookups against the corporate
// accounting system. All endpoints return 503 when the ERP connection
// is disabled.
type ClientHandler struct {
	erpClient *erp.Client
	logger    *zap.Logger
}

func NewClientHandler(erpClient *erp.Client, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		erpClient: erpClient,
		logger:    logger,
	}
}

// Search godoc
// @Summary Search the client directory
// @Description Searches the accounting system's client directory by name
// @Tags clients
// @Produce json
// @Param search query string true "Name fragment to search for"
// @Success 200 {array} erp.ClientRecord
// @Failure 400 {object} domain.APIError
// @Failure 503 {object} domain.APIError
// @Security BearerAuth
// @Router /clients [get]
func (h *ClientHandler) Search(w http.ResponseWriter, r *http.Request) {
	if !h.erpClient.IsEnabled() {
		respondWithError(w, http.StatusServiceUnavailable, "Client directory is not available")
		return
	}

	search := strings.TrimSpace(r.URL.Query().Get("search"))
	if len(search) < 2 {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'search' must be at least 2 characters")
		return
	}

	records, err := h.erpClient.SearchClients(r.Context(), search)
	if err != nil {
		h.logger.Error("client directory search failed", zap.Error(err))
		respondWithError(w, http.StatusBadGateway, "Client directory lookup failed")
		return
	}
	if records == nil {
		records = []erp.ClientRecord{}
	}

	respondJSON(w, http.StatusOK, records)
}

// GetByNumber godoc
// @Summary Get a directory client by accounting number
// @Tags clients
// @Produce json
// @Param number path string true "Client number"
// @Success 200 {object} erp.ClientRecord
// @Failure 404 {object} domain.APIError
// @Failure 503 {object} domain.APIError
// @Security BearerAuth
// @Router /clients/{number} [get]
func (h *ClientHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	if !h.erpClient.IsEnabled() {
		respondWithError(w, http.StatusServiceUnavailable, "Client directory is not available")
		return
	}

	number := chi.URLParam(r, "number")

	record, err := h.erpClient.GetClientByNumber(r.Context(), number)
	if err != nil {
		h.logger.Error("client directory lookup failed",
			zap.String("number", number),
			zap.Error(err))
		respondWithError(w, http.StatusBadGateway, "Client directory lookup failed")
		return
	}
	if record == nil {
		respondWithError(w, http.StatusNotFound, "Client not found")
		return
	}

	respondJSON(w, http.StatusOK, record)
}
