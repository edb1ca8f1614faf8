package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/api/response"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/service"
)

// AlertHandler serves the history of target-reached notifications.
type AlertHandler struct {
	alertService *service.AlertService
}

// NewAlertHandler creates a new AlertHandler with the provided service dependency.
func NewAlertHandler(alertService *service.AlertService) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
	}
}

// Alerts handles GET requests for the most recent alerts, newest first.
//
// Endpoint: GET /api/alerts?limit=N
// Response: 200 OK with array of model.TargetReached
// Error: 400 Bad Request if limit is not a positive integer
// Error: 500 Internal Server Error if retrieval fails
func (h *AlertHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidLimit.Error(), raw)
			return
		}
		limit = n
	}

	alerts, err := h.alertService.GetRecentAlerts(limit)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAlerts.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, alerts)
}

// GetAlert handles GET requests for a single alert.
//
// Endpoint: GET /api/alerts/{uuid}
// Response: 200 OK with model.TargetReached
// Error: 400 Bad Request if the ID is invalid (validated by middleware)
// Error: 404 Not Found if the alert does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *AlertHandler) GetAlert(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "uuid")

	alert, err := h.alertService.GetAlert(alertID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlertNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAlertNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAlert.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, alert)
}
