package handlers

import (
	"net/http"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/api/request"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/api/response"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/service"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/validation"
)

// PortfolioHandler handles HTTP requests for the portfolio endpoints.
// refreshService may be nil when no quote provider is configured.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
	refreshService   *service.RefreshService
	exportService    *service.ExportService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(
	portfolioService *service.PortfolioService,
	refreshService *service.RefreshService,
	exportService *service.ExportService,
) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
		refreshService:   refreshService,
		exportService:    exportService,
	}
}

// Portfolio returns every holding with its profit, the total profit and the monthly series.
//
// Endpoint: GET /api/portfolio
// Response: 200 OK with model.PortfolioView
func (h *PortfolioHandler) Portfolio(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.portfolioService.View())
}

// Monthly returns the profit per purchase month, oldest first.
//
// Endpoint: GET /api/portfolio/monthly
// Response: 200 OK with array of model.MonthlyProfitPoint
func (h *PortfolioHandler) Monthly(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.portfolioService.MonthlyProfits())
}

// AddHolding handles POST requests to append a holding to the portfolio.
//
// Endpoint: POST /api/portfolio/holding
// Request Body: CreateHoldingRequest
// Response: 201 Created with model.Holding as stored
// Error: 400 Bad Request if the body cannot be decoded or validation fails
func (h *PortfolioHandler) AddHolding(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateHoldingRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateHolding(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	holding := model.Holding{
		Name:          req.Name,
		PurchasePrice: req.PurchasePrice,
		CurrentPrice:  req.CurrentPrice,
		Amount:        req.Amount,
		TargetPrice:   req.TargetPrice,
	}
	if req.PurchaseDate != "" {
		// already validated
		holding.PurchaseDate, _ = model.ParseDate(req.PurchaseDate)
	}

	response.RespondJSON(w, http.StatusCreated, h.portfolioService.Add(holding))
}

// Refresh runs one price refresh synchronously.
//
// Endpoint: POST /api/portfolio/refresh
// Response: 200 OK with model.RefreshResult
// Error: 503 Service Unavailable if no quote provider is configured
func (h *PortfolioHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.refreshService == nil {
		response.RespondError(w, http.StatusServiceUnavailable, "price refresh is not configured", "")
		return
	}

	response.RespondJSON(w, http.StatusOK, h.refreshService.Tick(r.Context()))
}

// ExportResponse is returned after a successful PDF export.
type ExportResponse struct {
	Path string `json:"path"`
}

// Export writes the current portfolio view to a PDF file.
//
// Endpoint: POST /api/portfolio/export
// Response: 200 OK with ExportResponse
// Error: 500 Internal Server Error if the document could not be written
func (h *PortfolioHandler) Export(w http.ResponseWriter, _ *http.Request) {
	path, err := h.exportService.ExportPDF()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to export portfolio", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, ExportResponse{Path: path})
}
