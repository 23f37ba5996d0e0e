package handler

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"loan-portal-service/internal/loan"
	"loan-portal-service/internal/service"
)

// LoanHandler handles HTTP requests for the loan portal API
type LoanHandler struct {
	loanService *service.LoanService
	logger      *zap.Logger
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *service.LoanService, logger *zap.Logger) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
		logger:      logger,
	}
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func successResponse(data interface{}, message string) Response {
	return Response{
		Success: true,
		Data:    data,
		Message: message,
	}
}

func errorResponse(err error, message string) Response {
	return Response{
		Success: false,
		Error:   err.Error(),
		Message: message,
	}
}

// RegisterRoutes registers all loan portal routes
func (h *LoanHandler) RegisterRoutes(router chi.Router) {
	router.Route("/applicants/{userID}", func(r chi.Router) {
		r.Get("/overview", h.GetOverview)
		r.Get("/notifications", h.GetNotifications)
		r.Get("/portfolio", h.GetPortfolio)
	})

	router.Route("/applications", func(r chi.Router) {
		r.Post("/", h.SubmitApplication)
		r.Get("/search", h.SearchApplications)
	})

	router.Post("/calculator/amortization", h.Amortize)
}

// GetOverview returns the reconciled applications, notifications, and
// portfolio statistics for one applicant.
func (h *LoanHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	overview, err := h.loanService.ApplicantOverview(r.Context(), userID)
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to load applicant overview")
		return
	}

	h.respondWithJSON(w, http.StatusOK, successResponse(overview, ""))
}

// GetNotifications returns the derived notification list for one applicant.
func (h *LoanHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	items, err := h.loanService.Notifications(r.Context(), userID)
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to load notifications")
		return
	}

	h.respondWithJSON(w, http.StatusOK, successResponse(items, ""))
}

// GetPortfolio returns the aggregate statistics for one applicant.
func (h *LoanHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	summary, err := h.loanService.Portfolio(r.Context(), userID)
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to load portfolio")
		return
	}

	h.respondWithJSON(w, http.StatusOK, successResponse(summary, ""))
}

// SubmitApplication handles new loan application submissions
func (h *LoanHandler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req service.ApplicationSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	record, err := h.loanService.SubmitApplication(r.Context(), &req)
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to submit application")
		return
	}

	h.respondWithJSON(w, http.StatusCreated, successResponse(record, "Application submitted"))
}

// SearchApplications runs a back-office search over the application index.
func (h *LoanHandler) SearchApplications(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	size := 20
	if raw := r.URL.Query().Get("size"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			size = parsed
		}
	}

	records, err := h.loanService.SearchApplications(r.Context(), query, size)
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to search applications")
		return
	}

	h.respondWithJSON(w, http.StatusOK, successResponse(records, ""))
}

// AmortizationRequest is the calculator input. AnnualRate is a fraction,
// 0.12 for 12% p.a.
type AmortizationRequest struct {
	Principal  float64 `json:"principal"`
	AnnualRate float64 `json:"annual_rate"`
	Months     int     `json:"months"`
}

// AmortizationResponse carries figures rounded for display. Rounding
// happens only here, at the presentation boundary.
type AmortizationResponse struct {
	PeriodicPayment float64 `json:"periodic_payment"`
	TotalInterest   float64 `json:"total_interest"`
	TotalPayable    float64 `json:"total_payable"`
}

// Amortize computes repayment figures for a prospective loan
func (h *LoanHandler) Amortize(w http.ResponseWriter, r *http.Request) {
	var req AmortizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	result, err := h.loanService.Amortize(req.Principal, req.AnnualRate, req.Months)
	if err != nil {
		var invalid *loan.InvalidInputError
		if errors.As(err, &invalid) {
			h.respondWithError(w, http.StatusBadRequest, err, "Invalid amortization input")
			return
		}
		h.respondWithError(w, http.StatusInternalServerError, err, "Failed to compute amortization")
		return
	}

	h.respondWithJSON(w, http.StatusOK, successResponse(AmortizationResponse{
		PeriodicPayment: round2(result.PeriodicPayment),
		TotalInterest:   round2(result.TotalInterest),
		TotalPayable:    round2(result.TotalPayable),
	}, ""))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (h *LoanHandler) respondWithServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		h.respondWithError(w, http.StatusBadRequest, err, message)
	case errors.Is(err, service.ErrUnavailable):
		h.respondWithError(w, http.StatusServiceUnavailable, err, message)
	default:
		h.respondWithError(w, http.StatusInternalServerError, err, message)
	}
}

func (h *LoanHandler) respondWithError(w http.ResponseWriter, status int, err error, message string) {
	h.logger.Warn("Request failed",
		zap.Int("status", status),
		zap.String("message", message),
		zap.Error(err))
	h.respondWithJSON(w, status, errorResponse(err, message))
}

func (h *LoanHandler) respondWithJSON(w http.ResponseWriter, status int, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
