package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/internal/timeutil"
	"fleet-backend/pkg/utils"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: service}
}

// MonthlyRentalAnalytics handles GET /api/dashboard/monthly-rental-analytics?year=
// The year defaults to the current one.
func (h *ReportHandler) MonthlyRentalAnalytics(w http.ResponseWriter, r *http.Request) {
	year := timeutil.Now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 2000 || y > 2100 {
			utils.WriteError(w, apperrors.FieldValidation(map[string]string{"year": "must be a four digit year"}))
			return
		}
		year = y
	}

	rows, err := h.Service.MonthlyAnalytics(r.Context(), year)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{"year": year, "months": rows})
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Dashboard(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}

func (h *ReportHandler) profitLoss(w http.ResponseWriter, r *http.Request) (*models.ProfitLossReport, bool) {
	from, to, err := dateRange(r)
	if err != nil {
		utils.WriteError(w, err)
		return nil, false
	}
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	report, err := h.Service.ProfitLoss(ctx, from, to)
	if err != nil {
		utils.WriteError(w, err)
		return nil, false
	}
	return report, true
}

// ProfitLoss handles GET /api/reports/profit-loss?from=&to=
func (h *ReportHandler) ProfitLoss(w http.ResponseWriter, r *http.Request) {
	report, ok := h.profitLoss(w, r)
	if !ok {
		return
	}
	utils.JSON(w, http.StatusOK, report)
}

func (h *ReportHandler) ProfitLossCSV(w http.ResponseWriter, r *http.Request) {
	report, ok := h.profitLoss(w, r)
	if !ok {
		return
	}
	data, err := h.Service.ProfitLossCSV(report)
	if err != nil {
		utils.WriteError(w, fmt.Errorf("failed to generate CSV: %w", err))
		return
	}
	filename := fmt.Sprintf("profit_loss_%s.csv", timeutil.Now().Format("2006-01-02"))
	attachment(w, "text/csv", filename, data)
}

func (h *ReportHandler) ProfitLossPDF(w http.ResponseWriter, r *http.Request) {
	report, ok := h.profitLoss(w, r)
	if !ok {
		return
	}
	data, err := h.Service.ProfitLossPDF(report)
	if err != nil {
		utils.WriteError(w, fmt.Errorf("failed to generate PDF: %w", err))
		return
	}
	filename := fmt.Sprintf("profit_loss_%s.pdf", timeutil.Now().Format("2006-01-02"))
	attachment(w, "application/pdf", filename, data)
}

// BillsSummary handles GET /api/reports/bills-summary?from=&to=
func (h *ReportHandler) BillsSummary(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	summary, err := h.Service.BillSummary(r.Context(), from, to)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}
