package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/transferdesk/internal/export"
)

// GetSummary возвращает сводку денежного потока и прибыли за период.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	summary, err := h.service.GetSummary(r.Context(), window)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.writeJSON(w, newSummaryResponse(*summary))
}

// GetMonthlyRollups возвращает помесячные итоги за год.
func (h *Handler) GetMonthlyRollups(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		year = time.Now().Year()
	}

	rollups, err := h.service.GetMonthlyRollups(r.Context(), year)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	resp := make([]rollupResponse, 0, len(rollups))
	for _, ru := range rollups {
		resp = append(resp, newRollupResponse(ru))
	}

	h.writeJSON(w, resp)
}

// ExportMonthlyRollupsCSV отдаёт помесячные итоги за год в формате CSV.
func (h *Handler) ExportMonthlyRollupsCSV(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		year = time.Now().Year()
	}

	rollups, err := h.service.GetMonthlyRollups(r.Context(), year)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="monthly.csv"`)
	if err := export.WriteRollupsCSV(w, rollups, h.settings); err != nil {
		h.logger.Error("write rollups csv", zap.Error(err))
	}
}

// GetDriverReport возвращает отчёт водителя за период.
func (h *Handler) GetDriverReport(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	report, err := h.service.GetDriverReport(r.Context(), chi.URLParam(r, "id"), window)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.writeJSON(w, newDriverReportResponse(*report))
}

// GetSupplierStatement возвращает выписку по подрядчику.
func (h *Handler) GetSupplierStatement(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	st, err := h.service.GetSupplierStatement(r.Context(), chi.URLParam(r, "id"), window)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.writeJSON(w, newStatementResponse(*st))
}

// ExportSupplierStatementCSV отдаёт выписку по подрядчику в формате CSV.
func (h *Handler) ExportSupplierStatementCSV(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	st, err := h.service.GetSupplierStatement(r.Context(), chi.URLParam(r, "id"), window)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="statement.csv"`)
	if err := export.WriteStatementCSV(w, *st, h.settings); err != nil {
		h.logger.Error("write statement csv", zap.Error(err))
	}
}

// PrintSupplierStatement отдаёт печатную форму выписки по подрядчику.
func (h *Handler) PrintSupplierStatement(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	st, err := h.service.GetSupplierStatement(r.Context(), chi.URLParam(r, "id"), window)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := export.RenderStatementText(w, *st, h.settings); err != nil {
		h.logger.Error("render statement", zap.Error(err))
	}
}

// GetSupplierNetBalance возвращает чистый баланс взаиморасчётов с подрядчиком.
func (h *Handler) GetSupplierNetBalance(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	nb, err := h.service.GetSupplierNetBalance(r.Context(), chi.URLParam(r, "id"), window)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.writeJSON(w, newNetBalanceResponse(*nb))
}
