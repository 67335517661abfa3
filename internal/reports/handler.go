package reports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/strata-books/strata-books/internal/platform/httpx"
)

const dateLayout = "2006-01-02"

// Handler wires HTTP endpoints for reports.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	exporter *Exporter
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, exporter *Exporter) *Handler {
	return &Handler{logger: logger, service: service, exporter: exporter}
}

// MountRoutes registers report routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/balance", h.balance)
	r.Get("/balance/export", h.balanceExport)
	r.Get("/profit-loss", h.profitLoss)
}

func (h *Handler) balanceReport(r *http.Request) (BalanceReport, bool, string) {
	var asOf time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return BalanceReport{}, false, "date must be an ISO date"
		}
		asOf = parsed
	}
	report, err := h.service.Balance(r.Context(), asOf)
	if err != nil {
		h.logger.Error("balance report", slog.Any("error", err))
		return BalanceReport{}, false, ""
	}
	return report, true, ""
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	report, ok, detail := h.balanceReport(r)
	if !ok {
		if detail != "" {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", detail)
			return
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) balanceExport(w http.ResponseWriter, r *http.Request) {
	report, ok, detail := h.balanceReport(r)
	if !ok {
		if detail != "" {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", detail)
			return
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="balance-`+report.AsOf+`.csv"`)
	if err := h.exporter.WriteBalanceCSV(w, report); err != nil {
		h.logger.Error("export balance report", slog.Any("error", err))
	}
}

func (h *Handler) profitLoss(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := time.Parse(dateLayout, q.Get("start_date"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "start_date must be an ISO date")
		return
	}
	end, err := time.Parse(dateLayout, q.Get("end_date"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "end_date must be an ISO date")
		return
	}
	report, err := h.service.ProfitLoss(r.Context(), start, end)
	if err != nil {
		h.logger.Warn("profit loss report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
