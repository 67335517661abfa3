package history

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/strata-books/strata-books/internal/platform/httpx"
)

const dateLayout = "2006-01-02"

// Handler wires HTTP endpoints for balance history.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers history routes. Mounted under /accounts/{accountID}.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{accountID}/history", h.list)
}

type snapshotResponse struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id"`
	BalanceDate string `json:"balance_date"`
	Balance     string `json:"balance"`
	CreatedAt   string `json:"created_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id")
		return
	}
	q := r.URL.Query()
	var start, end time.Time
	if raw := q.Get("start_date"); raw != "" {
		if start, err = time.Parse(dateLayout, raw); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "start_date must be an ISO date")
			return
		}
	}
	if raw := q.Get("end_date"); raw != "" {
		if end, err = time.Parse(dateLayout, raw); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "end_date must be an ISO date")
			return
		}
	}
	snapshots, err := h.service.List(r.Context(), accountID, start, end)
	if err != nil {
		h.logger.Error("list balance history", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]snapshotResponse, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, snapshotResponse{
			ID:          s.ID.String(),
			AccountID:   s.AccountID.String(),
			BalanceDate: s.Date.Format(dateLayout),
			Balance:     s.Balance.String(),
			CreatedAt:   s.CreatedAt.Format(time.RFC3339),
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}
