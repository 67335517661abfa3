package ledger

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/strata-books/strata-books/internal/platform/httpx"
	"github.com/strata-books/strata-books/internal/shared"
)

const dateLayout = "2006-01-02"

// Handler wires HTTP endpoints for the transaction ledger.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers transaction routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.post)
	r.Get("/", h.list)
	r.Get("/{transactionID}", h.get)
	r.Post("/{transactionID}/void", h.void)
}

type postTransactionRequest struct {
	AccountID       string `json:"account_id" validate:"required,uuid"`
	ContraAccountID string `json:"contra_account_id" validate:"required,uuid"`
	TransactionDate string `json:"transaction_date" validate:"required"`
	Amount          string `json:"amount" validate:"required"`
	Description     string `json:"description" validate:"max=500"`
	ReferenceNumber string `json:"reference_number" validate:"max=100"`
}

type transactionResponse struct {
	ID                string `json:"id"`
	AccountID         string `json:"account_id"`
	AccountName       string `json:"account_name,omitempty"`
	ContraAccountID   string `json:"contra_account_id"`
	ContraAccountName string `json:"contra_account_name,omitempty"`
	TransactionDate   string `json:"transaction_date"`
	Amount            string `json:"amount"`
	Description       string `json:"description,omitempty"`
	ReferenceNumber   string `json:"reference_number,omitempty"`
	IsVoid            bool   `json:"is_void"`
	CreatedAt         string `json:"created_at"`
}

type balancesResponse struct {
	Account       string `json:"account"`
	ContraAccount string `json:"contra_account"`
}

type postTransactionResponse struct {
	Transaction transactionResponse `json:"transaction"`
	NewBalances balancesResponse    `json:"new_balances"`
	Warning     string              `json:"warning,omitempty"`
}

func toTransactionResponse(t Transaction) transactionResponse {
	return transactionResponse{
		ID:                t.ID.String(),
		AccountID:         t.AccountID.String(),
		AccountName:       t.AccountName,
		ContraAccountID:   t.ContraAccountID.String(),
		ContraAccountName: t.ContraAccountName,
		TransactionDate:   t.Date.Format(dateLayout),
		Amount:            t.Amount.String(),
		Description:       t.Description,
		ReferenceNumber:   t.ReferenceNumber,
		IsVoid:            t.IsVoid,
		CreatedAt:         t.CreatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	var req postTransactionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account_id")
		return
	}
	contraID, err := uuid.Parse(req.ContraAccountID)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid contra_account_id")
		return
	}
	date, err := time.Parse(dateLayout, req.TransactionDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "transaction_date must be an ISO date")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "amount must be a decimal string")
		return
	}
	result, err := h.service.Post(r.Context(), PostingInput{
		AccountID:       accountID,
		ContraAccountID: contraID,
		Date:            date,
		Amount:          amount,
		Description:     req.Description,
		ReferenceNumber: req.ReferenceNumber,
	})
	if err != nil {
		h.logger.Warn("post transaction", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, postTransactionResponse{
		Transaction: toTransactionResponse(result.Transaction),
		NewBalances: balancesResponse{
			Account:       result.AccountBalance.String(),
			ContraAccount: result.ContraAccountBalance.String(),
		},
		Warning: result.DuplicateWarning,
	})
}

func (h *Handler) void(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "transactionID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid transaction id")
		return
	}
	result, err := h.service.Void(r.Context(), id)
	if err != nil {
		h.logger.Warn("void transaction", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, postTransactionResponse{
		Transaction: toTransactionResponse(result.Transaction),
		NewBalances: balancesResponse{
			Account:       result.AccountBalance.String(),
			ContraAccount: result.ContraAccountBalance.String(),
		},
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "transactionID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid transaction id")
		return
	}
	txn, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toTransactionResponse(txn))
}

type transactionListResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	Pagination   shared.Pagination     `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter ListFilter
	if raw := q.Get("account_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account_id")
			return
		}
		filter.AccountID = id
	}
	if raw := q.Get("start_date"); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "start_date must be an ISO date")
			return
		}
		filter.StartDate = d
	}
	if raw := q.Get("end_date"); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "end_date must be an ISO date")
			return
		}
		filter.EndDate = d
	}
	if raw := q.Get("is_void"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "is_void must be a boolean")
			return
		}
		filter.IsVoid = &v
	}
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	txns, pg, err := h.service.List(r.Context(), filter, page, perPage)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	resp := transactionListResponse{Transactions: make([]transactionResponse, 0, len(txns)), Pagination: pg}
	for _, t := range txns {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(t))
	}
	httpx.JSON(w, http.StatusOK, resp)
}
