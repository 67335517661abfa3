package accounts

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

// Handler wires HTTP endpoints for account management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers account routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{accountID}", h.get)
	r.Put("/{accountID}", h.update)
}

type createAccountRequest struct {
	Name           string `json:"name" validate:"required,max=255"`
	Type           string `json:"type" validate:"required,oneof=ASSET LIABILITY INCOME EXPENSE"`
	Description    string `json:"description" validate:"max=500"`
	OpeningBalance string `json:"opening_balance" validate:"required"`
}

type updateAccountRequest struct {
	Name        string `json:"name" validate:"max=255"`
	Description string `json:"description" validate:"max=500"`
}

type accountResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	Description    string `json:"description,omitempty"`
	OpeningBalance string `json:"opening_balance"`
	CurrentBalance string `json:"current_balance"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

func toAccountResponse(a Account) accountResponse {
	return accountResponse{
		ID:             a.ID.String(),
		Name:           a.Name,
		Type:           string(a.Type),
		Description:    a.Description,
		OpeningBalance: a.OpeningBalance.String(),
		CurrentBalance: a.CurrentBalance.String(),
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      a.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	opening, err := decimal.NewFromString(req.OpeningBalance)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "opening_balance must be a decimal string")
		return
	}
	account, err := h.service.Create(r.Context(), CreateInput{
		Name:           req.Name,
		Type:           AccountType(req.Type),
		Description:    req.Description,
		OpeningBalance: opening,
	})
	if err != nil {
		h.logger.Warn("create account", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAccountResponse(account))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id")
		return
	}
	account, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id")
		return
	}
	var req updateAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	account, err := h.service.Update(r.Context(), id, UpdateInput{Name: req.Name, Description: req.Description})
	if err != nil {
		h.logger.Warn("update account", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountResponse(account))
}

type accountListResponse struct {
	Accounts   []accountResponse `json:"accounts"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	filter := ListFilter{Type: AccountType(q.Get("type")), Name: q.Get("name")}
	accounts, pg, err := h.service.List(r.Context(), filter, page, perPage)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	resp := accountListResponse{Accounts: make([]accountResponse, 0, len(accounts)), Pagination: pg}
	for _, a := range accounts {
		resp.Accounts = append(resp.Accounts, toAccountResponse(a))
	}
	httpx.JSON(w, http.StatusOK, resp)
}
