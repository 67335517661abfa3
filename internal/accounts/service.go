package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/strata-books/strata-books/internal/shared"
)

// AuditPort records audit trail entries for account mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CreateInput groups fields required to open an account.
type CreateInput struct {
	Name           string
	Type           AccountType
	Description    string
	OpeningBalance decimal.Decimal
}

// Validate ensures the input meets the account invariants.
func (in CreateInput) Validate() error {
	if in.Name == "" {
		return fmt.Errorf("accounts: name required: %w", shared.ErrValidation)
	}
	if len(in.Name) > 255 {
		return fmt.Errorf("accounts: name too long: %w", shared.ErrValidation)
	}
	if !in.Type.Valid() {
		return fmt.Errorf("accounts: unknown type %q: %w", in.Type, shared.ErrValidation)
	}
	if in.OpeningBalance.IsNegative() {
		return fmt.Errorf("accounts: opening balance must not be negative: %w", shared.ErrValidation)
	}
	return nil
}

// UpdateInput carries the editable account fields. Balances are never
// editable through this path; only postings move them.
type UpdateInput struct {
	Name        string
	Description string
}

// Service wraps account business rules.
type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create opens an account. The opening balance seeds the current balance.
func (s *Service) Create(ctx context.Context, in CreateInput) (Account, error) {
	if err := in.Validate(); err != nil {
		return Account{}, err
	}
	actor := shared.ActorFromContext(ctx)
	account, err := s.repo.Insert(ctx, Account{
		Name:           in.Name,
		Type:           in.Type,
		Description:    in.Description,
		OpeningBalance: in.OpeningBalance,
		CurrentBalance: in.OpeningBalance,
		CreatedBy:      actor,
		UpdatedBy:      actor,
	})
	if err != nil {
		return Account{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Actor:    actor,
			Action:   "account.create",
			Entity:   "account",
			EntityID: account.ID.String(),
			Meta: map[string]any{
				"type":            string(account.Type),
				"opening_balance": account.OpeningBalance.String(),
			},
			At: s.now(),
		})
	}
	return account, nil
}

// Get fetches an account by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Account, error) {
	return s.repo.Get(ctx, id)
}

// Update changes name and description of an account.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (Account, error) {
	if len(in.Name) > 255 {
		return Account{}, fmt.Errorf("accounts: name too long: %w", shared.ErrValidation)
	}
	actor := shared.ActorFromContext(ctx)
	account, err := s.repo.Update(ctx, id, in.Name, in.Description, actor)
	if err != nil {
		return Account{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Actor:    actor,
			Action:   "account.update",
			Entity:   "account",
			EntityID: account.ID.String(),
			At:       s.now(),
		})
	}
	return account, nil
}

// List returns accounts matching the filter plus pagination metadata.
func (s *Service) List(ctx context.Context, filter ListFilter, page, perPage int) ([]Account, shared.Pagination, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, shared.Pagination{}, fmt.Errorf("accounts: unknown type %q: %w", filter.Type, shared.ErrValidation)
	}
	pg := shared.NewPagination(page, perPage, 0)
	accounts, total, err := s.repo.List(ctx, filter, pg)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return accounts, shared.NewPagination(page, perPage, total), nil
}
