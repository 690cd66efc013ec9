package company

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = errors.New("company not found")
	ErrVersionConflict     = errors.New("company record changed since it was read")
	ErrProfileUpdateFailed = errors.New("failed to update company profile")
	ErrRepaymentInProgress = errors.New("a repayment is already in progress")
)

type Repository interface {
	GetByID(ctx context.Context, id int) (Company, error)
	// UpdateCredit sets the available credit if the stored version still
	// equals expectedVersion, bumping the version on success.
	UpdateCredit(ctx context.Context, id int, available decimal.Decimal, expectedVersion int) (Company, error)
}

type InMemoryRepository struct {
	mu        sync.Mutex
	companies map[int]Company
}

func NewInMemoryRepository(seed []Company) *InMemoryRepository {
	m := make(map[int]Company, len(seed))
	for _, c := range seed {
		m[c.ID] = c
	}
	return &InMemoryRepository{companies: m}
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[id]
	if !ok {
		return Company{}, ErrNotFound
	}
	return c, nil
}

func (r *InMemoryRepository) UpdateCredit(_ context.Context, id int, available decimal.Decimal, expectedVersion int) (Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[id]
	if !ok {
		return Company{}, ErrNotFound
	}
	if c.Version != expectedVersion {
		return Company{}, ErrVersionConflict
	}
	c.AvailableCredit = available
	c.Version++
	c.UpdatedAt = time.Now().UTC()
	r.companies[id] = c
	return c, nil
}
