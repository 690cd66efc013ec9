package cart

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrStockExceeded = errors.New("stock exceeded")
)

// Line is the stored form of a cart item. Product details are resolved
// from the catalog on every read.
type Line struct {
	ProductID int `json:"productID"`
	Quantity  int `json:"quantity"`
}

type Repository interface {
	Load(ctx context.Context, userID int) ([]Line, error)
	Save(ctx context.Context, userID int, lines []Line) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.RWMutex
	carts map[int][]Line
}

func NewInMemoryRepository(seed map[int][]Line) *InMemoryRepository {
	r := &InMemoryRepository{carts: make(map[int][]Line, len(seed))}
	for uid, lines := range seed {
		r.carts[uid] = append([]Line(nil), lines...)
	}
	return r
}

func (r *InMemoryRepository) Load(ctx context.Context, userID int) ([]Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Line{}, r.carts[userID]...), nil
}

func (r *InMemoryRepository) Save(ctx context.Context, userID int, lines []Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[userID] = append([]Line(nil), lines...)
	return nil
}
