package favorite

import (
	"context"
	"errors"
	"slices"
	"sync"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrAlreadyFavorite = errors.New("product already in favorites")
	ErrNotFavorite     = errors.New("product not in favorites")
	ErrUnknownProduct  = errors.New("product not found")
)

// Repository stores the ordered product ids each user has saved.
type Repository interface {
	List(ctx context.Context, userID int) ([]int, error)
	Add(ctx context.Context, userID, productID int) ([]int, error)
	Remove(ctx context.Context, userID, productID int) ([]int, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.RWMutex
	saved map[int][]int
}

func NewInMemoryRepository(seed map[int][]int) *InMemoryRepository {
	r := &InMemoryRepository{saved: make(map[int][]int, len(seed))}
	for userID, ids := range seed {
		r.saved[userID] = slices.Clone(ids)
	}
	return r
}

func (r *InMemoryRepository) List(_ context.Context, userID int) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]int{}, r.saved[userID]...), nil
}

func (r *InMemoryRepository) Add(_ context.Context, userID, productID int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.saved[userID]
	if slices.Contains(ids, productID) {
		return nil, ErrAlreadyFavorite
	}
	ids = append(ids, productID)
	r.saved[userID] = ids
	return slices.Clone(ids), nil
}

func (r *InMemoryRepository) Remove(_ context.Context, userID, productID int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.saved[userID]
	i := slices.Index(ids, productID)
	if i < 0 {
		return nil, ErrNotFavorite
	}
	ids = slices.Delete(slices.Clone(ids), i, i+1)
	r.saved[userID] = ids
	return slices.Clone(ids), nil
}
