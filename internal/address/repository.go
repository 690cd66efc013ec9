package address

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound        = errors.New("address not found")
	ErrAddressRequired = errors.New("addressDesc or addressName required")
)

type Repository interface {
	GetAddresses(ctx context.Context, userID int) ([]Address, error)
	GetAddress(ctx context.Context, userID, addressID int) (Address, error)
	AddAddress(ctx context.Context, a Address) (Address, error)
	UpdateAddress(ctx context.Context, a Address) (Address, error)
	DeleteAddress(ctx context.Context, userID, addressID int) error
}

// InMemoryRepository for tests
type InMemoryRepository struct {
	mu     sync.RWMutex
	data   map[int][]Address // keyed by userID
	nextID int
}

func NewInMemoryRepository(seed map[int][]Address) *InMemoryRepository {
	r := &InMemoryRepository{data: make(map[int][]Address, len(seed)), nextID: 1}
	for uid, addrs := range seed {
		r.data[uid] = append([]Address(nil), addrs...)
		for _, a := range addrs {
			if a.AddressID >= r.nextID {
				r.nextID = a.AddressID + 1
			}
		}
	}
	return r
}

func (r *InMemoryRepository) GetAddresses(ctx context.Context, userID int) ([]Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Address{}, r.data[userID]...), nil
}

func (r *InMemoryRepository) GetAddress(ctx context.Context, userID, addressID int) (Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.data[userID] {
		if a.AddressID == addressID {
			return a, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) AddAddress(ctx context.Context, a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.AddressID = r.nextID
	r.nextID++
	r.data[a.UserID] = append(r.data[a.UserID], a)
	return a, nil
}

func (r *InMemoryRepository) UpdateAddress(ctx context.Context, a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.data[a.UserID] {
		if existing.AddressID == a.AddressID {
			a.CreatedAt = existing.CreatedAt
			r.data[a.UserID][i] = a
			return a, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) DeleteAddress(ctx context.Context, userID, addressID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	addrs := r.data[userID]
	for i, a := range addrs {
		if a.AddressID == addressID {
			r.data[userID] = append(addrs[:i:i], addrs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
