package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository persists orders. Create assigns the order id and number.
type Repository interface {
	Create(ctx context.Context, ord Order) (Order, error)
	GetByID(ctx context.Context, id string) (Order, error)
	ListByUser(ctx context.Context, userID int) ([]Order, error)
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	orders []Order
	seq    int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Create(ctx context.Context, ord Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	if ord.CreatedAt.IsZero() {
		ord.CreatedAt = time.Now().UTC()
	}
	ord.ID = uuid.NewString()
	ord.OrderNumber = FormatOrderNumber(ord.CreatedAt, r.seq)
	ord.Items = append(Items(nil), ord.Items...)
	r.orders = append(r.orders, ord)
	return ord, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

// ListByUser returns the user's orders, newest first.
func (r *InMemoryRepository) ListByUser(ctx context.Context, userID int) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
