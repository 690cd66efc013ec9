package rewards

import (
	"context"
	"sort"
	"sync"
)

type Repository interface {
	ListRewards(ctx context.Context) ([]Reward, error)
	GetReward(ctx context.Context, id int) (Reward, error)
	// Balance returns the user's points, opening an account with the
	// starting balance on first use.
	Balance(ctx context.Context, userID int) (int, error)
	// AdjustPoints adds delta and returns the new balance. It fails with
	// ErrInsufficientPoints rather than go below zero.
	AdjustPoints(ctx context.Context, userID, delta int) (int, error)
	AddVoucher(ctx context.Context, v RedeemedVoucher) error
	ListVouchers(ctx context.Context, userID int) ([]RedeemedVoucher, error)
}

type InMemoryRepository struct {
	mu       sync.Mutex
	rewards  []Reward
	points   map[int]int
	vouchers map[int][]RedeemedVoucher
	starting int
}

func NewInMemoryRepository(catalog []Reward, balances map[int]int, startingPoints int) *InMemoryRepository {
	points := make(map[int]int, len(balances))
	for id, p := range balances {
		points[id] = p
	}
	return &InMemoryRepository{
		rewards:  append([]Reward(nil), catalog...),
		points:   points,
		vouchers: make(map[int][]RedeemedVoucher),
		starting: startingPoints,
	}
}

func (r *InMemoryRepository) ListRewards(_ context.Context) ([]Reward, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Reward, 0, len(r.rewards))
	for _, rw := range r.rewards {
		if rw.Active {
			out = append(out, rw)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Points < out[j].Points })
	return out, nil
}

func (r *InMemoryRepository) GetReward(_ context.Context, id int) (Reward, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rw := range r.rewards {
		if rw.ID == id && rw.Active {
			return rw, nil
		}
	}
	return Reward{}, ErrRewardNotFound
}

func (r *InMemoryRepository) balance(userID int) int {
	p, ok := r.points[userID]
	if !ok {
		p = r.starting
		r.points[userID] = p
	}
	return p
}

func (r *InMemoryRepository) Balance(_ context.Context, userID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balance(userID), nil
}

func (r *InMemoryRepository) AdjustPoints(_ context.Context, userID, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.balance(userID) + delta
	if next < 0 {
		return 0, ErrInsufficientPoints
	}
	r.points[userID] = next
	return next, nil
}

func (r *InMemoryRepository) AddVoucher(_ context.Context, v RedeemedVoucher) error {
	r.mu.Lock()
	r.vouchers[v.UserID] = append(r.vouchers[v.UserID], v)
	r.mu.Unlock()
	return nil
}

// ListVouchers returns the newest voucher first.
func (r *InMemoryRepository) ListVouchers(_ context.Context, userID int) ([]RedeemedVoucher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	src := r.vouchers[userID]
	out := make([]RedeemedVoucher, 0, len(src))
	for i := len(src) - 1; i >= 0; i-- {
		out = append(out, src[i])
	}
	return out, nil
}
