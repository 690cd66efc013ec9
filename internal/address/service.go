package address

import (
	"context"
	"time"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetAddresses(ctx context.Context, userID int) ([]Address, error) {
	return s.repo.GetAddresses(ctx, userID)
}

// GetAddress returns one of the user's own addresses; another user's id is
// reported as not found.
func (s *Service) GetAddress(ctx context.Context, userID, addressID int) (Address, error) {
	if addressID <= 0 {
		return Address{}, ErrNotFound
	}
	return s.repo.GetAddress(ctx, userID, addressID)
}

func (s *Service) AddAddress(ctx context.Context, a Address) (Address, error) {
	if a.AddressDesc == "" && a.AddressName == "" {
		return Address{}, ErrAddressRequired
	}
	now := time.Now().UTC().Format(time.RFC3339)
	a.CreatedAt, a.UpdatedAt = now, now
	return s.repo.AddAddress(ctx, a)
}

func (s *Service) UpdateAddress(ctx context.Context, a Address) (Address, error) {
	if a.AddressID <= 0 {
		return Address{}, ErrNotFound
	}
	if a.AddressDesc == "" && a.AddressName == "" {
		return Address{}, ErrAddressRequired
	}
	a.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return s.repo.UpdateAddress(ctx, a)
}

func (s *Service) DeleteAddress(ctx context.Context, userID, addressID int) error {
	if addressID <= 0 {
		return ErrNotFound
	}
	return s.repo.DeleteAddress(ctx, userID, addressID)
}
