package favorite

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/wichananm65/easi-backend/internal/pricing"
	"github.com/wichananm65/easi-backend/internal/product"
	"github.com/wichananm65/easi-backend/internal/user"
)

type UserLookup interface {
	GetByID(ctx context.Context, id int) (user.User, error)
}

type Service struct {
	repo     Repository
	products product.ServiceInterface
	users    UserLookup
	log      *zap.Logger
}

func NewService(repo Repository, products product.ServiceInterface, users UserLookup, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, products: products, users: users, log: log}
}

// Add saves productID for the user. Only catalog products can be saved.
func (s *Service) Add(ctx context.Context, userID, productID int) ([]int, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, ErrUnknownProduct
		}
		return nil, err
	}
	return s.repo.Add(ctx, userID, productID)
}

func (s *Service) Remove(ctx context.Context, userID, productID int) ([]int, error) {
	return s.repo.Remove(ctx, userID, productID)
}

// List returns the saved products in the order they were saved, priced
// with the caller's pricing role. Products no longer in the catalog are
// skipped.
func (s *Service) List(ctx context.Context, userID int) ([]Item, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	ids, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Item{}, nil
	}

	products, err := s.products.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	role := u.PricingRole()
	out := make([]Item, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			s.log.Debug("favorite product no longer listed", zap.Int("userID", userID), zap.Int("productID", id))
			continue
		}
		out = append(out, Item{
			ProductID:       p.ID,
			Name:            p.Name,
			Category:        p.Category,
			ImageURL:        p.ImageURL,
			UnitPrice:       pricing.UnitPrice(p, role),
			Stock:           p.Stock,
			InStock:         p.Stock > 0,
			SameDayEligible: p.SameDayEligible,
		})
	}
	return out, nil
}
