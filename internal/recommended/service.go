package recommended

import (
	"context"
	"sort"

	"github.com/wichananm65/easi-backend/internal/product"
)

type Service struct {
	products product.ServiceInterface
}

func NewService(products product.ServiceInterface) *Service {
	return &Service{products: products}
}

// List returns up to limit in-stock same-day products starting at offset,
// best stocked first so express orders are least likely to bounce.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Item, error) {
	all, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}

	picks := make([]product.Product, 0)
	for _, p := range all {
		if p.SameDayEligible && p.Stock > 0 {
			picks = append(picks, p)
		}
	}
	sort.SliceStable(picks, func(i, j int) bool {
		if picks[i].Stock != picks[j].Stock {
			return picks[i].Stock > picks[j].Stock
		}
		return picks[i].ID < picks[j].ID
	})

	if offset >= len(picks) {
		return []Item{}, nil
	}
	end := min(offset+limit, len(picks))

	out := make([]Item, 0, end-offset)
	for _, p := range picks[offset:end] {
		out = append(out, Item{
			ProductID:   p.ID,
			ProductName: p.Name,
			Category:    p.Category,
			ProductImg:  p.ImageURL,
			RetailPrice: p.RetailPrice,
			Stock:       p.Stock,
		})
	}
	return out, nil
}
