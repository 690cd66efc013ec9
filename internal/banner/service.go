package banner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wichananm65/easi-backend/internal/pricing"
)

// Service provides business logic for banners.
type Service struct {
	repo  Repository
	rules pricing.Rules
	log   *zap.Logger
}

func NewService(r Repository, rules pricing.Rules, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: r, rules: rules, log: log}
}

// List returns the free-delivery banner followed by up to limit stored
// banners. A failing store only drops the stored ones.
func (s *Service) List(ctx context.Context, limit int) []BannerItem {
	items := []BannerItem{s.freeDelivery()}
	stored, err := s.repo.List(ctx, limit)
	if err != nil {
		s.log.Warn("list banners", zap.Error(err))
		return items
	}
	return append(items, stored...)
}

// freeDelivery quotes the same threshold the pricing engine applies.
func (s *Service) freeDelivery() BannerItem {
	subtitle := fmt.Sprintf("Standard delivery is $%s below that", s.rules.StandardDeliveryFee.StringFixed(2))
	link := "/products"
	return BannerItem{
		BannerID: FreeDeliveryBannerID,
		Title:    fmt.Sprintf("Free delivery on orders over $%s", s.rules.FreeDeliveryThreshold.StringFixed(0)),
		Subtitle: &subtitle,
		Link:     &link,
	}
}
