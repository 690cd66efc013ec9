package product

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"go.uber.org/zap"
)

const catalogCacheKey = "easi:catalog:products"

// ServiceInterface is the read surface other packages depend on.
type ServiceInterface interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int) (Product, error)
	ListByIDs(ctx context.Context, ids []int) ([]Product, error)
}

type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
	log   *zap.Logger
}

// NewService wires the catalog service. cache may be nil.
func NewService(repo Repository, cache Cache, ttl time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, cache: cache, ttl: ttl, log: log}
}

// List returns the whole catalog. The list is served from the cache when
// one is configured; cache failures fall through to the repository.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	if s.cache != nil {
		if b, err := s.cache.Get(ctx, catalogCacheKey); err == nil {
			var cached []Product
			if err := json.Unmarshal(b, &cached); err == nil {
				return cached, nil
			}
		} else if err != ErrCacheMiss {
			s.log.Warn("catalog cache read failed", zap.Error(err))
		}
	}

	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if b, err := json.Marshal(products); err == nil {
			if err := s.cache.Set(ctx, catalogCacheKey, b, s.ttl); err != nil {
				s.log.Warn("catalog cache write failed", zap.Error(err))
			}
		}
	}
	return products, nil
}

// ListByCategory filters the catalog by category name.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0)
	for _, p := range all {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

// Categories returns the distinct categories present in the catalog.
func (s *Service) Categories(ctx context.Context) ([]CategoryItem, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, p := range all {
		counts[p.Category]++
	}
	out := make([]CategoryItem, 0, len(counts))
	for name, n := range counts {
		out = append(out, CategoryItem{CategoryName: name, ProductCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryName < out[j].CategoryName })
	return out, nil
}

// GetByID always reads the repository so stock levels are current.
func (s *Service) GetByID(ctx context.Context, id int) (Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByIDs(ctx context.Context, ids []int) ([]Product, error) {
	return s.repo.ListByIDs(ctx, ids)
}

// AdjustStock moves a product's stock by delta and drops the cached
// catalog so listings show the new level.
func (s *Service) AdjustStock(ctx context.Context, id, delta int) (int, error) {
	stock, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return 0, err
	}
	s.InvalidateCache(ctx)
	return stock, nil
}

// InvalidateCache drops the cached catalog.
func (s *Service) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, catalogCacheKey); err != nil {
		s.log.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}
