package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wichananm65/easi-backend/internal/product"
	"github.com/wichananm65/easi-backend/internal/rewards"
)

func catalogSeed() []product.Product {
	p := func(name, category, sku string, stock int, retail, trade string, sameDay bool) product.Product {
		return product.Product{
			Name:            name,
			Category:        category,
			SKU:             sku,
			Stock:           stock,
			RetailPrice:     decimal.RequireFromString(retail),
			TradePrice:      decimal.RequireFromString(trade),
			SameDayEligible: sameDay,
		}
	}
	return []product.Product{
		p("Tiger Lager 24 x 330ml", "Beer", "BEER-TIG-24", 120, "58.90", "46.50", true),
		p("Heineken 24 x 330ml", "Beer", "BEER-HEI-24", 80, "62.90", "49.90", true),
		p("Brewerkz IPA 6 x 330ml", "Beer", "BEER-BRZ-IPA6", 40, "34.00", "26.80", true),
		p("Chablis Premier Cru 2022", "Wine", "WINE-CHB-22", 24, "74.90", "58.00", false),
		p("Penfolds Bin 389 2020", "Wine", "WINE-PEN-389", 12, "129.00", "104.00", false),
		p("Monkey Shoulder 700ml", "Spirits", "SPRT-MON-70", 36, "79.00", "62.50", true),
		p("Hendrick's Gin 700ml", "Spirits", "SPRT-HEN-70", 30, "88.00", "69.90", true),
		p("Dassai 45 Junmai Daiginjo 720ml", "Sake & Soju", "SAKE-DAS-45", 18, "68.00", "54.00", false),
		p("Jinro Chamisul Fresh 360ml", "Sake & Soju", "SOJU-JIN-360", 200, "6.90", "4.80", true),
		p("Coca-Cola 24 x 320ml", "Soft Drinks", "SOFT-COK-24", 150, "21.90", "16.80", true),
		p("Fever-Tree Indian Tonic 24 x 200ml", "Mixers", "MIX-FVT-24", 60, "49.00", "38.00", true),
	}
}

// SeedCatalog fills an empty catalog. A catalog with any product is left
// alone.
func SeedCatalog(ctx context.Context, repo product.Repository, log *zap.Logger) error {
	n, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range catalogSeed() {
		p.CreatedAt, p.UpdatedAt = now, now
		if _, err := repo.Create(ctx, p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.SKU, err)
		}
	}
	log.Info("catalog seeded", zap.Int("products", len(catalogSeed())))
	return nil
}

// RewardsSeed is the launch rewards catalog.
func RewardsSeed() []rewards.Reward {
	r := func(id int, title string, t rewards.Type, points int, value, validity string) rewards.Reward {
		return rewards.Reward{ID: id, Title: title, Type: t, Points: points, Value: decimal.RequireFromString(value), Validity: validity, Active: true}
	}
	return []rewards.Reward{
		r(1, "$10 off your next order", rewards.TypeDiscount, 3000, "10", ""),
		r(2, "$50 account credit", rewards.TypeCredit, 15000, "50", ""),
		r(3, "Dinner for two at Marina Bay", rewards.TypeVoucher, 12000, "120", "6 months"),
		r(4, "Whisky tasting masterclass", rewards.TypeExperience, 25000, "250", "3 months"),
		r(5, "Riedel Vinum wine glass pair", rewards.TypeProduct, 8000, "89", "1 year"),
	}
}

// SeedRewards inserts the launch rewards that are not stored yet.
func SeedRewards(ctx context.Context, db *sqlx.DB) error {
	for _, rw := range RewardsSeed() {
		_, err := db.NamedExecContext(ctx, `
			INSERT INTO rewards (reward_id, title, description, reward_type, points, value, validity, active)
			VALUES (:reward_id, :title, :description, :reward_type, :points, :value, :validity, :active)
			ON CONFLICT (reward_id) DO NOTHING`, rw)
		if err != nil {
			return fmt.Errorf("seed reward %d: %w", rw.ID, err)
		}
	}
	return nil
}
