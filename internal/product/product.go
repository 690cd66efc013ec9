package product

import "github.com/shopspring/decimal"

// Product is catalog reference data. Prices are SGD.
type Product struct {
	ID              int             `json:"productID"`
	Name            string          `json:"productName"`
	Category        string          `json:"category"`
	Description     string          `json:"productDesc"`
	SKU             string          `json:"sku"`
	Stock           int             `json:"stock"`
	RetailPrice     decimal.Decimal `json:"retailPrice"`
	TradePrice      decimal.Decimal `json:"tradePrice"`
	SameDayEligible bool            `json:"sameDayEligible"`
	ImageURL        *string         `json:"productImg,omitempty"`
	CreatedAt       string          `json:"createdAt,omitempty"`
	UpdatedAt       string          `json:"updatedAt,omitempty"`
}

// CategoryItem is the public DTO returned by the category API.
type CategoryItem struct {
	CategoryName string `json:"categoryName"`
	ProductCount int    `json:"productCount"`
}

// AllowedCategories contains the supported product categories used across the app.
var AllowedCategories = []string{
	"Beer",
	"Wine",
	"Spirits",
	"Sake & Soju",
	"Soft Drinks",
	"Mixers",
}
