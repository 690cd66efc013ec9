package favorite

import "github.com/shopspring/decimal"

// Item is a saved product priced for the caller.
type Item struct {
	ProductID       int             `json:"productID"`
	Name            string          `json:"productName"`
	Category        string          `json:"category"`
	ImageURL        *string         `json:"productImg,omitempty"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Stock           int             `json:"stock"`
	InStock         bool            `json:"inStock"`
	SameDayEligible bool            `json:"sameDayEligible"`
}
