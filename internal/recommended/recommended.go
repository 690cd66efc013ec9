package recommended

import "github.com/shopspring/decimal"

// Item is one product on the same-day delivery shelf. Prices are retail;
// the shelf is public.
type Item struct {
	ProductID   int             `json:"productID"`
	ProductName string          `json:"productName"`
	Category    string          `json:"category"`
	ProductImg  *string         `json:"productImg,omitempty"`
	RetailPrice decimal.Decimal `json:"retailPrice"`
	Stock       int             `json:"stock"`
}
