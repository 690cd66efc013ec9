package cart

import (
	"fmt"

	"github.com/wichananm65/easi-backend/internal/pricing"
	"github.com/wichananm65/easi-backend/internal/product"
)

// Item is a product snapshot and its quantity. Quantity is always at least 1.
type Item struct {
	Product  product.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// State is a user's cart. Items keep insertion order for display.
type State struct {
	Items []Item `json:"items"`
}

func (s State) find(productID int) int {
	for i, it := range s.Items {
		if it.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Quantity returns the quantity held for productID, 0 if absent.
func (s State) Quantity(productID int) int {
	if i := s.find(productID); i >= 0 {
		return s.Items[i].Quantity
	}
	return 0
}

func (s State) IsEmpty() bool { return len(s.Items) == 0 }

// Lines converts the cart into pricing input.
func (s State) Lines() []pricing.Line {
	out := make([]pricing.Line, 0, len(s.Items))
	for _, it := range s.Items {
		out = append(out, pricing.Line{Product: it.Product, Quantity: it.Quantity})
	}
	return out
}

// Action is one of AddToCart, UpdateCartQuantity, RemoveFromCart, ClearCart.
type Action interface {
	isAction()
}

type AddToCart struct {
	Product  product.Product
	Quantity int
}

type UpdateCartQuantity struct {
	ProductID int
	Quantity  int
}

type RemoveFromCart struct {
	ProductID int
}

type ClearCart struct{}

func (AddToCart) isAction()          {}
func (UpdateCartQuantity) isAction() {}
func (RemoveFromCart) isAction()     {}
func (ClearCart) isAction()          {}

// StockCheck is the outcome of validating a requested quantity.
type StockCheck struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

var okCheck = StockCheck{Valid: true}

// CheckStock validates requested against p.Stock. Requests of zero or less
// always pass; they mean removal.
func CheckStock(p product.Product, requested int) StockCheck {
	if requested <= 0 || requested <= p.Stock {
		return okCheck
	}
	if p.Stock <= 0 {
		return StockCheck{Message: fmt.Sprintf("%s is out of stock", p.Name)}
	}
	return StockCheck{Message: fmt.Sprintf("Only %d of %s available", p.Stock, p.Name)}
}

// Reduce applies a to s and returns the new state. s is never modified. A
// rejected action returns s unchanged together with the failed check.
func Reduce(s State, a Action) (State, StockCheck) {
	switch a := a.(type) {
	case AddToCart:
		i := s.find(a.Product.ID)
		total := a.Quantity
		if i >= 0 {
			total += s.Items[i].Quantity
		}
		if check := CheckStock(a.Product, total); !check.Valid {
			return s, check
		}
		if i < 0 {
			if total <= 0 {
				return s, okCheck
			}
			next := s.clone()
			next.Items = append(next.Items, Item{Product: a.Product, Quantity: total})
			return next, okCheck
		}
		return s.set(i, a.Product, total), okCheck

	case UpdateCartQuantity:
		i := s.find(a.ProductID)
		if i < 0 {
			return s, okCheck
		}
		p := s.Items[i].Product
		if check := CheckStock(p, a.Quantity); !check.Valid {
			return s, check
		}
		return s.set(i, p, a.Quantity), okCheck

	case RemoveFromCart:
		i := s.find(a.ProductID)
		if i < 0 {
			return s, okCheck
		}
		return s.set(i, s.Items[i].Product, 0), okCheck

	case ClearCart:
		return State{Items: []Item{}}, okCheck
	}
	return s, okCheck
}

func (s State) clone() State {
	items := make([]Item, len(s.Items), len(s.Items)+1)
	copy(items, s.Items)
	return State{Items: items}
}

// set replaces the item at i; a quantity of zero or less removes it.
func (s State) set(i int, p product.Product, qty int) State {
	next := s.clone()
	if qty <= 0 {
		next.Items = append(next.Items[:i], next.Items[i+1:]...)
		return next
	}
	next.Items[i] = Item{Product: p, Quantity: qty}
	return next
}
