// Package appstate holds the per-user shopping state: cart, saved products
// and the selected delivery address. Reducers are pure; they never mutate
// their input.
package appstate

import (
	"github.com/anonto42/socialshop/backend/internal/models"
)

type State struct {
	Cart              []models.CartItem `json:"cart"`
	SavedProducts     []string          `json:"saved_products"`
	SelectedAddressID *uint             `json:"selected_address_id"`
}

func (s State) clone() State {
	out := State{
		Cart:          make([]models.CartItem, len(s.Cart)),
		SavedProducts: make([]string, len(s.SavedProducts)),
	}
	copy(out.Cart, s.Cart)
	copy(out.SavedProducts, s.SavedProducts)
	if s.SelectedAddressID != nil {
		id := *s.SelectedAddressID
		out.SelectedAddressID = &id
	}
	return out
}

func sameLine(a models.CartItem, productID uint, size string) bool {
	return a.ProductID == productID && a.Size == size
}

// AddToCart bumps the quantity of the (product, size) line, or appends it
// with quantity 1.
func AddToCart(s State, item models.CartItem) State {
	out := s.clone()
	for i := range out.Cart {
		if sameLine(out.Cart[i], item.ProductID, item.Size) {
			out.Cart[i].Quantity++
			return out
		}
	}
	item.Quantity = 1
	out.Cart = append(out.Cart, item)
	return out
}

func RemoveFromCart(s State, productID uint, size string) State {
	out := s.clone()
	kept := out.Cart[:0]
	for _, it := range out.Cart {
		if !sameLine(it, productID, size) {
			kept = append(kept, it)
		}
	}
	out.Cart = kept
	return out
}

// UpdateQuantity adds delta to a line; a line that drops below 1 is removed.
func UpdateQuantity(s State, productID uint, size string, delta int) State {
	out := s.clone()
	for i := range out.Cart {
		if !sameLine(out.Cart[i], productID, size) {
			continue
		}
		out.Cart[i].Quantity += delta
		if out.Cart[i].Quantity < 1 {
			return RemoveFromCart(out, productID, size)
		}
		return out
	}
	return out
}

func ClearCart(s State) State {
	out := s.clone()
	out.Cart = []models.CartItem{}
	return out
}

// SaveProduct prepends id unless it is already saved.
func SaveProduct(s State, id string) State {
	out := s.clone()
	for _, p := range out.SavedProducts {
		if p == id {
			return out
		}
	}
	out.SavedProducts = append([]string{id}, out.SavedProducts...)
	return out
}

func RemoveProduct(s State, id string) State {
	out := s.clone()
	kept := out.SavedProducts[:0]
	for _, p := range out.SavedProducts {
		if p != id {
			kept = append(kept, p)
		}
	}
	out.SavedProducts = kept
	return out
}

func SelectAddress(s State, id uint) State {
	out := s.clone()
	out.SelectedAddressID = &id
	return out
}

func ClearAddress(s State) State {
	out := s.clone()
	out.SelectedAddressID = nil
	return out
}
