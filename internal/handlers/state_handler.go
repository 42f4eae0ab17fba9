package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/socialshop/backend/internal/appstate"
	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/repositories"
	"github.com/anonto42/socialshop/backend/pkg/apperrors"
)

// CartItemRequest identifies a cart line. DELETE requests may pass it as
// query parameters.
type CartItemRequest struct {
	ProductID uint   `json:"product_id" query:"product_id" validate:"required"`
	Size      string `json:"size" query:"size" validate:"max=20"`
	Color     string `json:"color,omitempty" query:"color" validate:"max=40"`
}

// QuantityRequest changes a cart line by Delta.
type QuantityRequest struct {
	ProductID uint   `json:"product_id" validate:"required"`
	Size      string `json:"size" validate:"max=20"`
	Delta     int    `json:"delta" validate:"required,min=-100,max=100"`
}

// SelectAddressRequest selects AddressID, or clears the selection when nil.
type SelectAddressRequest struct {
	AddressID *uint `json:"address_id"`
}

// StateResponse is the caller's shopping state with its cart totals.
type StateResponse struct {
	appstate.State
	Totals appstate.Totals `json:"totals"`
}

// StateHandler exposes the per-user cart, saved products and selected address
type StateHandler struct {
	store             appstate.Store
	productRepository repositories.ProductRepository
	addressRepository repositories.AddressRepository
}

// NewStateHandler creates a new StateHandler
func NewStateHandler(store appstate.Store, productRepo repositories.ProductRepository, addressRepo repositories.AddressRepository) *StateHandler {
	return &StateHandler{store: store, productRepository: productRepo, addressRepository: addressRepo}
}

// RegisterStateRoutes registers state routes
func (h *StateHandler) RegisterStateRoutes(g *echo.Group) {
	g.GET("/state", h.GetState)
	g.POST("/state/cart", h.AddToCart)
	g.PATCH("/state/cart", h.UpdateQuantity)
	g.DELETE("/state/cart/item", h.RemoveFromCart)
	g.DELETE("/state/cart", h.ClearCart)
	g.POST("/state/saved-products/:id", h.SaveProduct)
	g.DELETE("/state/saved-products/:id", h.RemoveProduct)
	g.PUT("/state/address", h.SelectAddress)
}

func (h *StateHandler) respond(c echo.Context, st appstate.State) error {
	if st.Cart == nil {
		st.Cart = []models.CartItem{}
	}
	if st.SavedProducts == nil {
		st.SavedProducts = []string{}
	}
	return success(c, http.StatusOK, StateResponse{State: st, Totals: appstate.ComputeTotals(st.Cart)})
}

func (h *StateHandler) update(c echo.Context, fn func(appstate.State) appstate.State) error {
	st, err := h.store.Update(c.Request().Context(), getUserIDFromContext(c), fn)
	if err != nil {
		return err
	}
	return h.respond(c, st)
}

// GetState returns the caller's state and cart totals
func (h *StateHandler) GetState(c echo.Context) error {
	st, err := h.store.Load(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return h.respond(c, st)
}

// AddToCart adds one unit of a product in a size, pricing it from the catalogue
func (h *StateHandler) AddToCart(c echo.Context) error {
	var req CartItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	product, err := h.productRepository.GetProductByID(c.Request().Context(), req.ProductID)
	if err != nil {
		return err
	}
	item := models.CartItem{
		ProductID:  product.ID,
		Name:       product.Name,
		ImageURL:   product.ImageURL,
		PriceCents: product.PriceCents,
		Size:       req.Size,
		Color:      req.Color,
	}
	return h.update(c, func(s appstate.State) appstate.State { return appstate.AddToCart(s, item) })
}

// UpdateQuantity changes a cart line; lines that fall below 1 are removed
func (h *StateHandler) UpdateQuantity(c echo.Context) error {
	var req QuantityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	return h.update(c, func(s appstate.State) appstate.State {
		return appstate.UpdateQuantity(s, req.ProductID, req.Size, req.Delta)
	})
}

// RemoveFromCart drops a cart line
func (h *StateHandler) RemoveFromCart(c echo.Context) error {
	var req CartItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	return h.update(c, func(s appstate.State) appstate.State {
		return appstate.RemoveFromCart(s, req.ProductID, req.Size)
	})
}

// ClearCart empties the cart
func (h *StateHandler) ClearCart(c echo.Context) error {
	return h.update(c, appstate.ClearCart)
}

// SaveProduct adds a product to the saved list
func (h *StateHandler) SaveProduct(c echo.Context) error {
	id := c.Param("id")
	return h.update(c, func(s appstate.State) appstate.State { return appstate.SaveProduct(s, id) })
}

// RemoveProduct removes a product from the saved list
func (h *StateHandler) RemoveProduct(c echo.Context) error {
	id := c.Param("id")
	return h.update(c, func(s appstate.State) appstate.State { return appstate.RemoveProduct(s, id) })
}

// SelectAddress selects one of the caller's addresses for checkout
func (h *StateHandler) SelectAddress(c echo.Context) error {
	var req SelectAddressRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.AddressID == nil {
		return h.update(c, appstate.ClearAddress)
	}
	address, err := h.addressRepository.GetByID(c.Request().Context(), *req.AddressID)
	if err != nil {
		return err
	}
	if address.UserID != getUserIDFromContext(c) {
		return apperrors.NotFound("address")
	}
	id := address.ID
	return h.update(c, func(s appstate.State) appstate.State { return appstate.SelectAddress(s, id) })
}
