package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/repositories"
	"github.com/anonto42/socialshop/backend/pkg/apperrors"
)

// AddressHandler manages delivery addresses
type AddressHandler struct {
	addressRepository repositories.AddressRepository
}

// NewAddressHandler creates a new AddressHandler
func NewAddressHandler(addressRepo repositories.AddressRepository) *AddressHandler {
	return &AddressHandler{addressRepository: addressRepo}
}

// RegisterAddressRoutes registers address routes
func (h *AddressHandler) RegisterAddressRoutes(g *echo.Group) {
	g.GET("/addresses", h.GetAddresses)
	g.POST("/addresses", h.CreateAddress)
	g.PUT("/addresses/:id", h.UpdateAddress)
}

// GetAddresses lists the caller's addresses, newest first
func (h *AddressHandler) GetAddresses(c echo.Context) error {
	addresses, err := h.addressRepository.GetByUserID(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"addresses": addresses})
}

// CreateAddress adds an address for the caller
func (h *AddressHandler) CreateAddress(c echo.Context) error {
	var req models.AddressRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	address := &models.Address{UserID: getUserIDFromContext(c)}
	applyAddress(address, req)
	if err := h.addressRepository.Create(c.Request().Context(), address); err != nil {
		return err
	}
	return success(c, http.StatusCreated, address)
}

// UpdateAddress replaces one of the caller's addresses
func (h *AddressHandler) UpdateAddress(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var req models.AddressRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	address, err := h.addressRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if address.UserID != getUserIDFromContext(c) {
		return apperrors.NotFound("address")
	}
	applyAddress(address, req)
	if err := h.addressRepository.Update(ctx, address); err != nil {
		return err
	}
	return success(c, http.StatusOK, address)
}

func applyAddress(a *models.Address, req models.AddressRequest) {
	a.AddressName = req.AddressName
	a.Address = req.Address
	a.City = req.City
	a.State = req.State
	a.Zip = req.Zip
	a.Country = req.Country
}
