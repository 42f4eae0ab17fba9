package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	OrderPending   = "pending"
	OrderCancelled = "cancelled"
)

// Delivery statuses, in the only order they may advance.
var DeliveryLadder = []string{
	"pending",
	"confirmed",
	"packed",
	"being shipped",
	"shipped",
	"out for delivery",
	"delivered",
}

const DeliveryDelivered = "delivered"

var PaymentMethods = []string{"upi", "cod", "netbanking", "creditcard"}

// CartItem is one line of the cart. Lines are keyed by (ProductID, Size).
type CartItem struct {
	ProductID  uint   `json:"product_id"`
	Name       string `json:"name"`
	ImageURL   string `json:"image_url"`
	PriceCents int64  `json:"price_cents"`
	Size       string `json:"size"`
	Color      string `json:"color,omitempty"`
	Quantity   int    `json:"quantity"`
}

type AddressSnapshot struct {
	AddressName string `json:"address_name"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zip         string `json:"zip"`
	Country     string `json:"country"`
}

func (a *Address) Snapshot() AddressSnapshot {
	return AddressSnapshot{
		AddressName: a.AddressName,
		Address:     a.Address,
		City:        a.City,
		State:       a.State,
		Zip:         a.Zip,
		Country:     a.Country,
	}
}

type Order struct {
	ID             uint                                `json:"id" gorm:"primaryKey"`
	UserID         uint                                `json:"user_id" gorm:"index"`
	Items          datatypes.JSONSlice[CartItem]       `json:"items"`
	Address        datatypes.JSONType[AddressSnapshot] `json:"address"`
	SubtotalCents  int64                               `json:"subtotal_cents"`
	TaxCents       int64                               `json:"tax_cents"`
	ShippingCents  int64                               `json:"shipping_cents"`
	TotalCents     int64                               `json:"total_cents"`
	Status         string                              `json:"status" gorm:"size:20;index"`
	DeliveryStatus string                              `json:"delivery_status" gorm:"size:30"`
	PaymentMethod  string                              `json:"payment_method" gorm:"size:20"`
	ContactNumber  string                              `json:"contact_number"`
	DeliveryDate   time.Time                           `json:"delivery_date"`
	CreatedAt      time.Time                           `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time                           `json:"updated_at"`
}

type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=upi cod netbanking creditcard"`
	ContactNumber string `json:"contact_number" validate:"omitempty,max=20"`
}

type DeliveryStatusRequest struct {
	DeliveryStatus string `json:"delivery_status" validate:"required"`
}
