package services

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/anonto42/socialshop/backend/internal/appstate"
	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/repositories"
	"github.com/anonto42/socialshop/backend/pkg/apperrors"
)

const deliveryLeadTime = 7 * 24 * time.Hour

type OrderService struct {
	orders    repositories.OrderRepository
	addresses repositories.AddressRepository
	state     appstate.Store
	now       func() time.Time
	log       *zap.Logger
}

func NewOrderService(orderRepo repositories.OrderRepository, addressRepo repositories.AddressRepository, store appstate.Store, log *zap.Logger) *OrderService {
	return &OrderService{
		orders:    orderRepo,
		addresses: addressRepo,
		state:     store,
		now:       time.Now,
		log:       log.With(zap.String("component", "orders")),
	}
}

// Checkout turns the user's cart and selected address into a pending order
// and clears the cart.
func (s *OrderService) Checkout(ctx context.Context, userID uint, req models.CheckoutRequest) (*models.Order, error) {
	if !slices.Contains(models.PaymentMethods, req.PaymentMethod) {
		return nil, apperrors.Invalid("unsupported payment method")
	}
	st, err := s.state.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(st.Cart) == 0 {
		return nil, apperrors.Invalid("cart is empty")
	}
	if st.SelectedAddressID == nil {
		return nil, apperrors.Invalid("no delivery address selected")
	}
	address, err := s.addresses.GetByID(ctx, *st.SelectedAddressID)
	if err != nil {
		return nil, err
	}
	if address.UserID != userID {
		return nil, apperrors.Forbidden("address belongs to another user")
	}

	totals := appstate.ComputeTotals(st.Cart)
	now := s.now().UTC()
	order := &models.Order{
		UserID:         userID,
		Items:          datatypes.NewJSONSlice(st.Cart),
		Address:        datatypes.NewJSONType(address.Snapshot()),
		SubtotalCents:  totals.SubtotalCents,
		TaxCents:       totals.TaxCents,
		ShippingCents:  totals.ShippingCents,
		TotalCents:     totals.TotalCents,
		Status:         models.OrderPending,
		DeliveryStatus: models.DeliveryLadder[0],
		PaymentMethod:  req.PaymentMethod,
		ContactNumber:  req.ContactNumber,
		DeliveryDate:   now.Add(deliveryLeadTime),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, apperrors.Wrap(err, "failed to place order")
	}

	if _, err := s.state.Update(ctx, userID, appstate.ClearCart); err != nil {
		s.log.Error("order placed but cart not cleared", zap.Uint("order_id", order.ID), zap.Error(err))
	}
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperrors.NotFound("order")
	}
	return order, nil
}

// List returns the user's orders, newest first.
func (s *OrderService) List(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.orders.GetByUserID(ctx, userID)
}

// Last returns the user's most recent order.
func (s *OrderService) Last(ctx context.Context, userID uint) (*models.Order, error) {
	return s.orders.GetLast(ctx, userID)
}

// Cancel marks an undelivered order as cancelled. Only the owner may cancel.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	order, err := s.Get(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderCancelled {
		return order, nil
	}
	if order.DeliveryStatus == models.DeliveryDelivered {
		return nil, apperrors.WrapWithCode(apperrors.ErrConflict, "order_delivered", "a delivered order cannot be cancelled")
	}
	old := *order
	order.Status = models.OrderCancelled
	if err := s.orders.UpdateStatus(ctx, order, old); err != nil {
		return nil, err
	}
	return order, nil
}

// AdvanceDelivery moves an order forward along models.DeliveryLadder.
func (s *OrderService) AdvanceDelivery(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	next := slices.Index(models.DeliveryLadder, status)
	if next < 0 {
		return nil, apperrors.Invalid("unknown delivery status")
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderCancelled {
		return nil, apperrors.WrapWithCode(apperrors.ErrConflict, "order_cancelled", "order is cancelled")
	}
	current := slices.Index(models.DeliveryLadder, order.DeliveryStatus)
	if next <= current {
		return nil, apperrors.Invalid("delivery status can only move forward")
	}
	old := *order
	order.DeliveryStatus = status
	if err := s.orders.UpdateStatus(ctx, order, old); err != nil {
		return nil, err
	}
	return order, nil
}
