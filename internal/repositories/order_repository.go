package repositories

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/realtime"
)

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetByUserID(ctx context.Context, userID uint) ([]models.Order, error)
	GetLast(ctx context.Context, userID uint) (*models.Order, error)
	// UpdateStatus writes status and delivery_status; old is the row before the change.
	UpdateStatus(ctx context.Context, o *models.Order, old models.Order) error
}

type PostgresOrderRepository struct {
	db *gorm.DB
	feed
}

func NewPostgresOrderRepository(db *gorm.DB, pub realtime.Publisher, log *zap.Logger) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db, feed: newFeed(pub, log)}
}

func (r *PostgresOrderRepository) Create(ctx context.Context, o *models.Order) error {
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		return err
	}
	r.inserted(ctx, TableOrders, o)
	return nil
}

func (r *PostgresOrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, notFound(err, "order")
	}
	return &o, nil
}

func (r *PostgresOrderRepository) GetByUserID(ctx context.Context, userID uint) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *PostgresOrderRepository) GetLast(ctx context.Context, userID uint) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").First(&o).Error; err != nil {
		return nil, notFound(err, "order")
	}
	return &o, nil
}

func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, o *models.Order, old models.Order) error {
	res := r.db.WithContext(ctx).Model(o).Updates(map[string]any{
		"status":          o.Status,
		"delivery_status": o.DeliveryStatus,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "order")
	}
	r.updated(ctx, TableOrders, o, &old)
	return nil
}
