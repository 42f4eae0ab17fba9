package repositories

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/realtime"
)

type AddressRepository interface {
	Create(ctx context.Context, a *models.Address) error
	GetByID(ctx context.Context, id uint) (*models.Address, error)
	GetByUserID(ctx context.Context, userID uint) ([]models.Address, error)
	Update(ctx context.Context, a *models.Address) error
}

type PostgresAddressRepository struct {
	db *gorm.DB
	feed
}

func NewPostgresAddressRepository(db *gorm.DB, pub realtime.Publisher, log *zap.Logger) *PostgresAddressRepository {
	return &PostgresAddressRepository{db: db, feed: newFeed(pub, log)}
}

func (r *PostgresAddressRepository) Create(ctx context.Context, a *models.Address) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return err
	}
	r.inserted(ctx, TableAddresses, a)
	return nil
}

func (r *PostgresAddressRepository) GetByID(ctx context.Context, id uint) (*models.Address, error) {
	var a models.Address
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, notFound(err, "address")
	}
	return &a, nil
}

func (r *PostgresAddressRepository) GetByUserID(ctx context.Context, userID uint) ([]models.Address, error) {
	addresses := []models.Address{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&addresses).Error
	return addresses, err
}

func (r *PostgresAddressRepository) Update(ctx context.Context, a *models.Address) error {
	if err := r.db.WithContext(ctx).Save(a).Error; err != nil {
		return err
	}
	r.updated(ctx, TableAddresses, a, nil)
	return nil
}
