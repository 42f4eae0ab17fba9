package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/anonto42/socialshop/backend/internal/models"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProductByID(ctx context.Context, id uint) (*models.Product, error)
	// ListProducts filters by gender and category; empty values do not filter.
	ListProducts(ctx context.Context, gender, category string) ([]models.Product, error)
	GetSimilar(ctx context.Context, category string, excludeID uint) ([]models.Product, error)
}

type PostgresProductRepository struct {
	db *gorm.DB
}

func NewPostgresProductRepository(db *gorm.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

func (r *PostgresProductRepository) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PostgresProductRepository) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err, "product")
	}
	return &p, nil
}

func (r *PostgresProductRepository) ListProducts(ctx context.Context, gender, category string) ([]models.Product, error) {
	products := []models.Product{}
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if gender != "" {
		q = q.Where("gender = ?", gender)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Find(&products).Error
	return products, err
}

func (r *PostgresProductRepository) GetSimilar(ctx context.Context, category string, excludeID uint) ([]models.Product, error) {
	products := []models.Product{}
	err := r.db.WithContext(ctx).
		Where("category = ? AND id <> ?", category, excludeID).
		Order("created_at DESC").
		Limit(20).
		Find(&products).Error
	return products, err
}
