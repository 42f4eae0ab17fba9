package repositories

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/realtime"
)

type ReviewRepository interface {
	GetByProductID(ctx context.Context, productID uint) ([]models.Review, error)
	GetByProductAndUser(ctx context.Context, productID, userID uint) (*models.Review, error)
	// Upsert writes rating and comment for the (product, user) pair.
	Upsert(ctx context.Context, review *models.Review) error
	Summary(ctx context.Context, productID uint) (models.ReviewSummary, error)
}

type PostgresReviewRepository struct {
	db *gorm.DB
	feed
}

func NewPostgresReviewRepository(db *gorm.DB, pub realtime.Publisher, log *zap.Logger) *PostgresReviewRepository {
	return &PostgresReviewRepository{db: db, feed: newFeed(pub, log)}
}

func (r *PostgresReviewRepository) GetByProductID(ctx context.Context, productID uint) ([]models.Review, error) {
	reviews := []models.Review{}
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("updated_at DESC").Find(&reviews).Error
	return reviews, err
}

func (r *PostgresReviewRepository) GetByProductAndUser(ctx context.Context, productID, userID uint) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).Where("product_id = ? AND user_id = ?", productID, userID).First(&review).Error; err != nil {
		return nil, notFound(err, "review")
	}
	return &review, nil
}

func (r *PostgresReviewRepository) Upsert(ctx context.Context, review *models.Review) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
	}).Create(review).Error
	if err != nil {
		return err
	}
	r.updated(ctx, TableReviews, review, nil)
	return nil
}

type ratingBucket struct {
	Rating int
	Count  int64
}

// Summary ignores rows without a rating (a comment-only review).
func (r *PostgresReviewRepository) Summary(ctx context.Context, productID uint) (models.ReviewSummary, error) {
	var summary models.ReviewSummary
	var buckets []ratingBucket
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("rating, COUNT(*) AS count").
		Where("product_id = ? AND rating BETWEEN 1 AND 5", productID).
		Group("rating").
		Scan(&buckets).Error
	if err != nil {
		return summary, err
	}
	var total int64
	for _, b := range buckets {
		summary.Histogram[b.Rating-1] = b.Count
		summary.Count += b.Count
		total += int64(b.Rating) * b.Count
	}
	if summary.Count > 0 {
		summary.Average = float64(total) / float64(summary.Count)
	}
	return summary, nil
}
