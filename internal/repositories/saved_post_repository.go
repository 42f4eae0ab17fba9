package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anonto42/socialshop/backend/internal/models"
)

// SavedPostRepository defines the interface for saved post operations
type SavedPostRepository interface {
	SavePost(ctx context.Context, savedPost *models.SavedPost) error
	UnsavePost(ctx context.Context, userID uint, postID string) error
	DeleteByPostID(ctx context.Context, postID string) error
	IsPostSaved(ctx context.Context, userID uint, postID string) (bool, error)
	GetSavedPostsByUser(ctx context.Context, userID uint) ([]models.SavedPost, error)
	GetSavedPostIDs(ctx context.Context, userID uint, postIDs []string) (map[string]bool, error)
}

// PostgresSavedPostRepository implements SavedPostRepository
type PostgresSavedPostRepository struct {
	db *gorm.DB
}

func NewPostgresSavedPostRepository(db *gorm.DB) *PostgresSavedPostRepository {
	return &PostgresSavedPostRepository{db: db}
}

// SavePost is idempotent: saving twice keeps one row.
func (r *PostgresSavedPostRepository) SavePost(ctx context.Context, savedPost *models.SavedPost) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(savedPost).Error
}

func (r *PostgresSavedPostRepository) UnsavePost(ctx context.Context, userID uint, postID string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.SavedPost{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "saved post")
	}
	return nil
}

func (r *PostgresSavedPostRepository) DeleteByPostID(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.SavedPost{}).Error
}

func (r *PostgresSavedPostRepository) IsPostSaved(ctx context.Context, userID uint, postID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SavedPost{}).Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error
	return count > 0, err
}

func (r *PostgresSavedPostRepository) GetSavedPostsByUser(ctx context.Context, userID uint) ([]models.SavedPost, error) {
	saved := []models.SavedPost{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&saved).Error
	return saved, err
}

func (r *PostgresSavedPostRepository) GetSavedPostIDs(ctx context.Context, userID uint, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(postIDs) == 0 {
		return result, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.SavedPost{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}
