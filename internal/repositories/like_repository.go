package repositories

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/realtime"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	// CreateLike inserts the (post, user) row if absent and reports whether
	// a row was created.
	CreateLike(ctx context.Context, like *models.Like) (bool, error)
	DeleteLike(ctx context.Context, postID string, userID uint) error
	DeleteLikesByPostID(ctx context.Context, postID string) error
	GetLikesByPostID(ctx context.Context, postID string) ([]models.Like, error)
	GetLikesCountByPostID(ctx context.Context, postID string) (int64, error)
	CountByPostIDs(ctx context.Context, postIDs []string) (map[string]int64, error)
	LikedPostIDs(ctx context.Context, userID uint, postIDs []string) (map[string]bool, error)
	HasUserLikedPost(ctx context.Context, postID string, userID uint) (bool, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
	feed
}

func NewPostgresLikeRepository(db *gorm.DB, pub realtime.Publisher, log *zap.Logger) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db, feed: newFeed(pub, log)}
}

func (r *PostgresLikeRepository) CreateLike(ctx context.Context, like *models.Like) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(like)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	r.inserted(ctx, TableLikes, like)
	return true, nil
}

// DeleteLike removes the join row. Unliking something not liked is a no-op.
func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, postID string, userID uint) error {
	var old []models.Like
	res := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&old)
	if res.Error != nil {
		return res.Error
	}
	for i := range old {
		r.deleted(ctx, TableLikes, &old[i])
	}
	return nil
}

func (r *PostgresLikeRepository) DeleteLikesByPostID(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Like{}).Error
}

func (r *PostgresLikeRepository) GetLikesByPostID(ctx context.Context, postID string) ([]models.Like, error) {
	likes := []models.Like{}
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at DESC").Find(&likes).Error; err != nil {
		return nil, err
	}
	return likes, nil
}

func (r *PostgresLikeRepository) GetLikesCountByPostID(ctx context.Context, postID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type postCount struct {
	PostID string
	Count  int64
}

func (r *PostgresLikeRepository) CountByPostIDs(ctx context.Context, postIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var rows []postCount
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.PostID] = row.Count
	}
	return out, nil
}

func (r *PostgresLikeRepository) LikedPostIDs(ctx context.Context, userID uint, postIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *PostgresLikeRepository) HasUserLikedPost(ctx context.Context, postID string, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
