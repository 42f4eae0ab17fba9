package repositories

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/realtime"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	// CreateFollow reports whether a new edge was created.
	CreateFollow(ctx context.Context, follow *models.Follow) (bool, error)
	DeleteFollow(ctx context.Context, followerID, followingID uint) error
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	GetFollowers(ctx context.Context, userID uint) ([]models.User, error)
	GetFollowing(ctx context.Context, userID uint) ([]models.User, error)
	GetCounts(ctx context.Context, userID uint) (models.FollowCounts, error)
	GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
	feed
}

func NewPostgresFollowRepository(db *gorm.DB, pub realtime.Publisher, log *zap.Logger) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db, feed: newFeed(pub, log)}
}

func (r *PostgresFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(follow)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	r.inserted(ctx, TableFollows, follow)
	return true, nil
}

func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID uint) error {
	var old []models.Follow
	res := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&old)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "follow relationship")
	}
	for i := range old {
		r.deleted(ctx, TableFollows, &old[i])
	}
	return nil
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ? AND following_id = ?", followerID, followingID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresFollowRepository) GetFollowers(ctx context.Context, userID uint) ([]models.User, error) {
	users := []models.User{}
	db := r.db.WithContext(ctx)
	err := db.Where("id IN (?)",
		db.Table("follows").Select("follower_id").Where("following_id = ?", userID),
	).Find(&users).Error
	return users, err
}

func (r *PostgresFollowRepository) GetFollowing(ctx context.Context, userID uint) ([]models.User, error) {
	users := []models.User{}
	db := r.db.WithContext(ctx)
	err := db.Where("id IN (?)",
		db.Table("follows").Select("following_id").Where("follower_id = ?", userID),
	).Find(&users).Error
	return users, err
}

// GetCounts derives both counts from the follows table.
func (r *PostgresFollowRepository) GetCounts(ctx context.Context, userID uint) (models.FollowCounts, error) {
	var counts models.FollowCounts
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Follow{}).Where("following_id = ?", userID).Count(&counts.Followers).Error; err != nil {
		return counts, err
	}
	err := db.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&counts.Following).Error
	return counts, err
}

func (r *PostgresFollowRepository) GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Pluck("following_id", &ids).Error
	return ids, err
}
