package repositories

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/realtime"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	GetByReceiverID(ctx context.Context, receiverID uint, page, limit int) ([]models.Notification, int64, error)
	GetSince(ctx context.Context, receiverID uint, since time.Time, limit int) ([]models.Notification, error)
	IDsForReceiver(ctx context.Context, receiverID uint) ([]uint, error)
	AckedIDs(ctx context.Context, viewerID uint, ids []uint) ([]uint, error)
	MarkSeen(ctx context.Context, viewerID uint, ids []uint) error
}

type PostgresNotificationRepository struct {
	db *gorm.DB
	feed
}

func NewPostgresNotificationRepository(db *gorm.DB, pub realtime.Publisher, log *zap.Logger) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db, feed: newFeed(pub, log)}
}

func (r *PostgresNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return err
	}
	r.inserted(ctx, TableNotifications, notification)
	return nil
}

func (r *PostgresNotificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, notFound(err, "notification")
	}
	return &n, nil
}

func (r *PostgresNotificationRepository) GetByReceiverID(ctx context.Context, receiverID uint, page, limit int) ([]models.Notification, int64, error) {
	notifications := []models.Notification{}
	var total int64
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Notification{}).Where("receiver_id = ?", receiverID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Where("receiver_id = ?", receiverID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error

	return notifications, total, err
}

// GetSince returns notifications newer than since, newest first. A zero
// limit means no limit.
func (r *PostgresNotificationRepository) GetSince(ctx context.Context, receiverID uint, since time.Time, limit int) ([]models.Notification, error) {
	notifications := []models.Notification{}
	q := r.db.WithContext(ctx).Where("receiver_id = ?", receiverID)
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	q = q.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&notifications).Error
	return notifications, err
}

func (r *PostgresNotificationRepository) IDsForReceiver(ctx context.Context, receiverID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("receiver_id = ?", receiverID).
		Order("created_at DESC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *PostgresNotificationRepository) AckedIDs(ctx context.Context, viewerID uint, ids []uint) ([]uint, error) {
	var acked []uint
	if len(ids) == 0 {
		return acked, nil
	}
	err := r.db.WithContext(ctx).Model(&models.NotificationSeen{}).
		Where("viewer_id = ? AND notification_id IN ?", viewerID, ids).
		Pluck("notification_id", &acked).Error
	return acked, err
}

// MarkSeen inserts acknowledgement rows; existing rows are left alone.
func (r *PostgresNotificationRepository) MarkSeen(ctx context.Context, viewerID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	rows := make([]models.NotificationSeen, len(ids))
	for i, id := range ids {
		rows[i] = models.NotificationSeen{NotificationID: id, ViewerID: viewerID}
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
