package repositories

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/realtime"
)

type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	// GetConversation returns the messages of a conversation, oldest first.
	GetConversation(ctx context.Context, conversationID string, skip, limit int) ([]models.Message, error)
	// GetInvolving returns messages sent or received by userID, newest first.
	GetInvolving(ctx context.Context, userID uint) ([]models.Message, error)
	// ReceivedIDs lists the ids of messages in a conversation addressed to receiverID.
	ReceivedIDs(ctx context.Context, conversationID string, receiverID uint) ([]uint, error)
	AckedIDs(ctx context.Context, viewerID uint, ids []uint) ([]uint, error)
	MarkSeen(ctx context.Context, viewerID uint, ids []uint) error
}

type PostgresMessageRepository struct {
	db *gorm.DB
	feed
}

func NewPostgresMessageRepository(db *gorm.DB, pub realtime.Publisher, log *zap.Logger) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db, feed: newFeed(pub, log)}
}

func (r *PostgresMessageRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return err
	}
	r.inserted(ctx, TableMessages, msg)
	return nil
}

func (r *PostgresMessageRepository) GetConversation(ctx context.Context, conversationID string, skip, limit int) ([]models.Message, error) {
	messages := []models.Message{}
	q := r.db.WithContext(ctx).Where("conversation_id = ?", conversationID).Order("created_at ASC, id ASC")
	if skip > 0 {
		q = q.Offset(skip)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&messages).Error
	return messages, err
}

func (r *PostgresMessageRepository) GetInvolving(ctx context.Context, userID uint) ([]models.Message, error) {
	messages := []models.Message{}
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&messages).Error
	return messages, err
}

func (r *PostgresMessageRepository) ReceivedIDs(ctx context.Context, conversationID string, receiverID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ?", conversationID, receiverID).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *PostgresMessageRepository) AckedIDs(ctx context.Context, viewerID uint, ids []uint) ([]uint, error) {
	var acked []uint
	if len(ids) == 0 {
		return acked, nil
	}
	err := r.db.WithContext(ctx).Model(&models.MessageSeen{}).
		Where("viewer_id = ? AND message_id IN ?", viewerID, ids).
		Pluck("message_id", &acked).Error
	return acked, err
}

func (r *PostgresMessageRepository) MarkSeen(ctx context.Context, viewerID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	rows := make([]models.MessageSeen, len(ids))
	for i, id := range ids {
		rows[i] = models.MessageSeen{MessageID: id, ViewerID: viewerID}
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
