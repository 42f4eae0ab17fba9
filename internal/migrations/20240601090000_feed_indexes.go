package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upFeedIndexes, downFeedIndexes)
}

// Composite indexes for the list queries gorm tags cannot express.
func upFeedIndexes(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	CREATE INDEX IF NOT EXISTS idx_messages_conversation_created ON messages (conversation_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_messages_receiver_conversation ON messages (receiver_id, conversation_id);
	CREATE INDEX IF NOT EXISTS idx_notifications_receiver_created ON notifications (receiver_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders (user_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_products_category_created ON products (category, created_at DESC);
	`)
	return err
}

func downFeedIndexes(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	DROP INDEX IF EXISTS idx_messages_conversation_created;
	DROP INDEX IF EXISTS idx_messages_receiver_conversation;
	DROP INDEX IF EXISTS idx_notifications_receiver_created;
	DROP INDEX IF EXISTS idx_orders_user_created;
	DROP INDEX IF EXISTS idx_products_category_created;
	`)
	return err
}
