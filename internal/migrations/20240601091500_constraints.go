package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upConstraints, downConstraints)
}

func upConstraints(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	ALTER TABLE reviews DROP CONSTRAINT IF EXISTS chk_reviews_rating;
	ALTER TABLE reviews ADD CONSTRAINT chk_reviews_rating CHECK (rating BETWEEN 0 AND 5);
	ALTER TABLE follows DROP CONSTRAINT IF EXISTS chk_follows_not_self;
	ALTER TABLE follows ADD CONSTRAINT chk_follows_not_self CHECK (follower_id <> following_id);
	ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_total;
	ALTER TABLE orders ADD CONSTRAINT chk_orders_total CHECK (total_cents = subtotal_cents + tax_cents + shipping_cents);
	`)
	return err
}

func downConstraints(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	ALTER TABLE reviews DROP CONSTRAINT IF EXISTS chk_reviews_rating;
	ALTER TABLE follows DROP CONSTRAINT IF EXISTS chk_follows_not_self;
	ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_total;
	`)
	return err
}
