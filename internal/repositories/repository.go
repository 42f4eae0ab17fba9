package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/anonto42/socialshop/backend/internal/realtime"
	"github.com/anonto42/socialshop/backend/pkg/apperrors"
	"github.com/anonto42/socialshop/backend/pkg/changefeed"
)

// Table names published on the change feed.
const (
	TableUsers         = "users"
	TablePosts         = "posts"
	TableLikes         = "likes"
	TableComments      = "comments"
	TableFollows       = "follows"
	TableMessages      = "messages"
	TableNotifications = "notifications"
	TableStories       = "stories"
	TableOrders        = "orders"
	TableAddresses     = "addresses"
	TableReviews       = "reviews"
)

// feed is embedded by repositories that publish their writes.
type feed struct {
	pub realtime.Publisher
	log *zap.Logger
}

func newFeed(pub realtime.Publisher, log *zap.Logger) feed {
	if log == nil {
		log = zap.NewNop()
	}
	return feed{pub: pub, log: log}
}

func (f feed) inserted(ctx context.Context, table string, row any) {
	realtime.Emit(ctx, f.pub, f.log, table, changefeed.Insert, row, nil)
}

func (f feed) updated(ctx context.Context, table string, newRow, oldRow any) {
	realtime.Emit(ctx, f.pub, f.log, table, changefeed.Update, newRow, oldRow)
}

func (f feed) deleted(ctx context.Context, table string, oldRow any) {
	realtime.Emit(ctx, f.pub, f.log, table, changefeed.Delete, nil, oldRow)
}

// notFound turns driver "no rows" errors into apperrors.ErrNotFound.
func notFound(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.NotFound(what)
	}
	return err
}

func objectID(id, what string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.Invalid("invalid " + what + " id")
	}
	return oid, nil
}
