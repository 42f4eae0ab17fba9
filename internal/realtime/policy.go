package realtime

import (
	"strconv"
	"strings"

	"github.com/anonto42/socialshop/backend/pkg/apperrors"
	"github.com/anonto42/socialshop/backend/pkg/changefeed"
)

// Policy decides whether userID may subscribe to table with filter.
type Policy func(userID uint, table string, filter changefeed.Filter) error

// Tables that carry private rows and the column that must pin them to the
// subscriber.
var ownerColumns = map[string]string{
	"notifications": "receiver_id",
	"orders":        "user_id",
	"addresses":     "user_id",
}

// DefaultPolicy scopes private tables to the subscriber and leaves the rest
// public.
func DefaultPolicy(userID uint, table string, filter changefeed.Filter) error {
	self := strconv.FormatUint(uint64(userID), 10)

	if table == "messages" {
		switch filter.Column {
		case "sender_id", "receiver_id":
			if filter.Value == self {
				return nil
			}
		case "conversation_id":
			a, b, ok := strings.Cut(filter.Value, "_")
			if ok && (a == self || b == self) {
				return nil
			}
		}
		return apperrors.Forbidden("messages subscriptions must be scoped to your own conversations")
	}

	if col, private := ownerColumns[table]; private {
		if filter.Column != col || filter.Value != self {
			return apperrors.Forbidden(table + " subscriptions require " + col + "=eq." + self)
		}
	}
	return nil
}
