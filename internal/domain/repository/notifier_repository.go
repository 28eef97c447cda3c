package repository

import "context"

// NotifierRepository delivers price-change notifications through the chat
// transport. A permanently unreachable recipient surfaces as
// ErrUnreachable; transient delivery problems surface as ordinary errors.
type NotifierRepository interface {
	Notify(ctx context.Context, userID int64, message string) error
}
