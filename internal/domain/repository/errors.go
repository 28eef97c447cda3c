package repository

import "errors"

var (
	// ErrNotFound is returned when a cache or watch record is absent,
	// expired, or stored with an unreadable schema.
	ErrNotFound = errors.New("record not found")

	// ErrRateLimited is returned by the fare provider when the upstream
	// quota is exhausted. The caller must cool down before the next call.
	ErrRateLimited = errors.New("fare provider rate limited")

	// ErrUnreachable is returned by the notifier when the recipient is
	// permanently unreachable (blocked the bot or deleted the account).
	ErrUnreachable = errors.New("recipient unreachable")
)
