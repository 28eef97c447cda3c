package repository

import "context"

// UserRepository tracks which users have interacted with the service
// before. FirstSeen marks the user and reports whether this was their
// first interaction.
type UserRepository interface {
	FirstSeen(ctx context.Context, userID int64) (bool, error)
}
