package repository

import (
	"context"

	"farewatch-service/internal/domain/entity"
)

// FareRepository is the client for the upstream fare-search API. Dates are
// YYYY-MM-DD; returnDate may be empty for one-way. A quota-exhausted
// response surfaces as ErrRateLimited; other upstream failures surface as
// ordinary errors. The provider keeps no state between calls.
type FareRepository interface {
	Search(ctx context.Context, origin, dest, departDate, returnDate string) ([]entity.FareOffer, error)
}
