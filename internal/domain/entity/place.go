package entity

import (
	"time"
)

// Place maps a city name to its metropolitan IATA code. Hub places form
// the fixed candidate pool for "everywhere" searches; HubRank orders them,
// zero means not a hub.
type Place struct {
	ID        uint
	City      string
	Code      string
	HubRank   int
	CreatedAt time.Time
	UpdatedAt time.Time
}
