package entity

// WatchVersion is the current watch record schema version.
const WatchVersion = 1

// WatchEntry is a long-lived price watch subscription. LastPrice is only
// ever advanced after a successful notification; below-threshold drift is
// never absorbed into it, so the next comparison still runs against the
// last notified price.
type WatchEntry struct {
	Version       int    `json:"version"`
	UserID        int64  `json:"user_id"`
	Origin        string `json:"origin"`
	Dest          string `json:"dest"`
	DepartDate    string `json:"depart_date"`
	ReturnDate    string `json:"return_date,omitempty"`
	PassengerCode string `json:"passengers"`
	LastPrice     int    `json:"current_price"`
	Threshold     int    `json:"threshold"`
	CreatedAt     int64  `json:"created_at"`
	LastNotified  int64  `json:"last_notified"`
}
