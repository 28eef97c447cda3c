package repository

// All service keys share one namespace prefix so the store can be shared
// with unrelated data without collisions.
const (
	keyNamespace    = "farewatch:"
	searchKeyPrefix = keyNamespace + "search:"
	watchKeyPrefix  = keyNamespace + "watch:"
	userWatchPrefix = keyNamespace + "user:watches:"
	firstSeenKey    = keyNamespace + "first_seen"
)
