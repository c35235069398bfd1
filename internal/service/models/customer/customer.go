package customer

import "time"

// Customer is the registered account behind a non-guest order. Only the
// creation time is needed by the feed.
type Customer struct {
	ID        int64
	CreatedAt time.Time
}

// Group is a customer group; its code becomes the feed's user segment.
type Group struct {
	ID   int64
	Code string
}
