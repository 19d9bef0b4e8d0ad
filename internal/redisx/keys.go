package redisx

import "time"

const (
	// Pub/sub channel shared by every API instance: pos:events -> JSON orders.Event
	ChannelEvents = "pos:events"

	// Dedup of ticket processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLDedup = 48 * time.Hour
)
