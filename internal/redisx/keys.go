package redisx

import "time"

const (
	// Cart badge (distinct line count): cart_badge:{user_id} -> int
	KeyCartBadge = "cart_badge:%s"

	// Cache order status: order_status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLBadgeCache  = 5 * time.Minute
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
