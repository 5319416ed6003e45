package handlers

import (
	"github.com/go-redis/redis/v8"
)

// HandlerBundle groups every endpoint handler the router needs.
type HandlerBundle struct {
	// AuthCache backs the JWT middleware; nil disables caching.
	AuthCache *redis.Client

	Booking       *BookingHandler
	Notifications *NotificationHandler
	Realtime      *RealtimeHandler
}
