package routes

import (
	"time"

	"caresaviour/handlers"
	"caresaviour/middleware"
	"caresaviour/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes sets up the endpoints for the booking lifecycle.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/booking")
	{
		bookingGroup.Use(middleware.JWTAuthMiddleware(hb.AuthCache))
		bookingGroup.POST("/create", middleware.RequireRole(models.RoleUser), hb.Booking.CreateBooking)
		bookingGroup.PATCH("/accept", middleware.RequireRole(models.RoleVendor), hb.Booking.AcceptBooking)
		bookingGroup.POST("/start-job", middleware.RequireRole(models.RoleVendor), hb.Booking.StartJob)
		bookingGroup.POST("/complete-job", middleware.RequireRole(models.RoleVendor), hb.Booking.CompleteJob)
		bookingGroup.PUT("/cancel", hb.Booking.CancelBooking)
		bookingGroup.PUT("/update", hb.Booking.UpdateBooking)
		bookingGroup.GET("/my-bookings", hb.Booking.MyBookings)
		bookingGroup.GET("/:id", hb.Booking.GetBookingDetails)
	}
}

// RegisterUserRoutes registers customer facing lookups.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/user")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.AuthCache))
		api.POST("/nearby-vendors", hb.Booking.NearbyVendors)
	}
}

// RegisterNotificationRoutes registers the notification inbox.
func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/notifications")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.AuthCache))
		api.GET("", hb.Notifications.ListNotifications)
		api.GET("/unread-count", hb.Notifications.UnreadCount)
		api.PUT("/:id/read", hb.Notifications.MarkRead)
	}
}

// RegisterRealtimeRoute registers the websocket endpoint. Browsers pass the
// token as a query parameter since they cannot set headers on the upgrade.
func RegisterRealtimeRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/ws", middleware.JWTAuthMiddleware(hb.AuthCache), hb.Realtime.Connect)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.Health)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterBookingRoutes(r, hb)
	RegisterUserRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
	RegisterRealtimeRoute(r, hb)
}
