package repository

import (
	bookingRepo "caresaviour/database/repository/booking"
	notificationRepo "caresaviour/database/repository/notification"
	userRepo "caresaviour/database/repository/user"
	vendorRepo "caresaviour/database/repository/vendor"
)

// Re-export the BookingRepository interface and constructor.
type BookingRepository = bookingRepo.BookingRepository

var NewMongoBookingRepo = bookingRepo.NewMongoBookingRepo

// Re-export the VendorRepository interface and constructor.
type VendorRepository = vendorRepo.VendorRepository

type VendorSearchCriteria = vendorRepo.VendorSearchCriteria

var NewMongoVendorRepo = vendorRepo.NewMongoVendorRepo

// Re-export the NotificationRepository interface and constructor.
type NotificationRepository = notificationRepo.NotificationRepository

var NewMongoNotificationRepo = notificationRepo.NewMongoNotificationRepo

// Re-export the UserRepository interface and constructor.
type UserRepository = userRepo.UserRepository

var NewMongoUserRepo = userRepo.NewMongoUserRepo
