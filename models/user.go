package models

// User is the customer profile as far as this service needs it: push delivery
// reads the device token, nothing else is consulted.
type User struct {
	ID       string   `bson:"id" json:"id"`
	Name     string   `bson:"name" json:"name"`
	Phone    string   `bson:"phone" json:"phone"`
	Address  string   `bson:"address,omitempty" json:"address,omitempty"`
	Location GeoPoint `bson:"location,omitempty" json:"location,omitempty"`
	FCMToken string   `bson:"fcmToken,omitempty" json:"-"`
}
