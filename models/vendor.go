package models

// Vendor is read-only to the dispatch core.
type Vendor struct {
	ID          string      `bson:"id" json:"id"`
	Name        string      `bson:"name" json:"name"`
	Phone       string      `bson:"phone" json:"phone"`
	ServiceType ServiceType `bson:"serviceType" json:"serviceType"`
	Address     string      `bson:"address,omitempty" json:"address,omitempty"`
	IsVerified  bool        `bson:"isVerified" json:"isVerified"`
	IsAvailable bool        `bson:"isAvailable" json:"isAvailable"`
	Location    GeoPoint    `bson:"location" json:"location"`
	FCMToken    string      `bson:"fcmToken,omitempty" json:"-"`
}

// VendorDTO is a vendor as returned by proximity searches.
type VendorDTO struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Phone       string      `json:"phone,omitempty"`
	ServiceType ServiceType `json:"serviceType"`
	Location    GeoPoint    `json:"location"`
	Proximity   float64     `json:"proximity"` // metres from the search centre
}
