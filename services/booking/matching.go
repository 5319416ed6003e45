package booking

import (
	"context"
	"fmt"
	"math"

	"caresaviour/database/repository"
	"caresaviour/models"
)

// VendorCandidate is a vendor eligible for an offer and its distance from the booking.
type VendorCandidate struct {
	Vendor         models.Vendor
	DistanceMeters float64
}

// MatchingService is the geo lookup behind dispatch.
type MatchingService interface {
	// FindCandidates returns verified, available vendors of serviceType within
	// radiusMeters of point. No match is an empty slice, not an error.
	FindCandidates(ctx context.Context, point models.GeoPoint, serviceType models.ServiceType, radiusMeters float64) ([]VendorCandidate, error)
	// NearbyVendors is the customer-facing preview. It does not filter on
	// verification or availability.
	NearbyVendors(ctx context.Context, point models.GeoPoint, serviceType models.ServiceType) ([]models.VendorDTO, error)
}

// DefaultMatchingService implements MatchingService.
type DefaultMatchingService struct {
	VendorRepo   repository.VendorRepository
	RadiusMeters float64
}

func (s *DefaultMatchingService) radius() float64 {
	if s.RadiusMeters > 0 {
		return s.RadiusMeters
	}
	return DefaultRadiusMeters
}

func (s *DefaultMatchingService) FindCandidates(ctx context.Context, point models.GeoPoint, serviceType models.ServiceType, radiusMeters float64) ([]VendorCandidate, error) {
	if !point.Valid() {
		return nil, fmt.Errorf("invalid search center coordinates")
	}
	if radiusMeters <= 0 {
		radiusMeters = s.radius()
	}
	vendors, err := s.VendorRepo.FindNear(ctx, repository.VendorSearchCriteria{
		ServiceType:       serviceType,
		Near:              point,
		MaxDistanceMeters: radiusMeters,
		OnlyDispatchable:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to match vendors: %w", err)
	}

	candidates := make([]VendorCandidate, 0, len(vendors))
	for _, v := range vendors {
		candidates = append(candidates, VendorCandidate{
			Vendor:         v,
			DistanceMeters: distanceMeters(point, v.Location),
		})
	}
	return candidates, nil
}

func (s *DefaultMatchingService) NearbyVendors(ctx context.Context, point models.GeoPoint, serviceType models.ServiceType) ([]models.VendorDTO, error) {
	if !point.Valid() {
		return nil, fmt.Errorf("invalid search center coordinates")
	}
	vendors, err := s.VendorRepo.FindNear(ctx, repository.VendorSearchCriteria{
		ServiceType:       serviceType,
		Near:              point,
		MaxDistanceMeters: s.radius(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find nearby vendors: %w", err)
	}

	dtos := make([]models.VendorDTO, 0, len(vendors))
	for _, v := range vendors {
		dtos = append(dtos, models.VendorDTO{
			ID:          v.ID,
			Name:        v.Name,
			Phone:       v.Phone,
			ServiceType: v.ServiceType,
			Location:    v.Location,
			Proximity:   distanceMeters(point, v.Location),
		})
	}
	return dtos, nil
}

func distanceMeters(from, to models.GeoPoint) float64 {
	if len(to.Coordinates) < 2 {
		return 0
	}
	return haversine(from.Latitude(), from.Longitude(), to.Latitude(), to.Longitude()) * 1000
}

// haversine returns the great-circle distance in km.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371
	dLat := (lat2 - lat1) * (math.Pi / 180)
	dLon := (lon2 - lon1) * (math.Pi / 180)
	lat1Rad := lat1 * (math.Pi / 180)
	lat2Rad := lat2 * (math.Pi / 180)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}
