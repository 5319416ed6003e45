// Command seed fills the vendors and users collections with a ring of test
// vendors around a fixed point and prints bearer tokens for local testing.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"time"

	"caresaviour/config"
	"caresaviour/database"
	"caresaviour/database/repository"
	"caresaviour/models"
	"caresaviour/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func main() {
	lon := flag.Float64("lon", 72.8777, "centre longitude")
	lat := flag.Float64("lat", 19.0760, "centre latitude")
	perService := flag.Int("per-service", 10, "vendors per service type")
	maxKm := flag.Float64("max-km", 9.0, "distance of the furthest vendor")
	flag.Parse()

	config.LoadConfig()
	logger := utils.GetLogger()
	database.InitDB()
	defer database.CloseDB(context.Background())

	db := database.DB()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	for _, name := range []string{"vendors", "users"} {
		if _, err := db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			logger.Fatal("failed to clear collection", zap.String("collection", name), zap.Error(err))
		}
	}

	// Building the repo creates the 2dsphere index the dispatch query needs.
	_ = repository.NewMongoVendorRepo()

	vendors := ringOfVendors(*lon, *lat, *perService, *maxKm)
	docs := make([]interface{}, 0, len(vendors))
	for _, v := range vendors {
		docs = append(docs, v)
	}
	if _, err := db.Collection("vendors").InsertMany(ctx, docs); err != nil {
		logger.Fatal("failed to insert vendors", zap.Error(err))
	}

	customer := models.User{
		ID:       uuid.New().String(),
		Name:     "Seed Customer",
		Phone:    "9800000000",
		Address:  "Seed Street",
		Location: models.NewGeoPoint(*lon, *lat),
	}
	if _, err := db.Collection("users").InsertOne(ctx, customer); err != nil {
		logger.Fatal("failed to insert user", zap.Error(err))
	}

	logger.Info("seed complete", zap.Int("vendors", len(vendors)), zap.String("customer", customer.ID))

	printToken(models.Caller{ID: customer.ID, Role: models.RoleUser, Name: customer.Name, Phone: customer.Phone})
	for i, v := range vendors {
		if i == 3 {
			break
		}
		printToken(models.Caller{ID: v.ID, Role: models.RoleVendor, Name: v.Name, Phone: v.Phone})
	}
}

// ringOfVendors spaces vendors linearly from maxKm down to ~0.01 km from the
// centre at random bearings. Every fifth vendor is unverified and every
// seventh is offline, so dispatch filtering can be observed.
func ringOfVendors(lon, lat float64, perService int, maxKm float64) []models.Vendor {
	serviceTypes := []models.ServiceType{models.ServiceDoctor, models.ServiceNurse, models.ServiceAmbulance}
	total := len(serviceTypes) * perService
	minKm := 0.01
	spacing := 0.0
	if total > 1 {
		spacing = (maxKm - minKm) / float64(total-1)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	vendors := make([]models.Vendor, 0, total)
	counter := 1

	for _, service := range serviceTypes {
		for i := 1; i <= perService; i++ {
			distanceKm := maxKm - spacing*float64(counter-1)
			angle := rng.Float64() * 2 * math.Pi

			// 1 km is ~0.009 degrees of latitude; longitude shrinks with cos(lat).
			deltaLat := distanceKm * 0.009 * math.Sin(angle)
			deltaLon := distanceKm * 0.009 / math.Cos(lat*math.Pi/180) * math.Cos(angle)

			vendors = append(vendors, models.Vendor{
				ID:          uuid.New().String(),
				Name:        fmt.Sprintf("%s Vendor %d", service, counter),
				Phone:       fmt.Sprintf("900000%04d", counter),
				ServiceType: service,
				Address:     fmt.Sprintf("%.2f km from centre", distanceKm),
				IsVerified:  counter%5 != 0,
				IsAvailable: counter%7 != 0,
				Location:    models.NewGeoPoint(lon+deltaLon, lat+deltaLat),
			})
			counter++
		}
	}
	return vendors
}

func printToken(caller models.Caller) {
	token, err := utils.GenerateCallerToken(caller, 24*time.Hour)
	if err != nil {
		utils.GetLogger().Error("failed to sign token", zap.String("id", caller.ID), zap.Error(err))
		return
	}
	fmt.Printf("%-7s %-22s %s\n", caller.Role, caller.Name, token)
}
