package main

import (
	"context"
	"log"
	"time"

	"bookxe/internal/config"
	"bookxe/internal/database"
	"bookxe/internal/domain"
	"bookxe/internal/modules/approval"
	"bookxe/internal/modules/booking"
	"bookxe/internal/modules/notification"
	jwtsvc "bookxe/internal/pkg/jwt"
	"bookxe/internal/repository"
)

var demoUsers = []domain.Actor{
	{ID: "00000000-0000-4000-8000-000000000001", Role: domain.RoleStaff},
	{ID: "00000000-0000-4000-8000-000000000002", Role: domain.RoleManagerViet},
	{ID: "00000000-0000-4000-8000-000000000003", Role: domain.RoleManagerKorea},
	{ID: "00000000-0000-4000-8000-000000000004", Role: domain.RoleAdmin},
}

var vehicles = []domain.Vehicle{
	{ID: "veh-county", LicensePlate: "15B-024.68", VehicleName: "Hyundai County", VehicleType: "bus", Status: "available"},
	{ID: "veh-innova", LicensePlate: "29A-135.79", VehicleName: "Toyota Innova", VehicleType: "car", Status: "available"},
	{ID: "veh-porter", LicensePlate: "15C-112.23", VehicleName: "Hyundai Porter", VehicleType: "truck", Status: "available"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	if err := database.Migrate(db, cfg.DatabaseURL); err != nil {
		log.Fatal("migrate failed:", err)
	}

	ctx := context.Background()

	log.Println("Upserting vehicles...")
	vehicleRepo := repository.NewVehicleRepository(db)
	for _, v := range vehicles {
		if err := vehicleRepo.Upsert(ctx, v); err != nil {
			log.Fatalf("vehicle %s: %v", v.ID, err)
		}
	}

	notifications := notification.NewService(repository.NewNotificationRepository(db))
	svc := booking.NewService(repository.NewBookingRepository(db), notifications)
	staff, viet, korea, admin := demoUsers[0], demoUsers[1], demoUsers[2], demoUsers[3]

	log.Println("Creating demo bookings...")
	now := time.Now().UTC()
	county := vehicles[0].ID
	porter := vehicles[2].ID

	create := func(dest string, travel time.Time, vehicleID *string) string {
		res, err := svc.Create(ctx, staff, booking.CreateBookingRequest{
			RequesterName:       "Nguyễn Văn An",
			RequesterDepartment: "Sản xuất",
			VehicleID:           vehicleID,
			Destination:         dest,
			TravelTime:          travel,
			Reason:              "Công tác",
		})
		if err != nil {
			log.Fatalf("create %s: %v", dest, err)
		}
		return res.Booking.ID
	}
	act := func(id string, actor domain.Actor, action approval.Action) {
		if _, err := svc.Act(ctx, id, actor, action); err != nil {
			log.Fatalf("%s %s by %s: %v", action, id, actor.Role, err)
		}
	}

	create("Hải Phòng", now.Add(26*time.Hour), &county)

	id := create("Bắc Ninh", now.Add(50*time.Hour), &county)
	act(id, viet, approval.ActionApprove)

	id = create("Hà Nội", now.Add(74*time.Hour), &porter)
	act(id, viet, approval.ActionApprove)
	act(id, korea, approval.ActionApprove)
	act(id, admin, approval.ActionApprove)

	id = create("Quảng Ninh", now.Add(98*time.Hour), nil)
	act(id, viet, approval.ActionApprove)
	act(id, korea, approval.ActionReject)

	// Left for the sweeper.
	create("Hưng Yên", now.Add(-30*time.Hour), nil)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	log.Println("Dev tokens:")
	for _, u := range demoUsers {
		token, err := j.GenerateToken(u.ID, string(u.Role))
		if err != nil {
			log.Fatalf("token for %s: %v", u.Role, err)
		}
		log.Printf("  %-13s %s", u.Role, token)
	}
	log.Println("Seed completed")
}
