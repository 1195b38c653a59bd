package booking

import (
	"time"

	"bookxe/internal/domain"
)

type CreateBookingRequest struct {
	RequesterName       string    `json:"requester_name" validate:"required,max=200"`
	RequesterDepartment string    `json:"requester_department" validate:"max=200"`
	VehicleID           *string   `json:"vehicle_id" validate:"omitempty,min=1,max=64"`
	VehicleType         string    `json:"vehicle_type" validate:"omitempty,max=50"`
	DriverInfo          string    `json:"driver_info" validate:"max=200"`
	Destination         string    `json:"destination" validate:"required,max=500"`
	TravelTime          time.Time `json:"travel_time" validate:"required"`
	CargoType           string    `json:"cargo_type" validate:"max=100"`
	CargoWeight         string    `json:"cargo_weight" validate:"max=50"`
	Reason              string    `json:"reason" validate:"max=2000"`
}

// Result is a committed booking plus any notification side effects that failed.
type Result struct {
	Booking  *domain.BookingRequest `json:"booking"`
	Warnings []string               `json:"warnings,omitempty"`
}

// Page is one window of a booking listing plus the total number of matches.
type Page struct {
	Bookings []domain.BookingRequest
	Total    int64
	Limit    int
	Offset   int
}
