package domain

// VehicleRetired vehicles stay on old bookings but cannot be picked for new ones.
const VehicleRetired = "retired"

// Vehicle is a fleet entry a booking may reference.
type Vehicle struct {
	ID           string `json:"id"`
	LicensePlate string `json:"license_plate"`
	VehicleName  string `json:"vehicle_name"`
	VehicleType  string `json:"vehicle_type"`
	Status       string `json:"status"`
}
