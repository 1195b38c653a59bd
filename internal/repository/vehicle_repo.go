package repository

import (
	"context"

	"bookxe/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// Upsert inserts v or refreshes its display fields when the id exists.
func (r *VehicleRepository) Upsert(ctx context.Context, v domain.Vehicle) error {
	m := vehicleModel{
		ID:           v.ID,
		LicensePlate: v.LicensePlate,
		VehicleName:  v.VehicleName,
		VehicleType:  v.VehicleType,
		Status:       v.Status,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"license_plate", "vehicle_name", "vehicle_type", "status"}),
	}).Create(&m).Error
	if err != nil {
		return annotate("upsert vehicle", err)
	}
	return nil
}

// ListBookable returns every vehicle that is not retired, by name.
func (r *VehicleRepository) ListBookable(ctx context.Context) ([]domain.Vehicle, error) {
	var rows []vehicleModel
	err := r.db.WithContext(ctx).
		Where("status <> ?", domain.VehicleRetired).
		Order("vehicle_name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, annotate("list vehicles", err)
	}
	out := make([]domain.Vehicle, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.Vehicle{
			ID:           m.ID,
			LicensePlate: m.LicensePlate,
			VehicleName:  m.VehicleName,
			VehicleType:  m.VehicleType,
			Status:       m.Status,
		})
	}
	return out, nil
}
