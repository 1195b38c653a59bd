package repository

import (
	"context"
	"errors"
	"time"

	"bookxe/internal/domain"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID                  string     `gorm:"column:id;primaryKey;type:varchar(36)"`
	RequesterID         string     `gorm:"column:requester_id;index"`
	RequesterName       string     `gorm:"column:requester_name"`
	RequesterDepartment string     `gorm:"column:requester_department"`
	VehicleID           *string    `gorm:"column:vehicle_id"`
	VehicleType         string     `gorm:"column:vehicle_type"`
	DriverInfo          string     `gorm:"column:driver_info"`
	Destination         string     `gorm:"column:destination"`
	TravelTime          time.Time  `gorm:"column:travel_time;index"`
	CargoType           *string    `gorm:"column:cargo_type"`
	CargoWeight         *string    `gorm:"column:cargo_weight"`
	Reason              *string    `gorm:"column:reason;type:text"`
	Status              string     `gorm:"column:status;index"`
	VietStage           string     `gorm:"column:viet_approval_status"`
	KoreaStage          string     `gorm:"column:korea_approval_status"`
	AdminStage          string     `gorm:"column:admin_approval_status"`
	ApproverVietID      *string    `gorm:"column:approver_viet_id"`
	ApproverKoreaID     *string    `gorm:"column:approver_korea_id"`
	ApprovedBy          *string    `gorm:"column:approved_by"`
	ApprovedAt          *time.Time `gorm:"column:approved_at"`
	RejectedBy          *string    `gorm:"column:rejected_by"`
	CancellationReason  *string    `gorm:"column:cancellation_reason;type:text"`
	CreatedAt           time.Time  `gorm:"column:created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at"`
	ResolvedAt          *time.Time `gorm:"column:resolved_at"`
}

func (bookingModel) TableName() string { return "bookings" }

// vehicleModel is read only here; the vehicle registry owns the table.
type vehicleModel struct {
	ID           string `gorm:"column:id;primaryKey;type:varchar(36)"`
	LicensePlate string `gorm:"column:license_plate"`
	VehicleName  string `gorm:"column:vehicle_name"`
	VehicleType  string `gorm:"column:vehicle_type"`
	Status       string `gorm:"column:status"`
}

func (vehicleModel) TableName() string { return "vehicles" }

func toDomainBooking(m bookingModel) *domain.BookingRequest {
	return &domain.BookingRequest{
		ID:                  m.ID,
		RequesterID:         m.RequesterID,
		RequesterName:       m.RequesterName,
		RequesterDepartment: m.RequesterDepartment,
		VehicleID:           m.VehicleID,
		VehicleType:         m.VehicleType,
		DriverInfo:          m.DriverInfo,
		Destination:         m.Destination,
		TravelTime:          m.TravelTime.UTC(),
		CargoType:           deref(m.CargoType),
		CargoWeight:         deref(m.CargoWeight),
		Reason:              deref(m.Reason),
		Status:              domain.BookingStatus(m.Status),
		VietStage:           stageOrPending(m.VietStage),
		KoreaStage:          stageOrPending(m.KoreaStage),
		AdminStage:          stageOrPending(m.AdminStage),
		ApproverVietID:      m.ApproverVietID,
		ApproverKoreaID:     m.ApproverKoreaID,
		ApprovedBy:          m.ApprovedBy,
		ApprovedAt:          utcPtr(m.ApprovedAt),
		RejectedBy:          m.RejectedBy,
		CancellationReason:  deref(m.CancellationReason),
		CreatedAt:           m.CreatedAt.UTC(),
		UpdatedAt:           m.UpdatedAt.UTC(),
		ResolvedAt:          utcPtr(m.ResolvedAt),
	}
}

func toBookingModel(b *domain.BookingRequest) bookingModel {
	return bookingModel{
		ID:                  b.ID,
		RequesterID:         b.RequesterID,
		RequesterName:       b.RequesterName,
		RequesterDepartment: b.RequesterDepartment,
		VehicleID:           b.VehicleID,
		VehicleType:         b.VehicleType,
		DriverInfo:          b.DriverInfo,
		Destination:         b.Destination,
		TravelTime:          b.TravelTime.UTC(),
		CargoType:           ptrOrNil(b.CargoType),
		CargoWeight:         ptrOrNil(b.CargoWeight),
		Reason:              ptrOrNil(b.Reason),
		Status:              string(b.Status),
		VietStage:           string(b.VietStage),
		KoreaStage:          string(b.KoreaStage),
		AdminStage:          string(b.AdminStage),
		ApproverVietID:      b.ApproverVietID,
		ApproverKoreaID:     b.ApproverKoreaID,
		ApprovedBy:          b.ApprovedBy,
		ApprovedAt:          utcPtr(b.ApprovedAt),
		RejectedBy:          b.RejectedBy,
		CancellationReason:  ptrOrNil(b.CancellationReason),
		CreatedAt:           b.CreatedAt.UTC(),
		UpdatedAt:           b.UpdatedAt.UTC(),
		ResolvedAt:          utcPtr(b.ResolvedAt),
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.BookingRequest) error {
	m := toBookingModel(b)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return annotate("create booking", err)
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.BookingRequest, error) {
	var m bookingModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, annotate("get booking", err)
	}
	return toDomainBooking(m), nil
}

// UpdateWhere writes the approval fields of next only if the stored status
// still equals expected. The check and the write are one statement.
func (r *BookingRepository) UpdateWhere(ctx context.Context, id string, expected domain.BookingStatus, next *domain.BookingRequest) error {
	m := toBookingModel(next)
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ? AND status = ?", id, string(expected)).
		Updates(map[string]any{
			"status":                m.Status,
			"viet_approval_status":  m.VietStage,
			"korea_approval_status": m.KoreaStage,
			"admin_approval_status": m.AdminStage,
			"approver_viet_id":      m.ApproverVietID,
			"approver_korea_id":     m.ApproverKoreaID,
			"approved_by":           m.ApprovedBy,
			"approved_at":           m.ApprovedAt,
			"rejected_by":           m.RejectedBy,
			"cancellation_reason":   m.CancellationReason,
			"resolved_at":           m.ResolvedAt,
			"updated_at":            m.UpdatedAt,
		})
	if tx.Error != nil {
		return annotate("update booking", tx.Error)
	}
	if tx.RowsAffected == 1 {
		return nil
	}

	var cnt int64
	if err := r.db.WithContext(ctx).Model(&bookingModel{}).Where("id = ?", id).Count(&cnt).Error; err != nil {
		return annotate("update booking", err)
	}
	if cnt == 0 {
		return ErrNotFound
	}
	return ErrStatusMismatch
}

// ListByStatus returns bookings in any of statuses, oldest first.
func (r *BookingRepository) ListByStatus(ctx context.Context, statuses []domain.BookingStatus) ([]domain.BookingRequest, error) {
	if len(statuses) == 0 {
		return []domain.BookingRequest{}, nil
	}
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Where("status IN ?", statusStrings(statuses)).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, annotate("list bookings by status", err)
	}
	return toDomainBookings(rows), nil
}

// ListExpired returns bookings in statuses whose travel time is before cutoff.
func (r *BookingRepository) ListExpired(ctx context.Context, statuses []domain.BookingStatus, cutoff time.Time) ([]domain.BookingRequest, error) {
	if len(statuses) == 0 {
		return []domain.BookingRequest{}, nil
	}
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Where("status IN ?", statusStrings(statuses)).
		Where("travel_time < ?", cutoff.UTC()).
		Order("travel_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, annotate("list expired bookings", err)
	}
	return toDomainBookings(rows), nil
}

// List returns bookings matching f, newest first, with the total match count.
func (r *BookingRepository) List(ctx context.Context, f domain.BookingFilter) ([]domain.BookingRequest, int64, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	match := func(q *gorm.DB) *gorm.DB {
		if f.RequesterID != "" {
			q = q.Where("requester_id = ?", f.RequesterID)
		}
		if f.Status != "" {
			q = q.Where("status = ?", string(f.Status))
		}
		if f.VehicleType != "" {
			q = q.Where("vehicle_type = ?", f.VehicleType)
		}
		return q
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&bookingModel{}).Scopes(match).Count(&total).Error; err != nil {
		return nil, 0, annotate("count bookings", err)
	}

	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Scopes(match).
		Order("created_at DESC").
		Order("id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, annotate("list bookings", err)
	}
	return toDomainBookings(rows), total, nil
}

type scheduleRow struct {
	Booking      bookingModel `gorm:"embedded"`
	VehicleName  *string      `gorm:"column:vehicle_name"`
	LicensePlate *string      `gorm:"column:license_plate"`
}

// ListSchedule returns approved bookings travelling in [from, to).
func (r *BookingRepository) ListSchedule(ctx context.Context, from, to time.Time) ([]domain.ScheduleEntry, error) {
	var rows []scheduleRow
	err := r.db.WithContext(ctx).
		Table("bookings AS b").
		Select("b.*, v.vehicle_name AS vehicle_name, v.license_plate AS license_plate").
		Joins("LEFT JOIN vehicles v ON v.id = b.vehicle_id").
		Where("b.status = ?", string(domain.BookingApproved)).
		Where("b.travel_time >= ? AND b.travel_time < ?", from.UTC(), to.UTC()).
		Order("b.travel_time ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, annotate("list schedule", err)
	}

	out := make([]domain.ScheduleEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.ScheduleEntry{
			BookingRequest: *toDomainBooking(row.Booking),
			VehicleName:    deref(row.VehicleName),
			LicensePlate:   deref(row.LicensePlate),
		})
	}
	return out, nil
}

func toDomainBookings(rows []bookingModel) []domain.BookingRequest {
	out := make([]domain.BookingRequest, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func stageOrPending(s string) domain.StageDecision {
	if s == "" {
		return domain.StagePending
	}
	return domain.StageDecision(s)
}
