package domain

import "time"

type BookingStatus string

const (
	// BookingPending is written only by the legacy unstaged creation path.
	BookingPending      BookingStatus = "pending"
	BookingPendingViet  BookingStatus = "pending_viet"
	BookingPendingKorea BookingStatus = "pending_korea"
	BookingPendingAdmin BookingStatus = "pending_admin"
	BookingApproved     BookingStatus = "approved"
	BookingRejected     BookingStatus = "rejected"
	BookingCancelled    BookingStatus = "cancelled"
)

// PendingStatuses are the non-terminal statuses, in flow order.
var PendingStatuses = []BookingStatus{
	BookingPending,
	BookingPendingViet,
	BookingPendingKorea,
	BookingPendingAdmin,
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingApproved || s == BookingRejected || s == BookingCancelled
}

func (s BookingStatus) IsPending() bool {
	for _, p := range PendingStatuses {
		if s == p {
			return true
		}
	}
	return false
}

func (s BookingStatus) Valid() bool {
	return s.IsPending() || s.IsTerminal()
}

type StageDecision string

const (
	StagePending  StageDecision = "pending"
	StageApproved StageDecision = "approved"
	StageRejected StageDecision = "rejected"
)

type Stage string

const (
	StageViet  Stage = "viet"
	StageKorea Stage = "korea"
	StageAdmin Stage = "admin"
)

// GatingStatus returns the single status at which role may act.
func GatingStatus(role Role) (BookingStatus, bool) {
	switch role {
	case RoleManagerViet:
		return BookingPendingViet, true
	case RoleManagerKorea:
		return BookingPendingKorea, true
	case RoleAdmin:
		return BookingPendingAdmin, true
	default:
		return "", false
	}
}

// ActionableStatuses lists the statuses that belong in role's approval queue.
// Legacy pending rows are queued for manager_viet together with pending_viet.
func ActionableStatuses(role Role) []BookingStatus {
	st, ok := GatingStatus(role)
	if !ok {
		return nil
	}
	if st == BookingPendingViet {
		return []BookingStatus{BookingPendingViet, BookingPending}
	}
	return []BookingStatus{st}
}

// StageOf returns the stage gated by role.
func StageOf(role Role) (Stage, bool) {
	switch role {
	case RoleManagerViet:
		return StageViet, true
	case RoleManagerKorea:
		return StageKorea, true
	case RoleAdmin:
		return StageAdmin, true
	default:
		return "", false
	}
}

// StageRole returns the role that gates the stage.
func StageRole(stage Stage) Role {
	switch stage {
	case StageViet:
		return RoleManagerViet
	case StageKorea:
		return RoleManagerKorea
	default:
		return RoleAdmin
	}
}

// StageForStatus returns the stage waiting for a decision at status s.
func StageForStatus(s BookingStatus) (Stage, bool) {
	switch s {
	case BookingPending, BookingPendingViet:
		return StageViet, true
	case BookingPendingKorea:
		return StageKorea, true
	case BookingPendingAdmin:
		return StageAdmin, true
	default:
		return "", false
	}
}

type BookingRequest struct {
	ID                  string        `json:"id"`
	RequesterID         string        `json:"requester_id"`
	RequesterName       string        `json:"requester_name"`
	RequesterDepartment string        `json:"requester_department"`
	VehicleID           *string       `json:"vehicle_id,omitempty"`
	VehicleType         string        `json:"vehicle_type,omitempty"`
	DriverInfo          string        `json:"driver_info,omitempty"`
	Destination         string        `json:"destination"`
	TravelTime          time.Time     `json:"travel_time"`
	CargoType           string        `json:"cargo_type,omitempty"`
	CargoWeight         string        `json:"cargo_weight,omitempty"`
	Reason              string        `json:"reason,omitempty"`
	Status              BookingStatus `json:"status"`

	VietStage  StageDecision `json:"viet_approval_status"`
	KoreaStage StageDecision `json:"korea_approval_status"`
	AdminStage StageDecision `json:"admin_approval_status"`

	ApproverVietID  *string    `json:"approver_viet_id,omitempty"`
	ApproverKoreaID *string    `json:"approver_korea_id,omitempty"`
	ApprovedBy      *string    `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectedBy      *string    `json:"rejected_by,omitempty"`

	CancellationReason string `json:"cancellation_reason,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// StageDecision returns the flag recorded for stage.
func (b *BookingRequest) StageDecision(stage Stage) StageDecision {
	switch stage {
	case StageViet:
		return b.VietStage
	case StageKorea:
		return b.KoreaStage
	default:
		return b.AdminStage
	}
}

// DeriveStatus maps the three stage flags to the status they imply.
func DeriveStatus(viet, korea, admin StageDecision) BookingStatus {
	switch {
	case viet == StageRejected || korea == StageRejected || admin == StageRejected:
		return BookingRejected
	case admin == StageApproved:
		return BookingApproved
	case korea == StageApproved:
		return BookingPendingAdmin
	case viet == StageApproved:
		return BookingPendingKorea
	default:
		return BookingPendingViet
	}
}

// Consistent reports whether Status is legal for the stage flags.
func (b *BookingRequest) Consistent() bool {
	if !flagsOrdered(b.VietStage, b.KoreaStage, b.AdminStage) {
		return false
	}
	derived := DeriveStatus(b.VietStage, b.KoreaStage, b.AdminStage)
	switch b.Status {
	case derived:
		return true
	case BookingPending:
		return derived == BookingPendingViet
	case BookingCancelled:
		return derived != BookingRejected && derived != BookingApproved
	default:
		return false
	}
}

// flagsOrdered rejects combinations no sequential flow can produce, such as a
// later stage decided while an earlier one is still pending.
func flagsOrdered(viet, korea, admin StageDecision) bool {
	if korea != StagePending && viet != StageApproved {
		return false
	}
	if admin != StagePending && korea != StageApproved {
		return false
	}
	return true
}

// ScheduleEntry is an approved booking joined with vehicle display fields.
type ScheduleEntry struct {
	BookingRequest
	VehicleName  string `json:"vehicle_name,omitempty"`
	LicensePlate string `json:"license_plate,omitempty"`
}

// BookingFilter narrows a booking listing. Zero fields match everything.
type BookingFilter struct {
	RequesterID string
	Status      BookingStatus
	VehicleType string
	Limit       int
	Offset      int
}
