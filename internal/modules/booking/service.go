package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"bookxe/internal/domain"
	"bookxe/internal/modules/approval"
	"bookxe/internal/pkg/validator"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxScheduleSpan = 93 * 24 * time.Hour
)

// Service is the only entry point for booking status changes.
type Service struct {
	store  BookingStore
	notifs NotificationSender
	tracer trace.Tracer
	now    func() time.Time
	newID  func() string
}

func NewService(store BookingStore, notifs NotificationSender) *Service {
	return &Service{
		store:  store,
		notifs: notifs,
		tracer: otel.Tracer("bookxe/booking"),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Create submits a new request at the first approval stage.
func (s *Service) Create(ctx context.Context, actor domain.Actor, req CreateBookingRequest) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "booking.Create", trace.WithAttributes(
		attribute.String("actor.role", string(actor.Role)),
	))
	defer span.End()

	if actor.ID == "" || actor.IsSystem() {
		return nil, s.fail(span, fmt.Errorf("%w: an authenticated user must submit the request", ErrAuthorization))
	}

	req.RequesterName = strings.TrimSpace(req.RequesterName)
	req.Destination = strings.TrimSpace(req.Destination)
	if fields := validator.Validate(req); fields != nil {
		return nil, s.fail(span, &ValidationError{Fields: fields})
	}
	if req.TravelTime.IsZero() {
		return nil, s.fail(span, &ValidationError{Fields: map[string]string{"travel_time": "required"}})
	}

	b := approval.NewRequest(s.newID(), actor, s.now())
	b.RequesterName = req.RequesterName
	b.RequesterDepartment = strings.TrimSpace(req.RequesterDepartment)
	b.VehicleID = req.VehicleID
	b.VehicleType = req.VehicleType
	b.DriverInfo = req.DriverInfo
	b.Destination = req.Destination
	b.TravelTime = req.TravelTime.UTC()
	b.CargoType = req.CargoType
	b.CargoWeight = req.CargoWeight
	b.Reason = req.Reason

	if err := s.store.Create(ctx, &b); err != nil {
		return nil, s.fail(span, storeError("create booking", err))
	}
	span.SetAttributes(attribute.String("booking.id", b.ID))
	log.Printf("booking_created id=%s requester=%s status=%s travel_time=%s", b.ID, b.RequesterID, b.Status, b.TravelTime.Format(time.RFC3339))

	var warnings []string
	if s.notifs != nil {
		warnings = s.warn(warnings, b.ID, "requester confirmation", s.notifs.NotifyBookingCreated(ctx, &b))
		warnings = s.warn(warnings, b.ID, "manager_viet new work", s.notifs.NotifyNewWork(ctx, domain.RoleManagerViet, &b))
	}
	return &Result{Booking: &b, Warnings: warnings}, nil
}

// ListActionable returns the approval queue for role, oldest first. Roles
// that gate no stage get an empty list.
func (s *Service) ListActionable(ctx context.Context, role domain.Role) ([]domain.BookingRequest, error) {
	ctx, span := s.tracer.Start(ctx, "booking.ListActionable", trace.WithAttributes(
		attribute.String("actor.role", string(role)),
	))
	defer span.End()

	statuses := domain.ActionableStatuses(role)
	if len(statuses) == 0 {
		return []domain.BookingRequest{}, nil
	}
	list, err := s.store.ListByStatus(ctx, statuses)
	if err != nil {
		return nil, s.fail(span, storeError("list actionable", err))
	}
	return list, nil
}

// Act applies an approve or reject decision by actor to booking id.
func (s *Service) Act(ctx context.Context, id string, actor domain.Actor, action approval.Action) (*Result, error) {
	if action == approval.ActionExpire {
		return nil, fmt.Errorf("%w: expire is reserved for the sweeper", ErrAuthorization)
	}
	return s.transition(ctx, id, actor, action)
}

// Expire cancels a pending booking whose travel time is past the grace window.
func (s *Service) Expire(ctx context.Context, id string) (*Result, error) {
	return s.transition(ctx, id, domain.SystemActor(), approval.ActionExpire)
}

func (s *Service) transition(ctx context.Context, id string, actor domain.Actor, action approval.Action) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "booking.transition", trace.WithAttributes(
		attribute.String("booking.id", id),
		attribute.String("booking.action", string(action)),
		attribute.String("actor.role", string(actor.Role)),
	))
	defer span.End()

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(span, storeError("load booking", err))
	}

	t, err := approval.Decide(*current, actor, action, s.now())
	if err != nil {
		log.Printf("booking_transition_refused id=%s status=%s action=%s actor=%s role=%s err=%v", id, current.Status, action, actor.ID, actor.Role, err)
		return nil, s.fail(span, err)
	}

	next := t.Apply(*current)
	if err := s.store.UpdateWhere(ctx, id, t.From, &next); err != nil {
		return nil, s.fail(span, storeError("update booking", err))
	}
	span.SetAttributes(
		attribute.String("booking.from", string(t.From)),
		attribute.String("booking.to", string(t.To)),
	)
	log.Printf("booking_transition id=%s from=%s to=%s action=%s actor=%s role=%s", id, t.From, t.To, action, actor.ID, actor.Role)

	return &Result{Booking: &next, Warnings: s.notifyTransition(ctx, t, &next)}, nil
}

// notifyTransition emits the notifications for a committed transition and
// returns the failures as warnings.
func (s *Service) notifyTransition(ctx context.Context, t approval.Transition, b *domain.BookingRequest) []string {
	if s.notifs == nil {
		return nil
	}

	var warnings []string
	switch t.Action {
	case approval.ActionApprove:
		if t.Final() {
			warnings = s.warn(warnings, b.ID, "approved", s.notifs.NotifyBookingApproved(ctx, b))
			break
		}
		warnings = s.warn(warnings, b.ID, "stage approved", s.notifs.NotifyStageApproved(ctx, b, t.Stage))
		if next, ok := t.NextStage(); ok {
			role := domain.StageRole(next)
			warnings = s.warn(warnings, b.ID, string(role)+" new work", s.notifs.NotifyNewWork(ctx, role, b))
		}
	case approval.ActionReject:
		warnings = s.warn(warnings, b.ID, "rejected", s.notifs.NotifyBookingRejected(ctx, b))
	case approval.ActionExpire:
		warnings = s.warn(warnings, b.ID, "expired", s.notifs.NotifyBookingExpired(ctx, b))
	}
	return warnings
}

func (s *Service) warn(warnings []string, bookingID, what string, err error) []string {
	if err == nil {
		return warnings
	}
	log.Printf("booking_notify_failed id=%s kind=%q err=%v", bookingID, what, err)
	return append(warnings, fmt.Sprintf("notification %q not delivered: %v", what, err))
}

// Get returns one booking. Staff may only read their own requests.
func (s *Service) Get(ctx context.Context, actor domain.Actor, id string) (*domain.BookingRequest, error) {
	ctx, span := s.tracer.Start(ctx, "booking.Get", trace.WithAttributes(attribute.String("booking.id", id)))
	defer span.End()

	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(span, storeError("get booking", err))
	}
	if actor.Role == domain.RoleStaff && b.RequesterID != actor.ID {
		return nil, s.fail(span, fmt.Errorf("%w: booking belongs to another requester", ErrAuthorization))
	}
	return b, nil
}

// ListMine returns one page of the actor's own requests, newest first.
func (s *Service) ListMine(ctx context.Context, actor domain.Actor, limit, offset int) (*Page, error) {
	ctx, span := s.tracer.Start(ctx, "booking.ListMine")
	defer span.End()

	return s.list(ctx, span, "list my bookings", domain.BookingFilter{RequesterID: actor.ID, Limit: limit, Offset: offset})
}

// ListAll is the admin overview of every booking, newest first, optionally
// narrowed by status and vehicle type. It never changes a booking.
func (s *Service) ListAll(ctx context.Context, actor domain.Actor, f domain.BookingFilter) (*Page, error) {
	ctx, span := s.tracer.Start(ctx, "booking.ListAll", trace.WithAttributes(
		attribute.String("filter.status", string(f.Status)),
		attribute.String("filter.vehicle_type", f.VehicleType),
	))
	defer span.End()

	if actor.Role != domain.RoleAdmin {
		return nil, s.fail(span, fmt.Errorf("%w: only admin lists every booking", ErrAuthorization))
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, s.fail(span, &ValidationError{Fields: map[string]string{"status": "oneof"}})
	}
	f.VehicleType = strings.TrimSpace(f.VehicleType)
	return s.list(ctx, span, "list bookings", f)
}

func (s *Service) list(ctx context.Context, span trace.Span, op string, f domain.BookingFilter) (*Page, error) {
	f.Limit, f.Offset = pageWindow(f.Limit, f.Offset)
	list, total, err := s.store.List(ctx, f)
	if err != nil {
		return nil, s.fail(span, storeError(op, err))
	}
	return &Page{Bookings: list, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func pageWindow(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Schedule returns approved bookings travelling in [from, to).
func (s *Service) Schedule(ctx context.Context, from, to time.Time) ([]domain.ScheduleEntry, error) {
	ctx, span := s.tracer.Start(ctx, "booking.Schedule")
	defer span.End()

	if !to.After(from) {
		return nil, s.fail(span, &ValidationError{Fields: map[string]string{"to": "gtfield"}})
	}
	if to.Sub(from) > maxScheduleSpan {
		return nil, s.fail(span, &ValidationError{Fields: map[string]string{"to": "max_span"}})
	}
	list, err := s.store.ListSchedule(ctx, from.UTC(), to.UTC())
	if err != nil {
		return nil, s.fail(span, storeError("list schedule", err))
	}
	return list, nil
}

// fail records err on span and returns it unchanged.
func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, ErrorCode(err))
	var verr *ValidationError
	if errors.As(err, &verr) {
		span.SetAttributes(attribute.Int("validation.fields", len(verr.Fields)))
	}
	return err
}
