// Package approval decides booking status transitions. It performs no I/O.
package approval

import (
	"fmt"
	"time"

	"bookxe/internal/domain"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionExpire  Action = "expire"
)

// ExpiryGrace is how long past its travel time an unapproved request survives.
const ExpiryGrace = 24 * time.Hour

const expiredReason = "Tự động hủy: quá 24 giờ sau thời gian đi mà chưa được duyệt"

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionApprove, ActionReject:
		return a, nil
	default:
		return "", ErrUnknownAction
	}
}

// Transition is a legal, not yet persisted status change.
type Transition struct {
	From     domain.BookingStatus
	To       domain.BookingStatus
	Action   Action
	Stage    domain.Stage
	Decision domain.StageDecision
	ActorID  string
	At       time.Time
}

// Final reports whether the transition ends the approval flow.
func (t Transition) Final() bool {
	return t.To.IsTerminal()
}

// NextStage returns the stage that now waits for a decision, if any.
func (t Transition) NextStage() (domain.Stage, bool) {
	return domain.StageForStatus(t.To)
}

// Decide validates action by actor against the current state of b.
func Decide(b domain.BookingRequest, actor domain.Actor, action Action, now time.Time) (Transition, error) {
	if b.Status.IsTerminal() {
		return Transition{}, fmt.Errorf("%w: booking is already %s", ErrInvalidTransition, b.Status)
	}
	if !b.Status.Valid() || !b.Consistent() {
		return Transition{}, fmt.Errorf("%w: stored status %q does not match stage flags", ErrInvalidTransition, b.Status)
	}

	switch action {
	case ActionApprove, ActionReject:
		return decideStage(b, actor, action, now)
	case ActionExpire:
		return decideExpire(b, actor, now)
	default:
		return Transition{}, ErrUnknownAction
	}
}

func decideStage(b domain.BookingRequest, actor domain.Actor, action Action, now time.Time) (Transition, error) {
	gating, ok := domain.GatingStatus(actor.Role)
	if !ok {
		return Transition{}, fmt.Errorf("%w: role %q does not approve bookings", ErrUnauthorized, actor.Role)
	}
	current := b.Status
	if current == domain.BookingPending {
		current = domain.BookingPendingViet
	}
	if current != gating {
		return Transition{}, fmt.Errorf("%w: role %q acts on %s, booking is %s", ErrUnauthorized, actor.Role, gating, b.Status)
	}

	stage, _ := domain.StageOf(actor.Role)
	t := Transition{
		From:    b.Status,
		Action:  action,
		Stage:   stage,
		ActorID: actor.ID,
		At:      now.UTC(),
	}

	viet, korea, admin := b.VietStage, b.KoreaStage, b.AdminStage
	decision := domain.StageApproved
	if action == ActionReject {
		decision = domain.StageRejected
	}
	switch stage {
	case domain.StageViet:
		viet = decision
	case domain.StageKorea:
		korea = decision
	case domain.StageAdmin:
		admin = decision
	}
	t.Decision = decision
	t.To = domain.DeriveStatus(viet, korea, admin)
	return t, nil
}

func decideExpire(b domain.BookingRequest, actor domain.Actor, now time.Time) (Transition, error) {
	if !actor.IsSystem() {
		return Transition{}, fmt.Errorf("%w: only the system actor expires bookings", ErrUnauthorized)
	}
	if !Expired(b.TravelTime, now) {
		return Transition{}, ErrNotExpired
	}
	return Transition{
		From:    b.Status,
		To:      domain.BookingCancelled,
		Action:  ActionExpire,
		ActorID: actor.ID,
		At:      now.UTC(),
	}, nil
}

// Expired reports whether travelTime lies more than ExpiryGrace before now.
func Expired(travelTime, now time.Time) bool {
	return travelTime.Before(ExpiryCutoff(now))
}

func ExpiryCutoff(now time.Time) time.Time {
	return now.Add(-ExpiryGrace)
}

// Apply returns a copy of b with the transition's mutations.
func (t Transition) Apply(b domain.BookingRequest) domain.BookingRequest {
	at := t.At
	actor := t.ActorID

	switch t.Stage {
	case domain.StageViet:
		b.VietStage = t.Decision
		if t.Decision == domain.StageApproved {
			b.ApproverVietID = &actor
		}
	case domain.StageKorea:
		b.KoreaStage = t.Decision
		if t.Decision == domain.StageApproved {
			b.ApproverKoreaID = &actor
		}
	case domain.StageAdmin:
		b.AdminStage = t.Decision
		if t.Decision == domain.StageApproved {
			b.ApprovedBy = &actor
			b.ApprovedAt = &at
		}
	}
	if t.Decision == domain.StageRejected {
		b.RejectedBy = &actor
	}
	if t.Action == ActionExpire {
		b.CancellationReason = expiredReason
	}

	b.Status = t.To
	b.UpdatedAt = at
	if t.To.IsTerminal() {
		b.ResolvedAt = &at
	}
	return b
}

// NewRequest builds a booking at the start of the staged flow.
func NewRequest(id string, requester domain.Actor, now time.Time) domain.BookingRequest {
	now = now.UTC()
	return domain.BookingRequest{
		ID:          id,
		RequesterID: requester.ID,
		Status:      domain.BookingPendingViet,
		VietStage:   domain.StagePending,
		KoreaStage:  domain.StagePending,
		AdminStage:  domain.StagePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
