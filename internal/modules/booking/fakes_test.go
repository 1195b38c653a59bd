package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"bookxe/internal/domain"
	"bookxe/internal/repository"
)

// memStore is a mutex-guarded BookingStore with the same conditional update
// semantics as the gorm repository.
type memStore struct {
	mu    sync.Mutex
	rows  map[string]domain.BookingRequest
	onGet func(id string)

	createErr error
	updateErr error
	listErr   error
	writes    int
}

func newMemStore() *memStore {
	return &memStore{rows: map[string]domain.BookingRequest{}}
}

func (m *memStore) put(b domain.BookingRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[b.ID] = b
}

func (m *memStore) snapshot(id string) domain.BookingRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id]
}

func (m *memStore) Create(ctx context.Context, b *domain.BookingRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.rows[b.ID] = *b
	m.writes++
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*domain.BookingRequest, error) {
	m.mu.Lock()
	b, ok := m.rows[id]
	hook := m.onGet
	m.mu.Unlock()

	if hook != nil {
		hook(id)
	}
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (m *memStore) UpdateWhere(ctx context.Context, id string, expected domain.BookingStatus, next *domain.BookingRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	cur, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	if cur.Status != expected {
		return repository.ErrStatusMismatch
	}
	m.rows[id] = *next
	m.writes++
	return nil
}

func (m *memStore) ListByStatus(ctx context.Context, statuses []domain.BookingStatus) ([]domain.BookingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []domain.BookingRequest{}
	for _, b := range m.rows {
		if statusIn(b.Status, statuses) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memStore) ListExpired(ctx context.Context, statuses []domain.BookingStatus, cutoff time.Time) ([]domain.BookingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []domain.BookingRequest{}
	for _, b := range m.rows {
		if statusIn(b.Status, statuses) && b.TravelTime.Before(cutoff) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) List(ctx context.Context, f domain.BookingFilter) ([]domain.BookingRequest, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	matched := []domain.BookingRequest{}
	for _, b := range m.rows {
		if f.RequesterID != "" && b.RequesterID != f.RequesterID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.VehicleType != "" && b.VehicleType != f.VehicleType {
			continue
		}
		matched = append(matched, b)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if f.Offset >= len(matched) {
		return []domain.BookingRequest{}, total, nil
	}
	matched = matched[f.Offset:]
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func (m *memStore) ListSchedule(ctx context.Context, from, to time.Time) ([]domain.ScheduleEntry, error) {
	return []domain.ScheduleEntry{}, nil
}

func statusIn(s domain.BookingStatus, statuses []domain.BookingStatus) bool {
	for _, x := range statuses {
		if s == x {
			return true
		}
	}
	return false
}

type sentNotification struct {
	kind    string
	role    domain.Role
	booking string
	stage   domain.Stage
}

// recordingNotifier captures emitted notifications; err makes every call fail.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (r *recordingNotifier) record(n sentNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sent))
	for _, n := range r.sent {
		k := n.kind
		if n.role != "" {
			k += ":" + string(n.role)
		}
		out = append(out, k)
	}
	return out
}

func (r *recordingNotifier) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}

func (r *recordingNotifier) NotifyBookingCreated(ctx context.Context, b *domain.BookingRequest) error {
	return r.record(sentNotification{kind: "created", booking: b.ID})
}

func (r *recordingNotifier) NotifyNewWork(ctx context.Context, role domain.Role, b *domain.BookingRequest) error {
	return r.record(sentNotification{kind: "new_work", role: role, booking: b.ID})
}

func (r *recordingNotifier) NotifyStageApproved(ctx context.Context, b *domain.BookingRequest, stage domain.Stage) error {
	return r.record(sentNotification{kind: "stage", booking: b.ID, stage: stage})
}

func (r *recordingNotifier) NotifyBookingApproved(ctx context.Context, b *domain.BookingRequest) error {
	return r.record(sentNotification{kind: "approved", booking: b.ID})
}

func (r *recordingNotifier) NotifyBookingRejected(ctx context.Context, b *domain.BookingRequest) error {
	return r.record(sentNotification{kind: "rejected", booking: b.ID})
}

func (r *recordingNotifier) NotifyBookingExpired(ctx context.Context, b *domain.BookingRequest) error {
	return r.record(sentNotification{kind: "expired", booking: b.ID})
}
