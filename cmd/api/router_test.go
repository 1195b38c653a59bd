package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bookxe/internal/database"
	"bookxe/internal/domain"
	"bookxe/internal/modules/booking"
	"bookxe/internal/modules/notification"
	"bookxe/internal/modules/vehicle"
	jwtsvc "bookxe/internal/pkg/jwt"
	"bookxe/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiSuite struct {
	router *gin.Engine
	tokens map[domain.Role]string
}

type bookingPage struct {
	Bookings []domain.BookingRequest `json:"bookings"`
	Page     struct {
		Limit  int   `json:"limit"`
		Offset int   `json:"offset"`
		Total  int64 `json:"total"`
	} `json:"page"`
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details,omitempty"`
	} `json:"error,omitempty"`
}

type bookingEnvelope struct {
	Booking  domain.BookingRequest `json:"booking"`
	Warnings []string              `json:"warnings"`
}

func setupSuite(t *testing.T) *apiSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:api_%s?mode=memory&cache=shared", name)
	db, err := database.Connect(dsn)
	require.NoError(t, err, "failed to connect to test database")
	require.NoError(t, database.Migrate(db, dsn))

	vehicles := repository.NewVehicleRepository(db)
	for _, v := range []domain.Vehicle{
		{ID: "veh-county", LicensePlate: "15B-024.68", VehicleName: "Hyundai County", VehicleType: "bus", Status: "available"},
		{ID: "veh-old", LicensePlate: "15C-000.01", VehicleName: "Isuzu QKR", VehicleType: "truck", Status: domain.VehicleRetired},
	} {
		require.NoError(t, vehicles.Upsert(context.Background(), v))
	}

	j := jwtsvc.New("test_secret_key_32_characters_min", time.Hour)

	notifications := notification.NewService(repository.NewNotificationRepository(db))
	svc := booking.NewService(repository.NewBookingRepository(db), notifications)
	sweeper := booking.NewSweeper(svc, time.Hour)

	r := newRouter(routes{
		jwt:           j,
		bookings:      booking.NewHandler(svc, sweeper),
		notifications: notification.NewHandler(notifications),
		vehicles:      vehicle.NewHandler(vehicles),
	})

	tokens := map[domain.Role]string{}
	for i, role := range []domain.Role{domain.RoleStaff, domain.RoleManagerViet, domain.RoleManagerKorea, domain.RoleAdmin} {
		tok, err := j.GenerateToken(fmt.Sprintf("u-%d", i+1), string(role))
		require.NoError(t, err)
		tokens[role] = tok
	}
	return &apiSuite{router: r, tokens: tokens}
}

func (s *apiSuite) do(t *testing.T, method, path string, body any, role domain.Role) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+s.tokens[role])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func createBody(travel time.Time) map[string]any {
	return map[string]any{
		"requester_name":       "Trần Thị Bình",
		"requester_department": "QA",
		"destination":          "Hải Phòng",
		"travel_time":          travel.UTC().Format(time.RFC3339),
		"reason":               "audit nhà cung cấp",
	}
}

func TestAPI_Health(t *testing.T) {
	s := setupSuite(t)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_RequiresBearerToken(t *testing.T) {
	s := setupSuite(t)

	w, resp := s.do(t, http.MethodGet, "/api/v1/approvals", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "AUTH_HEADER_MISSING", resp.Error.Code)
}

func TestAPI_FullApprovalChain(t *testing.T) {
	s := setupSuite(t)

	w, resp := s.do(t, http.MethodPost, "/api/v1/bookings", createBody(time.Now().Add(48*time.Hour)), domain.RoleStaff)
	require.Equal(t, http.StatusCreated, w.Code, "%+v", resp.Error)
	created := decode[bookingEnvelope](t, resp.Data)
	assert.Equal(t, domain.BookingPendingViet, created.Booking.Status)
	assert.Equal(t, "u-1", created.Booking.RequesterID)
	id := created.Booking.ID

	// Out of order: korea cannot act before viet.
	w, resp = s.do(t, http.MethodPost, "/api/v1/bookings/"+id+"/approve", nil, domain.RoleManagerKorea)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "AUTHORIZATION", resp.Error.Code)

	steps := []struct {
		role domain.Role
		want domain.BookingStatus
	}{
		{domain.RoleManagerViet, domain.BookingPendingKorea},
		{domain.RoleManagerKorea, domain.BookingPendingAdmin},
		{domain.RoleAdmin, domain.BookingApproved},
	}
	for _, step := range steps {
		w, resp = s.do(t, http.MethodPost, "/api/v1/bookings/"+id+"/approve", nil, step.role)
		require.Equal(t, http.StatusOK, w.Code, "role %s: %+v", step.role, resp.Error)
		assert.Equal(t, step.want, decode[bookingEnvelope](t, resp.Data).Booking.Status)
	}

	w, resp = s.do(t, http.MethodPost, "/api/v1/bookings/"+id+"/reject", nil, domain.RoleAdmin)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", resp.Error.Code)

	w, resp = s.do(t, http.MethodGet, "/api/v1/bookings/"+id, nil, domain.RoleStaff)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[bookingEnvelope](t, resp.Data).Booking
	assert.True(t, got.Consistent())
	require.NotNil(t, got.ApprovedBy)
	assert.Equal(t, "u-4", *got.ApprovedBy)
}

func TestAPI_ApprovalQueueAndInbox(t *testing.T) {
	s := setupSuite(t)

	w, _ := s.do(t, http.MethodPost, "/api/v1/bookings", createBody(time.Now().Add(24*time.Hour)), domain.RoleStaff)
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp := s.do(t, http.MethodGet, "/api/v1/approvals", nil, domain.RoleManagerViet)
	require.Equal(t, http.StatusOK, w.Code)
	queue := decode[struct {
		Bookings []domain.BookingRequest `json:"bookings"`
	}](t, resp.Data)
	assert.Len(t, queue.Bookings, 1)

	w, resp = s.do(t, http.MethodGet, "/api/v1/approvals", nil, domain.RoleManagerKorea)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[struct {
		Bookings []domain.BookingRequest `json:"bookings"`
	}](t, resp.Data).Bookings)

	w, resp = s.do(t, http.MethodGet, "/api/v1/notifications/unread-count", nil, domain.RoleManagerViet)
	require.Equal(t, http.StatusOK, w.Code)
	count := decode[map[string]int64](t, resp.Data)
	assert.Equal(t, int64(1), count["unread_count"])
}

func TestAPI_ValidationDetailsUseJSONNames(t *testing.T) {
	s := setupSuite(t)

	w, resp := s.do(t, http.MethodPost, "/api/v1/bookings", map[string]any{
		"requester_name": "  ",
		"travel_time":    time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	}, domain.RoleStaff)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "requester_name")
	assert.Contains(t, resp.Error.Details, "destination")
}

func TestAPI_AdminSweep(t *testing.T) {
	s := setupSuite(t)

	w, _ := s.do(t, http.MethodPost, "/api/v1/bookings", createBody(time.Now().Add(-48*time.Hour)), domain.RoleStaff)
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = s.do(t, http.MethodPost, "/api/v1/bookings", createBody(time.Now().Add(-2*time.Hour)), domain.RoleStaff)
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp := s.do(t, http.MethodPost, "/api/v1/admin/sweeps", nil, domain.RoleManagerViet)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, resp.Success)

	w, resp = s.do(t, http.MethodPost, "/api/v1/admin/sweeps", nil, domain.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[map[string]any](t, resp.Data)
	assert.EqualValues(t, 1, res["cancelled_count"])

	w, resp = s.do(t, http.MethodPost, "/api/v1/admin/sweeps", nil, domain.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode[map[string]any](t, resp.Data)["cancelled_count"])
}

func TestAPI_ListMineIsPaginated(t *testing.T) {
	s := setupSuite(t)

	for i := 0; i < 3; i++ {
		w, _ := s.do(t, http.MethodPost, "/api/v1/bookings", createBody(time.Now().Add(time.Duration(i+1)*time.Hour)), domain.RoleStaff)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, resp := s.do(t, http.MethodGet, "/api/v1/bookings/mine?limit=2&offset=1", nil, domain.RoleStaff)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[bookingPage](t, resp.Data)
	assert.Len(t, page.Bookings, 2)
	assert.Equal(t, 2, page.Page.Limit)
	assert.Equal(t, 1, page.Page.Offset)
	assert.Equal(t, int64(3), page.Page.Total)

	w, resp = s.do(t, http.MethodGet, "/api/v1/bookings/mine", nil, domain.RoleManagerViet)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[bookingPage](t, resp.Data).Page.Total)
}

func (s *apiSuite) approveAll(t *testing.T, id string) {
	t.Helper()
	for _, role := range []domain.Role{domain.RoleManagerViet, domain.RoleManagerKorea, domain.RoleAdmin} {
		w, resp := s.do(t, http.MethodPost, "/api/v1/bookings/"+id+"/approve", nil, role)
		require.Equal(t, http.StatusOK, w.Code, "role %s: %+v", role, resp.Error)
	}
}

func TestAPI_ScheduleReturnsApprovedBookings(t *testing.T) {
	s := setupSuite(t)
	travel := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)

	body := createBody(travel)
	body["vehicle_id"] = "veh-county"
	w, resp := s.do(t, http.MethodPost, "/api/v1/bookings", body, domain.RoleStaff)
	require.Equal(t, http.StatusCreated, w.Code, "%+v", resp.Error)
	id := decode[bookingEnvelope](t, resp.Data).Booking.ID
	s.approveAll(t, id)

	// Still pending, so not on the schedule.
	w, _ = s.do(t, http.MethodPost, "/api/v1/bookings", createBody(travel), domain.RoleStaff)
	require.Equal(t, http.StatusCreated, w.Code)

	from := travel.Add(-24 * time.Hour).Format(time.RFC3339)
	to := travel.Add(24 * time.Hour).Format(time.RFC3339)
	w, resp = s.do(t, http.MethodGet, "/api/v1/schedule?from="+from+"&to="+to, nil, domain.RoleManagerKorea)
	require.Equal(t, http.StatusOK, w.Code, "%+v", resp.Error)

	schedule := decode[struct {
		Schedule []domain.ScheduleEntry `json:"schedule"`
	}](t, resp.Data).Schedule
	require.Len(t, schedule, 1)
	entry := schedule[0]
	assert.Equal(t, id, entry.ID)
	assert.Equal(t, "Hải Phòng", entry.Destination)
	assert.Equal(t, domain.BookingApproved, entry.Status)
	assert.True(t, entry.TravelTime.Equal(travel), "travel_time %s", entry.TravelTime)
	assert.Equal(t, "Hyundai County", entry.VehicleName)
	assert.Equal(t, "15B-024.68", entry.LicensePlate)
}

func TestAPI_AdminListsAllBookings(t *testing.T) {
	s := setupSuite(t)

	var ids []string
	for i := 0; i < 3; i++ {
		body := createBody(time.Now().Add(time.Duration(i+1) * time.Hour))
		if i == 2 {
			body["vehicle_type"] = "truck"
		}
		w, resp := s.do(t, http.MethodPost, "/api/v1/bookings", body, domain.RoleStaff)
		require.Equal(t, http.StatusCreated, w.Code)
		ids = append(ids, decode[bookingEnvelope](t, resp.Data).Booking.ID)
	}
	s.approveAll(t, ids[0])

	w, resp := s.do(t, http.MethodGet, "/api/v1/admin/bookings", nil, domain.RoleManagerViet)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, resp.Success)

	w, resp = s.do(t, http.MethodGet, "/api/v1/admin/bookings", nil, domain.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), decode[bookingPage](t, resp.Data).Page.Total)

	w, resp = s.do(t, http.MethodGet, "/api/v1/admin/bookings?status=approved", nil, domain.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	approved := decode[bookingPage](t, resp.Data)
	require.Len(t, approved.Bookings, 1)
	assert.Equal(t, ids[0], approved.Bookings[0].ID)

	w, resp = s.do(t, http.MethodGet, "/api/v1/admin/bookings?status=pending_viet&vehicle_type=truck", nil, domain.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	trucks := decode[bookingPage](t, resp.Data)
	require.Len(t, trucks.Bookings, 1)
	assert.Equal(t, ids[2], trucks.Bookings[0].ID)

	w, resp = s.do(t, http.MethodGet, "/api/v1/admin/bookings?status=completed", nil, domain.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION", resp.Error.Code)
}

func TestAPI_VehiclePickerHidesRetired(t *testing.T) {
	s := setupSuite(t)

	w, resp := s.do(t, http.MethodGet, "/api/v1/vehicles", nil, domain.RoleStaff)
	require.Equal(t, http.StatusOK, w.Code)
	vehicles := decode[struct {
		Vehicles []domain.Vehicle `json:"vehicles"`
	}](t, resp.Data).Vehicles
	require.Len(t, vehicles, 1)
	assert.Equal(t, "veh-county", vehicles[0].ID)
}
