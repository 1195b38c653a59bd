package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"bookxe/internal/domain"
	"bookxe/internal/middleware"
	"bookxe/internal/modules/approval"
	"bookxe/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	sweeper *Sweeper
}

func NewHandler(service *Service, sweeper *Sweeper) *Handler {
	return &Handler{service: service, sweeper: sweeper}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.POST("/bookings", h.CreateBooking)
	protected.GET("/bookings/mine", h.ListMine)
	protected.GET("/bookings/:id", h.GetBooking)
	protected.POST("/bookings/:id/approve", h.act(approval.ActionApprove))
	protected.POST("/bookings/:id/reject", h.act(approval.ActionReject))
	protected.GET("/approvals", h.ListActionable)
	protected.GET("/schedule", h.Schedule)

	admin := protected.Group("/admin", middleware.AdminOnly())
	admin.GET("/bookings", h.ListAll)
	admin.POST("/sweeps", h.RunSweep)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION", "Invalid request body")
		return
	}

	res, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

func (h *Handler) GetBooking(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	b, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ListMine(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	page, err := h.service.ListMine(c.Request.Context(), actor, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	writePage(c, page)
}

// ListAll accepts status, vehicle_type, limit and offset query parameters.
func (h *Handler) ListAll(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	page, err := h.service.ListAll(c.Request.Context(), actor, domain.BookingFilter{
		Status:      domain.BookingStatus(c.Query("status")),
		VehicleType: c.Query("vehicle_type"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writePage(c, page)
}

func writePage(c *gin.Context, page *Page) {
	response.Paginated(c, "bookings", page.Bookings, page.Total, page.Limit, page.Offset)
}

func (h *Handler) ListActionable(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	list, err := h.service.ListActionable(c.Request.Context(), actor.Role)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": list})
}

func (h *Handler) act(action approval.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.MustActor(c)
		if !ok {
			return
		}

		res, err := h.service.Act(c.Request.Context(), c.Param("id"), actor, action)
		if err != nil {
			writeError(c, err)
			return
		}
		response.Success(c, http.StatusOK, res)
	}
}

// Schedule accepts from/to as RFC3339 or YYYY-MM-DD; the default window is
// the next seven days.
func (h *Handler) Schedule(c *gin.Context) {
	now := time.Now().UTC()
	from, err := parseQueryTime(c.Query("from"), now.Truncate(24*time.Hour))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION", "Invalid from (use RFC3339 or YYYY-MM-DD)")
		return
	}
	to, err := parseQueryTime(c.Query("to"), from.Add(7*24*time.Hour))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION", "Invalid to (use RFC3339 or YYYY-MM-DD)")
		return
	}

	list, err := h.service.Schedule(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"schedule": list, "from": from, "to": to})
}

func (h *Handler) RunSweep(c *gin.Context) {
	res := h.sweeper.RunSweep(c.Request.Context())

	errs := make([]string, 0, len(res.Errors))
	for _, err := range res.Errors {
		errs = append(errs, err.Error())
	}
	response.Success(c, http.StatusOK, gin.H{
		"cancelled_count": res.CancelledCount,
		"skipped":         res.Skipped,
		"errors":          errs,
	})
}

func parseQueryTime(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", raw)
}

func writeError(c *gin.Context, err error) {
	code := ErrorCode(err)
	status := httpStatus(code)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		response.Error(c, status, code, "Failed to process booking")
		return
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		response.ErrorWithDetails(c, status, code, "Invalid booking request", verr.Fields)
		return
	}
	response.Error(c, status, code, err.Error())
}
