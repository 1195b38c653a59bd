package notification

import (
	"errors"
	"net/http"
	"strconv"

	"bookxe/internal/middleware"
	"bookxe/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	g := protected.Group("/notifications")
	{
		g.GET("", h.GetNotifications)
		g.GET("/unread-count", h.GetUnreadCount)
		g.PATCH("/:id/read", h.MarkAsRead)
		g.PATCH("/read-all", h.MarkAllAsRead)
	}
}

func (h *Handler) GetNotifications(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	limit := 0
	if s := c.Query("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}

	list, err := h.service.List(c.Request.Context(), actor, limit)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "PERSISTENCE_FAILURE", "Failed to get notifications")
		return
	}

	unread, err := h.service.UnreadCount(c.Request.Context(), actor)
	if err != nil {
		_ = c.Error(err)
		unread = 0
	}

	response.Success(c, http.StatusOK, gin.H{
		"notifications": list,
		"unread_count":  unread,
	})
}

func (h *Handler) GetUnreadCount(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	unread, err := h.service.UnreadCount(c.Request.Context(), actor)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "PERSISTENCE_FAILURE", "Failed to count notifications")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unread_count": unread})
}

func (h *Handler) MarkAsRead(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION", "Invalid notification ID")
		return
	}

	if err := h.service.MarkAsRead(c.Request.Context(), id, actor); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Notification not found")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "PERSISTENCE_FAILURE", "Failed to mark as read")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "read"})
}

func (h *Handler) MarkAllAsRead(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	n, err := h.service.MarkAllAsRead(c.Request.Context(), actor)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "PERSISTENCE_FAILURE", "Failed to mark as read")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "all_read", "updated": n})
}
