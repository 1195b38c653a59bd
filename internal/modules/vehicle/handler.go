package vehicle

import (
	"context"
	"net/http"

	"bookxe/internal/domain"
	"bookxe/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Catalog is the read side of the vehicle registry.
type Catalog interface {
	ListBookable(ctx context.Context) ([]domain.Vehicle, error)
}

// Handler serves the vehicle picker of the booking form. Vehicles are
// maintained elsewhere; nothing here writes.
type Handler struct {
	catalog Catalog
}

func NewHandler(catalog Catalog) *Handler {
	return &Handler{catalog: catalog}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/vehicles", h.ListBookable)
}

func (h *Handler) ListBookable(c *gin.Context) {
	list, err := h.catalog.ListBookable(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "PERSISTENCE_FAILURE", "Failed to list vehicles")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"vehicles": list})
}
