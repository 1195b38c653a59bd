package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookxe/internal/middleware"
	"bookxe/internal/modules/booking"
	"bookxe/internal/modules/notification"
	"bookxe/internal/modules/vehicle"
	jwtsvc "bookxe/internal/pkg/jwt"
)

type routes struct {
	jwt           *jwtsvc.Service
	corsOrigins   string
	bookings      *booking.Handler
	notifications *notification.Handler
	vehicles      *vehicle.Handler
}

func newRouter(rt routes) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), middleware.ErrorLogger(), middleware.CORS(rt.corsOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(rt.jwt))
	{
		rt.bookings.RegisterRoutes(protected)
		rt.notifications.RegisterRoutes(protected)
		rt.vehicles.RegisterRoutes(protected)
	}
	return r
}
