// Package httpapi exposes the scheduling core to the dashboard as a JSON
// REST API. Table rendering, CSV export and locale formatting all live in
// the frontend; this layer only maps service calls to HTTP.
package httpapi

import (
	"log/slog"

	"github.com/avasiliu/plantops/internal/domain/activity"
	"github.com/avasiliu/plantops/internal/domain/order"
	"github.com/gin-gonic/gin"
)

// Server holds the REST surface of the scheduling core.
type Server struct {
	Router     *gin.Engine
	orders     *order.Service
	activities *activity.Service
	logger     *slog.Logger
}

// NewServer builds the router and registers all routes.
func NewServer(orders *order.Service, activities *activity.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		Router:     router,
		orders:     orders,
		activities: activities,
		logger:     logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := s.Router.Group("/api/v1")
	{
		v1.GET("/lines", s.ListLines)
		v1.GET("/grid", s.GetGrid)

		v1.POST("/orders", s.CreateOrder)
		v1.GET("/orders", s.ListOrders)
		v1.GET("/orders/:id", s.GetOrder)
		v1.PATCH("/orders/:id", s.UpdateOrder)
		v1.DELETE("/orders/:id", s.DeleteOrder)

		v1.POST("/orders/:id/transition", s.TransitionOrder)
		v1.POST("/orders/:id/reserve", s.ReserveMaterials)
		v1.POST("/orders/:id/change-line", s.ChangeLine)

		v1.POST("/placements", s.PlaceOrder)

		v1.GET("/stock/:recipe", s.QueryStock)
		v1.GET("/activity", s.ListActivity)
	}
}
