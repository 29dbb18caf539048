package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/avasiliu/plantops/internal/domain/activity"
	"github.com/avasiliu/plantops/internal/domain/order"
	"github.com/gin-gonic/gin"
)

// ListLines returns the production lines in display order.
func (s *Server) ListLines(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"lines": s.orders.Lines(),
		"grid":  s.orders.Grid(),
	})
}

// GetGrid returns the utilization cell for every (line, hour) pair.
func (s *Server) GetGrid(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cells": s.orders.Utilization()})
}

type createOrderRequest struct {
	ClientRef     string         `json:"client_ref"`
	Items         []order.Item   `json:"items"`
	LineID        string         `json:"line_id"`
	StartHour     int            `json:"start_hour"`
	DurationHours int            `json:"duration_hours"`
	Priority      order.Priority `json:"priority"`
	Deadline      time.Time      `json:"deadline"`
}

// CreateOrder handles a wizard submission.
func (s *Server) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := s.orders.Create(c.Request.Context(), order.CreateRequest{
		ClientRef:     req.ClientRef,
		Items:         req.Items,
		LineID:        req.LineID,
		StartHour:     req.StartHour,
		DurationHours: req.DurationHours,
		Priority:      req.Priority,
		Deadline:      req.Deadline,
	})
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// ListOrders returns scheduled orders, optionally filtered by line and status.
func (s *Server) ListOrders(c *gin.Context) {
	opts := order.ListOptions{LineID: c.Query("line_id")}
	if st := c.Query("status"); st != "" {
		status := order.Status(st)
		if !status.Valid() {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unknown status", "fields": []string{"status"}})
			return
		}
		opts.Statuses = []order.Status{status}
	}

	orders, err := s.orders.List(c.Request.Context(), opts)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrder returns one scheduled order.
func (s *Server) GetOrder(c *gin.Context) {
	o, err := s.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type updateOrderRequest struct {
	ClientRef     *string         `json:"client_ref"`
	Items         []order.Item    `json:"items"`
	LineID        *string         `json:"line_id"`
	StartHour     *int            `json:"start_hour"`
	DurationHours *int            `json:"duration_hours"`
	Priority      *order.Priority `json:"priority"`
	Deadline      *time.Time      `json:"deadline"`
	Status        *order.Status   `json:"status"`
}

// UpdateOrder patches an order; absent fields are left unchanged.
func (s *Server) UpdateOrder(c *gin.Context) {
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := s.orders.Update(c.Request.Context(), order.UpdateRequest{
		ID:            c.Param("id"),
		ClientRef:     req.ClientRef,
		Items:         req.Items,
		LineID:        req.LineID,
		StartHour:     req.StartHour,
		DurationHours: req.DurationHours,
		Priority:      req.Priority,
		Deadline:      req.Deadline,
		Status:        req.Status,
	})
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// DeleteOrder discards an order entirely.
func (s *Server) DeleteOrder(c *gin.Context) {
	if err := s.orders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type transitionRequest struct {
	To order.Status `json:"to"`
}

// TransitionOrder moves an order along the lifecycle graph.
func (s *Server) TransitionOrder(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.To.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unknown status", "fields": []string{"to"}})
		return
	}

	o, err := s.orders.Transition(c.Request.Context(), c.Param("id"), req.To)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// ReserveMaterials commits the order's quantities against stock accounting.
func (s *Server) ReserveMaterials(c *gin.Context) {
	o, err := s.orders.ReserveMaterials(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// ChangeLine moves the order to the next production line.
func (s *Server) ChangeLine(c *gin.Context) {
	o, err := s.orders.ChangeLine(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type placementRequest struct {
	Candidate order.CandidateOrder `json:"candidate"`
	LineID    string               `json:"line_id"`
	StartHour int                  `json:"start_hour"`
}

type placementResponse struct {
	Order   *order.ScheduledOrder `json:"order"`
	Warning *order.StockWarning   `json:"warning,omitempty"`
}

// PlaceOrder schedules a candidate onto a (line, hour) drop point. The
// response carries the stock warning, if any, for the operator to
// acknowledge or act on; the placement itself has already happened.
func (s *Server) PlaceOrder(c *gin.Context) {
	var req placementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, warning, err := s.orders.Place(c.Request.Context(), req.Candidate, req.LineID, req.StartHour)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, placementResponse{Order: o, Warning: warning})
}

// QueryStock returns the oracle snapshot for a recipe.
func (s *Server) QueryStock(c *gin.Context) {
	snap, err := s.orders.QueryStock(c.Request.Context(), c.Param("recipe"))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "stock unknown"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// ListActivity returns the planning history, newest first.
func (s *Server) ListActivity(c *gin.Context) {
	opts := activity.ListOptions{Limit: 50}
	if id := c.Query("order_id"); id != "" {
		opts.OrderID = &id
	}

	entries, err := s.activities.Recent(c.Request.Context(), opts)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (s *Server) renderError(c *gin.Context, err error) {
	var verr *order.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, order.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, order.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, order.ErrInvalidTransition), errors.Is(err, order.ErrOrderCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
