package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ism1tha/odoo-mqtt-addon/internal/automation"
	"github.com/Ism1tha/odoo-mqtt-addon/internal/stock"
)

// StatusUpdateRequest is the notification payload sent by the MQTT task
// system when a robot task reaches a terminal outcome.
type StatusUpdateRequest struct {
	ProductionID string `json:"productionId"`
	Status       string `json:"status"`
	TaskID       string `json:"taskId"`
}

// StatusUpdateResponse is the envelope every status-update reply uses.
type StatusUpdateResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func successResponse(c *gin.Context, message string) {
	c.JSON(http.StatusOK, StatusUpdateResponse{
		Status:    "success",
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, StatusUpdateResponse{
		Status:    "error",
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// UpdateProductionStatus handles a task outcome notification. The payload
// is validated before any state is touched; processing itself is
// delegated to the automation engine, which owns locking and idempotency.
func (s *Server) UpdateProductionStatus(c *gin.Context) {
	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if req.ProductionID == "" || req.Status == "" {
		errorResponse(c, http.StatusBadRequest, "Missing required fields: productionId, status")
		return
	}
	if req.Status != automation.StatusDone && req.Status != automation.StatusFailed {
		errorResponse(c, http.StatusBadRequest, "Invalid status. Valid options: done, failed")
		return
	}

	orderID, err := strconv.ParseUint(req.ProductionID, 10, 32)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid production ID format")
		return
	}

	message, err := s.engine.HandleNotification(automation.Notification{
		OrderID: uint(orderID),
		Status:  req.Status,
		TaskID:  req.TaskID,
	})
	if err != nil {
		switch {
		case errors.Is(err, automation.ErrOrderNotFound):
			errorResponse(c, http.StatusNotFound, "Production "+req.ProductionID+" not found")
		case errors.Is(err, automation.ErrTaskMismatch):
			errorResponse(c, http.StatusConflict, "Task ID mismatch")
		default:
			errorResponse(c, http.StatusInternalServerError, "Internal server error: "+err.Error())
		}
		return
	}

	successResponse(c, message)
}

// HealthCheck reports whether the order store is reachable and how many
// orders it holds.
func (s *Server) HealthCheck(c *gin.Context) {
	var count int
	if err := s.db.Table("orders").Count(&count).Error; err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":              "unhealthy",
			"message":             "System error: " + err.Error(),
			"timestamp":           time.Now().Format(time.RFC3339),
			"database_accessible": false,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":              "healthy",
		"message":             "MQTT integration bridge is running",
		"timestamp":           time.Now().Format(time.RFC3339),
		"database_accessible": true,
		"production_records":  count,
	})
}

// dispatchError maps an automation error to the HTTP status and message
// shown to the operator.
func dispatchError(c *gin.Context, err error) {
	var stockErr *stock.InsufficientStockError
	switch {
	case errors.Is(err, automation.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, automation.ErrRemoteTaskCreation):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, automation.ErrOrderBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, automation.ErrBlockedByAutomation):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	}
}
