package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Ism1tha/odoo-mqtt-addon/internal/automation"
	"github.com/Ism1tha/odoo-mqtt-addon/internal/models"
)

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

// CreateOrderRequest is the payload for creating a manufacturing order.
type CreateOrderRequest struct {
	Name         string  `json:"name" binding:"required"`
	ProductID    uint    `json:"product_id" binding:"required"`
	Quantity     float64 `json:"quantity"`
	BOMID        *uint   `json:"bom_id"`
	RobotID      *uint   `json:"robot_id"`
	WorkCenterID *uint   `json:"work_center_id"`
}

// CreateOrder creates a draft order, with a single work order when a work
// center is given.
func (s *Server) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var product models.Product
	if err := s.db.First(&product, req.ProductID).Error; err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Product not found"})
		return
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	order := models.Order{
		Name:            req.Name,
		State:           string(models.OrderStateDraft),
		Quantity:        quantity,
		ProductID:       req.ProductID,
		BOMID:           req.BOMID,
		SelectedRobotID: req.RobotID,
	}
	if err := s.db.Create(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.WorkCenterID != nil {
		wo := models.WorkOrder{
			OrderID:      order.ID,
			Name:         order.Name + "/1",
			State:        string(models.WorkOrderStatePending),
			WorkCenterID: *req.WorkCenterID,
		}
		if err := s.db.Create(&wo).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		order.WorkOrders = []models.WorkOrder{wo}
	}

	c.JSON(http.StatusCreated, order)
}

// StartOrderProcessing dispatches the order's remote robot task.
func (s *Server) StartOrderProcessing(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := s.engine.StartProcessing(id); err != nil {
		dispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "MQTT processing started"})
}

// StopOrderProcessing aborts automation and returns the order to draft.
func (s *Server) StopOrderProcessing(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := s.engine.StopProcessing(id); err != nil {
		dispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "MQTT processing stopped"})
}

// PerformOrderAction runs a manual manufacturing action, subject to the
// automation guard.
func (s *Server) PerformOrderAction(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	action := automation.ManualAction(c.Param("action"))
	if err := s.engine.PerformManualAction(id, action); err != nil {
		dispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Action " + string(action) + " applied"})
}

// PerformWorkOrderAction runs a manual action on a single work order,
// subject to the unconditional block while the parent is processing.
func (s *Server) PerformWorkOrderAction(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	action := automation.WorkOrderAction(c.Param("action"))
	if err := s.engine.PerformWorkOrderManualAction(id, action); err != nil {
		dispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Action " + string(action) + " applied"})
}

// StartProcessingOnProduct dispatches every order manufacturing the given
// product. Failures are collected per order so one bad order does not
// stop the rest.
func (s *Server) StartProcessingOnProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var orders []models.Order
	if err := s.db.Where("product_id = ?", id).Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	started := 0
	failures := make(map[string]string)
	for _, order := range orders {
		if err := s.engine.StartProcessing(order.ID); err != nil {
			failures[strconv.Itoa(int(order.ID))] = err.Error()
			continue
		}
		started++
	}

	c.JSON(http.StatusOK, gin.H{
		"started":  started,
		"failures": failures,
	})
}
