// Package api exposes the HTTP surface of the MQTT integration: the
// status-update endpoint called by the task system, a health check, and
// the operator-facing order and configuration routes.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"

	"github.com/Ism1tha/odoo-mqtt-addon/internal/automation"
	"github.com/Ism1tha/odoo-mqtt-addon/internal/models"
	"github.com/Ism1tha/odoo-mqtt-addon/internal/web"
)

// Server wires the HTTP routes to the automation engine and order store.
type Server struct {
	router *gin.Engine
	db     *gorm.DB
	engine *automation.Engine
	hub    *web.Hub
}

// NewServer creates the API server and registers all routes. The hub is
// optional; without it no WebSocket feed is exposed.
func NewServer(db *gorm.DB, engine *automation.Engine, hub *web.Hub) *Server {
	s := &Server{
		router: gin.Default(),
		db:     db,
		engine: engine,
		hub:    hub,
	}
	s.setupRoutes()
	return s
}

// Router returns the Gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	// Endpoints consumed by the MQTT task system.
	s.router.POST("/mqtt-integration/update-production-status", s.UpdateProductionStatus)
	s.router.GET("/mqtt-integration/health", s.HealthCheck)

	if s.hub != nil {
		s.router.GET("/ws", s.hub.HandleWebSocket)
	}

	v1 := s.router.Group("/api/v1")
	{
		// Order lifecycle
		v1.GET("/orders", s.ListOrders)
		v1.GET("/orders/:id", s.GetOrder)
		v1.POST("/orders", s.CreateOrder)
		v1.POST("/orders/:id/start", s.StartOrderProcessing)
		v1.POST("/orders/:id/stop", s.StopOrderProcessing)
		v1.POST("/orders/:id/actions/:action", s.PerformOrderAction)
		v1.POST("/work-orders/:id/actions/:action", s.PerformWorkOrderAction)

		// Configuration views
		v1.GET("/robots", s.ListRobots)
		v1.GET("/work-centers", s.ListWorkCenters)
		v1.GET("/products", s.ListProducts)
		v1.POST("/products/:id/start-processing", s.StartProcessingOnProduct)
	}
}

// ListOrders returns all orders with their work orders.
func (s *Server) ListOrders(c *gin.Context) {
	var orders []models.Order
	if err := s.db.Preload("WorkOrders").Preload("Product").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder returns one order with its automation fields.
func (s *Server) GetOrder(c *gin.Context) {
	var order models.Order
	err := s.db.
		Preload("WorkOrders.WorkCenter").
		Preload("Product").
		Preload("SelectedRobot").
		Where("id = ?", c.Param("id")).
		First(&order).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListRobots returns all configured robots.
func (s *Server) ListRobots(c *gin.Context) {
	var robots []models.Robot
	if err := s.db.Find(&robots).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, robots)
}

// ListWorkCenters returns all work centers with their robots.
func (s *Server) ListWorkCenters(c *gin.Context) {
	var centers []models.WorkCenter
	if err := s.db.Preload("Robots").Find(&centers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, centers)
}

// ListProducts returns all products with their MQTT configuration.
func (s *Server) ListProducts(c *gin.Context) {
	var products []models.Product
	if err := s.db.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, products)
}
