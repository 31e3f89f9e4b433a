package models

import (
	"github.com/jinzhu/gorm"
)

// StockLocation represents a place where product quantities are held
type StockLocation struct {
	gorm.Model
	Name  string
	Usage string
}

// StockLocationUsage represents the role of a stock location
type StockLocationUsage string

const (
	LocationUsageInternal   StockLocationUsage = "internal"
	LocationUsageProduction StockLocationUsage = "production"
)

// StockQuant tracks the on-hand quantity of a product at a location
type StockQuant struct {
	gorm.Model
	ProductID  uint
	Product    *Product `gorm:"foreignkey:ProductID"`
	LocationID uint
	Quantity   float64
}

// StockMove is an audit-tracked record of a single quantity movement.
// Every reconciliation writes moves alongside the quant adjustments so
// consumption and production stay traceable per order.
type StockMove struct {
	gorm.Model
	OrderID       uint
	ProductID     uint
	Product       *Product `gorm:"foreignkey:ProductID"`
	Quantity      float64
	Direction     string
	SourceID      uint
	DestinationID uint
	State         string
}

// StockMoveDirection discriminates consumption from production
type StockMoveDirection string

const (
	MoveDirectionConsume StockMoveDirection = "consume"
	MoveDirectionProduce StockMoveDirection = "produce"
)

// StockMoveState represents the lifecycle of a movement record
type StockMoveState string

const (
	MoveStateDraft StockMoveState = "draft"
	MoveStateDone  StockMoveState = "done"
)
