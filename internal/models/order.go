package models

import (
	"github.com/jinzhu/gorm"
)

// Order represents a manufacturing order automated through the MQTT bridge
type Order struct {
	gorm.Model
	Name            string
	State           string
	Quantity        float64
	ProductID       uint
	Product         *Product `gorm:"foreignkey:ProductID"`
	BOMID           *uint
	BOM             *BillOfMaterials `gorm:"foreignkey:BOMID"`
	SelectedRobotID *uint
	SelectedRobot   *Robot      `gorm:"foreignkey:SelectedRobotID"`
	WorkOrders      []WorkOrder `gorm:"foreignkey:OrderID"`
	// RemoteTaskID is the opaque reference returned by the task API.
	// Non-empty exactly while State == processing.
	RemoteTaskID string
	// BinaryPayload is the encoded signal sent with the task, retained
	// for audit and idempotent replay.
	BinaryPayload string
}

// OrderState represents the possible states of an order
type OrderState string

const (
	OrderStateDraft      OrderState = "draft"
	OrderStateConfirmed  OrderState = "confirmed"
	OrderStateProgress   OrderState = "progress"
	OrderStateProcessing OrderState = "processing"
	OrderStateDone       OrderState = "done"
	OrderStateCancel     OrderState = "cancel"
)

// WorkOrder represents one manufacturing operation belonging to an Order
type WorkOrder struct {
	gorm.Model
	OrderID      uint
	Name         string
	State        string
	WorkCenterID uint
	WorkCenter   *WorkCenter `gorm:"foreignkey:WorkCenterID"`
}

// WorkOrderState represents the possible states of a work order
type WorkOrderState string

const (
	WorkOrderStatePending  WorkOrderState = "pending"
	WorkOrderStateWaiting  WorkOrderState = "waiting"
	WorkOrderStateReady    WorkOrderState = "ready"
	WorkOrderStateProgress WorkOrderState = "progress"
	WorkOrderStateDone     WorkOrderState = "done"
	WorkOrderStateCancel   WorkOrderState = "cancel"
)

// IsAutomated reports whether the order's product is configured for
// robot processing.
func (o *Order) IsAutomated() bool {
	return o.Product != nil && o.Product.MQTTType == string(ProductTypeAction)
}
