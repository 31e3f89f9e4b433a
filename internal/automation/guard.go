package automation

import (
	"github.com/Ism1tha/odoo-mqtt-addon/internal/models"
)

// ManualAction identifies an operator action offered by the planning
// subsystem's surfaces. The guard owns the blocking policy; the surface
// owns the call site.
type ManualAction string

const (
	ActionConfirm  ManualAction = "confirm"
	ActionPlan     ManualAction = "plan"
	ActionAssign   ManualAction = "assign"
	ActionMarkDone ManualAction = "mark_done"
	ActionCancel   ManualAction = "cancel"
)

// WorkOrderAction identifies a manual action on a single work order.
type WorkOrderAction string

const (
	WorkOrderActionStart   WorkOrderAction = "start"
	WorkOrderActionFinish  WorkOrderAction = "finish"
	WorkOrderActionPending WorkOrderAction = "pending"
	WorkOrderActionDone    WorkOrderAction = "done"
	WorkOrderActionCancel  WorkOrderAction = "cancel"
)

// MayPerform reports whether a manual manufacturing action is allowed on
// the order. Automated products in confirmed or progress with no remote
// task outstanding must go through dispatch instead, so every manual
// action on them is refused with ErrBlockedByAutomation.
func MayPerform(action ManualAction, order *models.Order) error {
	if shouldBlock(order) {
		return ErrBlockedByAutomation
	}
	return nil
}

// MayPerformWorkOrderAction reports whether a manual action on a single
// work order is allowed. While the parent order is processing, work-order
// buttons are blocked unconditionally: the completion handler owns their
// state until the remote task resolves.
func MayPerformWorkOrderAction(action WorkOrderAction, order *models.Order) error {
	if order.State == string(models.OrderStateProcessing) {
		return ErrBlockedByAutomation
	}
	if shouldBlock(order) {
		return ErrBlockedByAutomation
	}
	return nil
}

// shouldBlock is the core blocking condition: an action-typed product
// sitting in confirmed or progress with no task outstanding.
func shouldBlock(order *models.Order) bool {
	return order.IsAutomated() &&
		(order.State == string(models.OrderStateConfirmed) || order.State == string(models.OrderStateProgress)) &&
		order.RemoteTaskID == ""
}
