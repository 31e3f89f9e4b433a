package automation

import (
	"fmt"

	"github.com/jinzhu/gorm"

	"github.com/Ism1tha/odoo-mqtt-addon/internal/models"
	"github.com/Ism1tha/odoo-mqtt-addon/internal/stock"
)

// PerformManualAction executes an operator action on an order after the
// automation guard has cleared it. These actions belong to the planning
// subsystem; the engine only enforces the blocking policy and the state
// transition table around them.
func (e *Engine) PerformManualAction(orderID uint, action ManualAction) error {
	order, err := e.loadOrder(orderID)
	if err != nil {
		return err
	}

	if err := MayPerform(action, order); err != nil {
		return err
	}

	switch action {
	case ActionConfirm:
		return e.setOrderState(e.db, order, models.OrderStateConfirmed, nil)
	case ActionPlan:
		return e.planWorkOrders(order)
	case ActionAssign:
		return stock.Assign(e.db, order)
	case ActionMarkDone:
		return e.setOrderState(e.db, order, models.OrderStateDone, nil)
	case ActionCancel:
		return e.setOrderState(e.db, order, models.OrderStateCancel, nil)
	default:
		return fmt.Errorf("unknown manual action %q", action)
	}
}

// PerformWorkOrderManualAction executes an operator action on a single
// work order, subject to the unconditional block while the parent order
// is processing.
func (e *Engine) PerformWorkOrderManualAction(workOrderID uint, action WorkOrderAction) error {
	var wo models.WorkOrder
	if err := e.db.First(&wo, workOrderID).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return fmt.Errorf("work order %d not found", workOrderID)
		}
		return err
	}

	order, err := e.loadOrder(wo.OrderID)
	if err != nil {
		return err
	}

	if err := MayPerformWorkOrderAction(action, order); err != nil {
		return err
	}

	var target models.WorkOrderState
	switch action {
	case WorkOrderActionStart:
		target = models.WorkOrderStateProgress
	case WorkOrderActionFinish, WorkOrderActionDone:
		target = models.WorkOrderStateDone
	case WorkOrderActionPending:
		target = models.WorkOrderStatePending
	case WorkOrderActionCancel:
		target = models.WorkOrderStateCancel
	default:
		return fmt.Errorf("unknown work order action %q", action)
	}

	wo.State = string(target)
	if err := e.db.Model(&wo).Update("state", string(target)).Error; err != nil {
		return fmt.Errorf("failed to apply %s to work order %d: %w", action, wo.ID, err)
	}
	return nil
}

// planWorkOrders moves pending work orders to ready, the planning
// subsystem's scheduling step.
func (e *Engine) planWorkOrders(order *models.Order) error {
	for i := range order.WorkOrders {
		wo := &order.WorkOrders[i]
		if wo.State != string(models.WorkOrderStatePending) {
			continue
		}
		wo.State = string(models.WorkOrderStateReady)
		if err := e.db.Model(wo).Update("state", wo.State).Error; err != nil {
			return fmt.Errorf("failed to plan work order %d: %w", wo.ID, err)
		}
	}
	return nil
}
