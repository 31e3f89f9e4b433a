// Package workorder drives work-order state once the parent order's remote
// task has resolved. Completion forces each work order to done; failure
// cancels whatever is still active.
package workorder

import (
	"fmt"
	"log"

	"github.com/jinzhu/gorm"

	"github.com/Ism1tha/odoo-mqtt-addon/internal/models"
	"github.com/Ism1tha/odoo-mqtt-addon/internal/stock"
)

// transition is one step of the forced progression. attempt runs the
// natural operation for the step; when it fails the state field is forced
// to the target instead of propagating the error.
type transition struct {
	from    models.WorkOrderState
	to      models.WorkOrderState
	attempt func(db *gorm.DB, order *models.Order, wo *models.WorkOrder) error
}

// progression walks a work order from waiting to done. The robot already
// performed the physical work, so every intermediate refusal from the
// planning rules is overridden.
var progression = []transition{
	{models.WorkOrderStateWaiting, models.WorkOrderStateReady, attemptReserve},
	{models.WorkOrderStateReady, models.WorkOrderStateProgress, attemptStart},
	{models.WorkOrderStateProgress, models.WorkOrderStateDone, attemptFinish},
}

// Complete forces a single work order through its remaining states. The
// terminal guarantee is unconditional: the work order's state is done when
// this returns, regardless of which natural operations succeeded.
func Complete(db *gorm.DB, order *models.Order, wo *models.WorkOrder) error {
	log.Printf("Completing work order %d (current state: %s)", wo.ID, wo.State)

	for _, step := range progression {
		if wo.State != string(step.from) {
			continue
		}
		if step.attempt != nil {
			if err := step.attempt(db, order, wo); err != nil {
				log.Printf("Could not move work order %d from %s to %s normally: %v. Forcing.",
					wo.ID, step.from, step.to, err)
			}
		}
		if err := setState(db, wo, step.to); err != nil {
			return err
		}
	}

	// Work orders parked in pending or cancel skip the table entirely;
	// the terminal rule still applies.
	if wo.State != string(models.WorkOrderStateDone) {
		log.Printf("Work order %d forced to done from %s", wo.ID, wo.State)
		if err := setState(db, wo, models.WorkOrderStateDone); err != nil {
			return err
		}
	}

	return nil
}

// CancelActive cancels every work order of the order still in pending,
// ready or progress. Used by the failure path; it only writes state
// fields and therefore has no partial-failure branch.
func CancelActive(db *gorm.DB, order *models.Order) error {
	for i := range order.WorkOrders {
		wo := &order.WorkOrders[i]
		switch wo.State {
		case string(models.WorkOrderStatePending),
			string(models.WorkOrderStateReady),
			string(models.WorkOrderStateProgress):
			if err := setState(db, wo, models.WorkOrderStateCancel); err != nil {
				return err
			}
		}
	}
	return nil
}

// ResetAll returns every work order to pending, used when automation is
// aborted and the order goes back to draft.
func ResetAll(db *gorm.DB, order *models.Order) error {
	for i := range order.WorkOrders {
		if err := setState(db, &order.WorkOrders[i], models.WorkOrderStatePending); err != nil {
			return err
		}
	}
	return nil
}

func setState(db *gorm.DB, wo *models.WorkOrder, state models.WorkOrderState) error {
	wo.State = string(state)
	if err := db.Model(wo).Update("state", string(state)).Error; err != nil {
		return fmt.Errorf("failed to set work order %d state to %s: %w", wo.ID, state, err)
	}
	return nil
}

// attemptReserve satisfies the waiting prerequisite by re-running material
// assignment for the parent order.
func attemptReserve(db *gorm.DB, order *models.Order, wo *models.WorkOrder) error {
	return stock.Assign(db, order)
}

// attemptStart is the natural "start" operation. It refuses to start a
// work order whose materials were never reserved, mirroring the planning
// subsystem's own rule.
func attemptStart(db *gorm.DB, order *models.Order, wo *models.WorkOrder) error {
	if order.BOM == nil || len(order.BOM.Lines) == 0 {
		return nil
	}

	var count int
	db.Model(&models.StockMove{}).
		Where("order_id = ? AND direction = ?", order.ID, string(models.MoveDirectionConsume)).
		Count(&count)
	if count == 0 {
		return fmt.Errorf("components not reserved for order %d", order.ID)
	}
	return nil
}

// attemptFinish is the natural "finish" operation.
func attemptFinish(db *gorm.DB, order *models.Order, wo *models.WorkOrder) error {
	if wo.State != string(models.WorkOrderStateProgress) {
		return fmt.Errorf("work order %d is not in progress", wo.ID)
	}
	return nil
}
