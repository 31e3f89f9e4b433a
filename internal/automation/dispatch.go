package automation

import (
	"errors"
	"fmt"
	"log"

	"github.com/Ism1tha/odoo-mqtt-addon/internal/metrics"
	"github.com/Ism1tha/odoo-mqtt-addon/internal/models"
	"github.com/Ism1tha/odoo-mqtt-addon/internal/payload"
	"github.com/Ism1tha/odoo-mqtt-addon/internal/stock"
	"github.com/Ism1tha/odoo-mqtt-addon/internal/taskclient"
	"github.com/Ism1tha/odoo-mqtt-addon/internal/topic"
)

// StartProcessing dispatches the order's remote robot task. The
// precondition checks run in a fixed sequence, each with its own error,
// so the operator always learns the first blocking condition. Only after
// every check passes is the remote task created; the processing state,
// task id and payload are then stored together.
func (e *Engine) StartProcessing(orderID uint) error {
	order, err := e.loadOrder(orderID)
	if err != nil {
		return err
	}

	if !order.IsAutomated() {
		return e.refuseDispatch("not_action_product", ErrNotActionProduct)
	}

	if len(order.WorkOrders) > 1 {
		return e.refuseDispatch("too_many_work_orders", ErrTooManyWorkOrders)
	}

	if order.State == string(models.OrderStateDraft) {
		if err := e.setOrderState(e.db, order, models.OrderStateConfirmed, nil); err != nil {
			return err
		}
	}

	if len(order.WorkOrders) == 0 {
		return e.refuseDispatch("no_work_orders", ErrNoWorkOrders)
	}

	if order.BOM == nil {
		return e.refuseDispatch("no_bom", ErrNoBOM)
	}

	if err := stock.CheckAvailability(e.db, order); err != nil {
		return e.refuseDispatch("insufficient_stock", err)
	}

	workCenter := order.WorkOrders[0].WorkCenter
	if workCenter == nil || len(workCenter.Robots) == 0 {
		return e.refuseDispatch("no_robots", ErrNoRobots)
	}

	if order.SelectedRobot == nil {
		return e.refuseDispatch("no_robot_selected", ErrNoRobotSelected)
	}

	robotAssigned := false
	for _, r := range workCenter.Robots {
		if r.ID == order.SelectedRobot.ID {
			robotAssigned = true
			break
		}
	}
	if !robotAssigned {
		return e.refuseDispatch("robot_not_assigned", ErrRobotNotAssigned)
	}

	prefix := topic.Resolve(order)
	if prefix == "" {
		return e.refuseDispatch("no_topic", ErrNoTopic)
	}

	routingKey := topic.RoutingKey(prefix, order.SelectedRobot)
	binaryPayload := payload.Encode(bomLines(order))

	taskID, err := e.client.CreateTask(order.ID, routingKey, binaryPayload, "normal")
	if err != nil {
		metrics.RemoteTaskCallsTotal.WithLabelValues("create", "failure").Inc()
		log.Printf("Failed to create MQTT task for order %d: %v", order.ID, err)
		return fmt.Errorf("%w: %v", ErrRemoteTaskCreation, err)
	}
	metrics.RemoteTaskCallsTotal.WithLabelValues("create", "success").Inc()

	return e.setOrderState(e.db, order, models.OrderStateProcessing, map[string]interface{}{
		"remote_task_id": taskID,
		"binary_payload": binaryPayload,
	})
}

// StopProcessing aborts automation for an order in processing: the remote
// task is deleted first, then every work order is reset to pending and
// the order returns to draft with its task reference cleared. A remote
// "not found" counts as already deleted; any other delete failure aborts
// with the order unchanged.
func (e *Engine) StopProcessing(orderID uint) error {
	if !e.locks.TryLock(orderID) {
		return ErrOrderBusy
	}
	defer e.locks.Unlock(orderID)

	order, err := e.loadOrder(orderID)
	if err != nil {
		return err
	}

	if order.State != string(models.OrderStateProcessing) {
		return ErrNotProcessing
	}

	if order.RemoteTaskID != "" {
		err := e.client.DeleteTask(order.RemoteTaskID)
		switch {
		case errors.Is(err, taskclient.ErrTaskNotFound):
			metrics.RemoteTaskCallsTotal.WithLabelValues("delete", "not_found").Inc()
			log.Printf("Remote task %s for order %d already gone, continuing abort", order.RemoteTaskID, order.ID)
		case err != nil:
			metrics.RemoteTaskCallsTotal.WithLabelValues("delete", "failure").Inc()
			return fmt.Errorf("failed to delete MQTT task %s: %w", order.RemoteTaskID, err)
		default:
			metrics.RemoteTaskCallsTotal.WithLabelValues("delete", "success").Inc()
		}
	}

	if err := e.resetToDraft(order); err != nil {
		return err
	}

	log.Printf("MQTT processing stopped for order %d", order.ID)
	return nil
}

func (e *Engine) refuseDispatch(reason string, err error) error {
	metrics.DispatchFailuresTotal.WithLabelValues(reason).Inc()
	return err
}

func bomLines(order *models.Order) []models.BOMLine {
	if order.BOM == nil {
		return nil
	}
	return order.BOM.Lines
}
