package automation

import (
	"fmt"
	"log"

	"github.com/Ism1tha/odoo-mqtt-addon/internal/metrics"
	"github.com/Ism1tha/odoo-mqtt-addon/internal/models"
	"github.com/Ism1tha/odoo-mqtt-addon/internal/stock"
	"github.com/Ism1tha/odoo-mqtt-addon/internal/workorder"
)

// Notification is an inbound status report from the MQTT task system.
type Notification struct {
	OrderID uint
	Status  string
	TaskID  string
}

// Notification statuses accepted from the task API.
const (
	StatusDone   = "done"
	StatusFailed = "failed"
)

// HandleNotification reconciles a task outcome into the order lifecycle.
// The returned message describes the result for the notification caller.
//
// Notifications may be delivered more than once and concurrently. The
// per-order lock is acquired without blocking: a second arrival for the
// same order is reported as a successful no-op instead of queueing
// redundant work behind the winner. The order is loaded only after the
// lock is held, so the idempotency checks and task-id comparison always
// see the winner's writes, never a pre-lock snapshot.
func (e *Engine) HandleNotification(n Notification) (string, error) {
	if !e.locks.TryLock(n.OrderID) {
		// Duplicate delivery racing the winner. Explicit success path.
		metrics.NotificationsTotal.WithLabelValues(n.Status, "duplicate").Inc()
		log.Printf("Order %d update already in progress, skipping duplicate notification", n.OrderID)
		return "Production update already in progress", nil
	}
	defer e.locks.Unlock(n.OrderID)

	order, err := e.loadOrder(n.OrderID)
	if err != nil {
		if err == ErrOrderNotFound {
			metrics.NotificationsTotal.WithLabelValues(n.Status, "rejected").Inc()
		}
		return "", err
	}

	if n.Status == StatusDone && order.State == string(models.OrderStateDone) {
		metrics.NotificationsTotal.WithLabelValues(n.Status, "duplicate").Inc()
		log.Printf("Order %d already completed, skipping duplicate notification", n.OrderID)
		return "Production already completed", nil
	}
	if n.Status == StatusFailed &&
		(order.State == string(models.OrderStateCancel) || order.State == string(models.OrderStateDraft)) {
		metrics.NotificationsTotal.WithLabelValues(n.Status, "duplicate").Inc()
		log.Printf("Order %d already failed/cancelled, skipping duplicate notification", n.OrderID)
		return "Production already failed/cancelled", nil
	}

	if n.TaskID != "" && order.RemoteTaskID != n.TaskID {
		metrics.NotificationsTotal.WithLabelValues(n.Status, "rejected").Inc()
		log.Printf("Task ID mismatch for order %d: expected %s, got %s", n.OrderID, order.RemoteTaskID, n.TaskID)
		return "", ErrTaskMismatch
	}

	var message string
	switch n.Status {
	case StatusDone:
		message, err = e.completeOrder(order)
	case StatusFailed:
		taskID := n.TaskID
		if taskID == "" {
			taskID = order.RemoteTaskID
		}
		message, err = e.failOrder(order, fmt.Sprintf("task %s failed during robot execution", taskID))
	default:
		return "", fmt.Errorf("unhandled status %q", n.Status)
	}

	if err != nil {
		// Never leave the order stuck in processing with no forward
		// path: an error mid-completion forces it to cancel.
		metrics.NotificationsTotal.WithLabelValues(n.Status, "error").Inc()
		log.Printf("Error processing %s notification for order %d: %v", n.Status, order.ID, err)
		if forceErr := e.forceOrderState(e.db, order, models.OrderStateCancel, clearTaskFields()); forceErr != nil {
			log.Printf("Failed to force order %d to cancel: %v", order.ID, forceErr)
		}
		return "", fmt.Errorf("failed to process status %q: %w", n.Status, err)
	}

	metrics.NotificationsTotal.WithLabelValues(n.Status, "processed").Inc()
	return message, nil
}

// completeOrder runs the completion path: reconcile stock, re-assign
// materials, force every work order to done, then mark the order done. A
// stale notification against a non-processing order is logged and
// skipped, not an error.
func (e *Engine) completeOrder(order *models.Order) (string, error) {
	if order.State != string(models.OrderStateProcessing) {
		log.Printf("Order %d is not in processing state (current: %s), skipping completion", order.ID, order.State)
		return "Production not in processing state, notification ignored", nil
	}

	if err := stock.Reconcile(e.db, order); err != nil {
		return "", fmt.Errorf("stock reconciliation failed: %w", err)
	}

	if err := stock.Assign(e.db, order); err != nil {
		return "", fmt.Errorf("material assignment failed: %w", err)
	}

	for i := range order.WorkOrders {
		if err := workorder.Complete(e.db, order, &order.WorkOrders[i]); err != nil {
			return "", fmt.Errorf("work order completion failed: %w", err)
		}
	}

	if err := e.setOrderState(e.db, order, models.OrderStateDone, map[string]interface{}{
		"remote_task_id": "",
	}); err != nil {
		return "", err
	}

	log.Printf("Order %d completed successfully via MQTT task", order.ID)
	return "Production status updated successfully", nil
}

// failOrder runs the failure path: cancel the active work orders and
// return the order to draft so it can be dispatched again. Only state
// fields are written, so there is no partial-failure branch.
func (e *Engine) failOrder(order *models.Order, reason string) (string, error) {
	if order.State != string(models.OrderStateProcessing) {
		log.Printf("Order %d is not in processing state (current: %s), skipping failure handling", order.ID, order.State)
		return "Production not in processing state, notification ignored", nil
	}

	if err := workorder.CancelActive(e.db, order); err != nil {
		return "", err
	}

	if err := e.setOrderState(e.db, order, models.OrderStateDraft, clearTaskFields()); err != nil {
		return "", err
	}

	log.Printf("Order %d failed via MQTT task: %s", order.ID, reason)
	return "Production status updated successfully", nil
}

// resetToDraft is the abort epilogue: work orders back to pending, order
// back to draft, task reference and payload cleared.
func (e *Engine) resetToDraft(order *models.Order) error {
	if err := workorder.ResetAll(e.db, order); err != nil {
		return err
	}
	return e.setOrderState(e.db, order, models.OrderStateDraft, clearTaskFields())
}

func clearTaskFields() map[string]interface{} {
	return map[string]interface{}{
		"remote_task_id": "",
		"binary_payload": "",
	}
}
