// Package automation owns the order state machine: dispatching a remote
// robot task, gating manual actions while automation is in effect, and
// reconciling the task's asynchronous outcome back into the order.
package automation

import (
	"fmt"
	"log"

	"github.com/EagleChen/mapmutex"
	"github.com/jinzhu/gorm"

	"github.com/Ism1tha/odoo-mqtt-addon/internal/metrics"
	"github.com/Ism1tha/odoo-mqtt-addon/internal/models"
)

// TaskAPI is the slice of the remote task client the engine needs.
type TaskAPI interface {
	CreateTask(orderID uint, mqttTopic, binaryPayload, priority string) (string, error)
	DeleteTask(taskID string) error
}

// Notifier receives order state changes, e.g. to push them to connected
// operator screens.
type Notifier func(orderID uint, state string)

// Engine is the order state machine. All order-mutating operations of the
// automation layer go through it.
type Engine struct {
	db     *gorm.DB
	client TaskAPI
	// locks serializes concurrent mutation per order id. A contended
	// TryLock must fail on the first attempt so a racing duplicate
	// notification is detected immediately instead of queueing behind
	// the winner.
	locks  *mapmutex.Mutex
	notify Notifier
}

// NewEngine creates an automation engine on top of the order store and
// the remote task client.
func NewEngine(db *gorm.DB, client TaskAPI) *Engine {
	return &Engine{
		db:     db,
		client: client,
		// Single lock attempt, no retries. The delay parameters are
		// irrelevant with one attempt.
		locks: mapmutex.NewCustomizedMapMutex(1, 100, 10, 1.1, 0.2),
	}
}

// OnStateChange registers a callback invoked after every order state
// transition.
func (e *Engine) OnStateChange(n Notifier) {
	e.notify = n
}

// orderTransitions lists the legal order state transitions. processing is
// the state this system adds; draft is its failure/abort target.
var orderTransitions = map[models.OrderState][]models.OrderState{
	models.OrderStateDraft:      {models.OrderStateConfirmed, models.OrderStateCancel},
	models.OrderStateConfirmed:  {models.OrderStateProgress, models.OrderStateProcessing, models.OrderStateCancel},
	models.OrderStateProgress:   {models.OrderStateProcessing, models.OrderStateDone, models.OrderStateCancel},
	models.OrderStateProcessing: {models.OrderStateDone, models.OrderStateDraft, models.OrderStateCancel},
}

// CanTransition reports whether the order state machine allows moving
// from one state to another.
func CanTransition(from, to models.OrderState) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// setOrderState applies a legal transition and persists it together with
// the given extra column updates.
func (e *Engine) setOrderState(tx *gorm.DB, order *models.Order, to models.OrderState, extra map[string]interface{}) error {
	from := models.OrderState(order.State)
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid order transition: %s -> %s", from, to)
	}
	return e.writeOrderState(tx, order, to, extra)
}

// forceOrderState writes a state without consulting the transition table.
// Reserved for the documented forced-terminal rule: an internal error
// during completion must never leave the order stuck in processing.
func (e *Engine) forceOrderState(tx *gorm.DB, order *models.Order, to models.OrderState, extra map[string]interface{}) error {
	return e.writeOrderState(tx, order, to, extra)
}

func (e *Engine) writeOrderState(tx *gorm.DB, order *models.Order, to models.OrderState, extra map[string]interface{}) error {
	from := order.State

	updates := map[string]interface{}{"state": string(to)}
	for k, v := range extra {
		updates[k] = v
	}
	if err := tx.Model(order).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update order %d state: %w", order.ID, err)
	}

	order.State = string(to)
	if taskID, ok := extra["remote_task_id"]; ok {
		order.RemoteTaskID, _ = taskID.(string)
	}
	if payload, ok := extra["binary_payload"]; ok {
		order.BinaryPayload, _ = payload.(string)
	}

	log.Printf("Order %d: %s -> %s", order.ID, from, to)

	if from != string(to) {
		if models.OrderState(from) == models.OrderStateProcessing {
			metrics.OrdersProcessing.Dec()
		}
		if to == models.OrderStateProcessing {
			metrics.OrdersProcessing.Inc()
		}
	}

	if e.notify != nil {
		e.notify(order.ID, string(to))
	}
	return nil
}

// loadOrder fetches an order with every association the automation layer
// touches.
func (e *Engine) loadOrder(id uint) (*models.Order, error) {
	var order models.Order
	err := e.db.
		Preload("Product").
		Preload("BOM.Lines.Product").
		Preload("BOM.Operations.WorkCenter").
		Preload("WorkOrders.WorkCenter.Robots").
		Preload("SelectedRobot").
		First(&order, id).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", id, err)
	}
	return &order, nil
}
