package automation

import "errors"

// Precondition and boundary errors surfaced by the automation engine.
// Dispatch checks run in order and each failure maps to exactly one of
// these, so callers can present the precise blocking condition.
var (
	// ErrBlockedByAutomation is returned by the manual-action guard when
	// an order must go through robot dispatch instead of manual buttons.
	ErrBlockedByAutomation = errors.New("manufacturing actions are blocked while MQTT processing is enabled for this product type")

	ErrNotActionProduct   = errors.New("product must be of type \"action\" for MQTT processing")
	ErrTooManyWorkOrders  = errors.New("automated products can only have one work order")
	ErrNoWorkOrders       = errors.New("no work orders found for this order")
	ErrNoBOM              = errors.New("no bill of materials defined")
	ErrNoRobots           = errors.New("no robots assigned to the work center")
	ErrNoRobotSelected    = errors.New("please select a robot before starting MQTT processing")
	ErrRobotNotAssigned   = errors.New("selected robot is not assigned to the work center")
	ErrNoTopic            = errors.New("no MQTT topic configured for work centers")
	ErrRemoteTaskCreation = errors.New("failed to create MQTT task")

	ErrOrderNotFound = errors.New("order not found")
	ErrTaskMismatch  = errors.New("task ID mismatch")
	ErrNotProcessing = errors.New("order is not in MQTT processing state")
	ErrOrderBusy     = errors.New("another update for this order is in progress")
)
