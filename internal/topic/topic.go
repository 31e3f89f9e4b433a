// Package topic derives the MQTT routing key used to address a robot task.
package topic

import (
	"fmt"
	"strings"

	"github.com/Ism1tha/odoo-mqtt-addon/internal/models"
)

// Resolve returns the routing-key prefix for an order. It walks the
// order's work orders and returns the first work center with a non-empty
// MQTT topic; if none is configured it falls back to the BOM operations'
// work centers in declaration order. The empty string means no topic is
// configured anywhere, which dispatch treats as a precondition failure.
func Resolve(order *models.Order) string {
	for _, wo := range order.WorkOrders {
		if wo.WorkCenter != nil {
			if t := strings.TrimSpace(wo.WorkCenter.MQTTTopic); t != "" {
				return t
			}
		}
	}

	if order.BOM != nil {
		for _, op := range order.BOM.Operations {
			if op.WorkCenter != nil {
				if t := strings.TrimSpace(op.WorkCenter.MQTTTopic); t != "" {
					return t
				}
			}
		}
	}

	return ""
}

// RoutingKey combines a resolved topic prefix with the robot identifier
// into the full routing key sent to the task API.
func RoutingKey(prefix string, robot *models.Robot) string {
	return fmt.Sprintf("%s/%s", prefix, robot.Identifier)
}
