package models

import (
	"github.com/jinzhu/gorm"
)

// Robot represents an addressable automation endpoint assigned to a work center
type Robot struct {
	gorm.Model
	// Identifier is used verbatim as the last segment of the routing key.
	Identifier   string `gorm:"unique_index"`
	Name         string
	WorkCenterID uint
}

// WorkCenter represents a manufacturing work center extended with robot
// and MQTT routing configuration
type WorkCenter struct {
	gorm.Model
	Name      string
	HasRobots bool
	Robots    []Robot `gorm:"foreignkey:WorkCenterID"`
	// MQTTTopic is the routing-key prefix for robots at this work center.
	// Optional; topic resolution falls back to the BOM operation work
	// centers when empty.
	MQTTTopic string
}
