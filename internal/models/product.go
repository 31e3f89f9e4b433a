package models

import (
	"github.com/jinzhu/gorm"
)

// Product represents a product template extended with MQTT processing
// configuration
type Product struct {
	gorm.Model
	Name string
	// MQTTType defines how the product participates in robot processing:
	// "action" products are dispatched, "material" products are consumed,
	// "result" products are produced.
	MQTTType string
	// MaterialBinary is the fixed-width bit string describing which
	// material slot this product occupies. Only meaningful for material
	// products.
	MaterialBinary string
	// ResultProductID names the product a material is transformed into
	// during one automation cycle, if any.
	ResultProductID *uint
	ResultProduct   *Product `gorm:"foreignkey:ResultProductID"`
	ResultQuantity  float64
}

// ProductType represents the MQTT processing role of a product
type ProductType string

const (
	ProductTypeAction   ProductType = "action"
	ProductTypeMaterial ProductType = "material"
	ProductTypeResult   ProductType = "result"
)
