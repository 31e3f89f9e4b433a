package models

import (
	"github.com/jinzhu/gorm"
)

// BillOfMaterials lists the components and operations needed to
// manufacture a product
type BillOfMaterials struct {
	gorm.Model
	Name       string
	ProductID  uint
	Lines      []BOMLine      `gorm:"foreignkey:BOMID"`
	Operations []BOMOperation `gorm:"foreignkey:BOMID"`
}

// BOMLine represents one component line of a bill of materials
type BOMLine struct {
	gorm.Model
	BOMID     uint
	ProductID uint
	Product   *Product `gorm:"foreignkey:ProductID"`
	Quantity  float64
	Sequence  int
}

// BOMOperation represents one routing operation of a bill of materials,
// carried out at a work center. Operations are the fallback source for
// MQTT topic resolution.
type BOMOperation struct {
	gorm.Model
	BOMID        uint
	Name         string
	WorkCenterID uint
	WorkCenter   *WorkCenter `gorm:"foreignkey:WorkCenterID"`
	Sequence     int
}
