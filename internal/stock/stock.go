// Package stock owns inventory bookkeeping for automated orders: the
// availability gate checked before dispatch, material reservation, and the
// consumption/production reconciliation applied on task completion.
package stock

import (
	"fmt"
	"log"
	"strings"

	"github.com/jinzhu/gorm"

	"github.com/Ism1tha/odoo-mqtt-addon/internal/models"
)

// Shortage describes one component that blocks dispatch
type Shortage struct {
	Product   string
	Required  float64
	Available float64
	Missing   float64
}

// InsufficientStockError reports every short component at once so the
// operator sees the complete picture instead of fixing one line at a time.
type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	var b strings.Builder
	b.WriteString("insufficient stock for the following materials:")
	for _, s := range e.Shortages {
		b.WriteString(fmt.Sprintf(
			"\n- %s: required %g, available %g, missing %g",
			s.Product, s.Required, s.Available, s.Missing,
		))
	}
	return b.String()
}

// DefaultLocation returns the internal stock location quantities are
// checked and adjusted against.
func DefaultLocation(db *gorm.DB) (*models.StockLocation, error) {
	var loc models.StockLocation
	if err := db.Where("usage = ?", string(models.LocationUsageInternal)).First(&loc).Error; err != nil {
		return nil, fmt.Errorf("default stock location not found: %w", err)
	}
	return &loc, nil
}

// productionLocation returns the virtual location consumed materials are
// moved into, creating it on first use.
func productionLocation(db *gorm.DB) (*models.StockLocation, error) {
	var loc models.StockLocation
	err := db.Where("usage = ?", string(models.LocationUsageProduction)).First(&loc).Error
	if err == nil {
		return &loc, nil
	}
	if !gorm.IsRecordNotFoundError(err) {
		return nil, err
	}

	loc = models.StockLocation{Name: "Virtual Production", Usage: string(models.LocationUsageProduction)}
	if err := db.Create(&loc).Error; err != nil {
		return nil, fmt.Errorf("failed to create production location: %w", err)
	}
	return &loc, nil
}

// OnHand sums the quants of a product at a location.
func OnHand(db *gorm.DB, productID, locationID uint) float64 {
	var total struct{ Total float64 }
	db.Model(&models.StockQuant{}).
		Select("COALESCE(SUM(quantity), 0) AS total").
		Where("product_id = ? AND location_id = ?", productID, locationID).
		Scan(&total)
	return total.Total
}

// CheckAvailability verifies that every material-typed BOM line has enough
// on-hand quantity at the default location to cover the order. The required
// quantity is the line quantity multiplied by the order quantity. All short
// components are collected into a single InsufficientStockError.
func CheckAvailability(db *gorm.DB, order *models.Order) error {
	if order.BOM == nil || len(order.BOM.Lines) == 0 {
		log.Printf("No BOM or components found for order %d, skipping stock check", order.ID)
		return nil
	}

	location, err := DefaultLocation(db)
	if err != nil {
		return err
	}

	var shortages []Shortage
	for _, line := range order.BOM.Lines {
		if line.Product == nil || line.Product.MQTTType != string(models.ProductTypeMaterial) {
			continue
		}

		required := line.Quantity * order.Quantity
		available := OnHand(db, line.ProductID, location.ID)
		if available < required {
			shortages = append(shortages, Shortage{
				Product:   line.Product.Name,
				Required:  required,
				Available: available,
				Missing:   required - available,
			})
		}
	}

	if len(shortages) > 0 {
		return &InsufficientStockError{Shortages: shortages}
	}
	return nil
}

// Assign reserves materials for the order by creating draft consumption
// moves for every material line that does not already have one. Calling it
// again is a no-op, which lets the completion path re-run it safely.
func Assign(db *gorm.DB, order *models.Order) error {
	if order.BOM == nil || len(order.BOM.Lines) == 0 {
		return nil
	}

	source, err := DefaultLocation(db)
	if err != nil {
		return err
	}
	dest, err := productionLocation(db)
	if err != nil {
		return err
	}

	for _, line := range order.BOM.Lines {
		if line.Product == nil || line.Product.MQTTType != string(models.ProductTypeMaterial) {
			continue
		}

		var count int
		db.Model(&models.StockMove{}).
			Where("order_id = ? AND product_id = ? AND direction = ?",
				order.ID, line.ProductID, string(models.MoveDirectionConsume)).
			Count(&count)
		if count > 0 {
			continue
		}

		move := models.StockMove{
			OrderID:       order.ID,
			ProductID:     line.ProductID,
			Quantity:      1.0,
			Direction:     string(models.MoveDirectionConsume),
			SourceID:      source.ID,
			DestinationID: dest.ID,
			State:         string(models.MoveStateDraft),
		}
		if err := db.Create(&move).Error; err != nil {
			return fmt.Errorf("failed to reserve material %d for order %d: %w", line.ProductID, order.ID, err)
		}
	}

	return nil
}

// Reconcile applies the inventory effect of one successful automation
// cycle: per material line, consume one unit at the default location and,
// when the material names a result product, produce its configured result
// quantity. Each line's consumption and production are committed in a
// single transaction together with their movement records; a failure rolls
// the line back as a unit.
func Reconcile(db *gorm.DB, order *models.Order) error {
	if order.BOM == nil || len(order.BOM.Lines) == 0 {
		log.Printf("No BOM or components found for order %d, nothing to reconcile", order.ID)
		return nil
	}

	source, err := DefaultLocation(db)
	if err != nil {
		return err
	}
	dest, err := productionLocation(db)
	if err != nil {
		return err
	}

	for _, line := range order.BOM.Lines {
		if line.Product == nil || line.Product.MQTTType != string(models.ProductTypeMaterial) {
			continue
		}
		if err := reconcileLine(db, order, line, source, dest); err != nil {
			return err
		}
	}

	return nil
}

// reconcileLine moves one material unit out of stock and its result
// product in, atomically.
func reconcileLine(db *gorm.DB, order *models.Order, line models.BOMLine, source, dest *models.StockLocation) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	consume := models.StockMove{
		OrderID:       order.ID,
		ProductID:     line.ProductID,
		Quantity:      1.0,
		Direction:     string(models.MoveDirectionConsume),
		SourceID:      source.ID,
		DestinationID: dest.ID,
		State:         string(models.MoveStateDone),
	}
	if err := tx.Create(&consume).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record consumption of product %d: %w", line.ProductID, err)
	}
	if err := adjustQuant(tx, line.ProductID, source.ID, -1.0); err != nil {
		tx.Rollback()
		return err
	}

	if line.Product.ResultProductID != nil {
		qty := line.Product.ResultQuantity
		if qty == 0 {
			qty = 1.0
		}

		produce := models.StockMove{
			OrderID:       order.ID,
			ProductID:     *line.Product.ResultProductID,
			Quantity:      qty,
			Direction:     string(models.MoveDirectionProduce),
			SourceID:      dest.ID,
			DestinationID: source.ID,
			State:         string(models.MoveStateDone),
		}
		if err := tx.Create(&produce).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record production of product %d: %w", *line.Product.ResultProductID, err)
		}
		if err := adjustQuant(tx, *line.Product.ResultProductID, source.ID, qty); err != nil {
			tx.Rollback()
			return err
		}

		log.Printf("Stock updated for order %d: consumed product %d, produced product %d x %g",
			order.ID, line.ProductID, *line.Product.ResultProductID, qty)
	}

	return tx.Commit().Error
}

// adjustQuant applies a signed delta to the quant of a product at a
// location, creating the quant row if it does not exist yet.
func adjustQuant(tx *gorm.DB, productID, locationID uint, delta float64) error {
	var quant models.StockQuant
	err := tx.Where("product_id = ? AND location_id = ?", productID, locationID).First(&quant).Error
	if gorm.IsRecordNotFoundError(err) {
		quant = models.StockQuant{ProductID: productID, LocationID: locationID, Quantity: delta}
		if err := tx.Create(&quant).Error; err != nil {
			return fmt.Errorf("failed to create quant for product %d: %w", productID, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load quant for product %d: %w", productID, err)
	}

	quant.Quantity += delta
	if err := tx.Save(&quant).Error; err != nil {
		return fmt.Errorf("failed to update quant for product %d: %w", productID, err)
	}
	return nil
}
