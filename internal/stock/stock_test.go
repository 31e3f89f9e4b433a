package stock

import (
	"path/filepath"
	"testing"

	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ism1tha/odoo-mqtt-addon/internal/database"
	"github.com/Ism1tha/odoo-mqtt-addon/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { database.Close(db) })

	return db
}

// buildOrder creates an order with one material line and optional stock.
func buildOrder(t *testing.T, db *gorm.DB, lineQty, orderQty, onHand float64) (*models.Order, *models.Product) {
	t.Helper()

	material := models.Product{Name: "Steel Plate", MQTTType: string(models.ProductTypeMaterial), MaterialBinary: "000001"}
	require.NoError(t, db.Create(&material).Error)

	bom := models.BillOfMaterials{Name: "BOM"}
	require.NoError(t, db.Create(&bom).Error)
	line := models.BOMLine{BOMID: bom.ID, ProductID: material.ID, Quantity: lineQty}
	require.NoError(t, db.Create(&line).Error)

	action := models.Product{Name: "Assembly", MQTTType: string(models.ProductTypeAction)}
	require.NoError(t, db.Create(&action).Error)

	order := models.Order{Name: "MO/001", State: string(models.OrderStateDraft), Quantity: orderQty, ProductID: action.ID, BOMID: &bom.ID}
	require.NoError(t, db.Create(&order).Error)

	if onHand != 0 {
		loc, err := DefaultLocation(db)
		require.NoError(t, err)
		require.NoError(t, db.Create(&models.StockQuant{ProductID: material.ID, LocationID: loc.ID, Quantity: onHand}).Error)
	}

	// Reload with associations the way callers do.
	loaded := loadOrder(t, db, order.ID)
	return loaded, &material
}

func loadOrder(t *testing.T, db *gorm.DB, id uint) *models.Order {
	t.Helper()
	var order models.Order
	require.NoError(t, db.Preload("BOM.Lines.Product").First(&order, id).Error)
	return &order
}

func TestCheckAvailabilityPasses(t *testing.T) {
	db := testDB(t)
	order, _ := buildOrder(t, db, 1, 1, 5)
	assert.NoError(t, CheckAvailability(db, order))
}

func TestCheckAvailabilityReportsShortage(t *testing.T) {
	db := testDB(t)
	// 2 units required (line qty 2 x order qty 1), only 1 on hand.
	order, _ := buildOrder(t, db, 2, 1, 1)

	err := CheckAvailability(db, order)
	require.Error(t, err)

	stockErr, ok := err.(*InsufficientStockError)
	require.True(t, ok)
	require.Len(t, stockErr.Shortages, 1)

	s := stockErr.Shortages[0]
	assert.Equal(t, "Steel Plate", s.Product)
	assert.Equal(t, 2.0, s.Required)
	assert.Equal(t, 1.0, s.Available)
	assert.Equal(t, 1.0, s.Missing)

	assert.Contains(t, err.Error(), "Steel Plate")
	assert.Contains(t, err.Error(), "required 2")
	assert.Contains(t, err.Error(), "available 1")
	assert.Contains(t, err.Error(), "missing 1")
}

func TestCheckAvailabilityScalesWithOrderQuantity(t *testing.T) {
	db := testDB(t)
	// line qty 1 x order qty 3 = 3 required against 2 on hand.
	order, _ := buildOrder(t, db, 1, 3, 2)

	err := CheckAvailability(db, order)
	require.Error(t, err)
	assert.IsType(t, &InsufficientStockError{}, err)
}

func TestCheckAvailabilityNoBOM(t *testing.T) {
	db := testDB(t)
	order := &models.Order{Quantity: 1}
	assert.NoError(t, CheckAvailability(db, order))
}

func TestReconcileConsumesOneUnitPerLine(t *testing.T) {
	db := testDB(t)
	// Order quantity 4 is irrelevant: one cycle consumes one unit per slot.
	order, material := buildOrder(t, db, 1, 4, 10)

	require.NoError(t, Reconcile(db, order))

	loc, err := DefaultLocation(db)
	require.NoError(t, err)
	assert.Equal(t, 9.0, OnHand(db, material.ID, loc.ID))

	var moves []models.StockMove
	require.NoError(t, db.Where("order_id = ?", order.ID).Find(&moves).Error)
	require.Len(t, moves, 1)
	assert.Equal(t, string(models.MoveDirectionConsume), moves[0].Direction)
	assert.Equal(t, string(models.MoveStateDone), moves[0].State)
	assert.Equal(t, 1.0, moves[0].Quantity)
}

func TestReconcileProducesResultProduct(t *testing.T) {
	db := testDB(t)
	order, material := buildOrder(t, db, 1, 1, 5)

	result := models.Product{Name: "Finished Part", MQTTType: string(models.ProductTypeResult)}
	require.NoError(t, db.Create(&result).Error)
	material.ResultProductID = &result.ID
	material.ResultQuantity = 2.5
	require.NoError(t, db.Save(material).Error)

	order = loadOrder(t, db, order.ID)
	require.NoError(t, Reconcile(db, order))

	loc, err := DefaultLocation(db)
	require.NoError(t, err)
	assert.Equal(t, 4.0, OnHand(db, material.ID, loc.ID))
	assert.Equal(t, 2.5, OnHand(db, result.ID, loc.ID))

	var produce models.StockMove
	require.NoError(t, db.Where("order_id = ? AND direction = ?",
		order.ID, string(models.MoveDirectionProduce)).First(&produce).Error)
	assert.Equal(t, 2.5, produce.Quantity)
}

func TestReconcileDefaultsResultQuantityToOne(t *testing.T) {
	db := testDB(t)
	order, material := buildOrder(t, db, 1, 1, 5)

	result := models.Product{Name: "Finished Part", MQTTType: string(models.ProductTypeResult)}
	require.NoError(t, db.Create(&result).Error)
	material.ResultProductID = &result.ID
	require.NoError(t, db.Save(material).Error)

	order = loadOrder(t, db, order.ID)
	require.NoError(t, Reconcile(db, order))

	loc, err := DefaultLocation(db)
	require.NoError(t, err)
	assert.Equal(t, 1.0, OnHand(db, result.ID, loc.ID))
}

func TestReconcileNoBOMIsNoOp(t *testing.T) {
	db := testDB(t)
	order := &models.Order{Quantity: 1}
	assert.NoError(t, Reconcile(db, order))
}

func TestAssignIsIdempotent(t *testing.T) {
	db := testDB(t)
	order, material := buildOrder(t, db, 1, 1, 5)

	require.NoError(t, Assign(db, order))
	require.NoError(t, Assign(db, order))

	var count int
	db.Model(&models.StockMove{}).
		Where("order_id = ? AND product_id = ? AND direction = ?",
			order.ID, material.ID, string(models.MoveDirectionConsume)).
		Count(&count)
	assert.Equal(t, 1, count)
}
