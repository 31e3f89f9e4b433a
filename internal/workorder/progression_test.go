package workorder

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

func orderWithWorkOrder(t *testing.T, db *gorm.DB, woState models.WorkOrderState) (*models.Order, *models.WorkOrder) {
	t.Helper()

	material := models.Product{Name: "Material", MQTTType: string(models.ProductTypeMaterial), MaterialBinary: "000001"}
	require.NoError(t, db.Create(&material).Error)

	bom := models.BillOfMaterials{Name: "BOM"}
	require.NoError(t, db.Create(&bom).Error)
	require.NoError(t, db.Create(&models.BOMLine{BOMID: bom.ID, ProductID: material.ID, Quantity: 1}).Error)

	center := models.WorkCenter{Name: "Line 1", HasRobots: true}
	require.NoError(t, db.Create(&center).Error)

	order := models.Order{Name: "MO/001", State: string(models.OrderStateProcessing), Quantity: 1, BOMID: &bom.ID}
	require.NoError(t, db.Create(&order).Error)

	wo := models.WorkOrder{OrderID: order.ID, Name: "OP/001", State: string(woState), WorkCenterID: center.ID}
	require.NoError(t, db.Create(&wo).Error)

	var loaded models.Order
	require.NoError(t, db.Preload("BOM.Lines.Product").Preload("WorkOrders").First(&loaded, order.ID).Error)
	return &loaded, &loaded.WorkOrders[0]
}

func TestCompleteFromWaiting(t *testing.T) {
	db := testDB(t)
	order, wo := orderWithWorkOrder(t, db, models.WorkOrderStateWaiting)

	require.NoError(t, Complete(db, order, wo))

	assert.Equal(t, string(models.WorkOrderStateDone), wo.State)

	var stored models.WorkOrder
	require.NoError(t, db.First(&stored, wo.ID).Error)
	assert.Equal(t, string(models.WorkOrderStateDone), stored.State)

	// The waiting prerequisite ran material assignment.
	var count int
	db.Model(&models.StockMove{}).Where("order_id = ?", order.ID).Count(&count)
	assert.Equal(t, 1, count)
}

func TestCompleteForcesThroughFailedStart(t *testing.T) {
	db := testDB(t)
	// Starting from ready with no reservation makes the natural start
	// operation fail; the driver must force progress and continue.
	order, wo := orderWithWorkOrder(t, db, models.WorkOrderStateReady)

	require.NoError(t, Complete(db, order, wo))
	assert.Equal(t, string(models.WorkOrderStateDone), wo.State)
}

func TestCompleteFromPending(t *testing.T) {
	db := testDB(t)
	order, wo := orderWithWorkOrder(t, db, models.WorkOrderStatePending)

	require.NoError(t, Complete(db, order, wo))
	assert.Equal(t, string(models.WorkOrderStateDone), wo.State)
}

func TestCompleteAlreadyDone(t *testing.T) {
	db := testDB(t)
	order, wo := orderWithWorkOrder(t, db, models.WorkOrderStateDone)

	require.NoError(t, Complete(db, order, wo))
	assert.Equal(t, string(models.WorkOrderStateDone), wo.State)
}

func TestCancelActive(t *testing.T) {
	db := testDB(t)
	order, _ := orderWithWorkOrder(t, db, models.WorkOrderStateProgress)

	done := models.WorkOrder{OrderID: order.ID, Name: "OP/002", State: string(models.WorkOrderStateDone)}
	require.NoError(t, db.Create(&done).Error)

	var loaded models.Order
	require.NoError(t, db.Preload("WorkOrders").First(&loaded, order.ID).Error)

	require.NoError(t, CancelActive(db, &loaded))

	var states []models.WorkOrder
	require.NoError(t, db.Where("order_id = ?", order.ID).Order("id").Find(&states).Error)
	assert.Equal(t, string(models.WorkOrderStateCancel), states[0].State)
	// Completed work is left alone.
	assert.Equal(t, string(models.WorkOrderStateDone), states[1].State)
}

func TestResetAll(t *testing.T) {
	db := testDB(t)
	order, _ := orderWithWorkOrder(t, db, models.WorkOrderStateProgress)

	var loaded models.Order
	require.NoError(t, db.Preload("WorkOrders").First(&loaded, order.ID).Error)

	require.NoError(t, ResetAll(db, &loaded))

	var stored models.WorkOrder
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&stored).Error)
	assert.Equal(t, string(models.WorkOrderStatePending), stored.State)
}
