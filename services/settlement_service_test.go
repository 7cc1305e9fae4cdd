package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danuarta/billiard-pos/models"
)

var settlementDBCounter int

func setupTestDBForSettlement(t *testing.T) *gorm.DB {
	settlementDBCounter++
	dsn := fmt.Sprintf("file:settlement%d?mode=memory&cache=shared", settlementDBCounter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatal("failed to connect database")
	}
	err = db.AutoMigrate(
		&models.Table{}, &models.Session{}, &models.Product{}, &models.Recipe{},
		&models.InventoryItem{}, &models.InventoryMovement{},
		&models.Order{}, &models.OrderItem{}, &models.Payment{},
	)
	if err != nil {
		t.Fatal(err)
	}
	return db
}

// seedOpenSession membuat meja + sesi terbuka + order aktif, dibuka
// `minutesAgo` menit yang lalu.
func seedOpenSession(t *testing.T, db *gorm.DB, hourlyRate float64, minutesAgo int) (*models.Session, *models.Order) {
	table := models.Table{TableNumber: "B1", Status: "occupied", HourlyRate: hourlyRate}
	require.NoError(t, db.Create(&table).Error)

	openedAt := time.Now().Add(-time.Duration(minutesAgo) * time.Minute)
	session := models.Session{
		TableID:  &table.ID,
		Status:   models.SessionStatusOpen,
		Mode:     models.SessionModeOpenTime,
		OpenedAt: openedAt,
	}
	require.NoError(t, db.Create(&session).Error)

	order := models.Order{SessionID: session.ID, Status: OrderStatusOpen}
	require.NoError(t, db.Create(&order).Error)
	return &session, &order
}

func TestCloseSessionAndRecordPayment(t *testing.T) {
	db := setupTestDBForSettlement(t)
	svc := NewSettlementService(db)

	// Sesi 65 menit, tarif 60000/jam -> 3 blok x 30000 = 90000
	session, order := seedOpenSession(t, db, 60000, 65)

	// Produk dengan resep: 1 es sirup -> 2 syrup + 1 cup
	syrup := models.InventoryItem{Name: "Syrup", Unit: "ml"}
	cup := models.InventoryItem{Name: "Cup", Unit: "pcs"}
	db.Create(&syrup)
	db.Create(&cup)
	drink := models.Product{SKU: "DRINK-1", Name: "Es Sirup", Price: 8000, TaxRate: 0.1}
	db.Create(&drink)
	db.Create(&models.Recipe{ProductID: drink.ID, InventoryItemID: syrup.ID, QtyPerUnit: 2, Unit: "ml"})
	db.Create(&models.Recipe{ProductID: drink.ID, InventoryItemID: cup.ID, QtyPerUnit: 1, Unit: "pcs"})
	db.Create(&models.OrderItem{OrderID: order.ID, ProductID: drink.ID, Quantity: 3, UnitPrice: 8000, LineTotal: 24000})

	err := svc.CloseSessionAndRecordPayment(session.ID, PaymentMethodCash, 150000, nil, nil)
	require.NoError(t, err)

	// Sesi tertutup dan tidak berubah lagi
	var closed models.Session
	require.NoError(t, db.First(&closed, session.ID).Error)
	assert.Equal(t, models.SessionStatusClosed, closed.Status)
	assert.NotNil(t, closed.ClosedAt)

	// Order paid dengan total = subtotal + pajak per baris
	var paidOrder models.Order
	require.NoError(t, db.First(&paidOrder, order.ID).Error)
	assert.Equal(t, OrderStatusPaid, paidOrder.Status)
	// subtotal = 24000 (minuman) + 90000 (biaya meja)
	assert.Equal(t, 114000.0, paidOrder.Subtotal)
	// pajak hanya dari minuman (TABLE-TIME bebas pajak)
	assert.Equal(t, 2400.0, paidOrder.Tax)
	assert.Equal(t, 116400.0, paidOrder.Total)

	// Ada line item table time qty 1 senilai fee
	var timeItem models.OrderItem
	require.NoError(t, db.Where("order_id = ? AND is_table_time = ?", order.ID, true).First(&timeItem).Error)
	assert.Equal(t, 1.0, timeItem.Quantity)
	assert.Equal(t, 90000.0, timeItem.LineTotal)

	// Resep meledak jadi movement SALE: -6 syrup, -3 cup
	var movements []models.InventoryMovement
	require.NoError(t, db.Find(&movements).Error)
	assert.Len(t, movements, 2)
	byItem := map[uint]float64{}
	for _, m := range movements {
		assert.Equal(t, models.MovementSale, m.MovementType)
		byItem[m.InventoryItemID] = m.Quantity
	}
	assert.Equal(t, -6.0, byItem[syrup.ID])
	assert.Equal(t, -3.0, byItem[cup.ID])

	// Tepat satu payment dengan kembalian yang benar
	var payments []models.Payment
	require.NoError(t, db.Find(&payments).Error)
	require.Len(t, payments, 1)
	assert.Equal(t, 116400.0, payments[0].Amount)
	assert.Equal(t, 150000.0, payments[0].Tendered)
	assert.Equal(t, 33600.0, payments[0].Change)
	assert.Equal(t, PaymentMethodCash, payments[0].Method)
}

func TestCloseSessionIsIdempotent(t *testing.T) {
	db := setupTestDBForSettlement(t)
	svc := NewSettlementService(db)

	session, order := seedOpenSession(t, db, 60000, 40)

	// Panggil dua kali berturut-turut (double-tap kasir / retry)
	require.NoError(t, svc.CloseSessionAndRecordPayment(session.ID, PaymentMethodCash, 100000, nil, nil))
	require.NoError(t, svc.CloseSessionAndRecordPayment(session.ID, PaymentMethodCash, 100000, nil, nil))

	// Tetap tepat satu payment
	var count int64
	db.Model(&models.Payment{}).Where("order_id = ?", order.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	// Order berakhir paid dua-duanya
	var paidOrder models.Order
	require.NoError(t, db.First(&paidOrder, order.ID).Error)
	assert.Equal(t, OrderStatusPaid, paidOrder.Status)

	// Movement stok juga tidak dobel (tidak ada item beresep di sini,
	// jadi harus nol)
	var movementCount int64
	db.Model(&models.InventoryMovement{}).Count(&movementCount)
	assert.Equal(t, int64(0), movementCount)
}

func TestCloseSessionInvalidMethod(t *testing.T) {
	db := setupTestDBForSettlement(t)
	svc := NewSettlementService(db)

	session, _ := seedOpenSession(t, db, 60000, 40)
	err := svc.CloseSessionAndRecordPayment(session.ID, "cek", 0, nil, nil)
	assert.Error(t, err)
}

func TestCloseSessionNoFeeWithinGrace(t *testing.T) {
	db := setupTestDBForSettlement(t)
	svc := NewSettlementService(db)

	// Baru 3 menit: masih grace period, tanpa biaya meja
	session, order := seedOpenSession(t, db, 60000, 3)
	require.NoError(t, svc.CloseSessionAndRecordPayment(session.ID, PaymentMethodQRIS, 0, nil, nil))

	var items []models.OrderItem
	db.Where("order_id = ?", order.ID).Find(&items)
	assert.Empty(t, items)

	var paidOrder models.Order
	require.NoError(t, db.First(&paidOrder, order.ID).Error)
	assert.Equal(t, 0.0, paidOrder.Total)
	assert.Equal(t, OrderStatusPaid, paidOrder.Status)
}

func TestCloseSessionMoneyGameFloor(t *testing.T) {
	db := setupTestDBForSettlement(t)
	svc := NewSettlementService(db)

	session, order := seedOpenSession(t, db, 60000, 2)
	session.IsMoneyGame = true
	session.BetAmount = 500000
	require.NoError(t, db.Save(session).Error)

	require.NoError(t, svc.CloseSessionAndRecordPayment(session.ID, PaymentMethodCash, 50000, nil, nil))

	// Fee waktu 0 (grace), tapi floor money game = 10% x 500000
	var timeItem models.OrderItem
	require.NoError(t, db.Where("order_id = ? AND is_table_time = ?", order.ID, true).First(&timeItem).Error)
	assert.Equal(t, 50000.0, timeItem.LineTotal)
}

func TestEstimateMatchesSettlement(t *testing.T) {
	db := setupTestDBForSettlement(t)
	svc := NewSettlementService(db)

	// Money game: fee tidak tergantung detik berjalan, jadi estimasi dan
	// settlement pasti identik
	session, order := seedOpenSession(t, db, 60000, 1)
	session.IsMoneyGame = true
	session.BetAmount = 300000
	require.NoError(t, db.Save(session).Error)

	estimate, _, err := svc.EstimateSessionCost(session.ID)
	require.NoError(t, err)
	assert.Equal(t, 30000.0, estimate)

	require.NoError(t, svc.CloseSessionAndRecordPayment(session.ID, PaymentMethodCash, 30000, nil, nil))

	var timeItem models.OrderItem
	require.NoError(t, db.Where("order_id = ? AND is_table_time = ?", order.ID, true).First(&timeItem).Error)
	assert.Equal(t, estimate, timeItem.LineTotal)
}

func TestSessionElapsedExcludesPause(t *testing.T) {
	now := time.Now()
	opened := now.Add(-60 * time.Minute)
	session := models.Session{
		OpenedAt:      opened,
		PausedSeconds: 20 * 60, // pernah pause total 20 menit
	}
	assert.InDelta(t, 40.0, session.ElapsedMinutes(now), 0.01)

	// Sedang pause: waktu pause berjalan ikut dikurangi
	pausedAt := now.Add(-10 * time.Minute)
	session.PausedAt = &pausedAt
	assert.InDelta(t, 30.0, session.ElapsedMinutes(now), 0.01)
}
