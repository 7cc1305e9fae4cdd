package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danuarta/billiard-pos/models"
	"github.com/danuarta/billiard-pos/router"
	"github.com/danuarta/billiard-pos/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

// TestEndToEndSettlement menguji flow utama kasir:
// 0. Seed user, meja, produk + resep, lalu login -> token
// 1. Mulai shift kas
// 2. Buka sesi meja, tambah pesanan
// 3. Cek estimasi biaya berjalan
// 4. Tutup sesi + bayar tunai => order paid, stok berkurang
// 5. Tutup lagi (retry) => tetap satu payment
// 6. Expected cash shift = modal awal + pembayaran tunai, lalu tutup shift
func TestEndToEndSettlement(t *testing.T) {
	db := setupTestDB()
	r := router.SetupRouter(db)

	token := loginTest(t, r)

	shiftID := startShiftTest(t, r, token, 200000)

	sessionID := openSessionTest(t, r, token)
	addItemsTest(t, r, token, sessionID)

	// Mundurkan opened_at 65 menit supaya biaya mejanya deterministik:
	// 65 menit @ 60000/jam -> 3 blok x 30000 = 90000
	backdate := time.Now().Add(-65 * time.Minute)
	if err := db.Model(&models.Session{}).Where("id = ?", sessionID).Update("opened_at", backdate).Error; err != nil {
		t.Fatalf("failed to backdate session: %v", err)
	}

	estimateTest(t, r, token, sessionID)

	orderID := closeSessionTest(t, r, token, sessionID)

	// Retry close: harus 200 dan TIDAK menghasilkan payment kedua
	closeSessionAgainTest(t, r, token, sessionID)
	checkSinglePaymentTest(t, r, token, orderID)

	// Stok berkurang sesuai resep: 2 porsi x 2 ml syrup = -4
	checkStockTest(t, db)

	endShiftTest(t, r, token, shiftID)
}

// setupTestDB -> migrasi model di SQLite in-memory + seed data
func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	// Migrasi model
	err = db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.Session{},
		&models.Product{},
		&models.Recipe{},
		&models.InventoryItem{},
		&models.InventoryMovement{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Customer{},
		&models.ARLedgerEntry{},
		&models.Shift{},
	)
	if err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	// Buat admin user
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	db.Create(&models.User{
		Name:     "Test Admin",
		Email:    "admin@example.com",
		Password: string(hashedPassword),
		Role:     "admin",
	})

	// Meja billiard tarif 60000/jam
	db.Create(&models.Table{
		TableNumber: "B1",
		Status:      "available",
		HourlyRate:  60000,
	})

	// Produk minuman + resep + stok awal
	syrup := models.InventoryItem{Name: "Syrup", Unit: "ml"}
	db.Create(&syrup)
	db.Create(&models.InventoryMovement{
		InventoryItemID: syrup.ID,
		MovementType:    models.MovementInitial,
		Quantity:        100,
	})
	drink := models.Product{SKU: "DRINK-1", Name: "Es Sirup", Category: "drink", Price: 8000, TaxRate: 0.1}
	db.Create(&drink)
	db.Create(&models.Recipe{ProductID: drink.ID, InventoryItemID: syrup.ID, QtyPerUnit: 2, Unit: "ml"})

	return db
}

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}, wantCode int) apiResponse {
	var reader *bytes.Buffer
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != wantCode {
		t.Fatalf("%s %s: expected %d, got %d, body=%s", method, path, wantCode, w.Code, w.Body.String())
	}

	var resp apiResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func loginTest(t *testing.T, r *gin.Engine) string {
	resp := doJSON(t, r, http.MethodPost, "/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "secret123",
	}, http.StatusOK)

	var data struct {
		Token string `json:"token"`
	}
	json.Unmarshal(resp.Data, &data)
	if data.Token == "" {
		t.Fatalf("loginTest: token empty")
	}
	return data.Token
}

func startShiftTest(t *testing.T, r *gin.Engine, token string, startingCash float64) uint {
	resp := doJSON(t, r, http.MethodPost, "/shifts", token, map[string]interface{}{
		"starting_cash": startingCash,
	}, http.StatusCreated)

	var shift struct {
		ID uint `json:"id"`
	}
	json.Unmarshal(resp.Data, &shift)
	if shift.ID == 0 {
		t.Fatalf("startShiftTest: shift id empty")
	}
	return shift.ID
}

func openSessionTest(t *testing.T, r *gin.Engine, token string) uint {
	resp := doJSON(t, r, http.MethodPost, "/sessions", token, map[string]interface{}{
		"table_id": 1,
		"mode":     "open_time",
	}, http.StatusCreated)

	var session struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	json.Unmarshal(resp.Data, &session)
	if session.Status != models.SessionStatusOpen {
		t.Fatalf("openSessionTest: expected status open, got %s", session.Status)
	}
	return session.ID
}

func addItemsTest(t *testing.T, r *gin.Engine, token string, sessionID uint) {
	path := fmt.Sprintf("/sessions/%d/items", sessionID)
	doJSON(t, r, http.MethodPost, path, token, map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": 1, "quantity": 2, "notes": "less ice"},
		},
	}, http.StatusCreated)
}

func estimateTest(t *testing.T, r *gin.Engine, token string, sessionID uint) {
	path := fmt.Sprintf("/sessions/%d/estimate", sessionID)
	resp := doJSON(t, r, http.MethodGet, path, token, nil, http.StatusOK)

	var est struct {
		EstimatedFee   float64 `json:"estimated_fee"`
		ElapsedMinutes float64 `json:"elapsed_minutes"`
	}
	json.Unmarshal(resp.Data, &est)
	if est.EstimatedFee != 90000 {
		t.Fatalf("estimateTest: expected fee 90000, got %v", est.EstimatedFee)
	}
}

func closeSessionTest(t *testing.T, r *gin.Engine, token string, sessionID uint) uint {
	path := fmt.Sprintf("/sessions/%d/close", sessionID)
	resp := doJSON(t, r, http.MethodPost, path, token, map[string]interface{}{
		"method":   "cash",
		"tendered": 150000,
	}, http.StatusOK)

	var order struct {
		ID       uint    `json:"id"`
		Status   string  `json:"status"`
		Subtotal float64 `json:"subtotal"`
		Tax      float64 `json:"tax"`
		Total    float64 `json:"total"`
	}
	json.Unmarshal(resp.Data, &order)
	if order.Status != "paid" {
		t.Fatalf("closeSessionTest: expected status paid, got %s", order.Status)
	}
	// subtotal = 16000 (minuman) + 90000 (biaya meja); pajak 10% minuman saja
	if order.Subtotal != 106000 || order.Tax != 1600 || order.Total != 107600 {
		t.Fatalf("closeSessionTest: unexpected totals: subtotal=%v tax=%v total=%v",
			order.Subtotal, order.Tax, order.Total)
	}
	return order.ID
}

func closeSessionAgainTest(t *testing.T, r *gin.Engine, token string, sessionID uint) {
	path := fmt.Sprintf("/sessions/%d/close", sessionID)
	resp := doJSON(t, r, http.MethodPost, path, token, map[string]interface{}{
		"method":   "cash",
		"tendered": 150000,
	}, http.StatusOK)

	var order struct {
		Status string `json:"status"`
	}
	json.Unmarshal(resp.Data, &order)
	if order.Status != "paid" {
		t.Fatalf("closeSessionAgainTest: expected status paid, got %s", order.Status)
	}
}

func checkSinglePaymentTest(t *testing.T, r *gin.Engine, token string, orderID uint) {
	path := fmt.Sprintf("/orders/%d/payment", orderID)
	resp := doJSON(t, r, http.MethodGet, path, token, nil, http.StatusOK)

	var payment struct {
		Amount   float64 `json:"amount"`
		Tendered float64 `json:"tendered"`
		Change   float64 `json:"change"`
		Method   string  `json:"method"`
	}
	json.Unmarshal(resp.Data, &payment)
	if payment.Amount != 107600 || payment.Change != 42400 {
		t.Fatalf("checkSinglePaymentTest: unexpected payment: amount=%v change=%v",
			payment.Amount, payment.Change)
	}
	if payment.Method != "cash" {
		t.Fatalf("checkSinglePaymentTest: expected cash, got %s", payment.Method)
	}
}

func checkStockTest(t *testing.T, db *gorm.DB) {
	// 100 awal - (2 porsi x 2 ml) = 96, dan retry close tidak mendobelkan
	var total float64
	err := db.Model(&models.InventoryMovement{}).
		Select("COALESCE(SUM(quantity), 0)").Where("inventory_item_id = ?", 1).Scan(&total).Error
	if err != nil {
		t.Fatalf("checkStockTest: %v", err)
	}
	if total != 96 {
		t.Fatalf("checkStockTest: expected stock 96, got %v", total)
	}
}

func endShiftTest(t *testing.T, r *gin.Engine, token string, shiftID uint) {
	// Expected cash = 200000 modal + 107600 pembayaran tunai
	path := fmt.Sprintf("/shifts/%d/expected-cash", shiftID)
	resp := doJSON(t, r, http.MethodGet, path, token, nil, http.StatusOK)

	var expected struct {
		StartingCash float64 `json:"starting_cash"`
		CashSales    float64 `json:"cash_sales"`
		ExpectedCash float64 `json:"expected_cash"`
	}
	json.Unmarshal(resp.Data, &expected)
	if expected.ExpectedCash != 307600 {
		t.Fatalf("endShiftTest: expected cash 307600, got %v", expected.ExpectedCash)
	}

	closePath := fmt.Sprintf("/shifts/%d/end", shiftID)
	resp = doJSON(t, r, http.MethodPost, closePath, token, map[string]interface{}{
		"actual_cash": 300000,
		"notes":       "kurang 7600, dicek ulang besok",
	}, http.StatusOK)

	var shift struct {
		EndedAt    *time.Time `json:"ended_at"`
		Difference float64    `json:"difference"`
	}
	json.Unmarshal(resp.Data, &shift)
	if shift.EndedAt == nil {
		t.Fatalf("endShiftTest: shift not marked ended")
	}
	if shift.Difference != -7600 {
		t.Fatalf("endShiftTest: expected difference -7600, got %v", shift.Difference)
	}
}
