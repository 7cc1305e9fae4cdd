package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danuarta/billiard-pos/models"
)

var orderCtrlDBCounter int

func setupOrderControllerTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	orderCtrlDBCounter++
	dsn := fmt.Sprintf("file:orderctrl%d?mode=memory&cache=shared", orderCtrlDBCounter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatal("failed to connect database")
	}
	if err := db.AutoMigrate(&models.Session{}, &models.Order{}, &models.OrderItem{}, &models.Product{}); err != nil {
		t.Fatal(err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	ctrl := NewOrderController(db)
	r.POST("/sessions/:session_id/items", ctrl.AddItems)
	return db, r
}

func postItems(t *testing.T, r *gin.Engine, sessionID uint, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/sessions/%d/items", sessionID), bytes.NewBuffer(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAddItemsUpdatesRunningSubtotal(t *testing.T) {
	db, r := setupOrderControllerTest(t)

	order := models.Order{SessionID: 1, Status: "open"}
	require.NoError(t, db.Create(&order).Error)
	drink := models.Product{SKU: "DRINK-1", Name: "Es Teh", Price: 6000}
	require.NoError(t, db.Create(&drink).Error)

	w := postItems(t, r, 1, gin.H{
		"items": []gin.H{{"product_id": drink.ID, "quantity": 2}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var updated models.Order
	require.NoError(t, db.First(&updated, order.ID).Error)
	assert.Equal(t, 12000.0, updated.Subtotal)
}

func TestAddItemsSurfacesOrderWriteFailure(t *testing.T) {
	db, r := setupOrderControllerTest(t)

	order := models.Order{SessionID: 1, Status: "open"}
	require.NoError(t, db.Create(&order).Error)

	// Paksa setiap UPDATE gagal: simpan subtotal di akhir handler harus
	// dijawab 500, bukan diam-diam sukses dengan angka basi
	err := db.Callback().Update().Before("gorm:update").
		Register("force_update_error", func(tx *gorm.DB) {
			tx.AddError(errors.New("disk full"))
		})
	require.NoError(t, err)

	// Produk tak dikenal dilewati, jadi satu-satunya write adalah Save order
	w := postItems(t, r, 1, gin.H{
		"items": []gin.H{{"product_id": 999, "quantity": 1}},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.False(t, resp.Status)
	assert.Contains(t, resp.Message, "disk full")
}
