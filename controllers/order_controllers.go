package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danuarta/billiard-pos/models"
	"github.com/danuarta/billiard-pos/utils"
)

type OrderController struct {
	DB *gorm.DB
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{DB: db}
}

// AddItems -> tambah pesanan ke tab sebuah sesi
func (oc *OrderController) AddItems(c *gin.Context) {
	sessionID := c.Param("session_id")

	var order models.Order
	if err := oc.DB.Where("session_id = ?", sessionID).First(&order).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("no order for this session"))
		return
	}
	if order.Status == "paid" {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("order is already paid"))
		return
	}

	type ItemReq struct {
		ProductID uint    `json:"product_id"`
		Quantity  float64 `json:"quantity"`
		Notes     string  `json:"notes"`
	}
	var body struct {
		Items []ItemReq `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var subtotal float64
	for _, item := range body.Items {
		if item.Quantity <= 0 {
			continue
		}
		// Ambil produk untuk harga
		var product models.Product
		if err := oc.DB.First(&product, item.ProductID).Error; err != nil {
			// skip jika tak ketemu
			continue
		}
		lineTotal := item.Quantity * product.Price

		orderItem := models.OrderItem{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			LineTotal: lineTotal,
			Notes:     item.Notes,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := oc.DB.Create(&orderItem).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		subtotal += lineTotal
	}

	// Subtotal berjalan; angka final tetap dihitung ulang saat settlement.
	order.Subtotal += subtotal
	order.UpdatedAt = time.Now()
	if err := oc.DB.Save(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Items added", order)
}

// GetOrder -> detail order sebuah sesi beserta item-itemnya
func (oc *OrderController) GetOrder(c *gin.Context) {
	sessionID := c.Param("session_id")

	var order models.Order
	if err := oc.DB.Preload("OrderItems").Preload("OrderItems.Product").
		Where("session_id = ?", sessionID).First(&order).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// GetPayment -> payment sebuah order (kalau sudah ada)
func (oc *OrderController) GetPayment(c *gin.Context) {
	idStr := c.Param("order_id")
	id, _ := strconv.Atoi(idStr)

	var payment models.Payment
	if err := oc.DB.Where("order_id = ?", id).First(&payment).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Payment detail", payment)
}
