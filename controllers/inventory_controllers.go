package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danuarta/billiard-pos/models"
	"github.com/danuarta/billiard-pos/services"
	"github.com/danuarta/billiard-pos/utils"
)

type InventoryController struct {
	DB *gorm.DB
}

func NewInventoryController(db *gorm.DB) *InventoryController {
	return &InventoryController{DB: db}
}

// CreateItem -> daftarkan bahan baku baru
func (ic *InventoryController) CreateItem(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
		Unit string `json:"unit" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item := models.InventoryItem{Name: req.Name, Unit: req.Unit}
	if err := ic.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Inventory item created", item)
}

// RecordMovement -> catat pembelian / penyesuaian / stok awal.
// Movement SALE tidak lewat sini — hanya settlement engine yang menulisnya.
func (ic *InventoryController) RecordMovement(c *gin.Context) {
	var req struct {
		InventoryItemID uint    `json:"inventory_item_id" binding:"required"`
		Quantity        float64 `json:"quantity" binding:"required"`
		MovementType    string  `json:"movement_type" binding:"required"`
		Note            string  `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	switch req.MovementType {
	case models.MovementInitial, models.MovementPurchase, models.MovementAdjustment:
	default:
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid movement type: %s", req.MovementType))
		return
	}

	var item models.InventoryItem
	if err := ic.DB.First(&item, req.InventoryItemID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("inventory item not found"))
		return
	}

	var staffID *uint
	if v, exists := c.Get("userID"); exists {
		if uid, ok := v.(uint); ok {
			staffID = &uid
		}
	}

	movement := models.InventoryMovement{
		InventoryItemID: req.InventoryItemID,
		Quantity:        req.Quantity,
		MovementType:    req.MovementType,
		StaffID:         staffID,
		Note:            req.Note,
	}
	if err := ic.DB.Create(&movement).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Movement recorded", movement)
}

// GetStock -> stok berjalan satu bahan (derivasi dari ledger)
func (ic *InventoryController) GetStock(c *gin.Context) {
	idStr := c.Param("item_id")
	id, _ := strconv.Atoi(idStr)

	var item models.InventoryItem
	if err := ic.DB.First(&item, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	stock, err := services.CurrentStock(ic.DB, uint(id))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Current stock", gin.H{
		"inventory_item": item,
		"stock":          stock,
	})
}

// GetMovements -> riwayat pergerakan satu bahan
func (ic *InventoryController) GetMovements(c *gin.Context) {
	idStr := c.Param("item_id")
	id, _ := strconv.Atoi(idStr)

	var movements []models.InventoryMovement
	if err := ic.DB.Where("inventory_item_id = ?", id).Order("id asc").Find(&movements).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Inventory movements", movements)
}
