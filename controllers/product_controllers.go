package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danuarta/billiard-pos/models"
	"github.com/danuarta/billiard-pos/utils"
)

type ProductController struct {
	DB *gorm.DB
}

func NewProductController(db *gorm.DB) *ProductController {
	return &ProductController{DB: db}
}

// GetAllProducts -> daftar produk (juga dipakai terminal untuk mengisi
// cache offline-nya, replace-all)
func (pc *ProductController) GetAllProducts(c *gin.Context) {
	var products []models.Product
	if err := pc.DB.Find(&products).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All products", products)
}

// CreateProduct -> tambah produk referensi
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req struct {
		SKU      string  `json:"sku" binding:"required"`
		Name     string  `json:"name" binding:"required"`
		Category string  `json:"category"`
		Price    float64 `json:"price" binding:"required"`
		TaxRate  float64 `json:"tax_rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	product := models.Product{
		SKU:      req.SKU,
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		TaxRate:  req.TaxRate,
	}
	if err := pc.DB.Create(&product).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Product created", product)
}

// CreateRecipe -> tambah baris resep produk
func (pc *ProductController) CreateRecipe(c *gin.Context) {
	var req struct {
		ProductID       uint    `json:"product_id" binding:"required"`
		InventoryItemID uint    `json:"inventory_item_id" binding:"required"`
		QtyPerUnit      float64 `json:"qty_per_unit" binding:"required"`
		Unit            string  `json:"unit" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	recipe := models.Recipe{
		ProductID:       req.ProductID,
		InventoryItemID: req.InventoryItemID,
		QtyPerUnit:      req.QtyPerUnit,
		Unit:            req.Unit,
	}
	if err := pc.DB.Create(&recipe).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Recipe created", recipe)
}

// GetRecipes -> resep satu produk
func (pc *ProductController) GetRecipes(c *gin.Context) {
	productID := c.Param("product_id")

	var recipes []models.Recipe
	if err := pc.DB.Preload("InventoryItem").Where("product_id = ?", productID).Find(&recipes).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Product recipes", recipes)
}
