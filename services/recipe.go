package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/danuarta/billiard-pos/models"
)

// ResolveRecipe mengambil baris resep sebuah produk. Read-only, dibaca
// langsung dari DB saat dibutuhkan (tidak dicache, data referensi bisa
// berubah sewaktu-waktu).
func ResolveRecipe(db *gorm.DB, productID uint) ([]models.Recipe, error) {
	var recipes []models.Recipe
	if err := db.Where("product_id = ?", productID).Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// ExplodeOrderItem menurunkan satu line item terjual menjadi pergerakan stok
// SALE (quantity negatif). Kuantitas pecahan dibiarkan apa adanya, tidak
// dibulatkan ke integer. Produk tanpa resep menghasilkan slice kosong:
// konsumsinya memang tidak dilacak.
func ExplodeOrderItem(recipes []models.Recipe, item *models.OrderItem) []models.InventoryMovement {
	movements := make([]models.InventoryMovement, 0, len(recipes))
	for _, r := range recipes {
		orderID := item.OrderID
		itemID := item.ID
		movements = append(movements, models.InventoryMovement{
			InventoryItemID: r.InventoryItemID,
			Quantity:        -(item.Quantity * r.QtyPerUnit),
			MovementType:    models.MovementSale,
			OrderID:         &orderID,
			OrderItemID:     &itemID,
			Note:            fmt.Sprintf("sale of product #%d", item.ProductID),
		})
	}
	return movements
}

// CurrentStock menghitung stok berjalan sebuah bahan = SUM semua movement.
func CurrentStock(db *gorm.DB, inventoryItemID uint) (float64, error) {
	var total *float64
	err := db.Model(&models.InventoryMovement{}).
		Where("inventory_item_id = ?", inventoryItemID).
		Select("SUM(quantity)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
