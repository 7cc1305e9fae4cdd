package models

import "time"

// Recipe memetakan satu produk ke bahan baku yang dipakai per unit terjual.
// Data referensi, dibaca saat settlement (tidak dicache).
type Recipe struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	ProductID       uint          `gorm:"not null;index" json:"product_id"`
	Product         Product       `gorm:"foreignKey:ProductID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	InventoryItemID uint          `gorm:"not null;index" json:"inventory_item_id"`
	InventoryItem   InventoryItem `gorm:"foreignKey:InventoryItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"inventory_item"`
	QtyPerUnit      float64       `gorm:"type:decimal(10,4);not null" json:"qty_per_unit"`
	Unit            string        `gorm:"type:varchar(20);not null" json:"unit"` // satuan dasar bahan (ml, gr, pcs)
	CreatedAt       time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"not null" json:"updated_at"`
}
