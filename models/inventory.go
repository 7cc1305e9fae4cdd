package models

import "time"

// Jenis pergerakan stok
const (
	MovementInitial    = "initial"
	MovementPurchase   = "purchase"
	MovementSale       = "sale"
	MovementAdjustment = "adjustment"
)

type InventoryItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Unit      string    `gorm:"type:varchar(20);not null" json:"unit"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// InventoryMovement adalah ledger append-only. Stok saat ini = SUM(quantity),
// tidak pernah di-update in place.
type InventoryMovement struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	InventoryItemID uint          `gorm:"not null;index" json:"inventory_item_id"`
	InventoryItem   InventoryItem `gorm:"foreignKey:InventoryItemID" json:"-"`
	Quantity        float64       `gorm:"type:decimal(12,4);not null" json:"quantity"` // signed: sale negatif
	MovementType    string        `gorm:"type:varchar(20);not null" json:"movement_type"`
	OrderID         *uint         `gorm:"index" json:"order_id,omitempty"`
	OrderItemID     *uint         `gorm:"index" json:"order_item_id,omitempty"`
	StaffID         *uint         `json:"staff_id,omitempty"`
	Note            string        `gorm:"type:varchar(255)" json:"note"`
	CreatedAt       time.Time     `gorm:"not null" json:"created_at"`
}
