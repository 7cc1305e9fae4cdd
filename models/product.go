package models

import "time"

// SKU khusus untuk line item biaya meja yang dibuat otomatis saat settlement.
const TableTimeSKU = "TABLE-TIME"

type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SKU       string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"sku"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Category  string    `gorm:"type:varchar(50)" json:"category"` // bar, snack, service, dst
	Price     float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	TaxRate   float64   `gorm:"type:decimal(5,4);not null;default:0" json:"tax_rate"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
