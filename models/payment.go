package models

import "time"

// Payment mencatat pembayaran final sebuah order. uniqueIndex di OrderID
// menjamin di level storage bahwa satu order hanya bisa dibayar sekali.
type Payment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrderID        uint      `gorm:"not null;uniqueIndex" json:"order_id"`
	Order          Order     `gorm:"foreignKey:OrderID" json:"-"`
	Amount         float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Tendered       float64   `gorm:"type:decimal(10,2);not null" json:"tendered"`
	Change         float64   `gorm:"type:decimal(10,2);not null;default:0.00" json:"change"`
	Method         string    `gorm:"type:varchar(20);not null;default:'cash'" json:"method"` // cash, qris, bank_transfer, tab
	IdempotencyKey *string   `gorm:"type:varchar(64);uniqueIndex" json:"idempotency_key,omitempty"`
	StaffID        *uint     `json:"staff_id,omitempty"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}
