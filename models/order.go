package models

import "time"

type Order struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	SessionID  uint        `gorm:"not null;uniqueIndex" json:"session_id"` // satu tab aktif per sesi
	Session    Session     `gorm:"foreignKey:SessionID" json:"-"`
	Status     string      `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	Subtotal   float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"subtotal"`
	Tax        float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"tax"`
	Total      float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total"`
	CreatedAt  time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"not null" json:"updated_at"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
}
