package models

import "time"

type Customer struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"type:varchar(255);not null" json:"name"`
	Phone            string    `gorm:"type:varchar(30)" json:"phone"`
	CreditLimitCents int64     `gorm:"not null;default:0" json:"credit_limit_cents"`
	Status           string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null" json:"updated_at"`
}
