package models

import "time"

type User struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"type:varchar(255); not null"`
	Email     string    `gorm:"type:varchar(255); unique; not null"`
	Password  string    `gorm:"type:varchar(255); not null"`
	Role      string    `gorm:"type:varchar(50); not null"` // admin, staff, kasir
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
