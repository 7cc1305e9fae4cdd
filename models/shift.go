package models

import "time"

// Shift adalah satu periode tanggung jawab laci kas oleh satu staff.
// OpenToken berisi "open" selama shift berjalan dan di-NULL-kan saat tutup;
// uniqueIndex-nya memastikan maksimal satu shift terbuka di seluruh sistem
// (NULL tidak dihitung oleh unique index, baik di MySQL maupun SQLite).
type Shift struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	OpenedBy     uint       `gorm:"not null" json:"opened_by"`
	StartingCash float64    `gorm:"type:decimal(10,2);not null" json:"starting_cash"`
	StartedAt    time.Time  `gorm:"not null" json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	ExpectedCash float64    `gorm:"type:decimal(10,2);not null;default:0.00" json:"expected_cash"`
	ActualCash   float64    `gorm:"type:decimal(10,2);not null;default:0.00" json:"actual_cash"`
	Difference   float64    `gorm:"type:decimal(10,2);not null;default:0.00" json:"difference"` // minus = tekor
	Notes        string     `gorm:"type:text" json:"notes"`
	OpenToken    *string    `gorm:"type:varchar(10);uniqueIndex" json:"-"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}
