package models

import "time"

// Mode billing untuk sesi meja
const (
	SessionModeOpenTime      = "open_time"
	SessionModeFixedDuration = "fixed_duration"
)

const (
	SessionStatusOpen   = "open"
	SessionStatusClosed = "closed"
)

// Session merepresentasikan satu pemakaian meja (atau walk-in tanpa meja).
// Setelah status menjadi 'closed' record tidak boleh berubah lagi.
type Session struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	TableID            *uint      `gorm:"index" json:"table_id,omitempty"`
	Table              *Table     `gorm:"foreignKey:TableID" json:"table,omitempty"`
	Status             string     `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	Mode               string     `gorm:"type:varchar(20);not null;default:'open_time'" json:"mode"`
	OpenedAt           time.Time  `gorm:"not null" json:"opened_at"`
	ClosedAt           *time.Time `json:"closed_at,omitempty"`
	PausedAt           *time.Time `json:"paused_at,omitempty"`
	PausedSeconds      int64      `gorm:"not null;default:0" json:"paused_seconds"`
	TargetMinutes      *int       `json:"target_minutes,omitempty"` // hanya untuk fixed_duration
	HourlyRateOverride *float64   `gorm:"type:decimal(10,2)" json:"hourly_rate_override,omitempty"`
	IsMoneyGame        bool       `gorm:"not null;default:false" json:"is_money_game"`
	BetAmount          float64    `gorm:"type:decimal(10,2);not null;default:0.00" json:"bet_amount"`
	Prepaid            bool       `gorm:"not null;default:false" json:"prepaid"`
	ReservationRef     *string    `gorm:"type:varchar(64)" json:"reservation_ref,omitempty"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updated_at"`
}

// ElapsedMinutes menghitung menit berjalan sejak sesi dibuka sampai `now`,
// dikurangi total waktu pause. Kalau sesi sedang pause, waktu pause berjalan
// ikut dikurangi juga.
func (s *Session) ElapsedMinutes(now time.Time) float64 {
	end := now
	if s.ClosedAt != nil {
		end = *s.ClosedAt
	}
	paused := time.Duration(s.PausedSeconds) * time.Second
	if s.PausedAt != nil && s.PausedAt.Before(end) {
		paused += end.Sub(*s.PausedAt)
	}
	elapsed := end.Sub(s.OpenedAt) - paused
	if elapsed < 0 {
		return 0
	}
	return elapsed.Minutes()
}
