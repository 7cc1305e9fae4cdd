package models

import "time"

const (
	AREntryCharge  = "charge"
	AREntryPayment = "payment"
)

// ARLedgerEntry adalah satu baris di buku kasbon customer. Append-only;
// saldo selalu diturunkan dari penjumlahan entry, tidak disimpan terpisah.
// uniqueIndex di IdempotencyKey adalah jaminan idempotensi di level storage:
// replay dengan key yang sama ditolak database, bukan dicek aplikasi.
type ARLedgerEntry struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CustomerID     uint      `gorm:"not null;index" json:"customer_id"`
	Customer       Customer  `gorm:"foreignKey:CustomerID" json:"-"`
	EntryType      string    `gorm:"type:varchar(10);not null" json:"entry_type"` // charge / payment
	AmountCents    int64     `gorm:"not null" json:"amount_cents"`                // selalu positif, arah ada di EntryType
	IdempotencyKey string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"idempotency_key"`
	StaffID        uint      `gorm:"not null" json:"staff_id"`
	SessionID      *uint     `gorm:"index" json:"session_id,omitempty"`
	Note           string    `gorm:"type:varchar(255)" json:"note"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

// SignedCents mengikuti konvensi ledger: charge negatif, payment positif.
func (e *ARLedgerEntry) SignedCents() int64 {
	if e.EntryType == AREntryCharge {
		return -e.AmountCents
	}
	return e.AmountCents
}
