package services

import (
	"gorm.io/gorm"

	"github.com/danuarta/billiard-pos/models"
	"github.com/danuarta/billiard-pos/utils"
)

// TabService mengelola kasbon (piutang) customer lewat dua operasi simetris:
// ChargeToTab menambah hutang, MakePaymentToTab mengurangi.
type TabService struct {
	db *gorm.DB
}

func NewTabService(db *gorm.DB) *TabService {
	return &TabService{db: db}
}

// TabResult dikembalikan saat operasi ledger sukses.
type TabResult struct {
	EntryID      uint  `json:"entry_id"`
	BalanceCents int64 `json:"balance_cents"` // sisa hutang setelah operasi
}

// CustomerOwedCents menghitung hutang berjalan customer dari penjumlahan
// semua entry: charge menambah, payment mengurangi. Tidak ada kolom saldo
// yang disimpan — ledger-nya sumber kebenaran satu-satunya.
func CustomerOwedCents(db *gorm.DB, customerID uint) (int64, error) {
	var owed *int64
	err := db.Model(&models.ARLedgerEntry{}).
		Where("customer_id = ?", customerID).
		Select("SUM(CASE WHEN entry_type = 'charge' THEN amount_cents ELSE -amount_cents END)").
		Scan(&owed).Error
	if err != nil {
		return 0, err
	}
	if owed == nil {
		return 0, nil
	}
	return *owed, nil
}

// ChargeToTab menagih sejumlah sen ke kasbon customer.
//
// Return kedua adalah alasan penolakan (string kosong = sukses). Penolakan
// validasi dan limit kredit bukan error fatal — UI menampilkan alasannya
// apa adanya ke kasir.
//
// Idempotensi dijamin unique index di idempotency_key: replay dengan key
// yang sama tidak membuat entry kedua, melainkan mengembalikan entry yang
// sudah ada beserta saldo saat ini.
func (s *TabService) ChargeToTab(customerID uint, amountCents int64, staffID uint, idempotencyKey string, sessionID *uint) (*TabResult, string, error) {
	return s.writeEntry(models.AREntryCharge, customerID, amountCents, staffID, idempotencyKey, sessionID)
}

// MakePaymentToTab mencatat pembayaran kasbon. Sama dengan ChargeToTab tapi
// mengurangi hutang dan tanpa cek limit kredit.
func (s *TabService) MakePaymentToTab(customerID uint, amountCents int64, staffID uint, idempotencyKey string, sessionID *uint) (*TabResult, string, error) {
	return s.writeEntry(models.AREntryPayment, customerID, amountCents, staffID, idempotencyKey, sessionID)
}

func (s *TabService) writeEntry(entryType string, customerID uint, amountCents int64, staffID uint, idempotencyKey string, sessionID *uint) (*TabResult, string, error) {
	// Validasi dulu, sebelum menyentuh storage.
	if customerID == 0 {
		return nil, "customer id is required", nil
	}
	if staffID == 0 {
		return nil, "staff id is required", nil
	}
	if amountCents <= 0 {
		return nil, "amount must be positive", nil
	}
	if idempotencyKey == "" {
		return nil, "idempotency key is required", nil
	}

	var result *TabResult
	var reason string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Cek replay paling awal, sebelum cek bisnis apa pun. Key yang sudah
		// pernah dipakai berarti attempt pertamanya sudah tercatat; retry
		// harus dijawab sukses dengan entry yang sama, bukan ditolak limit
		// kredit gara-gara saldo sudah berubah oleh attempt pertama itu.
		var existing models.ARLedgerEntry
		if err := tx.Where("idempotency_key = ?", idempotencyKey).First(&existing).Error; err == nil {
			owed, oerr := CustomerOwedCents(tx, existing.CustomerID)
			if oerr != nil {
				return oerr
			}
			utils.InfoLogger.Printf("tab %s replayed for customer %d (key=%s), returning existing entry %d",
				entryType, existing.CustomerID, idempotencyKey, existing.ID)
			result = &TabResult{EntryID: existing.ID, BalanceCents: owed}
			return nil
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		var customer models.Customer
		if err := tx.First(&customer, customerID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				reason = "customer not found"
				return nil
			}
			return err
		}
		if customer.Status != "active" {
			reason = "customer is inactive"
			return nil
		}

		owed, err := CustomerOwedCents(tx, customerID)
		if err != nil {
			return err
		}

		if entryType == models.AREntryCharge && owed+amountCents > customer.CreditLimitCents {
			reason = "credit limit exceeded"
			return nil
		}

		entry := models.ARLedgerEntry{
			CustomerID:     customerID,
			EntryType:      entryType,
			AmountCents:    amountCents,
			IdempotencyKey: idempotencyKey,
			StaffID:        staffID,
			SessionID:      sessionID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			// Jaring kedua untuk balapan dua request dengan key sama: yang
			// kalah menabrak unique index, lalu mengembalikan entry milik
			// pemenangnya.
			if ferr := tx.Where("idempotency_key = ?", idempotencyKey).First(&existing).Error; ferr == nil {
				current, cerr := CustomerOwedCents(tx, customerID)
				if cerr != nil {
					return cerr
				}
				utils.InfoLogger.Printf("tab %s replayed for customer %d (key=%s), returning existing entry %d",
					entryType, customerID, idempotencyKey, existing.ID)
				result = &TabResult{EntryID: existing.ID, BalanceCents: current}
				return nil
			}
			return err
		}

		newOwed, err := CustomerOwedCents(tx, customerID)
		if err != nil {
			return err
		}
		result = &TabResult{EntryID: entry.ID, BalanceCents: newOwed}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return result, reason, nil
}

// CustomerStatement mengembalikan seluruh entry ledger seorang customer,
// urut dari yang paling lama.
func (s *TabService) CustomerStatement(customerID uint) ([]models.ARLedgerEntry, error) {
	var entries []models.ARLedgerEntry
	err := s.db.Where("customer_id = ?", customerID).Order("id asc").Find(&entries).Error
	return entries, err
}
