package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/danuarta/billiard-pos/models"
	"github.com/danuarta/billiard-pos/utils"
)

// shiftOpenToken: nilai yang dipasang di kolom open_token selama shift
// berjalan. Unique index kolom itu yang menjadi kunci global "hanya satu
// shift terbuka", bukan pengecekan SELECT-then-INSERT.
const shiftOpenToken = "open"

type ShiftService struct {
	db *gorm.DB
}

func NewShiftService(db *gorm.DB) *ShiftService {
	return &ShiftService{db: db}
}

// ExpectedCashResult merinci perhitungan kas yang diharapkan di laci.
type ExpectedCashResult struct {
	StartingCash float64 `json:"starting_cash"`
	CashSales    float64 `json:"cash_sales"`
	ExpectedCash float64 `json:"expected_cash"`
}

// StartShift membuka shift baru. Ditolak (reason terisi) kalau masih ada
// shift terbuka, siapa pun pemiliknya.
func (s *ShiftService) StartShift(startingCash float64, staffID uint) (*models.Shift, string, error) {
	if startingCash < 0 {
		return nil, "starting cash cannot be negative", nil
	}
	if staffID == 0 {
		return nil, "staff id is required", nil
	}

	var openCount int64
	if err := s.db.Model(&models.Shift{}).Where("ended_at IS NULL").Count(&openCount).Error; err != nil {
		return nil, "", err
	}
	if openCount > 0 {
		return nil, "another shift is still open", nil
	}

	token := shiftOpenToken
	shift := models.Shift{
		OpenedBy:     staffID,
		StartingCash: startingCash,
		StartedAt:    time.Now(),
		OpenToken:    &token,
	}
	if err := s.db.Create(&shift).Error; err != nil {
		// Dua terminal buka shift bersamaan: yang kalah menabrak unique
		// index open_token, dan itu penolakan bisnis biasa. Error storage
		// lain (koneksi putus, disk) diteruskan apa adanya, jangan disamarkan
		// jadi "shift masih terbuka".
		var stillOpen int64
		if cerr := s.db.Model(&models.Shift{}).Where("ended_at IS NULL").Count(&stillOpen).Error; cerr == nil && stillOpen > 0 {
			return nil, "another shift is still open", nil
		}
		return nil, "", err
	}

	utils.InfoLogger.Printf("shift %d started by staff %d, starting cash %s",
		shift.ID, staffID, utils.FormatCurrencyIDR(startingCash))
	return &shift, "", nil
}

// CurrentShift mengembalikan shift yang sedang terbuka, atau nil.
func (s *ShiftService) CurrentShift() (*models.Shift, error) {
	var shift models.Shift
	err := s.db.Where("ended_at IS NULL").First(&shift).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

// ExpectedCash = kas awal + semua payment CASH yang tercatat sejak shift
// mulai. Metode pembayaran lain tidak memengaruhi isi laci.
func (s *ShiftService) ExpectedCash(shiftID uint) (*ExpectedCashResult, error) {
	var shift models.Shift
	if err := s.db.First(&shift, shiftID).Error; err != nil {
		return nil, err
	}

	query := s.db.Model(&models.Payment{}).
		Where("method = ? AND created_at >= ?", PaymentMethodCash, shift.StartedAt)
	if shift.EndedAt != nil {
		query = query.Where("created_at <= ?", *shift.EndedAt)
	}

	var cashSales *float64
	if err := query.Select("SUM(amount)").Scan(&cashSales).Error; err != nil {
		return nil, err
	}
	sales := 0.0
	if cashSales != nil {
		sales = *cashSales
	}

	return &ExpectedCashResult{
		StartingCash: shift.StartingCash,
		CashSales:    sales,
		ExpectedCash: shift.StartingCash + sales,
	}, nil
}

// EndShift menutup shift satu arah: mencatat kas hasil hitung manual,
// selisihnya (minus = tekor, plus = lebih), dan melepas open_token.
// Shift yang sudah ditutup tidak bisa dibuka lagi.
func (s *ShiftService) EndShift(shiftID uint, actualCash float64, notes string) (*models.Shift, string, error) {
	var shift models.Shift
	if err := s.db.First(&shift, shiftID).Error; err != nil {
		return nil, "", err
	}
	if shift.EndedAt != nil {
		return nil, "shift already ended", nil
	}

	expected, err := s.ExpectedCash(shiftID)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"ended_at":      now,
		"expected_cash": expected.ExpectedCash,
		"actual_cash":   actualCash,
		"difference":    actualCash - expected.ExpectedCash,
		"notes":         notes,
		"open_token":    nil,
		"updated_at":    now,
	}
	if err := s.db.Model(&shift).Updates(updates).Error; err != nil {
		return nil, "", err
	}

	if err := s.db.First(&shift, shiftID).Error; err != nil {
		return nil, "", err
	}
	utils.InfoLogger.Printf("shift %d ended: expected %s, counted %s, difference %s",
		shift.ID,
		utils.FormatCurrencyIDR(shift.ExpectedCash),
		utils.FormatCurrencyIDR(shift.ActualCash),
		utils.FormatCurrencyIDR(shift.Difference))
	return &shift, "", nil
}
