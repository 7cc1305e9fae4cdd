package services

import (
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/danuarta/billiard-pos/models"
	"github.com/danuarta/billiard-pos/utils"
)

// Status order
const (
	OrderStatusOpen      = "open"
	OrderStatusSubmitted = "submitted"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusServed    = "served"
	OrderStatusPaid      = "paid"
)

// Metode pembayaran
const (
	PaymentMethodCash     = "cash"
	PaymentMethodQRIS     = "qris"
	PaymentMethodTransfer = "bank_transfer"
	PaymentMethodTab      = "tab"
)

// SettlementService menutup sesi dan menagih pembayarannya tepat satu kali.
type SettlementService struct {
	db *gorm.DB
}

func NewSettlementService(db *gorm.DB) *SettlementService {
	return &SettlementService{db: db}
}

// isActiveOrderStatus: order yang masih boleh di-settle.
func isActiveOrderStatus(status string) bool {
	switch status {
	case OrderStatusOpen, OrderStatusSubmitted, OrderStatusPreparing, OrderStatusReady, OrderStatusServed:
		return true
	}
	return false
}

// CloseSessionAndRecordPayment menutup sesi, menghitung biaya meja,
// memotong stok, dan mencatat pembayaran — semuanya dalam SATU transaksi.
//
// Operasi ini idempotent: kalau order sudah paid atau sudah punya payment,
// fungsi langsung return nil tanpa efek apa pun. Itu mekanisme utama yang
// membuat replay (retry, double-tap, sync offline) aman. Sebagai jaring
// kedua, payments.order_id punya unique index di storage.
//
// idempotencyKey opsional; sync offline mengisinya dengan local id item
// antriannya supaya payment bisa dilacak balik ke operasi asalnya, dan
// unique index kolom itu menolak satu item antrian diterapkan dua kali.
func (s *SettlementService) CloseSessionAndRecordPayment(sessionID uint, method string, tendered float64, staffID *uint, idempotencyKey *string) error {
	switch method {
	case PaymentMethodCash, PaymentMethodQRIS, PaymentMethodTransfer, PaymentMethodTab:
	default:
		return fmt.Errorf("invalid payment method: %s", method)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var session models.Session
		if err := tx.First(&session, sessionID).Error; err != nil {
			return fmt.Errorf("session not found: %w", err)
		}

		var order models.Order
		if err := tx.Where("session_id = ?", sessionID).First(&order).Error; err != nil {
			return fmt.Errorf("order not found for session %d: %w", sessionID, err)
		}

		// Guard idempotensi #1: order sudah bukan status aktif -> no-op.
		if !isActiveOrderStatus(order.Status) {
			utils.InfoLogger.Printf("settlement skipped: order %d already %s", order.ID, order.Status)
			return nil
		}

		// Guard idempotensi #2: payment sudah ada -> no-op.
		var paymentCount int64
		if err := tx.Model(&models.Payment{}).Where("order_id = ?", order.ID).Count(&paymentCount).Error; err != nil {
			return err
		}
		if paymentCount > 0 {
			utils.InfoLogger.Printf("settlement skipped: order %d already has a payment", order.ID)
			return nil
		}

		now := time.Now()

		// 1. Tutup sesi. Kalau masih pause, sisa pause dilipat dulu.
		if session.Status != models.SessionStatusClosed {
			if session.PausedAt != nil {
				session.PausedSeconds += int64(now.Sub(*session.PausedAt).Seconds())
				session.PausedAt = nil
			}
			session.Status = models.SessionStatusClosed
			session.ClosedAt = &now
			session.UpdatedAt = now
			if err := tx.Save(&session).Error; err != nil {
				return err
			}
		}

		// 2. Hitung biaya meja dengan fungsi fee yang sama dengan estimasi.
		var tableRate float64
		if session.TableID != nil {
			var table models.Table
			if err := tx.First(&table, *session.TableID).Error; err != nil {
				return fmt.Errorf("table not found: %w", err)
			}
			tableRate = table.HourlyRate
		}
		fee := CalculateTableFee(SessionFeeRequest(&session, tableRate, session.ElapsedMinutes(now)))

		// 3. Upsert line item "table time" kalau ada biaya.
		if fee > 0 {
			if err := s.upsertTableTimeItem(tx, &order, fee, now); err != nil {
				return err
			}
		}

		// 4. Hitung ulang subtotal/tax/total dari semua line item.
		var items []models.OrderItem
		if err := tx.Preload("Product").Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return err
		}
		var subtotal, taxTotal float64
		for _, item := range items {
			subtotal += item.LineTotal
			// Pajak dibulatkan ke sen per baris dulu, baru dijumlah.
			taxTotal += roundCents(item.LineTotal * item.Product.TaxRate)
		}
		subtotal = roundCents(subtotal)
		taxTotal = roundCents(taxTotal)
		total := roundCents(subtotal + taxTotal)

		// 5. Ledakkan resep jadi pergerakan stok SALE, satu batch insert.
		var movements []models.InventoryMovement
		for i := range items {
			if items[i].IsTableTime {
				continue
			}
			recipes, err := ResolveRecipe(tx, items[i].ProductID)
			if err != nil {
				return err
			}
			movements = append(movements, ExplodeOrderItem(recipes, &items[i])...)
		}
		if len(movements) > 0 {
			if err := tx.Create(&movements).Error; err != nil {
				return err
			}
		}

		// 6. Catat tepat satu payment.
		change := 0.0
		if method == PaymentMethodCash && tendered > total {
			change = roundCents(tendered - total)
		}
		payment := models.Payment{
			OrderID:        order.ID,
			Amount:         total,
			Tendered:       tendered,
			Change:         change,
			Method:         method,
			IdempotencyKey: idempotencyKey,
			StaffID:        staffID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		// 7. Tandai order paid dengan total terbaru.
		order.Status = OrderStatusPaid
		order.Subtotal = subtotal
		order.Tax = taxTotal
		order.Total = total
		order.UpdatedAt = now
		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		utils.InfoLogger.Printf("session %d settled: order %d paid %s via %s",
			session.ID, order.ID, utils.FormatCurrencyIDR(total), method)
		return nil
	})
}

// upsertTableTimeItem mencari (atau membuat) produk sintetis TABLE-TIME lalu
// menaruh biayanya sebagai satu line item qty 1 di order. Kalau line item
// table time sudah ada (settlement retry setelah gagal di tengah), harganya
// di-update, bukan diduplikasi.
func (s *SettlementService) upsertTableTimeItem(tx *gorm.DB, order *models.Order, fee float64, now time.Time) error {
	var product models.Product
	err := tx.Where("sku = ?", models.TableTimeSKU).First(&product).Error
	if err == gorm.ErrRecordNotFound {
		product = models.Product{
			SKU:       models.TableTimeSKU,
			Name:      "Biaya Meja",
			Category:  "service",
			Price:     0,
			TaxRate:   0,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	var existing models.OrderItem
	err = tx.Where("order_id = ? AND is_table_time = ?", order.ID, true).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		item := models.OrderItem{
			OrderID:     order.ID,
			ProductID:   product.ID,
			Quantity:    1,
			UnitPrice:   fee,
			LineTotal:   fee,
			IsTableTime: true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tx.Create(&item).Error
	} else if err != nil {
		return err
	}

	existing.UnitPrice = fee
	existing.LineTotal = fee
	existing.UpdatedAt = now
	return tx.Save(&existing).Error
}

// EstimateSessionCost menghitung estimasi biaya meja berjalan untuk
// ditampilkan ke kasir. Memakai CalculateTableFee yang sama dengan
// settlement, jadi angkanya dijamin konsisten.
func (s *SettlementService) EstimateSessionCost(sessionID uint) (float64, float64, error) {
	var session models.Session
	if err := s.db.First(&session, sessionID).Error; err != nil {
		return 0, 0, err
	}
	var tableRate float64
	if session.TableID != nil {
		var table models.Table
		if err := s.db.First(&table, *session.TableID).Error; err != nil {
			return 0, 0, err
		}
		tableRate = table.HourlyRate
	}
	elapsed := session.ElapsedMinutes(time.Now())
	fee := CalculateTableFee(SessionFeeRequest(&session, tableRate, elapsed))
	return fee, elapsed, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
