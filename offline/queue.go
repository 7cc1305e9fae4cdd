package offline

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danuarta/billiard-pos/models"
)

// Status item antrian
const (
	StatusPending = "pending"
	StatusSynced  = "synced"
	StatusFailed  = "failed"
)

// Tipe operasi yang bisa diantri. Saat ini baru satu.
const OpSaleCompleted = "sale_completed"

// SyncQueueItem adalah satu operasi yang menunggu dikirim ke server.
// Hidup di database SQLite lokal terminal, bukan di server. Item tidak
// pernah dihapus supaya jejaknya bisa diaudit.
type SyncQueueItem struct {
	LocalID   string     `gorm:"type:varchar(36);primaryKey" json:"local_id"`
	OpType    string     `gorm:"type:varchar(30);not null" json:"op_type"`
	Payload   string     `gorm:"type:text;not null" json:"payload"`
	Status    string     `gorm:"type:varchar(10);not null;default:'pending';index" json:"status"`
	DeviceID  string     `gorm:"type:varchar(64);not null" json:"device_id"`
	LastError string     `gorm:"type:text" json:"last_error"`
	CreatedAt time.Time  `gorm:"not null;index" json:"created_at"`
	SyncedAt  *time.Time `json:"synced_at,omitempty"`
}

// CachedProduct adalah snapshot produk yang diunduh dari server supaya
// terminal tetap bisa mencatat pesanan saat offline. Di-replace utuh tiap
// sync, tidak di-merge.
type CachedProduct struct {
	ProductID uint      `gorm:"primaryKey" json:"product_id"`
	SKU       string    `gorm:"type:varchar(64);not null" json:"sku"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Category  string    `gorm:"type:varchar(50)" json:"category"`
	Price     float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	TaxRate   float64   `gorm:"type:decimal(5,4);not null" json:"tax_rate"`
	CachedAt  time.Time `gorm:"not null" json:"cached_at"`
}

// SaleCompletedPayload: isi antrian untuk operasi close-and-charge.
type SaleCompletedPayload struct {
	SessionID  uint      `json:"session_id"`
	Method     string    `json:"method"`
	Tendered   float64   `json:"tendered"`
	StaffID    *uint     `json:"staff_id,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
}

// Queue adalah antrian operasi durable milik satu terminal.
type Queue struct {
	db       *gorm.DB
	deviceID string
}

// OpenQueue membuka (atau membuat) database antrian lokal di path tertentu.
func OpenQueue(path, deviceID string) (*Queue, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return NewQueue(db, deviceID)
}

// NewQueue membungkus koneksi gorm yang sudah ada (dipakai test dengan
// sqlite in-memory).
func NewQueue(db *gorm.DB, deviceID string) (*Queue, error) {
	if err := db.AutoMigrate(&SyncQueueItem{}, &CachedProduct{}); err != nil {
		return nil, err
	}
	if deviceID == "" {
		deviceID = uuid.NewString()
	}
	return &Queue{db: db, deviceID: deviceID}, nil
}

func (q *Queue) DeviceID() string {
	return q.deviceID
}

// Enqueue menaruh operasi di antrian lokal. Sinkron dan murni lokal —
// tidak pernah menyentuh jaringan, jadi aman dipanggil saat offline.
func (q *Queue) Enqueue(opType string, payload interface{}) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	item := SyncQueueItem{
		LocalID:   uuid.NewString(),
		OpType:    opType,
		Payload:   string(raw),
		Status:    StatusPending,
		DeviceID:  q.deviceID,
		CreatedAt: time.Now(),
	}
	if err := q.db.Create(&item).Error; err != nil {
		return "", err
	}
	return item.LocalID, nil
}

// Pending mengembalikan item yang belum tersinkron, urut dari yang paling
// lama dibuat (replay harus oldest-first).
func (q *Queue) Pending() ([]SyncQueueItem, error) {
	var items []SyncQueueItem
	err := q.db.Where("status = ?", StatusPending).Order("created_at asc").Find(&items).Error
	return items, err
}

// All mengembalikan seluruh isi antrian, termasuk yang synced/failed.
func (q *Queue) All() ([]SyncQueueItem, error) {
	var items []SyncQueueItem
	err := q.db.Order("created_at asc").Find(&items).Error
	return items, err
}

func (q *Queue) markSynced(localID string) error {
	now := time.Now()
	return q.db.Model(&SyncQueueItem{}).Where("local_id = ?", localID).
		Updates(map[string]interface{}{"status": StatusSynced, "synced_at": now, "last_error": ""}).Error
}

func (q *Queue) markFailed(localID string, cause error) error {
	return q.db.Model(&SyncQueueItem{}).Where("local_id = ?", localID).
		Updates(map[string]interface{}{"status": StatusFailed, "last_error": cause.Error()}).Error
}

// ReplaceProductCache mengganti seluruh snapshot produk lokal dengan hasil
// unduhan terbaru. Replace-all, bukan merge inkremental.
func (q *Queue) ReplaceProductCache(products []models.Product) error {
	return q.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&CachedProduct{}).Error; err != nil {
			return err
		}
		if len(products) == 0 {
			return nil
		}
		now := time.Now()
		cached := make([]CachedProduct, 0, len(products))
		for _, p := range products {
			cached = append(cached, CachedProduct{
				ProductID: p.ID,
				SKU:       p.SKU,
				Name:      p.Name,
				Category:  p.Category,
				Price:     p.Price,
				TaxRate:   p.TaxRate,
				CachedAt:  now,
			})
		}
		return tx.Create(&cached).Error
	})
}

// CachedProducts membaca snapshot produk lokal.
func (q *Queue) CachedProducts() ([]CachedProduct, error) {
	var products []CachedProduct
	err := q.db.Order("product_id asc").Find(&products).Error
	return products, err
}
