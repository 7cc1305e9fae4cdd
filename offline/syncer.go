package offline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/danuarta/billiard-pos/utils"
)

// Settler adalah potongan settlement engine yang dibutuhkan replay.
// Implementasi aslinya services.SettlementService; di test bisa diganti.
type Settler interface {
	CloseSessionAndRecordPayment(sessionID uint, method string, tendered float64, staffID *uint, idempotencyKey *string) error
}

// Syncer menguras antrian pending ke settlement engine. Karena
// close-and-charge idempotent, replay operasi yang ternyata sudah
// diterapkan server (misal sesi ditutup terminal lain duluan) jadi no-op,
// bukan tagihan ganda.
type Syncer struct {
	Queue    *Queue
	Settler  Settler
	StopChan chan struct{}
	Interval time.Duration
}

func NewSyncer(queue *Queue, settler Settler) *Syncer {
	return &Syncer{
		Queue:    queue,
		Settler:  settler,
		StopChan: make(chan struct{}),
		Interval: 15 * time.Second,
	}
}

// Start menjalankan sync berkala di background sampai Stop dipanggil.
// Dipanggil saat koneksi kembali; SyncNow tetap bisa dipanggil manual
// dari tombol refresh.
func (s *Syncer) Start() {
	go func() {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.SyncNow()
			case <-s.StopChan:
				return
			}
		}
	}()
}

func (s *Syncer) Stop() {
	close(s.StopChan)
}

// SyncNow menguras item pending urut dari yang paling lama. Sukses ->
// synced. Gagal -> failed + pesan error, dibiarkan untuk diperiksa manual;
// tidak di-retry otomatis supaya payload yang memang rusak tidak
// berputar-putar selamanya.
func (s *Syncer) SyncNow() (synced int, failed int) {
	items, err := s.Queue.Pending()
	if err != nil {
		utils.ErrorLogger.Printf("sync: cannot read pending queue: %v", err)
		return 0, 0
	}

	for _, item := range items {
		if err := s.apply(item); err != nil {
			if merr := s.Queue.markFailed(item.LocalID, err); merr != nil {
				utils.ErrorLogger.Printf("sync: cannot mark %s failed: %v", item.LocalID, merr)
			}
			utils.ErrorLogger.Printf("sync: item %s failed: %v", item.LocalID, err)
			failed++
			continue
		}
		if err := s.Queue.markSynced(item.LocalID); err != nil {
			utils.ErrorLogger.Printf("sync: cannot mark %s synced: %v", item.LocalID, err)
		}
		synced++
	}

	if synced > 0 || failed > 0 {
		utils.InfoLogger.Printf("sync: %d synced, %d failed (device %s)", synced, failed, s.Queue.DeviceID())
	}
	return synced, failed
}

func (s *Syncer) apply(item SyncQueueItem) error {
	switch item.OpType {
	case OpSaleCompleted:
		var payload SaleCompletedPayload
		if err := json.Unmarshal([]byte(item.Payload), &payload); err != nil {
			return fmt.Errorf("invalid payload: %w", err)
		}
		// Local id item jadi idempotency key payment-nya di server
		localID := item.LocalID
		return s.Settler.CloseSessionAndRecordPayment(payload.SessionID, payload.Method, payload.Tendered, payload.StaffID, &localID)
	default:
		return fmt.Errorf("unknown operation type: %s", item.OpType)
	}
}
