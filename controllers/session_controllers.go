package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danuarta/billiard-pos/models"
	"github.com/danuarta/billiard-pos/services"
	"github.com/danuarta/billiard-pos/utils"
)

type SessionController struct {
	DB         *gorm.DB
	Settlement *services.SettlementService
}

func NewSessionController(db *gorm.DB) *SessionController {
	return &SessionController{
		DB:         db,
		Settlement: services.NewSettlementService(db),
	}
}

// OpenSession -> mulai pemakaian meja (atau walk-in tanpa meja).
// Order kosong langsung dibuat bersama sesinya: satu sesi satu tab.
func (sc *SessionController) OpenSession(c *gin.Context) {
	var req struct {
		TableID            *uint    `json:"table_id"`
		Mode               string   `json:"mode"` // default open_time
		TargetMinutes      *int     `json:"target_minutes"`
		HourlyRateOverride *float64 `json:"hourly_rate_override"`
		IsMoneyGame        bool     `json:"is_money_game"`
		BetAmount          float64  `json:"bet_amount"`
		Prepaid            bool     `json:"prepaid"`
		ReservationRef     *string  `json:"reservation_ref"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = models.SessionModeOpenTime
	}
	if mode != models.SessionModeOpenTime && mode != models.SessionModeFixedDuration {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid mode: %s", mode))
		return
	}
	if mode == models.SessionModeFixedDuration && (req.TargetMinutes == nil || *req.TargetMinutes <= 0) {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("target_minutes is required for fixed_duration"))
		return
	}

	// Cek meja kalau disebutkan
	if req.TableID != nil {
		var table models.Table
		if err := sc.DB.First(&table, *req.TableID).Error; err != nil {
			utils.RespondError(c, http.StatusNotFound, fmt.Errorf("table not found"))
			return
		}
	}

	now := time.Now()
	session := models.Session{
		TableID:            req.TableID,
		Status:             models.SessionStatusOpen,
		Mode:               mode,
		OpenedAt:           now,
		TargetMinutes:      req.TargetMinutes,
		HourlyRateOverride: req.HourlyRateOverride,
		IsMoneyGame:        req.IsMoneyGame,
		BetAmount:          req.BetAmount,
		Prepaid:            req.Prepaid,
		ReservationRef:     req.ReservationRef,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		order := models.Order{
			SessionID: session.ID,
			Status:    "open",
			CreatedAt: now,
			UpdatedAt: now,
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Session %d opened (mode=%s)", session.ID, session.Mode)
	utils.RespondJSON(c, http.StatusCreated, "Session opened", session)
}

// GetSession -> detail 1 sesi
func (sc *SessionController) GetSession(c *gin.Context) {
	idStr := c.Param("session_id")
	id, _ := strconv.Atoi(idStr)

	var session models.Session
	if err := sc.DB.Preload("Table").First(&session, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session detail", session)
}

// PauseSession -> hentikan sementara penghitungan waktu
func (sc *SessionController) PauseSession(c *gin.Context) {
	idStr := c.Param("session_id")

	var session models.Session
	if err := sc.DB.First(&session, idStr).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if session.Status != models.SessionStatusOpen {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("session is not open"))
		return
	}
	if session.PausedAt != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("session is already paused"))
		return
	}

	now := time.Now()
	session.PausedAt = &now
	session.UpdatedAt = now
	if err := sc.DB.Save(&session).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session paused", session)
}

// ResumeSession -> lanjutkan penghitungan waktu; durasi pause diakumulasi
func (sc *SessionController) ResumeSession(c *gin.Context) {
	idStr := c.Param("session_id")

	var session models.Session
	if err := sc.DB.First(&session, idStr).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if session.PausedAt == nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("session is not paused"))
		return
	}

	now := time.Now()
	session.PausedSeconds += int64(now.Sub(*session.PausedAt).Seconds())
	session.PausedAt = nil
	session.UpdatedAt = now
	if err := sc.DB.Save(&session).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session resumed", session)
}

// GetEstimate -> estimasi biaya meja berjalan untuk ditampilkan kasir.
// Hasilnya dijamin sama dengan settlement karena lewat fungsi fee yang sama.
func (sc *SessionController) GetEstimate(c *gin.Context) {
	idStr := c.Param("session_id")
	id, _ := strconv.Atoi(idStr)

	fee, elapsed, err := sc.Settlement.EstimateSessionCost(uint(id))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session estimate", gin.H{
		"session_id":      id,
		"elapsed_minutes": elapsed,
		"estimated_fee":   fee,
	})
}

// CloseSession -> tutup sesi dan tagih sekaligus. Aman dipanggil berulang:
// pemanggilan kedua dan seterusnya jadi no-op.
func (sc *SessionController) CloseSession(c *gin.Context) {
	idStr := c.Param("session_id")
	id, _ := strconv.Atoi(idStr)

	var req struct {
		Method   string  `json:"method" binding:"required"` // cash, qris, bank_transfer, tab
		Tendered float64 `json:"tendered"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var staffID *uint
	if v, exists := c.Get("userID"); exists {
		if uid, ok := v.(uint); ok {
			staffID = &uid
		}
	}

	if err := sc.Settlement.CloseSessionAndRecordPayment(uint(id), req.Method, req.Tendered, staffID, nil); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var order models.Order
	if err := sc.DB.Preload("OrderItems").Where("session_id = ?", id).First(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session settled", order)
}
