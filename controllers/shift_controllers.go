package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danuarta/billiard-pos/services"
	"github.com/danuarta/billiard-pos/utils"
)

type ShiftController struct {
	DB     *gorm.DB
	Shifts *services.ShiftService
}

func NewShiftController(db *gorm.DB) *ShiftController {
	return &ShiftController{
		DB:     db,
		Shifts: services.NewShiftService(db),
	}
}

// StartShift -> buka shift kas baru. Gagal kalau masih ada shift terbuka,
// siapa pun pemiliknya.
func (sc *ShiftController) StartShift(c *gin.Context) {
	var req struct {
		StartingCash float64 `json:"starting_cash"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	staffID := uint(0)
	if v, exists := c.Get("userID"); exists {
		if uid, ok := v.(uint); ok {
			staffID = uid
		}
	}

	shift, reason, err := sc.Shifts.StartShift(req.StartingCash, staffID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if reason != "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New(reason))
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Shift started", shift)
}

// GetCurrentShift -> shift yang sedang terbuka + kas yang diharapkan
func (sc *ShiftController) GetCurrentShift(c *gin.Context) {
	shift, err := sc.Shifts.CurrentShift()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if shift == nil {
		utils.RespondJSON(c, http.StatusOK, "No active shift", nil)
		return
	}

	expected, err := sc.Shifts.ExpectedCash(shift.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Current shift", gin.H{
		"shift":    shift,
		"expected": expected,
	})
}

// GetExpectedCash -> rincian kas yang seharusnya ada di laci
func (sc *ShiftController) GetExpectedCash(c *gin.Context) {
	idStr := c.Param("shift_id")
	id, _ := strconv.Atoi(idStr)

	expected, err := sc.Shifts.ExpectedCash(uint(id))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Expected cash", expected)
}

// EndShift -> tutup shift dengan hasil hitung kas manual. Satu arah.
func (sc *ShiftController) EndShift(c *gin.Context) {
	idStr := c.Param("shift_id")
	id, _ := strconv.Atoi(idStr)

	var req struct {
		ActualCash float64 `json:"actual_cash"`
		Notes      string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	shift, reason, err := sc.Shifts.EndShift(uint(id), req.ActualCash, req.Notes)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if reason != "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New(reason))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Shift ended", shift)
}
