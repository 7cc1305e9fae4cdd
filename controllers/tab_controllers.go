package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danuarta/billiard-pos/models"
	"github.com/danuarta/billiard-pos/services"
	"github.com/danuarta/billiard-pos/utils"
)

type TabController struct {
	DB   *gorm.DB
	Tabs *services.TabService
}

func NewTabController(db *gorm.DB) *TabController {
	return &TabController{
		DB:   db,
		Tabs: services.NewTabService(db),
	}
}

type tabRequest struct {
	AmountCents int64  `json:"amount_cents" binding:"required"`
	// Key dibuat client per attempt; kalau kosong server membuatkan
	// (berarti retry dari caller itu tidak terlindungi, tanggung sendiri).
	IdempotencyKey string `json:"idempotency_key"`
	SessionID      *uint  `json:"session_id"`
}

// ChargeToTab -> tagih ke kasbon customer
func (tc *TabController) ChargeToTab(c *gin.Context) {
	tc.writeEntry(c, models.AREntryCharge)
}

// PayToTab -> catat pembayaran kasbon
func (tc *TabController) PayToTab(c *gin.Context) {
	tc.writeEntry(c, models.AREntryPayment)
}

func (tc *TabController) writeEntry(c *gin.Context, entryType string) {
	customerIDStr := c.Param("customer_id")
	customerID, _ := strconv.Atoi(customerIDStr)

	var req tabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.NewString()
	}

	staffID := uint(0)
	if v, exists := c.Get("userID"); exists {
		if uid, ok := v.(uint); ok {
			staffID = uid
		}
	}

	var result *services.TabResult
	var reason string
	var err error
	if entryType == models.AREntryCharge {
		result, reason, err = tc.Tabs.ChargeToTab(uint(customerID), req.AmountCents, staffID, req.IdempotencyKey, req.SessionID)
	} else {
		result, reason, err = tc.Tabs.MakePaymentToTab(uint(customerID), req.AmountCents, staffID, req.IdempotencyKey, req.SessionID)
	}
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if reason != "" {
		// Penolakan bisnis, bukan error server. Pesannya ditampilkan
		// apa adanya di kasir.
		utils.RespondError(c, http.StatusBadRequest, errors.New(reason))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Tab entry recorded", result)
}

// GetBalance -> sisa hutang customer
func (tc *TabController) GetBalance(c *gin.Context) {
	customerIDStr := c.Param("customer_id")
	customerID, _ := strconv.Atoi(customerIDStr)

	var customer models.Customer
	if err := tc.DB.First(&customer, customerID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	owed, err := services.CustomerOwedCents(tc.DB, uint(customerID))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Customer balance", gin.H{
		"customer_id":        customer.ID,
		"balance_cents":      owed,
		"credit_limit_cents": customer.CreditLimitCents,
	})
}

// GetStatement -> seluruh entry ledger customer, paling lama duluan
func (tc *TabController) GetStatement(c *gin.Context) {
	customerIDStr := c.Param("customer_id")
	customerID, _ := strconv.Atoi(customerIDStr)

	entries, err := tc.Tabs.CustomerStatement(uint(customerID))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Customer statement", entries)
}

// CreateCustomer -> daftarkan customer kasbon baru
func (tc *TabController) CreateCustomer(c *gin.Context) {
	var req struct {
		Name             string `json:"name" binding:"required"`
		Phone            string `json:"phone"`
		CreditLimitCents int64  `json:"credit_limit_cents"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	customer := models.Customer{
		Name:             req.Name,
		Phone:            req.Phone,
		CreditLimitCents: req.CreditLimitCents,
		Status:           "active",
	}
	if err := tc.DB.Create(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Customer created", customer)
}
