package handler

import (
	"errors"
	"net/http"
	"strconv"

	"satstream/internal/ledger"
	"satstream/internal/middleware"
	"satstream/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminHandler struct {
	ledger   *ledger.Service
	userRepo *repository.UserRepository
}

func NewAdminHandler(ledgerSvc *ledger.Service, userRepo *repository.UserRepository) *AdminHandler {
	return &AdminHandler{ledger: ledgerSvc, userRepo: userRepo}
}

// ListWithdrawals returns the pending review queue; stale entries need
// reconciliation against the payment executor before resolving.
func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	queue, err := h.ledger.PendingWithdrawals()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch withdrawal requests"})
		return
	}
	c.JSON(http.StatusOK, queue)
}

func (h *AdminHandler) ApproveWithdrawal(c *gin.Context) {
	admin := middleware.GetUser(c)
	txID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}
	tx, err := h.ledger.ApproveWithdrawal(c.Request.Context(), uint(txID), admin.ID)
	if err != nil {
		c.JSON(ledgerStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "withdrawal approved and processed", "transaction": tx})
}

func (h *AdminHandler) DenyWithdrawal(c *gin.Context) {
	admin := middleware.GetUser(c)
	txID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}
	tx, err := h.ledger.DenyWithdrawal(c.Request.Context(), uint(txID), admin.ID)
	if err != nil {
		c.JSON(ledgerStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "withdrawal request denied", "transaction": tx})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	search := c.Query("search")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	users, total, err := h.userRepo.List(search, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users, "total": total, "page": page, "limit": limit})
}

func (h *AdminHandler) BanUser(c *gin.Context) {
	h.setBan(c, true, "user banned")
}

func (h *AdminHandler) UnbanUser(c *gin.Context) {
	h.setBan(c, false, "user unbanned")
}

func (h *AdminHandler) setBan(c *gin.Context, banned bool, message string) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if err := h.userRepo.SetBanned(uint(id), banned); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

type RewardRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

// RewardUser grants a system-originated credit (faucet, promo, refund).
func (h *AdminHandler) RewardUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	var req RewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tx, err := h.ledger.Reward(c.Request.Context(), uint(id), req.Amount)
	if err != nil {
		c.JSON(ledgerStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, tx)
}
