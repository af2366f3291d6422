package handler

import (
	"net/http"
	"strconv"

	"satstream/internal/ledger"
	"satstream/internal/middleware"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	ledger *ledger.Service
}

func NewWalletHandler(ledgerSvc *ledger.Service) *WalletHandler {
	return &WalletHandler{ledger: ledgerSvc}
}

// Balance returns the authoritative ledger balance.
func (h *WalletHandler) Balance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	balance, err := h.ledger.Balance(userID)
	if err != nil {
		c.JSON(ledgerStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// Transactions returns the user's ledger history, newest first.
func (h *WalletHandler) Transactions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	txs, err := h.ledger.TransactionsFor(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch transactions"})
		return
	}
	c.JSON(http.StatusOK, txs)
}

type TipRequest struct {
	ReceiverID uint   `json:"receiver_id" binding:"required"`
	Amount     int64  `json:"amount" binding:"required"`
	Message    string `json:"message"`
	StreamID   *uint  `json:"stream_id"`
}

// Tip applies an instant peer-to-peer transfer.
func (h *WalletHandler) Tip(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req TipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tx, err := h.ledger.SendTip(c.Request.Context(), ledger.TipParams{
		SenderID:   userID,
		ReceiverID: req.ReceiverID,
		Amount:     req.Amount,
		Message:    req.Message,
		StreamID:   req.StreamID,
	})
	if err != nil {
		c.JSON(ledgerStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, tx)
}

type WithdrawRequest struct {
	DestinationAddress string `json:"destination_address" binding:"required"`
	Amount             int64  `json:"amount" binding:"required"`
}

// Withdraw records a pending payout request for admin review. No funds
// move until an admin approves and the payment executor succeeds.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tx, err := h.ledger.RequestWithdrawal(c.Request.Context(), userID, req.DestinationAddress, req.Amount)
	if err != nil {
		c.JSON(ledgerStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, tx)
}
