package handler

import (
	"errors"
	"log"
	"net/http"

	"satstream/internal/ledger"
	"satstream/internal/middleware"
	"satstream/internal/models"
	"satstream/internal/service"
	"satstream/pkg/breez"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc    *service.AuthService
	ledger *ledger.Service
	node   *breez.Client
}

func NewAuthHandler(svc *service.AuthService, ledgerSvc *ledger.Service, node *breez.Client) *AuthHandler {
	return &AuthHandler{svc: svc, ledger: ledgerSvc, node: node}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func userPayload(u *models.User) gin.H {
	return gin.H{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
		"balance":  u.Balance,
		"is_admin": u.IsAdmin,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, access, refresh, err := h.svc.Register(req.Email, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) || errors.Is(err, service.ErrUsernameExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[Auth] register: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user":          userPayload(u),
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, access, refresh, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBanned):
			c.JSON(http.StatusForbidden, gin.H{"error": "account is banned"})
		case errors.Is(err, service.ErrInvalidCreds):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
		default:
			log.Printf("[Auth] login: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":          userPayload(u),
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	access, refresh, err := h.svc.Refresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": access, "refresh_token": refresh})
}

// Profile returns the authenticated identity with the ledger balance,
// plus the node balance from the payment executor. The node figure
// informs the UI only; transfers always check the ledger.
func (h *AuthHandler) Profile(c *gin.Context) {
	u := middleware.GetUser(c)
	balance, err := h.ledger.Balance(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch balance"})
		return
	}
	payload := userPayload(u)
	payload["balance"] = balance
	if nodeBalance, err := h.node.NodeBalance(c.Request.Context()); err == nil {
		payload["node_balance"] = nodeBalance
	}
	c.JSON(http.StatusOK, payload)
}
