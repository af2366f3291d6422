package handler

import (
	"errors"
	"net/http"
	"strconv"

	"satstream/internal/middleware"
	"satstream/internal/models"
	"satstream/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type StreamHandler struct {
	streamRepo *repository.StreamRepository
}

func NewStreamHandler(streamRepo *repository.StreamRepository) *StreamHandler {
	return &StreamHandler{streamRepo: streamRepo}
}

type CreateStreamRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
}

func (h *StreamHandler) Create(c *gin.Context) {
	u := middleware.GetUser(c)
	var req CreateStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stream := &models.LiveStream{
		StreamerID:  u.ID,
		Title:       req.Title,
		Description: req.Description,
		IsActive:    true,
	}
	if err := h.streamRepo.Create(stream); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create stream"})
		return
	}
	stream.Streamer = u
	c.JSON(http.StatusCreated, stream)
}

func (h *StreamHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stream id"})
		return
	}
	stream, err := h.streamRepo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "stream not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stream"})
		return
	}
	c.JSON(http.StatusOK, stream)
}

func (h *StreamHandler) ListActive(c *gin.Context) {
	streams, err := h.streamRepo.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch streams"})
		return
	}
	c.JSON(http.StatusOK, streams)
}

func (h *StreamHandler) End(c *gin.Context) {
	u := middleware.GetUser(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stream id"})
		return
	}
	if err := h.streamRepo.End(uint(id), u.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "active stream not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to end stream"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "stream ended"})
}
