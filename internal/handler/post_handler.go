package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"satstream/internal/domain"
	"satstream/internal/ledger"
	"satstream/internal/middleware"
	"satstream/internal/models"
	"satstream/internal/repository"
	"satstream/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postRepo *repository.PostRepository
	ledger   *ledger.Service
	media    cloudinary.Client
}

func NewPostHandler(postRepo *repository.PostRepository, ledgerSvc *ledger.Service, media cloudinary.Client) *PostHandler {
	return &PostHandler{postRepo: postRepo, ledger: ledgerSvc, media: media}
}

// Create accepts multipart form data: text plus an optional image or
// video part uploaded to the media store.
func (h *PostHandler) Create(c *gin.Context) {
	u := middleware.GetUser(c)
	text := c.PostForm("text")
	contentType := c.PostForm("content_type")
	if contentType == "" {
		contentType = domain.ContentTypeText
	}

	var contentURL string
	file, header, err := c.Request.FormFile("content")
	if err == nil {
		defer file.Close()
		if h.media == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media uploads not configured"})
			return
		}
		publicID := fmt.Sprintf("post-%d-%s", u.ID, header.Filename)
		switch contentType {
		case domain.ContentTypeVideo:
			contentURL, _, err = h.media.UploadVideo(c.Request.Context(), file, "posts", publicID)
		default:
			contentType = domain.ContentTypeImage
			contentURL, _, err = h.media.UploadImage(c.Request.Context(), file, "posts", publicID)
		}
		if err != nil {
			log.Printf("[Post] media upload: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "media upload failed"})
			return
		}
	}
	if text == "" && contentURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post needs text or media"})
		return
	}

	post := &models.Post{
		AuthorID:    u.ID,
		ContentType: contentType,
		ContentURL:  contentURL,
		Text:        text,
	}
	if err := h.postRepo.Create(post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create post"})
		return
	}
	post.Author = u
	c.JSON(http.StatusCreated, post)
}

// Feed lists recent posts newest-first.
func (h *PostHandler) Feed(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	items, err := h.postRepo.Feed(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch feed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

type ReactRequest struct {
	ReactionType string `json:"reaction_type" binding:"required,oneof=like tip"`
	Amount       int64  `json:"amount"`
	Message      string `json:"message"`
}

// React records a like or a tip on a post. A tip runs through the
// ledger first; only a completed transfer gets the reaction annotation,
// so the reaction log and the transaction log stay consistent.
func (h *PostHandler) React(c *gin.Context) {
	u := middleware.GetUser(c)
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}
	var req ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	post, err := h.postRepo.GetByID(uint(postID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}

	reaction := &models.Reaction{
		PostID:       post.ID,
		UserID:       u.ID,
		ReactionType: req.ReactionType,
	}
	if req.ReactionType == domain.ReactionTip {
		pid := post.ID
		_, err := h.ledger.SendTip(c.Request.Context(), ledger.TipParams{
			SenderID:   u.ID,
			ReceiverID: post.AuthorID,
			Amount:     req.Amount,
			Message:    req.Message,
			PostID:     &pid,
		})
		if err != nil {
			c.JSON(ledgerStatus(err), gin.H{"error": err.Error()})
			return
		}
		reaction.Amount = req.Amount
	}
	if err := h.postRepo.CreateReaction(reaction); err != nil {
		// The tip itself already committed; losing the annotation is log-worthy
		// but must not be reported as a failed transfer.
		log.Printf("[Post] reaction record failed for post %d: %v", post.ID, err)
	}
	c.JSON(http.StatusCreated, reaction)
}

// Reactions lists the engagement log of one post.
func (h *PostHandler) Reactions(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}
	reactions, err := h.postRepo.Reactions(uint(postID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch reactions"})
		return
	}
	c.JSON(http.StatusOK, reactions)
}
