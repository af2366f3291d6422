package ledger

import (
	"context"
	"errors"
	"log"

	"satstream/internal/domain"
	"satstream/internal/models"

	"gorm.io/gorm"
)

// TipParams describes an instant peer-to-peer transfer. PostID and
// StreamID only annotate the broadcast event and stream totals; the
// ledger movement is identical either way.
type TipParams struct {
	SenderID   uint
	ReceiverID uint
	Amount     int64
	Message    string
	PostID     *uint
	StreamID   *uint
}

// SendTip atomically debits the sender, credits the receiver, and
// records one completed tip transaction. If any step fails the whole
// transfer rolls back; a partial transfer never persists.
func (s *Service) SendTip(ctx context.Context, p TipParams) (*models.Transaction, error) {
	if p.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if p.SenderID == p.ReceiverID {
		return nil, ErrSelfTip
	}

	var record models.Transaction
	var event TipEvent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sender, receiver models.User
		if err := tx.First(&sender, p.SenderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if err := tx.First(&receiver, p.ReceiverID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipientNotFound
			}
			return err
		}
		if err := s.debit(tx, p.SenderID, p.Amount); err != nil {
			return err
		}
		if err := s.credit(tx, p.ReceiverID, p.Amount); err != nil {
			return err
		}
		record = models.Transaction{
			SenderID:   &p.SenderID,
			ReceiverID: &p.ReceiverID,
			Type:       domain.TxTypeTip,
			Amount:     p.Amount,
			Status:     domain.TxStatusCompleted,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		if p.StreamID != nil {
			if err := tx.Model(&models.LiveStream{}).
				Where("id = ? AND is_active = ?", *p.StreamID, true).
				UpdateColumn("total_tips", gorm.Expr("total_tips + ?", p.Amount)).Error; err != nil {
				return err
			}
		}
		event = TipEvent{
			Amount:       p.Amount,
			FromUsername: sender.Username,
			ToUsername:   receiver.Username,
			Message:      p.Message,
			PostID:       p.PostID,
			StreamID:     p.StreamID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Best-effort fan-out after commit; viewers missing the event does
	// not affect the ledger.
	s.publish(domain.EventTipReceived, event)
	log.Printf("[Ledger] tip: %d sats %s -> %s", p.Amount, event.FromUsername, event.ToUsername)
	return &record, nil
}

// Reward credits a system-originated grant (no in-system sender) and
// records it as a completed reward transaction.
func (s *Service) Reward(ctx context.Context, userID uint, amount int64) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	var record models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.credit(tx, userID, amount); err != nil {
			return err
		}
		record = models.Transaction{
			ReceiverID: &userID,
			Type:       domain.TxTypeReward,
			Amount:     amount,
			Status:     domain.TxStatusCompleted,
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}
