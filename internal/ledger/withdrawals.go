package ledger

import (
	"context"
	"errors"
	"log"
	"time"

	"satstream/internal/domain"
	"satstream/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestWithdrawal records a pending payout request. The balance is NOT
// debited here; the debit happens on approval, after the external
// payment is confirmed, so denied or unresolved requests never strand
// funds.
func (s *Service) RequestWithdrawal(ctx context.Context, userID uint, destination string, amount int64) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !s.executor.ValidateAddress(destination) {
		return nil, ErrInvalidDestination
	}

	var record models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if u.Balance < amount {
			return ErrInsufficientFunds
		}
		record = models.Transaction{
			SenderID:           &userID,
			Type:               domain.TxTypeWithdrawal,
			Amount:             amount,
			Status:             domain.TxStatusPending,
			DestinationAddress: destination,
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[Ledger] withdrawal requested: user %d, %d sats", userID, amount)
	return &record, nil
}

// ApproveWithdrawal resolves a pending withdrawal through the payment
// executor. The transaction row and the sender row are both locked for
// the duration, which gives at-most-once resolution per transaction id
// and keeps the balance stable across the (possibly slow) executor
// call. A crash mid-call rolls back and leaves the row pending for
// reconciliation rather than double-paying.
func (s *Service) ApproveWithdrawal(ctx context.Context, txID, adminID uint) (*models.Transaction, error) {
	var record models.Transaction
	var payErr *PaymentError

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wd, err := s.claimPending(tx, txID)
		if err != nil {
			return err
		}
		if wd.SenderID == nil {
			return ErrTransactionNotFound
		}
		var sender models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sender, *wd.SenderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		// Re-validate against the current balance, not the one captured
		// at request time. Fails and leaves the request pending.
		if sender.Balance < wd.Amount {
			return ErrInsufficientFunds
		}

		var externalID string
		var sendErr error
		if IsLightningInvoice(wd.DestinationAddress) {
			externalID, sendErr = s.executor.SendPayment(ctx, wd.DestinationAddress)
		} else {
			externalID, sendErr = s.executor.SendOnchain(ctx, wd.DestinationAddress, wd.Amount)
		}
		if sendErr != nil {
			// Fail-closed: record the denial, never touch the balance.
			// The denied status must still commit, so the payment error
			// is surfaced outside the closure.
			payErr = &PaymentError{Reason: sendErr.Error()}
			wd.Status = domain.TxStatusDenied
			wd.AdminID = &adminID
			record = *wd
			return tx.Model(wd).Updates(map[string]interface{}{
				"status":   domain.TxStatusDenied,
				"admin_id": adminID,
			}).Error
		}

		wd.Status = domain.TxStatusCompleted
		wd.ExternalTxID = externalID
		wd.AdminID = &adminID
		if err := tx.Model(wd).Updates(map[string]interface{}{
			"status":         domain.TxStatusCompleted,
			"external_tx_id": externalID,
			"admin_id":       adminID,
		}).Error; err != nil {
			return err
		}
		// Debit only after confirmed external payment success.
		if err := s.debit(tx, *wd.SenderID, wd.Amount); err != nil {
			return err
		}
		record = *wd
		return nil
	})
	if err != nil {
		return nil, err
	}
	if payErr != nil {
		log.Printf("[Ledger] withdrawal %d denied (payment failed: %s), admin %d", txID, payErr.Reason, adminID)
		return &record, payErr
	}
	log.Printf("[Ledger] withdrawal %d completed by admin %d, external tx %s", txID, adminID, record.ExternalTxID)
	return &record, nil
}

// DenyWithdrawal resolves a pending withdrawal to denied without
// touching any balance.
func (s *Service) DenyWithdrawal(ctx context.Context, txID, adminID uint) (*models.Transaction, error) {
	var record models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wd, err := s.claimPending(tx, txID)
		if err != nil {
			return err
		}
		wd.Status = domain.TxStatusDenied
		wd.AdminID = &adminID
		record = *wd
		return tx.Model(wd).Updates(map[string]interface{}{
			"status":   domain.TxStatusDenied,
			"admin_id": adminID,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[Ledger] withdrawal %d denied by admin %d", txID, adminID)
	return &record, nil
}

// claimPending locks a withdrawal row and verifies it is still pending.
// Concurrent resolutions serialize on the row lock; the loser observes a
// non-pending status and gets the conflict error.
func (s *Service) claimPending(tx *gorm.DB, txID uint) (*models.Transaction, error) {
	var wd models.Transaction
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&wd, txID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	if wd.Type != domain.TxTypeWithdrawal {
		return nil, ErrTransactionNotFound
	}
	if wd.Status != domain.TxStatusPending {
		return nil, ErrTransactionNotPending
	}
	return &wd, nil
}

// PendingWithdrawal joins a pending request with the requester's public
// identity. Stale marks requests older than the reconciliation
// threshold; those may have crashed mid-approval and need the executor
// queried for the real outcome before resolution.
type PendingWithdrawal struct {
	models.Transaction
	Requester models.PublicIdentity `json:"requester"`
	Stale     bool                  `json:"stale"`
}

// PendingWithdrawals returns the admin review queue, newest first.
func (s *Service) PendingWithdrawals() ([]PendingWithdrawal, error) {
	var txs []models.Transaction
	err := s.db.Preload("Sender").
		Where("type = ? AND status = ?", domain.TxTypeWithdrawal, domain.TxStatusPending).
		Order("created_at DESC").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().Add(-s.staleAfter)
	queue := make([]PendingWithdrawal, 0, len(txs))
	for _, t := range txs {
		pw := PendingWithdrawal{Transaction: t, Stale: t.CreatedAt.Before(cutoff)}
		if t.Sender != nil {
			pw.Requester = t.Sender.Public()
		}
		pw.Sender = nil
		queue = append(queue, pw)
	}
	return queue, nil
}
