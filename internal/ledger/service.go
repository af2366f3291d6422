package ledger

import (
	"errors"
	"time"

	"satstream/internal/models"

	"gorm.io/gorm"
)

// Service is the single mutation point for user balances. Every balance
// change it applies is paired 1:1 with a persisted Transaction row, and
// all read-modify-write cycles happen inside database transactions with
// guarded single-statement updates, so concurrent calls for the same
// user serialize instead of racing a stale balance.
type Service struct {
	db          *gorm.DB
	executor    Executor
	broadcaster Broadcaster
	staleAfter  time.Duration
}

func NewService(db *gorm.DB, executor Executor, broadcaster Broadcaster, staleAfter time.Duration) *Service {
	if staleAfter <= 0 {
		staleAfter = 24 * time.Hour
	}
	return &Service{db: db, executor: executor, broadcaster: broadcaster, staleAfter: staleAfter}
}

// Balance re-reads the current balance from storage. Mutation decisions
// never trust a caller-supplied snapshot.
func (s *Service) Balance(userID uint) (int64, error) {
	var u models.User
	if err := s.db.Select("id", "balance").First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return u.Balance, nil
}

// TransactionsFor returns a user's transaction history newest-first with
// sender/receiver identities resolved through explicit per-relation
// lookups.
func (s *Service) TransactionsFor(userID uint, limit int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var txs []models.Transaction
	err := s.db.Preload("Sender").Preload("Receiver").
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}

// debit applies a guarded debit inside tx. The balance check and the
// subtraction are one statement, so a concurrent debit cannot pass the
// check against a stale value.
func (s *Service) debit(tx *gorm.DB, userID uint, amount int64) error {
	res := tx.Model(&models.User{}).
		Where("id = ? AND balance >= ?", userID, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrUserNotFound
		}
		return ErrInsufficientFunds
	}
	return nil
}

// credit adds sats to a user's balance inside tx.
func (s *Service) credit(tx *gorm.DB, userID uint, amount int64) error {
	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecipientNotFound
	}
	return nil
}

func (s *Service) publish(event string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.Publish(event, payload)
	}
}
