package models

import (
	"time"
)

// Transaction is the ledger's append-mostly record. Tips and rewards are
// written directly as completed; withdrawals start pending and resolve
// exactly once to completed or denied.
type Transaction struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	SenderID           *uint     `gorm:"index" json:"sender_id"`   // nil for system-originated credits (rewards)
	ReceiverID         *uint     `gorm:"index" json:"receiver_id"` // nil for withdrawals
	Type               string    `gorm:"size:20;not null;index" json:"type"`
	Amount             int64     `gorm:"not null" json:"amount"` // satoshis, always positive
	Status             string    `gorm:"size:20;not null;index" json:"status"`
	DestinationAddress string    `gorm:"size:512" json:"destination_address,omitempty"` // withdrawals only: invoice or on-chain address
	ExternalTxID       string    `gorm:"size:128" json:"external_tx_id,omitempty"`      // set by the payment executor on success
	AdminID            *uint     `json:"admin_id,omitempty"`                            // admin who resolved a withdrawal
	CreatedAt          time.Time `json:"created_at"`

	Sender   *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver *User `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}
