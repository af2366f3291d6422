package handler

import (
	"errors"
	"net/http"

	"satstream/internal/ledger"
)

// ledgerStatus maps ledger failures onto HTTP statuses. Validation and
// funds problems are the caller's to correct; conflicts mean the
// resolution already happened.
func ledgerStatus(err error) int {
	var payErr *ledger.PaymentError
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrSelfTip),
		errors.Is(err, ledger.ErrInvalidDestination),
		errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrRecipientNotFound),
		errors.Is(err, ledger.ErrUserNotFound),
		errors.Is(err, ledger.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrTransactionNotPending):
		return http.StatusConflict
	case errors.As(err, &payErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
