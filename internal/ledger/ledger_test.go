package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"satstream/internal/database"
	"satstream/internal/domain"
	"satstream/internal/ledger"
	"satstream/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The ledger suite runs against a real MySQL instance because the
// atomicity guarantees under test live in the database transactions.
// Set SATSTREAM_TEST_DSN to run it, e.g.
// root:root@tcp(localhost:3306)/satstream_test?charset=utf8mb4&parseTime=True&loc=Local
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("SATSTREAM_TEST_DSN")
	if dsn == "" {
		t.Skip("SATSTREAM_TEST_DSN is not set")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	for _, table := range []string{"transactions", "reactions", "posts", "live_streams", "users"} {
		require.NoError(t, db.Exec("DELETE FROM "+table).Error)
	}
	return db
}

type fakeExecutor struct {
	mu        sync.Mutex
	failSend  bool
	rejectAll bool
	invoices  []string
	onchain   []string
}

func (f *fakeExecutor) ValidateAddress(address string) bool {
	if f.rejectAll {
		return false
	}
	return ledger.IsLightningInvoice(address) ||
		len(address) > 0 && (address[0] == '1' || address[0] == '3' || (len(address) > 2 && address[:3] == "bc1"))
}

func (f *fakeExecutor) SendPayment(ctx context.Context, invoice string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return "", errors.New("no route to destination")
	}
	f.invoices = append(f.invoices, invoice)
	return fmt.Sprintf("ln_test_%d", len(f.invoices)), nil
}

func (f *fakeExecutor) SendOnchain(ctx context.Context, address string, amountSats int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return "", errors.New("broadcast failed")
	}
	f.onchain = append(f.onchain, fmt.Sprintf("%s:%d", address, amountSats))
	return fmt.Sprintf("onchain_test_%d", len(f.onchain)), nil
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []string
	tips   []ledger.TipEvent
}

func (f *fakeBroadcaster) Publish(event string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	if tip, ok := payload.(ledger.TipEvent); ok {
		f.tips = append(f.tips, tip)
	}
}

func createUser(t *testing.T, db *gorm.DB, username string, balance int64) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		WalletID: username + "-wallet",
		Balance:  balance,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func balanceOf(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var u models.User
	require.NoError(t, db.First(&u, userID).Error)
	return u.Balance
}

const testInvoice = "lnbc500u1pjtestinvoice"
const testOnchainAddr = "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"

func newService(db *gorm.DB, exec ledger.Executor, bc ledger.Broadcaster) *ledger.Service {
	return ledger.NewService(db, exec, bc, 24*time.Hour)
}

func TestSendTipMovesExactAmount(t *testing.T) {
	db := setupDB(t)
	svc := newService(db, &fakeExecutor{}, nil)
	u1 := createUser(t, db, "alice", 1000)
	u2 := createUser(t, db, "bob", 0)

	tx, err := svc.SendTip(context.Background(), ledger.TipParams{
		SenderID: u1.ID, ReceiverID: u2.ID, Amount: 300,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(700), balanceOf(t, db, u1.ID))
	assert.Equal(t, int64(300), balanceOf(t, db, u2.ID))
	assert.Equal(t, domain.TxTypeTip, tx.Type)
	assert.Equal(t, domain.TxStatusCompleted, tx.Status)
	assert.Equal(t, u1.ID, *tx.SenderID)
	assert.Equal(t, u2.ID, *tx.ReceiverID)

	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSendTipValidation(t *testing.T) {
	db := setupDB(t)
	svc := newService(db, &fakeExecutor{}, nil)
	u1 := createUser(t, db, "alice", 1000)
	u2 := createUser(t, db, "bob", 50)

	_, err := svc.SendTip(context.Background(), ledger.TipParams{SenderID: u1.ID, ReceiverID: u2.ID, Amount: 0})
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, err = svc.SendTip(context.Background(), ledger.TipParams{SenderID: u1.ID, ReceiverID: u2.ID, Amount: -5})
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, err = svc.SendTip(context.Background(), ledger.TipParams{SenderID: u1.ID, ReceiverID: u1.ID, Amount: 10})
	assert.ErrorIs(t, err, ledger.ErrSelfTip)

	_, err = svc.SendTip(context.Background(), ledger.TipParams{SenderID: u1.ID, ReceiverID: 999999, Amount: 10})
	assert.ErrorIs(t, err, ledger.ErrRecipientNotFound)

	_, err = svc.SendTip(context.Background(), ledger.TipParams{SenderID: u2.ID, ReceiverID: u1.ID, Amount: 100})
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	// Nothing moved, nothing recorded.
	assert.Equal(t, int64(1000), balanceOf(t, db, u1.ID))
	assert.Equal(t, int64(50), balanceOf(t, db, u2.ID))
	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestTipsConserveTotalBalance(t *testing.T) {
	db := setupDB(t)
	svc := newService(db, &fakeExecutor{}, nil)
	u1 := createUser(t, db, "alice", 1000)
	u2 := createUser(t, db, "bob", 500)
	u3 := createUser(t, db, "carol", 250)

	transfers := []struct {
		from, to uint
		amount   int64
	}{
		{u1.ID, u2.ID, 100},
		{u2.ID, u3.ID, 450},
		{u3.ID, u1.ID, 700},
		{u1.ID, u3.ID, 1},
	}
	for _, tr := range transfers {
		_, err := svc.SendTip(context.Background(), ledger.TipParams{SenderID: tr.from, ReceiverID: tr.to, Amount: tr.amount})
		require.NoError(t, err)
	}

	total := balanceOf(t, db, u1.ID) + balanceOf(t, db, u2.ID) + balanceOf(t, db, u3.ID)
	assert.Equal(t, int64(1750), total)
}

func TestConcurrentTipsNeverOverdraw(t *testing.T) {
	db := setupDB(t)
	svc := newService(db, &fakeExecutor{}, nil)
	u1 := createUser(t, db, "alice", 100)
	u2 := createUser(t, db, "bob", 0)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SendTip(context.Background(), ledger.TipParams{SenderID: u1.ID, ReceiverID: u2.ID, Amount: 80})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, insufficient int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ledger.ErrInsufficientFunds):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok, "exactly one tip must win")
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, int64(20), balanceOf(t, db, u1.ID))
	assert.Equal(t, int64(80), balanceOf(t, db, u2.ID))
}

func TestSendTipPublishesEvent(t *testing.T) {
	db := setupDB(t)
	bc := &fakeBroadcaster{}
	svc := newService(db, &fakeExecutor{}, bc)
	u1 := createUser(t, db, "alice", 1000)
	u2 := createUser(t, db, "bob", 0)

	_, err := svc.SendTip(context.Background(), ledger.TipParams{
		SenderID: u1.ID, ReceiverID: u2.ID, Amount: 25, Message: "great post",
	})
	require.NoError(t, err)

	require.Len(t, bc.tips, 1)
	assert.Equal(t, domain.EventTipReceived, bc.events[0])
	assert.Equal(t, int64(25), bc.tips[0].Amount)
	assert.Equal(t, "alice", bc.tips[0].FromUsername)
	assert.Equal(t, "bob", bc.tips[0].ToUsername)
	assert.Equal(t, "great post", bc.tips[0].Message)
}

func TestRewardIsSystemOriginated(t *testing.T) {
	db := setupDB(t)
	svc := newService(db, &fakeExecutor{}, nil)
	u := createUser(t, db, "alice", 10)

	tx, err := svc.Reward(context.Background(), u.ID, 500)
	require.NoError(t, err)
	assert.Nil(t, tx.SenderID)
	assert.Equal(t, u.ID, *tx.ReceiverID)
	assert.Equal(t, domain.TxTypeReward, tx.Type)
	assert.Equal(t, domain.TxStatusCompleted, tx.Status)
	assert.Equal(t, int64(510), balanceOf(t, db, u.ID))
}

func TestRequestWithdrawalDoesNotDebit(t *testing.T) {
	db := setupDB(t)
	svc := newService(db, &fakeExecutor{}, nil)
	u := createUser(t, db, "alice", 1000)

	tx, err := svc.RequestWithdrawal(context.Background(), u.ID, testInvoice, 500)
	require.NoError(t, err)
	assert.Equal(t, domain.TxStatusPending, tx.Status)
	assert.Equal(t, domain.TxTypeWithdrawal, tx.Type)
	assert.Equal(t, testInvoice, tx.DestinationAddress)
	assert.Nil(t, tx.ReceiverID)
	assert.Equal(t, int64(1000), balanceOf(t, db, u.ID), "request must not touch the balance")
}

func TestRequestWithdrawalRejectsOverdraw(t *testing.T) {
	db := setupDB(t)
	svc := newService(db, &fakeExecutor{}, nil)
	u := createUser(t, db, "alice", 1000)

	_, err := svc.RequestWithdrawal(context.Background(), u.ID, testInvoice, 1200)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	assert.Equal(t, int64(1000), balanceOf(t, db, u.ID))

	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	assert.Equal(t, int64(0), count, "rejected request must leave no record")
}

func TestRequestWithdrawalRejectsBadDestination(t *testing.T) {
	db := setupDB(t)
	svc := newService(db, &fakeExecutor{}, nil)
	u := createUser(t, db, "alice", 1000)

	_, err := svc.RequestWithdrawal(context.Background(), u.ID, "not-an-address", 100)
	assert.ErrorIs(t, err, ledger.ErrInvalidDestination)

	_, err = svc.RequestWithdrawal(context.Background(), u.ID, testInvoice, 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

func TestApproveWithdrawalLightning(t *testing.T) {
	db := setupDB(t)
	exec := &fakeExecutor{}
	svc := newService(db, exec, nil)
	u := createUser(t, db, "alice", 1000)
	admin := createUser(t, db, "admin", 0)

	req, err := svc.RequestWithdrawal(context.Background(), u.ID, testInvoice, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), balanceOf(t, db, u.ID))

	resolved, err := svc.ApproveWithdrawal(context.Background(), req.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TxStatusCompleted, resolved.Status)
	assert.Equal(t, "ln_test_1", resolved.ExternalTxID)
	assert.Equal(t, admin.ID, *resolved.AdminID)
	assert.Equal(t, int64(500), balanceOf(t, db, u.ID), "debit happens only after executor success")
	assert.Equal(t, []string{testInvoice}, exec.invoices)
	assert.Empty(t, exec.onchain)
}

func TestApproveWithdrawalOnchain(t *testing.T) {
	db := setupDB(t)
	exec := &fakeExecutor{}
	svc := newService(db, exec, nil)
	u := createUser(t, db, "alice", 1000)
	admin := createUser(t, db, "admin", 0)

	req, err := svc.RequestWithdrawal(context.Background(), u.ID, testOnchainAddr, 250)
	require.NoError(t, err)

	resolved, err := svc.ApproveWithdrawal(context.Background(), req.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "onchain_test_1", resolved.ExternalTxID)
	assert.Equal(t, int64(750), balanceOf(t, db, u.ID))
	assert.Equal(t, []string{fmt.Sprintf("%s:%d", testOnchainAddr, 250)}, exec.onchain)
	assert.Empty(t, exec.invoices)
}

func TestApproveWithdrawalPaymentFailureIsFailClosed(t *testing.T) {
	db := setupDB(t)
	exec := &fakeExecutor{failSend: true}
	svc := newService(db, exec, nil)
	u := createUser(t, db, "alice", 1000)
	admin := createUser(t, db, "admin", 0)

	req, err := svc.RequestWithdrawal(context.Background(), u.ID, testInvoice, 500)
	require.NoError(t, err)

	_, err = svc.ApproveWithdrawal(context.Background(), req.ID, admin.ID)
	var payErr *ledger.PaymentError
	require.ErrorAs(t, err, &payErr)
	assert.Contains(t, payErr.Reason, "no route")

	var stored models.Transaction
	require.NoError(t, db.First(&stored, req.ID).Error)
	assert.Equal(t, domain.TxStatusDenied, stored.Status)
	assert.Equal(t, admin.ID, *stored.AdminID)
	assert.Empty(t, stored.ExternalTxID)
	assert.Equal(t, int64(1000), balanceOf(t, db, u.ID), "failed payment must never debit")
}

func TestApproveRevalidatesBalanceAtApprovalTime(t *testing.T) {
	db := setupDB(t)
	exec := &fakeExecutor{}
	svc := newService(db, exec, nil)
	u := createUser(t, db, "alice", 1000)
	other := createUser(t, db, "bob", 0)
	admin := createUser(t, db, "admin", 0)

	req, err := svc.RequestWithdrawal(context.Background(), u.ID, testInvoice, 500)
	require.NoError(t, err)

	// Balance drops between request and approval.
	_, err = svc.SendTip(context.Background(), ledger.TipParams{SenderID: u.ID, ReceiverID: other.ID, Amount: 800})
	require.NoError(t, err)

	_, err = svc.ApproveWithdrawal(context.Background(), req.ID, admin.ID)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	assert.Empty(t, exec.invoices, "executor must not be invoked when funds are gone")

	var stored models.Transaction
	require.NoError(t, db.First(&stored, req.ID).Error)
	assert.Equal(t, domain.TxStatusPending, stored.Status, "request stays pending for manual resolution")
	assert.Equal(t, int64(200), balanceOf(t, db, u.ID))
}

func TestResolutionIsAtMostOnce(t *testing.T) {
	db := setupDB(t)
	exec := &fakeExecutor{}
	svc := newService(db, exec, nil)
	u := createUser(t, db, "alice", 1000)
	admin := createUser(t, db, "admin", 0)

	req, err := svc.RequestWithdrawal(context.Background(), u.ID, testInvoice, 500)
	require.NoError(t, err)

	_, err = svc.ApproveWithdrawal(context.Background(), req.ID, admin.ID)
	require.NoError(t, err)

	_, err = svc.ApproveWithdrawal(context.Background(), req.ID, admin.ID)
	assert.ErrorIs(t, err, ledger.ErrTransactionNotPending)
	_, err = svc.DenyWithdrawal(context.Background(), req.ID, admin.ID)
	assert.ErrorIs(t, err, ledger.ErrTransactionNotPending)

	// No double debit, no extra executor call.
	assert.Equal(t, int64(500), balanceOf(t, db, u.ID))
	assert.Len(t, exec.invoices, 1)
}

func TestDenyWithdrawal(t *testing.T) {
	db := setupDB(t)
	svc := newService(db, &fakeExecutor{}, nil)
	u := createUser(t, db, "alice", 1000)
	admin := createUser(t, db, "admin", 0)

	req, err := svc.RequestWithdrawal(context.Background(), u.ID, testOnchainAddr, 400)
	require.NoError(t, err)

	resolved, err := svc.DenyWithdrawal(context.Background(), req.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TxStatusDenied, resolved.Status)
	assert.Equal(t, admin.ID, *resolved.AdminID)
	assert.Equal(t, int64(1000), balanceOf(t, db, u.ID))

	_, err = svc.DenyWithdrawal(context.Background(), req.ID, admin.ID)
	assert.ErrorIs(t, err, ledger.ErrTransactionNotPending)
}

func TestResolveMissingOrNonWithdrawal(t *testing.T) {
	db := setupDB(t)
	svc := newService(db, &fakeExecutor{}, nil)
	u1 := createUser(t, db, "alice", 1000)
	u2 := createUser(t, db, "bob", 0)
	admin := createUser(t, db, "admin", 0)

	_, err := svc.ApproveWithdrawal(context.Background(), 424242, admin.ID)
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)

	// A tip transaction is not resolvable as a withdrawal.
	tip, err := svc.SendTip(context.Background(), ledger.TipParams{SenderID: u1.ID, ReceiverID: u2.ID, Amount: 10})
	require.NoError(t, err)
	_, err = svc.ApproveWithdrawal(context.Background(), tip.ID, admin.ID)
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)
}

func TestPendingWithdrawalsQueue(t *testing.T) {
	db := setupDB(t)
	svc := newService(db, &fakeExecutor{}, nil)
	u1 := createUser(t, db, "alice", 1000)
	u2 := createUser(t, db, "bob", 2000)
	admin := createUser(t, db, "admin", 0)

	first, err := svc.RequestWithdrawal(context.Background(), u1.ID, testInvoice, 100)
	require.NoError(t, err)
	second, err := svc.RequestWithdrawal(context.Background(), u2.ID, testOnchainAddr, 200)
	require.NoError(t, err)
	resolvedOut, err := svc.RequestWithdrawal(context.Background(), u2.ID, testOnchainAddr, 300)
	require.NoError(t, err)
	_, err = svc.DenyWithdrawal(context.Background(), resolvedOut.ID, admin.ID)
	require.NoError(t, err)

	// Age the first request past the reconciliation threshold.
	require.NoError(t, db.Model(&models.Transaction{}).
		Where("id = ?", first.ID).
		UpdateColumn("created_at", time.Now().Add(-48*time.Hour)).Error)

	queue, err := svc.PendingWithdrawals()
	require.NoError(t, err)
	require.Len(t, queue, 2, "resolved requests stay out of the queue")

	assert.Equal(t, second.ID, queue[0].ID, "newest first")
	assert.Equal(t, "bob", queue[0].Requester.Username)
	assert.False(t, queue[0].Stale)

	assert.Equal(t, first.ID, queue[1].ID)
	assert.Equal(t, "alice", queue[1].Requester.Username)
	assert.True(t, queue[1].Stale, "old pending request flagged for reconciliation")
}
