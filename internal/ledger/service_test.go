package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/errs"
	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

func seedAccount(t *testing.T, st store.Store, name string, typ model.AccountType, balance int64) model.Account {
	t.Helper()
	now := time.Now().UTC()
	a := model.Account{
		ID:        id.New(id.KindAccount),
		Name:      name,
		Type:      typ,
		Balance:   balance,
		Status:    model.AccountStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.SaveAccount(a))
	return a
}

func params(from, to model.Account, amount int64) RecordParams {
	return RecordParams{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        amount,
		Description:   "test transfer",
		Date:          model.Today(),
	}
}

func balanceOf(t *testing.T, st store.Store, accountID string) int64 {
	t.Helper()
	a, err := st.Account(accountID)
	require.NoError(t, err)
	return a.Balance
}

func TestRecord(t *testing.T) {
	st := store.NewMem()
	svc := NewService(st, nil)
	checking := seedAccount(t, st, "Checking", model.AccountTypeAsset, 50000)
	groceries := seedAccount(t, st, "Groceries", model.AccountTypeExpense, 0)

	p := params(checking, groceries, 7550)
	p.Description = "  weekly shop  "
	p.Category = "food"
	p.Tags = []string{"errand"}
	tx, err := svc.Record(p)
	require.NoError(t, err)

	assert.True(t, id.IsValid(id.KindTransaction, tx.ID))
	assert.Equal(t, "weekly shop", tx.Description)
	assert.Equal(t, int64(7550), tx.Amount)

	assert.Equal(t, int64(42450), balanceOf(t, st, checking.ID))
	assert.Equal(t, int64(7550), balanceOf(t, st, groceries.ID))

	got, err := svc.Get(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)
}

func TestRecordConservesTotal(t *testing.T) {
	st := store.NewMem()
	svc := NewService(st, nil)
	a := seedAccount(t, st, "Checking", model.AccountTypeAsset, 80000)
	b := seedAccount(t, st, "Savings", model.AccountTypeAsset, 20000)

	_, err := svc.Record(params(a, b, 12345))
	require.NoError(t, err)

	total := balanceOf(t, st, a.ID) + balanceOf(t, st, b.ID)
	assert.Equal(t, int64(100000), total)
}

func TestRecordInsufficientBalance(t *testing.T) {
	st := store.NewMem()
	svc := NewService(st, nil)
	checking := seedAccount(t, st, "Checking", model.AccountTypeAsset, 5000)
	rent := seedAccount(t, st, "Rent", model.AccountTypeExpense, 0)

	_, err := svc.Record(params(checking, rent, 5001))
	assert.Equal(t, errs.CodeInsufficientBalance, errs.CodeOf(err))

	// Nothing moved and nothing was stored.
	assert.Equal(t, int64(5000), balanceOf(t, st, checking.ID))
	assert.Equal(t, int64(0), balanceOf(t, st, rent.ID))
	txs, err := st.Transactions()
	require.NoError(t, err)
	assert.Empty(t, txs)

	// Exactly the balance is allowed.
	_, err = svc.Record(params(checking, rent, 5000))
	require.NoError(t, err)
	assert.Equal(t, int64(0), balanceOf(t, st, checking.ID))
}

func TestRecordFromIncomeGoesNegative(t *testing.T) {
	st := store.NewMem()
	svc := NewService(st, nil)
	salary := seedAccount(t, st, "Salary", model.AccountTypeIncome, 0)
	checking := seedAccount(t, st, "Checking", model.AccountTypeAsset, 0)

	_, err := svc.Record(params(salary, checking, 300000))
	require.NoError(t, err)

	// The income balance is a running total of money paid out.
	assert.Equal(t, int64(-300000), balanceOf(t, st, salary.ID))
	assert.Equal(t, int64(300000), balanceOf(t, st, checking.ID))
}

func TestRecordDirectionRules(t *testing.T) {
	st := store.NewMem()
	svc := NewService(st, nil)
	checking := seedAccount(t, st, "Checking", model.AccountTypeAsset, 100000)
	groceries := seedAccount(t, st, "Groceries", model.AccountTypeExpense, 500)
	salary := seedAccount(t, st, "Salary", model.AccountTypeIncome, 0)

	// Expense as source: money would flow out of a sink.
	_, err := svc.Record(params(groceries, checking, 100))
	assert.Equal(t, errs.CodeInvalidDirection, errs.CodeOf(err))

	// Income as destination: money would flow back into a source.
	_, err = svc.Record(params(checking, salary, 100))
	assert.Equal(t, errs.CodeInvalidDirection, errs.CodeOf(err))
}

func TestRecordValidation(t *testing.T) {
	st := store.NewMem()
	svc := NewService(st, nil)
	a := seedAccount(t, st, "Checking", model.AccountTypeAsset, 100000)
	b := seedAccount(t, st, "Savings", model.AccountTypeAsset, 0)

	tests := []struct {
		name     string
		mutate   func(*RecordParams)
		wantCode errs.Code
	}{
		{"missing from", func(p *RecordParams) { p.FromAccountID = "" }, errs.CodeRequiredField},
		{"malformed from", func(p *RecordParams) { p.FromAccountID = "checking" }, errs.CodeInvalidID},
		{"same account", func(p *RecordParams) { p.ToAccountID = p.FromAccountID }, errs.CodeSameAccount},
		{"zero amount", func(p *RecordParams) { p.Amount = 0 }, errs.CodeInvalidAmount},
		{"negative amount", func(p *RecordParams) { p.Amount = -100 }, errs.CodeInvalidAmount},
		{"empty description", func(p *RecordParams) { p.Description = "  " }, errs.CodeRequiredField},
		{"zero date", func(p *RecordParams) { p.Date = model.Date{} }, errs.CodeInvalidDate},
		{"future date", func(p *RecordParams) { p.Date = model.Today().AddDays(1) }, errs.CodeFutureDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := params(a, b, 100)
			tt.mutate(&p)
			_, err := svc.Record(p)
			assert.Equal(t, tt.wantCode, errs.CodeOf(err))
		})
	}

	// Today's date is not "future".
	p := params(a, b, 100)
	p.Date = model.Today()
	_, err := svc.Record(p)
	assert.NoError(t, err)
}

func TestRecordUnknownAccountNamesField(t *testing.T) {
	st := store.NewMem()
	svc := NewService(st, nil)
	a := seedAccount(t, st, "Checking", model.AccountTypeAsset, 1000)

	p := params(a, a, 100)
	p.ToAccountID = id.New(id.KindAccount)
	_, err := svc.Record(p)

	var nf *errs.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "toAccountId", nf.Field)
}

func TestDeleteReversesBalances(t *testing.T) {
	st := store.NewMem()
	svc := NewService(st, nil)
	checking := seedAccount(t, st, "Checking", model.AccountTypeAsset, 50000)
	groceries := seedAccount(t, st, "Groceries", model.AccountTypeExpense, 0)

	tx, err := svc.Record(params(checking, groceries, 7550))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(tx.ID))

	// Record-then-delete restores the world exactly.
	assert.Equal(t, int64(50000), balanceOf(t, st, checking.ID))
	assert.Equal(t, int64(0), balanceOf(t, st, groceries.ID))
	_, err = svc.Get(tx.ID)
	assert.True(t, errs.IsNotFound(err))
}

func TestDeleteWithMissingSide(t *testing.T) {
	st := store.NewMem()
	svc := NewService(st, nil)
	checking := seedAccount(t, st, "Checking", model.AccountTypeAsset, 50000)
	groceries := seedAccount(t, st, "Groceries", model.AccountTypeExpense, 0)

	tx, err := svc.Record(params(checking, groceries, 7550))
	require.NoError(t, err)

	// The expense account disappears out from under the ledger.
	require.NoError(t, st.DeleteAccount(groceries.ID))
	require.NoError(t, svc.Delete(tx.ID))

	// The surviving side is still reversed.
	assert.Equal(t, int64(50000), balanceOf(t, st, checking.ID))
}

func TestDeleteUnknown(t *testing.T) {
	svc := NewService(store.NewMem(), nil)
	assert.True(t, errs.IsNotFound(svc.Delete("txn_missing")))
}

func TestListSortedByDate(t *testing.T) {
	st := store.NewMem()
	svc := NewService(st, nil)
	a := seedAccount(t, st, "Checking", model.AccountTypeAsset, 100000)
	b := seedAccount(t, st, "Groceries", model.AccountTypeExpense, 0)
	c := seedAccount(t, st, "Rent", model.AccountTypeExpense, 0)

	dates := []model.Date{
		model.Today(),
		model.Today().AddDays(-10),
		model.Today().AddDays(-3),
	}
	for i, d := range dates {
		p := params(a, b, int64(100*(i+1)))
		p.Date = d
		_, err := svc.Record(p)
		require.NoError(t, err)
	}

	txs, err := svc.List()
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, int64(200), txs[0].Amount)
	assert.Equal(t, int64(300), txs[1].Amount)
	assert.Equal(t, int64(100), txs[2].Amount)

	// Same-date records keep insertion order.
	p := params(a, c, 999)
	p.Date = model.Today().AddDays(-10)
	_, err = svc.Record(p)
	require.NoError(t, err)

	txs, err = svc.List()
	require.NoError(t, err)
	require.Len(t, txs, 4)
	assert.Equal(t, int64(200), txs[0].Amount)
	assert.Equal(t, int64(999), txs[1].Amount)

	byAccount, err := svc.ListByAccount(c.ID)
	require.NoError(t, err)
	require.Len(t, byAccount, 1)
	assert.Equal(t, int64(999), byAccount[0].Amount)
}

// flakyStore wraps a Store and fails chosen writes so the compensation
// paths can be watched.
type flakyStore struct {
	store.Store
	failAccountID string
	failTxSave    bool
}

func (f *flakyStore) SaveAccount(a model.Account) error {
	if a.ID == f.failAccountID {
		return errs.Storage("write accounts.json", errors.New("disk full"))
	}
	return f.Store.SaveAccount(a)
}

func (f *flakyStore) SaveTransaction(tx model.Transaction) error {
	if f.failTxSave {
		return errs.Storage("write transactions.json", errors.New("disk full"))
	}
	return f.Store.SaveTransaction(tx)
}

func TestRecordCompensatesFailedCredit(t *testing.T) {
	mem := store.NewMem()
	checking := seedAccount(t, mem, "Checking", model.AccountTypeAsset, 50000)
	savings := seedAccount(t, mem, "Savings", model.AccountTypeAsset, 10000)

	flaky := &flakyStore{Store: mem, failAccountID: savings.ID}
	svc := NewService(flaky, nil)

	_, err := svc.Record(params(checking, savings, 5000))
	assert.Equal(t, errs.CodeStorage, errs.CodeOf(err))

	// The debit was rolled back; nothing else was written.
	assert.Equal(t, int64(50000), balanceOf(t, mem, checking.ID))
	assert.Equal(t, int64(10000), balanceOf(t, mem, savings.ID))
	txs, err := mem.Transactions()
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestRecordCompensatesFailedTransactionWrite(t *testing.T) {
	mem := store.NewMem()
	checking := seedAccount(t, mem, "Checking", model.AccountTypeAsset, 50000)
	savings := seedAccount(t, mem, "Savings", model.AccountTypeAsset, 10000)

	flaky := &flakyStore{Store: mem, failTxSave: true}
	svc := NewService(flaky, nil)

	_, err := svc.Record(params(checking, savings, 5000))
	assert.Equal(t, errs.CodeStorage, errs.CodeOf(err))

	// Both account writes were rolled back.
	assert.Equal(t, int64(50000), balanceOf(t, mem, checking.ID))
	assert.Equal(t, int64(10000), balanceOf(t, mem, savings.ID))
	txs, err := mem.Transactions()
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestDeleteAbortsOnStorageError(t *testing.T) {
	mem := store.NewMem()
	checking := seedAccount(t, mem, "Checking", model.AccountTypeAsset, 50000)
	savings := seedAccount(t, mem, "Savings", model.AccountTypeAsset, 0)

	tx, err := NewService(mem, nil).Record(params(checking, savings, 5000))
	require.NoError(t, err)

	// The second reversal write fails: the transaction must survive.
	flaky := &flakyStore{Store: mem, failAccountID: savings.ID}
	err = NewService(flaky, nil).Delete(tx.ID)
	assert.Equal(t, errs.CodeStorage, errs.CodeOf(err))

	_, err = mem.Transaction(tx.ID)
	assert.NoError(t, err, "transaction is still present after the aborted delete")
}
