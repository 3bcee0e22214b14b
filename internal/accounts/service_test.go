package accounts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/errs"
	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Mem) {
	t.Helper()
	st := store.NewMem()
	return NewService(st, nil), st
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.Create(CreateParams{Name: "  Checking  ", Type: model.AccountTypeAsset, Balance: 50000})
	require.NoError(t, err)

	assert.True(t, id.IsValid(id.KindAccount, a.ID))
	assert.Equal(t, "Checking", a.Name, "surrounding whitespace is trimmed")
	assert.Equal(t, model.AccountTypeAsset, a.Type)
	assert.Equal(t, int64(50000), a.Balance)
	assert.Equal(t, model.AccountStatusActive, a.Status)
	assert.False(t, a.CreatedAt.IsZero())
	assert.Equal(t, a.CreatedAt, a.UpdatedAt)

	got, err := svc.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name     string
		params   CreateParams
		wantCode errs.Code
	}{
		{"empty name", CreateParams{Name: "", Type: model.AccountTypeAsset}, errs.CodeRequiredField},
		{"blank name", CreateParams{Name: "   ", Type: model.AccountTypeAsset}, errs.CodeRequiredField},
		{"long name", CreateParams{Name: strings.Repeat("x", 101), Type: model.AccountTypeAsset}, errs.CodeMaxLength},
		{"bad type", CreateParams{Name: "Equity", Type: "equity"}, errs.CodeInvalidType},
		{"bad parent", CreateParams{Name: "Sub", Type: model.AccountTypeAsset, ParentAccountID: "x"}, errs.CodeInvalidID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(tt.params)
			assert.Equal(t, tt.wantCode, errs.CodeOf(err))
		})
	}
}

func TestCreateDuplicateName(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(CreateParams{Name: "Groceries", Type: model.AccountTypeExpense})
	require.NoError(t, err)

	// Same name and type, case-insensitively: rejected.
	_, err = svc.Create(CreateParams{Name: "groceries", Type: model.AccountTypeExpense})
	assert.Equal(t, errs.CodeDuplicateName, errs.CodeOf(err))

	// Same name under a different type is fine.
	_, err = svc.Create(CreateParams{Name: "Groceries", Type: model.AccountTypeAsset})
	assert.NoError(t, err)
}

func TestUpdate(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.Create(CreateParams{Name: "Checking", Type: model.AccountTypeAsset, Balance: 100})
	require.NoError(t, err)

	name := "Everyday Checking"
	balance := int64(250000)
	got, err := svc.Update(a.ID, UpdateParams{Name: &name, Balance: &balance})
	require.NoError(t, err)

	assert.Equal(t, "Everyday Checking", got.Name)
	assert.Equal(t, int64(250000), got.Balance)
	// Untouched fields survive.
	assert.Equal(t, a.Type, got.Type)
	assert.Equal(t, a.Status, got.Status)
	assert.Equal(t, a.CreatedAt, got.CreatedAt)
}

func TestUpdateRules(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.Create(CreateParams{Name: "Checking", Type: model.AccountTypeAsset})
	require.NoError(t, err)
	_, err = svc.Create(CreateParams{Name: "Savings", Type: model.AccountTypeAsset})
	require.NoError(t, err)

	// Renaming over an existing sibling is rejected.
	name := "savings"
	_, err = svc.Update(a.ID, UpdateParams{Name: &name})
	assert.Equal(t, errs.CodeDuplicateName, errs.CodeOf(err))

	// Renaming to its own name is allowed.
	own := "Checking"
	_, err = svc.Update(a.ID, UpdateParams{Name: &own})
	assert.NoError(t, err)

	bad := model.AccountStatus("closed")
	_, err = svc.Update(a.ID, UpdateParams{Status: &bad})
	assert.Equal(t, errs.CodeInvalidStatus, errs.CodeOf(err))

	_, err = svc.Update("acc_missing", UpdateParams{Name: &name})
	assert.True(t, errs.IsNotFound(err))
}

func TestArchive(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.Create(CreateParams{Name: "Old Card", Type: model.AccountTypeLiability})
	require.NoError(t, err)

	got, err := svc.Archive(a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AccountStatusArchived, got.Status)
}

func TestDelete(t *testing.T) {
	svc, st := newTestService(t)

	a, err := svc.Create(CreateParams{Name: "Old Card", Type: model.AccountTypeLiability})
	require.NoError(t, err)

	// Active accounts cannot be deleted.
	err = svc.Delete(a.ID)
	assert.Equal(t, errs.CodeAccountActive, errs.CodeOf(err))

	_, err = svc.Archive(a.ID)
	require.NoError(t, err)

	// Archived but referenced by a transaction: still protected.
	other, err := svc.Create(CreateParams{Name: "Checking", Type: model.AccountTypeAsset})
	require.NoError(t, err)
	tx := model.Transaction{
		ID:            id.New(id.KindTransaction),
		FromAccountID: other.ID,
		ToAccountID:   a.ID,
		Amount:        1000,
		Description:   "payment",
		Date:          model.Today(),
		CreatedAt:     a.CreatedAt,
	}
	require.NoError(t, st.SaveTransaction(tx))

	err = svc.Delete(a.ID)
	assert.Equal(t, errs.CodeHasTransactions, errs.CodeOf(err))

	// Once the transaction is gone, deletion goes through.
	require.NoError(t, st.DeleteTransaction(tx.ID))
	require.NoError(t, svc.Delete(a.ID))

	_, err = svc.Get(a.ID)
	assert.True(t, errs.IsNotFound(err))
}

func TestList(t *testing.T) {
	svc, _ := newTestService(t)

	checking, err := svc.Create(CreateParams{Name: "Checking", Type: model.AccountTypeAsset})
	require.NoError(t, err)
	_, err = svc.Create(CreateParams{Name: "Rent", Type: model.AccountTypeExpense})
	require.NoError(t, err)
	_, err = svc.Archive(checking.ID)
	require.NoError(t, err)

	all, err := svc.List(ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assets, err := svc.List(ListFilter{Type: model.AccountTypeAsset})
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "Checking", assets[0].Name)

	active, err := svc.List(ListFilter{Status: model.AccountStatusActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Rent", active[0].Name)
}

func TestGetDetail(t *testing.T) {
	svc, st := newTestService(t)

	a, err := svc.Create(CreateParams{Name: "Checking", Type: model.AccountTypeAsset})
	require.NoError(t, err)
	b, err := svc.Create(CreateParams{Name: "Rent", Type: model.AccountTypeExpense})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		tx := model.Transaction{
			ID:            id.New(id.KindTransaction),
			FromAccountID: a.ID,
			ToAccountID:   b.ID,
			Amount:        90000,
			Description:   "rent",
			Date:          model.Today(),
			CreatedAt:     a.CreatedAt,
		}
		require.NoError(t, st.SaveTransaction(tx))
	}

	d, err := svc.GetDetail(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, d.TransactionCount)
}

func TestSeed(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := Seed(svc)
	require.NoError(t, err)
	assert.Len(t, created, len(DefaultAccounts()))

	// Seeding twice trips the duplicate-name rule.
	_, err = Seed(svc)
	assert.Equal(t, errs.CodeDuplicateName, errs.CodeOf(err))

	assets, err := svc.List(ListFilter{Type: model.AccountTypeAsset})
	require.NoError(t, err)
	assert.Len(t, assets, 3)
}
