package store

import (
	"slices"
	"time"

	"github.com/tally-dev/tally/internal/errs"
	"github.com/tally-dev/tally/internal/model"
)

// Mem is an in-memory Store with the same contract as FS. It backs unit
// tests and throwaway runs; nothing survives the process.
type Mem struct {
	accounts  []model.Account
	txs       []model.Transaction
	recurring []model.RecurringTransaction
	snapshots []model.NetWorthSnapshot
}

// NewMem returns an empty in-memory store.
func NewMem() *Mem {
	return &Mem{}
}

func (s *Mem) Accounts() ([]model.Account, error) {
	return slices.Clone(s.accounts), nil
}

func (s *Mem) Account(id string) (model.Account, error) {
	if a, ok := findByID(s.accounts, accountID, id); ok {
		return a, nil
	}
	return model.Account{}, errs.NotFound("account", "id", id)
}

func (s *Mem) SaveAccount(a model.Account) error {
	if err := model.ValidateAccount(a); err != nil {
		return err
	}
	s.accounts = upsertByID(s.accounts, accountID, a)
	return nil
}

func (s *Mem) DeleteAccount(id string) error {
	accounts, ok := removeByID(s.accounts, accountID, id)
	if !ok {
		return errs.NotFound("account", "id", id)
	}
	s.accounts = accounts
	return nil
}

func (s *Mem) Transactions() ([]model.Transaction, error) {
	return slices.Clone(s.txs), nil
}

func (s *Mem) Transaction(id string) (model.Transaction, error) {
	if t, ok := findByID(s.txs, transactionID, id); ok {
		return t, nil
	}
	return model.Transaction{}, errs.NotFound("transaction", "id", id)
}

func (s *Mem) SaveTransaction(t model.Transaction) error {
	if err := model.ValidateTransaction(t); err != nil {
		return err
	}
	s.txs = upsertByID(s.txs, transactionID, t)
	return nil
}

func (s *Mem) DeleteTransaction(id string) error {
	txs, ok := removeByID(s.txs, transactionID, id)
	if !ok {
		return errs.NotFound("transaction", "id", id)
	}
	s.txs = txs
	return nil
}

func (s *Mem) RecurringTransactions() ([]model.RecurringTransaction, error) {
	return slices.Clone(s.recurring), nil
}

func (s *Mem) RecurringTransaction(id string) (model.RecurringTransaction, error) {
	if r, ok := findByID(s.recurring, recurringID, id); ok {
		return r, nil
	}
	return model.RecurringTransaction{}, errs.NotFound("recurring transaction", "id", id)
}

func (s *Mem) SaveRecurringTransaction(r model.RecurringTransaction) error {
	if err := model.ValidateRecurring(r); err != nil {
		return err
	}
	s.recurring = upsertByID(s.recurring, recurringID, r)
	return nil
}

func (s *Mem) DeleteRecurringTransaction(id string) error {
	recs, ok := removeByID(s.recurring, recurringID, id)
	if !ok {
		return errs.NotFound("recurring transaction", "id", id)
	}
	s.recurring = recs
	return nil
}

func (s *Mem) Snapshots() ([]model.NetWorthSnapshot, error) {
	return slices.Clone(s.snapshots), nil
}

func (s *Mem) Snapshot(id string) (model.NetWorthSnapshot, error) {
	if snap, ok := findByID(s.snapshots, snapshotID, id); ok {
		return snap, nil
	}
	return model.NetWorthSnapshot{}, errs.NotFound("net worth snapshot", "id", id)
}

func (s *Mem) SaveSnapshot(snap model.NetWorthSnapshot) error {
	if err := model.ValidateSnapshot(snap); err != nil {
		return err
	}
	s.snapshots = upsertByID(s.snapshots, snapshotID, snap)
	return nil
}

func (s *Mem) DeleteSnapshot(id string) error {
	snaps, ok := removeByID(s.snapshots, snapshotID, id)
	if !ok {
		return errs.NotFound("net worth snapshot", "id", id)
	}
	s.snapshots = snaps
	return nil
}

func (s *Mem) Export() (*Bundle, error) {
	return &Bundle{
		Version:           BundleVersion,
		ExportedAt:        time.Now().UTC(),
		Accounts:          orEmpty(slices.Clone(s.accounts)),
		Transactions:      orEmpty(slices.Clone(s.txs)),
		Recurring:         orEmpty(slices.Clone(s.recurring)),
		NetWorthSnapshots: orEmpty(slices.Clone(s.snapshots)),
	}, nil
}

func (s *Mem) Import(b *Bundle) error {
	if err := validateBundle(b); err != nil {
		return err
	}
	s.accounts = slices.Clone(b.Accounts)
	s.txs = slices.Clone(b.Transactions)
	s.recurring = slices.Clone(b.Recurring)
	s.snapshots = slices.Clone(b.NetWorthSnapshots)
	return nil
}

var _ Store = (*Mem)(nil)
