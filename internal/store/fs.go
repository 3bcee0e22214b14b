package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/tally-dev/tally/internal/errs"
	"github.com/tally-dev/tally/internal/model"
)

// Collection file names inside the data directory.
const (
	accountsFile     = "accounts.json"
	transactionsFile = "transactions.json"
	recurringFile    = "recurring.json"
	networthFile     = "networth.json"
)

// FS is the file-backed Store. Each collection lives in its own JSON
// container file under dir; a missing file reads as an empty collection,
// so a freshly initialized ledger needs no priming writes.
type FS struct {
	dir string
}

// NewFS returns a file-backed store rooted at dir. The directory is
// created on first write.
func NewFS(dir string) *FS {
	return &FS{dir: dir}
}

// Dir returns the data directory the store writes to.
func (s *FS) Dir() string { return s.dir }

// container is the persisted shape of one collection.
type container[T any] struct {
	Version string `json:"version"`
	Data    []T    `json:"data"`
}

func readCollection[T any](s *FS, file string) ([]T, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, file))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Storage("read "+file, err)
	}
	var c container[T]
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errs.Storage("parse "+file, err)
	}
	if c.Version != ContainerVersion {
		return nil, errs.Storage("parse "+file, fmt.Errorf("unsupported container version %q", c.Version))
	}
	return c.Data, nil
}

func writeCollection[T any](s *FS, file string, items []T) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errs.Storage("create "+s.dir, err)
	}
	c := container[T]{Version: ContainerVersion, Data: items}
	if c.Data == nil {
		c.Data = []T{}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errs.Storage("encode "+file, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(s.dir, file), data, 0o644); err != nil {
		return errs.Storage("write "+file, err)
	}
	return nil
}

func (s *FS) Accounts() ([]model.Account, error) {
	return readCollection[model.Account](s, accountsFile)
}

func (s *FS) Account(id string) (model.Account, error) {
	accounts, err := s.Accounts()
	if err != nil {
		return model.Account{}, err
	}
	if a, ok := findByID(accounts, accountID, id); ok {
		return a, nil
	}
	return model.Account{}, errs.NotFound("account", "id", id)
}

func (s *FS) SaveAccount(a model.Account) error {
	if err := model.ValidateAccount(a); err != nil {
		return err
	}
	accounts, err := s.Accounts()
	if err != nil {
		return err
	}
	return writeCollection(s, accountsFile, upsertByID(accounts, accountID, a))
}

func (s *FS) DeleteAccount(id string) error {
	accounts, err := s.Accounts()
	if err != nil {
		return err
	}
	accounts, ok := removeByID(accounts, accountID, id)
	if !ok {
		return errs.NotFound("account", "id", id)
	}
	return writeCollection(s, accountsFile, accounts)
}

func (s *FS) Transactions() ([]model.Transaction, error) {
	return readCollection[model.Transaction](s, transactionsFile)
}

func (s *FS) Transaction(id string) (model.Transaction, error) {
	txs, err := s.Transactions()
	if err != nil {
		return model.Transaction{}, err
	}
	if t, ok := findByID(txs, transactionID, id); ok {
		return t, nil
	}
	return model.Transaction{}, errs.NotFound("transaction", "id", id)
}

func (s *FS) SaveTransaction(t model.Transaction) error {
	if err := model.ValidateTransaction(t); err != nil {
		return err
	}
	txs, err := s.Transactions()
	if err != nil {
		return err
	}
	return writeCollection(s, transactionsFile, upsertByID(txs, transactionID, t))
}

func (s *FS) DeleteTransaction(id string) error {
	txs, err := s.Transactions()
	if err != nil {
		return err
	}
	txs, ok := removeByID(txs, transactionID, id)
	if !ok {
		return errs.NotFound("transaction", "id", id)
	}
	return writeCollection(s, transactionsFile, txs)
}

func (s *FS) RecurringTransactions() ([]model.RecurringTransaction, error) {
	return readCollection[model.RecurringTransaction](s, recurringFile)
}

func (s *FS) RecurringTransaction(id string) (model.RecurringTransaction, error) {
	recs, err := s.RecurringTransactions()
	if err != nil {
		return model.RecurringTransaction{}, err
	}
	if r, ok := findByID(recs, recurringID, id); ok {
		return r, nil
	}
	return model.RecurringTransaction{}, errs.NotFound("recurring transaction", "id", id)
}

func (s *FS) SaveRecurringTransaction(r model.RecurringTransaction) error {
	if err := model.ValidateRecurring(r); err != nil {
		return err
	}
	recs, err := s.RecurringTransactions()
	if err != nil {
		return err
	}
	return writeCollection(s, recurringFile, upsertByID(recs, recurringID, r))
}

func (s *FS) DeleteRecurringTransaction(id string) error {
	recs, err := s.RecurringTransactions()
	if err != nil {
		return err
	}
	recs, ok := removeByID(recs, recurringID, id)
	if !ok {
		return errs.NotFound("recurring transaction", "id", id)
	}
	return writeCollection(s, recurringFile, recs)
}

func (s *FS) Snapshots() ([]model.NetWorthSnapshot, error) {
	return readCollection[model.NetWorthSnapshot](s, networthFile)
}

func (s *FS) Snapshot(id string) (model.NetWorthSnapshot, error) {
	snaps, err := s.Snapshots()
	if err != nil {
		return model.NetWorthSnapshot{}, err
	}
	if snap, ok := findByID(snaps, snapshotID, id); ok {
		return snap, nil
	}
	return model.NetWorthSnapshot{}, errs.NotFound("net worth snapshot", "id", id)
}

func (s *FS) SaveSnapshot(snap model.NetWorthSnapshot) error {
	if err := model.ValidateSnapshot(snap); err != nil {
		return err
	}
	snaps, err := s.Snapshots()
	if err != nil {
		return err
	}
	return writeCollection(s, networthFile, upsertByID(snaps, snapshotID, snap))
}

func (s *FS) DeleteSnapshot(id string) error {
	snaps, err := s.Snapshots()
	if err != nil {
		return err
	}
	snaps, ok := removeByID(snaps, snapshotID, id)
	if !ok {
		return errs.NotFound("net worth snapshot", "id", id)
	}
	return writeCollection(s, networthFile, snaps)
}

func (s *FS) Export() (*Bundle, error) {
	accounts, err := s.Accounts()
	if err != nil {
		return nil, err
	}
	txs, err := s.Transactions()
	if err != nil {
		return nil, err
	}
	recs, err := s.RecurringTransactions()
	if err != nil {
		return nil, err
	}
	snaps, err := s.Snapshots()
	if err != nil {
		return nil, err
	}
	return &Bundle{
		Version:           BundleVersion,
		ExportedAt:        time.Now().UTC(),
		Accounts:          orEmpty(accounts),
		Transactions:      orEmpty(txs),
		Recurring:         orEmpty(recs),
		NetWorthSnapshots: orEmpty(snaps),
	}, nil
}

// orEmpty keeps empty collections as [] rather than null in bundle JSON.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func (s *FS) Import(b *Bundle) error {
	if err := validateBundle(b); err != nil {
		return err
	}
	if err := writeCollection(s, accountsFile, b.Accounts); err != nil {
		return err
	}
	if err := writeCollection(s, transactionsFile, b.Transactions); err != nil {
		return err
	}
	if err := writeCollection(s, recurringFile, b.Recurring); err != nil {
		return err
	}
	return writeCollection(s, networthFile, b.NetWorthSnapshots)
}

var _ Store = (*FS)(nil)
