// Package store persists the engine's four entity collections. It is the
// only component that touches durable storage; services hold a Store and
// re-read entities through it before every mutation instead of caching
// them.
//
// Both implementations share one contract: saves validate the entity's
// structural invariants before accepting the write, reads of an unknown
// id return a NotFoundError, and collection reads return fresh slices the
// caller may reorder freely.
package store

import (
	"fmt"
	"time"

	"github.com/tally-dev/tally/internal/errs"
	"github.com/tally-dev/tally/internal/model"
)

// ContainerVersion tags every persisted collection file so a future
// format change can be told apart from corruption.
const ContainerVersion = "1"

// BundleVersion tags the export/import format.
const BundleVersion = "1"

// Store is the persistence contract shared by the file-backed and
// in-memory implementations.
type Store interface {
	Accounts() ([]model.Account, error)
	Account(accountID string) (model.Account, error)
	SaveAccount(a model.Account) error
	DeleteAccount(accountID string) error

	Transactions() ([]model.Transaction, error)
	Transaction(txID string) (model.Transaction, error)
	SaveTransaction(t model.Transaction) error
	DeleteTransaction(txID string) error

	RecurringTransactions() ([]model.RecurringTransaction, error)
	RecurringTransaction(recID string) (model.RecurringTransaction, error)
	SaveRecurringTransaction(r model.RecurringTransaction) error
	DeleteRecurringTransaction(recID string) error

	Snapshots() ([]model.NetWorthSnapshot, error)
	Snapshot(snapID string) (model.NetWorthSnapshot, error)
	SaveSnapshot(s model.NetWorthSnapshot) error
	DeleteSnapshot(snapID string) error

	// Export copies every collection into a Bundle. Import validates the
	// whole bundle first and replaces every collection only if nothing in
	// it is rejected.
	Export() (*Bundle, error)
	Import(b *Bundle) error
}

// Bundle is the export/import unit: all four collections plus the format
// version and the export timestamp.
type Bundle struct {
	Version           string                       `json:"version"`
	ExportedAt        time.Time                    `json:"exportedAt"`
	Accounts          []model.Account              `json:"accounts"`
	Transactions      []model.Transaction          `json:"transactions"`
	Recurring         []model.RecurringTransaction `json:"recurring"`
	NetWorthSnapshots []model.NetWorthSnapshot     `json:"netWorthSnapshots"`
}

func accountID(a model.Account) string                { return a.ID }
func transactionID(t model.Transaction) string        { return t.ID }
func recurringID(r model.RecurringTransaction) string { return r.ID }
func snapshotID(s model.NetWorthSnapshot) string      { return s.ID }

func findByID[T any](items []T, idOf func(T) string, id string) (T, bool) {
	for _, it := range items {
		if idOf(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// upsertByID replaces the item with the same id in place, or appends.
func upsertByID[T any](items []T, idOf func(T) string, item T) []T {
	id := idOf(item)
	for i := range items {
		if idOf(items[i]) == id {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

func removeByID[T any](items []T, idOf func(T) string, id string) ([]T, bool) {
	for i := range items {
		if idOf(items[i]) == id {
			return append(items[:i], items[i+1:]...), true
		}
	}
	return items, false
}

// validateBundle checks the version, every record and per-collection id
// uniqueness. Import writes nothing unless the whole bundle passes.
func validateBundle(b *Bundle) error {
	if b == nil {
		return errs.Required("bundle")
	}
	if b.Version != BundleVersion {
		return errs.Validation("version", errs.CodeInvalidVersion, "unsupported bundle version %q, want %q", b.Version, BundleVersion)
	}
	for i, a := range b.Accounts {
		if err := model.ValidateAccount(a); err != nil {
			return fmt.Errorf("accounts[%d]: %w", i, err)
		}
	}
	for i, t := range b.Transactions {
		if err := model.ValidateTransaction(t); err != nil {
			return fmt.Errorf("transactions[%d]: %w", i, err)
		}
	}
	for i, r := range b.Recurring {
		if err := model.ValidateRecurring(r); err != nil {
			return fmt.Errorf("recurring[%d]: %w", i, err)
		}
	}
	for i, s := range b.NetWorthSnapshots {
		if err := model.ValidateSnapshot(s); err != nil {
			return fmt.Errorf("netWorthSnapshots[%d]: %w", i, err)
		}
	}
	if err := uniqueIDs("accounts", b.Accounts, accountID); err != nil {
		return err
	}
	if err := uniqueIDs("transactions", b.Transactions, transactionID); err != nil {
		return err
	}
	if err := uniqueIDs("recurring", b.Recurring, recurringID); err != nil {
		return err
	}
	return uniqueIDs("netWorthSnapshots", b.NetWorthSnapshots, snapshotID)
}

func uniqueIDs[T any](collection string, items []T, idOf func(T) string) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		id := idOf(it)
		if _, dup := seen[id]; dup {
			return errs.Validation(collection, errs.CodeDuplicateID, "duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
