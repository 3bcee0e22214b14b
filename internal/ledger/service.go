// Package ledger validates and applies transfers between accounts. It is
// the only component that moves balances: a recorded transfer debits the
// source and credits the destination in one logical step, and deleting a
// transfer reverses it. The store has no transactions, so multi-write
// steps use compensating writes: apply in order, roll back in reverse
// order on failure.
package ledger

import (
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/tally-dev/tally/internal/errs"
	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

// Service records and deletes transfers on top of a Store.
type Service struct {
	store store.Store
	log   *zap.Logger
}

// NewService creates a Service. A nil logger disables logging.
func NewService(st store.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, log: log}
}

// RecordParams describes a transfer to apply. Amount is in minor units.
type RecordParams struct {
	FromAccountID string
	ToAccountID   string
	Amount        int64
	Description   string
	Date          model.Date
	Category      string
	Tags          []string
}

// Record validates a transfer and applies it: debit the source, credit
// the destination, persist the transaction. Each step that fails re-saves
// the accounts already written with their original values, so a storage
// failure never leaves a half-applied transfer (short of a crash between
// the writes themselves).
//
// Two rules gate every transfer beyond structural validation: an expense
// account can never be the source and an income account can never be the
// destination; and the source must hold at least the amount unless it is
// an income account, which is allowed to run arbitrarily negative.
func (s *Service) Record(p RecordParams) (model.Transaction, error) {
	if err := validateRecord(p); err != nil {
		return model.Transaction{}, err
	}

	from, err := s.store.Account(p.FromAccountID)
	if err != nil {
		return model.Transaction{}, lookupField(err, "fromAccountId")
	}
	to, err := s.store.Account(p.ToAccountID)
	if err != nil {
		return model.Transaction{}, lookupField(err, "toAccountId")
	}

	if from.Type == model.AccountTypeExpense {
		return model.Transaction{}, errs.Rule(errs.CodeInvalidDirection,
			"expense account %q cannot be the source of a transfer", from.Name)
	}
	if to.Type == model.AccountTypeIncome {
		return model.Transaction{}, errs.Rule(errs.CodeInvalidDirection,
			"income account %q cannot be the destination of a transfer", to.Name)
	}
	if from.Type != model.AccountTypeIncome && from.Balance < p.Amount {
		return model.Transaction{}, errs.Rule(errs.CodeInsufficientBalance,
			"account %q holds %d, cannot transfer %d", from.Name, from.Balance, p.Amount)
	}

	now := time.Now().UTC()

	debited := from
	debited.Balance -= p.Amount
	debited.UpdatedAt = now
	if err := s.store.SaveAccount(debited); err != nil {
		return model.Transaction{}, err
	}

	credited := to
	credited.Balance += p.Amount
	credited.UpdatedAt = now
	if err := s.store.SaveAccount(credited); err != nil {
		s.compensate(from)
		return model.Transaction{}, err
	}

	tx := model.Transaction{
		ID:            id.New(id.KindTransaction),
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        p.Amount,
		Description:   strings.TrimSpace(p.Description),
		Date:          p.Date,
		Category:      strings.TrimSpace(p.Category),
		Tags:          p.Tags,
		CreatedAt:     now,
	}
	if err := s.store.SaveTransaction(tx); err != nil {
		s.compensate(to)
		s.compensate(from)
		return model.Transaction{}, err
	}

	s.log.Info("transaction recorded",
		zap.String("id", tx.ID),
		zap.String("from", from.ID),
		zap.String("to", to.ID),
		zap.Int64("amount", tx.Amount),
		zap.String("date", tx.Date.String()))
	return tx, nil
}

// compensate restores an account to its pre-transfer state after a later
// step failed. Its own failure must not mask the primary error, so it is
// only logged; this is the inconsistency window the storage model accepts.
func (s *Service) compensate(original model.Account) {
	if err := s.store.SaveAccount(original); err != nil {
		s.log.Error("compensating write failed",
			zap.String("account", original.ID),
			zap.Error(err))
	}
}

// Delete removes a transaction and reverses its balance effect on each
// side whose account still exists. A side whose account was deleted is
// skipped; with both sides present this restores the exact pre-transfer
// balances. Any storage failure aborts before the transaction is removed.
func (s *Service) Delete(txID string) error {
	tx, err := s.store.Transaction(txID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	from, err := s.store.Account(tx.FromAccountID)
	switch {
	case err == nil:
		from.Balance += tx.Amount
		from.UpdatedAt = now
		if err := s.store.SaveAccount(from); err != nil {
			return err
		}
	case !errs.IsNotFound(err):
		return err
	}

	to, err := s.store.Account(tx.ToAccountID)
	switch {
	case err == nil:
		to.Balance -= tx.Amount
		to.UpdatedAt = now
		if err := s.store.SaveAccount(to); err != nil {
			return err
		}
	case !errs.IsNotFound(err):
		return err
	}

	if err := s.store.DeleteTransaction(txID); err != nil {
		return err
	}
	s.log.Info("transaction deleted",
		zap.String("id", txID),
		zap.Int64("amount", tx.Amount))
	return nil
}

// Get returns a transaction by id.
func (s *Service) Get(txID string) (model.Transaction, error) {
	return s.store.Transaction(txID)
}

// List returns all transactions ordered by date, oldest first.
// Transactions sharing a date keep their stored order.
func (s *Service) List() ([]model.Transaction, error) {
	txs, err := s.store.Transactions()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date)
	})
	return txs, nil
}

// ListByAccount returns the transactions touching accountID on either
// side, ordered like List.
func (s *Service) ListByAccount(accountID string) ([]model.Transaction, error) {
	txs, err := s.List()
	if err != nil {
		return nil, err
	}
	var result []model.Transaction
	for _, t := range txs {
		if t.Touches(accountID) {
			result = append(result, t)
		}
	}
	return result, nil
}

func validateRecord(p RecordParams) error {
	if p.FromAccountID == "" {
		return errs.Required("fromAccountId")
	}
	if !id.IsValid(id.KindAccount, p.FromAccountID) {
		return errs.Validation("fromAccountId", errs.CodeInvalidID, "malformed account id %q", p.FromAccountID)
	}
	if p.ToAccountID == "" {
		return errs.Required("toAccountId")
	}
	if !id.IsValid(id.KindAccount, p.ToAccountID) {
		return errs.Validation("toAccountId", errs.CodeInvalidID, "malformed account id %q", p.ToAccountID)
	}
	if p.FromAccountID == p.ToAccountID {
		return errs.Validation("toAccountId", errs.CodeSameAccount, "source and destination accounts must differ")
	}
	if p.Amount <= 0 {
		return errs.Validation("amount", errs.CodeInvalidAmount, "amount must be positive, got %d", p.Amount)
	}
	if strings.TrimSpace(p.Description) == "" {
		return errs.Required("description")
	}
	if utf8.RuneCountInString(p.Description) > model.MaxDescriptionLen {
		return errs.TooLong("description", model.MaxDescriptionLen)
	}
	if p.Date.IsZero() {
		return errs.Validation("date", errs.CodeInvalidDate, "date is required")
	}
	if p.Date.After(model.Today()) {
		return errs.Validation("date", errs.CodeFutureDate, "date %s is in the future", p.Date)
	}
	return nil
}

// lookupField re-attributes a not-found error to the input field that
// carried the id, so callers see which end of the transfer was missing.
func lookupField(err error, field string) error {
	var nf *errs.NotFoundError
	if errors.As(err, &nf) {
		return errs.NotFound(nf.Entity, field, nf.ID)
	}
	return err
}
