// Package accounts implements the account registry: creation, update,
// lifecycle and deletion rules for the ledger's accounts. Balances are
// not its business; the ledger package owns those.
package accounts

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tally-dev/tally/internal/errs"
	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

// Service enforces the registry rules on top of a Store.
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

// CreateParams describes a new account. Balance is in minor units and is
// the opening balance; it defaults to zero.
type CreateParams struct {
	Name            string
	Type            model.AccountType
	ParentAccountID string
	Balance         int64
}

// Create validates the params, rejects duplicate names within the same
// type, and persists a new active account.
func (s *Service) Create(p CreateParams) (model.Account, error) {
	name := strings.TrimSpace(p.Name)
	if err := validateName(name); err != nil {
		return model.Account{}, err
	}
	if !p.Type.IsValid() {
		return model.Account{}, errs.Validation("type", errs.CodeInvalidType, "unknown account type %q", p.Type)
	}
	if p.ParentAccountID != "" && !id.IsValid(id.KindAccount, p.ParentAccountID) {
		return model.Account{}, errs.Validation("parentAccountId", errs.CodeInvalidID, "malformed account id %q", p.ParentAccountID)
	}

	existing, err := s.store.Accounts()
	if err != nil {
		return model.Account{}, err
	}
	if duplicateName(existing, name, p.Type, "") {
		return model.Account{}, errs.Validation("name", errs.CodeDuplicateName, "a %s account named %q already exists", p.Type, name)
	}

	now := time.Now().UTC()
	a := model.Account{
		ID:              id.New(id.KindAccount),
		Name:            name,
		Type:            p.Type,
		ParentAccountID: p.ParentAccountID,
		Balance:         p.Balance,
		Status:          model.AccountStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.SaveAccount(a); err != nil {
		return model.Account{}, err
	}
	s.log.Info("account created",
		zap.String("id", a.ID),
		zap.String("name", a.Name),
		zap.String("type", string(a.Type)))
	return a, nil
}

// UpdateParams carries the optional fields of an update; nil means leave
// the field alone. Balance updates here are manual corrections; routine
// balance movement happens through the ledger.
type UpdateParams struct {
	Name            *string
	Status          *model.AccountStatus
	Balance         *int64
	ParentAccountID *string
}

// Update applies the set fields to an existing account. Renames are
// checked for duplicates against accounts of the same type, ignoring the
// account itself.
func (s *Service) Update(accountID string, p UpdateParams) (model.Account, error) {
	a, err := s.store.Account(accountID)
	if err != nil {
		return model.Account{}, err
	}

	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if err := validateName(name); err != nil {
			return model.Account{}, err
		}
		existing, err := s.store.Accounts()
		if err != nil {
			return model.Account{}, err
		}
		if duplicateName(existing, name, a.Type, a.ID) {
			return model.Account{}, errs.Validation("name", errs.CodeDuplicateName, "a %s account named %q already exists", a.Type, name)
		}
		a.Name = name
	}
	if p.Status != nil {
		if !p.Status.IsValid() {
			return model.Account{}, errs.Validation("status", errs.CodeInvalidStatus, "unknown account status %q", *p.Status)
		}
		a.Status = *p.Status
	}
	if p.Balance != nil {
		a.Balance = *p.Balance
	}
	if p.ParentAccountID != nil {
		if *p.ParentAccountID != "" && !id.IsValid(id.KindAccount, *p.ParentAccountID) {
			return model.Account{}, errs.Validation("parentAccountId", errs.CodeInvalidID, "malformed account id %q", *p.ParentAccountID)
		}
		a.ParentAccountID = *p.ParentAccountID
	}

	a.UpdatedAt = time.Now().UTC()
	if err := s.store.SaveAccount(a); err != nil {
		return model.Account{}, err
	}
	s.log.Info("account updated", zap.String("id", a.ID))
	return a, nil
}

// Archive marks an account archived, keeping its history.
func (s *Service) Archive(accountID string) (model.Account, error) {
	status := model.AccountStatusArchived
	return s.Update(accountID, UpdateParams{Status: &status})
}

// Delete removes an account permanently. Only archived accounts with no
// transactions on either side may go; everything else is a rule error so
// history never dangles.
func (s *Service) Delete(accountID string) error {
	a, err := s.store.Account(accountID)
	if err != nil {
		return err
	}
	if a.Status != model.AccountStatusArchived {
		return errs.Rule(errs.CodeAccountActive, "account %q must be archived before deletion", a.Name)
	}
	txs, err := s.store.Transactions()
	if err != nil {
		return err
	}
	for _, t := range txs {
		if t.Touches(accountID) {
			return errs.Rule(errs.CodeHasTransactions, "account %q still has transactions", a.Name)
		}
	}
	if err := s.store.DeleteAccount(accountID); err != nil {
		return err
	}
	s.log.Info("account deleted", zap.String("id", accountID), zap.String("name", a.Name))
	return nil
}

// Get returns an account by id.
func (s *Service) Get(accountID string) (model.Account, error) {
	return s.store.Account(accountID)
}

// ListFilter narrows List results. Zero values mean "any".
type ListFilter struct {
	Type   model.AccountType
	Status model.AccountStatus
}

// List returns accounts matching the filter, in stored order.
func (s *Service) List(f ListFilter) ([]model.Account, error) {
	accounts, err := s.store.Accounts()
	if err != nil {
		return nil, err
	}
	var result []model.Account
	for _, a := range accounts {
		if f.Type != "" && a.Type != f.Type {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		result = append(result, a)
	}
	return result, nil
}

// Detail is an account plus how many transactions touch it.
type Detail struct {
	model.Account
	TransactionCount int
}

// GetDetail returns the account with its transaction count.
func (s *Service) GetDetail(accountID string) (Detail, error) {
	a, err := s.store.Account(accountID)
	if err != nil {
		return Detail{}, err
	}
	txs, err := s.store.Transactions()
	if err != nil {
		return Detail{}, err
	}
	d := Detail{Account: a}
	for _, t := range txs {
		if t.Touches(accountID) {
			d.TransactionCount++
		}
	}
	return d, nil
}

func validateName(name string) error {
	if name == "" {
		return errs.Required("name")
	}
	if len([]rune(name)) > model.MaxNameLen {
		return errs.TooLong("name", model.MaxNameLen)
	}
	return nil
}

// duplicateName reports whether name collides case-insensitively with an
// existing account of the same type, ignoring selfID.
func duplicateName(existing []model.Account, name string, typ model.AccountType, selfID string) bool {
	for _, a := range existing {
		if a.ID == selfID || a.Type != typ {
			continue
		}
		if strings.EqualFold(a.Name, name) {
			return true
		}
	}
	return false
}
