// Package recurring manages transfer templates and turns due templates
// into real transactions. The engine never fires on its own: callers
// (the CLI's process/run commands) supply the processing date, so a
// ledger untouched for a month simply catches up when next asked.
package recurring

import (
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/tally-dev/tally/internal/errs"
	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

// Suffix appended to a template's description on every materialized
// transaction, so generated transfers are recognizable in listings.
const Suffix = " (Recurring)"

// Service manages recurring templates on top of a Store, delegating the
// actual money movement to the ledger.
type Service struct {
	store  store.Store
	ledger *ledger.Service
	log    *zap.Logger
}

// NewService creates a Service. A nil logger disables logging.
func NewService(st store.Store, led *ledger.Service, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, ledger: led, log: log}
}

// CreateParams describes a new template. Accounts are deliberately not
// checked for existence or direction here: templates may be set up before
// their accounts, and every rule is enforced at processing time anyway.
type CreateParams struct {
	FromAccountID string
	ToAccountID   string
	Amount        int64
	Description   string
	Frequency     model.Frequency
}

// Create validates and persists a new active, never-processed template.
func (s *Service) Create(p CreateParams) (model.RecurringTransaction, error) {
	if err := validateTemplate(p); err != nil {
		return model.RecurringTransaction{}, err
	}
	now := time.Now().UTC()
	r := model.RecurringTransaction{
		ID:            id.New(id.KindRecurring),
		FromAccountID: p.FromAccountID,
		ToAccountID:   p.ToAccountID,
		Amount:        p.Amount,
		Description:   strings.TrimSpace(p.Description),
		Frequency:     p.Frequency,
		Status:        model.RecurringStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.SaveRecurringTransaction(r); err != nil {
		return model.RecurringTransaction{}, err
	}
	s.log.Info("recurring transaction created",
		zap.String("id", r.ID),
		zap.String("frequency", string(r.Frequency)),
		zap.Int64("amount", r.Amount))
	return r, nil
}

// UpdateParams carries optional template fields; nil leaves a field
// alone. Setting LastProcessedDate to a zero Date clears it, making the
// template immediately due again.
type UpdateParams struct {
	Amount            *int64
	Description       *string
	Frequency         *model.Frequency
	Status            *model.RecurringStatus
	LastProcessedDate *model.Date
}

// Update applies the set fields to an existing template.
func (s *Service) Update(recID string, p UpdateParams) (model.RecurringTransaction, error) {
	r, err := s.store.RecurringTransaction(recID)
	if err != nil {
		return model.RecurringTransaction{}, err
	}

	if p.Amount != nil {
		if *p.Amount <= 0 {
			return model.RecurringTransaction{}, errs.Validation("amount", errs.CodeInvalidAmount, "amount must be positive, got %d", *p.Amount)
		}
		r.Amount = *p.Amount
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		if desc == "" {
			return model.RecurringTransaction{}, errs.Required("description")
		}
		if utf8.RuneCountInString(desc) > model.MaxDescriptionLen {
			return model.RecurringTransaction{}, errs.TooLong("description", model.MaxDescriptionLen)
		}
		r.Description = desc
	}
	if p.Frequency != nil {
		if !p.Frequency.IsValid() {
			return model.RecurringTransaction{}, errs.Validation("frequency", errs.CodeInvalidFrequency, "unknown frequency %q", *p.Frequency)
		}
		r.Frequency = *p.Frequency
	}
	if p.Status != nil {
		if !p.Status.IsValid() {
			return model.RecurringTransaction{}, errs.Validation("status", errs.CodeInvalidStatus, "unknown recurring status %q", *p.Status)
		}
		r.Status = *p.Status
	}
	if p.LastProcessedDate != nil {
		r.LastProcessedDate = *p.LastProcessedDate
	}

	r.UpdatedAt = time.Now().UTC()
	if err := s.store.SaveRecurringTransaction(r); err != nil {
		return model.RecurringTransaction{}, err
	}
	s.log.Info("recurring transaction updated", zap.String("id", r.ID))
	return r, nil
}

// Pause stops a template from being processed. Pausing an already paused
// template succeeds without touching it.
func (s *Service) Pause(recID string) (model.RecurringTransaction, error) {
	return s.setStatus(recID, model.RecurringStatusPaused)
}

// Resume reactivates a paused template. The elapsed-days clock keeps
// running while paused, so a long-paused template is usually due at once.
func (s *Service) Resume(recID string) (model.RecurringTransaction, error) {
	return s.setStatus(recID, model.RecurringStatusActive)
}

func (s *Service) setStatus(recID string, status model.RecurringStatus) (model.RecurringTransaction, error) {
	r, err := s.store.RecurringTransaction(recID)
	if err != nil {
		return model.RecurringTransaction{}, err
	}
	if r.Status == status {
		return r, nil
	}
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	if err := s.store.SaveRecurringTransaction(r); err != nil {
		return model.RecurringTransaction{}, err
	}
	s.log.Info("recurring transaction status changed",
		zap.String("id", r.ID),
		zap.String("status", string(status)))
	return r, nil
}

// Delete removes a template in any state. Transactions it produced are
// ordinary ledger rows and stay untouched.
func (s *Service) Delete(recID string) error {
	if err := s.store.DeleteRecurringTransaction(recID); err != nil {
		return err
	}
	s.log.Info("recurring transaction deleted", zap.String("id", recID))
	return nil
}

// Get returns a template by id.
func (s *Service) Get(recID string) (model.RecurringTransaction, error) {
	return s.store.RecurringTransaction(recID)
}

// List returns every template in stored order.
func (s *Service) List() ([]model.RecurringTransaction, error) {
	return s.store.RecurringTransactions()
}

// Process materializes one run of the template as a real transaction
// dated processDate, then advances lastProcessedDate to it. Paused
// templates refuse to process. The transfer goes through the ledger, so
// every transfer rule applies and a rejected transfer (insufficient
// balance, missing account, bad direction) leaves lastProcessedDate
// untouched for a clean retry.
//
// Process does not check whether the template is due; that is the
// caller's call, via ShouldProcess or Due. Deliberate early runs are
// legal.
func (s *Service) Process(recID string, processDate model.Date) (model.Transaction, error) {
	if processDate.IsZero() {
		return model.Transaction{}, errs.Validation("processDate", errs.CodeInvalidDate, "process date is required")
	}
	r, err := s.store.RecurringTransaction(recID)
	if err != nil {
		return model.Transaction{}, err
	}
	if r.Status != model.RecurringStatusActive {
		return model.Transaction{}, errs.Rule(errs.CodeRecurringPaused, "recurring transaction %q is paused", r.Description)
	}

	tx, err := s.ledger.Record(ledger.RecordParams{
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        r.Amount,
		Description:   r.Description + Suffix,
		Date:          processDate,
	})
	if err != nil {
		return model.Transaction{}, err
	}

	r.LastProcessedDate = processDate
	r.UpdatedAt = time.Now().UTC()
	if err := s.store.SaveRecurringTransaction(r); err != nil {
		return model.Transaction{}, err
	}
	s.log.Info("recurring transaction processed",
		zap.String("id", r.ID),
		zap.String("transaction", tx.ID),
		zap.String("date", processDate.String()))
	return tx, nil
}

// ShouldProcess reports whether the template is due on currentDate,
// without mutating anything. A never-processed template is always due;
// otherwise the whole-day gap since lastProcessedDate must reach the
// frequency threshold. Running late never skips a cycle: the next run
// counts from when it actually happened.
func (s *Service) ShouldProcess(recID string, currentDate model.Date) (bool, error) {
	if currentDate.IsZero() {
		return false, errs.Validation("currentDate", errs.CodeInvalidDate, "current date is required")
	}
	r, err := s.store.RecurringTransaction(recID)
	if err != nil {
		return false, err
	}
	return isDue(r, currentDate), nil
}

// Due returns the active templates due on the given date, in stored
// order. Paused templates are excluded even when their gap has elapsed.
func (s *Service) Due(on model.Date) ([]model.RecurringTransaction, error) {
	if on.IsZero() {
		return nil, errs.Validation("currentDate", errs.CodeInvalidDate, "current date is required")
	}
	all, err := s.store.RecurringTransactions()
	if err != nil {
		return nil, err
	}
	var due []model.RecurringTransaction
	for _, r := range all {
		if r.Status == model.RecurringStatusActive && isDue(r, on) {
			due = append(due, r)
		}
	}
	return due, nil
}

func isDue(r model.RecurringTransaction, on model.Date) bool {
	if r.LastProcessedDate.IsZero() {
		return true
	}
	return model.DaysBetween(r.LastProcessedDate, on) >= r.Frequency.MinDays()
}

func validateTemplate(p CreateParams) error {
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
	if !p.Frequency.IsValid() {
		return errs.Validation("frequency", errs.CodeInvalidFrequency, "unknown frequency %q", p.Frequency)
	}
	return nil
}
