package model

import (
	"strings"
	"unicode/utf8"

	"github.com/tally-dev/tally/internal/errs"
	"github.com/tally-dev/tally/internal/id"
)

// Field length limits, counted in runes.
const (
	MaxNameLen        = 100
	MaxDescriptionLen = 500
)

// The Validate functions below are the store's last line of defense: every
// save runs the matching one before accepting the write, independent of
// whatever the services already checked. They verify structure only
// (well-formed ids, bounded strings, known enum values, positive amounts,
// set dates), never cross-entity rules like balance sufficiency.

// ValidateAccount checks the structural invariants of an account.
func ValidateAccount(a Account) error {
	if !id.IsValid(id.KindAccount, a.ID) {
		return errs.Validation("id", errs.CodeInvalidID, "malformed account id %q", a.ID)
	}
	if strings.TrimSpace(a.Name) == "" {
		return errs.Required("name")
	}
	if utf8.RuneCountInString(a.Name) > MaxNameLen {
		return errs.TooLong("name", MaxNameLen)
	}
	if !a.Type.IsValid() {
		return errs.Validation("type", errs.CodeInvalidType, "unknown account type %q", a.Type)
	}
	if !a.Status.IsValid() {
		return errs.Validation("status", errs.CodeInvalidStatus, "unknown account status %q", a.Status)
	}
	if a.ParentAccountID != "" && !id.IsValid(id.KindAccount, a.ParentAccountID) {
		return errs.Validation("parentAccountId", errs.CodeInvalidID, "malformed account id %q", a.ParentAccountID)
	}
	if a.CreatedAt.IsZero() {
		return errs.Required("createdAt")
	}
	if a.UpdatedAt.IsZero() {
		return errs.Required("updatedAt")
	}
	return nil
}

// ValidateTransaction checks the structural invariants of a transaction.
func ValidateTransaction(t Transaction) error {
	if !id.IsValid(id.KindTransaction, t.ID) {
		return errs.Validation("id", errs.CodeInvalidID, "malformed transaction id %q", t.ID)
	}
	if err := validateEndpoints(t.FromAccountID, t.ToAccountID); err != nil {
		return err
	}
	if t.Amount <= 0 {
		return errs.Validation("amount", errs.CodeInvalidAmount, "amount must be positive, got %d", t.Amount)
	}
	if err := validateDescription(t.Description); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return errs.Validation("date", errs.CodeInvalidDate, "date is required")
	}
	if t.CreatedAt.IsZero() {
		return errs.Required("createdAt")
	}
	return nil
}

// ValidateRecurring checks the structural invariants of a recurring
// template. LastProcessedDate may be zero (never processed).
func ValidateRecurring(r RecurringTransaction) error {
	if !id.IsValid(id.KindRecurring, r.ID) {
		return errs.Validation("id", errs.CodeInvalidID, "malformed recurring transaction id %q", r.ID)
	}
	if err := validateEndpoints(r.FromAccountID, r.ToAccountID); err != nil {
		return err
	}
	if r.Amount <= 0 {
		return errs.Validation("amount", errs.CodeInvalidAmount, "amount must be positive, got %d", r.Amount)
	}
	if err := validateDescription(r.Description); err != nil {
		return err
	}
	if !r.Frequency.IsValid() {
		return errs.Validation("frequency", errs.CodeInvalidFrequency, "unknown frequency %q", r.Frequency)
	}
	if !r.Status.IsValid() {
		return errs.Validation("status", errs.CodeInvalidStatus, "unknown recurring status %q", r.Status)
	}
	if r.CreatedAt.IsZero() {
		return errs.Required("createdAt")
	}
	if r.UpdatedAt.IsZero() {
		return errs.Required("updatedAt")
	}
	return nil
}

// ValidateSnapshot checks the structural invariants of a net worth
// snapshot, including the netWorth = assets - liabilities identity.
func ValidateSnapshot(s NetWorthSnapshot) error {
	if !id.IsValid(id.KindSnapshot, s.ID) {
		return errs.Validation("id", errs.CodeInvalidID, "malformed snapshot id %q", s.ID)
	}
	if s.Date.IsZero() {
		return errs.Validation("date", errs.CodeInvalidDate, "date is required")
	}
	if s.NetWorth != s.TotalAssets-s.TotalLiabilities {
		return errs.Validation("netWorth", errs.CodeInvalidAmount,
			"netWorth %d does not equal assets %d minus liabilities %d", s.NetWorth, s.TotalAssets, s.TotalLiabilities)
	}
	if s.CreatedAt.IsZero() {
		return errs.Required("createdAt")
	}
	return nil
}

func validateEndpoints(fromID, toID string) error {
	if !id.IsValid(id.KindAccount, fromID) {
		return errs.Validation("fromAccountId", errs.CodeInvalidID, "malformed account id %q", fromID)
	}
	if !id.IsValid(id.KindAccount, toID) {
		return errs.Validation("toAccountId", errs.CodeInvalidID, "malformed account id %q", toID)
	}
	if fromID == toID {
		return errs.Validation("toAccountId", errs.CodeSameAccount, "source and destination accounts must differ")
	}
	return nil
}

func validateDescription(desc string) error {
	if strings.TrimSpace(desc) == "" {
		return errs.Required("description")
	}
	if utf8.RuneCountInString(desc) > MaxDescriptionLen {
		return errs.TooLong("description", MaxDescriptionLen)
	}
	return nil
}
