package model

import "time"

// Frequency is how often a recurring transfer is meant to repeat.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// IsValid reports whether f is a known frequency.
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// MinDays returns the whole-day gap that must have elapsed since the last
// processing before a template is due again. Monthly and yearly use fixed
// 28- and 365-day floors rather than calendar arithmetic, so a template
// processed on Jan 31 is due again on Feb 28. Unknown frequencies return 0.
func (f Frequency) MinDays() int {
	switch f {
	case FrequencyDaily:
		return 1
	case FrequencyWeekly:
		return 7
	case FrequencyMonthly:
		return 28
	case FrequencyYearly:
		return 365
	}
	return 0
}

// RecurringStatus is the processing state of a recurring template.
type RecurringStatus string

const (
	RecurringStatusActive RecurringStatus = "active"
	RecurringStatusPaused RecurringStatus = "paused"
)

// IsValid reports whether s is a known recurring status.
func (s RecurringStatus) IsValid() bool {
	return s == RecurringStatusActive || s == RecurringStatusPaused
}

// RecurringTransaction is a transfer template. It never moves money by
// itself: processing it materializes an ordinary Transaction and advances
// LastProcessedDate. The zero LastProcessedDate means the template has
// never been processed, which makes it immediately due.
type RecurringTransaction struct {
	ID                string          `json:"id"`
	FromAccountID     string          `json:"fromAccountId"`
	ToAccountID       string          `json:"toAccountId"`
	Amount            int64           `json:"amount"`
	Description       string          `json:"description"`
	Frequency         Frequency       `json:"frequency"`
	Status            RecurringStatus `json:"status"`
	LastProcessedDate Date            `json:"lastProcessedDate,omitzero"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}
