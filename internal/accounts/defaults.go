package accounts

import "github.com/tally-dev/tally/internal/model"

// DefaultAccounts returns the starter set created by `tally init`. All
// open with a zero balance; the first recorded transfers set them moving.
func DefaultAccounts() []CreateParams {
	return []CreateParams{
		{Name: "Checking", Type: model.AccountTypeAsset},
		{Name: "Savings", Type: model.AccountTypeAsset},
		{Name: "Cash", Type: model.AccountTypeAsset},
		{Name: "Credit Card", Type: model.AccountTypeLiability},
		{Name: "Salary", Type: model.AccountTypeIncome},
		{Name: "Interest", Type: model.AccountTypeIncome},
		{Name: "Groceries", Type: model.AccountTypeExpense},
		{Name: "Rent", Type: model.AccountTypeExpense},
		{Name: "Utilities", Type: model.AccountTypeExpense},
		{Name: "Dining Out", Type: model.AccountTypeExpense},
	}
}

// Seed creates every default account through the service so the usual
// validation and duplicate rules apply.
func Seed(s *Service) ([]model.Account, error) {
	created := make([]model.Account, 0, len(DefaultAccounts()))
	for _, p := range DefaultAccounts() {
		a, err := s.Create(p)
		if err != nil {
			return created, err
		}
		created = append(created, a)
	}
	return created, nil
}
