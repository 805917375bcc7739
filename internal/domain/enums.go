package domain

import "strings"

// BankName is the issuing bank of an account.
type BankName string

const (
	BankSBI       BankName = "State Bank of India"
	BankHDFC      BankName = "HDFC Bank"
	BankICICI     BankName = "ICICI Bank"
	BankAxis      BankName = "Axis Bank"
	BankKotak     BankName = "Kotak Mahindra Bank"
	BankPNB       BankName = "Punjab National Bank"
	BankBaroda    BankName = "Bank of Baroda"
	BankCanara    BankName = "Canara Bank"
	BankUnion     BankName = "Union Bank of India"
	BankIDFCFirst BankName = "IDFC First Bank"
	BankYes       BankName = "Yes Bank"
	BankIndusInd  BankName = "IndusInd Bank"
	BankOther     BankName = "Other"
)

var bankNames = []BankName{
	BankSBI, BankHDFC, BankICICI, BankAxis, BankKotak, BankPNB, BankBaroda,
	BankCanara, BankUnion, BankIDFCFirst, BankYes, BankIndusInd, BankOther,
}

// IsValid reports whether b is a known bank.
func (b BankName) IsValid() bool {
	for _, known := range bankNames {
		if b == known {
			return true
		}
	}
	return false
}

// BankNames returns all supported banks.
func BankNames() []BankName {
	return append([]BankName(nil), bankNames...)
}

// AccountType is the category of a bank account.
type AccountType string

const (
	AccountTypeSavings          AccountType = "Savings"
	AccountTypeCurrent          AccountType = "Current"
	AccountTypeSalary           AccountType = "Salary"
	AccountTypeFixedDeposit     AccountType = "Fixed Deposit"
	AccountTypeRecurringDeposit AccountType = "Recurring Deposit"
	AccountTypeNRI              AccountType = "NRI"

	DefaultAccountType = AccountTypeSavings
)

var accountTypes = []AccountType{
	AccountTypeSavings, AccountTypeCurrent, AccountTypeSalary,
	AccountTypeFixedDeposit, AccountTypeRecurringDeposit, AccountTypeNRI,
}

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	for _, known := range accountTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Direction says whether an entry increases or decreases the balance.
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// IsValid reports whether d is credit or debit.
func (d Direction) IsValid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

// Reverse flips credit and debit.
func (d Direction) Reverse() Direction {
	if d == DirectionCredit {
		return DirectionDebit
	}
	return DirectionCredit
}

// ParseDirection parses a direction, ignoring case and surrounding space.
func ParseDirection(s string) (Direction, bool) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	return d, d.IsValid()
}

// Category classifies an entry. Credit and debit categories are disjoint.
type Category string

var creditCategories = []Category{
	"Salary", "Freelance", "Business", "Investment Returns", "Interest",
	"Refund", "Gift", "Transfer In", "Other Income",
}

var debitCategories = []Category{
	"Food & Dining", "Groceries", "Shopping", "Transportation", "Fuel",
	"Bills & Utilities", "Rent", "Entertainment", "Healthcare", "Education",
	"Travel", "Insurance", "EMI", "Investment", "Transfer Out", "Other Expense",
}

// CategoriesFor returns the categories allowed for direction d.
func CategoriesFor(d Direction) []Category {
	switch d {
	case DirectionCredit:
		return append([]Category(nil), creditCategories...)
	case DirectionDebit:
		return append([]Category(nil), debitCategories...)
	default:
		return nil
	}
}

// AllowedFor reports whether c may be used with direction d.
func (c Category) AllowedFor(d Direction) bool {
	for _, known := range CategoriesFor(d) {
		if c == known {
			return true
		}
	}
	return false
}

// IsKnown reports whether c belongs to either category set.
func (c Category) IsKnown() bool {
	return c.AllowedFor(DirectionCredit) || c.AllowedFor(DirectionDebit)
}
