package core

import "github.com/shopspring/decimal"

// ResultKind tags the outcome of handling a Command. Lookup misses,
// duplicates and validation failures are Results, not errors; only storage
// failures surface as Go errors.
type ResultKind int

const (
	ResUnknown ResultKind = iota
	ResCategoryAdded
	ResAccountAdded
	ResDuplicateCategory
	ResDuplicateAccount
	ResCategoryDeleted
	ResAccountDeleted
	ResCategoryMissing
	ResAccountMissing
	ResCategoryAndAccountMissing
	ResTransactionAdded
	ResBalance
	ResStats
	ResCategoryList
	ResAccountList
	ResNoCategories
	ResNoAccounts
	ResDateIncorrect
	ResDateOrderIncorrect
)

// Result describes what happened to a command so a presentation layer can
// render a response. Only the fields relevant to the Kind are populated.
type Result struct {
	Kind ResultKind

	// Name is the category or account the outcome refers to.
	Name string

	// Transaction echo.
	Category string
	Account  string

	// Amount carries the transaction amount, the balance, or the stats
	// total depending on Kind.
	Amount decimal.Decimal

	// Stats range echo.
	Begin string
	End   string

	// Names is the listing payload for category/account lists.
	Names []string

	// Date is the offending token for ResDateIncorrect.
	Date string
}
