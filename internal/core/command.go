package core

import "github.com/shopspring/decimal"

// CommandKind tags the variant carried by a Command.
type CommandKind int

const (
	CmdUnrecognized CommandKind = iota
	CmdAddCategory
	CmdAddAccount
	CmdDeleteCategory
	CmdDeleteAccount
	CmdAddTransaction
	CmdGetBalance
	CmdGetStats
	CmdListCategories
	CmdListAccounts
)

// Command is a parsed user instruction. Only the fields relevant to the
// Kind are populated; Begin and End stay raw strings because date content
// is validated by the handler, not the parser.
type Command struct {
	Kind CommandKind

	// Name is the category or account name for add/delete commands.
	Name string

	// Transaction fields.
	Amount   decimal.Decimal
	Category string
	Account  string

	// Stats range, unvalidated YYYY-MM-DD candidates.
	Begin string
	End   string
}

func (k CommandKind) String() string {
	switch k {
	case CmdAddCategory:
		return "add_category"
	case CmdAddAccount:
		return "add_account"
	case CmdDeleteCategory:
		return "delete_category"
	case CmdDeleteAccount:
		return "delete_account"
	case CmdAddTransaction:
		return "add_transaction"
	case CmdGetBalance:
		return "get_balance"
	case CmdGetStats:
		return "get_stats"
	case CmdListCategories:
		return "list_categories"
	case CmdListAccounts:
		return "list_accounts"
	default:
		return "unrecognized"
	}
}
