package storage

import (
	"context"
	"database/sql"
	"fmt"

	"ledgerbot/internal/core"

	"github.com/shopspring/decimal"
)

// NoID is the sentinel returned by lookup queries when no row matches.
// It is distinct from any surrogate key SQLite will ever assign.
const NoID int64 = -1

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same queries run
// standalone or inside a per-command transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// UserExists reports whether the user is registered.
func (q *Queries) UserExists(ctx context.Context, userID int64) (bool, error) {
	var id int64
	err := q.db.QueryRowContext(ctx,
		`SELECT user_id FROM users WHERE user_id = ?`, userID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query user: %w", err)
	}
	return true, nil
}

// AddUser registers a user. Re-registering is a no-op.
func (q *Queries) AddUser(ctx context.Context, userID int64) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (user_id) VALUES (?)`, userID)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// CategoryID resolves a category name for the user, returning NoID on miss.
func (q *Queries) CategoryID(ctx context.Context, userID int64, name string) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx,
		`SELECT category_id FROM categories WHERE owner_id = ? AND name = ?`,
		userID, name).Scan(&id)
	if err == sql.ErrNoRows {
		return NoID, nil
	}
	if err != nil {
		return NoID, fmt.Errorf("query category id: %w", err)
	}
	return id, nil
}

// AccountID resolves an account name for the user, returning NoID on miss.
func (q *Queries) AccountID(ctx context.Context, userID int64, name string) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx,
		`SELECT account_id FROM accounts WHERE owner_id = ? AND name = ?`,
		userID, name).Scan(&id)
	if err == sql.ErrNoRows {
		return NoID, nil
	}
	if err != nil {
		return NoID, fmt.Errorf("query account id: %w", err)
	}
	return id, nil
}

// AddCategory inserts a category row. The UNIQUE (owner_id, name) index
// rejects a duplicate that slipped past the handler's existence check.
func (q *Queries) AddCategory(ctx context.Context, userID int64, name string) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO categories (owner_id, name) VALUES (?, ?)`, userID, name)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// AddAccount inserts an account row, symmetric to AddCategory.
func (q *Queries) AddAccount(ctx context.Context, userID int64, name string) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO accounts (owner_id, name) VALUES (?, ?)`, userID, name)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// DeleteCategory removes a category and every transaction referencing it.
func (q *Queries) DeleteCategory(ctx context.Context, userID, categoryID int64) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE category_id = ?`, categoryID)
	if err != nil {
		return fmt.Errorf("delete category transactions: %w", err)
	}

	_, err = q.db.ExecContext(ctx,
		`DELETE FROM categories WHERE category_id = ? AND owner_id = ?`,
		categoryID, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// DeleteAccount removes an account and every transaction referencing it.
func (q *Queries) DeleteAccount(ctx context.Context, userID, accountID int64) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE account_id = ?`, accountID)
	if err != nil {
		return fmt.Errorf("delete account transactions: %w", err)
	}

	_, err = q.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE account_id = ? AND owner_id = ?`,
		accountID, userID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

// AddTransaction records a ledger movement. The amount persists as exact
// decimal text; the day defaults to today at the caller.
func (q *Queries) AddTransaction(ctx context.Context, categoryID, accountID int64, amount decimal.Decimal, day core.Date) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO transactions (category_id, account_id, amount, day)
		 VALUES (?, ?, ?, ?)`,
		categoryID, accountID, amount.String(), day.String())
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// Balance sums every transaction amount on the user's accounts, optionally
// restricted to one account name. An empty set sums to zero. Amounts are
// summed in Go to keep decimal exactness.
func (q *Queries) Balance(ctx context.Context, userID int64, accountName string) (decimal.Decimal, error) {
	query := `SELECT t.amount FROM transactions t
		JOIN accounts a ON t.account_id = a.account_id
		WHERE a.owner_id = ?`
	args := []any{userID}
	if accountName != "" {
		query += ` AND a.name = ?`
		args = append(args, accountName)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return decimal.Zero, fmt.Errorf("query balance: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return decimal.Zero, fmt.Errorf("scan amount: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse stored amount %q: %w", raw, err)
		}
		total = total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("iterate balance rows: %w", err)
	}
	return total, nil
}

// Categories lists the user's category names in insertion order.
func (q *Queries) Categories(ctx context.Context, userID int64) ([]string, error) {
	return q.listNames(ctx,
		`SELECT name FROM categories WHERE owner_id = ? ORDER BY category_id`, userID)
}

// Accounts lists the user's account names in insertion order.
func (q *Queries) Accounts(ctx context.Context, userID int64) ([]string, error) {
	return q.listNames(ctx,
		`SELECT name FROM accounts WHERE owner_id = ? ORDER BY account_id`, userID)
}

func (q *Queries) listNames(ctx context.Context, query string, userID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate name rows: %w", err)
	}
	return names, nil
}

// TransactionsInRange returns the user's transactions with begin <= day <=
// end, ordered by day. Pass NoID as categoryID to skip the category filter.
func (q *Queries) TransactionsInRange(ctx context.Context, userID int64, begin, end core.Date, categoryID int64) ([]core.Transaction, error) {
	query := `SELECT t.amount, t.day FROM transactions t
		JOIN accounts a ON t.account_id = a.account_id
		WHERE a.owner_id = ? AND t.day BETWEEN ? AND ?`
	args := []any{userID, begin.String(), end.String()}
	if categoryID != NoID {
		query += ` AND t.category_id = ?`
		args = append(args, categoryID)
	}
	query += ` ORDER BY t.day, t.transaction_id`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var (
			raw string
			day string
		)
		if err := rows.Scan(&raw, &day); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse stored amount %q: %w", raw, err)
		}
		parsedDay, err := core.ParseDate(day)
		if err != nil {
			return nil, fmt.Errorf("parse stored day %q: %w", day, err)
		}
		txs = append(txs, core.Transaction{Amount: amount, Day: parsedDay})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txs, nil
}
