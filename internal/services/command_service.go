// Package services executes parsed commands against the ledger store.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"ledgerbot/internal/core"
	"ledgerbot/internal/events"
	"ledgerbot/internal/storage"

	"github.com/shopspring/decimal"
)

// CommandService maps a parsed command plus user identity to ledger store
// calls and produces a Result for rendering. Every command runs in one
// per-user transaction; recoverable conditions (lookup misses, duplicates,
// bad dates) come back as Result variants, storage failures as errors.
type CommandService struct {
	store  *storage.Store
	events *events.Client
}

func NewCommandService(store *storage.Store, eventsClient *events.Client) *CommandService {
	return &CommandService{
		store:  store,
		events: eventsClient,
	}
}

func (s *CommandService) Handle(ctx context.Context, userID int64, cmd core.Command) (core.Result, error) {
	var result core.Result

	err := s.store.WithUserTx(ctx, userID, func(q *storage.Queries) error {
		var err error
		switch cmd.Kind {
		case core.CmdAddCategory:
			result, err = s.addCategory(ctx, q, userID, cmd.Name)
		case core.CmdAddAccount:
			result, err = s.addAccount(ctx, q, userID, cmd.Name)
		case core.CmdDeleteCategory:
			result, err = s.deleteCategory(ctx, q, userID, cmd.Name)
		case core.CmdDeleteAccount:
			result, err = s.deleteAccount(ctx, q, userID, cmd.Name)
		case core.CmdAddTransaction:
			result, err = s.addTransaction(ctx, q, userID, cmd)
		case core.CmdGetBalance:
			result, err = s.balance(ctx, q, userID, cmd.Account)
		case core.CmdGetStats:
			result, err = s.stats(ctx, q, userID, cmd)
		case core.CmdListCategories:
			result, err = s.listCategories(ctx, q, userID)
		case core.CmdListAccounts:
			result, err = s.listAccounts(ctx, q, userID)
		default:
			result = core.Result{Kind: core.ResUnknown}
		}
		return err
	})
	if err != nil {
		return core.Result{}, fmt.Errorf("handle %s: %w", cmd.Kind, err)
	}

	if result.Kind == core.ResTransactionAdded {
		s.publishTransaction(ctx, userID, result)
	}

	return result, nil
}

func (s *CommandService) addCategory(ctx context.Context, q *storage.Queries, userID int64, name string) (core.Result, error) {
	id, err := q.CategoryID(ctx, userID, name)
	if err != nil {
		return core.Result{}, err
	}
	if id != storage.NoID {
		return core.Result{Kind: core.ResDuplicateCategory, Name: name}, nil
	}
	if err := q.AddCategory(ctx, userID, name); err != nil {
		return core.Result{}, err
	}
	return core.Result{Kind: core.ResCategoryAdded, Name: name}, nil
}

func (s *CommandService) addAccount(ctx context.Context, q *storage.Queries, userID int64, name string) (core.Result, error) {
	id, err := q.AccountID(ctx, userID, name)
	if err != nil {
		return core.Result{}, err
	}
	if id != storage.NoID {
		return core.Result{Kind: core.ResDuplicateAccount, Name: name}, nil
	}
	if err := q.AddAccount(ctx, userID, name); err != nil {
		return core.Result{}, err
	}
	return core.Result{Kind: core.ResAccountAdded, Name: name}, nil
}

func (s *CommandService) deleteCategory(ctx context.Context, q *storage.Queries, userID int64, name string) (core.Result, error) {
	id, err := q.CategoryID(ctx, userID, name)
	if err != nil {
		return core.Result{}, err
	}
	if id == storage.NoID {
		return core.Result{Kind: core.ResCategoryMissing, Name: name}, nil
	}
	if err := q.DeleteCategory(ctx, userID, id); err != nil {
		return core.Result{}, err
	}
	return core.Result{Kind: core.ResCategoryDeleted, Name: name}, nil
}

func (s *CommandService) deleteAccount(ctx context.Context, q *storage.Queries, userID int64, name string) (core.Result, error) {
	id, err := q.AccountID(ctx, userID, name)
	if err != nil {
		return core.Result{}, err
	}
	if id == storage.NoID {
		return core.Result{Kind: core.ResAccountMissing, Name: name}, nil
	}
	if err := q.DeleteAccount(ctx, userID, id); err != nil {
		return core.Result{}, err
	}
	return core.Result{Kind: core.ResAccountDeleted, Name: name}, nil
}

func (s *CommandService) addTransaction(ctx context.Context, q *storage.Queries, userID int64, cmd core.Command) (core.Result, error) {
	categoryID, err := q.CategoryID(ctx, userID, cmd.Category)
	if err != nil {
		return core.Result{}, err
	}
	accountID, err := q.AccountID(ctx, userID, cmd.Account)
	if err != nil {
		return core.Result{}, err
	}

	switch {
	case categoryID == storage.NoID && accountID == storage.NoID:
		return core.Result{
			Kind:     core.ResCategoryAndAccountMissing,
			Category: cmd.Category,
			Account:  cmd.Account,
		}, nil
	case categoryID == storage.NoID:
		return core.Result{Kind: core.ResCategoryMissing, Name: cmd.Category}, nil
	case accountID == storage.NoID:
		return core.Result{Kind: core.ResAccountMissing, Name: cmd.Account}, nil
	}

	if err := q.AddTransaction(ctx, categoryID, accountID, cmd.Amount, core.Today()); err != nil {
		return core.Result{}, err
	}
	return core.Result{
		Kind:     core.ResTransactionAdded,
		Amount:   cmd.Amount,
		Category: cmd.Category,
		Account:  cmd.Account,
	}, nil
}

func (s *CommandService) balance(ctx context.Context, q *storage.Queries, userID int64, account string) (core.Result, error) {
	if account != "" {
		id, err := q.AccountID(ctx, userID, account)
		if err != nil {
			return core.Result{}, err
		}
		if id == storage.NoID {
			return core.Result{Kind: core.ResAccountMissing, Name: account}, nil
		}
	}

	balance, err := q.Balance(ctx, userID, account)
	if err != nil {
		return core.Result{}, err
	}
	return core.Result{Kind: core.ResBalance, Amount: balance, Account: account}, nil
}

// stats checks category existence, then date well-formedness, then date
// ordering. Only the first failing check is reported.
func (s *CommandService) stats(ctx context.Context, q *storage.Queries, userID int64, cmd core.Command) (core.Result, error) {
	categoryID := storage.NoID
	if cmd.Category != "" {
		id, err := q.CategoryID(ctx, userID, cmd.Category)
		if err != nil {
			return core.Result{}, err
		}
		if id == storage.NoID {
			return core.Result{Kind: core.ResCategoryMissing, Name: cmd.Category}, nil
		}
		categoryID = id
	}

	begin, err := core.ParseDate(cmd.Begin)
	if err != nil {
		return core.Result{Kind: core.ResDateIncorrect, Date: cmd.Begin}, nil
	}
	end, err := core.ParseDate(cmd.End)
	if err != nil {
		return core.Result{Kind: core.ResDateIncorrect, Date: cmd.End}, nil
	}
	if end.Before(begin) {
		return core.Result{Kind: core.ResDateOrderIncorrect}, nil
	}

	txs, err := q.TransactionsInRange(ctx, userID, begin, end, categoryID)
	if err != nil {
		return core.Result{}, err
	}

	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return core.Result{
		Kind:     core.ResStats,
		Begin:    cmd.Begin,
		End:      cmd.End,
		Amount:   total,
		Category: cmd.Category,
	}, nil
}

func (s *CommandService) listCategories(ctx context.Context, q *storage.Queries, userID int64) (core.Result, error) {
	names, err := q.Categories(ctx, userID)
	if err != nil {
		return core.Result{}, err
	}
	if len(names) == 0 {
		return core.Result{Kind: core.ResNoCategories}, nil
	}
	return core.Result{Kind: core.ResCategoryList, Names: names}, nil
}

func (s *CommandService) listAccounts(ctx context.Context, q *storage.Queries, userID int64) (core.Result, error) {
	names, err := q.Accounts(ctx, userID)
	if err != nil {
		return core.Result{}, err
	}
	if len(names) == 0 {
		return core.Result{Kind: core.ResNoAccounts}, nil
	}
	return core.Result{Kind: core.ResAccountList, Names: names}, nil
}

// publishTransaction emits a transaction-recorded event after the commit.
// Publishing failures never fail the command.
func (s *CommandService) publishTransaction(ctx context.Context, userID int64, result core.Result) {
	if s.events == nil {
		return
	}
	err := s.events.PublishTransactionRecorded(ctx, userID,
		result.Amount.String(), result.Category, result.Account, core.Today().String())
	if err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"user_id", userID, "error", err)
	}
}
