package services

import (
	"context"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"ledgerbot/internal/core"
	"ledgerbot/internal/parser"
	"ledgerbot/internal/storage"

	"github.com/shopspring/decimal"
)

const testUser int64 = 7

func newTestService(t *testing.T) (*CommandService, *storage.Store) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.Queries().AddUser(context.Background(), testUser); err != nil {
		t.Fatalf("add user: %v", err)
	}
	return NewCommandService(store, nil), store
}

func handleLine(t *testing.T, svc *CommandService, line string) core.Result {
	t.Helper()
	result, err := svc.Handle(context.Background(), testUser, parser.Parse(parser.Tokenize(line)))
	if err != nil {
		t.Fatalf("handle %q: %v", line, err)
	}
	return result
}

func TestAddCategoryThenDuplicate(t *testing.T) {
	svc, _ := newTestService(t)

	result := handleLine(t, svc, "добавить категорию еда")
	if result.Kind != core.ResCategoryAdded || result.Name != "еда" {
		t.Fatalf("first add = %+v", result)
	}

	result = handleLine(t, svc, "доб кат еда")
	if result.Kind != core.ResDuplicateCategory || result.Name != "еда" {
		t.Fatalf("second add = %+v, want duplicate", result)
	}
}

func TestDeleteMissingAndExistingAccount(t *testing.T) {
	svc, _ := newTestService(t)

	result := handleLine(t, svc, "удалить счет карта")
	if result.Kind != core.ResAccountMissing || result.Name != "карта" {
		t.Fatalf("delete missing = %+v", result)
	}

	handleLine(t, svc, "добавить счет карта")
	result = handleLine(t, svc, "уд счёт карта")
	if result.Kind != core.ResAccountDeleted || result.Name != "карта" {
		t.Fatalf("delete existing = %+v", result)
	}
}

// The scenario from a fresh user: balance and transaction commands against
// absent entities produce the typed misses, then succeed once category and
// account exist.
func TestTransactionScenario(t *testing.T) {
	svc, _ := newTestService(t)

	result := handleLine(t, svc, "баланс мойсчет")
	if result.Kind != core.ResAccountMissing || result.Name != "мойсчет" {
		t.Fatalf("balance on absent account = %+v", result)
	}

	result = handleLine(t, svc, "100 еда мойсчет")
	if result.Kind != core.ResCategoryAndAccountMissing ||
		result.Category != "еда" || result.Account != "мойсчет" {
		t.Fatalf("transaction with both missing = %+v", result)
	}

	handleLine(t, svc, "добавить счет мойсчет")
	result = handleLine(t, svc, "100 еда мойсчет")
	if result.Kind != core.ResCategoryMissing || result.Name != "еда" {
		t.Fatalf("transaction with category missing = %+v", result)
	}

	handleLine(t, svc, "добавить категорию еда")
	result = handleLine(t, svc, "100 еда мойсчет")
	if result.Kind != core.ResTransactionAdded {
		t.Fatalf("transaction = %+v", result)
	}
	if !result.Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("amount = %s, want 100", result.Amount)
	}

	result = handleLine(t, svc, "баланс")
	if result.Kind != core.ResBalance || !result.Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance = %+v, want 100", result)
	}
}

func TestTransactionAccountMissingOnly(t *testing.T) {
	svc, _ := newTestService(t)

	handleLine(t, svc, "добавить категорию еда")
	result := handleLine(t, svc, "50,5 еда карта")
	if result.Kind != core.ResAccountMissing || result.Name != "карта" {
		t.Fatalf("result = %+v, want account missing", result)
	}
}

func TestStatsValidationOrder(t *testing.T) {
	svc, _ := newTestService(t)

	// Category existence is checked before date well-formedness.
	result := handleLine(t, svc, "статистика плохая-дата тоже-плохая еда")
	if result.Kind != core.ResCategoryMissing || result.Name != "еда" {
		t.Fatalf("result = %+v, want category missing first", result)
	}

	handleLine(t, svc, "добавить категорию еда")

	result = handleLine(t, svc, "статистика плохая-дата 2024-05-10 еда")
	if result.Kind != core.ResDateIncorrect || result.Date != "плохая-дата" {
		t.Fatalf("result = %+v, want begin date incorrect", result)
	}

	result = handleLine(t, svc, "статистика 2024-05-01 тоже-плохая еда")
	if result.Kind != core.ResDateIncorrect || result.Date != "тоже-плохая" {
		t.Fatalf("result = %+v, want end date incorrect", result)
	}

	// Reversed range is rejected regardless of the category argument.
	result = handleLine(t, svc, "статистика 2024-05-10 2024-05-01 еда")
	if result.Kind != core.ResDateOrderIncorrect {
		t.Fatalf("result = %+v, want date order incorrect", result)
	}
	result = handleLine(t, svc, "стата 2024-05-10 2024-05-01")
	if result.Kind != core.ResDateOrderIncorrect {
		t.Fatalf("result = %+v, want date order incorrect", result)
	}
}

func TestStatsAggregation(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	q := store.Queries()

	handleLine(t, svc, "добавить категорию еда")
	handleLine(t, svc, "добавить категорию такси")
	handleLine(t, svc, "добавить счет карта")

	foodID, _ := q.CategoryID(ctx, testUser, "еда")
	taxiID, _ := q.CategoryID(ctx, testUser, "такси")
	accID, _ := q.AccountID(ctx, testUser, "карта")

	day := func(s string) core.Date {
		d, err := core.ParseDate(s)
		if err != nil {
			t.Fatalf("parse date: %v", err)
		}
		return d
	}
	q.AddTransaction(ctx, foodID, accID, decimal.RequireFromString("10.5"), day("2024-05-01"))
	q.AddTransaction(ctx, foodID, accID, decimal.RequireFromString("20"), day("2024-05-03"))
	q.AddTransaction(ctx, taxiID, accID, decimal.RequireFromString("100"), day("2024-05-03"))
	q.AddTransaction(ctx, foodID, accID, decimal.RequireFromString("40"), day("2024-06-01"))

	result := handleLine(t, svc, "статистика 2024-05-01 2024-05-31 еда")
	if result.Kind != core.ResStats {
		t.Fatalf("result = %+v", result)
	}
	if want := decimal.RequireFromString("30.5"); !result.Amount.Equal(want) {
		t.Errorf("category total = %s, want %s", result.Amount, want)
	}
	if result.Begin != "2024-05-01" || result.End != "2024-05-31" || result.Category != "еда" {
		t.Errorf("range echo = %+v", result)
	}

	result = handleLine(t, svc, "статистика 2024-05-01 2024-05-31")
	if want := decimal.RequireFromString("130.5"); !result.Amount.Equal(want) {
		t.Errorf("total = %s, want %s", result.Amount, want)
	}
}

// Recording a transaction today makes it visible in a today-to-today range.
func TestTransactionRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)

	handleLine(t, svc, "добавить категорию еда")
	handleLine(t, svc, "добавить счет карта")
	handleLine(t, svc, "100 еда карта")

	today := core.Today().String()
	result := handleLine(t, svc, "статистика "+today+" "+today)
	if result.Kind != core.ResStats || !result.Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("result = %+v, want stats total 100", result)
	}
}

func TestListings(t *testing.T) {
	svc, _ := newTestService(t)

	result := handleLine(t, svc, "категории")
	if result.Kind != core.ResNoCategories {
		t.Fatalf("empty listing = %+v", result)
	}
	result = handleLine(t, svc, "счета")
	if result.Kind != core.ResNoAccounts {
		t.Fatalf("empty listing = %+v", result)
	}

	handleLine(t, svc, "добавить категорию еда")
	handleLine(t, svc, "добавить категорию такси")
	handleLine(t, svc, "добавить счет карта")

	result = handleLine(t, svc, "категории")
	if result.Kind != core.ResCategoryList {
		t.Fatalf("listing = %+v", result)
	}
	if want := []string{"еда", "такси"}; !reflect.DeepEqual(result.Names, want) {
		t.Errorf("names = %v, want %v", result.Names, want)
	}

	result = handleLine(t, svc, "счета")
	if result.Kind != core.ResAccountList || !reflect.DeepEqual(result.Names, []string{"карта"}) {
		t.Fatalf("listing = %+v", result)
	}
}

func TestUnknownCommand(t *testing.T) {
	svc, _ := newTestService(t)

	result := handleLine(t, svc, "привет бот как дела вообще")
	if result.Kind != core.ResUnknown {
		t.Fatalf("result = %+v, want unknown", result)
	}
}

// Concurrent identical add commands from one user must produce exactly one
// category: the per-user lock serializes them so the loser sees a duplicate.
func TestConcurrentDuplicateAdds(t *testing.T) {
	svc, store := newTestService(t)
	cmd := parser.Parse([]string{"добавить", "категорию", "еда"})

	const workers = 8
	results := make([]core.Result, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Handle(context.Background(), testUser, cmd)
		}(i)
	}
	wg.Wait()

	added := 0
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		switch results[i].Kind {
		case core.ResCategoryAdded:
			added++
		case core.ResDuplicateCategory:
		default:
			t.Fatalf("worker %d unexpected result %+v", i, results[i])
		}
	}
	if added != 1 {
		t.Errorf("added %d times, want exactly once", added)
	}

	names, err := store.Queries().Categories(context.Background(), testUser)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 {
		t.Errorf("store holds %d categories, want 1", len(names))
	}
}
