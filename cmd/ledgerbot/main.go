package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"ledgerbot/internal/cli"
	"ledgerbot/internal/core"
	"ledgerbot/internal/events"
	"ledgerbot/internal/parser"
	"ledgerbot/internal/services"
)

// ledgerbot runs the command interpreter against a local terminal session:
// one user id, one line per command. The chat transport proper lives
// outside this repo and talks to the same parser/handler surface.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	userID := int64(1)
	if v := os.Getenv("LEDGER_USER_ID"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			logger.Error("Invalid LEDGER_USER_ID", "value", v, "error", err)
			os.Exit(1)
		}
		userID = parsed
	}

	store := cli.InitStore(logger, cfg.SQLiteDBPath)
	defer store.Close()

	var eventsClient *events.Client
	if cfg.AMQPURL != "" {
		var err error
		eventsClient, err = events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize events client", "error", err)
			os.Exit(1)
		}
		defer eventsClient.Close()
		logger.Info("Transaction event publishing enabled", "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Transaction event publishing disabled - no AMQP_URL provided")
	}

	service := services.NewCommandService(store, eventsClient)

	ctx, cancel := cli.SignalContext(context.Background())
	defer cancel()

	logger.Info("Ledgerbot session started", "user_id", userID, "db", cfg.SQLiteDBPath)
	fmt.Println("Готов. /start для регистрации, /exit для выхода.")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/exit":
			logger.Info("Session closed")
			return
		case "/start":
			if err := store.Queries().AddUser(ctx, userID); err != nil {
				logger.Error("Registration failed", "error", err, "user_id", userID)
				os.Exit(1)
			}
			fmt.Println("Вы зарегистрированы.")
			continue
		case "/recreate":
			if userID != cfg.AdminUserID || cfg.AdminUserID == 0 {
				continue
			}
			if err := store.Reset(ctx); err != nil {
				logger.Error("Reset failed", "error", err)
				os.Exit(1)
			}
			fmt.Println("Хранилище пересоздано.")
			continue
		}

		registered, err := store.Queries().UserExists(ctx, userID)
		if err != nil {
			logger.Error("User lookup failed", "error", err, "user_id", userID)
			os.Exit(1)
		}
		if !registered {
			fmt.Println("Сначала зарегистрируйтесь: /start")
			continue
		}

		result, err := service.Handle(ctx, userID, parser.Parse(parser.Tokenize(line)))
		if err != nil {
			logger.Error("Command failed", "error", err, "user_id", userID)
			os.Exit(1)
		}
		fmt.Println(render(result))
	}

	if err := scanner.Err(); err != nil {
		logger.Error("Read input", "error", err)
		os.Exit(1)
	}
}

// render produces a one-line plain-text reply. Real presentation layers
// render Results with their own templates.
func render(r core.Result) string {
	switch r.Kind {
	case core.ResCategoryAdded:
		return fmt.Sprintf("Категория %s добавлена.", r.Name)
	case core.ResAccountAdded:
		return fmt.Sprintf("Счёт %s добавлен.", r.Name)
	case core.ResDuplicateCategory:
		return fmt.Sprintf("Категория %s уже существует.", r.Name)
	case core.ResDuplicateAccount:
		return fmt.Sprintf("Счёт %s уже существует.", r.Name)
	case core.ResCategoryDeleted:
		return fmt.Sprintf("Категория %s удалена.", r.Name)
	case core.ResAccountDeleted:
		return fmt.Sprintf("Счёт %s удалён.", r.Name)
	case core.ResCategoryMissing:
		return fmt.Sprintf("Категория %s не существует.", r.Name)
	case core.ResAccountMissing:
		return fmt.Sprintf("Счёт %s не существует.", r.Name)
	case core.ResCategoryAndAccountMissing:
		return fmt.Sprintf("Категория %s и счёт %s не существуют.", r.Category, r.Account)
	case core.ResTransactionAdded:
		return fmt.Sprintf("Записано: %s, %s, %s.", r.Amount, r.Category, r.Account)
	case core.ResBalance:
		if r.Account != "" {
			return fmt.Sprintf("Баланс счёта %s: %s", r.Account, r.Amount)
		}
		return fmt.Sprintf("Баланс: %s", r.Amount)
	case core.ResStats:
		if r.Category != "" {
			return fmt.Sprintf("С %s по %s, %s: %s", r.Begin, r.End, r.Category, r.Amount)
		}
		return fmt.Sprintf("С %s по %s: %s", r.Begin, r.End, r.Amount)
	case core.ResCategoryList:
		return "Категории: " + strings.Join(r.Names, ", ")
	case core.ResAccountList:
		return "Счета: " + strings.Join(r.Names, ", ")
	case core.ResNoCategories:
		return "Категорий пока нет."
	case core.ResNoAccounts:
		return "Счетов пока нет."
	case core.ResDateIncorrect:
		return fmt.Sprintf("Некорректная дата: %s", r.Date)
	case core.ResDateOrderIncorrect:
		return "Начальная дата позже конечной."
	default:
		return "Команда не распознана."
	}
}
