// Package parser turns tokenized chat lines into typed commands.
//
// Matching is an ordered sequence of shape predicates: the first pattern
// whose arity and command words fit wins. The numeric test on the first
// token of a three-token line is part of pattern selection, so a line like
// "добавить категорию Еда" can never be mistaken for a transaction entry.
package parser

import (
	"strings"

	"ledgerbot/internal/core"
)

// Command words are accepted in full and abbreviated forms; "счет"/"счёт"
// are spelling variants of the same word.
var (
	addWords      = wordSet("добавить", "доб")
	deleteWords   = wordSet("удалить", "уд")
	categoryWords = wordSet("категорию", "кат")
	accountWords  = wordSet("счет", "счёт")
	balanceWords  = wordSet("баланс", "бал")
	statsWords    = wordSet("статистика", "стата")

	categoriesWord = "категории"
	accountsWord   = "счета"
)

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func is(token string, set map[string]struct{}) bool {
	_, ok := set[token]
	return ok
}

// Tokenize lower-cases a raw line and splits it on whitespace.
func Tokenize(line string) []string {
	return strings.Fields(strings.ToLower(line))
}

// Parse maps a token sequence onto a command variant. Date and amount
// content is not validated here beyond the decimal-parseability check that
// disambiguates the transaction triple from other three-token shapes.
func Parse(tokens []string) core.Command {
	switch {
	case len(tokens) == 3 && is(tokens[0], addWords) && is(tokens[1], categoryWords):
		return core.Command{Kind: core.CmdAddCategory, Name: tokens[2]}

	case len(tokens) == 3 && is(tokens[0], addWords) && is(tokens[1], accountWords):
		return core.Command{Kind: core.CmdAddAccount, Name: tokens[2]}

	case len(tokens) == 3 && is(tokens[0], deleteWords) && is(tokens[1], categoryWords):
		return core.Command{Kind: core.CmdDeleteCategory, Name: tokens[2]}

	case len(tokens) == 3 && is(tokens[0], deleteWords) && is(tokens[1], accountWords):
		return core.Command{Kind: core.CmdDeleteAccount, Name: tokens[2]}

	case len(tokens) == 3 && core.IsAmount(tokens[0]):
		amount, _ := core.ParseAmount(tokens[0])
		return core.Command{
			Kind:     core.CmdAddTransaction,
			Amount:   amount,
			Category: tokens[1],
			Account:  tokens[2],
		}

	case len(tokens) == 2 && is(tokens[0], balanceWords):
		return core.Command{Kind: core.CmdGetBalance, Account: tokens[1]}

	case len(tokens) == 1 && is(tokens[0], balanceWords):
		return core.Command{Kind: core.CmdGetBalance}

	case len(tokens) == 4 && is(tokens[0], statsWords):
		return core.Command{
			Kind:     core.CmdGetStats,
			Begin:    tokens[1],
			End:      tokens[2],
			Category: tokens[3],
		}

	case len(tokens) == 3 && is(tokens[0], statsWords):
		return core.Command{Kind: core.CmdGetStats, Begin: tokens[1], End: tokens[2]}

	case len(tokens) == 1 && tokens[0] == categoriesWord:
		return core.Command{Kind: core.CmdListCategories}

	case len(tokens) == 1 && tokens[0] == accountsWord:
		return core.Command{Kind: core.CmdListAccounts}

	default:
		return core.Command{Kind: core.CmdUnrecognized}
	}
}
