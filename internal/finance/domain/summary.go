package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

type MonthlySummary struct {
	Year       int               `json:"year"`
	Month      int               `json:"month"`
	Income     decimal.Decimal   `json:"income"`
	Expense    decimal.Decimal   `json:"expense"`
	Net        decimal.Decimal   `json:"net"`
	ByCategory []CategorySummary `json:"by_category"`
}

type CategorySummary struct {
	ItemCategoryID int64           `json:"item_category_id"`
	ItemCategory   *string         `json:"item_category"`
	Income         decimal.Decimal `json:"income"`
	Expense        decimal.Decimal `json:"expense"`
}

// Summarize totals the month's transactions. Income is reported as a
// positive number and net is income minus expense.
func Summarize(month YearMonth, transactions []TransactionView) MonthlySummary {
	summary := MonthlySummary{
		Year:       month.Year,
		Month:      int(month.Month),
		Income:     decimal.Zero,
		Expense:    decimal.Zero,
		ByCategory: []CategorySummary{},
	}

	byCategory := make(map[int64]*CategorySummary)
	for _, t := range transactions {
		cs, ok := byCategory[t.ItemCategoryID]
		if !ok {
			cs = &CategorySummary{
				ItemCategoryID: t.ItemCategoryID,
				ItemCategory:   t.ItemCategory,
				Income:         decimal.Zero,
				Expense:        decimal.Zero,
			}
			byCategory[t.ItemCategoryID] = cs
		}

		if t.IsIncome() {
			summary.Income = summary.Income.Add(t.Amount.Neg())
			cs.Income = cs.Income.Add(t.Amount.Neg())
		} else {
			summary.Expense = summary.Expense.Add(t.Amount)
			cs.Expense = cs.Expense.Add(t.Amount)
		}
	}
	summary.Net = summary.Income.Sub(summary.Expense)

	for _, cs := range byCategory {
		summary.ByCategory = append(summary.ByCategory, *cs)
	}
	sort.Slice(summary.ByCategory, func(i, j int) bool {
		a, b := summary.ByCategory[i], summary.ByCategory[j]
		if cmp := a.Expense.Cmp(b.Expense); cmp != 0 {
			return cmp > 0
		}
		return a.ItemCategoryID < b.ItemCategoryID
	})

	return summary
}
