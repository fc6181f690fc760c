package budget

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type seedCategory struct {
	name   string
	icon   string
	color  string
	typ    string
	budget int64
	order  int
}

type seedExpense struct {
	category string
	amount   int64
	date     string
	memo     string
}

type seedIncome struct {
	amount int64
	date   string
	source string
	memo   string
}

var seedCategories = []seedCategory{
	{"食費", "UtensilsCrossed", "#FF6B6B", TypeExpense, 50000, 1},
	{"交通費", "Car", "#4ECDC4", TypeExpense, 15000, 2},
	{"娯楽", "Gamepad2", "#45B7D1", TypeExpense, 20000, 3},
	{"日用品", "ShoppingCart", "#96CEB4", TypeExpense, 12000, 4},
	{"光熱費", "Zap", "#FFEAA7", TypeExpense, 18000, 5},
	{"家賃", "Home", "#DDA0DD", TypeExpense, 85000, 6},
	{"医療費", "Heart", "#FF69B4", TypeExpense, 5000, 7},
	{"給与", "Banknote", "#6C5CE7", TypeIncome, 0, 1},
	{"副業", "Laptop", "#A29BFE", TypeIncome, 0, 2},
}

var seedExpenses = []seedExpense{
	{"食費", 3240, "2025-06-15", "スーパーで食材購入"},
	{"交通費", 320, "2025-06-15", "電車代（渋谷→新宿）"},
	{"娯楽", 2800, "2025-06-14", "映画鑑賞"},
	{"食費", 1580, "2025-06-13", "ランチ（同僚と）"},
	{"日用品", 2240, "2025-06-12", "トイレットペーパー、洗剤など"},
	{"食費", 4320, "2025-06-10", "週末の食材まとめ買い"},
	{"光熱費", 8540, "2025-06-08", "電気代（5月分）"},
	{"家賃", 85000, "2025-06-01", "6月分家賃"},
	{"交通費", 640, "2025-06-09", "タクシー代（雨で電車遅延）"},
	{"娯楽", 5200, "2025-06-07", "友人との飲み会"},
	{"家賃", 85000, "2025-05-01", "5月分家賃"},
	{"食費", 38520, "2025-05-31", "5月の食費合計"},
	{"交通費", 12800, "2025-05-31", "5月の交通費合計"},
	{"娯楽", 18940, "2025-05-31", "5月の娯楽費合計"},
	{"光熱費", 16320, "2025-05-15", "ガス代・水道代"},
	{"家賃", 85000, "2025-04-01", "4月分家賃"},
	{"食費", 42180, "2025-04-30", "4月の食費合計"},
	{"医療費", 3200, "2025-04-20", "定期健康診断"},
}

var seedIncomes = []seedIncome{
	{280000, "2025-06-25", "給与（6月分）", "基本給 + 残業代"},
	{45000, "2025-06-15", "副業（Webデザイン）", ""},
	{280000, "2025-05-25", "給与（5月分）", ""},
	{280000, "2025-04-25", "給与（4月分）", ""},
}

// Seed populates the store with the demo user's categories and three months
// of records.
func Seed(ctx context.Context, store *Store, userID uuid.UUID) error {
	byName := make(map[string]uuid.UUID, len(seedCategories))
	for _, sc := range seedCategories {
		cat := Category{
			UserID:    userID,
			Name:      sc.name,
			Icon:      sc.icon,
			Color:     sc.color,
			Type:      sc.typ,
			SortOrder: sc.order,
		}
		if sc.budget > 0 {
			budget := decimal.NewFromInt(sc.budget)
			cat.MonthlyBudget = &budget
		}
		created, err := store.CreateCategory(ctx, cat)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", sc.name, err)
		}
		byName[sc.name] = created.ID
	}

	for _, se := range seedExpenses {
		_, err := store.CreateExpense(ctx, Expense{
			UserID:     userID,
			CategoryID: byName[se.category],
			Amount:     decimal.NewFromInt(se.amount),
			Date:       se.date,
			Memo:       se.memo,
		})
		if err != nil {
			return fmt.Errorf("seed expense %q: %w", se.memo, err)
		}
	}

	for _, si := range seedIncomes {
		_, err := store.CreateIncome(ctx, Income{
			UserID: userID,
			Amount: decimal.NewFromInt(si.amount),
			Date:   si.date,
			Source: si.source,
			Memo:   si.memo,
		})
		if err != nil {
			return fmt.Errorf("seed income %q: %w", si.source, err)
		}
	}

	return nil
}
