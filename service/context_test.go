package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"fintrack/ledger"
	"fintrack/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	today      time.Time
	wallets    []WalletBalance
	totals     MonthTotals
	groups     []ledger.Group
	categories []models.Category
	err        error

	gotStart, gotEnd time.Time
	gotLimit         int
}

func (f *fakeSource) Today() time.Time          { return f.today }
func (f *fakeSource) Location() *time.Location { return time.UTC }

func (f *fakeSource) WalletBalances(context.Context, uint) ([]WalletBalance, error) {
	return f.wallets, f.err
}

func (f *fakeSource) MonthTotals(_ context.Context, _ uint, _ *uint, start, end time.Time) (MonthTotals, error) {
	f.gotStart, f.gotEnd = start, end
	return f.totals, nil
}

func (f *fakeSource) CategoryGroups(context.Context, uint, string, *uint, time.Time, time.Time) ([]ledger.Group, error) {
	return f.groups, nil
}

func (f *fakeSource) Categories(_ context.Context, _ uint, limit int) ([]models.Category, error) {
	f.gotLimit = limit
	return f.categories, nil
}

func uintPtr(v uint) *uint { return &v }

func newFakeSource() *fakeSource {
	return &fakeSource{
		today: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		wallets: []WalletBalance{
			{ID: 1, Name: "Conta", Kind: "checking", CurrentBalance: "1500.00", current: decimal.RequireFromString("1500")},
			{ID: 2, Name: "Cartão", Kind: "credit", CurrentBalance: "-300.00", current: decimal.RequireFromString("-300")},
		},
		totals: MonthTotals{Income: decimal.RequireFromString("5000"), Expenses: decimal.RequireFromString("1234.5")},
		groups: []ledger.Group{
			{CategoryID: uintPtr(1), Name: "Moradia", Total: decimal.NewFromInt(800)},
			{CategoryID: uintPtr(2), Name: "Lazer", Total: decimal.NewFromInt(100)},
			{CategoryID: uintPtr(3), Name: "Mercado", Total: decimal.NewFromInt(334)},
		},
		categories: []models.Category{
			{ID: 1, Name: "Moradia"},
			{ID: 9, Name: models.TransferCategoryName, IsSystem: true},
		},
	}
}

func TestContextBuilder_Build(t *testing.T) {
	src := newFakeSource()
	fc, err := NewContextBuilder(src).Build(context.Background(), 1, 2)
	require.NoError(t, err)

	assert.Equal(t, Period{Start: "2024-03-01", End: "2024-03-31"}, fc.Period)
	assert.Equal(t, "5000.00", fc.Totals.IncomeMonth)
	assert.Equal(t, "1234.50", fc.Totals.ExpensesMonth)
	assert.Equal(t, "1200.00", fc.Totals.NetWorth)
	assert.Len(t, fc.Wallets, 2)

	require.Len(t, fc.TopExpenseCategoriesMonth, 2)
	assert.Equal(t, "Moradia", fc.TopExpenseCategoriesMonth[0].Name)
	assert.Equal(t, "800.00", fc.TopExpenseCategoriesMonth[0].Total)
	assert.Equal(t, "Mercado", fc.TopExpenseCategoriesMonth[1].Name)

	assert.Equal(t, []string{"Moradia", models.TransferCategoryName}, fc.CategoryNames())
	assert.True(t, fc.Categories[1].IsSystem)
	assert.Equal(t, MaxContextCategories, src.gotLimit)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), src.gotStart)
}

func TestContextBuilder_DefaultTopN(t *testing.T) {
	fc, err := NewContextBuilder(newFakeSource()).Build(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Len(t, fc.TopExpenseCategoriesMonth, 3)
}

func TestContextBuilder_EmptyUser(t *testing.T) {
	src := &fakeSource{today: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)}
	fc, err := NewContextBuilder(src).Build(context.Background(), 1, 8)
	require.NoError(t, err)

	assert.Equal(t, "0.00", fc.Totals.NetWorth)
	assert.Equal(t, "0.00", fc.Totals.IncomeMonth)

	// 空集合序列化为 []
	raw, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"wallets":[]`)
	assert.Contains(t, string(raw), `"categories":[]`)
	assert.Contains(t, string(raw), `"top_expense_categories_month":[]`)
}

func TestContextBuilder_SourceError(t *testing.T) {
	src := newFakeSource()
	src.err = errors.New("db down")
	_, err := NewContextBuilder(src).Build(context.Background(), 1, 8)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
