package service

import (
	"context"
	"fmt"
	"time"

	"fintrack/ledger"
	"fintrack/models"

	"golang.org/x/sync/errgroup"
)

// DefaultTopCategories 上下文中支出类别数量
const DefaultTopCategories = 8

// FinanceSource 构建财务上下文所需的读取操作
type FinanceSource interface {
	Today() time.Time
	Location() *time.Location
	WalletBalances(ctx context.Context, userID uint) ([]WalletBalance, error)
	MonthTotals(ctx context.Context, userID uint, walletID *uint, start, end time.Time) (MonthTotals, error)
	CategoryGroups(ctx context.Context, userID uint, txType string, walletID *uint, start, end time.Time) ([]ledger.Group, error)
	Categories(ctx context.Context, userID uint, limit int) ([]models.Category, error)
}

// FinanceContext 发送给模型的财务快照
type FinanceContext struct {
	Period                    Period            `json:"period"`
	Totals                    ContextTotals     `json:"totals"`
	Wallets                   []WalletBalance   `json:"wallets"`
	TopExpenseCategoriesMonth []CategoryTotal   `json:"top_expense_categories_month"`
	Categories                []ContextCategory `json:"categories"`
}

// ContextTotals 本月合计与净资产
type ContextTotals struct {
	IncomeMonth   string `json:"income_month"`
	ExpensesMonth string `json:"expenses_month"`
	NetWorth      string `json:"net_worth"`
}

// CategoryTotal 类别支出合计
type CategoryTotal struct {
	ID    *uint  `json:"id"`
	Name  string `json:"name"`
	Total string `json:"total"`
}

// ContextCategory 可用类别
type ContextCategory struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	IsSystem bool   `json:"is_system"`
}

// CategoryNames 所有类别名称
func (c *FinanceContext) CategoryNames() []string {
	names := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		names = append(names, cat.Name)
	}
	return names
}

// ContextBuilder 汇总用户本月的财务信息
type ContextBuilder struct {
	source FinanceSource
}

// NewContextBuilder 创建上下文构建器
func NewContextBuilder(source FinanceSource) *ContextBuilder {
	return &ContextBuilder{source: source}
}

// Build 并发读取钱包、本月合计、支出类别与类别列表
func (b *ContextBuilder) Build(ctx context.Context, userID uint, topN int) (*FinanceContext, error) {
	if topN <= 0 {
		topN = DefaultTopCategories
	}
	today := b.source.Today()
	start, end := ledger.MonthBounds(today.Year(), int(today.Month()), b.source.Location())

	var (
		wallets    []WalletBalance
		totals     MonthTotals
		groups     []ledger.Group
		categories []models.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		wallets, err = b.source.WalletBalances(gctx, userID)
		if err != nil {
			return fmt.Errorf("读取钱包余额失败: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		totals, err = b.source.MonthTotals(gctx, userID, nil, start, end)
		if err != nil {
			return fmt.Errorf("读取本月合计失败: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		groups, err = b.source.CategoryGroups(gctx, userID, ledger.TypeExpense, nil, start, end)
		if err != nil {
			return fmt.Errorf("读取支出类别失败: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		categories, err = b.source.Categories(gctx, userID, MaxContextCategories)
		if err != nil {
			return fmt.Errorf("读取类别列表失败: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if wallets == nil {
		wallets = []WalletBalance{}
	}
	out := &FinanceContext{
		Period: newPeriod(start, end),
		Totals: ContextTotals{
			IncomeMonth:   ledger.Money(totals.Income),
			ExpensesMonth: ledger.Money(totals.Expenses),
			NetWorth:      ledger.Money(TotalBalance(wallets)),
		},
		Wallets:                   wallets,
		TopExpenseCategoriesMonth: make([]CategoryTotal, 0, topN),
		Categories:                make([]ContextCategory, 0, len(categories)),
	}
	for _, grp := range ledger.Top(ledger.Breakdown(groups), topN) {
		out.TopExpenseCategoriesMonth = append(out.TopExpenseCategoriesMonth, CategoryTotal{
			ID:    grp.CategoryID,
			Name:  grp.Name,
			Total: ledger.Money(grp.Total),
		})
	}
	for _, c := range categories {
		out.Categories = append(out.Categories, ContextCategory{ID: c.ID, Name: c.Name, IsSystem: c.IsSystem})
	}
	return out, nil
}
