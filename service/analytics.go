package service

import (
	"context"
	"time"

	"fintrack/ledger"
	"fintrack/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	signedSumSQL = "COALESCE(SUM(CASE WHEN transactions.type = 'income' THEN transactions.amount ELSE -transactions.amount END), 0)"
	incomeSumSQL = "COALESCE(SUM(CASE WHEN transactions.type = 'income' THEN transactions.amount ELSE 0 END), 0)"
	expenseSQL   = "COALESCE(SUM(CASE WHEN transactions.type = 'expense' THEN transactions.amount ELSE 0 END), 0)"

	// DefaultRecentLimit 最近交易默认条数
	DefaultRecentLimit = 10
	// MaxRecentLimit 最近交易最大条数
	MaxRecentLimit = 50
	// MaxContextCategories 上下文中类别列表上限
	MaxContextCategories = 200
)

// Analytics 基于数据库的聚合查询
// 所有查询按用户隔离并排除已归档交易；收支统计同时排除转账
type Analytics struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

// NewAnalytics 创建聚合服务
func NewAnalytics(db *gorm.DB, loc *time.Location) *Analytics {
	if loc == nil {
		loc = time.Local
	}
	return &Analytics{db: db, loc: loc, now: time.Now}
}

// WithClock 替换当前时间函数
func (a *Analytics) WithClock(now func() time.Time) *Analytics {
	a.now = now
	return a
}

// Today 业务时区的今天零点
func (a *Analytics) Today() time.Time {
	t := a.now().In(a.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, a.loc)
}

// Location 业务时区
func (a *Analytics) Location() *time.Location {
	return a.loc
}

// MonthTotals 收入与支出合计
type MonthTotals struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

// WalletBalance 钱包及其当前余额
type WalletBalance struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	Color          string `json:"color"`
	InitialBalance string `json:"initial_balance"`
	CurrentBalance string `json:"current_balance"`

	current decimal.Decimal
}

// Current 当前余额
func (w WalletBalance) Current() decimal.Decimal {
	return w.current
}

func (a *Analytics) transactions(ctx context.Context, userID uint, walletID *uint) *gorm.DB {
	q := a.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("transactions.user_id = ? AND transactions.is_archived = ?", userID, false)
	if walletID != nil {
		q = q.Where("transactions.wallet_id = ?", *walletID)
	}
	return q
}

func (a *Analytics) excludeTransfers(ctx context.Context, q *gorm.DB) *gorm.DB {
	transfer := a.db.WithContext(ctx).Model(&models.Category{}).Select("id").
		Where("user_id IS NULL AND is_system = ? AND name = ?", true, models.TransferCategoryName)
	return q.Where("(transactions.category_id IS NULL OR transactions.category_id NOT IN (?))", transfer)
}

func between(q *gorm.DB, start, end time.Time) *gorm.DB {
	return q.Where("transactions.date >= ? AND transactions.date <= ?", ledger.DayKey(start), ledger.DayKey(end))
}

// MonthTotals 区间内的收入与支出（不含转账）
func (a *Analytics) MonthTotals(ctx context.Context, userID uint, walletID *uint, start, end time.Time) (MonthTotals, error) {
	var row struct {
		Income   decimal.Decimal
		Expenses decimal.Decimal
	}
	q := between(a.excludeTransfers(ctx, a.transactions(ctx, userID, walletID)), start, end)
	if err := q.Select(incomeSumSQL + " AS income, " + expenseSQL + " AS expenses").Scan(&row).Error; err != nil {
		return MonthTotals{}, err
	}
	return MonthTotals{Income: row.Income, Expenses: row.Expenses}, nil
}

// SignedSum 有符号合计（含转账），before 非零时只统计该日期之前
func (a *Analytics) SignedSum(ctx context.Context, userID uint, walletIDs []uint, before time.Time) (decimal.Decimal, error) {
	q := a.transactions(ctx, userID, nil).Where("transactions.wallet_id IN ?", walletIDs)
	if !before.IsZero() {
		q = q.Where("transactions.date < ?", ledger.DayKey(before))
	}
	return scanTotal(q)
}

// OperatingSum 有符号合计（不含转账）
func (a *Analytics) OperatingSum(ctx context.Context, userID uint, walletIDs []uint) (decimal.Decimal, error) {
	q := a.transactions(ctx, userID, nil).Where("transactions.wallet_id IN ?", walletIDs)
	return scanTotal(a.excludeTransfers(ctx, q))
}

func scanTotal(q *gorm.DB) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	if err := q.Select(signedSumSQL + " AS total").Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// ActiveWallets 未归档钱包，按名称排序；walletID 非空时只返回该钱包
func (a *Analytics) ActiveWallets(ctx context.Context, userID uint, walletID *uint) ([]models.Wallet, error) {
	var wallets []models.Wallet
	q := a.db.WithContext(ctx).Where("user_id = ? AND is_archived = ?", userID, false)
	if walletID != nil {
		q = q.Where("id = ?", *walletID)
	}
	if err := q.Order("name ASC").Find(&wallets).Error; err != nil {
		return nil, err
	}
	return wallets, nil
}

// WalletBalances 每个未归档钱包的当前余额（含转账）
func (a *Analytics) WalletBalances(ctx context.Context, userID uint) ([]WalletBalance, error) {
	wallets, err := a.ActiveWallets(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	var sums []struct {
		WalletID uint
		Total    decimal.Decimal
	}
	if len(wallets) > 0 {
		err := a.transactions(ctx, userID, nil).
			Select("transactions.wallet_id AS wallet_id, " + signedSumSQL + " AS total").
			Group("transactions.wallet_id").
			Scan(&sums).Error
		if err != nil {
			return nil, err
		}
	}
	byWallet := make(map[uint]decimal.Decimal, len(sums))
	for _, s := range sums {
		byWallet[s.WalletID] = s.Total
	}

	out := make([]WalletBalance, 0, len(wallets))
	for _, w := range wallets {
		current := ledger.CurrentBalance(w.Kind, byWallet[w.ID], w.InitialBalance)
		out = append(out, WalletBalance{
			ID:             w.ID,
			Name:           w.Name,
			Kind:           w.Kind,
			Color:          w.Color,
			InitialBalance: ledger.Money(w.InitialBalance),
			CurrentBalance: ledger.Money(current),
			current:        current,
		})
	}
	return out, nil
}

// TotalBalance 所有未归档钱包当前余额之和
func TotalBalance(balances []WalletBalance) decimal.Decimal {
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.current)
	}
	return total
}

// Stats 汇总卡片
type Stats struct {
	AsOf     string     `json:"as_of"`
	Period   Period     `json:"period"`
	Balance  string     `json:"balance"`
	NetWorth string     `json:"net_worth"`
	Income   StatChange `json:"income"`
	Expenses StatChange `json:"expenses"`
}

// Period 日期区间
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// StatChange 本月与上月对比
type StatChange struct {
	Current   string   `json:"current"`
	Previous  string   `json:"previous"`
	ChangePct *float64 `json:"change_pct"`
}

func newPeriod(start, end time.Time) Period {
	return Period{Start: start.Format("2006-01-02"), End: end.Format("2006-01-02")}
}

// Stats 本月/上月收支、余额与净资产
func (a *Analytics) Stats(ctx context.Context, userID uint, walletID *uint) (*Stats, error) {
	today := a.Today()
	curStart, curEnd := ledger.MonthBounds(today.Year(), int(today.Month()), a.loc)
	py, pm := ledger.PreviousMonth(today.Year(), int(today.Month()))
	prevStart, prevEnd := ledger.MonthBounds(py, pm, a.loc)

	cur, err := a.MonthTotals(ctx, userID, walletID, curStart, curEnd)
	if err != nil {
		return nil, err
	}
	prev, err := a.MonthTotals(ctx, userID, walletID, prevStart, prevEnd)
	if err != nil {
		return nil, err
	}

	wallets, err := a.ActiveWallets(ctx, userID, walletID)
	if err != nil {
		return nil, err
	}
	ids := walletIDs(wallets)
	sum, err := a.SignedSum(ctx, userID, ids, time.Time{})
	if err != nil {
		return nil, err
	}
	netWorth := ledger.OpeningBase(walletBases(wallets)).Add(sum)
	balance, err := a.OperatingSum(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	return &Stats{
		AsOf:     today.Format("2006-01-02"),
		Period:   newPeriod(curStart, curEnd),
		Balance:  ledger.Money(balance),
		NetWorth: ledger.Money(netWorth),
		Income: StatChange{
			Current:   ledger.Money(cur.Income),
			Previous:  ledger.Money(prev.Income),
			ChangePct: ledger.ChangePct(cur.Income, prev.Income),
		},
		Expenses: StatChange{
			Current:   ledger.Money(cur.Expenses),
			Previous:  ledger.Money(prev.Expenses),
			ChangePct: ledger.ChangePct(cur.Expenses, prev.Expenses),
		},
	}, nil
}

type entryRow struct {
	Type   string
	Amount decimal.Decimal
	Date   time.Time
}

func toEntries(rows []entryRow) []ledger.Entry {
	out := make([]ledger.Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, ledger.Entry{Type: r.Type, Amount: r.Amount, Date: r.Date})
	}
	return out
}

// Monthly 最近 months 个月的收支（不含转账）
func (a *Analytics) Monthly(ctx context.Context, userID uint, months int, walletID *uint) ([]ledger.MonthlyPoint, error) {
	w := ledger.MonthWindow(a.Today(), months)

	var rows []entryRow
	q := between(a.excludeTransfers(ctx, a.transactions(ctx, userID, walletID)), w.Start, w.End)
	if err := q.Select("transactions.type, transactions.amount, transactions.date").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return ledger.Monthly(w, toEntries(rows)), nil
}

// BalanceSeriesResult 余额序列
type BalanceSeriesResult struct {
	OpeningBalance string                `json:"opening_balance"`
	Months         []ledger.BalancePoint `json:"months"`
}

// BalanceSeries 月末余额序列
// 期初 = 钱包初始余额基数 + 窗口开始前的有符号合计；转账计入余额
func (a *Analytics) BalanceSeries(ctx context.Context, userID uint, months int, walletID *uint) (*BalanceSeriesResult, error) {
	w := ledger.MonthWindow(a.Today(), months)

	wallets, err := a.ActiveWallets(ctx, userID, walletID)
	if err != nil {
		return nil, err
	}
	ids := walletIDs(wallets)

	prior, err := a.SignedSum(ctx, userID, ids, w.Start)
	if err != nil {
		return nil, err
	}
	opening := ledger.OpeningBase(walletBases(wallets)).Add(prior)

	var rows []entryRow
	q := between(a.transactions(ctx, userID, nil).Where("transactions.wallet_id IN ?", ids), w.Start, w.End)
	if err := q.Select("transactions.type, transactions.amount, transactions.date").Scan(&rows).Error; err != nil {
		return nil, err
	}

	return &BalanceSeriesResult{
		OpeningBalance: ledger.Money(opening),
		Months:         ledger.BalanceSeries(w, opening, toEntries(rows)),
	}, nil
}

// Breakdown 按类别汇总结果
type Breakdown struct {
	Period Period         `json:"period"`
	Total  string         `json:"total"`
	Items  []ledger.Slice `json:"items"`
}

// CategoryGroups 区间内按类别汇总指定类型的交易（不含转账），按金额降序
func (a *Analytics) CategoryGroups(ctx context.Context, userID uint, txType string, walletID *uint, start, end time.Time) ([]ledger.Group, error) {
	var rows []struct {
		CategoryID *uint
		Name       *string
		Total      decimal.Decimal
	}
	q := between(a.excludeTransfers(ctx, a.transactions(ctx, userID, walletID)), start, end).
		Joins("LEFT JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.type = ?", txType).
		Select("transactions.category_id AS category_id, categories.name AS name, SUM(transactions.amount) AS total").
		Group("transactions.category_id, categories.name")
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	groups := make([]ledger.Group, 0, len(rows))
	for _, r := range rows {
		g := ledger.Group{CategoryID: r.CategoryID, Total: r.Total}
		if r.Name != nil {
			g.Name = *r.Name
		}
		groups = append(groups, g)
	}
	return ledger.Breakdown(groups), nil
}

// ByCategory 指定月份按类别的收入或支出
func (a *Analytics) ByCategory(ctx context.Context, userID uint, txType string, year, month int, walletID *uint) (*Breakdown, error) {
	start, end := ledger.MonthBounds(year, month, a.loc)
	groups, err := a.CategoryGroups(ctx, userID, txType, walletID, start, end)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, g := range groups {
		total = total.Add(g.Total)
	}
	return &Breakdown{
		Period: newPeriod(start, end),
		Total:  ledger.Money(total),
		Items:  ledger.WithPercentages(groups),
	}, nil
}

// Recent 最近的交易
func (a *Analytics) Recent(ctx context.Context, userID uint, limit int, walletID *uint) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	var list []models.Transaction
	err := a.transactions(ctx, userID, walletID).
		Order("transactions.date DESC, transactions.id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// Categories 用户自有与全局的未归档类别，按名称排序
func (a *Analytics) Categories(ctx context.Context, userID uint, limit int) ([]models.Category, error) {
	var list []models.Category
	q := a.db.WithContext(ctx).
		Where("(user_id = ? OR user_id IS NULL) AND is_archived = ?", userID, false).
		Order("name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&list).Error
	return list, err
}

func walletIDs(wallets []models.Wallet) []uint {
	ids := make([]uint, 0, len(wallets))
	for _, w := range wallets {
		ids = append(ids, w.ID)
	}
	return ids
}

func walletBases(wallets []models.Wallet) []ledger.WalletBase {
	out := make([]ledger.WalletBase, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, ledger.WalletBase{Kind: w.Kind, Initial: w.InitialBalance})
	}
	return out
}
