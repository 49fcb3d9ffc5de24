package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MonthlyPoint 月度收支
type MonthlyPoint struct {
	Year     int    `json:"year"`
	MonthNum int    `json:"month_num"`
	Month    string `json:"month"`
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
}

// BalancePoint 月末累计余额
type BalancePoint struct {
	Year     int    `json:"year"`
	MonthNum int    `json:"month_num"`
	Month    string `json:"month"`
	Balance  string `json:"balance"`
}

type bucket struct {
	income   decimal.Decimal
	expenses decimal.Decimal
}

func bucketize(w Window, entries []Entry) map[YearMonth]*bucket {
	buckets := make(map[YearMonth]*bucket, len(w.Months))
	for _, ym := range w.Months {
		buckets[ym] = &bucket{income: decimal.Zero, expenses: decimal.Zero}
	}
	for _, e := range entries {
		b, ok := buckets[YearMonth{Year: e.Date.Year(), Month: int(e.Date.Month())}]
		if !ok {
			continue
		}
		switch e.Type {
		case TypeIncome:
			b.income = b.income.Add(e.Amount)
		case TypeExpense:
			b.expenses = b.expenses.Add(e.Amount)
		}
	}
	return buckets
}

// Monthly 按月汇总收入与支出，空月份为 "0.00"
func Monthly(w Window, entries []Entry) []MonthlyPoint {
	buckets := bucketize(w, entries)
	out := make([]MonthlyPoint, 0, len(w.Months))
	for _, ym := range w.Months {
		b := buckets[ym]
		out = append(out, MonthlyPoint{
			Year:     ym.Year,
			MonthNum: ym.Month,
			Month:    MonthLabel(ym.Month),
			Income:   Money(b.income),
			Expenses: Money(b.expenses),
		})
	}
	return out
}

// BalanceSeries 从期初余额开始逐月累加有符号金额
// 最后一个点 = opening + 窗口内所有有符号金额
func BalanceSeries(w Window, opening decimal.Decimal, entries []Entry) []BalancePoint {
	buckets := bucketize(w, entries)
	running := opening
	out := make([]BalancePoint, 0, len(w.Months))
	for _, ym := range w.Months {
		b := buckets[ym]
		running = running.Add(b.income).Sub(b.expenses)
		out = append(out, BalancePoint{
			Year:     ym.Year,
			MonthNum: ym.Month,
			Month:    MonthLabel(ym.Month),
			Balance:  Money(running),
		})
	}
	return out
}

// UncategorizedLabel 无类别分组的显示名
const UncategorizedLabel = "Sem categoria"

// Group 按类别聚合的金额
type Group struct {
	CategoryID *uint
	Name       string
	Total      decimal.Decimal
}

// Slice 带占比的分组
type Slice struct {
	ID      *uint  `json:"id,omitempty"`
	Name    string `json:"name"`
	Value   string `json:"value"`
	Percent int    `json:"percent"`
}

// Breakdown 按金额降序，名称为空的归入未分类
func Breakdown(groups []Group) []Group {
	out := make([]Group, len(groups))
	copy(out, groups)
	for i := range out {
		if out[i].CategoryID == nil || out[i].Name == "" {
			out[i].Name = UncategorizedLabel
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.GreaterThan(out[j].Total)
	})
	return out
}

// WithPercentages 计算各组占比（四舍五入取整），总额为 0 时全部为 0
func WithPercentages(groups []Group) []Slice {
	total := decimal.Zero
	for _, g := range groups {
		total = total.Add(g.Total)
	}
	out := make([]Slice, 0, len(groups))
	for _, g := range groups {
		pct := 0
		if !total.IsZero() {
			pct = int(g.Total.Div(total).Mul(hundred).Round(0).IntPart())
		}
		out = append(out, Slice{ID: g.CategoryID, Name: g.Name, Value: Money(g.Total), Percent: pct})
	}
	return out
}

// Top 取前 n 个分组
func Top(groups []Group, n int) []Group {
	if n <= 0 || len(groups) <= n {
		return groups
	}
	return groups[:n]
}
