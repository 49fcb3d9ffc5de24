// Package ledger 余额与聚合计算，不依赖数据库
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// 交易类型
const (
	TypeExpense = "expense"
	TypeIncome  = "income"
)

// KindCredit 信用卡类钱包：初始余额表示欠款
const KindCredit = "credit"

var (
	// ErrInvalidAmount 金额无法解析
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNonPositiveAmount 金额必须大于零
	ErrNonPositiveAmount = errors.New("amount must be positive")

	hundred = decimal.NewFromInt(100)
)

// IsValidType 校验交易类型
func IsValidType(t string) bool {
	return t == TypeExpense || t == TypeIncome
}

// ParseAmount 解析正金额，保留两位小数
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, ErrNonPositiveAmount
	}
	return d, nil
}

// SignedAmount 收入为正，支出为负
func SignedAmount(txType string, amount decimal.Decimal) decimal.Decimal {
	if txType == TypeExpense {
		return amount.Neg()
	}
	return amount
}

// Entry 参与聚合的最小交易信息
type Entry struct {
	Type   string
	Amount decimal.Decimal
	Date   time.Time
}

// SignedSum 有符号合计，空集合为 0
func SignedSum(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(SignedAmount(e.Type, e.Amount))
	}
	return total
}

// CurrentBalance 钱包当前余额
// 普通钱包: initial + sum；信用卡: sum - initial
func CurrentBalance(kind string, signedSum, initial decimal.Decimal) decimal.Decimal {
	if kind == KindCredit {
		return signedSum.Sub(initial)
	}
	return initial.Add(signedSum)
}

// WalletBase 计算期初余额所需的钱包信息
type WalletBase struct {
	Kind    string
	Initial decimal.Decimal
}

// OpeningBase 非信用卡初始余额之和减去信用卡初始余额之和
func OpeningBase(wallets []WalletBase) decimal.Decimal {
	total := decimal.Zero
	for _, w := range wallets {
		total = total.Add(CurrentBalance(w.Kind, decimal.Zero, w.Initial))
	}
	return total
}

// Money 金额格式化为两位小数字符串
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ChangePct 环比变化百分比，上期为 0 时返回 nil
func ChangePct(current, previous decimal.Decimal) *float64 {
	if previous.IsZero() {
		return nil
	}
	pct, _ := current.Sub(previous).Div(previous).Mul(hundred).Round(2).Float64()
	return &pct
}
