package models

import (
	"time"

	"fintrack/ledger"

	"github.com/shopspring/decimal"
)

// 交易类型
const (
	TransactionTypeExpense = ledger.TypeExpense
	TransactionTypeIncome  = ledger.TypeIncome
)

// Transaction 交易记录
type Transaction struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"user_id" gorm:"index;not null"`
	WalletID    uint            `json:"wallet_id" gorm:"index;not null"`
	Type        string          `json:"type" gorm:"size:10;not null;index"`
	CategoryID  *uint           `json:"category_id" gorm:"index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Date        time.Time       `json:"date" gorm:"type:date;not null;index"`
	Description string          `json:"description" gorm:"size:140"`
	IsArchived  bool            `json:"is_archived" gorm:"default:false;index"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	User     *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Wallet   *Wallet   `json:"-" gorm:"foreignKey:WalletID;constraint:OnDelete:CASCADE"`
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}

// SignedAmount 收入为正，支出为负
func (t Transaction) SignedAmount() decimal.Decimal {
	return ledger.SignedAmount(t.Type, t.Amount)
}
