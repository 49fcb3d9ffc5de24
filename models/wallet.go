package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// 钱包类型
const (
	WalletKindChecking   = "checking"
	WalletKindSavings    = "savings"
	WalletKindCash       = "cash"
	WalletKindCredit     = "credit"
	WalletKindInvestment = "investment"
	WalletKindOther      = "other"
)

// DefaultWalletColor 钱包默认颜色
const DefaultWalletColor = "#3B82F6"

// WalletKinds 所有合法的钱包类型
func WalletKinds() []string {
	return []string{
		WalletKindChecking,
		WalletKindSavings,
		WalletKindCash,
		WalletKindCredit,
		WalletKindInvestment,
		WalletKindOther,
	}
}

// IsValidWalletKind 校验钱包类型
func IsValidWalletKind(kind string) bool {
	for _, k := range WalletKinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// Wallet 钱包/账户
type Wallet struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	UserID         uint            `json:"user_id" gorm:"index;not null"`
	Name           string          `json:"name" gorm:"size:60;not null"`
	Kind           string          `json:"kind" gorm:"size:20;not null;default:checking"`
	InitialBalance decimal.Decimal `json:"initial_balance" gorm:"type:decimal(12,2);not null;default:0"`
	Color          string          `json:"color" gorm:"size:7;default:#3B82F6"`
	IsArchived     bool            `json:"is_archived" gorm:"default:false;index"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName 设置表名
func (Wallet) TableName() string {
	return "wallets"
}
