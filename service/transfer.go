package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"fintrack/database"
	"fintrack/events"
	"fintrack/ledger"
	"fintrack/logger"
	"fintrack/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 转账校验提示
const (
	MsgInvalidAmount     = "Valor inválido."
	MsgNonPositiveAmount = "Valor deve ser maior que zero."
	MsgMissingWallets    = "Informe carteiras de origem e destino."
	MsgSameWallet        = "Carteiras de origem e destino devem ser diferentes."
	MsgInvalidDate       = "Data inválida."

	MaxDescriptionLength = 140
)

// TransferInput 转账请求
type TransferInput struct {
	FromWalletID uint
	ToWalletID   uint
	Amount       string
	Date         string
	Description  string
}

// TransferResult 转账生成的两条交易
type TransferResult struct {
	Expense models.Transaction `json:"expense"`
	Income  models.Transaction `json:"income"`
}

// Transfers 钱包间转账
type Transfers struct {
	db     *gorm.DB
	loc    *time.Location
	now    func() time.Time
	events events.Publisher
	log    *logger.Logger
}

// NewTransfers 创建转账服务，publisher 可为空
func NewTransfers(db *gorm.DB, loc *time.Location, publisher events.Publisher) *Transfers {
	if loc == nil {
		loc = time.Local
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Transfers{db: db, loc: loc, now: time.Now, events: publisher, log: logger.Component("transfer")}
}

// ParseAmount 解析金额并转换为校验错误
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := ledger.ParseAmount(raw)
	switch {
	case errors.Is(err, ledger.ErrNonPositiveAmount):
		return decimal.Zero, NewValidationError(MsgNonPositiveAmount)
	case err != nil:
		return decimal.Zero, NewValidationError(MsgInvalidAmount)
	}
	return amount, nil
}

// TruncateDescription 去除首尾空白并截断到 140 个字符
func TruncateDescription(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= MaxDescriptionLength {
		return s
	}
	return string([]rune(s)[:MaxDescriptionLength])
}

// Execute 校验后在同一个数据库事务中写入支出与收入两条记录
func (t *Transfers) Execute(ctx context.Context, userID uint, in TransferInput) (*TransferResult, error) {
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	if in.FromWalletID == 0 || in.ToWalletID == 0 {
		return nil, NewValidationError(MsgMissingWallets)
	}
	if in.FromWalletID == in.ToWalletID {
		return nil, NewValidationError(MsgSameWallet)
	}

	db := t.db.WithContext(ctx)
	var count int64
	err = db.Model(&models.Wallet{}).
		Where("id IN ? AND user_id = ? AND is_archived = ?", []uint{in.FromWalletID, in.ToWalletID}, userID, false).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("查询钱包失败: %w", err)
	}
	if count != 2 {
		return nil, ErrWalletNotFound
	}

	date := t.now().In(t.loc)
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, t.loc)
	if strings.TrimSpace(in.Date) != "" {
		date, err = ledger.ParseDate(in.Date, t.loc)
		if err != nil {
			return nil, NewValidationError(MsgInvalidDate)
		}
	}

	description := TruncateDescription(in.Description)
	if description == "" {
		description = models.TransferCategoryName
	}

	category, err := database.EnsureTransferCategory(db)
	if err != nil {
		return nil, err
	}

	out := &TransferResult{
		Expense: models.Transaction{
			UserID:      userID,
			WalletID:    in.FromWalletID,
			Type:        models.TransactionTypeExpense,
			CategoryID:  &category.ID,
			Amount:      amount,
			Date:        date,
			Description: description,
		},
		Income: models.Transaction{
			UserID:      userID,
			WalletID:    in.ToWalletID,
			Type:        models.TransactionTypeIncome,
			CategoryID:  &category.ID,
			Amount:      amount,
			Date:        date,
			Description: description,
		},
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&out.Expense).Error; err != nil {
			return err
		}
		return tx.Create(&out.Income).Error
	})
	if err != nil {
		return nil, fmt.Errorf("转账失败: %w", err)
	}

	evt := events.Transferred{
		UserID:       userID,
		FromWalletID: in.FromWalletID,
		ToWalletID:   in.ToWalletID,
		Amount:       ledger.Money(amount),
		Date:         date.Format("2006-01-02"),
	}
	if err := t.events.Publish(ctx, events.RoutingTransferred, evt); err != nil {
		t.log.WarnContext(ctx, "发布转账事件失败", "error", err, "user_id", userID)
	}
	return out, nil
}
