package models

import (
	"time"
)

// TransferCategoryName 转账使用的全局系统类别
const TransferCategoryName = "Transferência"

// Category 交易类别，UserID 为空表示全局类别
type Category struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     *uint     `json:"user_id" gorm:"index"`
	Name       string    `json:"name" gorm:"size:60;not null"`
	IsSystem   bool      `json:"is_system" gorm:"default:false"`
	IsArchived bool      `json:"is_archived" gorm:"default:false;index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName 设置表名
func (Category) TableName() string {
	return "categories"
}

// IsGlobal 是否为全局类别
func (c Category) IsGlobal() bool {
	return c.UserID == nil
}
