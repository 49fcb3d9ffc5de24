package models

import (
	"time"

	"gorm.io/datatypes"
)

// DefaultPlanTemperature 计划默认温度
const DefaultPlanTemperature = 0.4

// AIPlan 保存的 AI 理财计划
type AIPlan struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	Title       string         `json:"title" gorm:"size:200;not null"`
	Template    string         `json:"template" gorm:"size:60"`
	Objective   string         `json:"objective" gorm:"size:300"`
	Spec        datatypes.JSON `json:"spec" swaggertype:"object"`
	Model       string         `json:"model" gorm:"size:60"`
	Temperature float64        `json:"temperature" gorm:"default:0.4"`
	Tokens      int            `json:"tokens" gorm:"default:0"`
	CreatedAt   time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time      `json:"updated_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName 设置表名
func (AIPlan) TableName() string {
	return "ai_plans"
}
