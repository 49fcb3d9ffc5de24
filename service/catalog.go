package service

import (
	"context"
	"strings"

	"fintrack/models"

	"gorm.io/gorm"
)

// WalletNameTaken 同一用户未归档钱包中是否已存在同名（忽略大小写）
func WalletNameTaken(ctx context.Context, db *gorm.DB, userID uint, name string, excludeID uint) (bool, error) {
	var count int64
	q := db.WithContext(ctx).Model(&models.Wallet{}).
		Where("user_id = ? AND is_archived = ? AND LOWER(name) = ?", userID, false, strings.ToLower(strings.TrimSpace(name)))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CategoryNameTaken 同一作用域（用户或全局）未归档类别中是否已存在同名（忽略大小写）
func CategoryNameTaken(ctx context.Context, db *gorm.DB, userID *uint, name string, excludeID uint) (bool, error) {
	var count int64
	q := db.WithContext(ctx).Model(&models.Category{}).
		Where("is_archived = ? AND LOWER(name) = ?", false, strings.ToLower(strings.TrimSpace(name)))
	if userID == nil {
		q = q.Where("user_id IS NULL")
	} else {
		q = q.Where("user_id = ?", *userID)
	}
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
