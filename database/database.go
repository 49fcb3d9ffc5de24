package database

import (
	"fmt"
	"net/url"

	"fintrack/config"
	"fintrack/logger"
	"fintrack/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// DSN 构建 MySQL 连接字符串，loc 使用业务时区，与日期计算保持一致
func DSN(cfg *config.Config) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=%s",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
		url.QueryEscape(cfg.Location().String()),
	)
}

// Init 初始化数据库连接
func Init(cfg *config.Config) error {
	dsn := DSN(cfg)

	logLevel := gormlogger.Warn
	if cfg.Server.Mode == "debug" {
		logLevel = gormlogger.Info
	}

	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	logger.Component("database").Info("数据库连接成功", "host", cfg.Database.Host, "db", cfg.Database.DBName)
	return nil
}

// Migrate 自动迁移数据库表并初始化系统数据
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.Category{},
		&models.Transaction{},
		&models.AIPlan{},
	); err != nil {
		return fmt.Errorf("迁移数据表失败: %w", err)
	}
	if _, err := EnsureTransferCategory(db); err != nil {
		return err
	}
	logger.Component("database").Info("数据表迁移完成")
	return nil
}

// EnsureTransferCategory 获取或创建全局系统类别 "Transferência"
func EnsureTransferCategory(db *gorm.DB) (*models.Category, error) {
	var cat models.Category
	err := db.Where("user_id IS NULL AND is_system = ? AND name = ?", true, models.TransferCategoryName).
		Attrs(models.Category{Name: models.TransferCategoryName, IsSystem: true}).
		FirstOrCreate(&cat).Error
	if err != nil {
		return nil, fmt.Errorf("初始化转账类别失败: %w", err)
	}
	return &cat, nil
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return DB
}
