package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"automarket/internal/config"
	"automarket/internal/model"
)

// InitMySQL opens the MySQL connection pool and migrates the schema.
func InitMySQL(cfg *config.MySQLConfig) *gorm.DB {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		logrus.Fatalf("failed to connect to MySQL: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logrus.Fatalf("failed to access underlying DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	err = db.AutoMigrate(
		&model.User{},
		&model.Car{},
		&model.Part{},
		&model.PricingEntry{},
		&model.BalanceTransaction{},
		&model.OutboxMessage{},
	)
	if err != nil {
		logrus.Fatalf("failed to migrate schema: %v", err)
	}

	logrus.Info("MySQL connected")
	return db
}
