package database

import (
	"examprep_backend/internal/config"
	"examprep_backend/internal/model"
	"examprep_backend/internal/util"
	"examprep_backend/pkg/logger"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DSN 按驱动拼接连接串
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.Driver == util.DriverPostgres {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)
}

func logLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case util.DriverPostgres:
		dialector = postgres.Open(DSN(cfg))
	default:
		dialector = mysql.Open(DSN(cfg))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Log.Info("Database connection established",
		zap.String("driver", cfg.Driver),
		zap.String("host", cfg.Host),
		zap.String("db", cfg.DBName),
	)
	return db, nil
}

// Models 需要迁移的全部表
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Test{},
		&model.Question{},
		&model.QuestionOption{},
		&model.QuestionMedia{},
		&model.TestQuestion{},
		&model.Plan{},
		&model.UserSubscription{},
		&model.Payment{},
		&model.Attempt{},
		&model.Session{},
		&model.AttemptAnswer{},
		&model.ProctoringEvent{},
		&model.LeaderboardEntry{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	logger.Log.Info("Database migration completed")

	// 默认套餐
	var count int64
	db.Model(&model.Plan{}).Count(&count)
	if count == 0 {
		defaultPlans := []model.Plan{
			{Code: "basic", Name: "Basic", Tier: 1, ChapterTestLimit: 30, SubjectTestLimit: 10, MockTestLimit: 2},
			{Code: "pro", Name: "Pro", Tier: 2, ChapterTestLimit: model.UnlimitedQuota, SubjectTestLimit: 50, MockTestLimit: 10},
			{Code: "elite", Name: "Elite", Tier: 3, ChapterTestLimit: model.UnlimitedQuota, SubjectTestLimit: model.UnlimitedQuota, MockTestLimit: model.UnlimitedQuota},
		}
		for _, p := range defaultPlans {
			if err := db.Create(&p).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
