package database

import (
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"admissions_backend/internals/configs"
	"admissions_backend/internals/logger"
)

var DB *gorm.DB

// DSN builds the postgres URL from DB_* env, with a server-side statement timeout.
func DSN() string {
	q := url.Values{}
	q.Set("sslmode", configs.GetEnv("DB_SSLMODE", "disable"))
	q.Set("application_name", "admissions")
	q.Set("options", "-c statement_timeout="+configs.GetEnv("DB_STATEMENT_TIMEOUT_MS", "5000"))

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(configs.GetEnv("DB_USER"), configs.GetEnv("DB_PASSWORD")),
		Host:     fmt.Sprintf("%s:%s", configs.GetEnv("DB_HOST", "localhost"), configs.GetEnv("DB_PORT", "5432")),
		Path:     "/" + configs.GetEnv("DB_NAME", "admissions"),
		RawQuery: q.Encode(),
	}
	return u.String()
}

func ConnectDB() {
	logger.Info("connecting to postgres", zap.String("host", configs.GetEnv("DB_HOST", "localhost")))

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  DSN(),
		PreferSimpleProtocol: true, // PgBouncer transaction pooling
	}), &gorm.Config{
		Logger:         configs.NewGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	DB = db
	logger.Info("db connected")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		logger.Warn("pool tune failed", zap.Error(err))
		return
	}
	sqlDB.SetMaxOpenConns(configs.GetEnvInt("DB_MAX_OPEN", 20))
	sqlDB.SetMaxIdleConns(configs.GetEnvInt("DB_MAX_IDLE", 10))
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := Ping(); err != nil {
			logger.Warn("warm-up ping failed", zap.Error(err))
		}
	}()
}

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func Close() {
	if DB == nil {
		return
	}
	if sqlDB, err := DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
