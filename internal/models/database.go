package models

import (
	"fmt"

	"github.com/promptdir/backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&User{},
		&Prompt{},
		&Category{},
		&Blog{},
		&Favorite{},
		&PromptExecution{},
		&LLMConfig{},
		&SystemLog{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates the default taxonomy and a fallback LLM config
// if the tables are empty. Idempotent: existing rows are left untouched.
func SeedDefaultData(aiCfg *config.AIConfig) error {
	defaultCategories := []Category{
		{CategoryID: "sermon-prep", Name: "Sermon Preparation", Description: "Outlines, illustrations and exegesis helpers", Icon: "book-open"},
		{CategoryID: "youth-ministry", Name: "Youth Ministry", Description: "Lessons and activities for youth groups", Icon: "users"},
		{CategoryID: "worship", Name: "Worship Planning", Description: "Set lists, liturgy and service flow", Icon: "music"},
		{CategoryID: "outreach", Name: "Outreach & Communication", Description: "Newsletters, social posts and announcements", Icon: "megaphone"},
		{CategoryID: "admin", Name: "Church Administration", Description: "Scheduling, volunteer coordination and operations", Icon: "clipboard"},
	}

	for _, cat := range defaultCategories {
		var count int64
		DB.Model(&Category{}).Where("category_id = ?", cat.CategoryID).Count(&count)
		if count == 0 {
			if err := DB.Create(&cat).Error; err != nil {
				return err
			}
		}
	}

	// Fallback execution provider from config, so execution works before
	// any LLM config has been created through the admin surface.
	if aiCfg != nil && aiCfg.APIKey != "" {
		var llmCount int64
		DB.Model(&LLMConfig{}).Count(&llmCount)
		if llmCount == 0 {
			fallback := LLMConfig{
				Name:      "default",
				Provider:  "openai",
				BaseURL:   aiCfg.BaseURL,
				APIKey:    aiCfg.APIKey,
				Model:     aiCfg.Model,
				IsDefault: true,
				IsActive:  true,
			}
			if err := DB.Create(&fallback).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
