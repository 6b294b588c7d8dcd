package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/postboard/internal/model"
)

// AutoMigrate 初始化 users / posts 表结构
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Post{}); err != nil {
		return fmt.Errorf("failed to migrate board tables: %w", err)
	}
	return nil
}
