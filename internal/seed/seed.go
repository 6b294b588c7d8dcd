// Package seed loads demo data into an empty or existing board database.
package seed

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/postboard/internal/model"
	"github.com/d60-Lab/postboard/pkg/logger"
)

func strPtr(s string) *string { return &s }

// Users returns the demo users with their posts.
func Users() []model.User {
	return []model.User{
		{
			Email: "alice@example.com",
			Name:  strPtr("Alice"),
			Posts: []model.Post{
				{Title: "My first post", Content: "This is my first post on the blog", Published: true},
				{Title: "Draft post", Content: "This post is not published yet"},
			},
		},
		{
			Email: "bob@example.com",
			Name:  strPtr("Bob"),
			Posts: []model.Post{
				{Title: "Learning Go", Content: "Go is great with gorm and SQLite", Published: true},
			},
		},
	}
}

// Run clears posts and users and inserts the demo data in one transaction.
func Run(ctx context.Context, db *gorm.DB) ([]model.User, error) {
	users := Users()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.User{}).Error; err != nil {
			return err
		}
		return tx.Create(&users).Error
	})
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		logger.Info("seeded user", zap.Int64("id", u.ID), zap.String("email", u.Email), zap.Int("posts", len(u.Posts)))
	}
	return users, nil
}
