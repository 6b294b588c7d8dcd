package model

import "time"

// Post 帖子，authorId 创建后不可变更
type Post struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	Content   string    `json:"content" gorm:"type:text;not null;default:''"`
	Published bool      `json:"published" gorm:"not null;index:idx_posts_published"`
	AuthorID  int64     `json:"authorId" gorm:"not null;index:idx_posts_author"`
	Author    *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	CreatedAt time.Time `json:"createdAt" gorm:"index:idx_posts_created"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Post) TableName() string { return "posts" }
