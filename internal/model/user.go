package model

import "time"

// User 看板用户，拥有零或多篇帖子
type User struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      *string   `json:"name" gorm:"type:varchar(255)"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex:ux_users_email;not null"`
	Posts     []Post    `json:"posts" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"createdAt" gorm:"index:idx_users_created"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// DisplayName returns the name, falling back to the email when unset.
func (u User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}
