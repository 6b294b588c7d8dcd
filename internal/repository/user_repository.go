package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/postboard/internal/model"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	// Create 创建用户，邮箱重复时返回 ErrDuplicate
	Create(ctx context.Context, user *model.User) error

	// Update 按字段部分更新并返回最新记录（含帖子）
	Update(ctx context.Context, id int64, fields map[string]interface{}) (*model.User, error)

	// FindByID 查询用户，withPosts 为 true 时预加载帖子
	FindByID(ctx context.Context, id int64, withPosts bool) (*model.User, error)

	// List 查询全部用户及其帖子，按创建时间倒序
	List(ctx context.Context) ([]model.User, error)

	// DeleteWithPosts 在同一事务内先删除帖子再删除用户
	DeleteWithPosts(ctx context.Context, id int64) (deletedPosts int64, err error)

	// Count 统计用户数量
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translate(err)
	}
	if user.Posts == nil {
		user.Posts = []model.Post{}
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) (*model.User, error) {
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.FindByID(ctx, id, true)
}

func (r *userRepository) FindByID(ctx context.Context, id int64, withPosts bool) (*model.User, error) {
	q := r.db.WithContext(ctx)
	if withPosts {
		q = q.Preload("Posts", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC, id DESC") })
	}
	var user model.User
	if err := q.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	if withPosts && user.Posts == nil {
		user.Posts = []model.Post{}
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Preload("Posts", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC, id DESC") }).
		Order("created_at DESC, id DESC").
		Find(&users).Error
	if err != nil {
		return nil, translate(err)
	}
	for i := range users {
		if users[i].Posts == nil {
			users[i].Posts = []model.Post{}
		}
	}
	return users, nil
}

func (r *userRepository) DeleteWithPosts(ctx context.Context, id int64) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := NewPostRepository(tx).DeleteByAuthor(ctx, id)
		if err != nil {
			return err
		}
		deleted = n

		res := tx.Where("id = ?", id).Delete(&model.User{})
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error
	return count, err
}
