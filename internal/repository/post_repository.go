package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/postboard/internal/model"
)

// PostRepository 帖子仓储接口
type PostRepository interface {
	// Create 创建帖子并回填作者
	Create(ctx context.Context, post *model.Post) error

	// Update 按字段部分更新并返回最新记录（含作者）
	Update(ctx context.Context, id int64, fields map[string]interface{}) (*model.Post, error)

	// Delete 删除帖子，不存在时返回 ErrNotFound
	Delete(ctx context.Context, id int64) error

	// DeleteByAuthor 删除某作者的全部帖子
	DeleteByAuthor(ctx context.Context, authorID int64) (int64, error)

	// FindByID 查询帖子（含作者）
	FindByID(ctx context.Context, id int64) (*model.Post, error)

	// List 查询全部帖子及作者，按创建时间倒序
	List(ctx context.Context) ([]model.Post, error)

	// Count 统计帖子数量
	Count(ctx context.Context) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	if err := r.db.WithContext(ctx).Omit("Author").Create(post).Error; err != nil {
		return translate(err)
	}
	var author model.User
	if err := r.db.WithContext(ctx).Where("id = ?", post.AuthorID).First(&author).Error; err != nil {
		return translate(err)
	}
	post.Author = &author
	return nil
}

func (r *postRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) (*model.Post, error) {
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.FindByID(ctx, id)
}

func (r *postRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Post{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postRepository) DeleteByAuthor(ctx context.Context, authorID int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("author_id = ?", authorID).Delete(&model.Post{})
	return res.RowsAffected, translate(res.Error)
}

func (r *postRepository) FindByID(ctx context.Context, id int64) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&post).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, translate(err)
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).Count(&count).Error
	return count, err
}
