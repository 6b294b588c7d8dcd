package service

import (
	"context"
	"errors"
	"net/url"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/d60-Lab/postboard/internal/event"
	"github.com/d60-Lab/postboard/internal/model"
	"github.com/d60-Lab/postboard/internal/repository"
	"github.com/d60-Lab/postboard/pkg/apperr"
	"github.com/d60-Lab/postboard/pkg/logger"
)

const msgPostNotFound = "Post not found"

// PostService 帖子变更服务，所有失败都以 *apperr.Error 返回
type PostService interface {
	Create(ctx context.Context, form url.Values) (*model.Post, error)
	Update(ctx context.Context, id int64, form url.Values) (*model.Post, error)
	Delete(ctx context.Context, id int64) error
	TogglePublished(ctx context.Context, id int64, published bool) (*model.Post, error)
}

type postService struct {
	posts  repository.PostRepository
	events event.Publisher
}

func NewPostService(posts repository.PostRepository, events event.Publisher) PostService {
	if events == nil {
		events = event.Nop()
	}
	return &postService{posts: posts, events: events}
}

func (s *postService) Create(ctx context.Context, form url.Values) (post *model.Post, err error) {
	ctx, span := startSpan(ctx, "PostService.Create")
	defer func() { endSpan(span, err) }()

	in, err := ParseCreatePost(form)
	if err != nil {
		return nil, err
	}

	post = &model.Post{
		Title:     in.Title,
		Content:   in.Content,
		Published: in.Published,
		AuthorID:  in.AuthorID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		// 作者不存在等存储失败统一作为内部错误
		return nil, s.fail("Error creating post", err, zap.Int64("author_id", in.AuthorID))
	}

	s.events.Publish(ctx, event.Changed(event.EntityPost, event.OpCreated, post.ID))
	return post, nil
}

func (s *postService) Update(ctx context.Context, id int64, form url.Values) (post *model.Post, err error) {
	ctx, span := startSpan(ctx, "PostService.Update", attribute.Int64("post.id", id))
	defer func() { endSpan(span, err) }()

	in := ParseUpdatePost(form)
	fields := map[string]interface{}{"published": in.Published}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Content != nil {
		fields["content"] = *in.Content
	}

	post, err = s.posts.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(msgPostNotFound, err)
		}
		return nil, s.fail("Error updating post", err, zap.Int64("post_id", id))
	}

	s.events.Publish(ctx, event.Changed(event.EntityPost, event.OpUpdated, id))
	return post, nil
}

func (s *postService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := startSpan(ctx, "PostService.Delete", attribute.Int64("post.id", id))
	defer func() { endSpan(span, err) }()

	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(msgPostNotFound, err)
		}
		return s.fail("Error deleting post", err, zap.Int64("post_id", id))
	}

	s.events.Publish(ctx, event.Changed(event.EntityPost, event.OpDeleted, id))
	return nil
}

// TogglePublished 显式设置发布状态，调用方负责取反
func (s *postService) TogglePublished(ctx context.Context, id int64, published bool) (post *model.Post, err error) {
	ctx, span := startSpan(ctx, "PostService.TogglePublished",
		attribute.Int64("post.id", id), attribute.Bool("post.published", published))
	defer func() { endSpan(span, err) }()

	post, err = s.posts.Update(ctx, id, map[string]interface{}{"published": published})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(msgPostNotFound, err)
		}
		return nil, s.fail("Error toggling post state", err, zap.Int64("post_id", id))
	}

	s.events.Publish(ctx, event.Changed(event.EntityPost, event.OpUpdated, id))
	return post, nil
}

func (s *postService) fail(msg string, err error, fields ...zap.Field) error {
	logger.Error(msg, append(fields, zap.Error(err))...)
	return apperr.Internal(msg, err)
}
