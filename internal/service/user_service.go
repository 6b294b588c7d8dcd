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

const (
	msgEmailTaken   = "Email already registered"
	msgUserNotFound = "User not found"
)

// UserService 用户变更服务
type UserService interface {
	Create(ctx context.Context, form url.Values) (*model.User, error)
	Update(ctx context.Context, id int64, form url.Values) (*model.User, error)
	// Delete 删除用户及其全部帖子（单事务）
	Delete(ctx context.Context, id int64) error
}

type userService struct {
	users  repository.UserRepository
	events event.Publisher
}

func NewUserService(users repository.UserRepository, events event.Publisher) UserService {
	if events == nil {
		events = event.Nop()
	}
	return &userService{users: users, events: events}
}

func (s *userService) Create(ctx context.Context, form url.Values) (user *model.User, err error) {
	ctx, span := startSpan(ctx, "UserService.Create")
	defer func() { endSpan(span, err) }()

	in, err := ParseCreateUser(form)
	if err != nil {
		return nil, err
	}

	user = &model.User{Name: in.Name, Email: in.Email}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict(msgEmailTaken, err)
		}
		return nil, s.fail("Error creating user", err)
	}

	s.events.Publish(ctx, event.Changed(event.EntityUser, event.OpCreated, user.ID))
	return user, nil
}

func (s *userService) Update(ctx context.Context, id int64, form url.Values) (user *model.User, err error) {
	ctx, span := startSpan(ctx, "UserService.Update", attribute.Int64("user.id", id))
	defer func() { endSpan(span, err) }()

	in := ParseUpdateUser(form)
	fields := map[string]interface{}{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Email != nil {
		fields["email"] = *in.Email
	}

	user, err = s.users.Update(ctx, id, fields)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperr.NotFound(msgUserNotFound, err)
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperr.Conflict(msgEmailTaken, err)
		}
		return nil, s.fail("Error updating user", err, zap.Int64("user_id", id))
	}

	s.events.Publish(ctx, event.Changed(event.EntityUser, event.OpUpdated, id))
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := startSpan(ctx, "UserService.Delete", attribute.Int64("user.id", id))
	defer func() { endSpan(span, err) }()

	deleted, err := s.users.DeleteWithPosts(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(msgUserNotFound, err)
		}
		return s.fail("Error deleting user", err, zap.Int64("user_id", id))
	}

	logger.Debug("user deleted", zap.Int64("user_id", id), zap.Int64("posts_deleted", deleted))
	s.events.Publish(ctx, event.Changed(event.EntityUser, event.OpDeleted, id))
	return nil
}

func (s *userService) fail(msg string, err error, fields ...zap.Field) error {
	logger.Error(msg, append(fields, zap.Error(err))...)
	return apperr.Internal(msg, err)
}
