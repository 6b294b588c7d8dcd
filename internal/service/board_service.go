package service

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/d60-Lab/postboard/internal/cache"
	"github.com/d60-Lab/postboard/internal/event"
	"github.com/d60-Lab/postboard/internal/model"
	"github.com/d60-Lab/postboard/internal/repository"
	"github.com/d60-Lab/postboard/pkg/apperr"
	"github.com/d60-Lab/postboard/pkg/logger"
)

// Stats 看板聚合计数
type Stats struct {
	TotalUsers     int `json:"totalUsers"`
	TotalPosts     int `json:"totalPosts"`
	PublishedCount int `json:"publishedCount"`
	DraftCount     int `json:"draftCount"`
}

// Board is the assembled listing page view.
type Board struct {
	Users       []model.User `json:"users"`
	Published   []model.Post `json:"published"`
	Drafts      []model.Post `json:"drafts"`
	Stats       Stats        `json:"stats"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

// BoardService 读侧：列表查询、分区与计数，结果按路径缓存
type BoardService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	ListPosts(ctx context.Context) ([]model.Post, error)
	Board(ctx context.Context) (*Board, error)
	// Invalidate 丢弃 path 对应的缓存视图
	Invalidate(ctx context.Context, path string) error
}

type boardService struct {
	users repository.UserRepository
	posts repository.PostRepository
	cache cache.Store
	ttl   time.Duration
	// gen 每次失效时递增，加载期间发生过失效的结果不写回缓存
	gen atomic.Uint64
}

func NewBoardService(users repository.UserRepository, posts repository.PostRepository, store cache.Store, ttl time.Duration) BoardService {
	if store == nil {
		store = cache.Nop()
	}
	return &boardService{users: users, posts: posts, cache: store, ttl: ttl}
}

func boardKey(path string) string { return "board:" + path }

func (s *boardService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		logger.Error("list users failed", zap.Error(err))
		return nil, apperr.Internal("Error loading users", err)
	}
	return users, nil
}

func (s *boardService) ListPosts(ctx context.Context) ([]model.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		logger.Error("list posts failed", zap.Error(err))
		return nil, apperr.Internal("Error loading posts", err)
	}
	return posts, nil
}

func (s *boardService) Board(ctx context.Context) (b *Board, err error) {
	ctx, span := startSpan(ctx, "BoardService.Board")
	defer func() { endSpan(span, err) }()

	key := boardKey(event.RootPath)
	gen := s.gen.Load()
	var cached Board
	if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
		logger.Warn("board cache read failed", zap.Error(err))
	} else if ok {
		return &cached, nil
	}

	var (
		users []model.User
		posts []model.Post
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.ListUsers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		posts, err = s.ListPosts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b = Assemble(users, posts, time.Now())
	if s.ttl > 0 && s.gen.Load() == gen {
		if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
			logger.Warn("board cache write failed", zap.Error(err))
		}
		if s.gen.Load() != gen {
			// invalidated between the check and the write
			if err := s.cache.Delete(ctx, key); err != nil {
				logger.Warn("board cache delete failed", zap.Error(err))
			}
		}
	}
	return b, nil
}

func (s *boardService) Invalidate(ctx context.Context, path string) error {
	if path == "" {
		path = event.RootPath
	}
	s.gen.Add(1)
	return s.cache.Delete(ctx, boardKey(path))
}

// InvalidateOn returns an event handler that drops the cached view an event names.
func InvalidateOn(board BoardService) event.Handler {
	return func(ctx context.Context, e event.Event) error {
		return board.Invalidate(ctx, e.Path)
	}
}

// Assemble builds the board view from already fetched lists.
func Assemble(users []model.User, posts []model.Post, at time.Time) *Board {
	published, drafts := Partition(posts)
	return &Board{
		Users:       users,
		Published:   published,
		Drafts:      drafts,
		Stats:       Summarize(users, posts),
		GeneratedAt: at,
	}
}

// Partition splits posts into published and draft buckets, keeping order.
func Partition(posts []model.Post) (published, drafts []model.Post) {
	published = make([]model.Post, 0, len(posts))
	drafts = make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if p.Published {
			published = append(published, p)
		} else {
			drafts = append(drafts, p)
		}
	}
	return published, drafts
}

// Summarize computes the board counters.
func Summarize(users []model.User, posts []model.Post) Stats {
	published := 0
	for _, p := range posts {
		if p.Published {
			published++
		}
	}
	return Stats{
		TotalUsers:     len(users),
		TotalPosts:     len(posts),
		PublishedCount: published,
		DraftCount:     len(posts) - published,
	}
}
