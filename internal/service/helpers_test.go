package service

import (
	"context"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/postboard/internal/event"
	"github.com/d60-Lab/postboard/internal/model"
	"github.com/d60-Lab/postboard/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repository.AutoMigrate(db))
	return db
}

// recorder is an event.Publisher that keeps what it receives.
type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) Publish(_ context.Context, e event.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) all() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Event(nil), r.events...)
}

type fixture struct {
	db      *gorm.DB
	users   repository.UserRepository
	posts   repository.PostRepository
	events  *recorder
	userSvc UserService
	postSvc PostService
	board   BoardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	f := &fixture{
		db:     db,
		users:  repository.NewUserRepository(db),
		posts:  repository.NewPostRepository(db),
		events: &recorder{},
	}
	f.userSvc = NewUserService(f.users, f.events)
	f.postSvc = NewPostService(f.posts, f.events)
	f.board = NewBoardService(f.users, f.posts, nil, 0)
	return f
}

func (f *fixture) mustUser(t *testing.T, email string) *model.User {
	t.Helper()
	u, err := f.userSvc.Create(context.Background(), url.Values{"email": {email}})
	require.NoError(t, err)
	return u
}

func (f *fixture) mustPost(t *testing.T, form url.Values) *model.Post {
	t.Helper()
	p, err := f.postSvc.Create(context.Background(), form)
	require.NoError(t, err)
	return p
}

// mockPostRepository fails the test on any call that was not set up.
type mockPostRepository struct{ mock.Mock }

func (m *mockPostRepository) Create(ctx context.Context, post *model.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *mockPostRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) (*model.Post, error) {
	args := m.Called(ctx, id, fields)
	p, _ := args.Get(0).(*model.Post)
	return p, args.Error(1)
}

func (m *mockPostRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPostRepository) DeleteByAuthor(ctx context.Context, authorID int64) (int64, error) {
	args := m.Called(ctx, authorID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPostRepository) FindByID(ctx context.Context, id int64) (*model.Post, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.Post)
	return p, args.Error(1)
}

func (m *mockPostRepository) List(ctx context.Context) ([]model.Post, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).([]model.Post)
	return p, args.Error(1)
}

func (m *mockPostRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockUserRepository struct{ mock.Mock }

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) (*model.User, error) {
	args := m.Called(ctx, id, fields)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id int64, withPosts bool) (*model.User, error) {
	args := m.Called(ctx, id, withPosts)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).([]model.User)
	return u, args.Error(1)
}

func (m *mockUserRepository) DeleteWithPosts(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
