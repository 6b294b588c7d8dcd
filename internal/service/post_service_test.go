package service

import (
	"context"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/postboard/internal/event"
	"github.com/d60-Lab/postboard/pkg/apperr"
)

func TestPostService_CreateDefaults(t *testing.T) {
	f := newFixture(t)
	u := f.mustUser(t, "a@x.com")

	p := f.mustPost(t, url.Values{"title": {"T"}, "authorId": {strconv.FormatInt(u.ID, 10)}})
	assert.NotZero(t, p.ID)
	assert.False(t, p.Published)
	assert.Equal(t, "", p.Content)
	require.NotNil(t, p.Author)
	assert.Equal(t, u.ID, p.Author.ID)

	evs := f.events.all()
	require.Len(t, evs, 2)
	assert.Equal(t, event.EntityPost, evs[1].Entity)
	assert.Equal(t, event.OpCreated, evs[1].Op)
	assert.Equal(t, p.ID, evs[1].ID)
	assert.Equal(t, "/", evs[1].Path)
}

func TestPostService_CreateValidationNeverTouchesStorage(t *testing.T) {
	repo := &mockPostRepository{}
	rec := &recorder{}
	svc := NewPostService(repo, rec)

	forms := []url.Values{
		{},
		{"authorId": {"1"}},
		{"title": {"T"}},
		{"title": {"T"}, "authorId": {"NaN"}},
	}
	for _, form := range forms {
		_, err := svc.Create(context.Background(), form)
		ae, ok := apperr.From(err)
		require.True(t, ok)
		assert.Equal(t, apperr.KindValidation, ae.Kind)
		assert.Equal(t, "Title and author are required", ae.Message)
	}
	repo.AssertNumberOfCalls(t, "Create", 0)
	assert.Empty(t, rec.all())
}

func TestPostService_CreateUnknownAuthorIsGenericFailure(t *testing.T) {
	f := newFixture(t)
	_, err := f.postSvc.Create(context.Background(), url.Values{"title": {"T"}, "authorId": {"999"}})

	ae, ok := apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindInternal, ae.Kind)
	assert.Equal(t, "Error creating post", ae.Message)
	assert.Empty(t, f.events.all())
}

func TestPostService_UpdatePublishedOnlyKeepsFields(t *testing.T) {
	f := newFixture(t)
	u := f.mustUser(t, "a@x.com")
	p := f.mustPost(t, url.Values{"title": {"T"}, "content": {"body"}, "authorId": {strconv.FormatInt(u.ID, 10)}})

	got, err := f.postSvc.Update(context.Background(), p.ID, url.Values{"published": {"true"}})
	require.NoError(t, err)
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, "body", got.Content)
	assert.True(t, got.Published)
	require.NotNil(t, got.Author)
}

func TestPostService_UpdateAppliesPresentFields(t *testing.T) {
	f := newFixture(t)
	u := f.mustUser(t, "a@x.com")
	p := f.mustPost(t, url.Values{"title": {"T"}, "content": {"body"}, "published": {"true"}, "authorId": {strconv.FormatInt(u.ID, 10)}})

	// empty title is ignored, empty content is applied, missing published means false
	got, err := f.postSvc.Update(context.Background(), p.ID, url.Values{"title": {""}, "content": {""}})
	require.NoError(t, err)
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, "", got.Content)
	assert.False(t, got.Published)

	got, err = f.postSvc.Update(context.Background(), p.ID, url.Values{"title": {"New"}, "published": {"true"}})
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.True(t, got.Published)
}

func TestPostService_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.postSvc.Update(ctx, 404, url.Values{"title": {"x"}})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	err = f.postSvc.Delete(ctx, 404)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.postSvc.TogglePublished(ctx, 404, true)
	ae, ok := apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindNotFound, ae.Kind)
	assert.Equal(t, "Post not found", ae.Message)

	assert.Empty(t, f.events.all())
}

func TestPostService_Delete(t *testing.T) {
	f := newFixture(t)
	u := f.mustUser(t, "a@x.com")
	p := f.mustPost(t, url.Values{"title": {"T"}, "authorId": {strconv.FormatInt(u.ID, 10)}})

	require.NoError(t, f.postSvc.Delete(context.Background(), p.ID))
	posts, err := f.board.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)

	evs := f.events.all()
	assert.Equal(t, event.OpDeleted, evs[len(evs)-1].Op)
}

func TestPostService_ToggleMovesBetweenPartitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.mustUser(t, "a@x.com")
	p := f.mustPost(t, url.Values{"title": {"Draft"}, "authorId": {strconv.FormatInt(u.ID, 10)}})

	posts, err := f.board.ListPosts(ctx)
	require.NoError(t, err)
	published, drafts := Partition(posts)
	assert.Empty(t, published)
	require.Len(t, drafts, 1)

	got, err := f.postSvc.TogglePublished(ctx, p.ID, true)
	require.NoError(t, err)
	assert.True(t, got.Published)
	require.NotNil(t, got.Author)

	posts, err = f.board.ListPosts(ctx)
	require.NoError(t, err)
	published, drafts = Partition(posts)
	require.Len(t, published, 1)
	assert.Equal(t, p.ID, published[0].ID)
	assert.Empty(t, drafts)
}

func TestPostService_ToggleIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.mustUser(t, "a@x.com")
	p := f.mustPost(t, url.Values{"title": {"T"}, "authorId": {strconv.FormatInt(u.ID, 10)}})

	once, err := f.postSvc.TogglePublished(ctx, p.ID, true)
	require.NoError(t, err)
	twice, err := f.postSvc.TogglePublished(ctx, p.ID, true)
	require.NoError(t, err)

	assert.Equal(t, once.Published, twice.Published)
	assert.Equal(t, once.Title, twice.Title)
	assert.Equal(t, once.Content, twice.Content)
}
