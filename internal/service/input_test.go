package service

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/postboard/pkg/apperr"
)

func TestParseCreatePost(t *testing.T) {
	in, err := ParseCreatePost(url.Values{"title": {"Hi"}, "authorId": {"7"}})
	require.NoError(t, err)
	assert.Equal(t, CreatePostInput{Title: "Hi", AuthorID: 7}, in)

	in, err = ParseCreatePost(url.Values{"title": {"Hi"}, "authorId": {"7"}, "content": {"c"}, "published": {"true"}})
	require.NoError(t, err)
	assert.True(t, in.Published)
	assert.Equal(t, "c", in.Content)

	in, err = ParseCreatePost(url.Values{"title": {"Hi"}, "authorId": {"7"}, "published": {"yes"}})
	require.NoError(t, err)
	assert.False(t, in.Published)
}

func TestParseCreatePost_ReportsEveryField(t *testing.T) {
	cases := []struct {
		name   string
		form   url.Values
		fields []string
	}{
		{"empty", url.Values{}, []string{"title", "authorId"}},
		{"no title", url.Values{"authorId": {"1"}}, []string{"title"}},
		{"no author", url.Values{"title": {"T"}}, []string{"authorId"}},
		{"nan author", url.Values{"title": {"T"}, "authorId": {"abc"}}, []string{"authorId"}},
		{"both bad", url.Values{"title": {""}, "authorId": {"x1"}}, []string{"title", "authorId"}},
		{"zero author", url.Values{"title": {"T"}, "authorId": {"0"}}, []string{"authorId"}},
		{"overflow", url.Values{"title": {"T"}, "authorId": {"99999999999999999999"}}, []string{"authorId"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCreatePost(tc.form)
			ae, ok := apperr.From(err)
			require.True(t, ok)
			assert.Equal(t, apperr.KindValidation, ae.Kind)
			assert.Equal(t, "Title and author are required", ae.Message)

			var got []string
			for _, f := range ae.Fields {
				got = append(got, f.Field)
			}
			assert.ElementsMatch(t, tc.fields, got)
		})
	}
}

func TestParseUpdatePost(t *testing.T) {
	in := ParseUpdatePost(url.Values{"published": {"true"}})
	assert.Nil(t, in.Title)
	assert.Nil(t, in.Content)
	assert.True(t, in.Published)

	in = ParseUpdatePost(url.Values{"title": {""}, "content": {""}})
	assert.Nil(t, in.Title)
	require.NotNil(t, in.Content)
	assert.Equal(t, "", *in.Content)
	assert.False(t, in.Published)
}

func TestParseCreateUser(t *testing.T) {
	in, err := ParseCreateUser(url.Values{"email": {"a@x.com"}, "name": {"  "}})
	require.NoError(t, err)
	assert.Nil(t, in.Name)
	assert.Equal(t, "a@x.com", in.Email)

	in, err = ParseCreateUser(url.Values{"email": {"a@x.com"}, "name": {"Alice"}})
	require.NoError(t, err)
	require.NotNil(t, in.Name)
	assert.Equal(t, "Alice", *in.Name)

	_, err = ParseCreateUser(url.Values{"name": {"Alice"}})
	ae, ok := apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, "Email is required", ae.Message)
	require.Len(t, ae.Fields, 1)
	assert.Equal(t, "email", ae.Fields[0].Field)
}

func TestParseUpdateUser(t *testing.T) {
	in := ParseUpdateUser(url.Values{"name": {""}, "email": {"b@x.com"}})
	assert.Nil(t, in.Name)
	require.NotNil(t, in.Email)
	assert.Equal(t, "b@x.com", *in.Email)
}

func TestParseID(t *testing.T) {
	id, err := ParseID(" 12 ")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	for _, raw := range []string{"", "abc", "-1", "0", "1.5"} {
		_, err := ParseID(raw)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), raw)
	}
}

func TestParsePublished(t *testing.T) {
	b, err := ParsePublished("true")
	require.NoError(t, err)
	assert.True(t, b)

	b, err = ParsePublished("false")
	require.NoError(t, err)
	assert.False(t, b)

	_, err = ParsePublished("")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
