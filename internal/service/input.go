package service

import (
	"errors"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/postboard/pkg/apperr"
)

const (
	msgPostRequired  = "Title and author are required"
	msgEmailRequired = "Email is required"
	msgInvalidID     = "Invalid id"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields under their form key
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// CreatePostInput is a validated create-post command.
type CreatePostInput struct {
	Title     string
	Content   string
	AuthorID  int64
	Published bool
}

// UpdatePostInput carries only the fields the form supplied.
type UpdatePostInput struct {
	Title     *string
	Content   *string
	Published bool
}

// CreateUserInput is a validated create-user command.
type CreateUserInput struct {
	Name  *string
	Email string
}

// UpdateUserInput carries the non-empty fields of an update form.
type UpdateUserInput struct {
	Name  *string
	Email *string
}

type createPostForm struct {
	Title    string `form:"title" validate:"required"`
	AuthorID string `form:"authorId" validate:"required,number"`
}

type userForm struct {
	Email string `form:"email" validate:"required"`
}

// ParseCreatePost 解析并校验创建帖子表单，一次性报告全部不合法字段
func ParseCreatePost(form url.Values) (CreatePostInput, error) {
	raw := createPostForm{Title: form.Get("title"), AuthorID: strings.TrimSpace(form.Get("authorId"))}
	fields := fieldErrors(validate.Struct(raw))

	var authorID int64
	if len(fields) == 0 {
		id, err := strconv.ParseInt(raw.AuthorID, 10, 64)
		if err != nil || id <= 0 {
			fields = append(fields, apperr.FieldError{Field: "authorId", Message: "must be a positive integer"})
		}
		authorID = id
	}
	if len(fields) > 0 {
		return CreatePostInput{}, apperr.Validation(msgPostRequired, fields...)
	}

	return CreatePostInput{
		Title:     raw.Title,
		Content:   form.Get("content"),
		AuthorID:  authorID,
		Published: form.Get("published") == "true",
	}, nil
}

// ParseUpdatePost 解析更新帖子表单：title 非空才更新，content 只要出现就更新，published 总是更新
func ParseUpdatePost(form url.Values) UpdatePostInput {
	in := UpdatePostInput{Published: form.Get("published") == "true"}
	if title := form.Get("title"); title != "" {
		in.Title = &title
	}
	if form.Has("content") {
		content := form.Get("content")
		in.Content = &content
	}
	return in
}

// ParseCreateUser 解析并校验创建用户表单，空白 name 存为 NULL
func ParseCreateUser(form url.Values) (CreateUserInput, error) {
	raw := userForm{Email: strings.TrimSpace(form.Get("email"))}
	if fields := fieldErrors(validate.Struct(raw)); len(fields) > 0 {
		return CreateUserInput{}, apperr.Validation(msgEmailRequired, fields...)
	}
	in := CreateUserInput{Email: raw.Email}
	if name := strings.TrimSpace(form.Get("name")); name != "" {
		in.Name = &name
	}
	return in, nil
}

// ParseUpdateUser keeps only the non-empty fields.
func ParseUpdateUser(form url.Values) UpdateUserInput {
	var in UpdateUserInput
	if name := strings.TrimSpace(form.Get("name")); name != "" {
		in.Name = &name
	}
	if email := strings.TrimSpace(form.Get("email")); email != "" {
		in.Email = &email
	}
	return in
}

// ParseID parses a numeric id taken from a path or form value.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation(msgInvalidID, apperr.FieldError{Field: "id", Message: "must be a positive integer"})
	}
	return id, nil
}

func fieldErrors(err error) []apperr.FieldError {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apperr.FieldError{{Message: err.Error()}}
	}
	out := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperr.FieldError{Field: fe.Field(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "number":
		return "must be an integer"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// ParsePublished parses the explicit target state of a publish toggle.
func ParsePublished(raw string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, apperr.Validation("Published flag is required",
			apperr.FieldError{Field: "published", Message: "must be true or false"})
	}
	return b, nil
}
