package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxFormMemory = 1 << 20

// formValues 将请求体整理为扁平的键值表单：
// urlencoded / multipart 直接取表单，JSON 对象的标量值转换为字符串
func formValues(c *gin.Context) (url.Values, error) {
	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		return jsonValues(c)
	}
	if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}
	return c.Request.Form, nil
}

func jsonValues(c *gin.Context) (url.Values, error) {
	var body map[string]interface{}
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("decode json body: %w", err)
	}
	values := url.Values{}
	for k, v := range body {
		switch x := v.(type) {
		case nil:
			// null counts as not provided
		case string:
			values.Set(k, x)
		case bool:
			values.Set(k, strconv.FormatBool(x))
		case json.Number:
			values.Set(k, x.String())
		default:
			return nil, fmt.Errorf("field %q must be a scalar", k)
		}
	}
	return values, nil
}
