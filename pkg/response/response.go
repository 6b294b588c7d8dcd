// Package response writes the JSON envelopes returned by the API.
package response

import (
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/postboard/pkg/apperr"
	"github.com/d60-Lab/postboard/pkg/logger"
)

// Response 读接口统一返回结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Failure is the error branch of a mutation result.
type Failure struct {
	Error  string              `json:"error"`
	Kind   string              `json:"kind"`
	Fields []apperr.FieldError `json:"fields,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

// Mutation writes the success branch of a mutation result: {"success": true, key: value}.
func Mutation(c *gin.Context, status int, key string, value interface{}) {
	body := gin.H{"success": true}
	if key != "" {
		body[key] = value
	}
	c.JSON(status, body)
}

// BadRequest 参数错误
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Failure{Error: message, Kind: apperr.KindValidation.String()})
}

// Fail writes the error branch for err, choosing the status from its kind.
func Fail(c *gin.Context, err error) {
	ae, ok := apperr.From(err)
	if !ok {
		ae = apperr.Internal("Internal server error", err)
	}
	if ae.Kind == apperr.KindInternal {
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("message", ae.Message),
			zap.Error(ae.Err),
		)
		if hub := sentrygin.GetHubFromContext(c); hub != nil && ae.Err != nil {
			hub.CaptureException(ae.Err)
		}
	}
	c.JSON(Status(ae.Kind), Failure{Error: ae.Message, Kind: ae.Kind.String(), Fields: ae.Fields})
}

// Status maps an error kind onto an HTTP status code.
func Status(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
