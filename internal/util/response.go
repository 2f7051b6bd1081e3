package util

import (
	"errors"
	"examprep_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

// Ack 无数据的确认响应
func Ack(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Code:    http.StatusOK,
		Message: message,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

// RespondError 把错误按分类翻译成 {success:false, message, ...fields}
func RespondError(c *gin.Context, err error) {
	var ae *AppError
	if !errors.As(err, &ae) || ae.Kind == KindInternal {
		LogInternalError(c, err)
		return
	}

	body := gin.H{
		"success": false,
		"code":    ae.Kind.HTTPStatus(),
		"message": ae.Message,
	}
	for k, v := range ae.Fields {
		body[k] = v
	}
	if ae.Err != nil && gin.Mode() == gin.DebugMode {
		body["error"] = ae.Err.Error()
	}
	c.JSON(ae.Kind.HTTPStatus(), body)
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.Error(err),
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString("request_id")),
	)
	body := gin.H{
		"success": false,
		"code":    http.StatusInternalServerError,
		"message": "Internal server error",
	}
	if gin.Mode() == gin.DebugMode && err != nil {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}
