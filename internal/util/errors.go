package util

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind 错误分类，决定对外的 HTTP 状态码
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindForbidden
	KindPaymentRequired
	KindValidation
	KindUnauthorized
)

func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindPaymentRequired:
		return http.StatusPaymentRequired
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// AppError 业务错误，Fields 会原样并入响应体
type AppError struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 同类别同消息即视为同一错误，便于与哨兵比较
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// With 返回带上下文字段的副本，不修改哨兵本身
func (e *AppError) With(key string, value interface{}) *AppError {
	fields := make(map[string]interface{}, len(e.Fields)+1)
	for k, v := range e.Fields {
		fields[k] = v
	}
	fields[key] = value
	return &AppError{Kind: e.Kind, Message: e.Message, Fields: fields, Err: e.Err}
}

// Wrap 附带底层原因
func (e *AppError) Wrap(err error) *AppError {
	return &AppError{Kind: e.Kind, Message: e.Message, Fields: e.Fields, Err: err}
}

func NewError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// KindOf 非 AppError 一律视为内部错误
func KindOf(err error) ErrorKind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

var (
	ErrTestNotFound        = NewError(KindNotFound, "test not found")
	ErrSessionNotFound     = NewError(KindNotFound, "session not found")
	ErrAttemptNotFound     = NewError(KindNotFound, "attempt not found")
	ErrNotAttemptOwner     = NewError(KindForbidden, "session does not belong to the current user")
	ErrTestNotStarted      = NewError(KindForbidden, "not_started")
	ErrTestExpired         = NewError(KindForbidden, "expired")
	ErrLimitReached        = NewError(KindForbidden, "test limit reached")
	ErrAttemptCompleted    = NewError(KindForbidden, "attempt_completed")
	ErrPaymentRequired     = NewError(KindPaymentRequired, "payment_required")
	ErrInvalidEventType    = NewError(KindValidation, "invalid event type")
	ErrNoAnswers           = NewError(KindValidation, "answers must be a non-empty array")
	ErrQuestionNotInTest   = NewError(KindValidation, "question does not belong to this test")
	ErrMissingTestID       = NewError(KindValidation, "testId is required")
	ErrUnauthorized        = NewError(KindUnauthorized, "Unauthorized")
	ErrQuestionsUnresolved = NewError(KindInternal, "failed to resolve test questions")
)
