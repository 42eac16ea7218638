package client

import (
	"fmt"
	"net/http"
)

// GenericErrorMessage 传输层失败展示给用户的统一文案，
// 底层细节只进日志
const GenericErrorMessage = "an error occurred"

// TransportError 网络层失败：连接、超时、响应不可解析。
// 访问判定遇到该错误时一律按锁定处理。
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UserMessage 永远返回统一文案，不暴露网络层细节
func (e *TransportError) UserMessage() string {
	return GenericErrorMessage
}

// BackendError 服务端以统一响应结构返回的业务失败
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend: %s (status %d)", e.Message, e.StatusCode)
}

// IsNotFound 资源不存在
func (e *BackendError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsForbidden 无权访问（未报名、非本人课程）
func (e *BackendError) IsForbidden() bool {
	return e.StatusCode == http.StatusForbidden
}

// UserMessage 服务端给出的提示原样展示，为空时退回统一文案
func (e *BackendError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return GenericErrorMessage
}

// ValidationError 本地编辑状态不满足保存条件，请求未发出
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UserMessage 本地校验消息可直接展示
func (e *ValidationError) UserMessage() string {
	return e.Message
}
