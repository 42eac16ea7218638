// Package client 封装 CourseHub 后端 API，并在本地维护
// 课时排序、题目编辑与测验作答的编辑状态。
//
// 服务端是唯一权威：排序冲突以服务端为准，测验判分只在服务端进行，
// 本地校验仅用于在发请求前拦截明显无效的输入。
package client

import (
	"context"
	"coursehub_backend/pkg/logger"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// logFailure 传输层失败只进日志，对用户只暴露统一文案。
// 客户端可在未初始化全局 logger 的进程里使用，此时跳过。
func logFailure(msg, method, path string, err error) {
	if logger.Log == nil {
		return
	}
	logger.Log.Warn(msg,
		zap.String("method", method),
		zap.String("path", path),
		zap.Error(err),
	)
}

// Client CourseHub 后端的 HTTP 客户端
type Client struct {
	http  *resty.Client
	token string
}

type Option func(*Client)

// WithToken 设置登录后获得的 JWT
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout 覆盖默认的 10 秒请求超时
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// WithHTTPClient 注入自定义 http.Client，测试时替换传输层用
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc).SetBaseURL(c.http.BaseURL)
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken 登录后更新凭证
func (c *Client) SetToken(token string) {
	c.token = token
}

// envelope 服务端统一响应结构
type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do 发送请求并解析统一响应；out 为 nil 时丢弃 data
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	req := c.http.R().SetContext(ctx)
	if c.token != "" {
		req.SetHeader("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		logFailure("request failed", method, path, err)
		return &TransportError{Err: err}
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		err = fmt.Errorf("malformed response (status %d): %w", resp.StatusCode(), err)
		logFailure("response unreadable", method, path, err)
		return &TransportError{Err: err}
	}

	if !env.Success {
		return &BackendError{
			StatusCode: resp.StatusCode(),
			Message:    env.Message,
		}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			err = fmt.Errorf("malformed data payload: %w", err)
			logFailure("response unreadable", method, path, err)
			return &TransportError{Err: err}
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Login 登录并把 JWT 写入客户端
func (c *Client) Login(ctx context.Context, email, password string) error {
	var data struct {
		Token string `json:"token"`
	}
	err := c.post(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &data)
	if err != nil {
		return err
	}
	c.token = data.Token
	return nil
}
