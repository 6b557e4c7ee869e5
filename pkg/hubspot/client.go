package hubspot

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.uber.org/zap"

	"invitegen/config"
	"invitegen/pkg/logger"
)

// ErrTokenMissing 未配置访问令牌
var ErrTokenMissing = errors.New("HubSpot access token not configured")

// StatusError 上游返回非 2xx
type StatusError struct {
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HubSpot API error: %d - %s", e.StatusCode, e.Body)
}

// Client HubSpot CRM 客户端接口
type Client interface {
	// SearchContacts 按过滤条件搜索联系人
	SearchContacts(ctx context.Context, req SearchRequest) (*ObjectPage, error)

	// ListContacts 不带过滤条件拉取一页联系人（可带关联）
	ListContacts(ctx context.Context, opts ListOptions) (*ObjectPage, error)

	// BatchReadCompanies 按 ID 批量读取公司
	BatchReadCompanies(ctx context.Context, req BatchReadRequest) (*ObjectPage, error)
}

// HTTPClient 基于 hertz client 的实现，只使用静态 bearer token
type HTTPClient struct {
	hc      *client.Client
	baseURL string
	token   string
}

// NewHTTPClient 创建客户端，token 为空时构造成功，调用阶段返回 ErrTokenMissing
func NewHTTPClient(baseURL, token string) (*HTTPClient, error) {
	hc, err := client.NewClient(
		client.WithDialer(standard.NewDialer()),
		client.WithTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12}),
		client.WithDialTimeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create hertz client: %w", err)
	}

	return &HTTPClient{
		hc:      hc,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}, nil
}

func (c *HTTPClient) SearchContacts(ctx context.Context, req SearchRequest) (*ObjectPage, error) {
	var page ObjectPage
	if err := c.do(ctx, consts.MethodPost, "/crm/v3/objects/contacts/search", req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) ListContacts(ctx context.Context, opts ListOptions) (*ObjectPage, error) {
	// 逗号保持原样，和 HubSpot 文档中的写法一致
	query := "limit=" + strconv.Itoa(opts.Limit)
	if len(opts.Properties) > 0 {
		query += "&properties=" + escapeList(opts.Properties)
	}
	if len(opts.Associations) > 0 {
		query += "&associations=" + escapeList(opts.Associations)
	}

	var page ObjectPage
	if err := c.do(ctx, consts.MethodGet, "/crm/v3/objects/contacts?"+query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) BatchReadCompanies(ctx context.Context, req BatchReadRequest) (*ObjectPage, error) {
	var page ObjectPage
	if err := c.do(ctx, consts.MethodPost, "/crm/v3/objects/companies/batch/read", req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	if c.token == "" {
		return ErrTokenMissing
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetRequestURI(c.baseURL + path)
	req.SetMethod(method)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.SetContentTypeBytes([]byte("application/json"))

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		req.SetBody(payload)
	}

	start := time.Now()
	if err := c.hc.Do(ctx, req, resp); err != nil {
		return fmt.Errorf("hubspot request %s %s failed: %w", method, path, err)
	}

	status := resp.StatusCode()
	logger.Logger.Debug("HubSpot request finished",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(start)),
	)

	if status < 200 || status >= 300 {
		return &StatusError{StatusCode: status, Body: string(resp.Body())}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to decode hubspot response: %w", err)
	}
	return nil
}

func escapeList(values []string) string {
	escaped := make([]string, 0, len(values))
	for _, v := range values {
		escaped = append(escaped, url.QueryEscape(v))
	}
	return strings.Join(escaped, ",")
}

var (
	hubspotClient Client
	hubspotOnce   sync.Once
	hubspotErr    error
)

// Init 根据配置初始化全局客户端
func Init() error {
	hubspotOnce.Do(func() {
		cfg := config.Cfg

		hubspotClient, hubspotErr = NewHTTPClient(cfg.HubSpotBaseURL, cfg.HubSpotAccessToken)
		if hubspotErr != nil {
			logger.Logger.Error("Failed to initialize HubSpot client", zap.Error(hubspotErr))
			return
		}

		logger.Logger.Info("HubSpot client initialized successfully",
			zap.String("base_url", cfg.HubSpotBaseURL),
			zap.Bool("token_configured", cfg.HubSpotAccessToken != ""),
		)
	})

	return hubspotErr
}

func GetClient() Client {
	if hubspotClient == nil {
		panic("HubSpot client not initialized, call hubspot.Init() first")
	}
	return hubspotClient
}
