package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.uber.org/zap"

	"invitegen/internal/model"
	"invitegen/pkg/logger"
)

// GatewayClient 调用通讯录网关的 HTTP 客户端。任何失败（网络、状态码、JSON）
// 都只记一条告警并返回空切片，调用方无法区分“没有结果”和“搜索失败”
type GatewayClient struct {
	hc      *client.Client
	baseURL string
	log     *zap.Logger
}

var _ Searcher = (*GatewayClient)(nil)

func NewGatewayClient(baseURL string) (*GatewayClient, error) {
	hc, err := client.NewClient(
		client.WithDialer(standard.NewDialer()),
		client.WithDialTimeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create hertz client: %w", err)
	}

	return &GatewayClient{
		hc:      hc,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logger.Component("gateway_client"),
	}, nil
}

type searchBody struct {
	Query      string `json:"query"`
	SearchType string `json:"searchType"`
}

type searchResult struct {
	Results []RawContact `json:"results"`
}

type listResult struct {
	Contacts []RawContact `json:"contacts"`
}

func (g *GatewayClient) Search(ctx context.Context, query string, searchType model.SearchType) []model.Contact {
	var out searchResult
	if err := g.do(ctx, consts.MethodPost, "/v1/directory/search", searchBody{Query: query, SearchType: string(searchType)}, &out); err != nil {
		g.log.Warn("Directory search failed, showing no results",
			zap.String("search_type", string(searchType)),
			zap.Error(err),
		)
		return []model.Contact{}
	}
	return NormalizeAll(out.Results)
}

func (g *GatewayClient) List(ctx context.Context) []model.Contact {
	var out listResult
	if err := g.do(ctx, consts.MethodGet, "/v1/directory/contacts", nil, &out); err != nil {
		g.log.Warn("Directory list failed, showing no contacts", zap.Error(err))
		return []model.Contact{}
	}
	return NormalizeAll(out.Contacts)
}

func (g *GatewayClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetRequestURI(g.baseURL + path)
	req.SetMethod(method)

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		req.Header.SetContentTypeBytes([]byte("application/json"))
		req.SetBody(payload)
	}

	if err := g.hc.Do(ctx, req, resp); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if status := resp.StatusCode(); status != consts.StatusOK {
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, path, status, resp.Body())
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
	}
	return nil
}
