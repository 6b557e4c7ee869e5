package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"invitegen/config"
	"invitegen/internal/cache"
	"invitegen/internal/model"
	"invitegen/internal/model/dto"
	pkgerrors "invitegen/pkg/errors"
	"invitegen/pkg/hubspot"
	"invitegen/pkg/logger"
	"invitegen/pkg/metrics"
)

// ListCache 全量列表缓存
type ListCache interface {
	Get(ctx context.Context) (*dto.ListResponse, bool)
	Set(ctx context.Context, resp *dto.ListResponse)
}

var (
	directoryService *DirectoryService
	directoryOnce    sync.Once
)

// Directory 返回全局通讯录服务，依赖 hubspot.Init 和 redis.Init 已完成
func Directory() *DirectoryService {
	directoryOnce.Do(func() {
		if directoryService == nil {
			directoryService = NewDirectoryService(
				hubspot.GetClient(),
				cache.NewDirectoryCache(config.Cfg.DirectoryCacheTTL),
			)
		}
	})

	return directoryService
}

// SetDirectory 替换全局通讯录服务
func SetDirectory(s *DirectoryService) {
	directoryService = s
}

// DirectoryService 通讯录网关：搜索、全量列表，以及两者共用的公司信息批量补全
type DirectoryService struct {
	client hubspot.Client
	cache  ListCache
	log    *zap.Logger
}

// NewDirectoryService listCache 可以为 nil，此时不缓存
func NewDirectoryService(client hubspot.Client, listCache ListCache) *DirectoryService {
	return &DirectoryService{
		client: client,
		cache:  listCache,
		log:    logger.Component("directory"),
	}
}

// Search 按类型搜索联系人，最多 50 条，保持上游顺序
func (s *DirectoryService) Search(ctx context.Context, req dto.SearchRequest) (*dto.SearchResponse, error) {
	start := time.Now()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, pkgerrors.SearchQueryRequired
	}

	searchType, ok := model.ParseSearchType(req.SearchType)
	if !ok {
		s.log.Debug("Unknown search type, falling back to name", zap.String("search_type", req.SearchType))
		searchType = model.SearchTypeName
	}

	page, err := s.client.SearchContacts(ctx, hubspot.SearchRequest{
		FilterGroups: BuildFilterGroups(query, searchType),
		Properties:   hubspot.SearchProperties,
		Limit:        hubspot.SearchLimit,
	})
	if err != nil {
		metrics.RecordSearch(ctx, string(searchType), "error", time.Since(start).Seconds())
		return nil, s.upstreamError(ctx, "search", err)
	}

	companies := s.enrich(ctx, "search", page.Results)

	results := make([]dto.DirectoryContact, 0, len(page.Results))
	for _, obj := range page.Results {
		results = append(results, toDirectoryContact(obj, companies))
	}

	metrics.RecordSearch(ctx, string(searchType), "success", time.Since(start).Seconds())
	s.log.Info("Directory search finished",
		zap.String("search_type", string(searchType)),
		zap.Int("results", len(results)),
		zap.Int("companies", len(companies)),
	)

	return &dto.SearchResponse{Results: results, Total: len(results)}, nil
}

// List 全量列表（最多 100 条），优先读缓存
func (s *DirectoryService) List(ctx context.Context) (*dto.ListResponse, error) {
	if s.cache != nil {
		if resp, ok := s.cache.Get(ctx); ok {
			return resp, nil
		}
	}

	resp, err := s.fetchList(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, resp)
	}
	return resp, nil
}

// Refresh 绕过缓存重新拉取并回写，返回联系人数量
func (s *DirectoryService) Refresh(ctx context.Context) (int, error) {
	resp, err := s.fetchList(ctx)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, resp)
	}
	return len(resp.Contacts), nil
}

func (s *DirectoryService) fetchList(ctx context.Context) (*dto.ListResponse, error) {
	page, err := s.client.ListContacts(ctx, hubspot.ListOptions{
		Properties:   hubspot.ListProperties,
		Associations: []string{"companies"},
		Limit:        hubspot.ListLimit,
	})
	if err != nil {
		return nil, s.upstreamError(ctx, "list", err)
	}

	companies := s.enrich(ctx, "list", page.Results)

	contacts := make([]dto.ListContact, 0, len(page.Results))
	for _, obj := range page.Results {
		contacts = append(contacts, toListContact(obj, companies))
	}

	return &dto.ListResponse{Contacts: contacts}, nil
}

// enrich 收集每个联系人第一个关联公司的 ID，一次批量读取。
// 批量读取失败不影响整个请求，所有联系人都没有公司信息
func (s *DirectoryService) enrich(ctx context.Context, operation string, contacts []hubspot.Object) map[string]hubspot.Object {
	ids := make([]string, 0, len(contacts))
	seen := make(map[string]struct{}, len(contacts))
	for _, c := range contacts {
		id, ok := c.FirstAssociation("companies")
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil
	}

	page, err := s.client.BatchReadCompanies(ctx, hubspot.NewBatchReadRequest(ids, hubspot.CompanyProperties))
	if err != nil {
		metrics.RecordEnrichmentDegraded(ctx, operation)
		s.log.Warn("Company enrichment skipped",
			zap.String("operation", operation),
			zap.Int("company_ids", len(ids)),
			zap.Error(err),
		)
		return nil
	}

	companies := make(map[string]hubspot.Object, len(page.Results))
	for _, company := range page.Results {
		companies[company.ID] = company
	}
	return companies
}

func (s *DirectoryService) upstreamError(ctx context.Context, operation string, err error) error {
	var statusErr *hubspot.StatusError

	switch {
	case errors.Is(err, hubspot.ErrTokenMissing):
		metrics.RecordUpstreamError(ctx, operation, "auth")
		s.log.Error("HubSpot access token not configured", zap.String("operation", operation))
		return pkgerrors.UpstreamAuthError
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized:
		metrics.RecordUpstreamError(ctx, operation, "auth")
		s.log.Error("HubSpot rejected access token", zap.String("operation", operation), zap.Error(err))
		return pkgerrors.UpstreamAuthError.WithMessage("%s", err.Error())
	default:
		metrics.RecordUpstreamError(ctx, operation, "request")
		s.log.Error("HubSpot request failed", zap.String("operation", operation), zap.Error(err))
		return pkgerrors.UpstreamRequestError.WithMessage("%s", err.Error())
	}
}

// lookupCompany 取联系人第一个关联公司的详情，未命中返回 false
func lookupCompany(obj hubspot.Object, companies map[string]hubspot.Object) (hubspot.Object, bool) {
	id, ok := obj.FirstAssociation("companies")
	if !ok {
		return hubspot.Object{}, false
	}
	company, ok := companies[id]
	if ok && company.ID == "" {
		company.ID = id
	}
	return company, ok
}

func toDirectoryContact(obj hubspot.Object, companies map[string]hubspot.Object) dto.DirectoryContact {
	out := dto.DirectoryContact{
		ID:              obj.ID,
		FirstName:       obj.Prop("firstname"),
		LastName:        obj.Prop("lastname"),
		Email:           obj.Prop("email"),
		Phone:           obj.Prop("phone"),
		ContactAddress1: obj.Prop("address"),
		ContactCity:     obj.Prop("city"),
		ContactState:    obj.Prop("state"),
		ContactZip:      obj.Prop("zip"),
		CompanyName:     obj.Prop("company"),
	}
	out.ContactAddress = model.JoinLocation(out.ContactAddress1, out.ContactCity, out.ContactState, out.ContactZip)

	company, ok := lookupCompany(obj, companies)
	if !ok {
		return out
	}

	if name := company.Prop("name"); name != "" {
		out.CompanyName = name
	}
	out.CompanyAddress1 = company.Prop("address")
	out.CompanyCity = company.Prop("city")
	out.CompanyState = company.Prop("state")
	out.CompanyZip = company.Prop("zip")
	out.CompanyAddress = model.JoinLocation(out.CompanyAddress1, out.CompanyCity, out.CompanyState, out.CompanyZip)

	return out
}

func toListContact(obj hubspot.Object, companies map[string]hubspot.Object) dto.ListContact {
	out := dto.ListContact{
		ID:        obj.ID,
		FirstName: obj.Prop("firstname"),
		LastName:  obj.Prop("lastname"),
		Email:     obj.Prop("email"),
		Address:   obj.Prop("address"),
		City:      obj.Prop("city"),
		State:     obj.Prop("state"),
		Zip:       obj.Prop("zip"),
	}

	company, ok := lookupCompany(obj, companies)
	if !ok {
		return out
	}

	out.Company = &dto.CompanyRecord{
		ID:      company.ID,
		Name:    company.Prop("name"),
		Address: company.Prop("address"),
		City:    company.Prop("city"),
		State:   company.Prop("state"),
		Zip:     company.Prop("zip"),
		Country: company.Prop("country"),
	}
	out.CompanyLocation = model.JoinLocation(out.Company.Address, out.Company.City, out.Company.State, out.Company.Zip)

	return out
}
