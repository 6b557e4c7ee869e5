package hubspot

import (
	"context"
	"sync"
)

// MockClient 可配置的 HubSpot 客户端 mock，实现 Client 接口
type MockClient struct {
	mu sync.Mutex

	SearchCalls []SearchRequest
	ListCalls   []ListOptions
	BatchCalls  []BatchReadRequest

	SearchPage *ObjectPage
	ListPage   *ObjectPage
	// Companies 批量读取时按 ID 返回
	Companies map[string]map[string]string

	SearchErr error
	ListErr   error
	BatchErr  error
}

func NewMockClient() *MockClient {
	return &MockClient{
		Companies: make(map[string]map[string]string),
	}
}

func (m *MockClient) SearchContacts(ctx context.Context, req SearchRequest) (*ObjectPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SearchCalls = append(m.SearchCalls, req)
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	if m.SearchPage == nil {
		return &ObjectPage{}, nil
	}
	return m.SearchPage, nil
}

func (m *MockClient) ListContacts(ctx context.Context, opts ListOptions) (*ObjectPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListCalls = append(m.ListCalls, opts)
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	if m.ListPage == nil {
		return &ObjectPage{}, nil
	}
	return m.ListPage, nil
}

func (m *MockClient) BatchReadCompanies(ctx context.Context, req BatchReadRequest) (*ObjectPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.BatchCalls = append(m.BatchCalls, req)
	if m.BatchErr != nil {
		return nil, m.BatchErr
	}

	page := &ObjectPage{}
	for _, in := range req.Inputs {
		if props, ok := m.Companies[in.ID]; ok {
			page.Results = append(page.Results, Object{ID: in.ID, Properties: props})
		}
	}
	return page, nil
}

// Calls 返回三类调用的次数
func (m *MockClient) Calls() (search, list, batch int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SearchCalls), len(m.ListCalls), len(m.BatchCalls)
}
