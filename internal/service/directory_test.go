package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invitegen/internal/model/dto"
	pkgerrors "invitegen/pkg/errors"
	"invitegen/pkg/hubspot"
)

type fakeListCache struct {
	stored *dto.ListResponse
	sets   int
}

func (c *fakeListCache) Get(ctx context.Context) (*dto.ListResponse, bool) {
	if c.stored == nil {
		return nil, false
	}
	return c.stored, true
}

func (c *fakeListCache) Set(ctx context.Context, resp *dto.ListResponse) {
	c.stored = resp
	c.sets++
}

func withCompany(obj hubspot.Object, ids ...string) hubspot.Object {
	refs := make([]hubspot.AssociationRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, hubspot.AssociationRef{ID: id, Type: "contact_to_company"})
	}
	obj.Associations = map[string]hubspot.AssociationList{"companies": {Results: refs}}
	return obj
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	mock := hubspot.NewMockClient()
	svc := NewDirectoryService(mock, nil)

	_, err := svc.Search(context.Background(), dto.SearchRequest{Query: "   ", SearchType: "name"})
	assert.ErrorIs(t, err, pkgerrors.SearchQueryRequired)

	search, _, _ := mock.Calls()
	assert.Zero(t, search)
}

func TestSearchUnknownTypeFallsBackToName(t *testing.T) {
	mock := hubspot.NewMockClient()
	svc := NewDirectoryService(mock, nil)

	_, err := svc.Search(context.Background(), dto.SearchRequest{Query: "ada", SearchType: "nickname"})
	require.NoError(t, err)

	require.Len(t, mock.SearchCalls, 1)
	assert.Equal(t, BuildFilterGroups("ada", "name"), mock.SearchCalls[0].FilterGroups)
	assert.Equal(t, 50, mock.SearchCalls[0].Limit)
	assert.Equal(t, hubspot.SearchProperties, mock.SearchCalls[0].Properties)
}

func TestSearchMergesFirstCompanyOnly(t *testing.T) {
	mock := hubspot.NewMockClient()
	mock.SearchPage = &hubspot.ObjectPage{Results: []hubspot.Object{
		withCompany(hubspot.Object{ID: "1", Properties: map[string]string{
			"firstname": "Ada", "lastname": "Lovelace", "email": "ada@x.com",
			"address": "1 Main St", "city": "London", "zip": "N1",
		}}, "10", "11"),
		withCompany(hubspot.Object{ID: "2", Properties: map[string]string{
			"firstname": "Bob", "company": "Fallback Inc",
		}}, "10"),
		{ID: "3", Properties: map[string]string{"firstname": "Cy", "company": "Loose Text"}},
		withCompany(hubspot.Object{ID: "4", Properties: map[string]string{"firstname": "Di"}}, "99"),
	}}
	mock.Companies["10"] = map[string]string{"name": "Acme", "address": "5 Road", "city": "Paris", "country": "FR"}
	mock.Companies["11"] = map[string]string{"name": "Ignored"}

	svc := NewDirectoryService(mock, nil)
	resp, err := svc.Search(context.Background(), dto.SearchRequest{Query: "a", SearchType: "name"})
	require.NoError(t, err)

	require.Len(t, mock.BatchCalls, 1)
	ids := make([]string, 0)
	for _, in := range mock.BatchCalls[0].Inputs {
		ids = append(ids, in.ID)
	}
	assert.Equal(t, []string{"10", "99"}, ids)
	assert.Equal(t, hubspot.CompanyProperties, mock.BatchCalls[0].Properties)

	require.Equal(t, 4, resp.Total)
	ada := resp.Results[0]
	assert.Equal(t, "1 Main St, London, N1", ada.ContactAddress)
	assert.Equal(t, "Acme", ada.CompanyName)
	assert.Equal(t, "5 Road, Paris", ada.CompanyAddress)
	assert.Equal(t, "Paris", ada.CompanyCity)

	assert.Equal(t, "Acme", resp.Results[1].CompanyName)
	assert.Equal(t, "Loose Text", resp.Results[2].CompanyName)
	assert.Equal(t, "", resp.Results[2].CompanyAddress)

	// 公司 99 没有查到：不报错，公司字段为空
	assert.Equal(t, "", resp.Results[3].CompanyName)
	assert.Equal(t, "", resp.Results[3].CompanyAddress)
}

func TestSearchEnrichmentDegradation(t *testing.T) {
	mock := hubspot.NewMockClient()
	mock.SearchPage = &hubspot.ObjectPage{Results: []hubspot.Object{
		withCompany(hubspot.Object{ID: "1", Properties: map[string]string{
			"firstname": "Ada", "lastname": "Lovelace", "email": "ada@x.com", "phone": "555", "city": "London",
		}}, "10"),
	}}
	mock.BatchErr = &hubspot.StatusError{StatusCode: 502, Body: "bad gateway"}

	svc := NewDirectoryService(mock, nil)
	resp, err := svc.Search(context.Background(), dto.SearchRequest{Query: "ada"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	got := resp.Results[0]
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, "Lovelace", got.LastName)
	assert.Equal(t, "ada@x.com", got.Email)
	assert.Equal(t, "555", got.Phone)
	assert.Equal(t, "London", got.ContactAddress)
	assert.Empty(t, got.CompanyName)
	assert.Empty(t, got.CompanyAddress)
	assert.Empty(t, got.CompanyCity)
}

func TestSearchUpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    pkgerrors.Definition
		message string
	}{
		{"missing token", hubspot.ErrTokenMissing, pkgerrors.UpstreamAuthError, "HubSpot access token not configured"},
		{"unauthorized", &hubspot.StatusError{StatusCode: 401, Body: "expired"}, pkgerrors.UpstreamAuthError, "HubSpot API error: 401 - expired"},
		{"server error", &hubspot.StatusError{StatusCode: 500, Body: "oops"}, pkgerrors.UpstreamRequestError, "HubSpot API error: 500 - oops"},
		{"network", errors.New("dial tcp: refused"), pkgerrors.UpstreamRequestError, "dial tcp: refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := hubspot.NewMockClient()
			mock.SearchErr = tt.err

			_, err := NewDirectoryService(mock, nil).Search(context.Background(), dto.SearchRequest{Query: "x"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestListLegacyShapeAndCache(t *testing.T) {
	mock := hubspot.NewMockClient()
	mock.ListPage = &hubspot.ObjectPage{Results: []hubspot.Object{
		withCompany(hubspot.Object{ID: "1", Properties: map[string]string{
			"firstname": "Ada", "lastname": "Lovelace", "email": "ada@x.com", "city": "London",
		}}, "10"),
		{ID: "2", Properties: map[string]string{"firstname": "Bob"}},
	}}
	mock.Companies["10"] = map[string]string{"name": "Acme", "city": "Paris", "state": "IDF", "country": "FR"}

	listCache := &fakeListCache{}
	svc := NewDirectoryService(mock, listCache)

	resp, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Contacts, 2)

	require.Len(t, mock.ListCalls, 1)
	assert.Equal(t, 100, mock.ListCalls[0].Limit)
	assert.Equal(t, []string{"companies"}, mock.ListCalls[0].Associations)

	ada := resp.Contacts[0]
	assert.Equal(t, "Ada", ada.FirstName)
	assert.Equal(t, "London", ada.City)
	require.NotNil(t, ada.Company)
	assert.Equal(t, "10", ada.Company.ID)
	assert.Equal(t, "FR", ada.Company.Country)
	assert.Equal(t, "Paris, IDF", ada.CompanyLocation)

	assert.Nil(t, resp.Contacts[1].Company)

	raw, err := json.Marshal(resp.Contacts[1])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"company":null`)
	assert.Contains(t, string(raw), `"firstname":"Bob"`)

	// 第二次命中缓存
	_, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, mock.ListCalls, 1)
	assert.Equal(t, 1, listCache.sets)
}

func TestListBatchFailureIsNonFatal(t *testing.T) {
	mock := hubspot.NewMockClient()
	mock.ListPage = &hubspot.ObjectPage{Results: []hubspot.Object{
		withCompany(hubspot.Object{ID: "1", Properties: map[string]string{"firstname": "Ada"}}, "10"),
	}}
	mock.BatchErr = errors.New("timeout")

	resp, err := NewDirectoryService(mock, nil).List(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Contacts, 1)
	assert.Nil(t, resp.Contacts[0].Company)
	assert.Empty(t, resp.Contacts[0].CompanyLocation)
}

func TestRefreshBypassesCache(t *testing.T) {
	mock := hubspot.NewMockClient()
	mock.ListPage = &hubspot.ObjectPage{Results: []hubspot.Object{{ID: "1"}}}

	listCache := &fakeListCache{stored: &dto.ListResponse{Contacts: []dto.ListContact{}}}
	n, err := NewDirectoryService(mock, listCache).Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Len(t, mock.ListCalls, 1)
	assert.Len(t, listCache.stored.Contacts, 1)
}

func TestListEmptyEncodesArray(t *testing.T) {
	resp, err := NewDirectoryService(hubspot.NewMockClient(), nil).List(context.Background())
	require.NoError(t, err)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"contacts":[]}`, string(raw))
}

// John Smith 端到端：真实 HTTP 客户端对接一个模拟 CRM
func TestSearchJohnSmithEndToEnd(t *testing.T) {
	var searchBody hubspot.SearchRequest
	var batchBody hubspot.BatchReadRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/crm/v3/objects/contacts/search":
			_ = json.NewDecoder(r.Body).Decode(&searchBody)
			_, _ = w.Write([]byte(`{"total":1,"results":[{"id":"101","properties":{"firstname":"John","lastname":"Smith","email":"john@acme.co"},
				"associations":{"companies":{"results":[{"id":"55","type":"contact_to_company"}]}}}]}`))
		case "/crm/v3/objects/companies/batch/read":
			_ = json.NewDecoder(r.Body).Decode(&batchBody)
			_, _ = w.Write([]byte(`{"results":[{"id":"55","properties":{"name":"Acme Co","city":"Springfield"}}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client, err := hubspot.NewHTTPClient(srv.URL, "token")
	require.NoError(t, err)

	resp, err := NewDirectoryService(client, nil).Search(context.Background(), dto.SearchRequest{
		Query:      "John Smith",
		SearchType: "name",
	})
	require.NoError(t, err)

	assert.Equal(t, []hubspot.FilterGroup{
		{Filters: []hubspot.Filter{f("firstname", "John"), f("lastname", "Smith")}},
		{Filters: []hubspot.Filter{f("firstname", "Smith"), f("lastname", "John")}},
	}, searchBody.FilterGroups)

	require.Len(t, batchBody.Inputs, 1)
	assert.Equal(t, "55", batchBody.Inputs[0].ID)

	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "Acme Co", resp.Results[0].CompanyName)
	assert.Contains(t, resp.Results[0].CompanyAddress, "Springfield")
}
