package hubspot

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *HTTPClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL+"/", token)
	require.NoError(t, err)
	return c
}

func TestSearchContacts(t *testing.T) {
	var got SearchRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/crm/v3/objects/contacts/search", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")

		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total":1,"results":[{"id":"1","properties":{"firstname":"John","lastname":"Smith"},
			"associations":{"companies":{"results":[{"id":"55","type":"contact_to_company"},{"id":"56"}]}}}]}`))
	}, "secret")

	page, err := c.SearchContacts(context.Background(), SearchRequest{
		FilterGroups: []FilterGroup{{Filters: []Filter{{PropertyName: "email", Operator: OperatorContainsToken, Value: "a@b.c"}}}},
		Properties:   SearchProperties,
		Limit:        SearchLimit,
	})
	require.NoError(t, err)

	assert.Equal(t, 50, got.Limit)
	assert.Equal(t, SearchProperties, got.Properties)
	require.Len(t, got.FilterGroups, 1)
	assert.Equal(t, "CONTAINS_TOKEN", got.FilterGroups[0].Filters[0].Operator)

	require.Len(t, page.Results, 1)
	assert.Equal(t, "John", page.Results[0].Prop("firstname"))
	assert.Equal(t, "", page.Results[0].Prop("email"))

	id, ok := page.Results[0].FirstAssociation("companies")
	assert.True(t, ok)
	assert.Equal(t, "55", id)
}

func TestListContactsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/crm/v3/objects/contacts", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "firstname,lastname,email,address,city,state,zip", r.URL.Query().Get("properties"))
		assert.Equal(t, "companies", r.URL.Query().Get("associations"))
		_, _ = w.Write([]byte(`{"results":[]}`))
	}, "secret")

	page, err := c.ListContacts(context.Background(), ListOptions{
		Limit:        ListLimit,
		Properties:   ListProperties,
		Associations: []string{"companies"},
	})
	require.NoError(t, err)
	assert.Empty(t, page.Results)
}

func TestBatchReadCompanies(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm/v3/objects/companies/batch/read", r.URL.Path)

		var req BatchReadRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, CompanyProperties, req.Properties)
		if assert.Len(t, req.Inputs, 2) {
			assert.Equal(t, "55", req.Inputs[0].ID)
		}

		_, _ = w.Write([]byte(`{"status":"COMPLETE","results":[{"id":"55","properties":{"name":"Acme Co","city":"Springfield"}}]}`))
	}, "secret")

	page, err := c.BatchReadCompanies(context.Background(), NewBatchReadRequest([]string{"55", "77"}, CompanyProperties))
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Acme Co", page.Results[0].Prop("name"))
}

func TestStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`rate limited`))
	}, "secret")

	_, err := c.SearchContacts(context.Background(), SearchRequest{Limit: 1})
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 429, se.StatusCode)
	assert.Equal(t, "HubSpot API error: 429 - rate limited", err.Error())
}

func TestTokenMissing(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, "")

	_, err := c.ListContacts(context.Background(), ListOptions{Limit: 1})
	assert.ErrorIs(t, err, ErrTokenMissing)
	assert.False(t, called)
}

func TestDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}, "secret")

	_, err := c.ListContacts(context.Background(), ListOptions{Limit: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestMockClientBatch(t *testing.T) {
	m := NewMockClient()
	m.Companies["55"] = map[string]string{"name": "Acme Co"}

	page, err := m.BatchReadCompanies(context.Background(), NewBatchReadRequest([]string{"55", "99"}, CompanyProperties))
	require.NoError(t, err)
	require.Len(t, page.Results, 1)

	search, list, batch := m.Calls()
	assert.Equal(t, 0, search)
	assert.Equal(t, 0, list)
	assert.Equal(t, 1, batch)
}
