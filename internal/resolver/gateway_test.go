package resolver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invitegen/internal/model"
)

func TestGatewayClientSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/directory/search", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		var req map[string]string
		assert.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "john smith", req["query"])
		assert.Equal(t, "name", req["searchType"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"id":"1","firstName":"John","lastName":"Smith","email":"js@acme.com","companyName":"Acme Co","companyAddress":"Springfield","companyCity":"Springfield"}],"total":1}`))
	}))
	defer srv.Close()

	g, err := NewGatewayClient(srv.URL)
	require.NoError(t, err)

	got := g.Search(context.Background(), "john smith", model.SearchTypeName)
	require.Len(t, got, 1)
	assert.Equal(t, "John Smith", got[0].FullName())
	assert.Equal(t, "Acme Co", got[0].CompanyName)
	assert.Equal(t, "Springfield", got[0].KnownLocation())
}

func TestGatewayClientList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/directory/contacts", r.URL.Path)
		_, _ = w.Write([]byte(`{"contacts":[{"id":"7","firstname":"Ada","lastname":"L","company":{"id":"55","name":"Engines"},"companyLocation":"London"}]}`))
	}))
	defer srv.Close()

	g, err := NewGatewayClient(srv.URL + "/")
	require.NoError(t, err)

	got := g.List(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, "Ada", got[0].FirstName)
	assert.Equal(t, "Engines", got[0].CompanyName)
	assert.Equal(t, "London", got[0].KnownLocation())
}

func TestGatewayClientDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"HubSpot access token not configured"}`))
			},
		},
		{
			name: "bad json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			g, err := NewGatewayClient(srv.URL)
			require.NoError(t, err)

			search := g.Search(context.Background(), "ab", model.SearchTypeEmail)
			assert.NotNil(t, search)
			assert.Empty(t, search)
			assert.Empty(t, g.List(context.Background()))
		})
	}
}

func TestGatewayClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g, err := NewGatewayClient(url)
	require.NoError(t, err)
	assert.Empty(t, g.Search(context.Background(), "ab", model.SearchTypeName))
}
