package nps

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchAllSendsKeyAndPagingParams(t *testing.T) {
	var gotQueries []url.Values
	var gotKeys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQueries = append(gotQueries, r.URL.Query())
		gotKeys = append(gotKeys, r.Header.Get("X-Api-Key"))
		json.NewEncoder(w).Encode(map[string]any{
			"total": "1",
			"data":  []map[string]any{{"id": "a1"}},
		})
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: srv.URL})

	items, raw, err := client.FetchAll(context.Background(), EndpointAlerts, "zion")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.NotEmpty(t, raw)

	require.Len(t, gotQueries, 1)
	q := gotQueries[0]
	assert.Equal(t, "zion", q.Get("parkCode"))
	assert.Equal(t, "50", q.Get("limit"))
	assert.Equal(t, "0", q.Get("start"))
	assert.Equal(t, "test-key", gotKeys[0])
}

func TestFetchAllPaginates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		var data []map[string]any
		if start == 0 {
			for i := 0; i < 50; i++ {
				data = append(data, map[string]any{"id": strconv.Itoa(i)})
			}
		} else {
			data = []map[string]any{{"id": "50"}}
		}
		json.NewEncoder(w).Encode(map[string]any{"total": "51", "data": data})
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	items, _, err := client.FetchAll(context.Background(), EndpointParks, "zion")
	require.NoError(t, err)
	assert.Len(t, items, 51)
}
