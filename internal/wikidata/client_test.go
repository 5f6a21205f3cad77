package wikidata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/claimflow/internal/model"
)

const candidateResponse = `[
	{"qnode": "Q84263196", "label": ["COVID-19"], "description": ["contagious disease"], "score": 0.9},
	{"qnode": "Q82069695", "label": ["SARS-CoV-2"], "description": ["strain of coronavirus"], "score": 0.5}
]`

type mapCache struct {
	entries map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{entries: make(map[string][]byte)} }

func (c *mapCache) Get(key string) ([]byte, bool) {
	data, ok := c.entries[key]
	return data, ok
}

func (c *mapCache) Set(key string, value []byte) { c.entries[key] = value }

func testClient(t *testing.T, handler http.HandlerFunc, cache QueryCache) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(model.LinkerConfig{
		Endpoint:     server.URL,
		K:            2,
		Timeout:      5 * time.Second,
		MaxBodyBytes: 1 << 20,
	}, nil, cache)
	require.NoError(t, err)
	return client
}

func TestClient_Candidates(t *testing.T) {
	var gotQuery string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(candidateResponse))
	}, nil)

	candidates, err := client.Candidates(context.Background(), "covid-19")
	require.NoError(t, err)
	assert.Equal(t, "covid-19", gotQuery)
	require.Len(t, candidates, 2)

	first := candidates[0]
	assert.Equal(t, "Q84263196", first.QnodeID)
	assert.Equal(t, "COVID-19", first.Label)
	assert.Equal(t, "contagious disease", first.Description)
	assert.Equal(t, "covid-19", first.FromQuery)
}

func TestClient_Best(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(candidateResponse))
	}, nil)

	best, err := client.Best(context.Background(), "covid-19")
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, "Q84263196", best.QnodeID)
}

func TestClient_EmptyQuery(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request for empty query")
	}, nil)

	candidates, err := client.Candidates(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, candidates)
}

func TestClient_CacheAvoidsSecondRequest(t *testing.T) {
	var requests int32
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Write([]byte(candidateResponse))
	}, newMapCache())

	for i := 0; i < 3; i++ {
		candidates, err := client.Candidates(context.Background(), "covid-19")
		require.NoError(t, err)
		require.Len(t, candidates, 2)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestClient_ErrorStatus(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}, nil)

	_, err := client.Candidates(context.Background(), "covid-19")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}
