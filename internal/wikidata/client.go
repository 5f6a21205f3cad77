package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/ppiankov/claimflow/internal/model"
	"github.com/ppiankov/claimflow/internal/worker"
)

const clientUserAgent = "claimflow/0.1 (+https://github.com/ppiankov/claimflow)"

// QueryCache stores candidate responses keyed by query string.
type QueryCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

// Client queries the Qnode candidate service for free-text mentions.
type Client struct {
	httpClient *http.Client
	endpoint   string
	k          int
	maxBytes   int64
	limiter    *worker.Limiter
	cache      QueryCache
	host       string
}

// NewClient creates a candidate client. cache may be nil to disable caching.
func NewClient(cfg model.LinkerConfig, limiter *worker.Limiter, cache QueryCache) (*Client, error) {
	parsed, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse linker endpoint: %w", err)
	}
	k := cfg.K
	if k <= 0 {
		k = 1
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		endpoint:   cfg.Endpoint,
		k:          k,
		maxBytes:   cfg.MaxBodyBytes,
		limiter:    limiter,
		cache:      cache,
		host:       parsed.Host,
	}, nil
}

// candidate is one entry of the service's response.
type candidate struct {
	Qnode       string   `json:"qnode"`
	Label       []string `json:"label"`
	Description []string `json:"description"`
	Score       float64  `json:"score"`
}

// Candidates returns up to k Qnode candidates for a query string, best first.
func (c *Client) Candidates(ctx context.Context, query string) ([]*model.Qnode, error) {
	if query == "" {
		return nil, nil
	}

	if c.cache != nil {
		if data, ok := c.cache.Get(query); ok {
			return c.decode(data, query)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.host); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	reqURL := fmt.Sprintf("%s?q=%s&type=ngram&extra_info=true&language=en&item=qnode&size=%d",
		c.endpoint, url.QueryEscape(query), c.k)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", clientUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if c.cache != nil {
		c.cache.Set(query, body)
	}
	return c.decode(body, query)
}

// Best returns the top candidate for a query, or nil when nothing matched.
func (c *Client) Best(ctx context.Context, query string) (*model.Qnode, error) {
	candidates, err := c.Candidates(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return candidates[0], nil
}

func (c *Client) decode(data []byte, query string) ([]*model.Qnode, error) {
	var raw []candidate
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode candidates for %q: %w", query, err)
	}

	qnodes := make([]*model.Qnode, 0, len(raw))
	for _, cand := range raw {
		if cand.Qnode == "" {
			continue
		}
		qnode := &model.Qnode{
			QnodeID:   cand.Qnode,
			Score:     cand.Score,
			FromQuery: query,
		}
		if len(cand.Label) > 0 {
			qnode.Label = cand.Label[0]
		}
		if len(cand.Description) > 0 {
			qnode.Description = cand.Description[0]
		}
		qnodes = append(qnodes, qnode)
	}
	return qnodes, nil
}
