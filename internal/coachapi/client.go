// Package coachapi talks to the AI coaching backend: chat, food image
// analysis, ideal values and meal plans.
package coachapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const maxErrorBody = 2048

// RemoteError is returned for every non-success answer of the backend.
type RemoteError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("coach api %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Observer gets one call per finished remote request.
type Observer interface {
	ObserveCoachCall(endpoint, outcome string, took time.Duration)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *freecache.Cache
	observer   Observer
	now        func() time.Time
}

// NewClient creates a client for the backend at baseURL. The cache keeps the
// daily meal plans; a nil cache gets a small private one.
func NewClient(baseURL string, httpClient *http.Client, cache *freecache.Cache) *Client {
	if cache == nil {
		cache = freecache.NewCache(1024 * 1024)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		cache:      cache,
		now:        time.Now,
	}
}

func (c *Client) WithObserver(o Observer) *Client {
	c.observer = o
	return c
}

func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// do sends one request and decodes a JSON answer into out when out is not nil.
// The raw body is returned as well.
func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, in, out interface{}) (raw []byte, err error) {
	start := time.Now()
	defer func() {
		if c.observer == nil {
			return
		}
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		c.observer.ObserveCoachCall(endpoint, outcome, time.Since(start))
	}()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("marshal %s request: %w", endpoint, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debugf("coach api: %s %s", method, u)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coach api %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	raw, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		msg := string(raw)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &RemoteError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: msg}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, fmt.Errorf("unmarshal %s response: %w", endpoint, err)
		}
	}
	return raw, nil
}
