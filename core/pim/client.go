package pim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client defines the interface for catalog service operations.
type Client interface {
	// FetchTree retrieves the nested catalog tree rooted at catalogID.
	// The payload is returned undecoded; shape validation belongs to the
	// flattener.
	FetchTree(ctx context.Context, catalogID int) (json.RawMessage, error)
	// CreateNode creates a single catalog node under the given parent.
	// Node ids and nested-set bounds are assigned server-side; callers must
	// re-fetch the tree to observe them.
	CreateNode(ctx context.Context, req CreateNodeRequest) error
}

// CreateNodeRequest is the payload for a remote node creation.
type CreateNodeRequest struct {
	Header    string `json:"header"`
	ParentID  int    `json:"parentId"`
	LastLevel bool   `json:"lastLevel"`
}

// apiEnvelope is the standard response wrapper of the catalog service.
type apiEnvelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type httpClient struct {
	cfg  Config
	http *http.Client

	mu    sync.Mutex
	token string
}

// NewClient creates an authenticated catalog service client. The session
// token is fetched lazily on the first request and refreshed once
// transparently when the service reports it expired.
func NewClient(cfg Config) Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	return &httpClient{
		cfg: cfg,
		http: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
	}
}

func (c *httpClient) FetchTree(ctx context.Context, catalogID int) (json.RawMessage, error) {
	data, err := c.call(ctx, http.MethodGet, fmt.Sprintf("/catalog/%d", catalogID), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog tree %d: %w", catalogID, err)
	}
	return data, nil
}

func (c *httpClient) CreateNode(ctx context.Context, req CreateNodeRequest) error {
	// The rapid endpoint expects the full node shape; ids and positions are
	// service-assigned, pos is a fixed append-at-end hint.
	body := map[string]any{
		"id":        0,
		"parentId":  req.ParentID,
		"header":    req.Header,
		"enabled":   true,
		"deleted":   false,
		"lastLevel": req.LastLevel,
		"pos":       500,
	}
	if _, err := c.call(ctx, http.MethodPost, "/catalog/rapid", body); err != nil {
		return fmt.Errorf("create node %q under %d: %w", req.Header, req.ParentID, err)
	}
	return nil
}

// call performs an authenticated request and unwraps the service envelope.
// An expired session (401/403) triggers exactly one re-authentication and
// retry; further failures surface to the caller.
func (c *httpClient) call(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	token, err := c.sessionToken(ctx, false)
	if err != nil {
		return nil, err
	}

	data, status, err := c.do(ctx, method, path, body, token)
	if err == nil && (status == http.StatusUnauthorized || status == http.StatusForbidden) {
		token, err = c.sessionToken(ctx, true)
		if err != nil {
			return nil, err
		}
		data, status, err = c.do(ctx, method, path, body, token)
	}
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%s %s: unexpected status %d", method, path, status)
	}
	return data, nil
}

func (c *httpClient) do(ctx context.Context, method, path string, body any, token string) (json.RawMessage, int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}

	var env apiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Not every endpoint wraps its payload
		return raw, resp.StatusCode, nil
	}
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request rejected"
		}
		return nil, resp.StatusCode, fmt.Errorf("%s %s: %s", method, path, msg)
	}
	if len(env.Data) > 0 {
		return env.Data, resp.StatusCode, nil
	}
	return raw, resp.StatusCode, nil
}

// sessionToken returns the cached token, signing in when none is held or
// when force is set.
func (c *httpClient) sessionToken(ctx context.Context, force bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && !force {
		return c.token, nil
	}

	payload := map[string]any{
		"login":    c.cfg.Login,
		"password": c.cfg.Password,
		"remember": true,
	}
	data, status, err := c.do(ctx, http.MethodPost, "/sign-in/", payload, "")
	if err != nil {
		return "", fmt.Errorf("sign-in: %w", err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("sign-in: unexpected status %d", status)
	}

	var signIn struct {
		Access struct {
			Token string `json:"token"`
		} `json:"access"`
	}
	if err := json.Unmarshal(data, &signIn); err != nil || signIn.Access.Token == "" {
		return "", fmt.Errorf("sign-in: no token in response")
	}

	c.token = signIn.Access.Token
	return c.token, nil
}

func (c *httpClient) url(path string) string {
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
