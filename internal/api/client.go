// Package api is the HTTP client for the task manager REST API (/api/v1).
//
// Every call sends the session credential verbatim in the Authorization
// header. A call succeeds only on a 2xx status. Each endpoint keeps its own
// response envelope and its own parse/check ordering.
package api

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

	"github.com/google/uuid"

	"github.com/idilsaglam/taskmgr/internal/model"
)

// BasePath is the versioned prefix every endpoint lives under.
const BasePath = "/api/v1"

// DefaultUserAgent is sent unless overridden with WithUserAgent.
const DefaultUserAgent = "taskmgr"

// Client talks to one API server. It holds no credential; callers pass the
// token on each call so a credential change never needs a new Client.
type Client struct {
	base      string
	http      *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each call. Zero, the default, means no bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a client for the server at baseURL (scheme and host, optional path).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:      strings.TrimRight(baseURL, "/") + BasePath,
		http:      http.DefaultClient,
		userAgent: DefaultUserAgent,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the versioned base every path is joined to.
func (c *Client) BaseURL() string { return c.base }

// projectsEnvelope is the GET /projects response shape.
type projectsEnvelope struct {
	Data []model.Project `json:"data"`
}

// ListProjects fetches all projects. Status is checked before the body is
// parsed; a missing "data" field yields an empty slice.
func (c *Client) ListProjects(ctx context.Context, token string) ([]model.Project, error) {
	const op = "GET /projects"
	resp, body, err := c.do(ctx, op, http.MethodGet, "/projects", token, nil)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(op, resp); err != nil {
		return nil, err
	}
	var env projectsEnvelope
	if err := decode(op, resp, body, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = []model.Project{}
	}
	return env.Data, nil
}

// CreateProject creates a project and returns the server's copy. Both a bare
// object and a {"data": {...}} envelope are accepted.
func (c *Client) CreateProject(ctx context.Context, token string, in model.NewProject) (model.Project, error) {
	const op = "POST /projects"
	resp, body, err := c.do(ctx, op, http.MethodPost, "/projects", token, in)
	if err != nil {
		return model.Project{}, err
	}
	if err := checkStatus(op, resp); err != nil {
		return model.Project{}, err
	}
	var env struct {
		Data *model.Project `json:"data"`
		model.Project
	}
	if err := decode(op, resp, body, &env); err != nil {
		return model.Project{}, err
	}
	if env.Data != nil {
		return *env.Data, nil
	}
	return env.Project, nil
}

// ListTasks fetches all tasks. The response is a bare array, and it is parsed
// before the status is checked. A JSON null yields an empty slice.
func (c *Client) ListTasks(ctx context.Context, token string) ([]model.Task, error) {
	const op = "GET /tasks"
	resp, body, err := c.do(ctx, op, http.MethodGet, "/tasks", token, nil)
	if err != nil {
		return nil, err
	}
	var tasks []model.Task
	if err := decode(op, resp, body, &tasks); err != nil {
		return nil, err
	}
	if err := checkStatus(op, resp); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// CreateTask creates a task and returns the server's copy.
func (c *Client) CreateTask(ctx context.Context, token string, in model.NewTask) (model.Task, error) {
	const op = "POST /tasks"
	resp, body, err := c.do(ctx, op, http.MethodPost, "/tasks", token, in)
	if err != nil {
		return model.Task{}, err
	}
	if err := checkStatus(op, resp); err != nil {
		return model.Task{}, err
	}
	var t model.Task
	if err := decode(op, resp, body, &t); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

// UpdateTaskStatus sends {"status": status} and returns the updated task as
// the server reports it. Only Status is guaranteed to be set.
func (c *Client) UpdateTaskStatus(ctx context.Context, token, id string, status model.Status) (model.Task, error) {
	const op = "PUT /tasks/:id"
	body := struct {
		Status model.Status `json:"status"`
	}{status}
	resp, raw, err := c.do(ctx, op, http.MethodPut, "/tasks/"+url.PathEscape(id), token, body)
	if err != nil {
		return model.Task{}, err
	}
	if err := checkStatus(op, resp); err != nil {
		return model.Task{}, err
	}
	var t model.Task
	if err := decode(op, resp, raw, &t); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

// DeleteTask deletes a task. Only the status matters; the body is ignored.
func (c *Client) DeleteTask(ctx context.Context, token, id string) error {
	const op = "DELETE /tasks/:id"
	resp, _, err := c.do(ctx, op, http.MethodDelete, "/tasks/"+url.PathEscape(id), token, nil)
	if err != nil {
		return err
	}
	return checkStatus(op, resp)
}

// do sends one request and reads the whole body. A transport failure
// (including a failed body read) is reported as KindTransport.
func (c *Client) do(ctx context.Context, op, method, path, token string, in any) (*http.Response, []byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var rd io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, nil, &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("encode body: %w", err)}
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	req.Header.Set("Authorization", token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	return resp, body, nil
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Kind: KindStatus, Op: op, StatusCode: resp.StatusCode}
	}
	return nil
}

func decode(op string, resp *http.Response, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &Error{Kind: KindDecode, Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}
