// Package rest implements the service.Service interface over the todo REST API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"todo/internal/categories"
	"todo/internal/config"
	"todo/internal/logging"
	"todo/internal/service"
)

const (
	// APITimeout is the default timeout for API calls.
	APITimeout = config.DefaultTimeout

	// RequestIDHeader correlates a request with the debug log.
	RequestIDHeader = "X-Request-ID"

	contentTypeJSON = "application/json"
)

// Client implements service.Service against the REST backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	createdBy  string
	updatedBy  string
	categories *categories.Map
	logger     *log.Logger
}

// Options configures a Client built with NewWithOptions.
type Options struct {
	// BaseURL is the API root, e.g. http://localhost:8081/api.
	BaseURL string

	// HTTPClient defaults to a plain client. Authentication wraps its transport.
	HTTPClient *http.Client

	// Timeout bounds each call; APITimeout when zero.
	Timeout time.Duration

	// CreateCreator is sent when creating a todo.
	CreateCreator string

	// UpdateCreator is sent with a full replacement.
	UpdateCreator string

	// Categories resolves list IDs. Defaults to a memory-only map.
	Categories *categories.Map

	// Logger receives debug request logs.
	Logger *log.Logger
}

// New creates a client from config. It loads the category map from the
// config dir and authenticates with token.json when present.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	cats := categories.New(cfg.CategoriesPath())
	cats.SetLogger(logger)
	if err := cats.Load(); err != nil {
		return nil, err
	}
	logger.Debug("categories loaded", "path", cats.Path(), "count", cats.Len())

	httpClient := &http.Client{}
	if cfg.HasToken() {
		token, err := LoadToken(cfg.TokenPath())
		if err != nil {
			return nil, err
		}
		httpClient = AuthClient(httpClient, token)
	}

	return NewWithOptions(Options{
		BaseURL:       cfg.BaseURL,
		HTTPClient:    httpClient,
		Timeout:       cfg.Timeout,
		CreateCreator: cfg.CreateCreator,
		UpdateCreator: cfg.UpdateCreator,
		Categories:    cats,
		Logger:        logger,
	})
}

// NewWithOptions creates a client from explicit options (used by tests).
func NewWithOptions(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("base url required")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url: %s", opts.BaseURL)
	}

	c := &Client{
		baseURL:    base,
		httpClient: opts.HTTPClient,
		timeout:    opts.Timeout,
		createdBy:  opts.CreateCreator,
		updatedBy:  opts.UpdateCreator,
		categories: opts.Categories,
		logger:     opts.Logger,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.timeout <= 0 {
		c.timeout = APITimeout
	}
	if c.createdBy == "" {
		c.createdBy = config.DefaultCreateCreator
	}
	if c.updatedBy == "" {
		c.updatedBy = config.DefaultUpdateCreator
	}
	if c.categories == nil {
		c.categories = categories.New("")
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	return c, nil
}

// LoadToken reads an oauth2.Token stored as JSON.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("invalid token.json: empty access token")
	}
	return &token, nil
}

// AuthClient returns a copy of base that sends token as a bearer credential.
func AuthClient(base *http.Client, token *oauth2.Token) *http.Client {
	out := *base
	out.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(token),
		Base:   base.Transport,
	}
	return &out
}

// ListTodos returns all todos for Overview, otherwise the todos whose
// category matches the list's label.
func (c *Client) ListTodos(ctx context.Context, listID string) ([]service.Todo, error) {
	path := "/todos"
	if listID != service.Overview {
		label, err := c.resolve("list", listID)
		if err != nil {
			return nil, err
		}
		path = "/todos/type/" + escapeComponent(label)
	}

	var todos []service.Todo
	if err := c.do(ctx, "list", http.MethodGet, path, nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

type createBody struct {
	Content  string `json:"content"`
	ListType string `json:"listType"`
	Creator  string `json:"creator"`
	IsRepeat bool   `json:"isRepeat"`
}

// CreateTodo creates a todo in listID. New todos never repeat.
func (c *Client) CreateTodo(ctx context.Context, content, listID string) (service.Todo, error) {
	if listID == service.Overview {
		return service.Todo{}, &service.UsageError{
			Op:     "create",
			ListID: listID,
			Reason: "cannot create a todo in list",
		}
	}
	label, err := c.resolve("create", listID)
	if err != nil {
		return service.Todo{}, err
	}

	body := createBody{
		Content:  content,
		ListType: label,
		Creator:  c.createdBy,
		IsRepeat: false,
	}
	var todo service.Todo
	if err := c.do(ctx, "create", http.MethodPost, "/todos", body, &todo); err != nil {
		return service.Todo{}, err
	}
	return todo, nil
}

type replaceBody struct {
	Content  string `json:"content"`
	Status   string `json:"status"`
	Creator  string `json:"creator"`
	IsRepeat bool   `json:"isRepeat"`
}

// patchBody always carries isRepeat; the backend drops it from partial
// updates that omit it.
type patchBody struct {
	Status   string `json:"status"`
	IsRepeat bool   `json:"isRepeat"`
}

// UpdateTodo sends a full replacement when u.Content is set, otherwise a
// status and isRepeat patch.
func (c *Client) UpdateTodo(ctx context.Context, id string, u service.Update) (service.Todo, error) {
	var body any
	if u.Content != nil && *u.Content != "" {
		body = replaceBody{
			Content:  *u.Content,
			Status:   u.Status,
			Creator:  c.updatedBy,
			IsRepeat: u.IsRepeat,
		}
	} else {
		body = patchBody{Status: u.Status, IsRepeat: u.IsRepeat}
	}

	var todo service.Todo
	if err := c.do(ctx, "update", http.MethodPut, todoPath(id), body, &todo); err != nil {
		return service.Todo{}, err
	}
	return todo, nil
}

// DeleteTodo deletes a todo.
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.do(ctx, "delete", http.MethodDelete, todoPath(id), nil, nil)
}

// GetTodo fetches a single todo.
func (c *Client) GetTodo(ctx context.Context, id string) (service.Todo, error) {
	var todo service.Todo
	if err := c.do(ctx, "get", http.MethodGet, todoPath(id), nil, &todo); err != nil {
		return service.Todo{}, err
	}
	return todo, nil
}

// ToggleRepeat negates currentIsRepeat and resends currentStatus.
func (c *Client) ToggleRepeat(ctx context.Context, id string, currentIsRepeat bool, currentStatus string) (service.Todo, error) {
	body := patchBody{Status: currentStatus, IsRepeat: !currentIsRepeat}
	var todo service.Todo
	if err := c.do(ctx, "toggle repeat", http.MethodPut, todoPath(id), body, &todo); err != nil {
		return service.Todo{}, err
	}
	return todo, nil
}

// ListCategories returns the category map sorted by list ID.
func (c *Client) ListCategories() []service.Category {
	entries := c.categories.Entries()
	out := make([]service.Category, 0, len(entries))
	for _, e := range entries {
		out = append(out, service.Category{
			ID:      e.ID,
			Label:   e.Label,
			BuiltIn: categories.IsDefault(e.ID),
		})
	}
	return out
}

// AddCategory maps id to label and persists the map.
func (c *Client) AddCategory(id, label string) error {
	id = strings.TrimSpace(id)
	switch {
	case id == "":
		return &service.UsageError{Op: "add list", Reason: "list id required"}
	case id == service.Overview:
		return &service.UsageError{Op: "add list", ListID: id, Reason: "reserved list id"}
	case strings.TrimSpace(label) == "":
		return &service.UsageError{Op: "add list", ListID: id, Reason: "label required for list"}
	}
	return c.categories.Add(id, label)
}

// RemoveCategory removes id and persists the map.
func (c *Client) RemoveCategory(id string) error {
	return c.categories.Remove(id)
}

func (c *Client) resolve(op, listID string) (string, error) {
	label, ok := c.categories.Resolve(listID)
	if !ok {
		return "", &service.UsageError{Op: op, ListID: listID, Reason: "unknown list"}
	}
	return label, nil
}

func todoPath(id string) string {
	return "/todos/" + escapeComponent(id)
}

// escapeComponent percent-encodes s as one path segment, leaving only
// letters, digits and -_.!~*'() unescaped.
func escapeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case 'a' <= ch && ch <= 'z', 'A' <= ch && ch <= 'Z', '0' <= ch && ch <= '9':
			b.WriteByte(ch)
		case strings.IndexByte("-_.!~*'()", ch) >= 0:
			b.WriteByte(ch)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[ch>>4])
			b.WriteByte(hex[ch&0x0f])
		}
	}
	return b.String()
}

// do sends one JSON request and decodes the response into out when out is
// non-nil and the body is not empty.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "id", reqID, "method", method, "path", path, "err", err)
		return &service.TransportError{Op: op, Err: wrapTransport(err)}
	}
	defer resp.Body.Close()

	c.logger.Debug("request",
		"id", reqID,
		"method", method,
		"path", req.URL.EscapedPath(),
		"status", resp.StatusCode,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if err := googleapi.CheckResponse(resp); err != nil {
		return &service.BackendError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &service.TransportError{Op: op, Err: wrapTransport(err)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// wrapTransport gives timeouts a stable message.
func wrapTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	return err
}
