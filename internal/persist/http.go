package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/DragonRuins/hubdoc/pkg/logging"
)

// Client implements Service over the hub's REST API.
type Client struct {
	base  *url.URL
	http  *http.Client
	token string
}

type ClientOption func(*Client)

// WithToken sets the bearer token attached to every request.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	c := &Client{
		base: base,
		http: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) ListArticles(ctx context.Context, opts ListOptions) (*ArticleList, error) {
	query := url.Values{}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(opts.PerPage))
	}
	if opts.CategoryID != "" {
		query.Set("category_id", opts.CategoryID)
	}
	if opts.TagID != "" {
		query.Set("tag_id", opts.TagID)
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.Search != "" {
		query.Set("search", opts.Search)
	}
	if opts.Sort != "" {
		query.Set("sort", opts.Sort)
	}
	if opts.Order != "" {
		query.Set("order", opts.Order)
	}
	path := "/api/articles"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var list ArticleList
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) GetArticle(ctx context.Context, slug string) (*Article, error) {
	var article Article
	err := c.do(ctx, http.MethodGet, "/api/articles/"+url.PathEscape(slug), nil, &article)
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (c *Client) CreateArticle(ctx context.Context, title string, content json.RawMessage) (*Article, error) {
	body := map[string]any{"title": title, "content": content}
	var article Article
	if err := c.do(ctx, http.MethodPost, "/api/articles", body, &article); err != nil {
		return nil, err
	}
	return &article, nil
}

func (c *Client) UpdateArticle(ctx context.Context, slug string, patch ArticlePatch) (*Article, error) {
	var article Article
	err := c.do(ctx, http.MethodPatch, "/api/articles/"+url.PathEscape(slug), patch, &article)
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (c *Client) DeleteArticle(ctx context.Context, slug string) error {
	return c.do(ctx, http.MethodDelete, "/api/articles/"+url.PathEscape(slug), nil, nil)
}

func (c *Client) SearchArticles(ctx context.Context, query string, limit int) ([]*Article, error) {
	path := "/api/articles/search?q=" + url.QueryEscape(query) + "&limit=" + strconv.Itoa(limit)
	var articles []*Article
	if err := c.do(ctx, http.MethodGet, path, nil, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

func (c *Client) RecentArticles(ctx context.Context, limit int) ([]*Article, error) {
	path := "/api/articles/recent?limit=" + strconv.Itoa(limit)
	var articles []*Article
	if err := c.do(ctx, http.MethodGet, path, nil, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

func (c *Client) UploadAttachment(ctx context.Context, filename string, data []byte) (*Attachment, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return nil, &TransportError{Op: "upload attachment", Err: err}
	}
	if _, err := part.Write(data); err != nil {
		return nil, &TransportError{Op: "upload attachment", Err: err}
	}
	if err := form.Close(); err != nil {
		return nil, &TransportError{Op: "upload attachment", Err: err}
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/files", &buf)
	if err != nil {
		return nil, &TransportError{Op: "upload attachment", Err: err}
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	var attachment Attachment
	if err := c.send(req, "upload attachment", &attachment); err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (c *Client) FileURL(id string) string {
	ref := c.base.JoinPath("/api/files", id)
	return ref.String()
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	op := fmt.Sprintf("%s %s", method, path)
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: err}
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, op, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.ResolveReference(ref).String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, op string, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	logging.CurrentLogger().Debugf("persist: %s -> %d (%s)", op, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusNotFound {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: ErrNotFound}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("%s", bytes.TrimSpace(message))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
