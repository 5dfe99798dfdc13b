// Package persist is the boundary between the editor subsystem and article
// storage. Callers program against Service; the HTTP client talks to the hub
// API and MemoryService backs tests.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Tag is a label attached to an article.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Article is a stored document with its routing metadata. Content is the
// serialized document JSON; the caller parses it against its schema.
type Article struct {
	ID         string          `json:"id"`
	Slug       string          `json:"slug"`
	Title      string          `json:"title"`
	Content    json.RawMessage `json:"content"`
	CategoryID string          `json:"category_id,omitempty"`
	Status     string          `json:"status,omitempty"`
	ParentID   string          `json:"parent_id,omitempty"`
	SourceURL  string          `json:"source_url,omitempty"`
	Tags       []Tag           `json:"tags,omitempty"`
	Pinned     bool            `json:"pinned,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ArticlePatch is a partial update. Nil fields are left untouched; the
// server may canonicalize the slug when the title changes, so the returned
// article is authoritative.
type ArticlePatch struct {
	Title      *string         `json:"title,omitempty"`
	Content    json.RawMessage `json:"content,omitempty"`
	CategoryID *string         `json:"category_id,omitempty"`
	Status     *string         `json:"status,omitempty"`
	ParentID   *string         `json:"parent_id,omitempty"`
	SourceURL  *string         `json:"source_url,omitempty"`
	Tags       *[]Tag          `json:"tags,omitempty"`
	Pinned     *bool           `json:"pinned,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ArticlePatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.CategoryID == nil &&
		p.Status == nil && p.ParentID == nil && p.SourceURL == nil &&
		p.Tags == nil && p.Pinned == nil
}

// Merge overlays later onto p: fields set in later win. Content merges
// wholesale, matching save coalescing where the newest document wins.
func (p ArticlePatch) Merge(later ArticlePatch) ArticlePatch {
	merged := p
	if later.Title != nil {
		merged.Title = later.Title
	}
	if later.Content != nil {
		merged.Content = later.Content
	}
	if later.CategoryID != nil {
		merged.CategoryID = later.CategoryID
	}
	if later.Status != nil {
		merged.Status = later.Status
	}
	if later.ParentID != nil {
		merged.ParentID = later.ParentID
	}
	if later.SourceURL != nil {
		merged.SourceURL = later.SourceURL
	}
	if later.Tags != nil {
		merged.Tags = later.Tags
	}
	if later.Pinned != nil {
		merged.Pinned = later.Pinned
	}
	return merged
}

// ListOptions filters and pages an article listing. Zero values mean "no
// filter"; Page counts from 1.
type ListOptions struct {
	Page       int
	PerPage    int
	CategoryID string
	TagID      string
	Status     string
	Search     string
	// Sort names the column ("title", "updated_at", ...); Order is "asc" or
	// "desc".
	Sort  string
	Order string
}

// ArticleList is one page of a listing with its pagination envelope.
type ArticleList struct {
	Articles   []*Article `json:"articles"`
	Total      int        `json:"total"`
	TotalPages int        `json:"total_pages"`
}

// Attachment is an uploaded file reference.
type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type,omitempty"`
}

// Service is everything the editor subsystem needs from storage.
type Service interface {
	ListArticles(ctx context.Context, opts ListOptions) (*ArticleList, error)
	GetArticle(ctx context.Context, slug string) (*Article, error)
	CreateArticle(ctx context.Context, title string, content json.RawMessage) (*Article, error)
	// UpdateArticle is keyed by slug; the returned article carries the
	// canonical slug, which may differ after a title change.
	UpdateArticle(ctx context.Context, slug string, patch ArticlePatch) (*Article, error)
	DeleteArticle(ctx context.Context, slug string) error
	// SearchArticles matches titles, best first. limit caps the result.
	SearchArticles(ctx context.Context, query string, limit int) ([]*Article, error)
	// RecentArticles returns the most recently updated articles.
	RecentArticles(ctx context.Context, limit int) ([]*Article, error)
	UploadAttachment(ctx context.Context, filename string, data []byte) (*Attachment, error)
	// FileURL resolves an attachment id to a fetchable URL.
	FileURL(id string) string
}

// ErrNotFound reports a slug or id with no article behind it.
var ErrNotFound = errors.New("article not found")

// TransportError wraps a failed exchange with the storage backend. Save
// failures surface through it so the autosave controller can distinguish
// transport trouble from validation rejections.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
