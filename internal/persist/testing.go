package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/DragonRuins/hubdoc/pkg/clock"
)

// MemoryService is an in-memory Service for tests and offline use. It mirrors
// the server's slug behavior: slugs derive from titles, so a title change
// rewrites the slug in the update response.
type MemoryService struct {
	mu       sync.Mutex
	articles map[string]*Article

	// FailNext, when set, fails the next mutating call with that error and
	// clears itself. Lets tests exercise save-failure paths.
	FailNext error
	// OnUpdate observes every successful update, after commit.
	OnUpdate func(article *Article, patch ArticlePatch)
}

var _ Service = (*MemoryService)(nil)

func NewMemoryService() *MemoryService {
	return &MemoryService{articles: map[string]*Article{}}
}

// DefaultPerPage is the page size used when ListOptions leaves it unset.
const DefaultPerPage = 20

func (m *MemoryService) ListArticles(ctx context.Context, opts ListOptions) (*ArticleList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	needle := strings.ToLower(strings.TrimSpace(opts.Search))
	var matches []*Article
	for _, a := range m.articles {
		if opts.CategoryID != "" && a.CategoryID != opts.CategoryID {
			continue
		}
		if opts.Status != "" && a.Status != opts.Status {
			continue
		}
		if opts.TagID != "" && !hasTag(a, opts.TagID) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(a.Title), needle) {
			continue
		}
		clone := *a
		matches = append(matches, &clone)
	}

	// Without sort options the listing is most recently updated first.
	descending := opts.Order == "desc" || (opts.Order == "" && opts.Sort == "")
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if descending {
			a, b = b, a
		}
		switch opts.Sort {
		case "title":
			return a.Title < b.Title
		case "created_at":
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
	})

	total := len(matches)
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return &ArticleList{
		Articles:   matches[start:end],
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}, nil
}

func hasTag(a *Article, tagID string) bool {
	for _, tag := range a.Tags {
		if tag.ID == tagID {
			return true
		}
	}
	return false
}

func (m *MemoryService) GetArticle(ctx context.Context, articleSlug string) (*Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if article := m.bySlug(articleSlug); article != nil {
		clone := *article
		return &clone, nil
	}
	return nil, &TransportError{Op: "get article", Status: 404, Err: ErrNotFound}
}

func (m *MemoryService) CreateArticle(ctx context.Context, title string, content json.RawMessage) (*Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	now := clock.CurrentClock().Now()
	article := &Article{
		ID:        uuid.NewString(),
		Slug:      m.uniqueSlug(title),
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.articles[article.ID] = article
	clone := *article
	return &clone, nil
}

func (m *MemoryService) UpdateArticle(ctx context.Context, articleSlug string, patch ArticlePatch) (*Article, error) {
	m.mu.Lock()
	article := m.bySlug(articleSlug)
	if article == nil {
		m.mu.Unlock()
		return nil, &TransportError{Op: "update article", Status: 404, Err: ErrNotFound}
	}
	if err := m.takeFailure(); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if patch.Title != nil && *patch.Title != article.Title {
		article.Title = *patch.Title
		article.Slug = m.uniqueSlug(*patch.Title)
	}
	if patch.Content != nil {
		article.Content = patch.Content
	}
	if patch.CategoryID != nil {
		article.CategoryID = *patch.CategoryID
	}
	if patch.Status != nil {
		article.Status = *patch.Status
	}
	if patch.ParentID != nil {
		article.ParentID = *patch.ParentID
	}
	if patch.SourceURL != nil {
		article.SourceURL = *patch.SourceURL
	}
	if patch.Tags != nil {
		article.Tags = *patch.Tags
	}
	if patch.Pinned != nil {
		article.Pinned = *patch.Pinned
	}
	article.UpdatedAt = clock.CurrentClock().Now()
	clone := *article
	observer := m.OnUpdate
	m.mu.Unlock()

	if observer != nil {
		observer(&clone, patch)
	}
	return &clone, nil
}

func (m *MemoryService) DeleteArticle(ctx context.Context, articleSlug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	article := m.bySlug(articleSlug)
	if article == nil {
		return &TransportError{Op: "delete article", Status: 404, Err: ErrNotFound}
	}
	delete(m.articles, article.ID)
	return nil
}

func (m *MemoryService) SearchArticles(ctx context.Context, query string, limit int) ([]*Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	needle := strings.ToLower(strings.TrimSpace(query))
	var matches []*Article
	for _, a := range m.articles {
		if needle == "" || strings.Contains(strings.ToLower(a.Title), needle) {
			clone := *a
			matches = append(matches, &clone)
		}
	}
	// Prefix matches first, then most recently updated.
	sort.Slice(matches, func(i, j int) bool {
		pi := strings.HasPrefix(strings.ToLower(matches[i].Title), needle)
		pj := strings.HasPrefix(strings.ToLower(matches[j].Title), needle)
		if pi != pj {
			return pi
		}
		return matches[i].UpdatedAt.After(matches[j].UpdatedAt)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (m *MemoryService) RecentArticles(ctx context.Context, limit int) ([]*Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	articles := m.snapshot()
	sort.Slice(articles, func(i, j int) bool { return articles[i].UpdatedAt.After(articles[j].UpdatedAt) })
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}

func (m *MemoryService) UploadAttachment(ctx context.Context, filename string, data []byte) (*Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	return &Attachment{ID: uuid.NewString(), Filename: filename, Size: int64(len(data))}, nil
}

func (m *MemoryService) FileURL(id string) string {
	return "/api/files/" + id
}

// bySlug returns the live article with that slug. Callers hold m.mu.
func (m *MemoryService) bySlug(articleSlug string) *Article {
	for _, a := range m.articles {
		if a.Slug == articleSlug {
			return a
		}
	}
	return nil
}

func (m *MemoryService) snapshot() []*Article {
	articles := make([]*Article, 0, len(m.articles))
	for _, a := range m.articles {
		clone := *a
		articles = append(articles, &clone)
	}
	return articles
}

func (m *MemoryService) uniqueSlug(title string) string {
	base := slug.Make(title)
	if base == "" {
		base = "untitled"
	}
	candidate := base
	for i := 2; m.slugTaken(candidate); i++ {
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return candidate
}

func (m *MemoryService) slugTaken(candidate string) bool {
	for _, a := range m.articles {
		if a.Slug == candidate {
			return true
		}
	}
	return false
}

func (m *MemoryService) takeFailure() error {
	if m.FailNext == nil {
		return nil
	}
	err := m.FailNext
	m.FailNext = nil
	return err
}
