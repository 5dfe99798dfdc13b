package persist

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DragonRuins/hubdoc/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatchMerge(t *testing.T) {
	title := "Old"
	newTitle := "New"
	pinned := true
	category := "c1"
	status := "published"

	earlier := ArticlePatch{Title: &title, Content: json.RawMessage(`{"v":1}`), CategoryID: &category}
	later := ArticlePatch{Title: &newTitle, Pinned: &pinned, Status: &status}

	merged := earlier.Merge(later)
	require.NotNil(t, merged.Title)
	assert.Equal(t, "New", *merged.Title)
	assert.JSONEq(t, `{"v":1}`, string(merged.Content))
	require.NotNil(t, merged.Pinned)
	assert.True(t, *merged.Pinned)

	// Fields only the earlier patch set survive the overlay
	require.NotNil(t, merged.CategoryID)
	assert.Equal(t, "c1", *merged.CategoryID)
	require.NotNil(t, merged.Status)
	assert.Equal(t, "published", *merged.Status)

	assert.True(t, ArticlePatch{}.Empty())
	assert.False(t, ArticlePatch{Status: &status}.Empty())
	assert.False(t, merged.Empty())
}

func TestMemoryServiceSlugFollowsTitle(t *testing.T) {
	clock.Freeze()
	t.Cleanup(clock.Unfreeze)
	ctx := context.Background()
	svc := NewMemoryService()

	article, err := svc.CreateArticle(ctx, "Garden Notes", json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "garden-notes", article.Slug)

	// Duplicate titles get numbered slugs
	twin, err := svc.CreateArticle(ctx, "Garden Notes", json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "garden-notes-2", twin.Slug)

	// A title change rewrites the slug in the update response
	title := "Winter Garden"
	updated, err := svc.UpdateArticle(ctx, article.Slug, ArticlePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "winter-garden", updated.Slug)

	// The old slug no longer resolves
	_, err = svc.GetArticle(ctx, "garden-notes")
	assert.ErrorIs(t, err, ErrNotFound)
	found, err := svc.GetArticle(ctx, "winter-garden")
	require.NoError(t, err)
	assert.Equal(t, article.ID, found.ID)
}

func TestMemoryServiceFailNext(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()
	article, err := svc.CreateArticle(ctx, "Stable", json.RawMessage(`{}`))
	require.NoError(t, err)

	boom := errors.New("backend down")
	svc.FailNext = boom
	_, err = svc.UpdateArticle(ctx, article.Slug, ArticlePatch{Content: json.RawMessage(`{"v":2}`)})
	assert.ErrorIs(t, err, boom)

	// The failure clears itself
	_, err = svc.UpdateArticle(ctx, article.Slug, ArticlePatch{Content: json.RawMessage(`{"v":2}`)})
	assert.NoError(t, err)

	// Updates resolve by slug; an unknown slug is a 404
	_, err = svc.UpdateArticle(ctx, "no-such-slug", ArticlePatch{Content: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryServiceListFiltersAndPages(t *testing.T) {
	testClock := clock.Freeze()
	t.Cleanup(clock.Unfreeze)
	ctx := context.Background()
	svc := NewMemoryService()

	published := "published"
	draft := "draft"
	category := "c-guides"
	gardening := []Tag{{ID: "t-gardening", Name: "gardening", Color: "#3a5"}}
	seed := []struct {
		title  string
		status *string
		tags   *[]Tag
	}{
		{"Mulching Basics", &published, &gardening},
		{"Pruning Roses", &published, nil},
		{"Compost Draft", &draft, &gardening},
		{"Reading List", &published, nil},
	}
	for _, s := range seed {
		article, err := svc.CreateArticle(ctx, s.title, json.RawMessage(`{}`))
		require.NoError(t, err)
		_, err = svc.UpdateArticle(ctx, article.Slug, ArticlePatch{
			Status:     s.status,
			CategoryID: &category,
			Tags:       s.tags,
		})
		require.NoError(t, err)
		testClock.FastForward(time.Minute)
	}

	// Status filter with the pagination envelope
	list, err := svc.ListArticles(ctx, ListOptions{Status: "published", PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, list.Total)
	assert.Equal(t, 2, list.TotalPages)
	require.Len(t, list.Articles, 2)
	// Default order is most recently updated first
	assert.Equal(t, "Reading List", list.Articles[0].Title)

	second, err := svc.ListArticles(ctx, ListOptions{Status: "published", PerPage: 2, Page: 2})
	require.NoError(t, err)
	require.Len(t, second.Articles, 1)
	assert.Equal(t, "Mulching Basics", second.Articles[0].Title)

	// Tag and search filters compose
	list, err = svc.ListArticles(ctx, ListOptions{TagID: "t-gardening", Search: "compost"})
	require.NoError(t, err)
	require.Len(t, list.Articles, 1)
	assert.Equal(t, "Compost Draft", list.Articles[0].Title)

	// Explicit sort by title, ascending
	list, err = svc.ListArticles(ctx, ListOptions{CategoryID: category, Sort: "title", Order: "asc"})
	require.NoError(t, err)
	require.Len(t, list.Articles, 4)
	assert.Equal(t, "Compost Draft", list.Articles[0].Title)
	assert.Equal(t, "Reading List", list.Articles[3].Title)
}

func TestMemoryServiceSearch(t *testing.T) {
	testClock := clock.Freeze()
	t.Cleanup(clock.Unfreeze)
	ctx := context.Background()
	svc := NewMemoryService()

	mustCreate := func(title string) *Article {
		article, err := svc.CreateArticle(ctx, title, json.RawMessage(`{}`))
		require.NoError(t, err)
		testClock.FastForward(time.Minute)
		return article
	}
	mustCreate("Organic Gardening")
	mustCreate("Gardening")
	mustCreate("Reading List")

	// Prefix matches rank above substring matches
	results, err := svc.SearchArticles(ctx, "ga", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Gardening", results[0].Title)
	assert.Equal(t, "Organic Gardening", results[1].Title)

	// Empty query returns everything, capped at the limit
	results, err = svc.SearchArticles(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	recent, err := svc.RecentArticles(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Reading List", recent[0].Title)
}

func TestTransportError(t *testing.T) {
	err := &TransportError{Op: "get article", Status: 404, Err: ErrNotFound}
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "get article")
}
