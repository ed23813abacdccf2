package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItalyPaleAle/rss-scraper/migrations"
	"github.com/ItalyPaleAle/rss-scraper/models"
)

var testNow = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, fullTextModule string) *Store {
	t.Helper()
	conn, err := ConnectDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	_, err = migrations.Manager{FullTextModule: fullTextModule}.Initialize(conn)
	require.NoError(t, err)

	s := NewStore(conn)
	s.now = func() time.Time { return testNow }
	return s
}

func mustTimestamp(t *testing.T, s string) models.Timestamp {
	t.Helper()
	ts, err := models.ParseTimestamp(s)
	require.NoError(t, err)
	return ts
}

func TestEnsureFeeds(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "missing_fts_module")

	feeds := []models.FeedSource{
		{Name: "A", Url: "https://a.example/feed"},
		{Name: "B", Url: "https://b.example/feed"},
	}
	require.NoError(t, s.EnsureFeeds(ctx, feeds))
	// Second call must not fail nor duplicate
	feeds[0].Name = "A renamed"
	require.NoError(t, s.EnsureFeeds(ctx, feeds))

	var count int
	require.NoError(t, s.DB().Get(&count, "SELECT COUNT(*) FROM feeds"))
	assert.Equal(t, 2, count)

	feed, err := s.GetFeedByURL(ctx, "https://a.example/feed")
	require.NoError(t, err)
	require.NotNil(t, feed)
	assert.Equal(t, "A", feed.Name)
	assert.Equal(t, "2024-05-01T08:00:00", feed.CreatedAt.String())

	feed, err = s.GetFeedByURL(ctx, "https://missing.example/feed")
	require.NoError(t, err)
	assert.Nil(t, feed)
}

func TestGetOrCreateFeedID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "missing_fts_module")

	id1, err := s.GetOrCreateFeedID(ctx, "A", "https://a.example/feed")
	require.NoError(t, err)
	assert.Greater(t, id1, int64(0))

	id2, err := s.GetOrCreateFeedID(ctx, "A", "https://a.example/feed")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	id3, err := s.GetOrCreateFeedID(ctx, "B", "https://b.example/feed")
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)
}

func TestUpsertItemDedup(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "missing_fts_module")

	feedA, err := s.GetOrCreateFeedID(ctx, "A", "https://a.example/feed")
	require.NoError(t, err)
	feedB, err := s.GetOrCreateFeedID(ctx, "B", "https://b.example/feed")
	require.NoError(t, err)

	first := &models.Item{
		FeedID:    feedA,
		Title:     "First",
		Link:      "https://a.example/post",
		Published: mustTimestamp(t, "2024-01-01T00:00:00"),
		Summary:   "first summary",
		FetchedAt: mustTimestamp(t, "2024-01-02T00:00:00"),
	}
	require.NoError(t, s.UpsertItem(ctx, first))

	second := &models.Item{
		FeedID:    feedB,
		Title:     "Second",
		Link:      "https://a.example/post",
		Summary:   "second summary",
		FetchedAt: mustTimestamp(t, "2024-01-03T00:00:00"),
	}
	require.NoError(t, s.UpsertItem(ctx, second))

	count, err := s.CountItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := s.GetItemByLink(ctx, "https://a.example/post")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, feedB, got.FeedID)
	assert.Equal(t, "Second", got.Title)
	assert.Equal(t, "second summary", got.Summary)
	assert.False(t, got.Published.IsSet())
	assert.Equal(t, "2024-01-03T00:00:00", got.FetchedAt.String())

	// Empty links never reach the database
	assert.Error(t, s.UpsertItem(ctx, &models.Item{FeedID: feedA, FetchedAt: first.FetchedAt}))
}

func TestUpsertItemsIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "missing_fts_module")

	feedID, err := s.GetOrCreateFeedID(ctx, "A", "https://a.example/feed")
	require.NoError(t, err)

	fetched := mustTimestamp(t, "2024-01-01T00:00:00")
	candidates := []models.Candidate{
		{Title: "One", Link: "https://a.example/1", FetchedAt: fetched},
		{Title: "Two", Link: "https://a.example/2", FetchedAt: fetched},
	}
	n, err := s.UpsertItems(ctx, feedID, candidates)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// A batch referencing a feed that doesn't exist violates the foreign key and must leave nothing behind
	bad := []models.Candidate{
		{Title: "Three", Link: "https://a.example/3", FetchedAt: fetched},
	}
	n, err = s.UpsertItems(ctx, feedID+100, bad)
	require.Error(t, err)
	assert.Equal(t, 0, n)

	// A failure in the middle of a batch rolls back the items before it
	mixed := []models.Candidate{
		{Title: "Four", Link: "https://a.example/4", FetchedAt: fetched},
		{Title: "No link", FetchedAt: fetched},
	}
	_, err = s.UpsertItems(ctx, feedID, mixed)
	require.Error(t, err)

	count, err := s.CountItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	item, err := s.GetItemByLink(ctx, "https://a.example/4")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "missing_fts_module")

	runID, err := s.StartRun(ctx)
	require.NoError(t, err)

	run, err := s.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01T08:00:00", run.StartedAt.String())
	assert.False(t, run.FinishedAt.IsSet())
	assert.Equal(t, 0, run.FeedsOK)
	assert.False(t, run.Error.Valid)

	s.now = func() time.Time { return testNow.Add(time.Minute) }
	err = s.FinishRun(ctx, runID, models.RunStats{
		FeedsOK:       3,
		FeedsFailed:   2,
		ItemsSeen:     40,
		ItemsUpserted: 40,
	})
	require.NoError(t, err)

	run, err = s.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01T08:01:00", run.FinishedAt.String())
	assert.Equal(t, 3, run.FeedsOK)
	assert.Equal(t, 2, run.FeedsFailed)
	assert.Equal(t, 40, run.ItemsSeen)
	assert.Equal(t, 40, run.ItemsUpserted)
	assert.False(t, run.Error.Valid)

	err = s.FinishRun(ctx, runID+1, models.RunStats{})
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestFailRun(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "missing_fts_module")

	runID, err := s.StartRun(ctx)
	require.NoError(t, err)

	require.NoError(t, s.FailRun(ctx, runID, errors.New("disk I/O error")))
	assert.Error(t, s.FailRun(ctx, runID, nil))

	run, err := s.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.False(t, run.FinishedAt.IsSet())
	assert.True(t, run.Error.Valid)
	assert.Equal(t, "disk I/O error", run.Error.String)
}

func TestExportRowsOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "missing_fts_module")

	feedID, err := s.GetOrCreateFeedID(ctx, "A", "https://a.example/feed")
	require.NoError(t, err)

	items := []*models.Item{
		{FeedID: feedID, Link: "https://a.example/jan", Published: mustTimestamp(t, "2024-01-01T00:00:00"), FetchedAt: mustTimestamp(t, "2024-04-01T00:00:00")},
		{FeedID: feedID, Link: "https://a.example/mar", Published: mustTimestamp(t, "2024-03-01T00:00:00"), FetchedAt: mustTimestamp(t, "2024-04-01T00:00:00")},
		{FeedID: feedID, Link: "https://a.example/nodate", FetchedAt: mustTimestamp(t, "2024-02-01T00:00:00")},
	}
	for _, it := range items {
		require.NoError(t, s.UpsertItem(ctx, it))
	}

	rows, err := s.ExportRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "https://a.example/mar", rows[0].Link)
	assert.Equal(t, "https://a.example/nodate", rows[1].Link)
	assert.Equal(t, "https://a.example/jan", rows[2].Link)
	assert.Equal(t, "A", rows[0].Feed)
	assert.False(t, rows[1].Published.IsSet())
}

func seedSearchItems(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	feedID, err := s.GetOrCreateFeedID(ctx, "Tech", "https://tech.example/feed")
	require.NoError(t, err)

	fetched := mustTimestamp(t, "2024-01-01T00:00:00")
	_, err = s.UpsertItems(ctx, feedID, []models.Candidate{
		{Title: "New startup raises funds", Link: "https://tech.example/1", Summary: "money", Published: mustTimestamp(t, "2024-01-02T00:00:00"), FetchedAt: fetched},
		{Title: "Weather", Link: "https://tech.example/2", Summary: "Technology helps forecasts", Published: mustTimestamp(t, "2024-01-03T00:00:00"), FetchedAt: fetched},
		{Title: "Sports", Link: "https://tech.example/3", Summary: "football", FetchedAt: fetched},
	})
	require.NoError(t, err)
}

func TestSearchSubstring(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "missing_fts_module")
	seedSearchItems(t, s)

	hits, err := s.SearchSubstring(ctx, []string{"technology", "startup"}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "https://tech.example/2", hits[0].Link)
	assert.Equal(t, "https://tech.example/1", hits[1].Link)
	assert.Equal(t, "Tech", hits[0].Feed)

	hits, err = s.SearchSubstring(ctx, []string{"technology", "startup"}, 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	hits, err = s.SearchSubstring(ctx, nil, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchFullTextUnavailable(t *testing.T) {
	s := newTestStore(t, "missing_fts_module")
	seedSearchItems(t, s)

	_, err := s.SearchFullText(context.Background(), "startup", 5)
	assert.Error(t, err)
}

func TestSearchFullText(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, migrations.DefaultFullTextModule)
	has, err := migrations.HasFullText(s.DB())
	require.NoError(t, err)
	if !has {
		t.Skip("SQLite was built without FTS5")
	}
	seedSearchItems(t, s)

	hits, err := s.SearchFullText(ctx, "technology OR startup", 5)
	require.NoError(t, err)
	links := []string{}
	for _, h := range hits {
		links = append(links, h.Link)
	}
	assert.ElementsMatch(t, []string{"https://tech.example/1", "https://tech.example/2"}, links)

	// Updates are reflected in the index
	feedID, err := s.GetOrCreateFeedID(ctx, "Tech", "https://tech.example/feed")
	require.NoError(t, err)
	require.NoError(t, s.UpsertItem(ctx, &models.Item{FeedID: feedID, Title: "Sports", Link: "https://tech.example/1", Summary: "football", FetchedAt: mustTimestamp(t, "2024-01-05T00:00:00")}))
	hits, err = s.SearchFullText(ctx, "startup", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
