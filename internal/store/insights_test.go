package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaflogapp/leaflog-core/internal/errors"
	"github.com/leaflogapp/leaflog-core/internal/repo"
)

func TestInsights_AddTrimsContent(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)
	books.Add(testBook("bk-1"))

	n, ok := insights.Add("bk-1", InsightInput{Content: "  the spice must flow  "})
	require.True(t, ok)
	assert.Equal(t, "the spice must flow", n.Content)
	assert.Equal(t, "bk-1", n.BookID)
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())
}

func TestInsights_AddEmptyContentIsSilentNoop(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)
	books.Add(testBook("bk-1"))

	for _, content := range []string{"", "   ", "\n\t"} {
		n, ok := insights.Add("bk-1", InsightInput{Content: content})
		assert.False(t, ok)
		assert.Nil(t, n)
	}

	assert.Empty(t, insights.List())
	got, _ := books.GetByID("bk-1")
	assert.Empty(t, got.InsightIDs)
}

func TestInsights_AddNormalizesTags(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)
	books.Add(testBook("bk-1"))

	n, ok := insights.Add("bk-1", InsightInput{
		Content: "x",
		Tags:    []string{" Theme", "theme", "PLOT ", ""},
	})
	require.True(t, ok)
	assert.Equal(t, []string{"theme", "plot"}, n.Tags)
}

func TestInsights_AddAttachesToBook(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)
	books.SetClock(func() time.Time { return testTime(10) })
	books.Add(testBook("bk-1"))

	n, ok := insights.Add("bk-1", InsightInput{Content: "x"})
	require.True(t, ok)

	got, _ := books.GetByID("bk-1")
	assert.Equal(t, []string{n.ID}, got.InsightIDs)
	assert.Equal(t, testTime(10), got.UpdatedAt)
}

func TestInsights_AddPrepends(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)
	books.Add(testBook("bk-1"))

	first, _ := insights.Add("bk-1", InsightInput{Content: "first"})
	second, _ := insights.Add("bk-1", InsightInput{Content: "second"})

	list := insights.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestInsights_Update(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)
	books.Add(testBook("bk-1"))
	n, _ := insights.Add("bk-1", InsightInput{Content: "draft", Tags: []string{"old"}})

	content := "  revised  "
	require.True(t, insights.Update("bk-1", n.ID, InsightPatch{
		Content: &content,
		Tags:    []string{"NEW", "new"},
	}))

	got := insights.GetByBookID("bk-1")
	require.Len(t, got, 1)
	assert.Equal(t, "revised", got[0].Content)
	assert.Equal(t, []string{"new"}, got[0].Tags)
	assert.Equal(t, n.CreatedAt, got[0].CreatedAt)
}

func TestInsights_UpdateEmptyContentKeepsExisting(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)
	books.Add(testBook("bk-1"))
	n, _ := insights.Add("bk-1", InsightInput{Content: "keep me"})

	empty := "   "
	require.True(t, insights.Update("bk-1", n.ID, InsightPatch{Content: &empty}))

	got := insights.GetByBookID("bk-1")
	require.Len(t, got, 1)
	assert.Equal(t, "keep me", got[0].Content)
}

func TestInsights_UpdateNilTagsLeaveTagsAlone(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)
	books.Add(testBook("bk-1"))
	n, _ := insights.Add("bk-1", InsightInput{Content: "x", Tags: []string{"theme"}})

	content := "updated"
	require.True(t, insights.Update("bk-1", n.ID, InsightPatch{Content: &content}))

	got := insights.GetByBookID("bk-1")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"theme"}, got[0].Tags)
}

func TestInsights_UpdateWrongBookIsNotFound(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)
	books.Add(testBook("bk-1"))
	books.Add(testBook("bk-2"))
	n, _ := insights.Add("bk-1", InsightInput{Content: "owned by bk-1"})

	content := "hijack"
	assert.False(t, insights.Update("bk-2", n.ID, InsightPatch{Content: &content}))

	got := insights.GetByBookID("bk-1")
	require.Len(t, got, 1)
	assert.Equal(t, "owned by bk-1", got[0].Content)
}

func TestInsights_RemoveDetachesFromBook(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)
	books.Add(testBook("bk-1"))
	n, _ := insights.Add("bk-1", InsightInput{Content: "x"})

	books.SetClock(func() time.Time { return testTime(15) })
	require.True(t, insights.Remove("bk-1", n.ID))

	assert.Empty(t, insights.List())
	got, _ := books.GetByID("bk-1")
	assert.Empty(t, got.InsightIDs)
	assert.Equal(t, testTime(15), got.UpdatedAt)
}

func TestInsights_RemoveWrongBookIsNoop(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)
	books.Add(testBook("bk-1"))
	n, _ := insights.Add("bk-1", InsightInput{Content: "x"})

	assert.False(t, insights.Remove("bk-2", n.ID))
	assert.Len(t, insights.List(), 1)
}

func TestInsights_RemoveByBookID(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)
	books.Add(testBook("bk-1"))
	books.Add(testBook("bk-2"))
	insights.Add("bk-1", InsightInput{Content: "a"})
	insights.Add("bk-1", InsightInput{Content: "b"})
	insights.Add("bk-2", InsightInput{Content: "c"})

	assert.Equal(t, 2, insights.RemoveByBookID("bk-1"))
	assert.Empty(t, insights.GetByBookID("bk-1"))
	assert.Len(t, insights.GetByBookID("bk-2"), 1)

	assert.Equal(t, 0, insights.RemoveByBookID("bk-1"))
}

func TestInsights_GetByIDsCollectionOrder(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)
	books.Add(testBook("bk-1"))

	a, _ := insights.Add("bk-1", InsightInput{Content: "a"})
	b, _ := insights.Add("bk-1", InsightInput{Content: "b"})
	c, _ := insights.Add("bk-1", InsightInput{Content: "c"})

	// Request order does not matter; collection order (newest first) wins.
	got := insights.GetByIDs([]string{a.ID, c.ID, "missing"})
	require.Len(t, got, 2)
	assert.Equal(t, c.ID, got[0].ID)
	assert.Equal(t, a.ID, got[1].ID)

	assert.Empty(t, insights.GetByIDs(nil))
	_ = b
}

func TestInsights_HydrateBackfills(t *testing.T) {
	mem := repo.NewMemory()
	mem.Seed(repo.InsightsSlot, []byte(`[{"id":"n1","bookId":"bk-1","content":"x"}]`))

	insights := NewInsights(mem, NoopRefUpdater{}, nil)
	t.Cleanup(insights.Close)
	require.NoError(t, insights.Hydrate(context.Background(), mem))

	list := insights.List()
	require.Len(t, list, 1)
	assert.False(t, list[0].CreatedAt.IsZero())
	assert.NotNil(t, list[0].Tags)
}

func TestInsights_HydrateCorruptSlot(t *testing.T) {
	mem := repo.NewMemory()
	mem.Seed(repo.InsightsSlot, []byte(`not json`))

	insights := NewInsights(mem, NoopRefUpdater{}, nil)
	t.Cleanup(insights.Close)

	err := insights.Hydrate(context.Background(), mem)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCorrupt))
	assert.False(t, insights.HasHydrated())
}

func TestInsights_PersistenceRoundTrip(t *testing.T) {
	mem := repo.NewMemory()

	insights := NewInsights(mem, NoopRefUpdater{}, nil)
	require.NoError(t, insights.Hydrate(context.Background(), mem))
	n, ok := insights.Add("bk-1", InsightInput{Content: "durable", Tags: []string{"tag"}})
	require.True(t, ok)
	insights.Close()

	reloaded := NewInsights(mem, NoopRefUpdater{}, nil)
	t.Cleanup(reloaded.Close)
	require.NoError(t, reloaded.Hydrate(context.Background(), mem))

	list := reloaded.List()
	require.Len(t, list, 1)
	assert.Equal(t, n.ID, list[0].ID)
	assert.Equal(t, "durable", list[0].Content)
	assert.Equal(t, []string{"tag"}, list[0].Tags)
}
