package store

import (
	"context"
	"encoding/json/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaflogapp/leaflog-core/internal/domain"
	"github.com/leaflogapp/leaflog-core/internal/errors"
	"github.com/leaflogapp/leaflog-core/internal/repo"
)

func testTime(d int) time.Time {
	return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
}

// newTestStores builds the wired pair over one in-memory repository.
func newTestStores(t *testing.T) (*Books, *Insights, *repo.Memory) {
	t.Helper()
	mem := repo.NewMemory()
	books := NewBooks(mem, nil)
	insights := NewInsights(mem, books, nil)
	books.SetInsightPurger(insights)
	t.Cleanup(func() {
		books.Close()
		insights.Close()
	})
	return books, insights, mem
}

func hydrateBoth(t *testing.T, books *Books, insights *Insights, mem *repo.Memory) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, books.Hydrate(ctx, mem))
	require.NoError(t, insights.Hydrate(ctx, mem))
}

func testBook(id string) *domain.Book {
	return &domain.Book{
		ID:         id,
		Title:      "Title " + id,
		Author:     "Author",
		Genre:      "Sci-Fi",
		Status:     domain.StatusToRead,
		CreatedAt:  testTime(1),
		UpdatedAt:  testTime(1),
		InsightIDs: []string{},
	}
}

func TestBooks_AddPrepends(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)

	books.Add(testBook("bk-1"))
	books.Add(testBook("bk-2"))

	list := books.List()
	require.Len(t, list, 2)
	assert.Equal(t, "bk-2", list[0].ID)
	assert.Equal(t, "bk-1", list[1].ID)
}

func TestBooks_AddStoresCopy(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)

	b := testBook("bk-1")
	books.Add(b)
	b.Title = "mutated after add"

	got, ok := books.GetByID("bk-1")
	require.True(t, ok)
	assert.Equal(t, "Title bk-1", got.Title)
}

func TestBooks_GetByIDReturnsCopy(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)
	books.Add(testBook("bk-1"))

	first, ok := books.GetByID("bk-1")
	require.True(t, ok)
	first.Title = "mutated snapshot"

	second, ok := books.GetByID("bk-1")
	require.True(t, ok)
	assert.Equal(t, "Title bk-1", second.Title)
}

func TestBooks_Update(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)
	books.SetClock(func() time.Time { return testTime(9) })
	books.Add(testBook("bk-1"))

	title := "Dune Messiah"
	status := domain.StatusReading
	require.True(t, books.Update("bk-1", BookPatch{Title: &title, Status: &status}))

	got, ok := books.GetByID("bk-1")
	require.True(t, ok)
	assert.Equal(t, "Dune Messiah", got.Title)
	assert.Equal(t, domain.StatusReading, got.Status)
	assert.Equal(t, testTime(9), got.UpdatedAt)
	// Unpatched fields survive
	assert.Equal(t, "Author", got.Author)
}

func TestBooks_UpdateUnknownID(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)

	title := "x"
	assert.False(t, books.Update("bk-missing", BookPatch{Title: &title}))
}

func TestBooks_UpdateDoesNotAffectEarlierSnapshots(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)
	books.Add(testBook("bk-1"))

	snapshot := books.List()
	title := "changed"
	require.True(t, books.Update("bk-1", BookPatch{Title: &title}))

	assert.Equal(t, "Title bk-1", snapshot[0].Title)
}

func TestBooks_RemoveCascadesIntoInsights(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)
	books.Add(testBook("bk-1"))
	books.Add(testBook("bk-2"))

	_, ok := insights.Add("bk-1", InsightInput{Content: "one"})
	require.True(t, ok)
	_, ok = insights.Add("bk-1", InsightInput{Content: "two"})
	require.True(t, ok)
	keeper, ok := insights.Add("bk-2", InsightInput{Content: "keep"})
	require.True(t, ok)

	require.True(t, books.Remove("bk-1"))

	_, found := books.GetByID("bk-1")
	assert.False(t, found)
	assert.Empty(t, insights.GetByBookID("bk-1"))

	// The sibling book and its insight are untouched
	remaining := insights.GetByBookID("bk-2")
	require.Len(t, remaining, 1)
	assert.Equal(t, keeper.ID, remaining[0].ID)
}

func TestBooks_RemoveUnknownID(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)

	assert.False(t, books.Remove("bk-missing"))
}

func TestBooks_AttachInsight(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)
	books.SetClock(func() time.Time { return testTime(10) })
	books.Add(testBook("bk-1"))

	require.True(t, books.AttachInsight("bk-1", "n1"))

	got, _ := books.GetByID("bk-1")
	assert.Equal(t, []string{"n1"}, got.InsightIDs)
	assert.Equal(t, testTime(10), got.UpdatedAt)
}

func TestBooks_AttachInsightIdempotent(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)
	books.Add(testBook("bk-1"))
	require.True(t, books.AttachInsight("bk-1", "n1"))

	before, _ := books.GetByID("bk-1")
	books.SetClock(func() time.Time { return testTime(20) })

	assert.False(t, books.AttachInsight("bk-1", "n1"))

	after, _ := books.GetByID("bk-1")
	assert.Equal(t, before.InsightIDs, after.InsightIDs)
	// Timestamp untouched when nothing changed
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestBooks_DetachInsight(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)
	books.Add(testBook("bk-1"))
	require.True(t, books.AttachInsight("bk-1", "n1"))

	require.True(t, books.DetachInsight("bk-1", "n1"))
	got, _ := books.GetByID("bk-1")
	assert.Empty(t, got.InsightIDs)

	assert.False(t, books.DetachInsight("bk-1", "n1"))
	assert.False(t, books.DetachInsight("bk-missing", "n1"))
}

func TestBooks_HydrateEmptySlot(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)

	assert.True(t, books.HasHydrated())
	assert.Empty(t, books.List())
}

func TestBooks_HydrateBackfillsRecords(t *testing.T) {
	mem := repo.NewMemory()
	mem.Seed(repo.BooksSlot, []byte(`[{"id":"bk-1","title":"Old","status":"read"}]`))

	books := NewBooks(mem, nil)
	t.Cleanup(books.Close)
	require.NoError(t, books.Hydrate(context.Background(), mem))

	got, ok := books.GetByID("bk-1")
	require.True(t, ok)
	assert.Equal(t, domain.StatusFinished, got.Status)
	assert.Equal(t, domain.DefaultAuthor, got.Author)
	assert.Equal(t, domain.DefaultGenre, got.Genre)
	assert.False(t, got.CreatedAt.IsZero())
	assert.NotNil(t, got.InsightIDs)
}

func TestBooks_HydrateCorruptSlot(t *testing.T) {
	mem := repo.NewMemory()
	mem.Seed(repo.BooksSlot, []byte(`{"not":"an array"`))

	books := NewBooks(mem, nil)
	t.Cleanup(books.Close)

	err := books.Hydrate(context.Background(), mem)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCorrupt))
	assert.False(t, books.HasHydrated())
}

func TestBooks_PersistenceRoundTrip(t *testing.T) {
	mem := repo.NewMemory()

	books := NewBooks(mem, nil)
	require.NoError(t, books.Hydrate(context.Background(), mem))
	books.Add(testBook("bk-1"))
	books.Add(testBook("bk-2"))
	require.True(t, books.Remove("bk-1"))
	books.Close()

	// A fresh store over the same repository sees exactly the survivors.
	reloaded := NewBooks(mem, nil)
	t.Cleanup(reloaded.Close)
	require.NoError(t, reloaded.Hydrate(context.Background(), mem))

	list := reloaded.List()
	require.Len(t, list, 1)
	assert.Equal(t, "bk-2", list[0].ID)
}

func TestBooks_PersistedShape(t *testing.T) {
	mem := repo.NewMemory()

	books := NewBooks(mem, nil)
	require.NoError(t, books.Hydrate(context.Background(), mem))
	books.Add(testBook("bk-1"))
	books.Close()

	raw := mem.Snapshot(repo.BooksSlot)
	require.NotNil(t, raw)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "bk-1", decoded[0]["id"])
	assert.Equal(t, "to-read", decoded[0]["status"])
	assert.Contains(t, decoded[0], "createdAt")
	assert.Contains(t, decoded[0], "insightIds")
}

func TestBooks_SetAll(t *testing.T) {
	books, insights, mem := newTestStores(t)
	hydrateBoth(t, books, insights, mem)
	books.Add(testBook("bk-old"))

	books.SetAll([]*domain.Book{testBook("bk-a"), testBook("bk-b")})

	list := books.List()
	require.Len(t, list, 2)
	assert.Equal(t, "bk-a", list[0].ID)
	assert.Equal(t, "bk-b", list[1].ID)
}
