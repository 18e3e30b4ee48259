// Package service provides the boundary layer over the stores: form
// validation, default resolution, id and timestamp assignment, and the
// derived views the screens render.
package service

import (
	"encoding/json/jsontext"
	"encoding/json/v2"
	"log/slog"
	"strings"
	"time"

	"github.com/leaflogapp/leaflog-core/internal/domain"
	"github.com/leaflogapp/leaflog-core/internal/errors"
	"github.com/leaflogapp/leaflog-core/internal/id"
	"github.com/leaflogapp/leaflog-core/internal/store"
	"github.com/leaflogapp/leaflog-core/internal/timeutil"
	"github.com/leaflogapp/leaflog-core/internal/validation"
)

// Library orchestrates the two stores behind the screens. It is the
// "form layer": the stores trust it to validate titles and resolve
// Unknown defaults before records reach them.
type Library struct {
	books     *store.Books
	insights  *store.Insights
	validator *validation.Validator
	logger    *slog.Logger
	clock     func() time.Time

	// Derived-view windows, in days.
	feedWindow    int
	summaryWindow int
}

// Options tunes the derived-view windows.
type Options struct {
	FeedWindowDays    int
	SummaryWindowDays int
}

// NewLibrary creates the library service.
func NewLibrary(books *store.Books, insights *store.Insights, v *validation.Validator, logger *slog.Logger, opts Options) *Library {
	return &Library{
		books:         books,
		insights:      insights,
		validator:     v,
		logger:        logger,
		clock:         time.Now,
		feedWindow:    opts.FeedWindowDays,
		summaryWindow: opts.SummaryWindowDays,
	}
}

// SetClock overrides the time source for tests.
func (l *Library) SetClock(clock func() time.Time) {
	l.clock = clock
}

// BookForm is the add/edit-book submission.
type BookForm struct {
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	Status      string `json:"status" validate:"omitempty,oneof=to-read reading finished"`
	Description string `json:"description"`

	// CreatedAt backdates the added date. ISO-8601; blank means now.
	CreatedAt string `json:"createdAt"`
}

// AddBook validates the form, resolves defaults, and inserts the book.
// Returns the created record.
func (l *Library) AddBook(form BookForm) (*domain.Book, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}

	form.Title = strings.TrimSpace(form.Title)
	if err := l.validator.Validate(form); err != nil {
		return nil, err
	}

	now := l.clock()
	created := now
	if form.CreatedAt != "" {
		if t := timeutil.ToTime(form.CreatedAt); !t.IsZero() {
			created = t
		}
	}

	status := domain.StatusToRead
	if form.Status != "" {
		status = domain.BookStatus(form.Status)
	}

	b := &domain.Book{
		ID:          id.MustGenerate(id.BookPrefix),
		Title:       form.Title,
		Author:      domain.ResolveAuthor(form.Author),
		Genre:       domain.ResolveGenre(form.Genre),
		Status:      status,
		Description: form.Description,
		CreatedAt:   created,
		UpdatedAt:   now,
		InsightIDs:  []string{},
	}
	if status == domain.StatusFinished {
		b.FinishedAt = &now
	}

	l.books.Add(b)
	return b.Clone(), nil
}

// UpdateBook merges a patch into an existing book.
func (l *Library) UpdateBook(bookID string, patch store.BookPatch) error {
	if err := l.ready(); err != nil {
		return err
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return errors.Validation("title is required")
		}
		patch.Title = &title
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return errors.Validation("status must be one of: to-read, reading, finished")
	}
	if !l.books.Update(bookID, patch) {
		return errors.NotFound("book %s not found", bookID)
	}
	return nil
}

// FinishBook marks a book finished, stamping FinishedAt.
func (l *Library) FinishBook(bookID string) error {
	if err := l.ready(); err != nil {
		return err
	}
	now := l.clock()
	status := domain.StatusFinished
	if !l.books.Update(bookID, store.BookPatch{Status: &status, FinishedAt: &now}) {
		return errors.NotFound("book %s not found", bookID)
	}
	return nil
}

// RemoveBook deletes a book and cascades into its insights.
func (l *Library) RemoveBook(bookID string) error {
	if err := l.ready(); err != nil {
		return err
	}
	if !l.books.Remove(bookID) {
		return errors.NotFound("book %s not found", bookID)
	}
	return nil
}

// GetBook returns one book.
func (l *Library) GetBook(bookID string) (*domain.Book, error) {
	b, ok := l.books.GetByID(bookID)
	if !ok {
		return nil, errors.NotFound("book %s not found", bookID)
	}
	return b, nil
}

// AddInsight attaches an insight to a book. Empty content is the
// store's silent no-op; surfacing it as a validation error here keeps
// the CLI honest without changing the core contract.
func (l *Library) AddInsight(bookID string, input store.InsightInput) (*domain.Insight, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	if _, ok := l.books.GetByID(bookID); !ok {
		return nil, errors.NotFound("book %s not found", bookID)
	}
	n, ok := l.insights.Add(bookID, input)
	if !ok {
		return nil, errors.Validation("insight content is required")
	}
	return n, nil
}

// UpdateInsight edits an insight's content and/or tags.
func (l *Library) UpdateInsight(bookID, insightID string, patch store.InsightPatch) error {
	if err := l.ready(); err != nil {
		return err
	}
	if !l.insights.Update(bookID, insightID, patch) {
		return errors.NotFound("insight %s not found on book %s", insightID, bookID)
	}
	return nil
}

// RemoveInsight deletes an insight and detaches it from its book.
func (l *Library) RemoveInsight(bookID, insightID string) error {
	if err := l.ready(); err != nil {
		return err
	}
	if !l.insights.Remove(bookID, insightID) {
		return errors.NotFound("insight %s not found on book %s", insightID, bookID)
	}
	return nil
}

// Insights returns a book's insights in collection order.
func (l *Library) Insights(bookID string) []*domain.Insight {
	return l.insights.GetByBookID(bookID)
}

// Shelf returns the library in display order.
func (l *Library) Shelf() []*domain.Book {
	books := l.books.List()
	domain.SortShelf(books)
	return books
}

// Timeline returns the recent activity feed.
func (l *Library) Timeline(now time.Time) []domain.TimelineEvent {
	events := domain.BuildTimeline(l.books.List(), l.insights.List())
	return domain.FilterRecent(events, l.feedWindow, now)
}

// Summary returns the recent reading summary.
func (l *Library) Summary(now time.Time) domain.ReadingSummary {
	return domain.BuildSummary(l.books.List(), l.insights.List(), l.summaryWindow, now)
}

// SalientDate picks the single date label for a book detail view.
func (l *Library) SalientDate(bookID string) (domain.DateLabel, error) {
	b, ok := l.books.GetByID(bookID)
	if !ok {
		return domain.DateLabel{}, errors.NotFound("book %s not found", bookID)
	}
	return domain.SalientDate(b), nil
}

// LibraryDump is the export shape: the full library as one document.
type LibraryDump struct {
	ExportedAt time.Time         `json:"exportedAt"`
	Books      []*domain.Book    `json:"books"`
	Insights   []*domain.Insight `json:"insights"`
}

// Export serializes the whole library to indented JSON.
func (l *Library) Export() ([]byte, error) {
	dump := LibraryDump{
		ExportedAt: l.clock(),
		Books:      l.books.List(),
		Insights:   l.insights.List(),
	}
	out, err := json.Marshal(dump, jsontext.WithIndent("  "))
	if err != nil {
		return nil, errors.Internal("exporting library", err)
	}
	return out, nil
}

// ready gates mutating operations behind hydration so a transient empty
// state never overwrites previously-persisted data.
func (l *Library) ready() error {
	if !l.books.HasHydrated() || !l.insights.HasHydrated() {
		return errors.ErrNotReady
	}
	return nil
}
