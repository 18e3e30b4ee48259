// Package main provides the leaflog command-line reading tracker.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/samber/do/v2"

	"github.com/leaflogapp/leaflog-core/internal/di"
	"github.com/leaflogapp/leaflog-core/internal/di/providers"
	"github.com/leaflogapp/leaflog-core/internal/domain"
	"github.com/leaflogapp/leaflog-core/internal/logger"
	"github.com/leaflogapp/leaflog-core/internal/normalize"
	"github.com/leaflogapp/leaflog-core/internal/repo"
	"github.com/leaflogapp/leaflog-core/internal/service"
	"github.com/leaflogapp/leaflog-core/internal/store"
	"github.com/leaflogapp/leaflog-core/internal/timeutil"
)

const usage = `leaflog - a personal reading tracker

Usage:
  leaflog <command> [flags]

Commands:
  add       Add a book to the library
  list      List the library shelf
  show      Show one book with its notes
  note      Add a note to a book
  notes     List a book's notes
  edit      Edit a book's fields
  finish    Mark a book finished
  rm        Remove a book and its notes
  rmnote    Remove a single note
  timeline  Show the recent activity feed
  summary   Show the recent reading summary
  export    Dump the library as JSON

Global flags (every command):
  -data     Data directory (default ~/.leaflog/db)
  -env      Environment name (development|production)
  -log      Log level (debug|info|warn|error)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]
	if err := run(cmd, args); err != nil {
		fmt.Fprintf(os.Stderr, "leaflog: %v\n", err)
		os.Exit(1)
	}
}

// app bundles everything a subcommand needs once the container is up.
type app struct {
	injector do.Injector
	library  *service.Library
	books    *store.Books
	insights *store.Insights
	repo     *repo.Badger
	log      *logger.Logger
}

// globalFlags registers the flags shared by every subcommand and
// returns the override targets.
func globalFlags(fs *flag.FlagSet) *providers.ConfigOverrides {
	o := &providers.ConfigOverrides{}
	fs.StringVar(&o.DataPath, "data", "", "data directory")
	fs.StringVar(&o.Environment, "env", "", "environment name")
	fs.StringVar(&o.LogLevel, "log", "", "log level")
	return o
}

// open builds the object graph and hydrates both stores.
func open(o *providers.ConfigOverrides) (*app, error) {
	injector := di.NewContainer(*o)

	r, err := do.Invoke[*repo.Badger](injector)
	if err != nil {
		return nil, err
	}
	books := do.MustInvoke[*store.Books](injector)
	insights := do.MustInvoke[*store.Insights](injector)
	library := do.MustInvoke[*service.Library](injector)
	log := do.MustInvoke[*logger.Logger](injector)

	ctx := context.Background()
	if err := books.Hydrate(ctx, r); err != nil {
		return nil, fmt.Errorf("hydrating books: %w", err)
	}
	if err := insights.Hydrate(ctx, r); err != nil {
		return nil, fmt.Errorf("hydrating insights: %w", err)
	}

	return &app{
		injector: injector,
		library:  library,
		books:    books,
		insights: insights,
		repo:     r,
		log:      log,
	}, nil
}

// close flushes pending writes and releases the database.
func (a *app) close() {
	a.books.Close()
	a.insights.Close()
	if err := a.repo.Close(); err != nil {
		a.log.Error("failed to close database", "error", err)
	}
}

func run(cmd string, args []string) error {
	switch cmd {
	case "add":
		return cmdAdd(args)
	case "list":
		return cmdList(args)
	case "show":
		return cmdShow(args)
	case "note":
		return cmdNote(args)
	case "notes":
		return cmdNotes(args)
	case "edit":
		return cmdEdit(args)
	case "finish":
		return cmdFinish(args)
	case "rm":
		return cmdRemove(args)
	case "rmnote":
		return cmdRemoveNote(args)
	case "timeline":
		return cmdTimeline(args)
	case "summary":
		return cmdSummary(args)
	case "export":
		return cmdExport(args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	o := globalFlags(fs)
	title := fs.String("title", "", "book title (required)")
	author := fs.String("author", "", "author name")
	genre := fs.String("genre", "", "genre")
	status := fs.String("status", "", "to-read|reading|finished")
	desc := fs.String("desc", "", "description")
	added := fs.String("added", "", "backdate the added date (RFC 3339 or YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := open(o)
	if err != nil {
		return err
	}
	defer a.close()

	book, err := a.library.AddBook(service.BookForm{
		Title:       *title,
		Author:      *author,
		Genre:       *genre,
		Status:      *status,
		Description: *desc,
		CreatedAt:   *added,
	})
	if err != nil {
		return err
	}
	fmt.Printf("added %s  %q by %s\n", book.ID, book.Title, book.Author)
	return nil
}

func cmdList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	o := globalFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := open(o)
	if err != nil {
		return err
	}
	defer a.close()

	shelf := a.library.Shelf()
	if len(shelf) == 0 {
		fmt.Println("library is empty")
		return nil
	}
	now := time.Now()
	for _, b := range shelf {
		label, _ := a.library.SalientDate(b.ID)
		fmt.Printf("%-24s  %-10s  %-40s  %s %s\n",
			b.ID, b.Status, truncate(b.Title, 40), label.Label, relativeOrDate(label.When, now))
	}
	return nil
}

func cmdShow(args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	o := globalFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	bookID, err := wantArg(fs, "book id")
	if err != nil {
		return err
	}

	a, err := open(o)
	if err != nil {
		return err
	}
	defer a.close()

	book, err := a.library.GetBook(bookID)
	if err != nil {
		return err
	}
	now := time.Now()
	label, _ := a.library.SalientDate(book.ID)

	fmt.Printf("%s by %s\n", book.Title, book.Author)
	fmt.Printf("  id:      %s\n", book.ID)
	fmt.Printf("  genre:   %s\n", book.Genre)
	fmt.Printf("  status:  %s\n", book.Status)
	if book.Description != "" {
		fmt.Printf("  about:   %s\n", book.Description)
	}
	fmt.Printf("  %s %s\n", strings.ToLower(label.Label), relativeOrDate(label.When, now))

	notes := a.library.Insights(book.ID)
	if len(notes) > 0 {
		fmt.Printf("  notes:   %d\n", len(notes))
		for _, n := range notes {
			printInsight(n, now)
		}
	}
	return nil
}

func cmdNote(args []string) error {
	fs := flag.NewFlagSet("note", flag.ExitOnError)
	o := globalFlags(fs)
	tags := fs.String("tags", "", "comma-separated tags")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 2 {
		return fmt.Errorf("usage: leaflog note [flags] <book-id> <content>")
	}
	bookID, content := rest[0], strings.Join(rest[1:], " ")

	a, err := open(o)
	if err != nil {
		return err
	}
	defer a.close()

	n, err := a.library.AddInsight(bookID, store.InsightInput{
		Content: content,
		Tags:    normalize.TagString(*tags),
	})
	if err != nil {
		return err
	}
	fmt.Printf("noted %s\n", n.ID)
	return nil
}

func cmdNotes(args []string) error {
	fs := flag.NewFlagSet("notes", flag.ExitOnError)
	o := globalFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	bookID, err := wantArg(fs, "book id")
	if err != nil {
		return err
	}

	a, err := open(o)
	if err != nil {
		return err
	}
	defer a.close()

	if _, err := a.library.GetBook(bookID); err != nil {
		return err
	}
	notes := a.library.Insights(bookID)
	if len(notes) == 0 {
		fmt.Println("no notes yet")
		return nil
	}
	now := time.Now()
	for _, n := range notes {
		printInsight(n, now)
	}
	return nil
}

func cmdEdit(args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	o := globalFlags(fs)
	title := fs.String("title", "", "new title")
	author := fs.String("author", "", "new author")
	genre := fs.String("genre", "", "new genre")
	status := fs.String("status", "", "new status")
	desc := fs.String("desc", "", "new description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	bookID, err := wantArg(fs, "book id")
	if err != nil {
		return err
	}

	patch := store.BookPatch{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			patch.Title = title
		case "author":
			patch.Author = author
		case "genre":
			patch.Genre = genre
		case "status":
			s := domain.BookStatus(*status)
			patch.Status = &s
		case "desc":
			patch.Description = desc
		}
	})

	a, err := open(o)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.library.UpdateBook(bookID, patch); err != nil {
		return err
	}
	fmt.Println("updated")
	return nil
}

func cmdFinish(args []string) error {
	fs := flag.NewFlagSet("finish", flag.ExitOnError)
	o := globalFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	bookID, err := wantArg(fs, "book id")
	if err != nil {
		return err
	}

	a, err := open(o)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.library.FinishBook(bookID); err != nil {
		return err
	}
	fmt.Println("finished")
	return nil
}

func cmdRemove(args []string) error {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	o := globalFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	bookID, err := wantArg(fs, "book id")
	if err != nil {
		return err
	}

	a, err := open(o)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.library.RemoveBook(bookID); err != nil {
		return err
	}
	fmt.Println("removed")
	return nil
}

func cmdRemoveNote(args []string) error {
	fs := flag.NewFlagSet("rmnote", flag.ExitOnError)
	o := globalFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 2 {
		return fmt.Errorf("usage: leaflog rmnote [flags] <book-id> <note-id>")
	}

	a, err := open(o)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.library.RemoveInsight(rest[0], rest[1]); err != nil {
		return err
	}
	fmt.Println("removed")
	return nil
}

func cmdTimeline(args []string) error {
	fs := flag.NewFlagSet("timeline", flag.ExitOnError)
	o := globalFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := open(o)
	if err != nil {
		return err
	}
	defer a.close()

	now := time.Now()
	events := a.library.Timeline(now)
	if len(events) == 0 {
		fmt.Println("nothing recent")
		return nil
	}
	for _, e := range events {
		verb := "noted on"
		if e.Type == domain.EventFinishedBook {
			verb = "finished"
		}
		fmt.Printf("%-12s  %s %q\n", relativeOrDate(e.OccurredAt, now), verb, e.BookTitle)
	}
	return nil
}

func cmdSummary(args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	o := globalFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := open(o)
	if err != nil {
		return err
	}
	defer a.close()

	now := time.Now()
	s := a.library.Summary(now)
	fmt.Printf("last week: %d notes written, %d books finished\n", s.InsightsWritten, s.BooksFinished)
	if s.LatestInsight != nil {
		fmt.Printf("latest note (%s): %s\n",
			relativeOrDate(s.LatestInsight.CreatedAt, now), truncate(s.LatestInsight.Content, 60))
	}
	return nil
}

func cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	o := globalFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := open(o)
	if err != nil {
		return err
	}
	defer a.close()

	out, err := a.library.Export()
	if err != nil {
		return err
	}
	os.Stdout.Write(out)
	fmt.Println()
	return nil
}

// wantArg returns the single positional argument or a usage error.
func wantArg(fs *flag.FlagSet, name string) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one %s argument", name)
	}
	return fs.Arg(0), nil
}

func printInsight(n *domain.Insight, now time.Time) {
	tags := ""
	if len(n.Tags) > 0 {
		tags = "  [" + strings.Join(n.Tags, ", ") + "]"
	}
	fmt.Printf("  - (%s) %s%s\n", relativeOrDate(n.CreatedAt, now), n.Content, tags)
}

// relativeOrDate prefers the human phrasing and falls back to a plain
// date for zero or future timestamps.
func relativeOrDate(t, now time.Time) string {
	if s := timeutil.FormatRelative(t, now); s != "" {
		return s
	}
	if t.IsZero() {
		return "sometime"
	}
	return t.Format("2006-01-02")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
