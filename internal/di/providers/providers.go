// Package providers contains the DI constructors for the leaflog object graph.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/leaflogapp/leaflog-core/internal/config"
	"github.com/leaflogapp/leaflog-core/internal/logger"
	"github.com/leaflogapp/leaflog-core/internal/repo"
	"github.com/leaflogapp/leaflog-core/internal/service"
	"github.com/leaflogapp/leaflog-core/internal/store"
	"github.com/leaflogapp/leaflog-core/internal/validation"
)

// ConfigOverrides aliases the command-line override set so commands can
// seed the container with their parsed flags.
type ConfigOverrides = config.Overrides

// ProvideConfig loads configuration with the command's overrides.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	overrides := do.MustInvoke[ConfigOverrides](i)
	return config.Load(overrides)
}

// ProvideLogger builds the application logger from config.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return logger.New(logger.Config{
		Environment: cfg.App.Environment,
		Level:       logger.ParseLevel(cfg.Logger.Level),
	}), nil
}

// ProvideValidator builds the form validator.
func ProvideValidator(do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideRepository opens the Badger-backed slot repository.
func ProvideRepository(i do.Injector) (*repo.Badger, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	return repo.OpenBadger(cfg.Storage.DataPath, log.Logger)
}

// ProvideBooksStore builds the books state container.
func ProvideBooksStore(i do.Injector) (*store.Books, error) {
	r := do.MustInvoke[*repo.Badger](i)
	log := do.MustInvoke[*logger.Logger](i)
	return store.NewBooks(r, log.Logger), nil
}

// ProvideInsightsStore builds the insights state container and wires
// the cross-store collaborators in both directions.
func ProvideInsightsStore(i do.Injector) (*store.Insights, error) {
	r := do.MustInvoke[*repo.Badger](i)
	log := do.MustInvoke[*logger.Logger](i)
	books := do.MustInvoke[*store.Books](i)

	insights := store.NewInsights(r, books, log.Logger)
	books.SetInsightPurger(insights)
	return insights, nil
}

// ProvideLibrary builds the boundary service.
func ProvideLibrary(i do.Injector) (*service.Library, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	books := do.MustInvoke[*store.Books](i)
	insights := do.MustInvoke[*store.Insights](i)
	v := do.MustInvoke[*validation.Validator](i)

	return service.NewLibrary(books, insights, v, log.Logger, service.Options{
		FeedWindowDays:    cfg.Timeline.FeedWindowDays,
		SummaryWindowDays: cfg.Timeline.SummaryWindowDays,
	}), nil
}
