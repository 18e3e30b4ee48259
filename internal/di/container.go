// Package di provides dependency injection configuration for leaflog.
//
// Every consumer receives explicitly-constructed instances; nothing in
// the module is a package-level singleton, so tests can build fresh
// isolated graphs.
package di

import (
	"github.com/samber/do/v2"

	"github.com/leaflogapp/leaflog-core/internal/di/providers"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer(overrides providers.ConfigOverrides) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, overrides)

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Persistence layer
	do.Provide(injector, providers.ProvideRepository)

	// State containers
	do.Provide(injector, providers.ProvideBooksStore)
	do.Provide(injector, providers.ProvideInsightsStore)

	// Boundary service
	do.Provide(injector, providers.ProvideLibrary)

	return injector
}
