package internal

import "github.com/mindvault/mindvault/internal/appdir"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	locate appdir.Locator
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLocator overrides app data directory resolution. Tests use this to
// point the services at a temporary directory.
func WithLocator(locate appdir.Locator) Option {
	return func(a *application) {
		a.locate = locate
	}
}
