// Package testutil provides shared test helpers for wiring the services
// against a temporary app data directory.
package testutil

import (
	"testing"

	"github.com/mindvault/mindvault/internal/appconfig"
	"github.com/mindvault/mindvault/internal/appdir"
	"github.com/mindvault/mindvault/internal/document"
	"github.com/mindvault/mindvault/internal/vaultdir"
)

// Extension is the document extension used throughout the tests.
const Extension = ".mschema"

// Services bundles the three services wired against one app data directory.
type Services struct {
	DataDir string
	Vaults  *vaultdir.Service
	Docs    *document.Service
	Config  *appconfig.Service
}

// NewServices constructs all services against a fresh temporary data
// directory that is cleaned up with the test.
func NewServices(t *testing.T) *Services {
	t.Helper()
	dataDir := t.TempDir()
	locate := appdir.Fixed(dataDir)
	return &Services{
		DataDir: dataDir,
		Vaults:  vaultdir.NewService(locate, Extension),
		Docs:    document.NewService(Extension),
		Config:  appconfig.NewService(locate),
	}
}
