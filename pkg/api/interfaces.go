// Package api provides interfaces for dependency injection
package api

import (
	"context"

	"github.com/ssargent/fieldnotes/pkg/config"
)

// Backend is an opened repository that must be closed after use
type Backend interface {
	Repository

	// Close flushes and releases the underlying storage
	Close() error
}

// BackendFactory opens the storage backend named by the configuration
type BackendFactory interface {
	// OpenBackend opens cfg.Backend rooted at cfg.DataDir
	OpenBackend(ctx context.Context, cfg *config.Config) (Backend, error)
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves repo until ctx is cancelled
	StartServer(ctx context.Context, repo Repository, config ServerConfig) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
