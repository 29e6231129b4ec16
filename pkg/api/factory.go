// Package api provides factory implementations for dependency injection
package api

import (
	"context"
	"fmt"
	"path/filepath"

	"go.chromium.org/luci/common/logging"

	"github.com/ssargent/fieldnotes/pkg/config"
	"github.com/ssargent/fieldnotes/pkg/storage"
	"github.com/ssargent/fieldnotes/pkg/store"
)

// ArchiveDir is the pebble directory inside the data directory
const ArchiveDir = "archive"

// DefaultBackendFactory is the default implementation of BackendFactory
type DefaultBackendFactory struct{}

// NewBackendFactory creates a new backend factory
func NewBackendFactory() BackendFactory {
	return &DefaultBackendFactory{}
}

// OpenBackend opens the log store or the revision archive
func (f *DefaultBackendFactory) OpenBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.Backend {
	case config.BackendLog, "":
		s, err := store.New(store.Config{
			DataDir:        cfg.DataDir,
			FsyncInterval:  cfg.FsyncInterval,
			StrictVersions: cfg.Codec.StrictVersions,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create store: %w", err)
		}
		recovery, err := s.Open(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		if recovery.RecordsTruncated > 0 {
			logging.Warningf(ctx, "recovered from corruption: %d frames truncated", recovery.RecordsTruncated)
		}
		return s, nil

	case config.BackendPebble:
		a, err := storage.Open(filepath.Join(cfg.DataDir, ArchiveDir), storage.Options{
			StrictVersions: cfg.Codec.StrictVersions,
			Sync:           cfg.FsyncInterval == 0,
		})
		if err != nil {
			return nil, err
		}
		return a, nil

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct{}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(ctx context.Context, repo Repository, config ServerConfig) error {
	return StartServer(ctx, repo, config)
}
