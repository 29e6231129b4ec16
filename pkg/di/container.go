// Package di provides dependency injection container
package di

import (
	"github.com/ssargent/fieldnotes/pkg/api" //nolint:depguard
)

// Container holds all the dependencies for the application
type Container struct {
	backendFactory api.BackendFactory
	serverFactory  api.ServerFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		backendFactory: api.NewBackendFactory(),
		serverFactory:  api.NewServerFactory(),
	}
}

// GetBackendFactory returns the storage backend factory
func (c *Container) GetBackendFactory() api.BackendFactory {
	return c.backendFactory
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetBackendFactory allows overriding the backend factory (for testing)
func (c *Container) SetBackendFactory(factory api.BackendFactory) {
	c.backendFactory = factory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}
