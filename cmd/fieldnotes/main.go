package main

import (
	"github.com/ssargent/fieldnotes/cmd/fieldnotes/cmd"
	"github.com/ssargent/fieldnotes/pkg/di"
)

func main() {
	// Initialize dependency injection container
	container := di.NewContainer()

	// Inject dependencies into cmd package
	cmd.SetContainer(container)

	cmd.Execute()
}
