// Package cmd provides common initialization for the flowd binaries.
package cmd

import (
	"log/slog"

	"github.com/flowd-sh/flowd/pkg/registry"
)

func NewRegistry(logger *slog.Logger) *registry.Registry {
	reg := registry.NewRegistry(logger)
	reg.RegisterDefaultNodes()

	return reg
}
