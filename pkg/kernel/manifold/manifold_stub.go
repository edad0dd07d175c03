//go:build !manifold

// Package manifold provides a CGo-based geometry kernel binding to the
// Manifold library. When the "manifold" build tag is not set, this stub
// is compiled instead and New reports ErrUnavailable.
//
// Build with: go build -tags=manifold
package manifold

import (
	"errors"

	"github.com/chazu/sketchplane/pkg/kernel"
)

// ErrUnavailable is returned by New in builds without the manifold tag.
var ErrUnavailable = errors.New("manifold kernel not available: build with -tags=manifold")

// New returns ErrUnavailable.
func New() (kernel.Kernel, error) {
	return nil, ErrUnavailable
}
