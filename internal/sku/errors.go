package sku

import (
	"fmt"

	"github.com/rxcatalog/rxcatalog/internal/platform/httpx"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = fmt.Errorf("sku: %w", httpx.ErrNotFound)
	// ErrDuplicateNDC is returned when another live record already holds the ndc.
	ErrDuplicateNDC = fmt.Errorf("sku: ndc already registered: %w", httpx.ErrDuplicate)
)
