// Package provider defines the adapter contract for icon sources and the
// Iconify-backed adapters the aggregator ships with.
package provider

import (
	"context"
	"math"
)

// RawHit is one unprocessed result from a provider.
type RawHit struct {
	// QualifiedName is expected to be "prefix:name" but is not validated here.
	QualifiedName string

	// Collection is the upstream display name of the icon's set, if reported.
	Collection string
}

// Provider is one icon source. Implementations never return errors: any
// transport or upstream failure is logged and surfaces as an empty slice.
type Provider interface {
	// ID is the stable identifier recorded as an icon's source provider.
	ID() string

	// Name is the human-readable provider name.
	Name() string

	// PageSize is the number of hits requested per page.
	PageSize() int

	// Search returns up to PageSize hits for query on the 1-based page.
	Search(ctx context.Context, query string, page int) []RawHit

	// Popular returns a representative sample of the provider's icons.
	Popular(ctx context.Context) []RawHit
}

// Browser is implemented by providers that can list a single library without a query.
type Browser interface {
	Browse(ctx context.Context, prefix string, limit int) []RawHit
}

// FailureRecorder is notified whenever a provider swallows an upstream error.
type FailureRecorder interface {
	ProviderFailed(providerID, op string, err error)
}

// Offset returns the upstream offset of a 1-based page. Pages below 1 count as
// 1. An offset that would overflow saturates at math.MaxInt.
func Offset(page, pageSize int) int {
	if page < 1 || pageSize <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}
