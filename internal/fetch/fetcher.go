// Package fetch retrieves raw legacy metadata documents (bag manifests,
// descriptive XML, index-service lines) from their origin. A 404-equivalent
// answer is reported as common.ErrNotFound, which loaders treat as "no data
// available"; any other failure is fatal for the current unit.
package fetch

import "context"

// Fetcher retrieves the document identified by ref (a URL or object key,
// depending on the implementation).
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (string, error)
}
