package engine

import (
	"context"

	"github.com/use-agent/yokatlas/models"
)

// Strategy is one technique for realizing page fetches against the source.
// A Strategy owns the process-scoped resource (HTTP client or browser) and
// hands out per-category pagers that borrow it.
type Strategy interface {
	// Name returns the strategy identifier ("query" or "browser").
	Name() string

	// FirstPage is the index of the first page in this strategy's cursors.
	FirstPage() int

	// PageSize is the record count per page, or 0 when the source decides.
	PageSize() int

	// Open prepares a pager for one category. The caller must Close it.
	Open(ctx context.Context, c models.Category) (Pager, error)

	// Close releases the process-scoped resource.
	Close() error
}

// Pager walks the pages of a single category. Pages must be requested in
// order; implementations may hold UI or cursor state between calls.
type Pager interface {
	// PageCount determines how many pages the category has.
	PageCount(ctx context.Context) (int, error)

	// FetchPage returns the rows of the page identified by cursor.
	FetchPage(ctx context.Context, cursor models.PageCursor) (*Page, error)

	// Close releases the pager's sub-resources (e.g. the browser tab).
	Close() error
}

// Page is the output of a successful page fetch.
type Page struct {
	Rows    []models.RawRow
	HasMore bool
}
