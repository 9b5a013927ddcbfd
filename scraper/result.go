package scraper

import (
	"time"

	"github.com/use-agent/yokatlas/models"
)

// CategoryResult is the outcome of one category's pagination run. A failed
// category keeps its error and carries no records.
type CategoryResult struct {
	Category models.Category
	Records  []models.Record
	Pages    int
	Err      error
	Duration time.Duration
}

// Result is the merged outcome of an orchestrator run.
type Result struct {
	// Records is the concatenation of every successful category's records,
	// in requested category order. Never nil.
	Records    []models.Record
	Categories []CategoryResult
}

// Failed returns the categories that contributed no records because of an
// error.
func (r *Result) Failed() []CategoryResult {
	var failed []CategoryResult
	for _, cr := range r.Categories {
		if cr.Err != nil {
			failed = append(failed, cr)
		}
	}
	return failed
}
