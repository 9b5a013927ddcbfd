package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/use-agent/yokatlas/config"
	"github.com/use-agent/yokatlas/engine"
	"github.com/use-agent/yokatlas/models"
)

// Scraper fans the pagination driver out across categories. It holds no
// per-run state and is safe for concurrent use.
type Scraper struct {
	retry config.RetryConfig
}

// New creates a Scraper that retries transient page failures according to
// retry.
func New(retry config.RetryConfig) *Scraper {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	return &Scraper{retry: retry}
}

// Run collects every distinct category in categories concurrently using
// pagers opened from session. A category that fails is logged and
// contributes no records; its siblings are unaffected. Run never fails as a
// whole. The caller owns session and must release it afterwards.
func (s *Scraper) Run(ctx context.Context, session *engine.Session, categories []models.Category) *Result {
	cats := models.Distinct(categories)
	results := make([]CategoryResult, len(cats))

	var wg sync.WaitGroup
	for i, c := range cats {
		wg.Add(1)
		go func(i int, c models.Category) {
			defer wg.Done()
			results[i] = s.runCategory(ctx, session, c)
		}(i, c)
	}
	wg.Wait()

	res := &Result{Records: []models.Record{}, Categories: results}
	for _, cr := range results {
		res.Records = append(res.Records, cr.Records...)
	}
	return res
}

// runCategory drives one category and converts failures, panics included,
// into a CategoryResult.
func (s *Scraper) runCategory(ctx context.Context, session *engine.Session, c models.Category) (cr CategoryResult) {
	start := time.Now()
	cr.Category = c

	defer func() {
		if r := recover(); r != nil {
			cr.Records = nil
			cr.Err = fmt.Errorf("category %s: panic: %v", c, r)
		}
		cr.Duration = time.Since(start)
		if cr.Err != nil {
			slog.Error("category failed",
				"category", c,
				"code", models.CodeOf(cr.Err),
				"duration", cr.Duration,
				"error", cr.Err,
			)
			return
		}
		slog.Info("category finished",
			"category", c,
			"pages", cr.Pages,
			"records", len(cr.Records),
			"duration", cr.Duration,
		)
	}()

	slog.Info("category started", "category", c, "strategy", session.Name())
	records, pages, err := s.collectCategory(ctx, session, c)
	cr.Pages = pages
	if err != nil {
		cr.Err = err
		return cr
	}
	cr.Records = records
	return cr
}
