package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/use-agent/yokatlas/engine"
	"github.com/use-agent/yokatlas/models"
)

// collectCategory opens a pager for c, determines its page count and reads
// every page in order. It returns the normalized records and the number of
// pages read. The pager is closed on every path.
func (s *Scraper) collectCategory(ctx context.Context, session *engine.Session, c models.Category) (records []models.Record, pages int, err error) {
	pager, err := session.Open(ctx, c)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if cerr := pager.Close(); cerr != nil {
			slog.Warn("pager close failed", "category", c, "error", cerr)
		}
	}()

	total, err := pager.PageCount(ctx)
	if err != nil {
		if models.CodeOf(err) != models.ErrCodeCount {
			err = models.NewAcquireError(models.ErrCodeCount, c, "page count unavailable", err)
		}
		return nil, 0, err
	}

	first := session.FirstPage()
	last := first + total - 1
	for i := first; i <= last; i++ {
		cursor := models.PageCursor{Category: c, Index: i, Size: session.PageSize()}
		page, err := s.fetchWithRetry(ctx, pager, cursor, i == last)
		if err != nil {
			return nil, pages, err
		}
		pages++
		for _, row := range page.Rows {
			records = append(records, row.Normalize(c))
		}
		slog.Debug("page collected",
			"category", c,
			"page", i,
			"of", last,
			"rows", len(page.Rows),
		)
		if !page.HasMore && i < last {
			slog.Warn("source ended before advertised page count",
				"category", c,
				"page", i,
				"pages", total,
			)
			break
		}
	}
	return records, pages, nil
}

// fetchWithRetry fetches one page, retrying transient failures on the same
// cursor with exponential backoff up to the configured attempt limit. A
// non-final page that comes back empty counts as a transient failure.
func (s *Scraper) fetchWithRetry(ctx context.Context, pager engine.Pager, cursor models.PageCursor, final bool) (*engine.Page, error) {
	attempt := 0
	op := func() (*engine.Page, error) {
		attempt++
		page, err := pager.FetchPage(ctx, cursor)
		if err != nil {
			if models.IsTransient(err) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		if len(page.Rows) == 0 && !final && page.HasMore {
			return nil, models.NewAcquireError(models.ErrCodePageEmpty, cursor.Category,
				fmt.Sprintf("page %d returned no rows", cursor.Index), nil)
		}
		return page, nil
	}
	notify := func(err error, wait time.Duration) {
		slog.Warn("page fetch failed, retrying",
			"category", cursor.Category,
			"page", cursor.Index,
			"attempt", attempt,
			"backoff", wait,
			"error", err,
		)
	}

	page, err := backoff.RetryNotifyWithData(op, s.newBackOff(ctx), notify)
	if err == nil {
		return page, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, models.NewAcquireError(models.ErrCodeTimeout, cursor.Category,
			fmt.Sprintf("page %d abandoned", cursor.Index), ctxErr)
	}
	if models.IsTransient(err) {
		return nil, models.NewAcquireError(models.ErrCodeExhausted, cursor.Category,
			fmt.Sprintf("page %d failed after %d attempts", cursor.Index, attempt), err)
	}
	return nil, err
}

// newBackOff builds the per-page retry policy: MaxAttempts total tries with
// exponential delays capped at MaxBackoff, stopped early by ctx.
func (s *Scraper) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.retry.InitialBackoff
	exp.MaxInterval = s.retry.MaxBackoff
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(s.retry.MaxAttempts-1)), ctx)
}
