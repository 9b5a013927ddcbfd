package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/yokatlas/config"
	"github.com/use-agent/yokatlas/models"
	"github.com/ysmood/gson"
)

// Listing page selectors. They follow the DataTables markup the source
// renders and break if it changes.
const (
	selTable      = "#mydata"
	selPagination = "#mydata_paginate"
	selNext       = "#mydata_next > a"
	selActivePage = "#mydata_paginate li.active > a"
)

// defaultActionTimeout bounds one element lookup or click-and-wait.
const defaultActionTimeout = 15 * time.Second

// tab is the browser strategy's pager: one Chromium tab parked on one
// category's listing. current tracks which page the UI shows.
type tab struct {
	page     *rod.Page
	router   *rod.HijackRouter
	category models.Category
	cfg      config.BrowserConfig
	url      string
	onClose  func()

	actionTimeout time.Duration
	// click moves the UI to target and waits for it to show; settle waits
	// for in-flight requests before a second click.
	click  func(ctx context.Context, target int) error
	settle func(ctx context.Context)

	pages   int
	current int
}

func newTab(page *rod.Page, c models.Category, cfg config.BrowserConfig, listing string, onClose func()) *tab {
	t := &tab{
		page:          page,
		category:      c,
		cfg:           cfg,
		url:           listing,
		onClose:       onClose,
		actionTimeout: defaultActionTimeout,
	}
	t.click = t.clickNext
	t.settle = t.waitNetworkIdle
	return t
}

// open prepares the tab and navigates to the listing.
//
// Stealth and request blocking only affect navigations that start after
// they are installed, so both come before Navigate.
func (t *tab) open(ctx context.Context) error {
	if t.cfg.Stealth {
		if _, err := t.page.EvalOnNewDocument(stealth.JS); err != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"category", t.category, "error", err)
		}
	}

	headers := map[string]string{"Accept-Language": "tr-TR,tr;q=0.9,en;q=0.5"}
	if u, err := url.Parse(t.url); err == nil {
		headers["Referer"] = u.Scheme + "://" + u.Host + "/"
	}
	if err := (proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}).Call(t.page); err != nil {
		slog.Warn("setting extra headers failed, proceeding without them",
			"category", t.category, "error", err)
	}

	t.router = setupHijack(t.page, t.cfg.BlockedResourceTypes)

	navCtx, cancel := context.WithTimeout(ctx, t.cfg.NavigationTimeout)
	defer cancel()
	p := t.page.Context(navCtx)

	if err := p.Navigate(t.url); err != nil {
		return navigationError(t.category, "navigation to listing failed", err)
	}
	if err := p.WaitElementsMoreThan(selPagination, 0); err != nil {
		return navigationError(t.category, "pagination control never appeared", err)
	}

	t.current = 1
	slog.Debug("listing opened", "category", t.category, "url", t.url)
	return nil
}

// PageCount reads the highest page number from the pagination control.
func (t *tab) PageCount(ctx context.Context) (int, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, t.actionTimeout)
	defer cancel()

	el, err := t.page.Context(lookupCtx).Element(selPagination)
	if err != nil {
		return 0, models.NewAcquireError(models.ErrCodeCount, t.category, "pagination control not found", categorizeError(err))
	}
	markup, err := el.HTML()
	if err != nil {
		return 0, models.NewAcquireError(models.ErrCodeCount, t.category, "failed to read pagination control", categorizeError(err))
	}
	n, err := parsePageCount(markup)
	if err != nil {
		return 0, models.NewAcquireError(models.ErrCodeCount, t.category, "unreadable pagination control", err)
	}

	t.pages = n
	slog.Info("category size determined", "category", t.category, "pages", n)
	return n, nil
}

// FetchPage reads the rows of cursor.Index, clicking "next" first when the
// cursor is one past the page on screen. Re-requesting the current page
// just re-reads it, which is how retries of an empty read work.
func (t *tab) FetchPage(ctx context.Context, cursor models.PageCursor) (*Page, error) {
	switch cursor.Index {
	case t.current:
	case t.current + 1:
		if err := t.advance(ctx, cursor.Index); err != nil {
			return nil, err
		}
	default:
		return nil, models.NewAcquireError(models.ErrCodeAdvance, t.category,
			fmt.Sprintf("cannot move from page %d to page %d", t.current, cursor.Index), nil)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, t.actionTimeout)
	defer cancel()

	el, err := t.page.Context(lookupCtx).Element(selTable)
	if err != nil {
		return nil, models.NewAcquireError(models.ErrCodeFetch, t.category,
			fmt.Sprintf("page %d: table not found", cursor.Index), categorizeError(err))
	}
	markup, err := el.HTML()
	if err != nil {
		return nil, models.NewAcquireError(models.ErrCodeFetch, t.category,
			fmt.Sprintf("page %d: failed to read table", cursor.Index), categorizeError(err))
	}
	scraped, err := parseTable(markup)
	if err != nil {
		return nil, models.NewAcquireError(models.ErrCodeFetch, t.category,
			fmt.Sprintf("page %d: unparsable table", cursor.Index), err)
	}

	hasMore := cursor.Index < t.pages
	if len(scraped) == 0 && hasMore {
		return nil, models.NewAcquireError(models.ErrCodePageEmpty, t.category,
			fmt.Sprintf("page %d rendered no rows", cursor.Index), nil)
	}

	rows := make([]models.RawRow, len(scraped))
	for i, r := range scraped {
		rows[i] = r
	}
	return &Page{Rows: rows, HasMore: hasMore}, nil
}

// advance clicks "next" and waits until the control marks target active.
// A failed attempt gets one recovery: wait for the network to settle, then
// click again.
func (t *tab) advance(ctx context.Context, target int) error {
	err := t.click(ctx, target)
	if err == nil {
		t.current = target
		return nil
	}

	slog.Warn("advance to next page failed, retrying once after network idle",
		"category", t.category, "page", target, "error", err)
	t.settle(ctx)

	if err := t.click(ctx, target); err != nil {
		return models.NewAcquireError(models.ErrCodeAdvance, t.category,
			fmt.Sprintf("could not advance to page %d", target), categorizeError(err))
	}
	t.current = target
	return nil
}

func (t *tab) clickNext(ctx context.Context, target int) error {
	actionCtx, cancel := context.WithTimeout(ctx, t.actionTimeout)
	defer cancel()
	p := t.page.Context(actionCtx)

	el, err := p.Element(selNext)
	if err != nil {
		return fmt.Errorf("next control %q not found: %w", selNext, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click next: %w", err)
	}
	const activeIs = `(sel, n) => {
		const el = document.querySelector(sel);
		return !!el && el.textContent.trim() === String(n);
	}`
	if err := p.Wait(rod.Eval(activeIs, selActivePage, target)); err != nil {
		return fmt.Errorf("page %d never became active: %w", target, err)
	}
	return nil
}

// waitNetworkIdle blocks until requests settle or the action timeout passes.
// WaitRequestIdle conflicts with a mounted hijack router, so DOM stability
// stands in for it then.
func (t *tab) waitNetworkIdle(ctx context.Context) {
	waitCtx, cancel := context.WithTimeout(ctx, t.actionTimeout)
	defer cancel()
	p := t.page.Context(waitCtx)

	if t.router != nil {
		if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
			slog.Debug("WaitDOMStable did not converge", "category", t.category, "error", err)
		}
		return
	}
	p.WaitRequestIdle(500*time.Millisecond, nil, nil, nil)()
}

// Close stops the hijack router and closes the tab. It uses the page
// without a request context so it succeeds after ctx has expired.
func (t *tab) Close() error {
	if t.router != nil {
		_ = t.router.Stop()
		t.router = nil
	}
	err := t.page.Close()
	if t.onClose != nil {
		t.onClose()
		t.onClose = nil
	}
	return err
}

// navigationError reports a listing that could not be brought up. Without
// the listing the page count is unknowable, so it is a count failure.
func navigationError(c models.Category, msg string, err error) error {
	cause := categorizeError(err)
	if cause == err {
		cause = models.NewAcquireError(models.ErrCodeNavigation, c, msg, err)
	}
	return models.NewAcquireError(models.ErrCodeCount, c, msg, cause)
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
