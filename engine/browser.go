package engine

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/yokatlas/config"
	"github.com/use-agent/yokatlas/models"
)

// BrowserStrategy drives the source's HTML listing in a shared Chromium
// instance. Each category gets its own tab.
type BrowserStrategy struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	cfg      config.BrowserConfig
	source   config.SourceConfig
	openTabs atomic.Int32
}

// LaunchBrowser starts Chromium and connects to it.
func LaunchBrowser(ctx context.Context, cfg config.BrowserConfig, source config.SourceConfig) (*BrowserStrategy, error) {
	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.Proxy != "" {
		l = l.Proxy(cfg.Proxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewAcquireError(models.ErrCodeSession, "", "failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, models.NewAcquireError(models.ErrCodeSession, "", "failed to connect to browser", err)
	}

	return &BrowserStrategy{
		launcher: l,
		browser:  browser,
		cfg:      cfg,
		source:   source,
	}, nil
}

func (b *BrowserStrategy) Name() string   { return config.StrategyBrowser }
func (b *BrowserStrategy) FirstPage() int { return 1 }

// PageSize is 0: the listing's own page length applies.
func (b *BrowserStrategy) PageSize() int { return 0 }

// Open creates a tab, navigates it to the category listing and waits for
// the pagination control. The tab is closed again if any step fails.
func (b *BrowserStrategy) Open(ctx context.Context, c models.Category) (Pager, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewAcquireError(models.ErrCodeSession, c, "failed to open tab", err)
	}
	b.openTabs.Add(1)

	t := newTab(page, c, b.cfg, listingURL(b.source.ListingURL, c), func() { b.openTabs.Add(-1) })
	if err := t.open(ctx); err != nil {
		_ = t.Close()
		return nil, err
	}
	return t, nil
}

// OpenTabs returns the number of tabs not yet closed.
func (b *BrowserStrategy) OpenTabs() int { return int(b.openTabs.Load()) }

// Close closes the browser and waits for the process to exit.
func (b *BrowserStrategy) Close() error {
	if n := b.openTabs.Load(); n > 0 {
		slog.Warn("closing browser with open tabs", "tabs", n)
	}
	err := b.browser.Close()
	b.launcher.Cleanup()
	return err
}
