package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/use-agent/yokatlas/config"
	"github.com/use-agent/yokatlas/models"
)

// ErrSessionReleased is returned by Open after Release.
var ErrSessionReleased = errors.New("engine: session already released")

// Session is the single long-lived acquisition resource of a run. All
// category drivers borrow it concurrently; each opens its own pager.
type Session struct {
	strategy Strategy
	released atomic.Bool
	once     sync.Once
	closeErr error
}

// NewSession wraps an already constructed strategy.
func NewSession(s Strategy) *Session {
	return &Session{strategy: s}
}

// Acquire builds the strategy named by cfg.Strategy. For the browser
// strategy this launches Chromium.
func Acquire(ctx context.Context, cfg *config.Config) (*Session, error) {
	switch cfg.Strategy {
	case config.StrategyQuery:
		return NewSession(NewQueryStrategy(cfg.Source)), nil
	case config.StrategyBrowser:
		bs, err := LaunchBrowser(ctx, cfg.Browser, cfg.Source)
		if err != nil {
			return nil, err
		}
		return NewSession(bs), nil
	default:
		return nil, models.NewAcquireError(
			models.ErrCodeInvalidInput, "",
			fmt.Sprintf("unknown strategy %q (want %q or %q)", cfg.Strategy, config.StrategyQuery, config.StrategyBrowser),
			nil,
		)
	}
}

// WithSession acquires a session, runs fn and releases the session on every
// path, including panics inside fn.
func WithSession(ctx context.Context, cfg *config.Config, fn func(*Session) error) error {
	s, err := Acquire(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if relErr := s.Release(); relErr != nil {
			slog.Warn("session release failed", "strategy", s.Name(), "error", relErr)
		}
	}()
	return fn(s)
}

// Name returns the underlying strategy name.
func (s *Session) Name() string { return s.strategy.Name() }

// FirstPage returns the strategy's first page index.
func (s *Session) FirstPage() int { return s.strategy.FirstPage() }

// PageSize returns the strategy's page size.
func (s *Session) PageSize() int { return s.strategy.PageSize() }

// Open opens a pager for c on the shared resource.
func (s *Session) Open(ctx context.Context, c models.Category) (Pager, error) {
	if s.released.Load() {
		return nil, ErrSessionReleased
	}
	return s.strategy.Open(ctx, c)
}

// Release closes the strategy. Only the first call has an effect; later
// calls return the first call's result.
func (s *Session) Release() error {
	s.once.Do(func() {
		s.released.Store(true)
		s.closeErr = s.strategy.Close()
		slog.Info("session released", "strategy", s.strategy.Name())
	})
	return s.closeErr
}
