// Package geoloc runs the one-shot position acquisition behind the
// distance filter and the locate button. Acquisition is a small state
// machine driven from the session loop: provider I/O happens on its own
// goroutine and the outcome is posted back, so the loop never blocks on a
// fix.
package geoloc

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/pamana/markers/internal/config"
	"github.com/pamana/markers/internal/model"
)

// Provider supplies positions. Implementations talk to whatever the host
// platform offers; CurrentPosition may return a cached fix no older than
// maxFixAge.
type Provider interface {
	// Available reports whether positioning is switched on at all.
	Available() bool
	// CurrentPosition blocks until a fix arrives, the context expires, or
	// acquisition fails.
	CurrentPosition(ctx context.Context, maxFixAge time.Duration) (model.Position, error)
}

// State of the acquisition machine.
type State int

const (
	Idle State = iota
	Checking
	Acquiring
)

// ErrUnavailable means positioning is switched off on the host.
var ErrUnavailable = errors.New("positioning unavailable")

// Controller owns one acquisition at a time. All exported methods must be
// called from the session loop; the post function is how completions
// re-enter it.
type Controller struct {
	provider Provider
	cfg      config.GeolocationConfig
	post     func(func())
	logger   zerolog.Logger

	state       State
	noticeShown bool
	generation  int
}

// Callbacks receive the outcome of one acquisition, on the session loop.
type Callbacks struct {
	// OnPosition delivers a successful fix.
	OnPosition func(model.Position)
	// OnFailure delivers a failed acquisition, ErrUnavailable included.
	OnFailure func(error)
	// OnNotice asks for the positioning-off notice, only for the
	// unavailable case. Rate limited: not called again while a previous
	// notice is still showing.
	OnNotice func()
}

func NewController(provider Provider, cfg config.GeolocationConfig, post func(func()), logger zerolog.Logger) *Controller {
	return &Controller{
		provider: provider,
		cfg:      cfg,
		post:     post,
		logger:   logger.With().Str("component", "geoloc").Logger(),
	}
}

// State returns the machine's current state.
func (c *Controller) State() State {
	return c.state
}

// Request starts an acquisition and reports whether one actually began.
// A request while one is already running is a no-op; the in-flight
// acquisition's callbacks stand. An unavailable provider notifies and
// fails without starting.
func (c *Controller) Request(cb Callbacks) bool {
	if c.state != Idle {
		c.logger.Debug().Msg("Acquisition already in progress, ignoring request")
		return false
	}

	c.state = Checking
	c.generation++
	generation := c.generation

	if !c.provider.Available() {
		c.logger.Info().Msg("Positioning switched off")
		c.state = Idle
		c.notify(cb)
		if cb.OnFailure != nil {
			cb.OnFailure(ErrUnavailable)
		}
		return false
	}

	c.state = Acquiring
	// short grace so the requesting UI settles before the platform prompt
	time.AfterFunc(c.cfg.RequestDelay, func() {
		c.acquire(generation, cb)
	})
	return true
}

// acquire runs off-loop and posts the outcome back.
func (c *Controller) acquire(generation int, cb Callbacks) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout)
	defer cancel()

	pos, err := c.provider.CurrentPosition(ctx, c.cfg.MaxFixAge)

	c.post(func() {
		if generation != c.generation {
			return
		}
		c.state = Idle

		if err != nil {
			c.logger.Warn().Err(err).Msg("Acquisition failed")
			if cb.OnFailure != nil {
				cb.OnFailure(err)
			}
			return
		}

		c.logger.Info().
			Float64("lat", pos.Lat).
			Float64("lon", pos.Lon).
			Msg("Position acquired")
		if cb.OnPosition != nil {
			cb.OnPosition(pos)
		}
	})
}

// notify shows the positioning-off notice unless one is already showing.
// The shown flag clears after the cooldown, on the session loop.
func (c *Controller) notify(cb Callbacks) {
	if c.noticeShown {
		return
	}
	c.noticeShown = true
	if cb.OnNotice != nil {
		cb.OnNotice()
	}
	time.AfterFunc(c.cfg.NoticeCooldown, func() {
		c.post(func() {
			c.noticeShown = false
		})
	})
}
