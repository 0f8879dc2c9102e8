// Package session owns one contact list screen: it runs the permission
// gate, loads contacts once access is granted, groups them, and publishes
// the result to a [uistate.Store].
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/spachava753/contactsapp/contactlist"
	"github.com/spachava753/contactsapp/permission"
	"github.com/spachava753/contactsapp/uistate"
)

// Options configures a [Controller].
type Options struct {
	Rationale permission.RationaleAction
	// LoadTimeout bounds one load cycle. Zero means no limit.
	LoadTimeout time.Duration
	Logger      *slog.Logger
	// OnPermission is called on every permission state change. It must
	// not call back into the Controller synchronously.
	OnPermission func(permission.State)
}

// Controller is the single writer of a [uistate.Store].
type Controller struct {
	gate    *permission.Gate
	loader  *contactlist.Loader
	store   *uistate.Store
	timeout time.Duration
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	loading bool
	closed  bool
}

// New returns a controller that publishes into store. Call [Controller.Start]
// to begin the permission flow.
func New(platform permission.Platform, source contactlist.Source, store *uistate.Store, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		loader:  contactlist.NewLoader(source, logger),
		store:   store,
		timeout: opts.LoadTimeout,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	c.gate = permission.NewGate(platform, permission.Options{
		Rationale: opts.Rationale,
		Logger:    logger,
		OnChange:  opts.OnPermission,
		OnGranted: func() { c.startLoad() },
	})
	return c
}

// Start performs the first permission check.
func (c *Controller) Start() {
	c.gate.Check()
}

// Resume re-checks permission, for example when the app returns to the
// foreground or the user comes back from system settings.
func (c *Controller) Resume() {
	c.gate.Check()
}

// AcceptRationale forwards the user's acceptance of the rationale prompt.
func (c *Controller) AcceptRationale() {
	c.gate.AcceptRationale()
}

// DismissRationale forwards the user's dismissal of the rationale prompt.
func (c *Controller) DismissRationale() {
	c.gate.DismissRationale()
}

// Permission returns the current permission state.
func (c *Controller) Permission() permission.State {
	return c.gate.State()
}

// Refresh reloads contacts if access is already granted. It reports
// whether a load cycle was started.
func (c *Controller) Refresh() bool {
	if c.gate.State() != permission.StateGranted {
		return false
	}
	return c.startLoad()
}

// Close stops the controller. An in-flight load is canceled and its
// result is never written to the store.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
	c.gate.Close()
	c.wg.Wait()
}

func (c *Controller) startLoad() bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	if c.loading {
		c.mu.Unlock()
		c.logger.Debug("load already in flight, ignoring request")
		return false
	}
	c.loading = true
	c.wg.Add(1)
	c.store.SetLoading()
	c.mu.Unlock()

	ctx, cancel := c.ctx, context.CancelFunc(func() {})
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(c.ctx, c.timeout)
	}

	results := c.loader.Start(ctx)
	go func() {
		defer c.wg.Done()
		defer cancel()
		select {
		case result := <-results:
			c.finish(result)
		case <-c.ctx.Done():
			c.finish(contactlist.Result{Err: c.ctx.Err()})
		}
	}()
	return true
}

func (c *Controller) finish(result contactlist.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false

	if c.closed {
		c.logger.Debug("discarding load result after close")
		return
	}

	contacts := result.Contacts
	if result.Err != nil {
		switch {
		case errors.Is(result.Err, contactlist.ErrSourceUnavailable):
			c.logger.Warn("contact source unavailable, showing empty list", "error", result.Err)
		default:
			c.logger.Warn("contact load aborted, showing empty list", "error", result.Err)
		}
		contacts = nil
	}

	grouped := contactlist.Group(contacts)
	c.store.SetLoaded(grouped)
	c.logger.Info("contacts published",
		"contacts", grouped.Count(),
		"groups", len(grouped),
	)
}
