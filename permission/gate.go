package permission

import (
	"context"
	"log/slog"
	"sync"
)

// Platform is the host's permission API for the contacts capability.
type Platform interface {
	// Status returns the current permission status without prompting.
	Status(ctx context.Context) (Status, error)
	// Request asks the user for access. It may block until the user
	// answers; the gate calls it on a background goroutine.
	Request(ctx context.Context) (Outcome, error)
	// OpenSettings opens the system settings page where access can be
	// granted manually.
	OpenSettings(ctx context.Context) error
}

// Options configures a [Gate].
type Options struct {
	// Rationale selects what accepting the rationale prompt does.
	// Defaults to [RationaleOpenSettings].
	Rationale RationaleAction
	Logger    *slog.Logger

	// OnChange is called after every state change. OnGranted is called
	// when the gate enters [StateGranted]. Both run with the gate locked,
	// in transition order, and must not call back into the Gate.
	OnChange  func(State)
	OnGranted func()
}

// Gate drives a [Machine] against a [Platform]. It guarantees at most one
// outstanding platform request and discards results from superseded
// requests and settings visits. All methods are safe for concurrent use.
type Gate struct {
	platform Platform
	logger   *slog.Logger
	onChange func(State)
	onGrant  func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	machine    *Machine
	generation uint64
	closed     bool
}

// NewGate returns a gate in [StateUnknown]. Call [Gate.Check] to start
// the flow.
func NewGate(platform Platform, opts Options) *Gate {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	rationale := opts.Rationale
	if rationale == "" {
		rationale = RationaleOpenSettings
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Gate{
		platform: platform,
		logger:   logger,
		onChange: opts.OnChange,
		onGrant:  opts.OnGranted,
		ctx:      ctx,
		cancel:   cancel,
		machine:  NewMachine(rationale),
	}
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.machine.State()
}

// Check consults the platform's current status and advances the flow.
// Call it on first display, on resume, and on return from settings.
// A status error is logged and treated as [StatusNotDetermined].
func (g *Gate) Check() {
	status, err := g.platform.Status(g.ctx)
	if err != nil {
		if g.ctx.Err() != nil {
			return
		}
		g.logger.Warn("permission status check failed", "error", err)
		status = StatusNotDetermined
	}
	g.logger.Debug("permission status checked", "status", status)
	g.apply(Checked{Status: status}, nil)
}

// AcceptRationale records that the user accepted the rationale prompt.
func (g *Gate) AcceptRationale() {
	g.apply(RationaleAccepted{}, nil)
}

// DismissRationale records that the user dismissed the rationale prompt.
func (g *Gate) DismissRationale() {
	g.apply(RationaleDismissed{}, nil)
}

// Close stops the gate. Pending platform calls are canceled and their
// results discarded. Close waits for background work to finish.
func (g *Gate) Close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	g.cancel()
	g.wg.Wait()
}

// apply fires ev under the lock. guard, when set, is evaluated under the
// same lock and can veto the event.
func (g *Gate) apply(ev Event, guard func() bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return
	}
	if guard != nil && !guard() {
		return
	}

	before := g.machine.State()
	effect := g.machine.Fire(ev)
	after := g.machine.State()

	if before != after {
		g.logger.Info("permission state changed", "from", before, "to", after, "effect", effect)
		if g.onChange != nil {
			g.onChange(after)
		}
	}

	switch effect {
	case EffectRequest:
		g.generation++
		generation := g.generation
		g.wg.Add(1)
		go g.request(generation)
	case EffectOpenSettings:
		g.generation++
		generation := g.generation
		g.wg.Add(1)
		go g.openSettings(generation)
	case EffectLoad:
		if g.onGrant != nil {
			g.onGrant()
		}
	}
}

func (g *Gate) request(generation uint64) {
	defer g.wg.Done()

	outcome, err := g.platform.Request(g.ctx)
	if g.ctx.Err() != nil {
		return
	}
	if err != nil {
		g.logger.Warn("permission request failed", "error", err)
		outcome = Outcome{}
	}
	g.apply(RequestCompleted{Outcome: outcome}, g.current(generation))
}

// current returns a guard that passes only while generation is the
// latest platform call.
func (g *Gate) current(generation uint64) func() bool {
	return func() bool {
		if generation != g.generation {
			g.logger.Debug("discarding superseded permission result", "generation", generation)
			return false
		}
		return true
	}
}

func (g *Gate) openSettings(generation uint64) {
	defer g.wg.Done()

	if err := g.platform.OpenSettings(g.ctx); err != nil {
		if g.ctx.Err() != nil {
			return
		}
		g.logger.Warn("opening permission settings failed", "error", err)
		g.apply(SettingsFailed{}, g.current(generation))
	}
}
