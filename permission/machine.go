package permission

import "fmt"

// State is the gate's position in the permission flow.
type State int

const (
	// StateUnknown means the platform has not been consulted yet.
	StateUnknown State = iota
	// StateAwaitingUserDecision means the rationale prompt is visible.
	StateAwaitingUserDecision
	// StateRequestInFlight means a platform request or a settings visit is
	// pending.
	StateRequestInFlight
	// StateGranted means contacts may be loaded.
	StateGranted
	// StateDenied means access was refused for this session.
	StateDenied
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateAwaitingUserDecision:
		return "awaiting_user_decision"
	case StateRequestInFlight:
		return "request_in_flight"
	case StateGranted:
		return "granted"
	case StateDenied:
		return "denied"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Status is the platform-reported permission status.
type Status int

const (
	// StatusNotDetermined means the user has never been asked.
	StatusNotDetermined Status = iota
	// StatusDeniedCanAskAgain means access was denied and a rationale
	// should be shown before asking again.
	StatusDeniedCanAskAgain
	// StatusDeniedPermanently means the platform will not show a prompt.
	StatusDeniedPermanently
	// StatusGranted means access is allowed.
	StatusGranted
)

func (s Status) String() string {
	switch s {
	case StatusNotDetermined:
		return "not_determined"
	case StatusDeniedCanAskAgain:
		return "denied_can_ask_again"
	case StatusDeniedPermanently:
		return "denied_permanently"
	case StatusGranted:
		return "granted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the result of a platform permission request.
type Outcome struct {
	Granted     bool
	CanAskAgain bool
}

// RationaleAction selects what accepting the rationale prompt does.
type RationaleAction string

const (
	// RationaleOpenSettings deep-links to the system settings page. The
	// gate re-evaluates on the next check.
	RationaleOpenSettings RationaleAction = "settings"
	// RationaleRequest issues a new platform request.
	RationaleRequest RationaleAction = "request"
)

// Effect is the side effect the caller must perform after a transition.
type Effect int

const (
	// EffectNone requires no action.
	EffectNone Effect = iota
	// EffectRequest issues a platform permission request.
	EffectRequest
	// EffectOpenSettings opens the system settings page.
	EffectOpenSettings
	// EffectLoad starts loading contacts.
	EffectLoad
)

func (e Effect) String() string {
	switch e {
	case EffectNone:
		return "none"
	case EffectRequest:
		return "request"
	case EffectOpenSettings:
		return "open_settings"
	case EffectLoad:
		return "load"
	default:
		return fmt.Sprintf("effect(%d)", int(e))
	}
}

// Event drives a [Machine] transition.
type Event interface {
	event()
}

// Checked reports a synchronous status check: first observation, resume,
// or return from settings.
type Checked struct {
	Status Status
}

// RequestCompleted reports the outcome of the pending platform request.
type RequestCompleted struct {
	Outcome Outcome
}

// RationaleAccepted reports that the user accepted the rationale prompt.
type RationaleAccepted struct{}

// RationaleDismissed reports that the user dismissed the rationale prompt.
type RationaleDismissed struct{}

// SettingsFailed reports that the settings page could not be opened.
type SettingsFailed struct{}

func (Checked) event()            {}
func (RequestCompleted) event()   {}
func (RationaleAccepted) event()  {}
func (RationaleDismissed) event() {}
func (SettingsFailed) event()     {}

type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingRequest
	pendingSettings
)

// Machine is the pure permission state machine. It performs no I/O; the
// returned [Effect] tells the caller what to do next. The zero value
// starts in [StateUnknown] and uses [RationaleOpenSettings].
//
// Machine is not safe for concurrent use.
type Machine struct {
	state     State
	pending   pendingKind
	rationale RationaleAction
}

// NewMachine returns a machine in [StateUnknown].
func NewMachine(rationale RationaleAction) *Machine {
	return &Machine{rationale: rationale}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// RequestPending reports whether a platform request is outstanding.
func (m *Machine) RequestPending() bool {
	return m.pending == pendingRequest
}

// Fire applies ev and returns the effect the caller must perform.
// Events that do not apply to the current state are ignored.
func (m *Machine) Fire(ev Event) Effect {
	switch ev := ev.(type) {
	case Checked:
		return m.checked(ev.Status)

	case RequestCompleted:
		if m.pending != pendingRequest {
			return EffectNone
		}
		m.pending = pendingNone
		switch {
		case ev.Outcome.Granted:
			return m.grant()
		case ev.Outcome.CanAskAgain:
			m.state = StateAwaitingUserDecision
		default:
			m.state = StateDenied
		}
		return EffectNone

	case RationaleAccepted:
		if m.state != StateAwaitingUserDecision {
			return EffectNone
		}
		m.state = StateRequestInFlight
		if m.rationale == RationaleRequest {
			m.pending = pendingRequest
			return EffectRequest
		}
		m.pending = pendingSettings
		return EffectOpenSettings

	case RationaleDismissed:
		if m.state != StateAwaitingUserDecision {
			return EffectNone
		}
		m.state = StateDenied
		return EffectNone

	case SettingsFailed:
		if m.pending != pendingSettings {
			return EffectNone
		}
		m.pending = pendingNone
		m.state = StateAwaitingUserDecision
		return EffectNone
	}
	return EffectNone
}

func (m *Machine) checked(status Status) Effect {
	if status == StatusGranted {
		return m.grant()
	}
	switch {
	case m.pending == pendingRequest:
		return EffectNone
	case m.state == StateAwaitingUserDecision:
		return EffectNone
	}

	// Anything else, including a return from settings or a revoked
	// grant, is evaluated as a fresh check.
	m.pending = pendingNone
	if status == StatusDeniedCanAskAgain {
		m.state = StateAwaitingUserDecision
		return EffectNone
	}
	m.state = StateRequestInFlight
	m.pending = pendingRequest
	return EffectRequest
}

func (m *Machine) grant() Effect {
	m.pending = pendingNone
	if m.state == StateGranted {
		return EffectNone
	}
	m.state = StateGranted
	return EffectLoad
}
