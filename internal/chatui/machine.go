package chatui

import (
	"context"
	"strings"
	"sync"

	"github.com/csrsef/chatbot/pkg/logger"
)

const (
	ErrorReply      = "Error processing request."
	EmptyReply      = "Error: No response"
	WrongPassword   = "Incorrect password"
	AuthUnavailable = "Unable to verify password"
)

// Relay sends one message to the server and returns the reply text. An empty
// reply with a nil error means the server answered without one.
type Relay interface {
	Relay(ctx context.Context, mode Mode, message string) (string, error)
}

// Authenticator checks an access password.
type Authenticator interface {
	Authenticate(ctx context.Context, password string) (bool, error)
}

// Pending is a message accepted by BeginSend and not yet completed.
type Pending struct {
	Mode    Mode
	Message string
}

// Machine is the headless chat UI. All methods are safe for concurrent use;
// observers run after the lock is released.
type Machine struct {
	mu        sync.Mutex
	state     State
	relay     Relay
	auth      Authenticator
	normalize bool

	nextObserver int
	observers    map[int]func(State)
	unsubscribe  func()
}

type Option func(*Machine)

// WithoutNormalization keeps assistant replies exactly as received.
func WithoutNormalization() Option {
	return func(m *Machine) {
		m.normalize = false
	}
}

// WithMode sets the initial relay mode.
func WithMode(mode Mode) Option {
	return func(m *Machine) {
		m.state.Mode = mode
	}
}

// NewMachine builds a machine. With a nil Authenticator the gate is skipped
// and the machine starts Idle.
func NewMachine(relay Relay, auth Authenticator, opts ...Option) *Machine {
	m := &Machine{
		relay:     relay,
		auth:      auth,
		normalize: true,
		observers: make(map[int]func(State)),
		state: State{
			Authenticated: auth == nil,
			Mode:          ModeChat,
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Mount seeds dark mode from pref and follows its changes until Unmount.
func (m *Machine) Mount(pref DisplayPreference) {
	cancel := pref.Subscribe(func(dark bool) {
		m.update(func(s *State) bool {
			if s.DarkMode == dark {
				return false
			}
			s.DarkMode = dark
			return true
		})
	})

	m.mu.Lock()
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.unsubscribe = cancel
	m.mu.Unlock()

	dark := pref.IsDark()
	m.update(func(s *State) bool {
		s.DarkMode = dark
		return true
	})
}

// Unmount drops the display-preference subscription.
func (m *Machine) Unmount() {
	m.mu.Lock()
	cancel := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Observe registers fn to receive a snapshot after every state change.
func (m *Machine) Observe(fn func(State)) (cancel func()) {
	m.mu.Lock()
	id := m.nextObserver
	m.nextObserver++
	m.observers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.observers, id)
		m.mu.Unlock()
	}
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// SetInput replaces the input buffer. Input is locked while sending.
func (m *Machine) SetInput(text string) bool {
	return m.update(func(s *State) bool {
		if s.Loading || s.Input == text {
			return false
		}
		s.Input = text
		return true
	})
}

// PressEnter inserts a newline when shift is held and submits otherwise.
func (m *Machine) PressEnter(shift bool) (Pending, bool) {
	if shift {
		m.update(func(s *State) bool {
			if s.Loading {
				return false
			}
			s.Input += "\n"
			return true
		})
		return Pending{}, false
	}
	return m.BeginSend()
}

// BeginSend appends the input as a User turn and enters Sending. It does
// nothing while unauthenticated, while already sending, or when the input is
// blank.
func (m *Machine) BeginSend() (Pending, bool) {
	var pending Pending
	accepted := m.update(func(s *State) bool {
		if !s.Authenticated || s.Loading || strings.TrimSpace(s.Input) == "" {
			return false
		}
		pending = Pending{Mode: s.Mode, Message: s.Input}
		s.Turns = append(s.Turns, Turn{Speaker: User, Text: s.Input})
		s.Input = ""
		s.Loading = true
		return true
	})
	if accepted {
		logger.Debug(logger.UI, "Sending %d-byte message via %s", len(pending.Message), pending.Mode)
	}
	return pending, accepted
}

// Dispatch performs the relay call for p.
func (m *Machine) Dispatch(ctx context.Context, p Pending) (string, error) {
	return m.relay.Relay(ctx, p.Mode, p.Message)
}

// CompleteSend appends the Assistant turn for the outstanding message and
// returns to Idle. It is ignored when nothing is outstanding.
func (m *Machine) CompleteSend(reply string, err error) {
	if err != nil {
		logger.Warn(logger.UI, "Relay failed: %v", err)
	}

	m.update(func(s *State) bool {
		if !s.Loading {
			return false
		}

		text := reply
		switch {
		case err != nil:
			text = ErrorReply
		case reply == "":
			text = EmptyReply
		case m.normalize:
			text = NormalizeNewlines(reply)
		}

		s.Turns = append(s.Turns, Turn{Speaker: Assistant, Text: text})
		s.Loading = false
		return true
	})
}

// Send runs a full submit: BeginSend, the relay call and CompleteSend. It
// reports whether a message was sent.
func (m *Machine) Send(ctx context.Context) bool {
	pending, ok := m.BeginSend()
	if !ok {
		return false
	}
	reply, err := m.Dispatch(ctx, pending)
	m.CompleteSend(reply, err)
	return true
}

// Authenticate checks password and leaves the Unauthenticated phase on a match.
func (m *Machine) Authenticate(ctx context.Context, password string) bool {
	if m.Snapshot().Authenticated {
		return true
	}
	if m.auth == nil {
		return false
	}

	ok, err := m.auth.Authenticate(ctx, password)

	m.update(func(s *State) bool {
		switch {
		case err != nil:
			logger.Warn(logger.UI, "Authentication request failed: %v", err)
			s.AuthError = AuthUnavailable
		case !ok:
			s.AuthError = WrongPassword
		default:
			s.Authenticated = true
			s.AuthError = ""
		}
		return true
	})
	return err == nil && ok
}

// ToggleDarkMode flips dark mode locally. Requests are unaffected.
func (m *Machine) ToggleDarkMode() {
	m.update(func(s *State) bool {
		s.DarkMode = !s.DarkMode
		return true
	})
}

// SetMode picks the relay route for the next message.
func (m *Machine) SetMode(mode Mode) {
	m.update(func(s *State) bool {
		if s.Mode == mode {
			return false
		}
		s.Mode = mode
		return true
	})
}

// update applies fn under the lock and notifies observers when fn reports a
// change.
func (m *Machine) update(fn func(s *State) bool) bool {
	m.mu.Lock()
	changed := fn(&m.state)
	if !changed {
		m.mu.Unlock()
		return false
	}
	snapshot := m.state.clone()
	observers := make([]func(State), 0, len(m.observers))
	for _, o := range m.observers {
		observers = append(observers, o)
	}
	m.mu.Unlock()

	for _, o := range observers {
		o(snapshot)
	}
	return true
}
