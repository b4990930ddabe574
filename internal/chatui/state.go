package chatui

// Phase is the coarse position of the machine.
type Phase int

const (
	PhaseUnauthenticated Phase = iota
	PhaseIdle
	PhaseSending
)

func (p Phase) String() string {
	switch p {
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseIdle:
		return "idle"
	case PhaseSending:
		return "sending"
	default:
		return "unknown"
	}
}

// Mode selects which relay route a message goes to.
type Mode string

const (
	ModeChat   Mode = "chat"
	ModePrompt Mode = "prompt"
)

// Path is the server route for the mode.
func (m Mode) Path() string {
	if m == ModePrompt {
		return "/api/prompt"
	}
	return "/api/chat"
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModePrompt {
		return ModeChat
	}
	return ModePrompt
}

// State is a copy of the machine's state at one instant.
type State struct {
	Turns         []Turn
	Input         string
	Loading       bool
	DarkMode      bool
	Authenticated bool
	AuthError     string
	Mode          Mode
}

// Phase derives the machine phase from the flags.
func (s State) Phase() Phase {
	switch {
	case !s.Authenticated:
		return PhaseUnauthenticated
	case s.Loading:
		return PhaseSending
	default:
		return PhaseIdle
	}
}

func (s State) clone() State {
	turns := make([]Turn, len(s.Turns))
	copy(turns, s.Turns)
	s.Turns = turns
	return s
}
