package chatui

// Speaker identifies who produced a turn.
type Speaker int

const (
	User Speaker = iota
	Assistant
)

func (s Speaker) String() string {
	switch s {
	case User:
		return "You"
	case Assistant:
		return "AI"
	default:
		return "unknown"
	}
}

// Turn is one entry of the conversation. Turns are only ever appended.
type Turn struct {
	Speaker Speaker
	Text    string
}
