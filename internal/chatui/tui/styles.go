package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds every style the view uses for one display preference.
type Theme struct {
	Header    lipgloss.Style
	Mode      lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Pending   lipgloss.Style
	Input     lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
	Code      lipgloss.Style
	Bold      lipgloss.Style
	Italic    lipgloss.Style
	Heading   lipgloss.Style
	Link      lipgloss.Style
	List      lipgloss.Style
}

func ThemeFor(dark bool) Theme {
	if dark {
		return newTheme(palette{
			fg:        "255",
			muted:     "245",
			bar:       "236",
			user:      "39",
			assistant: "252",
			accent:    "214",
			code:      "238",
			err:       "203",
		})
	}
	return newTheme(palette{
		fg:        "232",
		muted:     "241",
		bar:       "254",
		user:      "27",
		assistant: "235",
		accent:    "130",
		code:      "253",
		err:       "160",
	})
}

type palette struct {
	fg, muted, bar, user, assistant, accent, code, err string
}

func newTheme(p palette) Theme {
	return Theme{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.fg)).
			Padding(0, 1),
		Mode: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.accent)).
			Padding(0, 1),
		User: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.user)).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color(p.user)).
			Padding(0, 1).
			MarginLeft(2),
		Assistant: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.assistant)).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color(p.accent)).
			Padding(0, 1).
			MarginLeft(2),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.muted)).
			Padding(0, 1).
			MarginLeft(2),
		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.accent)).
			Padding(0, 1),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.muted)).
			Background(lipgloss.Color(p.bar)).
			Padding(0, 1),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.err)).
			Padding(0, 1),
		Code: lipgloss.NewStyle().
			Background(lipgloss.Color(p.code)).
			Padding(0, 1),
		Bold:    lipgloss.NewStyle().Bold(true),
		Italic:  lipgloss.NewStyle().Italic(true),
		Heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.accent)),
		Link:    lipgloss.NewStyle().Underline(true),
		List:    lipgloss.NewStyle().MarginLeft(2),
	}
}
