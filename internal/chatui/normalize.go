package chatui

import "strings"

// NormalizeNewlines turns every lone newline into a paragraph break. Runs of
// two or more newlines are left as they are.
func NormalizeNewlines(text string) string {
	if !strings.Contains(text, "\n") {
		return text
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")

	var b strings.Builder
	b.Grow(len(text) + strings.Count(text, "\n"))

	run := 0
	flush := func() {
		if run == 1 {
			b.WriteString("\n\n")
		} else {
			b.WriteString(strings.Repeat("\n", run))
		}
		run = 0
	}

	for _, r := range text {
		if r == '\n' {
			run++
			continue
		}
		if run > 0 {
			flush()
		}
		b.WriteRune(r)
	}
	if run > 0 {
		flush()
	}

	return b.String()
}
