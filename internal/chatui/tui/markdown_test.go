package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	theme := ThemeFor(true)

	tests := []struct {
		name        string
		in          string
		contains    []string
		notContains []string
	}{
		{
			name:        "heading markers removed",
			in:          "## Strategies",
			contains:    []string{"Strategies"},
			notContains: []string{"##"},
		},
		{
			name:        "bold and italic markers removed",
			in:          "this is **bold** and *soft* and _quiet_",
			contains:    []string{"bold", "soft", "quiet"},
			notContains: []string{"**", "*soft*", "_quiet_"},
		},
		{
			name:        "bullets",
			in:          "- one\n* two",
			contains:    []string{"• one", "• two"},
			notContains: []string{"- one", "* two"},
		},
		{
			name:     "ordered list",
			in:       "1. first\n2. second",
			contains: []string{"1. first", "2. second"},
		},
		{
			name:        "inline code keeps its contents",
			in:          "run `go **test**` now",
			contains:    []string{"go **test**"},
			notContains: []string{"`"},
		},
		{
			name:        "fenced code left as is",
			in:          "```\n**not bold**\n```",
			contains:    []string{"**not bold**"},
			notContains: []string{"```"},
		},
		{
			name:        "links keep their text",
			in:          "see [the docs](https://example.com)",
			contains:    []string{"the docs"},
			notContains: []string{"https://example.com"},
		},
		{
			name:     "snake case untouched",
			in:       "use snake_case_names",
			contains: []string{"snake_case_names"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderMarkdown(tt.in, theme)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}

func TestRenderMarkdownKeepsParagraphs(t *testing.T) {
	out := RenderMarkdown("first\n\nsecond", ThemeFor(false))
	assert.Equal(t, "first\n\nsecond", out)
}
