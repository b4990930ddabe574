package tui

import (
	"regexp"
	"strings"
)

var (
	orderedListRegex = regexp.MustCompile(`^(\d+)\.\s+(.*)`)
	inlineCodeRegex  = regexp.MustCompile("``[^`]*``|`[^`]*`")
	linkRegex        = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	boldRegex        = regexp.MustCompile(`\*\*([^*]+)\*\*|__([^_]+)__`)
	italicRegex      = regexp.MustCompile(`(^|[^*\w])\*([^*\s][^*]*)\*|(^|[^_\w])_([^_\s][^_]*)_`)
)

// RenderMarkdown renders the subset of markdown assistant replies use:
// headings, lists, fenced code, inline code, links, bold and italic.
func RenderMarkdown(text string, theme Theme) string {
	lines := strings.Split(text, "\n")
	var result strings.Builder

	inCodeBlock := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			inCodeBlock = !inCodeBlock
			continue
		}

		if inCodeBlock {
			result.WriteString(theme.Code.Render(line) + "\n")
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "### "):
			result.WriteString(theme.Heading.Render(renderInline(strings.TrimPrefix(trimmed, "### "), theme)) + "\n")
		case strings.HasPrefix(trimmed, "## "):
			result.WriteString(theme.Heading.Render(renderInline(strings.TrimPrefix(trimmed, "## "), theme)) + "\n")
		case strings.HasPrefix(trimmed, "# "):
			result.WriteString(theme.Heading.Render(renderInline(strings.TrimPrefix(trimmed, "# "), theme)) + "\n")
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			result.WriteString(theme.List.Render("• "+renderInline(trimmed[2:], theme)) + "\n")
		default:
			if matches := orderedListRegex.FindStringSubmatch(trimmed); len(matches) == 3 {
				result.WriteString(theme.List.Render(matches[1]+". "+renderInline(matches[2], theme)) + "\n")
				continue
			}
			result.WriteString(renderInline(line, theme) + "\n")
		}
	}

	return strings.TrimSuffix(result.String(), "\n")
}

// renderInline styles inline code first so its contents are left alone.
func renderInline(line string, theme Theme) string {
	segments := inlineCodeRegex.FindAllStringIndex(line, -1)
	if len(segments) == 0 {
		return renderEmphasis(line, theme)
	}

	var b strings.Builder
	last := 0
	for _, seg := range segments {
		b.WriteString(renderEmphasis(line[last:seg[0]], theme))
		b.WriteString(theme.Code.Render(strings.Trim(line[seg[0]:seg[1]], "`")))
		last = seg[1]
	}
	b.WriteString(renderEmphasis(line[last:], theme))
	return b.String()
}

func renderEmphasis(text string, theme Theme) string {
	text = linkRegex.ReplaceAllStringFunc(text, func(match string) string {
		parts := linkRegex.FindStringSubmatch(match)
		return theme.Link.Render(parts[1])
	})

	text = boldRegex.ReplaceAllStringFunc(text, func(match string) string {
		parts := boldRegex.FindStringSubmatch(match)
		content := parts[1]
		if content == "" {
			content = parts[2]
		}
		return theme.Bold.Render(content)
	})

	return italicRegex.ReplaceAllStringFunc(text, func(match string) string {
		parts := italicRegex.FindStringSubmatch(match)
		if parts[2] != "" {
			return parts[1] + theme.Italic.Render(parts[2])
		}
		return parts[3] + theme.Italic.Render(parts[4])
	})
}
