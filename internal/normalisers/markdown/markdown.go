// Package markdown reduces markdown notes to plain text before chunking so
// markup does not dilute embeddings or keyword matches.
package markdown

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	codeFence    = regexp.MustCompile("(?m)^[ \t]*```[^\n]*$")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings     = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	stars        = regexp.MustCompile(`(\*\*|\*)(\S(?:.*?\S)?)(\*\*|\*)`)
	underscores  = regexp.MustCompile(`(?m)(^|\W)(__|_)(\S(?:.*?\S)?)(__|_)(\W|$)`)
	blockquote   = regexp.MustCompile(`(?m)^>[ \t]?`)
	rule         = regexp.MustCompile(`(?m)^[ \t]*[-*_]([ \t]*[-*_]){2,}[ \t]*$`)
	bullet       = regexp.MustCompile(`(?m)^([ \t]*)[-*+][ \t]+`)
	numbered     = regexp.MustCompile(`(?m)^([ \t]*)\d+[.)][ \t]+`)
	blankRunsRe  = regexp.MustCompile(`\n{3,}`)
	trailingSpRe = regexp.MustCompile(`(?m)[ \t]+$`)
)

// IsMarkdown reports whether path has a markdown extension.
func IsMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdown":
		return true
	default:
		return false
	}
}

// Strip removes markdown syntax, keeping the readable text. Code block
// contents are kept; only their fences go. Image alt text and link text
// survive, their targets do not.
func Strip(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = codeFence.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "$1")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = rule.ReplaceAllString(content, "")
	content = bullet.ReplaceAllString(content, "$1")
	content = numbered.ReplaceAllString(content, "$1")
	content = blockquote.ReplaceAllString(content, "")
	content = stars.ReplaceAllString(content, "$2")
	content = underscores.ReplaceAllString(content, "$1$3$5")
	content = trailingSpRe.ReplaceAllString(content, "")
	content = blankRunsRe.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

// Title returns the text of the first level-one heading, or "" if there is none.
func Title(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return ""
}
