package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/kensho/internal/core/domain"
	"github.com/custodia-labs/kensho/internal/logger"
)

var (
	numericLine = regexp.MustCompile(`^\d+$`)
	headerLine  = regexp.MustCompile(`(?i)^(page|chapter|\d+/\d+)`)
	blankRuns   = regexp.MustCompile(`\n{3,}`)
)

// Normalise builds the marker-annotated full text for raw content.
//
// Pages are cleaned line by line and prefixed with [source: page P].
// Transcript segments are prefixed with [timestamp: MM:SS].
// Flat text has any existing markers removed so callers cannot forge citations.
func (p *Processor) Normalise(raw domain.RawContent) string {
	switch {
	case len(raw.Pages) > 0:
		return p.normalisePages(raw.Pages)
	case len(raw.Segments) > 0:
		return normaliseSegments(raw.Segments)
	default:
		return normaliseText(raw.Text)
	}
}

func (p *Processor) normalisePages(pages []domain.Page) string {
	units := make([]string, 0, len(pages))
	for _, page := range pages {
		cleaned := p.cleanLines(page.Text)
		if cleaned == "" {
			logger.Debug("chunker: page %d has no usable text", page.Number)
			continue
		}
		units = append(units, domain.PageSource(page.Number).Marker()+" "+cleaned)
	}
	return strings.Join(units, "\n\n")
}

// cleanLines drops blank, short, numeric and header/footer lines.
func (p *Processor) cleanLines(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case utf8.RuneCountInString(line) < p.minLineLength:
		case numericLine.MatchString(line):
		case headerLine.MatchString(line):
		default:
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func normaliseSegments(segments []domain.TranscriptSegment) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		text := strings.Join(strings.Fields(stripMarkers(seg.Text)), " ")
		if text == "" {
			continue
		}
		marker := domain.TimestampSource(domain.FormatTimestamp(seg.Start)).Marker()
		lines = append(lines, marker+" "+text)
	}
	return strings.Join(lines, "\n")
}

func normaliseText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = stripMarkers(text)
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func stripMarkers(text string) string {
	return markerPattern.ReplaceAllString(text, "")
}
