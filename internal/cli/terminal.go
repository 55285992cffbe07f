package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/bastiangx/wordlens/pkg/dictionary"
	"github.com/bastiangx/wordlens/pkg/domain"
	"github.com/charmbracelet/lipgloss"
)

var (
	wordStyle = lipgloss.NewStyle().Underline(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})
	phraseStyle = lipgloss.NewStyle().Bold(true).Underline(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#907aa9", Dark: "#c4a7e7"})
	patternStyle = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// Renderer prints annotated text for humans.
type Renderer struct {
	w           io.Writer
	color       bool
	showRelated bool
}

// NewRenderer creates a renderer writing to w.
func NewRenderer(w io.Writer, color, showRelated bool) *Renderer {
	return &Renderer{w: w, color: color, showRelated: showRelated}
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

// Highlight returns text with every annotated span styled by kind. Without
// color, spans are wrapped in brackets.
func (r *Renderer) Highlight(text string, anns []domain.Annotation) string {
	runes := []rune(text)
	var b strings.Builder
	pos := 0
	for _, a := range anns {
		if a.Start < pos || a.End > len(runes) {
			continue
		}
		b.WriteString(string(runes[pos:a.Start]))
		span := string(runes[a.Start:a.End])
		switch {
		case !r.color:
			b.WriteString("[" + span + "]")
		case a.Kind == domain.Phrase:
			b.WriteString(phraseStyle.Render(span))
		default:
			b.WriteString(wordStyle.Render(span))
		}
		pos = a.End
	}
	b.WriteString(string(runes[pos:]))
	return b.String()
}

// Details lists each annotation with its meanings and, when enabled, the
// matches it suppressed.
func (r *Renderer) Details(anns []domain.Annotation) string {
	var b strings.Builder
	for i, a := range anns {
		fmt.Fprintf(&b, "%2d. %s %s [%d:%d]\n", i+1,
			r.style(patternStyle, a.MatchedText), r.style(dimStyle, a.Kind.String()), a.Start, a.End)
		for _, m := range a.Meanings {
			b.WriteString("      " + formatMeaning(m) + "\n")
		}
		if !r.showRelated {
			continue
		}
		for _, rel := range a.Related {
			line := fmt.Sprintf("      ~ %s (%s) [%d:%d]", rel.MatchedText, rel.Kind, rel.Start, rel.End)
			b.WriteString(r.style(dimStyle, line) + "\n")
		}
	}
	return b.String()
}

func formatMeaning(m domain.Meaning) string {
	s := fmt.Sprintf("%s (%s, %s)", m.Translation, m.PartOfSpeech, m.BaseForm)
	if m.BaseTranslation != "" {
		s += " = " + m.BaseTranslation
	}
	if m.ProficiencyLevel != "" {
		s += " " + m.ProficiencyLevel
	}
	return s
}

// Print writes the highlighted text followed by details.
func (r *Renderer) Print(text string, anns []domain.Annotation) {
	fmt.Fprintln(r.w, r.Highlight(text, anns))
	if len(anns) == 0 {
		fmt.Fprintln(r.w, r.style(dimStyle, "no matches"))
		return
	}
	fmt.Fprint(r.w, r.Details(anns))
}

// Stats renders manager statistics as aligned key/value lines.
func (r *Renderer) Stats(s dictionary.Stats) string {
	rows := [][2]string{
		{"dictionaries", formatWithCommas(s.LoadedDictionaries)},
		{"patterns", formatWithCommas(s.Patterns)},
		{"words", formatWithCommas(s.Words)},
		{"phrases", formatWithCommas(s.Phrases)},
		{"meanings", formatWithCommas(s.TotalEntries)},
		{"skipped", formatWithCommas(s.SkippedEntries)},
		{"nodes", formatWithCommas(s.Nodes)},
		{"build time", s.BuildTime.String()},
	}
	var b strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&b, "%-14s %s\n", r.style(dimStyle, row[0]), row[1])
	}
	return b.String()
}

// formatWithCommas formats an integer with comma separators
func formatWithCommas(n int) string {
	if n < 0 {
		return "-" + formatWithCommas(-n)
	}
	str := fmt.Sprintf("%d", n)
	if n < 1000 {
		return str
	}
	result := ""
	for i, char := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(char)
	}
	return result
}
