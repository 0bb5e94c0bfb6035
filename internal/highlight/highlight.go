// Package highlight finds the Markdown subset the editor styles: headings,
// *bold*, _italic_ and links. It returns byte ranges and never changes the
// text.
package highlight

import (
	"regexp"
	"sort"
)

// Style is the presentation applied to a range.
type Style int

const (
	Heading Style = iota + 1
	Bold
	Italic
	Link
)

func (s Style) String() string {
	switch s {
	case Heading:
		return "heading"
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case Link:
		return "link"
	default:
		return "plain"
	}
}

// Range is a styled byte span [Start, End) of the input. URL is set for
// links.
type Range struct {
	Start int
	End   int
	Style Style
	URL   string
}

var (
	headingRe  = regexp.MustCompile(`(?m)^#{1,6}[ \t]+[^\n]+$`)
	boldRe     = regexp.MustCompile(`\*[^*\n]+\*`)
	italicRe   = regexp.MustCompile(`_[^_\n]+_`)
	mdLinkRe   = regexp.MustCompile(`\[([^\]\n]+)\]\(([^)\s]+)\)`)
	bareLinkRe = regexp.MustCompile(`https?://[^\s<>()\[\]]+`)
)

// Highlight returns the styled ranges of text ordered by start offset.
// Ranges of different styles may overlap (bold inside a heading); links
// never overlap each other.
func Highlight(text string) []Range {
	var out []Range
	add := func(re *regexp.Regexp, style Style) {
		for _, m := range re.FindAllStringIndex(text, -1) {
			out = append(out, Range{Start: m[0], End: m[1], Style: style})
		}
	}
	add(headingRe, Heading)
	add(boldRe, Bold)
	add(italicRe, Italic)

	var links []Range
	for _, m := range mdLinkRe.FindAllStringSubmatchIndex(text, -1) {
		links = append(links, Range{Start: m[0], End: m[1], Style: Link, URL: text[m[4]:m[5]]})
	}
	for _, m := range bareLinkRe.FindAllStringIndex(text, -1) {
		if inside(links, m[0]) {
			continue
		}
		links = append(links, Range{Start: m[0], End: m[1], Style: Link, URL: text[m[0]:m[1]]})
	}
	out = append(out, links...)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].Style < out[j].Style
	})
	return out
}

// LinkAt returns the URL of the link covering byte offset pos.
func LinkAt(text string, pos int) (string, bool) {
	for _, r := range Highlight(text) {
		if r.Style == Link && pos >= r.Start && pos < r.End {
			return r.URL, true
		}
	}
	return "", false
}

func inside(ranges []Range, pos int) bool {
	for _, r := range ranges {
		if pos >= r.Start && pos < r.End {
			return true
		}
	}
	return false
}
