package highlight

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/AmitMY/chimera/pkg/common"

	"golang.org/x/net/html"
)

// Style selects how entity spans are colored.
type Style string

const (
	// StyleBackground fills entity spans and renders plan block and
	// separator markers. Used for plan listings.
	StyleBackground Style = "background"
	// StyleBorder outlines entity spans. Used for translations.
	StyleBorder Style = "border"
)

const (
	lineClass   = "line"
	strikeClass = "strike"

	lineOpen    = "<div class='" + lineClass + "'>"
	lineClose   = "</div>"
	strikeOpen  = "<span class='" + strikeClass + "'>"
	strikeClose = "</span>"

	blockOpen  = "<span class='block'>"
	blockClose = "</span>"
	separator  = "<span class='separator'>.</span>"
)

var planMarkers = strings.NewReplacer(
	"[", blockOpen,
	"]", blockClose,
	".", separator,
)

func (s Style) property() (string, error) {
	switch s {
	case StyleBackground:
		return "background-color", nil
	case StyleBorder:
		return "border-color", nil
	default:
		return "", fmt.Errorf("unknown highlight style %q", s)
	}
}

// Render turns candidate lines into display markup.
//
// Lines are lower-cased and HTML escaped. A line that does not mention every
// entity of colors is struck through, then every line is wrapped in a line
// div. Afterwards each entity's surface form is replaced, case-insensitively
// and everywhere in the accumulated markup, by a span colored with the
// entity's color. With StyleBackground the plan markers "[", "]" and "." are
// turned into block and separator spans. Underscores become spaces last.
//
// The marker pass runs over the whole markup, entity spans included, so an
// entity such as St._Louis renders as St<span class='separator'>.</span> Louis
// in the background style. Viewers rely on this exact output.
//
// Render is pure: the same inputs always give the same markup.
func Render(lines []string, colors *ColorMap, concat common.ConcatMap, style Style) (string, error) {
	property, err := style.property()
	if err != nil {
		return "", err
	}

	entities := colors.Entities()

	var b strings.Builder
	for _, line := range lines {
		covered, err := Covers(line, entities, concat)
		if err != nil {
			return "", err
		}

		text := html.EscapeString(strings.ToLower(line))
		if !covered {
			text = strikeOpen + text + strikeClose
		}
		b.WriteString(lineOpen)
		b.WriteString(text)
		b.WriteString(lineClose)
	}
	markup := b.String()

	for _, e := range entities {
		form, err := surfaceForm(concat, e)
		if err != nil {
			return "", err
		}
		if form == "" {
			continue
		}
		color, _ := colors.Color(e)
		pattern := regexp.MustCompile("(?i)" + regexp.QuoteMeta(html.EscapeString(form)))
		span := "<span class='entity' style='" + property + ": " + color + "'>" + html.EscapeString(e) + "</span>"
		markup = pattern.ReplaceAllLiteralString(markup, span)
	}

	if style == StyleBackground {
		markup = planMarkers.Replace(markup)
	}

	return strings.ReplaceAll(markup, "_", " "), nil
}
