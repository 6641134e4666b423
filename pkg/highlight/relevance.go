package highlight

import (
	"strings"

	"golang.org/x/net/html"
)

// Relevance reads the relevance vector back out of markup produced by
// Render: one entry per line div, false when the line holds a strike span.
func Relevance(markup string) []bool {
	z := html.NewTokenizer(strings.NewReader(markup))
	var relevance []bool
	for {
		switch z.Next() {
		case html.ErrorToken:
			return relevance
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			if !hasAttr {
				continue
			}
			class := classAttr(z)
			switch {
			case string(name) == "div" && class == lineClass:
				relevance = append(relevance, true)
			case string(name) == "span" && class == strikeClass && len(relevance) > 0:
				relevance[len(relevance)-1] = false
			}
		}
	}
}

func classAttr(z *html.Tokenizer) string {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "class" {
			return string(val)
		}
		if !more {
			return ""
		}
	}
}
