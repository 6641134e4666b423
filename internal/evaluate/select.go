package evaluate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AmitMY/chimera/internal/catalog"
)

// Selection picks graphs for a batch run. Explicit indices win; otherwise
// every graph of Size triples (any size when 0) is taken, up to Limit (all
// when 0).
type Selection struct {
	Indices []int
	Size    int
	Limit   int
}

// ParseIndices reads a comma separated list such as "0,5,12".
func ParseIndices(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid graph index %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}

// Select applies sel to the catalog summaries.
func Select(summaries []catalog.Summary, sel Selection) []int {
	if len(sel.Indices) > 0 {
		return sel.Indices
	}
	var out []int
	for _, s := range summaries {
		if sel.Size > 0 && s.Size != sel.Size {
			continue
		}
		out = append(out, s.Index)
		if sel.Limit > 0 && len(out) == sel.Limit {
			break
		}
	}
	return out
}
