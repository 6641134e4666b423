package highlight

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AmitMY/chimera/pkg/common"
)

// ErrMissingSurfaceForm is returned when an entity that must be checked or
// highlighted has no entry in the ConcatMap.
var ErrMissingSurfaceForm = errors.New("missing surface form")

func surfaceForm(concat common.ConcatMap, entity string) (string, error) {
	form, ok := concat[entity]
	if !ok {
		return "", fmt.Errorf("%w for entity %q", ErrMissingSurfaceForm, entity)
	}
	return form, nil
}

// Covers reports whether line mentions the surface form of every entity.
//
// Matching is a case-insensitive substring test with no word boundaries, so
// a surface form embedded in a longer token still counts. An empty entity
// list covers any line.
func Covers(line string, entities []string, concat common.ConcatMap) (bool, error) {
	lower := strings.ToLower(line)
	covered := true
	for _, e := range entities {
		form, err := surfaceForm(concat, e)
		if err != nil {
			return false, err
		}
		if !strings.Contains(lower, strings.ToLower(form)) {
			covered = false
		}
	}
	return covered, nil
}

// Coverage runs Covers on every line and returns the relevance vector.
func Coverage(lines []string, entities []string, concat common.ConcatMap) ([]bool, error) {
	relevance := make([]bool, len(lines))
	for i, line := range lines {
		ok, err := Covers(line, entities, concat)
		if err != nil {
			return nil, err
		}
		relevance[i] = ok
	}
	return relevance, nil
}
