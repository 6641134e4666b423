package highlight

import (
	"github.com/AmitMY/chimera/pkg/common"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Palette is the fixed set of display colors handed out to entities.
var Palette = []string{
	"lightcoral",
	"lightgreen",
	"lightblue",
	"wheat",
	"plum",
	"pink",
	"silver",
	"lightsalmon",
}

// ColorMap assigns a display color to each entity of a graph. Iteration
// order is the order in which entities were discovered.
//
// A ColorMap is immutable once built; selecting another graph builds a new one.
type ColorMap struct {
	colors *orderedmap.OrderedMap[string, string]
}

// AssignColors builds a ColorMap for the given distinct entities, giving the
// i-th entity Palette[i mod len(Palette)]. Duplicate ids keep their first color.
func AssignColors(entities []string) *ColorMap {
	colors := orderedmap.New[string, string]()
	for _, e := range entities {
		if _, ok := colors.Get(e); ok {
			continue
		}
		colors.Set(e, Palette[colors.Len()%len(Palette)])
	}
	return &ColorMap{colors: colors}
}

// ColorsForGraph builds the ColorMap of g, discovering entities triple by
// triple, subject before object.
func ColorsForGraph(g common.Graph) *ColorMap {
	return AssignColors(g.Entities())
}

// Color returns the color of entity.
func (m *ColorMap) Color(entity string) (string, bool) {
	if m == nil {
		return "", false
	}
	return m.colors.Get(entity)
}

// Entities returns the entity ids in discovery order.
func (m *ColorMap) Entities() []string {
	if m == nil {
		return nil
	}
	entities := make([]string, 0, m.colors.Len())
	for pair := m.colors.Oldest(); pair != nil; pair = pair.Next() {
		entities = append(entities, pair.Key)
	}
	return entities
}

// Len returns the number of colored entities.
func (m *ColorMap) Len() int {
	if m == nil {
		return 0
	}
	return m.colors.Len()
}

// Each calls fn for every entity and its color in discovery order.
func (m *ColorMap) Each(fn func(entity, color string)) {
	if m == nil {
		return
	}
	for pair := m.colors.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}
