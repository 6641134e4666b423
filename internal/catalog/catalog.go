package catalog

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/AmitMY/chimera/pkg/common"

	"golang.org/x/sync/singleflight"
)

var ErrGraphNotFound = errors.New("graph not found")

// FetchFunc returns the whole graph corpus.
type FetchFunc func(ctx context.Context) ([]common.Graph, error)

// Summary describes one graph of the corpus. Size is the number of triples.
type Summary struct {
	Index int `json:"index"`
	Size  int `json:"size"`
}

// Catalog holds the graph corpus. The corpus is fetched on first use; a
// failed fetch is not remembered, so the next call fetches again.
type Catalog struct {
	fetch        FetchFunc
	defaultIndex int
	intN         func(n int) int

	mu     sync.RWMutex
	graphs []common.Graph
	loaded bool
	group  singleflight.Group
}

// NewCatalog creates a catalog backed by fetch. defaultIndex is the graph
// shown before the user picks one.
func NewCatalog(fetch FetchFunc, defaultIndex int) *Catalog {
	return &Catalog{
		fetch:        fetch,
		defaultIndex: defaultIndex,
		intN:         rand.IntN,
	}
}

// Load returns the corpus, fetching it if it is not loaded yet.
func (c *Catalog) Load(ctx context.Context) ([]common.Graph, error) {
	c.mu.RLock()
	if c.loaded {
		graphs := c.graphs
		c.mu.RUnlock()
		return graphs, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.group.Do("graphs", func() (any, error) {
		graphs, err := c.fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load graphs: %w", err)
		}

		c.mu.Lock()
		c.graphs = graphs
		c.loaded = true
		c.mu.Unlock()

		return graphs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]common.Graph), nil
}

// Graph returns the graph at index.
func (c *Catalog) Graph(ctx context.Context, index int) (common.Graph, error) {
	graphs, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(graphs) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrGraphNotFound, index, len(graphs))
	}
	return graphs[index], nil
}

// Summaries lists every graph with its size, in corpus order.
func (c *Catalog) Summaries(ctx context.Context) ([]Summary, error) {
	graphs, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, len(graphs))
	for i, g := range graphs {
		out[i] = Summary{Index: i, Size: len(g)}
	}
	return out, nil
}

// Sizes returns the distinct graph sizes in first-seen order.
func (c *Catalog) Sizes(ctx context.Context) ([]int, error) {
	graphs, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]struct{})
	sizes := []int{}
	for _, g := range graphs {
		if _, ok := seen[len(g)]; ok {
			continue
		}
		seen[len(g)] = struct{}{}
		sizes = append(sizes, len(g))
	}
	return sizes, nil
}

// Random picks the index of a uniformly chosen graph with exactly size
// triples.
func (c *Catalog) Random(ctx context.Context, size int) (int, error) {
	graphs, err := c.Load(ctx)
	if err != nil {
		return 0, err
	}
	var candidates []int
	for i, g := range graphs {
		if len(g) == size {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return 0, fmt.Errorf("%w: no graph of size %d", ErrGraphNotFound, size)
	}
	return candidates[c.intN(len(candidates))], nil
}

// DefaultIndex returns the configured default graph, clamped to the corpus.
func (c *Catalog) DefaultIndex(ctx context.Context) (int, error) {
	graphs, err := c.Load(ctx)
	if err != nil {
		return 0, err
	}
	if len(graphs) == 0 {
		return 0, ErrGraphNotFound
	}
	return max(0, min(c.defaultIndex, len(graphs)-1)), nil
}
