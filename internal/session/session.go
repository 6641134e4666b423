package session

import (
	"errors"
	"sync"
	"time"

	"github.com/AmitMY/chimera/pkg/common"
	"github.com/AmitMY/chimera/pkg/highlight"
)

var (
	ErrStale    = errors.New("response superseded by a newer request")
	ErrNoGraph  = errors.New("no graph selected")
	ErrNoPlans  = errors.New("no plans to translate")
	ErrNotFound = errors.New("session not found")
)

// Token identifies one plan or translate request. A completion is accepted
// only while its token is still the latest one handed out.
type Token uint64

// Session is the view-model of one viewer tab: the selected graph with its
// ColorMap, and the ConcatMap, plans and translations produced for it.
//
// Each completion replaces the state it owns as a whole; readers get a View
// snapshot and never see a partial update.
type Session struct {
	ID string

	mu           sync.Mutex
	graphIndex   int
	graph        common.Graph
	colors       *highlight.ColorMap
	concat       common.ConcatMap
	plans        common.LinearizationSet
	translations []string
	planGen      uint64
	translateGen uint64
	lastUsed     time.Time
}

// View is an immutable snapshot of a session.
type View struct {
	GraphIndex   int
	Graph        common.Graph
	Colors       *highlight.ColorMap
	Concat       common.ConcatMap
	Plans        common.LinearizationSet
	Translations []string
}

// HasGraph reports whether a graph was selected.
func (v View) HasGraph() bool {
	return v.Graph != nil
}

func newSession(id string, now time.Time) *Session {
	return &Session{ID: id, graphIndex: -1, lastUsed: now}
}

func (s *Session) viewLocked() View {
	return View{
		GraphIndex:   s.graphIndex,
		Graph:        s.graph,
		Colors:       s.colors,
		Concat:       s.concat,
		Plans:        s.plans,
		Translations: s.translations,
	}
}

// View returns the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// SelectGraph makes g the active graph. It builds a fresh ColorMap, drops
// plans and translations of the previous graph and invalidates every request
// still in flight.
func (s *Session) SelectGraph(index int, g common.Graph) View {
	if g == nil {
		g = common.Graph{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.graphIndex = index
	s.graph = g
	s.colors = highlight.ColorsForGraph(g)
	s.concat = nil
	s.plans = nil
	s.translations = nil
	s.planGen++
	s.translateGen++
	return s.viewLocked()
}

// BeginPlans starts a plan request for the active graph.
func (s *Session) BeginPlans() (Token, View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.graph == nil {
		return 0, View{}, ErrNoGraph
	}
	s.planGen++
	return Token(s.planGen), s.viewLocked(), nil
}

// CommitPlans stores the result of the plan request identified by t. New
// plans make any pending translation stale.
func (s *Session) CommitPlans(t Token, concat common.ConcatMap, plans common.LinearizationSet) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if uint64(t) != s.planGen {
		return View{}, ErrStale
	}
	s.concat = concat
	s.plans = plans
	s.translations = nil
	s.translateGen++
	return s.viewLocked(), nil
}

// BeginTranslate starts a translate request for the current plans.
func (s *Session) BeginTranslate() (Token, View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.graph == nil {
		return 0, View{}, ErrNoGraph
	}
	if len(s.plans) == 0 {
		return 0, View{}, ErrNoPlans
	}
	s.translateGen++
	return Token(s.translateGen), s.viewLocked(), nil
}

// CommitTranslate stores the translations of the request identified by t.
func (s *Session) CommitTranslate(t Token, texts []string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if uint64(t) != s.translateGen {
		return View{}, ErrStale
	}
	s.translations = texts
	return s.viewLocked(), nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}
