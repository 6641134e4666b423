package chimera

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AmitMY/chimera/pkg/ai"
	"github.com/AmitMY/chimera/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(NewClientParams{BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return c
}

func TestGraphs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/graphs", r.URL.Path)
		io.WriteString(w, `[[["Eiffel_Tower","location","Paris"]],[["A","r","B"],["B","s","C"]]]`)
	})

	graphs, err := c.Graphs(context.Background())

	require.NoError(t, err)
	require.Len(t, graphs, 2)
	assert.Equal(t, common.Triple{Subject: "Eiffel_Tower", Relation: "location", Object: "Paris"}, graphs[0][0])
	assert.Len(t, graphs[1], 2)
}

func TestPlans(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/plans/full", r.URL.Path)
		var g common.Graph
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&g))
		assert.Len(t, g, 1)
		io.WriteString(w, `{"concat":{"A":"ENT_A_ENT","B":"ENT_B_ENT"},"linearizations":[{"l":"[ ENT_A_ENT r ENT_B_ENT ]","s":0.9},{"l":"[ ENT_B_ENT r~ ENT_A_ENT ]"}]}`)
	})

	concat, plans, err := c.Plans(context.Background(), common.Graph{{Subject: "A", Relation: "r", Object: "B"}}, common.PlanModeFull)

	require.NoError(t, err)
	assert.Equal(t, common.ConcatMap{"A": "ENT_A_ENT", "B": "ENT_B_ENT"}, concat)
	require.Len(t, plans, 2)
	assert.Equal(t, 0.9, plans[0].Score)
	assert.Equal(t, 0.0, plans[1].Score)
	assert.Zero(t, plans[0].Rank)
}

func TestPlansRejectsUnknownMode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, _, err := c.Plans(context.Background(), nil, common.PlanMode("some"))
	require.Error(t, err)
}

func TestTranslateBody(t *testing.T) {
	tests := []struct {
		name string
		opts ai.TranslateOptions
		want string
	}{
		{name: "bare array", opts: ai.TranslateOptions{}, want: `["p1","p2"]`},
		{name: "with options", opts: ai.TranslateOptions{Beam: 5, BestOnly: true}, want: `{"plans":["p1","p2"],"beam":5,"best_only":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/translate", r.URL.Path)
				body, _ := io.ReadAll(r.Body)
				assert.JSONEq(t, tt.want, string(body))
				io.WriteString(w, `["one","two"]`)
			})

			texts, err := c.Translate(context.Background(), []string{"p1", "p2"}, tt.opts)

			require.NoError(t, err)
			assert.Equal(t, []string{"one", "two"}, texts)
		})
	}
}

func TestStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.Translate(context.Background(), []string{"p"}, ai.TranslateOptions{})

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Equal(t, "boom", statusErr.Body)
}

func TestDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `not json`)
	})

	_, err := c.Graphs(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestBaseURLTrimsSlash(t *testing.T) {
	c, err := NewClient(NewClientParams{BaseURL: "http://localhost:5001/"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5001", c.BaseURL())
}

func TestNewClientNeedsURL(t *testing.T) {
	_, err := NewClient(NewClientParams{})
	require.Error(t, err)
}
