package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AmitMY/chimera/pkg/ai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatBody struct {
	Model    string         `json:"model"`
	Stream   *bool          `json:"stream"`
	Options  map[string]any `json:"options"`
	Format   any            `json:"format"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

type fakeOllama struct {
	requests atomic.Int32
	active   atomic.Int32
	peak     atomic.Int32
	last     atomic.Value
	answer   func(plan string) string
	delay    func(plan string) time.Duration
}

func (f *fakeOllama) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	if r.URL.Path != "/api/chat" {
		http.NotFound(w, r)
		return
	}
	var body chatBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.last.Store(body)

	var plan string
	for _, m := range body.Messages {
		if m.Role == "user" {
			_, rest, _ := strings.Cut(m.Content, "Plan:\n")
			plan, _, _ = strings.Cut(rest, "\n\n")
		}
	}
	if f.delay != nil {
		time.Sleep(f.delay(plan))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"model":      body.Model,
		"created_at": time.Now().UTC().Format(time.RFC3339),
		"message":    map[string]any{"role": "assistant", "content": f.answer(plan)},
		"done":       true,
	})
}

func newTestTranslator(t *testing.T, srv *fakeOllama, parallel int64) *TranslatorClient {
	t.Helper()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	client, err := NewTranslatorClient(NewTranslatorClientParams{
		Model:   "llama3",
		Options: []ai.GenerateOption{ai.WithTemperature(0.3)},
		BaseURL: ts.URL,

		MaxConcurrentRequests: parallel,
	})
	require.NoError(t, err)
	return client
}

func TestTranslateKeepsPlanOrder(t *testing.T) {
	plans := []string{"p0", "p1", "p2", "p3", "p4"}
	srv := &fakeOllama{
		answer: func(plan string) string { return fmt.Sprintf(`{"text": "text for %s"}`, plan) },
		// later plans answer first
		delay: func(plan string) time.Duration {
			var i int
			fmt.Sscanf(plan, "p%d", &i)
			return time.Duration(len(plans)-i) * 10 * time.Millisecond
		},
	}
	client := newTestTranslator(t, srv, 2)

	texts, err := client.Translate(context.Background(), plans, ai.TranslateOptions{Beam: 5})

	require.NoError(t, err)
	assert.Equal(t, []string{"text for p0", "text for p1", "text for p2", "text for p3", "text for p4"}, texts)
	assert.EqualValues(t, len(plans), srv.requests.Load())
	assert.LessOrEqual(t, srv.peak.Load(), int32(2))

	body := srv.last.Load().(chatBody)
	assert.Equal(t, "llama3", body.Model)
	require.NotNil(t, body.Stream)
	assert.False(t, *body.Stream)
	assert.Equal(t, 0.3, body.Options["temperature"])
	assert.NotContains(t, body.Options, "num_ctx")
	assert.NotNil(t, body.Format)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, ai.RealizeSystemPrompt, body.Messages[0].Content)
}

func TestTranslateBestOnly(t *testing.T) {
	srv := &fakeOllama{
		answer: func(plan string) string { return fmt.Sprintf(`{"text": "text for %s"}`, plan) },
	}
	client := newTestTranslator(t, srv, 2)

	texts, err := client.Translate(context.Background(), []string{"best", "second"}, ai.TranslateOptions{BestOnly: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"text for best"}, texts)
	assert.EqualValues(t, 1, srv.requests.Load())
}

func TestTranslateRepairsAnswers(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   string
	}{
		{name: "unquoted keys and trailing comma", answer: `{text: 'repaired text',}`, want: "repaired text"},
		{name: "code fence", answer: "```json\n{\"text\": \"fenced text\"}\n```", want: "fenced text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := &fakeOllama{answer: func(string) string { return tt.answer }}
			client := newTestTranslator(t, srv, 1)

			texts, err := client.Translate(context.Background(), []string{"p"}, ai.TranslateOptions{})

			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, texts)
		})
	}
}

func TestTranslateEmptyAnswer(t *testing.T) {
	srv := &fakeOllama{answer: func(string) string { return "" }}
	client := newTestTranslator(t, srv, 1)

	_, err := client.Translate(context.Background(), []string{"p"}, ai.TranslateOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to realize plan 0")
}

func TestContextSize(t *testing.T) {
	got, err := contextSize("short prompt")
	require.NoError(t, err)
	assert.Equal(t, len("short prompt")+answerReserve, got)
	assert.LessOrEqual(t, got, defaultContext)
}
