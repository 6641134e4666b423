package openai

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

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// planOf extracts the plan from the user prompt built by ai.RealizePrompt.
func planOf(req chatRequest) string {
	for _, m := range req.Messages {
		if m.Role != "user" {
			continue
		}
		_, rest, _ := strings.Cut(m.Content, "Plan:\n")
		plan, _, _ := strings.Cut(rest, "\n\n")
		return plan
	}
	return ""
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 0,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2},
	})
}

type fakeChat struct {
	requests atomic.Int32
	active   atomic.Int32
	peak     atomic.Int32
	last     atomic.Value
	// answer returns the message content for a plan.
	answer func(plan string) string
	// delay returns how long the answer for a plan is held back.
	delay func(plan string) time.Duration
}

func (f *fakeChat) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
		http.NotFound(w, r)
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.last.Store(req)

	plan := planOf(req)
	if f.delay != nil {
		time.Sleep(f.delay(plan))
	}
	writeCompletion(w, f.answer(plan))
}

func newTestTranslator(t *testing.T, chat *fakeChat, parallel int) *TranslatorClient {
	t.Helper()
	srv := httptest.NewServer(chat)
	t.Cleanup(srv.Close)

	client, err := NewTranslatorClient(NewTranslatorClientParams{
		Model:   "test-model",
		Options: []ai.GenerateOption{ai.WithTemperature(0.3)},
		ChatURL: srv.URL,
		ChatKey: "test-key",

		MaxConcurrentRequests: parallel,
	})
	require.NoError(t, err)
	return client
}

func TestTranslateKeepsPlanOrder(t *testing.T) {
	plans := []string{"p0", "p1", "p2", "p3", "p4", "p5"}
	chat := &fakeChat{
		answer: func(plan string) string { return fmt.Sprintf(`{"text": "text for %s"}`, plan) },
		// later plans answer first
		delay: func(plan string) time.Duration {
			var i int
			fmt.Sscanf(plan, "p%d", &i)
			return time.Duration(len(plans)-i) * 10 * time.Millisecond
		},
	}
	client := newTestTranslator(t, chat, 3)

	texts, err := client.Translate(context.Background(), plans, ai.TranslateOptions{})

	require.NoError(t, err)
	assert.Equal(t, []string{"text for p0", "text for p1", "text for p2", "text for p3", "text for p4", "text for p5"}, texts)
	assert.EqualValues(t, len(plans), chat.requests.Load())
	assert.LessOrEqual(t, chat.peak.Load(), int32(3))

	req := chat.last.Load().(chatRequest)
	assert.Equal(t, "test-model", req.Model)
	assert.Equal(t, 0.3, req.Temperature)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, ai.RealizeSystemPrompt, req.Messages[0].Content)
}

func TestTranslateBestOnly(t *testing.T) {
	chat := &fakeChat{
		answer: func(plan string) string { return fmt.Sprintf(`{"text": "text for %s"}`, plan) },
	}
	client := newTestTranslator(t, chat, 4)

	texts, err := client.Translate(context.Background(), []string{"best", "second", "third"}, ai.TranslateOptions{BestOnly: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"text for best"}, texts)
	assert.EqualValues(t, 1, chat.requests.Load())
}

func TestTranslateRepairsAnswers(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   string
	}{
		{name: "unquoted keys and trailing comma", answer: `{text: 'repaired text',}`, want: "repaired text"},
		{name: "code fence", answer: "```json\n{\"text\": \"fenced text\"}\n```", want: "fenced text"},
		{name: "double encoded", answer: `"{\"text\": \"encoded text\"}"`, want: "encoded text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &fakeChat{answer: func(string) string { return tt.answer }}
			client := newTestTranslator(t, chat, 1)

			texts, err := client.Translate(context.Background(), []string{"p"}, ai.TranslateOptions{})

			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, texts)
		})
	}
}

func TestTranslateEmptyAnswer(t *testing.T) {
	chat := &fakeChat{answer: func(string) string { return "" }}
	client := newTestTranslator(t, chat, 1)

	_, err := client.Translate(context.Background(), []string{"p"}, ai.TranslateOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to realize plan 0")
}

func TestNewTranslatorClientValidates(t *testing.T) {
	_, err := NewTranslatorClient(NewTranslatorClientParams{Model: "m"})
	require.Error(t, err)

	_, err = NewTranslatorClient(NewTranslatorClientParams{ChatKey: "k"})
	require.Error(t, err)
}
