package server

import (
	"testing"

	"github.com/AmitMY/chimera/pkg/ai/ollama"
	"github.com/AmitMY/chimera/pkg/ai/openai"
	"github.com/AmitMY/chimera/pkg/chimera"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTranslator(t *testing.T) {
	planner, err := chimera.NewClient(chimera.NewClientParams{BaseURL: "http://localhost:5001"})
	require.NoError(t, err)

	base := Config{AIChatModel: "model", AIChatKey: "key", AIChatURL: "http://localhost:11434", AITemperature: 0.2, AIParallel: 2}

	tests := []struct {
		name    string
		adapter string
		check   func(t *testing.T, got any)
		wantErr bool
	}{
		{name: "default uses planner", adapter: "", check: func(t *testing.T, got any) { assert.Same(t, planner, got) }},
		{name: "chimera", adapter: "chimera", check: func(t *testing.T, got any) { assert.Same(t, planner, got) }},
		{name: "openai", adapter: "openai", check: func(t *testing.T, got any) { assert.IsType(t, &openai.TranslatorClient{}, got) }},
		{name: "ollama", adapter: "ollama", check: func(t *testing.T, got any) { assert.IsType(t, &ollama.TranslatorClient{}, got) }},
		{name: "unknown", adapter: "gemini", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.TranslateAdapter = tt.adapter

			got, err := newTranslator(cfg, planner)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestNewTranslatorNeedsModel(t *testing.T) {
	planner, err := chimera.NewClient(chimera.NewClientParams{BaseURL: "http://localhost:5001"})
	require.NoError(t, err)

	_, err = newTranslator(Config{TranslateAdapter: "openai", AIChatKey: "key"}, planner)
	require.Error(t, err)
}
