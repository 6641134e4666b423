package server

import (
	"fmt"

	"github.com/AmitMY/chimera/pkg/ai"
	oai "github.com/AmitMY/chimera/pkg/ai/ollama"
	gai "github.com/AmitMY/chimera/pkg/ai/openai"
	"github.com/AmitMY/chimera/pkg/chimera"
)

// newTranslator picks the realizer. The planner service translates by
// default; the LLM adapters replace only the translate step.
func newTranslator(cfg Config, planner *chimera.Client) (ai.Translator, error) {
	options := []ai.GenerateOption{ai.WithTemperature(cfg.AITemperature)}

	switch cfg.TranslateAdapter {
	case "", "chimera":
		return planner, nil
	case "openai":
		client, err := gai.NewTranslatorClient(gai.NewTranslatorClientParams{
			Model:   cfg.AIChatModel,
			Options: options,
			ChatURL: cfg.AIChatURL,
			ChatKey: cfg.AIChatKey,

			MaxConcurrentRequests: cfg.AIParallel,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case "ollama":
		client, err := oai.NewTranslatorClient(oai.NewTranslatorClientParams{
			Model:   cfg.AIChatModel,
			Options: options,
			BaseURL: cfg.AIChatURL,
			ApiKey:  cfg.AIChatKey,

			MaxConcurrentRequests: int64(cfg.AIParallel),
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown translate adapter %q", cfg.TranslateAdapter)
	}
}
