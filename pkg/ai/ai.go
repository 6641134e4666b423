package ai

import "context"

// TranslateOptions tunes a translation request.
//
// Beam is the beam width the realizer should search with; 0 leaves the
// realizer's default. BestOnly asks for a single translation of the best
// (first) plan instead of one per plan.
type TranslateOptions struct {
	Beam     int  `json:"beam,omitempty"`
	BestOnly bool `json:"best_only,omitempty"`
}

// IsZero reports whether no option is set.
func (o TranslateOptions) IsZero() bool {
	return o.Beam == 0 && !o.BestOnly
}

// Translator realizes linearized plans as natural-language text. The result
// holds one translation per requested plan, in plan order.
type Translator interface {
	Translate(ctx context.Context, plans []string, opts TranslateOptions) ([]string, error)
}

// GenerateOptions holds configuration for AI generation requests.
type GenerateOptions struct {
	Model         string   // Model identifier to use for generation
	SystemPrompts []string // System prompts prepended to the request
	Temperature   float64  // Sampling temperature (0.0-2.0)
}

// GenerateOption is a functional option for configuring AI generation requests.
type GenerateOption func(*GenerateOptions)

// WithSystemPrompts returns a GenerateOption that sets the system prompts
// to prepend to the generation request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature returns a GenerateOption that sets the sampling temperature.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// PlansToTranslate applies BestOnly: it returns only the first plan when set.
func PlansToTranslate(plans []string, opts TranslateOptions) []string {
	if opts.BestOnly && len(plans) > 1 {
		return plans[:1]
	}
	return plans
}
