package openai

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/AmitMY/chimera/pkg/ai"
	"github.com/AmitMY/chimera/pkg/logger"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/errgroup"
)

// TranslatorClient realizes plans with an OpenAI compatible chat model,
// one request per plan.
//
// A TranslatorClient should be created using NewTranslatorClient.
type TranslatorClient struct {
	model    string
	options  []ai.GenerateOption
	parallel int

	ChatClient *openai.Client
}

// NewTranslatorClientParams defines the configuration for NewTranslatorClient.
//
// ChatURL may be empty to use the public OpenAI endpoint. Options apply to
// every completion, e.g. ai.WithTemperature. MaxConcurrentRequests bounds how
// many plans are realized at once.
type NewTranslatorClientParams struct {
	Model   string
	Options []ai.GenerateOption
	ChatURL string
	ChatKey string

	MaxConcurrentRequests int
}

// NewTranslatorClient creates a TranslatorClient.
//
// Example:
//
//	client, err := openai.NewTranslatorClient(openai.NewTranslatorClientParams{
//		Model:   "gpt-4o-mini",
//		ChatKey: os.Getenv("OPENAI_API_KEY"),
//	})
func NewTranslatorClient(params NewTranslatorClientParams) (*TranslatorClient, error) {
	if params.ChatKey == "" {
		return nil, fmt.Errorf("openai translator needs an API key")
	}
	if params.Model == "" {
		return nil, fmt.Errorf("openai translator needs a model")
	}

	options := []option.RequestOption{
		option.WithAPIKey(params.ChatKey),
	}
	if params.ChatURL != "" {
		options = append(options, option.WithBaseURL(params.ChatURL))
	}
	client := openai.NewClient(options...)

	parallel := params.MaxConcurrentRequests
	if parallel <= 0 {
		parallel = 4
	}

	return &TranslatorClient{
		model:      params.Model,
		options:    params.Options,
		parallel:   parallel,
		ChatClient: &client,
	}, nil
}

// Translate realizes every plan concurrently and returns the texts in plan order.
func (c *TranslatorClient) Translate(ctx context.Context, plans []string, opts ai.TranslateOptions) ([]string, error) {
	plans = ai.PlansToTranslate(plans, opts)
	if opts.Beam > 0 {
		logger.Debug("[OpenAI] Beam width is not supported, ignoring", "beam", opts.Beam)
	}

	out := make([]string, len(plans))
	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(c.parallel)
	for i, p := range plans {
		eg.Go(func() error {
			var r ai.Realization
			err := c.GenerateCompletionWithFormat(
				gCtx,
				"realization",
				"A sentence plan realized as text",
				ai.RealizePrompt(p),
				&r,
				ai.WithSystemPrompts(ai.RealizeSystemPrompt),
			)
			if err != nil {
				return fmt.Errorf("failed to realize plan %d: %w", i, err)
			}
			out[i] = r.Text
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateCompletionWithFormat sends a prompt to the chat model and
// unmarshals the answer into out, using a JSON schema derived from out to
// enforce the structure.
func (c *TranslatorClient) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	schema := ai.GenerateSchema(out)
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        name,
		Description: openai.String(description),
		Schema:      schema,
		Strict:      openai.Bool(true),
	}

	options := ai.GenerateOptions{Model: c.model}
	for _, o := range slices.Concat(c.options, opts) {
		o(&options)
	}

	msgs := []openai.ChatCompletionMessageParamUnion{}
	for _, sp := range options.SystemPrompts {
		msgs = append(msgs, openai.SystemMessage(sp))
	}
	msgs = append(msgs, openai.UserMessage(prompt))

	body := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(options.Model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
		Messages:    msgs,
		Temperature: openai.Float(options.Temperature),
	}

	start := time.Now()
	response, err := c.ChatClient.Chat.Completions.New(ctx, body)
	if err != nil {
		return err
	}
	logger.Debug("[OpenAI] Completion",
		"model", options.Model,
		"duration_ms", time.Since(start).Milliseconds(),
		"total_tokens", response.Usage.TotalTokens,
	)

	if len(response.Choices) == 0 {
		return fmt.Errorf("no choices in response from model")
	}
	message := response.Choices[0].Message.Content
	if message == "" {
		return fmt.Errorf("empty response from model (finish_reason: %s)", response.Choices[0].FinishReason)
	}
	return ai.UnmarshalFlexible(message, out)
}
