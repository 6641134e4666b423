package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"github.com/AmitMY/chimera/pkg/ai"
	"github.com/AmitMY/chimera/pkg/logger"

	"github.com/ollama/ollama/api"
	"github.com/pkoukk/tiktoken-go"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	defaultContext = 4096
	answerReserve  = 200
)

// TranslatorClient realizes plans with a model served by Ollama.
type TranslatorClient struct {
	model   string
	options []ai.GenerateOption

	reqLock *semaphore.Weighted

	Client *api.Client
}

// NewTranslatorClientParams contains configuration options for NewTranslatorClient.
type NewTranslatorClientParams struct {
	Model   string
	Options []ai.GenerateOption

	BaseURL string
	ApiKey  string

	MaxConcurrentRequests int64
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so original request isn't modified
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewTranslatorClient connects to the Ollama server at BaseURL, or to the
// one configured through OLLAMA_HOST when BaseURL is empty.
func NewTranslatorClient(params NewTranslatorClientParams) (*TranslatorClient, error) {
	if params.Model == "" {
		return nil, fmt.Errorf("ollama translator needs a model")
	}

	var cli *api.Client
	if params.BaseURL != "" {
		u, err := url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
		httpClient := http.DefaultClient
		if params.ApiKey != "" {
			httpClient = &http.Client{
				Transport: &headerTransport{
					headers: map[string]string{
						"Authorization": "Bearer " + params.ApiKey,
					},
					rt: http.DefaultTransport,
				},
			}
		}
		cli = api.NewClient(u, httpClient)
	} else {
		c, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, err
		}
		cli = c
	}

	maxReq := params.MaxConcurrentRequests
	if maxReq <= 0 {
		maxReq = 2
	}

	return &TranslatorClient{
		model:   params.Model,
		options: params.Options,
		reqLock: semaphore.NewWeighted(maxReq),
		Client:  cli,
	}, nil
}

// Translate realizes every plan and returns the texts in plan order.
func (c *TranslatorClient) Translate(ctx context.Context, plans []string, opts ai.TranslateOptions) ([]string, error) {
	plans = ai.PlansToTranslate(plans, opts)
	if opts.Beam > 0 {
		logger.Debug("[Ollama] Beam width is not supported, ignoring", "beam", opts.Beam)
	}

	out := make([]string, len(plans))
	eg, gCtx := errgroup.WithContext(ctx)
	for i, p := range plans {
		eg.Go(func() error {
			if err := c.reqLock.Acquire(gCtx, 1); err != nil {
				return err
			}
			defer c.reqLock.Release(1)

			var r ai.Realization
			if err := c.GenerateCompletionWithFormat(gCtx, ai.RealizeSystemPrompt, ai.RealizePrompt(p), &r); err != nil {
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

// GenerateCompletionWithFormat asks the model for JSON shaped like out.
func (c *TranslatorClient) GenerateCompletionWithFormat(
	ctx context.Context,
	system string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	formatBytes, err := json.Marshal(ai.GenerateSchema(out))
	if err != nil {
		return err
	}

	options := ai.GenerateOptions{Model: c.model}
	for _, o := range slices.Concat(c.options, opts) {
		o(&options)
	}

	stream := false
	req := &api.ChatRequest{
		Model: options.Model,
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Stream:  &stream,
		Format:  json.RawMessage(formatBytes),
		Options: map[string]any{"temperature": options.Temperature},
	}

	if numCtx, err := contextSize(system + prompt); err != nil {
		logger.Warn("[Ollama] Failed to estimate context size", "err", err)
	} else if numCtx > defaultContext {
		req.Options["num_ctx"] = numCtx
	}

	var content string
	if err := c.Client.Chat(ctx, req, func(cr api.ChatResponse) error {
		content += cr.Message.Content
		if cr.Done {
			logger.Debug("[Ollama] Completion",
				"model", options.Model,
				"duration_ms", cr.Metrics.TotalDuration.Milliseconds(),
				"eval_count", cr.Metrics.EvalCount,
			)
		}
		return nil
	}); err != nil {
		return err
	}

	if content == "" {
		return fmt.Errorf("empty response from model")
	}
	return ai.UnmarshalFlexible(content, out)
}

// contextSize estimates the context window the prompt needs. A prompt never
// holds more tokens than bytes, so short prompts skip the tokenizer.
func contextSize(prompt string) (int, error) {
	if len(prompt)+answerReserve <= defaultContext {
		return len(prompt) + answerReserve, nil
	}
	enc, err := tiktoken.GetEncoding("o200k_base")
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(prompt, nil, nil)) + answerReserve, nil
}
