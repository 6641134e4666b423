package chimera

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AmitMY/chimera/pkg/ai"
	"github.com/AmitMY/chimera/pkg/common"

	"golang.org/x/time/rate"
)

// Planner produces the candidate linearizations of a graph together with
// the surface forms of its entities. *Client is a Planner.
type Planner interface {
	Plans(ctx context.Context, g common.Graph, mode common.PlanMode) (common.ConcatMap, common.LinearizationSet, error)
}

var (
	_ Planner       = (*Client)(nil)
	_ ai.Translator = (*Client)(nil)
)

// Client talks to the remote planner/realizer service: it lists graphs,
// generates candidate plans for a graph and translates plans into text.
//
// A Client should be created using NewClient.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClientParams defines the configuration for NewClient.
//
// RequestsPerSecond and Burst throttle outgoing requests; a zero
// RequestsPerSecond disables throttling. Timeout bounds every request and
// defaults to two minutes since translation of large plan sets is slow.
type NewClientParams struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	HTTPClient        *http.Client
}

// NewClient creates a Client for the service at BaseURL.
//
// Example:
//
//	client, err := chimera.NewClient(chimera.NewClientParams{
//		BaseURL:           "http://localhost:5001",
//		RequestsPerSecond: 5,
//		Burst:             5,
//	})
func NewClient(params NewClientParams) (*Client, error) {
	if params.BaseURL == "" {
		return nil, fmt.Errorf("chimera client needs a base URL")
	}

	httpClient := params.HTTPClient
	if httpClient == nil {
		timeout := params.Timeout
		if timeout <= 0 {
			timeout = 2 * time.Minute
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if params.RequestsPerSecond > 0 {
		burst := params.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(params.RequestsPerSecond), burst)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(params.BaseURL, "/"),
		httpClient: httpClient,
		limiter:    limiter,
	}, nil
}

// BaseURL returns the service root the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type planResponse struct {
	Concat         common.ConcatMap `json:"concat"`
	Linearizations []struct {
		L string  `json:"l"`
		S float64 `json:"s"`
	} `json:"linearizations"`
}

type translateRequest struct {
	Plans    []string `json:"plans"`
	Beam     int      `json:"beam,omitempty"`
	BestOnly bool     `json:"best_only,omitempty"`
}

// Graphs fetches the graph corpus.
func (c *Client) Graphs(ctx context.Context) ([]common.Graph, error) {
	var graphs []common.Graph
	if err := c.do(ctx, http.MethodGet, "/graphs", nil, &graphs); err != nil {
		return nil, err
	}
	return graphs, nil
}

// Plans requests the candidate linearizations of g. The returned plans keep
// the service order (score descending) and carry no rank yet.
func (c *Client) Plans(ctx context.Context, g common.Graph, mode common.PlanMode) (common.ConcatMap, common.LinearizationSet, error) {
	if !mode.Valid() {
		return nil, nil, fmt.Errorf("unknown plan mode %q", mode)
	}

	var res planResponse
	if err := c.do(ctx, http.MethodPost, "/plans/"+string(mode), g, &res); err != nil {
		return nil, nil, err
	}

	plans := make(common.LinearizationSet, len(res.Linearizations))
	for i, l := range res.Linearizations {
		plans[i] = common.Plan{Text: l.L, Score: l.S}
	}
	if res.Concat == nil {
		res.Concat = common.ConcatMap{}
	}
	return res.Concat, plans, nil
}

// Translate sends plan texts to the realizer. Without options the body is
// the bare array of plans; with options it is an object carrying them.
func (c *Client) Translate(ctx context.Context, plans []string, opts ai.TranslateOptions) ([]string, error) {
	var body any = plans
	if !opts.IsZero() {
		body = translateRequest{Plans: plans, Beam: opts.Beam, BestOnly: opts.BestOnly}
	}

	var texts []string
	if err := c.do(ctx, http.MethodPost, "/translate", body, &texts); err != nil {
		return nil, err
	}
	return texts, nil
}

func (c *Client) do(ctx context.Context, method, path string, in any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return &StatusError{Path: path, Code: res.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Path string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Path, e.Code)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Path, e.Code, e.Body)
}
