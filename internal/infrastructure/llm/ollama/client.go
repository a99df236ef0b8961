// Package ollama implements the completion-service contract against an
// Ollama-compatible HTTP endpoint.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	genModel   string
	embedModel string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Option func(*Client)

// WithExecutor wraps non-streaming calls in retry + circuit-breaker policy.
// Streaming calls are never retried: a replay would duplicate delivered text.
func WithExecutor(executor *resilience.Executor) Option {
	return func(c *Client) { c.executor = executor }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func New(baseURL, genModel, embedModel string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate performs a single non-streaming completion.
func (c *Client) Generate(ctx context.Context, prompt string, opts domain.GenerationOptions) (string, error) {
	reqBody := c.generateRequest(prompt, opts, false)

	var response struct {
		Response string `json:"response"`
	}
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/generate", reqBody, &response, "generate")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama.generate", call, classifyTransportError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("generate", err)
	}
	return strings.TrimSpace(response.Response), nil
}

// Stream performs a streaming completion, invoking onEvent for every text
// delta in arrival order and once more with the terminal usage metadata.
// Canceling ctx aborts the underlying call.
func (c *Client) Stream(ctx context.Context, prompt string, opts domain.GenerationOptions, onEvent func(domain.StreamEvent) error) error {
	reqBody := c.generateRequest(prompt, opts, true)
	return c.streamNDJSON(ctx, "/api/generate", reqBody, onEvent)
}

// EmbedQuery builds the query vector consumed by the vector index.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	reqBody := map[string]any{
		"model": c.embedModel,
		"input": []string{text},
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/embed", reqBody, &response, "embed")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama.embed", call, classifyTransportError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, wrapTemporaryIfNeeded("embed", err)
	}
	if len(response.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return response.Embeddings[0], nil
}

func (c *Client) generateRequest(prompt string, opts domain.GenerationOptions, stream bool) map[string]any {
	reqBody := map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": stream,
	}
	if opts.JSONFormat {
		reqBody["format"] = "json"
	}
	if opts.Temperature >= 0 {
		reqBody["options"] = map[string]any{"temperature": opts.Temperature}
	}
	return reqBody
}
