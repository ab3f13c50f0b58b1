package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/page-digest/internal/types"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/tidwall/gjson"
)

// unvalidatedPrefix marks model ids that skip the model-list check. Access to
// these models is often gated and they may be missing from the list.
const unvalidatedPrefix = "gpt-5"

// Request is a single chat completion call.
type Request struct {
	Messages    []types.ChatMessage
	MaxTokens   int64
	Temperature TemperaturePolicy
	// JSON asks for a JSON object response when the provider supports it.
	JSON bool
	// Attempts overrides the client's retry budget when positive.
	Attempts int
}

// Client sends chat completions to an OpenAI-compatible provider.
type Client struct {
	spec        ProviderSpec
	model       string
	api         openai.Client
	maxAttempts int
	backoff     BackoffFunc
	logger      *slog.Logger

	validateMu sync.Mutex
	validated  bool
}

// NewClient creates a client for the configured provider.
func NewClient(cfg Config) (*Client, error) {
	spec, err := SpecFor(cfg.Provider)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%s API key is required", spec.DisplayName)
	}

	model := cfg.Model
	if model == "" {
		model = spec.DefaultModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = spec.BaseURL
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	backoff := cfg.Backoff
	if backoff == nil {
		backoff = LinearBackoff(time.Second)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Client{
		spec:        spec,
		model:       model,
		api:         openai.NewClient(opts...),
		maxAttempts: maxAttempts,
		backoff:     backoff,
		logger:      logger,
	}, nil
}

// Model returns the model id the client sends requests to.
func (c *Client) Model() string {
	return c.model
}

// Spec returns the provider spec of the client.
func (c *Client) Spec() ProviderSpec {
	return c.spec
}

// Complete runs a chat completion with retries and returns the first choice's
// content.
func (c *Client) Complete(ctx context.Context, req Request) (types.RawModelOutput, error) {
	if err := c.validateModel(ctx); err != nil {
		return "", err
	}

	params := c.buildParams(req)
	attempts := req.Attempts
	if attempts <= 0 {
		attempts = c.maxAttempts
	}

	var content string
	err := RunWithRetry(ctx, attempts, c.backoff, func(ctx context.Context, attempt int) error {
		out, err := c.complete(ctx, params)
		if err != nil {
			c.logger.Warn("chat completion attempt failed",
				"provider", c.spec.Name, "model", c.model, "attempt", attempt, "error", err)
			return err
		}
		content = out
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

func (c *Client) buildParams(req Request) openai.ChatCompletionNewParams {
	policy := req.Temperature
	if policy == nil {
		policy = TemperatureForStyle{}
	}

	params := openai.ChatCompletionNewParams{
		Model:            openai.ChatModel(c.model),
		Messages:         toOpenAIMessages(req.Messages),
		Temperature:      openai.Float(policy.Temperature(c.spec.Name, c.model)),
		TopP:             openai.Float(1.0),
		FrequencyPenalty: openai.Float(0),
		PresencePenalty:  openai.Float(0),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(req.MaxTokens)
	}
	if req.JSON && c.spec.SupportsJSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	return params
}

func (c *Client) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", c.classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: c.spec.DisplayName, Message: "response contained no choices"}
	}
	return resp.Choices[0].Message.Content, nil
}

// ListModels returns the model ids the provider offers to this key.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	page, err := c.api.Models.List(ctx)
	if err != nil {
		return nil, c.classifyError(err)
	}
	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// validateModel checks that the model is listed by the provider. Only a
// successful check is remembered; failures are retried by the next call.
func (c *Client) validateModel(ctx context.Context) error {
	if strings.HasPrefix(c.model, unvalidatedPrefix) {
		return nil
	}
	c.validateMu.Lock()
	defer c.validateMu.Unlock()
	if c.validated {
		return nil
	}
	if err := c.checkModelListed(ctx); err != nil {
		return err
	}
	c.validated = true
	return nil
}

func (c *Client) checkModelListed(ctx context.Context) error {
	available, err := c.ListModels(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &ModelUnavailableError{
			Model:   c.model,
			Message: "could not fetch the model list, check the API key",
			Cause:   err,
		}
	}
	for _, id := range available {
		if id == c.model {
			c.logger.Debug("model validated", "provider", c.spec.Name, "model", c.model)
			return nil
		}
	}

	alt := findAlternative(c.model, available)
	if alt == "" {
		return &ModelUnavailableError{Model: c.model, Message: "no suitable alternative is available"}
	}
	return &ModelUnavailableError{Model: c.model, Alternative: alt}
}

// classifyError turns an SDK error into one of the package's typed errors.
func (c *Client) classifyError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		message := apiErrorMessage(apiErr)
		classified := Classify(c.spec.DisplayName, c.model, message)
		if _, generic := classified.(*ProviderError); generic && apiErr.StatusCode == http.StatusUnauthorized {
			classified = &AuthError{Provider: c.spec.DisplayName, Message: message}
		}
		attachCause(classified, apiErr)
		return classified
	}
	return &ProviderError{Provider: c.spec.DisplayName, Message: err.Error(), Cause: err}
}

// apiErrorMessage prefers the provider's error.message and falls back to the
// HTTP status text.
func apiErrorMessage(apiErr *openai.Error) string {
	if apiErr.Message != "" {
		return apiErr.Message
	}
	raw := apiErr.RawJSON()
	for _, path := range []string{"error.message", "message"} {
		if msg := gjson.Get(raw, path); msg.Type == gjson.String && msg.String() != "" {
			return msg.String()
		}
	}
	if text := http.StatusText(apiErr.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP status %d", apiErr.StatusCode)
}

func attachCause(err error, apiErr *openai.Error) {
	switch e := err.(type) {
	case *AuthError:
		e.Cause = apiErr
	case *PolicyError:
		e.Cause = apiErr
	case *ModelUnavailableError:
		e.Cause = apiErr
	case *ProviderError:
		e.Cause = apiErr
		e.StatusCode = apiErr.StatusCode
	}
}

func toOpenAIMessages(msgs []types.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case types.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
