// Package pipeline provides the high-level orchestration for turning page
// content into a delivered chat message.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/page-digest/internal/ingestion"
	"github.com/jonathan/page-digest/internal/llm"
	"github.com/jonathan/page-digest/internal/observability"
	"github.com/jonathan/page-digest/internal/parsing"
	"github.com/jonathan/page-digest/internal/prompts"
	"github.com/jonathan/page-digest/internal/rendering"
	"github.com/jonathan/page-digest/internal/types"
	"github.com/jonathan/page-digest/internal/webhook"
)

// Token limits for the two model calls.
const (
	SummaryMaxTokens  = 800
	HeadlineMaxTokens = 200
)

// headlineTemperature favours varied, punchy candidates.
const headlineTemperature = 1.0

// Pipeline steps reported in progress events.
const (
	StepSanitize = "sanitize"
	StepPrompt   = "prompt"
	StepGenerate = "generate"
	StepAssemble = "assemble"
	StepDeliver  = "deliver"
)

// Completer is the model client the pipeline needs.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (types.RawModelOutput, error)
	Model() string
}

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Options holds configuration for running the pipeline
type Options struct {
	Client       Completer
	Sanitizer    *ingestion.Sanitizer
	SystemPrompt string // Replaces the built-in summary system prompt when set
	WebhookURL   string
	HTTPClient   *http.Client // Used for webhook delivery
	Render       rendering.Options
	DryRun       bool // Assemble and validate but do not deliver
	RunID        string
	Logger       *slog.Logger
	Printer      *observability.Printer // Verbose output; nil disables it
	OnProgress   ProgressCallback
}

// Outcome is the result of a successful run.
type Outcome struct {
	RunID     string                  `json:"run_id"`
	Summary   types.NormalizedSummary `json:"summary"`
	Titles    types.AtmosphereTitles  `json:"titles"`
	Message   types.OutboundMessage   `json:"message"`
	Delivered bool                    `json:"delivered"`
}

type run struct {
	id     string
	opts   Options
	logger *slog.Logger
}

func (r *run) emit(step, message string) {
	r.logger.Debug(message, "step", step)
	if r.opts.OnProgress != nil {
		r.opts.OnProgress(ProgressEvent{Step: step, Message: message, RunID: r.id})
	}
}

// Run sanitizes the page, generates the summary and headlines, assembles the
// message and delivers it. Content and prompt checks fail before any network
// call. A failed headline call falls back to the page title.
func Run(ctx context.Context, page types.PageContent, opts Options) (*Outcome, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("model client is required")
	}

	r := &run{id: opts.RunID, opts: opts, logger: opts.Logger}
	if r.id == "" {
		r.id = uuid.NewString()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With("run_id", r.id)

	sanitizer := opts.Sanitizer
	if sanitizer == nil {
		sanitizer = ingestion.NewSanitizer(nil)
	}
	content, err := sanitizer.Sanitize(page)
	if err != nil {
		return nil, fmt.Errorf("sanitizing content failed: %w", err)
	}
	r.emit(StepSanitize, fmt.Sprintf("Sanitized %d characters of page content", ingestion.RuneLen(content.Content)))
	if opts.Printer != nil {
		opts.Printer.PrintPage(content.PageContent)
	}

	style := prompts.StyleForModel(opts.Client.Model())
	summaryPrompt, err := prompts.BuildSummaryPrompt(content, opts.SystemPrompt, style)
	if err != nil {
		return nil, fmt.Errorf("building summary prompt failed: %w", err)
	}
	headlinePrompt, err := prompts.BuildHeadlinePrompt(content)
	if err != nil {
		return nil, fmt.Errorf("building headline prompt failed: %w", err)
	}
	r.emit(StepPrompt, fmt.Sprintf("Built %s prompts for model %s", style, opts.Client.Model()))

	raw, titles, err := r.generate(ctx, content, summaryPrompt, headlinePrompt)
	if err != nil {
		return nil, err
	}

	summary := parsing.Parse(raw)
	r.emit(StepGenerate, fmt.Sprintf("Generated summary with %d key points", len(summary.KeyPoints)))
	if opts.Printer != nil {
		opts.Printer.PrintSummary(summary, titles)
	}

	msg := rendering.Assemble(summary, titles, content.PageContent, opts.Render)
	if err := rendering.ValidatePayload(msg); err != nil {
		return nil, fmt.Errorf("assembling message failed: %w", err)
	}
	r.emit(StepAssemble, fmt.Sprintf("Assembled %s message", msg.MsgType))
	if opts.Printer != nil {
		opts.Printer.PrintMessage(msg)
	}

	outcome := &Outcome{RunID: r.id, Summary: summary, Titles: titles, Message: msg}
	if opts.DryRun {
		r.emit(StepDeliver, "Dry run, message not delivered")
		return outcome, nil
	}

	if err := webhook.Deliver(ctx, opts.HTTPClient, opts.WebhookURL, msg); err != nil {
		return nil, fmt.Errorf("delivering message failed: %w", err)
	}
	outcome.Delivered = true
	r.emit(StepDeliver, "Message delivered")
	return outcome, nil
}

// generate runs the summary and headline calls concurrently. Only the summary
// call can fail the run.
func (r *run) generate(ctx context.Context, content types.SanitizedContent, summaryPrompt, headlinePrompt []types.ChatMessage) (types.RawModelOutput, types.AtmosphereTitles, error) {
	g, gCtx := errgroup.WithContext(ctx)

	var raw types.RawModelOutput
	titles := types.FallbackTitles(content.Title)

	g.Go(func() error {
		out, err := r.opts.Client.Complete(gCtx, llm.Request{
			Messages:    summaryPrompt,
			MaxTokens:   SummaryMaxTokens,
			Temperature: llm.TemperatureForStyle{},
			JSON:        true,
		})
		if err != nil {
			return fmt.Errorf("summary generation failed: %w", err)
		}
		raw = out
		return nil
	})

	g.Go(func() error {
		out, err := r.opts.Client.Complete(gCtx, llm.Request{
			Messages:    headlinePrompt,
			MaxTokens:   HeadlineMaxTokens,
			Temperature: llm.TemperatureFixed(headlineTemperature),
			Attempts:    1,
		})
		if err != nil {
			r.logger.Warn("headline generation failed, using page title", "error", err)
			return nil
		}
		titles = parsing.ParseHeadlines(out)
		return nil
	})

	if err := g.Wait(); err != nil {
		return "", nil, err
	}
	return raw, titles, nil
}

// Invoke runs the pipeline and reports the uniform success/error result.
// The outcome and the underlying error are returned as well so callers can
// show the message or map the failure to their own status codes.
func Invoke(ctx context.Context, page types.PageContent, opts Options) (types.Result, *Outcome, error) {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	outcome, err := Run(ctx, page, opts)
	if err != nil {
		return types.Result{Success: false, Error: err.Error(), RunID: opts.RunID}, nil, err
	}
	return types.Result{Success: true, RunID: opts.RunID}, outcome, nil
}
