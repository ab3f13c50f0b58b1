package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonathan/page-digest/internal/fetch"
	"github.com/jonathan/page-digest/internal/types"
)

// RenderFunc renders a page in a browser and returns the resulting HTML.
type RenderFunc func(ctx context.Context, url string) (string, error)

// Collector fetches a page and extracts its content. When browser rendering
// is enabled it retries unreachable pages once in the browser and re-renders
// pages whose static HTML carries too little text.
type Collector struct {
	FetchOptions *fetch.Options
	UseBrowser   bool
	Render       RenderFunc
	Logger       *slog.Logger
}

// NewCollector creates a collector that renders with headless Chrome when
// useBrowser is set.
func NewCollector(useBrowser bool, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		FetchOptions: fetch.DefaultOptions(),
		UseBrowser:   useBrowser,
		Render: func(ctx context.Context, url string) (string, error) {
			return fetch.Render(ctx, url, logger)
		},
		Logger: logger,
	}
}

// Collect returns the extracted content of the page at pageURL.
func (c *Collector) Collect(ctx context.Context, pageURL string) (types.PageContent, error) {
	logger := c.logger()

	result, err := fetch.URL(ctx, pageURL, c.FetchOptions)
	if err != nil {
		logger.Warn("page fetch failed", "url", pageURL, "error", err)
		if !c.browserEnabled() {
			return types.PageContent{}, &ExtractionError{Message: ErrMsgPageUnreachable, Cause: err}
		}

		rendered, renderErr := c.Render(ctx, pageURL)
		if renderErr != nil {
			logger.Warn("browser render failed", "url", pageURL, "error", renderErr)
			return types.PageContent{}, &ExtractionError{
				Message: ErrMsgPageUnreachable,
				Cause:   errors.Join(err, renderErr),
			}
		}
		page, extractErr := ExtractFromHTML(rendered, pageURL)
		if extractErr != nil {
			return types.PageContent{}, &ExtractionError{Message: ErrMsgPageUnreachable, Cause: extractErr}
		}
		return page, nil
	}

	page, err := ExtractFromHTML(result.HTML, pageURL)
	if err != nil {
		return types.PageContent{}, &ExtractionError{Message: ErrMsgPageUnreachable, Cause: err}
	}

	if c.browserEnabled() && fetch.ShouldUseBrowser(page.Content) {
		logger.Debug("static content too short, rendering in browser",
			"url", pageURL, "length", RuneLen(page.Content))
		rendered, renderErr := c.Render(ctx, pageURL)
		if renderErr != nil {
			logger.Warn("browser render failed, keeping static content", "url", pageURL, "error", renderErr)
			return page, nil
		}
		renderedPage, extractErr := ExtractFromHTML(rendered, pageURL)
		if extractErr == nil && RuneLen(renderedPage.Content) > RuneLen(page.Content) {
			page = renderedPage
		}
	}

	logger.Debug("extracted page content", "url", pageURL, "title", page.Title, "length", RuneLen(page.Content))
	return page, nil
}

// Handle answers an extraction request with the uniform response envelope.
func (c *Collector) Handle(ctx context.Context, req types.ExtractionRequest) types.ExtractionResponse {
	if req.Action != types.ActionExtractContent {
		return types.ExtractionResponse{Error: fmt.Sprintf("unsupported action %q", req.Action)}
	}

	page, err := c.Collect(ctx, req.URL)
	if err != nil {
		var extractErr *ExtractionError
		if errors.As(err, &extractErr) {
			return types.ExtractionResponse{Error: extractErr.Message}
		}
		return types.ExtractionResponse{Error: err.Error()}
	}
	return types.ExtractionResponse{Success: true, Data: &page}
}

func (c *Collector) browserEnabled() bool {
	return c.UseBrowser && c.Render != nil
}

func (c *Collector) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
