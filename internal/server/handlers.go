package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/page-digest/internal/pipeline"
	"github.com/jonathan/page-digest/internal/types"
)

// MessageRequest is the body of POST /v1/messages. processAndSend takes
// either a URL to collect or an already extracted page; the page wins when
// both are given.
type MessageRequest struct {
	Action       string             `json:"action"`
	URL          string             `json:"url,omitempty"`
	Page         *types.PageContent `json:"page,omitempty"`
	SystemPrompt string             `json:"system_prompt,omitempty"` // Replaces the configured prompt for this run
	DryRun       bool               `json:"dry_run,omitempty"`
}

// MessageResponse reports a processAndSend run. Message is set on success.
type MessageResponse struct {
	types.Result
	Message *types.OutboundMessage `json:"message,omitempty"`
}

// handleMessages dispatches on the request action.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	switch req.Action {
	case types.ActionExtractContent:
		s.extractContent(w, r, req)
	case types.ActionProcessAndSend:
		s.processAndSend(w, r, req)
	default:
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("unsupported action %q", req.Action))
	}
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (MessageRequest, error) {
	var req MessageRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	req.URL = strings.TrimSpace(req.URL)
	return req, nil
}

// extractContent answers with the collector's response envelope.
func (s *Server) extractContent(w http.ResponseWriter, r *http.Request, req MessageRequest) {
	if req.URL == "" {
		s.jsonResponse(w, http.StatusBadRequest, types.ExtractionResponse{Error: "url is required"})
		return
	}

	resp := s.collector.Handle(r.Context(), types.ExtractionRequest{Action: req.Action, URL: req.URL})
	status := http.StatusOK
	if !resp.Success {
		status = http.StatusBadGateway
	}
	s.jsonResponse(w, status, resp)
}

// processAndSend runs the pipeline to completion and reports the result.
func (s *Server) processAndSend(w http.ResponseWriter, r *http.Request, req MessageRequest) {
	result, outcome, err := s.run(r.Context(), req, uuid.NewString(), nil)
	if err != nil {
		s.logger.Warn("pipeline run failed", "run_id", result.RunID, "error", err)
		s.jsonResponse(w, HTTPStatus(err), MessageResponse{Result: result})
		return
	}

	s.jsonResponse(w, http.StatusOK, MessageResponse{Result: result, Message: &outcome.Message})
}

// handleMessagesStream runs processAndSend and streams progress via SSE
func (s *Server) handleMessagesStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Action != "" && req.Action != types.ActionProcessAndSend {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("unsupported action %q", req.Action))
		return
	}
	if err := validateSource(req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	runID := uuid.NewString()
	result, outcome, err := s.run(r.Context(), req, runID, func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent("step", event); err != nil {
			s.logger.Warn("writing SSE event failed", "run_id", runID, "error", err)
		}
	})
	if err != nil {
		s.logger.Warn("streaming pipeline run failed", "run_id", runID, "error", err)
		sse.WriteError(runID, result.Error)
		return
	}

	status := "delivered"
	if !outcome.Delivered {
		status = "dry_run"
	}
	sse.WriteComplete(runID, status)
}

// run collects the page when needed and invokes the pipeline with the
// server's base options.
func (s *Server) run(ctx context.Context, req MessageRequest, runID string, onProgress pipeline.ProgressCallback) (types.Result, *pipeline.Outcome, error) {
	failed := func(err error) (types.Result, *pipeline.Outcome, error) {
		return types.Result{Success: false, Error: userMessage(err), RunID: runID}, nil, err
	}
	if err := validateSource(req); err != nil {
		return failed(err)
	}

	var page types.PageContent
	if req.Page != nil {
		page = *req.Page
	} else {
		collected, err := s.collector.Collect(ctx, req.URL)
		if err != nil {
			return failed(err)
		}
		page = collected
	}

	opts := s.pipeline
	opts.RunID = runID
	opts.DryRun = opts.DryRun || req.DryRun
	opts.Logger = s.logger
	opts.Printer = nil
	opts.OnProgress = onProgress
	if req.SystemPrompt != "" {
		opts.SystemPrompt = req.SystemPrompt
	}

	return pipeline.Invoke(ctx, page, opts)
}

func validateSource(req MessageRequest) error {
	if req.Page == nil && req.URL == "" {
		return &ErrValidation{Field: "url", Message: "url or page is required"}
	}
	return nil
}
