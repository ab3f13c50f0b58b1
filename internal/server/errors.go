package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/page-digest/internal/ingestion"
	"github.com/jonathan/page-digest/internal/llm"
	"github.com/jonathan/page-digest/internal/prompts"
	"github.com/jonathan/page-digest/internal/webhook"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		rejectedErr   *ingestion.ContentRejectedError
		unsafeErr     *prompts.UnsafePromptError
		extractErr    *ingestion.ExtractionError
		authErr       *llm.AuthError
		policyErr     *llm.PolicyError
		modelErr      *llm.ModelUnavailableError
		providerErr   *llm.ProviderError
		deliveryErr   *webhook.DeliveryError
	)

	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &rejectedErr), errors.As(err, &unsafeErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &extractErr),
		errors.As(err, &authErr),
		errors.As(err, &policyErr),
		errors.As(err, &modelErr),
		errors.As(err, &providerErr),
		errors.As(err, &deliveryErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// userMessage returns the text reported to API callers for err.
func userMessage(err error) string {
	var extractErr *ingestion.ExtractionError
	if errors.As(err, &extractErr) {
		return extractErr.Message
	}
	return err.Error()
}
