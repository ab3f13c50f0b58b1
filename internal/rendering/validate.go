package rendering

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/page-digest/internal/schemas"
	"github.com/jonathan/page-digest/internal/types"
)

// ValidatePayload checks an assembled message against the webhook schema for
// its message type.
func ValidatePayload(msg types.OutboundMessage) error {
	var schema string
	switch msg.MsgType {
	case types.MsgTypeText:
		schema = schemas.FeishuTextSchema
	case types.MsgTypePost:
		schema = schemas.FeishuPostSchema
	default:
		return &RenderError{Message: fmt.Sprintf("unsupported message type %q", msg.MsgType)}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return &RenderError{Message: "failed to encode message", Cause: err}
	}

	if err := schemas.ValidateDocument(schema, data); err != nil {
		return &RenderError{
			Message: fmt.Sprintf("%s message does not match the webhook schema", msg.MsgType),
			Cause:   err,
		}
	}
	return nil
}
