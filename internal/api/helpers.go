package api

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/alignment"
	domainerrors "github.com/devops-tatvacare/ai-evals-platform-sub003/internal/errors"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/transcript"
)

// MessageResponse is a generic response with a message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// decodeBody decodes a raw JSON request body into v. Bodies carrying
// transcripts bypass huma's schema validation because timestamps may be
// numbers or strings.
func decodeBody(raw []byte, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return domainerrors.Validation("request body is required")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		msg := err.Error()
		if !errors.Is(err, transcript.ErrInvalidInput) {
			msg = "malformed request body: " + msg
		}
		return domainerrors.Validation(msg).WithCause(err)
	}
	return nil
}

// parseSeverity parses the severity query parameter.
func parseSeverity(raw string) (alignment.SeverityFilter, error) {
	f, err := alignment.ParseSeverityFilter(raw)
	if err != nil {
		return "", domainerrors.Validation(err.Error())
	}
	return f, nil
}
