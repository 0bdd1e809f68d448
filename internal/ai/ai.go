// Package ai describes the language-model calls the pipeline depends on.
package ai

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when a model call succeeds without any text.
var ErrEmptyResponse = errors.New("model returned empty response")

// Part is one prompt segment: either text or a single inline binary attachment.
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

func TextPart(text string) Part {
	return Part{Text: text}
}

func BlobPart(mimeType string, data []byte) Part {
	return Part{MIMEType: mimeType, Data: data}
}

// IsBlob reports whether the part carries binary data.
func (p Part) IsBlob() bool {
	return len(p.Data) > 0
}

// Source is a citation contributed by search retrieval.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// GroundedResult is the free-text answer of a search-grounded call.
type GroundedResult struct {
	Text    string
	Sources []Source
}

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one turn of a chat history.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// StructuredGenerator returns JSON text constrained by schema.
type StructuredGenerator interface {
	GenerateStructured(ctx context.Context, parts []Part, schema *Schema) (string, error)
}

// GroundedSearcher runs a prompt with web search retrieval enabled.
type GroundedSearcher interface {
	SearchGrounded(ctx context.Context, prompt string) (*GroundedResult, error)
}

// TextGenerator returns free text for a single prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ChatResponder continues a conversation.
type ChatResponder interface {
	Chat(ctx context.Context, system string, history []Message, message string) (string, error)
}

// SchemaViolationError reports model output that is not valid JSON for the requested schema.
type SchemaViolationError struct {
	Raw string
	Err error
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("response violates schema: %v", e.Err)
}

func (e *SchemaViolationError) Unwrap() error {
	return e.Err
}
