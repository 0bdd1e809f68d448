package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/spigell/jobnado/internal/ai"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type modelsCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

type fakeModels struct {
	mu    sync.Mutex
	calls []modelsCall
	resp  *genai.GenerateContentResponse
	err   error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, modelsCall{model: model, contents: contents, config: config})
	return f.resp, f.err
}

type fakeChat struct {
	mu       sync.Mutex
	resp     *genai.GenerateContentResponse
	err      error
	messages []string
}

func (f *fakeChat) SendMessage(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, part := range parts {
		f.messages = append(f.messages, part.Text)
	}
	return f.resp, f.err
}

type fakeChatCreator struct {
	chat    *fakeChat
	model   string
	config  *genai.GenerateContentConfig
	history []*genai.Content
}

func (f *fakeChatCreator) Create(_ context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	f.model = model
	f.config = config
	f.history = history
	return f.chat, nil
}

func textResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(texts))
	for _, text := range texts {
		parts = append(parts, &genai.Part{Text: text})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func newTestGenerator(models modelsAPI, chats chatCreator) *Generator {
	return &Generator{
		models:    models,
		chats:     chats,
		model:     "gemini-2.5-flash",
		logger:    zap.NewNop(),
		maxLogLen: defaultMaxLogLength,
	}
}

func TestGenerateStructuredRequestsJSON(t *testing.T) {
	models := &fakeModels{resp: textResponse(`{"ok":true}`)}
	g := newTestGenerator(models, nil)

	schema := &ai.Schema{Type: ai.TypeObject, Required: []string{"ok"}}
	parts := []ai.Part{ai.TextPart("instruction"), ai.BlobPart("image/png", []byte{0x89, 0x50})}

	out, err := g.GenerateStructured(context.Background(), parts, schema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out != `{"ok":true}` {
		t.Fatalf("unexpected output: %q", out)
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(models.calls))
	}

	call := models.calls[0]
	if call.model != "gemini-2.5-flash" {
		t.Fatalf("unexpected model: %q", call.model)
	}

	if call.config.ResponseMIMEType != "application/json" {
		t.Fatalf("unexpected mime type: %q", call.config.ResponseMIMEType)
	}

	if call.config.ResponseSchema == nil || call.config.ResponseSchema.Type != genai.TypeObject {
		t.Fatalf("expected object schema, got %+v", call.config.ResponseSchema)
	}

	sent := call.contents[0].Parts
	if len(sent) != 2 || sent[0].Text != "instruction" || sent[1].InlineData == nil || sent[1].InlineData.MIMEType != "image/png" {
		t.Fatalf("unexpected parts: %+v", sent)
	}
}

func TestGenerateStructuredEmptyResponse(t *testing.T) {
	models := &fakeModels{resp: &genai.GenerateContentResponse{}}
	g := newTestGenerator(models, nil)

	_, err := g.GenerateStructured(context.Background(), []ai.Part{ai.TextPart("x")}, nil)
	if !errors.Is(err, ai.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGenerateWrapsAPIError(t *testing.T) {
	apiErr := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
	models := &fakeModels{err: apiErr}
	g := newTestGenerator(models, nil)

	_, err := g.GenerateText(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}

	var got genai.APIError
	if !errors.As(err, &got) || got.Code != http.StatusInternalServerError {
		t.Fatalf("expected wrapped APIError, got %v", err)
	}
}

func TestSearchGroundedCollectsSources(t *testing.T) {
	resp := textResponse("Title: Analyst\nCompany: Acme Corp")
	resp.Candidates[0].GroundingMetadata = &genai.GroundingMetadata{
		GroundingChunks: []*genai.GroundingChunk{
			{Web: &genai.GroundingChunkWeb{Title: "Acme Corp Careers", URI: "https://acme.example/job/1"}},
			{},
			{Web: &genai.GroundingChunkWeb{Title: " Other ", URI: " https://other.example "}},
		},
	}
	models := &fakeModels{resp: resp}
	g := newTestGenerator(models, nil)

	result, err := g.SearchGrounded(context.Background(), "find jobs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Text != "Title: Analyst\nCompany: Acme Corp" {
		t.Fatalf("unexpected text: %q", result.Text)
	}

	want := []ai.Source{
		{Title: "Acme Corp Careers", URI: "https://acme.example/job/1"},
		{Title: "Other", URI: "https://other.example"},
	}
	if len(result.Sources) != len(want) {
		t.Fatalf("unexpected sources: %+v", result.Sources)
	}
	for i := range want {
		if result.Sources[i] != want[i] {
			t.Fatalf("source %d: expected %+v, got %+v", i, want[i], result.Sources[i])
		}
	}

	tools := models.calls[0].config.Tools
	if len(tools) != 1 || tools[0].GoogleSearch == nil {
		t.Fatalf("expected google search tool, got %+v", tools)
	}
}

func TestSearchGroundedAllowsEmptyText(t *testing.T) {
	models := &fakeModels{resp: &genai.GenerateContentResponse{}}
	g := newTestGenerator(models, nil)

	result, err := g.SearchGrounded(context.Background(), "find jobs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Text != "" || len(result.Sources) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestChatReplaysHistory(t *testing.T) {
	chat := &fakeChat{resp: textResponse("Try tailoring your summary.")}
	creator := &fakeChatCreator{chat: chat}
	g := newTestGenerator(nil, creator)

	history := []ai.Message{
		{Role: ai.RoleUser, Text: "How do I stand out?"},
		{Role: ai.RoleModel, Text: "Lead with impact."},
		{Role: ai.RoleUser, Text: "   "},
	}

	out, err := g.Chat(context.Background(), "career coach", history, "And my CV?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out != "Try tailoring your summary." {
		t.Fatalf("unexpected reply: %q", out)
	}

	if creator.config == nil || creator.config.SystemInstruction == nil || creator.config.SystemInstruction.Parts[0].Text != "career coach" {
		t.Fatalf("expected system instruction, got %+v", creator.config)
	}

	if len(creator.history) != 2 || creator.history[1].Role != string(genai.RoleModel) {
		t.Fatalf("unexpected history: %+v", creator.history)
	}

	if len(chat.messages) != 1 || chat.messages[0] != "And my CV?" {
		t.Fatalf("unexpected chat messages: %v", chat.messages)
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	g := newTestGenerator(nil, &fakeChatCreator{chat: &fakeChat{}})

	if _, err := g.Chat(context.Background(), "", nil, "  "); err == nil {
		t.Fatal("expected error for empty message")
	}
}
