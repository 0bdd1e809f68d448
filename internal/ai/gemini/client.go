package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spigell/jobnado/internal/ai"
	"github.com/spigell/jobnado/internal/logger"
	"github.com/spigell/jobnado/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const (
	Provider            = "gemini"
	DefaultModel        = "gemini-2.5-flash"
	defaultMaxLogLength = 200
	jsonMIMEType        = "application/json"
)

type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type genaiChats struct {
	chats *genai.Chats
}

func (c genaiChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	chat, err := c.chats.Create(ctx, model, config, history)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// Options configure a Generator.
type Options struct {
	APIKey string
	Model  string
	// RequestsPerSecond caps outbound calls. Zero disables the limiter.
	RequestsPerSecond float64
	MaxLogLength      int
}

// Generator implements the ai package interfaces on top of the Google GenAI client.
type Generator struct {
	models    modelsAPI
	chats     chatCreator
	model     string
	limiter   *rate.Limiter
	logger    *zap.Logger
	maxLogLen int
}

var (
	_ ai.StructuredGenerator = (*Generator)(nil)
	_ ai.GroundedSearcher    = (*Generator)(nil)
	_ ai.TextGenerator       = (*Generator)(nil)
	_ ai.ChatResponder       = (*Generator)(nil)
)

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, opts Options, log *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}

	maxLogLen := opts.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	g := &Generator{
		models:    client.Models,
		chats:     genaiChats{chats: client.Chats},
		model:     model,
		logger:    logger.WithCommonFields(log, Provider, model),
		maxLogLen: maxLogLen,
	}

	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return g, nil
}

// GenerateStructured sends the parts and requests JSON output matching schema.
func (g *Generator) GenerateStructured(ctx context.Context, parts []ai.Part, schema *ai.Schema) (string, error) {
	if len(parts) == 0 {
		return "", errors.New("prompt must not be empty")
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: jsonMIMEType,
		ResponseSchema:   toGenaiSchema(schema),
	}

	contents := []*genai.Content{{
		Role:  string(genai.RoleUser),
		Parts: toGenaiParts(parts),
	}}

	resp, err := g.generate(ctx, "structured", contents, config)
	if err != nil {
		return "", err
	}

	return responseText(resp)
}

// SearchGrounded runs prompt with the Google Search tool and returns the text with its citations.
// An empty text is not an error.
func (g *Generator) SearchGrounded(ctx context.Context, prompt string) (*ai.GroundedResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errors.New("prompt must not be empty")
	}

	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}

	resp, err := g.generate(ctx, "grounded", genai.Text(prompt), config)
	if err != nil {
		return nil, err
	}

	text, err := responseText(resp)
	if err != nil && !errors.Is(err, ai.ErrEmptyResponse) {
		return nil, err
	}

	return &ai.GroundedResult{Text: text, Sources: groundingSources(resp)}, nil
}

// GenerateText sends a single text prompt.
func (g *Generator) GenerateText(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := g.generate(ctx, "text", genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}

	return responseText(resp)
}

// Chat replays history into a fresh chat session and sends message.
func (g *Generator) Chat(ctx context.Context, system string, history []ai.Message, message string) (string, error) {
	if g == nil || g.chats == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("message must not be empty")
	}

	var config *genai.GenerateContentConfig
	if system = strings.TrimSpace(system); system != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		}
	}

	if err := g.wait(ctx); err != nil {
		return "", err
	}

	chat, err := g.chats.Create(ctx, g.model, config, toGenaiHistory(history))
	if err != nil {
		return "", fmt.Errorf("create chat: %w", err)
	}

	g.logger.Debug("gemini chat request",
		zap.Int("history_length", len(history)),
		zap.String("message_preview", utils.TruncateForLog(message, g.maxLogLen)),
	)

	resp, err := chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", fmt.Errorf("send chat message: %w", err)
	}

	return responseText(resp)
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func (g *Generator) generate(ctx context.Context, kind string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if g == nil || g.models == nil {
		return nil, errors.New("gemini generator is not initialized")
	}

	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	g.logger.Debug("gemini generate content request",
		zap.String("kind", kind),
		zap.Int("prompt_length", promptLength(contents)),
		zap.String("prompt_preview", utils.TruncateForLog(promptPreview(contents), g.maxLogLen)),
	)

	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	if g.logger.Core().Enabled(zap.DebugLevel) {
		text, _ := responseText(resp)
		g.logger.Debug("gemini generate content response",
			zap.String("kind", kind),
			zap.Int("response_length", utf8.RuneCountInString(text)),
			zap.String("response_preview", utils.TruncateForLog(text, g.maxLogLen)),
		)
	}

	return resp, nil
}

func (g *Generator) wait(ctx context.Context) error {
	if g.limiter == nil {
		return nil
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for gemini rate limiter: %w", err)
	}
	return nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ai.ErrEmptyResponse
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
		// Only the first candidate with content is used.
		if builder.Len() > 0 {
			break
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", ai.ErrEmptyResponse
	}

	return output, nil
}

func groundingSources(resp *genai.GenerateContentResponse) []ai.Source {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}

	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return nil
	}

	sources := make([]ai.Source, 0, len(meta.GroundingChunks))
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		sources = append(sources, ai.Source{
			Title: strings.TrimSpace(chunk.Web.Title),
			URI:   strings.TrimSpace(chunk.Web.URI),
		})
	}

	return sources
}

func toGenaiParts(parts []ai.Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, part := range parts {
		if part.IsBlob() {
			out = append(out, &genai.Part{InlineData: &genai.Blob{MIMEType: part.MIMEType, Data: part.Data}})
			continue
		}
		out = append(out, &genai.Part{Text: part.Text})
	}
	return out
}

func toGenaiHistory(history []ai.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			continue
		}
		role := string(genai.RoleUser)
		if msg.Role == ai.RoleModel {
			role = string(genai.RoleModel)
		}
		out = append(out, &genai.Content{Role: role, Parts: []*genai.Part{{Text: text}}})
	}
	return out
}

func promptLength(contents []*genai.Content) int {
	total := 0
	for _, content := range contents {
		if content == nil {
			continue
		}
		for _, part := range content.Parts {
			if part != nil {
				total += utf8.RuneCountInString(part.Text)
			}
		}
	}
	return total
}

func promptPreview(contents []*genai.Content) string {
	for _, content := range contents {
		if content == nil {
			continue
		}
		for _, part := range content.Parts {
			if part != nil && strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}
