package artifacts

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/spigell/jobnado/internal/ai"
	"github.com/spigell/jobnado/internal/utils"
	"go.uber.org/zap"
)

const defaultMaxLogLength = 200

// Generator issues one model call per artifact, without retries.
type Generator struct {
	text      ai.TextGenerator
	chat      ai.ChatResponder
	logger    *zap.Logger
	maxLogLen int
}

func New(text ai.TextGenerator, chat ai.ChatResponder, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{text: text, chat: chat, logger: logger, maxLogLen: defaultMaxLogLength}
}

func (g *Generator) generate(ctx context.Context, name, prompt string) (string, error) {
	g.logger.Debug("artifact request",
		zap.String("artifact", name),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
	)

	out, err := g.text.GenerateText(ctx, prompt)
	if err != nil {
		return "", err
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", ai.ErrEmptyResponse
	}

	g.logger.Debug("artifact response",
		zap.String("artifact", name),
		zap.String("response_preview", utils.TruncateForLog(out, g.maxLogLen)),
	)

	return out, nil
}
