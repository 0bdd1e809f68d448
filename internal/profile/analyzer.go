package profile

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spigell/jobnado/internal/ai"
	"github.com/spigell/jobnado/internal/retry"
	"go.uber.org/zap"
)

// MaxTextLength is the number of characters of CV text sent for analysis.
const MaxTextLength = 40000

var (
	ErrEmptyInput     = errors.New("cv input is empty")
	ErrAnalysisFailed = errors.New("cv analysis failed")
)

//go:embed prompt.md
var instruction string

// Image is a CV provided as a picture or scan.
type Image struct {
	MIMEType string
	Data     []byte
}

// Input is either CV text or a CV image.
type Input struct {
	Text  string
	Image *Image
}

func TextInput(text string) Input {
	return Input{Text: text}
}

func ImageInput(mimeType string, data []byte) Input {
	return Input{Image: &Image{MIMEType: mimeType, Data: data}}
}

// DefaultPolicy makes 3 attempts waiting 1s then 2s.
func DefaultPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, Backoff: retry.Linear(time.Second)}
}

type Analyzer struct {
	generator ai.StructuredGenerator
	policy    retry.Policy
	logger    *zap.Logger
}

func NewAnalyzer(generator ai.StructuredGenerator, policy retry.Policy, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{generator: generator, policy: policy, logger: logger}
}

// Analyze extracts a structured profile from the CV. Errors returned after the
// retries are exhausted match both ErrAnalysisFailed and the last underlying error.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (*Analysis, error) {
	parts, err := buildParts(in)
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{zap.Bool("image", in.Image != nil)}
	if in.Image == nil {
		fields = append(fields, zap.Int("text_length", utf8.RuneCountInString(in.Text)))
	}
	a.logger.Info("analyzing cv", fields...)

	analysis, err := retry.Do(ctx, a.logger, a.policy, func(ctx context.Context) (*Analysis, error) {
		return ai.Generate[*Analysis](ctx, a.generator, parts, analysisSchema)
	})
	if err != nil {
		a.logger.Error("cv analysis failed after retries", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	if analysis == nil || analysis.PrimaryRole() == "" {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, &ai.SchemaViolationError{Err: errors.New("no suggested roles")})
	}

	a.logger.Info("cv analysis complete",
		zap.Int("hard_skills", len(analysis.HardSkills)),
		zap.Strings("suggested_roles", analysis.SuggestedRoles),
		zap.String("experience_level", analysis.ExperienceLevel),
	)

	return analysis, nil
}

func buildParts(in Input) ([]ai.Part, error) {
	if in.Image != nil {
		if len(in.Image.Data) == 0 {
			return nil, ErrEmptyInput
		}
		mimeType := strings.TrimSpace(in.Image.MIMEType)
		if mimeType == "" {
			mimeType = http.DetectContentType(in.Image.Data)
		}
		return []ai.Part{
			ai.TextPart(instruction),
			ai.BlobPart(mimeType, in.Image.Data),
		}, nil
	}

	if strings.TrimSpace(in.Text) == "" {
		return nil, ErrEmptyInput
	}

	return []ai.Part{
		ai.TextPart(instruction),
		ai.TextPart("CV TEXT:\n" + Truncate(in.Text, MaxTextLength)),
	}, nil
}

// Truncate cuts s to at most limit characters.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
