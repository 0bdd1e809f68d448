package artifacts

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/jobnado/internal/opportunity"
	"github.com/spigell/jobnado/internal/profile"
)

const maxOutreachLength = 300

// Outreach writes a cold outreach note of at most 300 characters.
func (g *Generator) Outreach(ctx context.Context, job opportunity.Opportunity, analysis *profile.Analysis) string {
	prompt := fmt.Sprintf(outreachPrompt,
		job.Company,
		job.Title,
		strings.Join(analysis.TopHardSkills(3), ", "),
		job.Reasoning,
		experienceLevel(analysis),
	)

	return WithFallback(ctx, g.logger, "outreach", func(ctx context.Context) (string, error) {
		out, err := g.generate(ctx, "outreach", prompt)
		if err != nil {
			return "", err
		}
		return clip(out, maxOutreachLength), nil
	}, func() string {
		return fmt.Sprintf("I am writing to express my strong interest in the %s position. My background aligns perfectly with your needs.", job.Title)
	})
}

func experienceLevel(analysis *profile.Analysis) string {
	if analysis == nil || strings.TrimSpace(analysis.ExperienceLevel) == "" {
		return "Experienced"
	}
	return analysis.ExperienceLevel
}

// clip cuts s to limit runes, preferring the last word boundary.
func clip(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := string(runes[:limit])
	if idx := strings.LastIndexAny(cut, " \n"); idx > limit/2 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}
