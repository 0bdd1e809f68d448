package artifacts

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/jobnado/internal/ai"
	"github.com/spigell/jobnado/internal/opportunity"
	"github.com/spigell/jobnado/internal/profile"
)

const chatFallback = "I encountered a glitch in the matrix. Please try again."

// CoverLetter writes a 250 to 300 word cover letter.
func (g *Generator) CoverLetter(ctx context.Context, job opportunity.Opportunity, analysis *profile.Analysis) string {
	var hard, soft []string
	if analysis != nil {
		hard = analysis.TopHardSkills(6)
		soft = analysis.SoftSkills
	}

	prompt := fmt.Sprintf(coverLetterPrompt,
		job.Title,
		job.Company,
		experienceLevel(analysis),
		strings.Join(hard, ", "),
		strings.Join(soft, ", "),
		job.Reasoning,
		job.Company,
	)

	return WithFallback(ctx, g.logger, "cover_letter", func(ctx context.Context) (string, error) {
		return g.generate(ctx, "cover_letter", prompt)
	}, func() string {
		return fmt.Sprintf("Dear Hiring Manager,\n\n"+
			"We're sorry, your cover letter for the %s role at %s could not be generated right now. "+
			"Please try again in a moment.\n\n"+
			"(Note: automatic cover letter generation failed.)", job.Title, job.Company)
	})
}

// AlertConfirmation writes a short confirmation for a new alert subscription.
func (g *Generator) AlertConfirmation(ctx context.Context, role, country, email string) string {
	prompt := fmt.Sprintf(alertConfirmationPrompt, role, country, email)

	return WithFallback(ctx, g.logger, "alert_confirmation", func(ctx context.Context) (string, error) {
		return g.generate(ctx, "alert_confirmation", prompt)
	}, func() string {
		return fmt.Sprintf("Radar active. Scanning for %s in %s. Reports will be sent to %s.", role, country, email)
	})
}

// Chat answers a career question given the previous conversation.
func (g *Generator) Chat(ctx context.Context, history []ai.Message, message string) string {
	return WithFallback(ctx, g.logger, "chat", func(ctx context.Context) (string, error) {
		if g.chat == nil {
			return "", fmt.Errorf("chat is not configured")
		}
		return g.chat.Chat(ctx, chatSystemInstruction, history, message)
	}, func() string {
		return chatFallback
	})
}
