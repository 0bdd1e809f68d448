package artifacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spigell/jobnado/internal/ai"
	"github.com/spigell/jobnado/internal/opportunity"
	"github.com/spigell/jobnado/internal/profile"
)

const questionCount = 5

// Evaluation scores an interview answer.
type Evaluation struct {
	Score          int    `json:"score"`
	Feedback       string `json:"feedback"`
	ImprovedAnswer string `json:"improvedAnswer"`
}

// InterviewQuestions returns exactly 5 likely interview questions for job.
func (g *Generator) InterviewQuestions(ctx context.Context, job opportunity.Opportunity, analysis *profile.Analysis) []string {
	prompt := fmt.Sprintf(interviewQuestionsPrompt,
		job.Title,
		job.Company,
		experienceLevel(analysis),
		strings.Join(analysis.TopHardSkills(5), ", "),
	)

	return WithFallback(ctx, g.logger, "interview_questions", func(ctx context.Context) ([]string, error) {
		out, err := g.generate(ctx, "interview_questions", prompt)
		if err != nil {
			return nil, err
		}
		return parseQuestions(out)
	}, func() []string {
		return fallbackQuestions(job, analysis)
	})
}

// EvaluateAnswer grades answer to question.
func (g *Generator) EvaluateAnswer(ctx context.Context, question, answer string) Evaluation {
	prompt := fmt.Sprintf(evaluationPrompt, strings.TrimSpace(question), strings.TrimSpace(answer))

	return WithFallback(ctx, g.logger, "answer_evaluation", func(ctx context.Context) (Evaluation, error) {
		if strings.TrimSpace(answer) == "" {
			return Evaluation{}, errors.New("answer is empty")
		}
		out, err := g.generate(ctx, "answer_evaluation", prompt)
		if err != nil {
			return Evaluation{}, err
		}
		return parseEvaluation(out)
	}, fallbackEvaluation)
}

func parseQuestions(raw string) ([]string, error) {
	cleaned := ai.ExtractJSON(raw)
	if !strings.HasPrefix(cleaned, "[") {
		cleaned = ai.ExtractDelimited(cleaned, '[', ']')
	}

	var items []any
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, &ai.SchemaViolationError{Raw: raw, Err: err}
	}

	questions := make([]string, 0, questionCount)
	for _, item := range items {
		if q := ai.CoerceString(item); q != "" {
			questions = append(questions, q)
		}
		if len(questions) == questionCount {
			break
		}
	}

	if len(questions) < questionCount {
		return nil, &ai.SchemaViolationError{Raw: raw, Err: fmt.Errorf("expected %d questions, got %d", questionCount, len(questions))}
	}

	return questions, nil
}

func parseEvaluation(raw string) (Evaluation, error) {
	cleaned := ai.ExtractJSON(raw)
	if !strings.HasPrefix(cleaned, "{") {
		cleaned = ai.ExtractDelimited(cleaned, '{', '}')
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return Evaluation{}, &ai.SchemaViolationError{Raw: raw, Err: err}
	}

	score := ai.CoerceFloat(data["score"])
	if math.IsNaN(score) {
		return Evaluation{}, &ai.SchemaViolationError{Raw: raw, Err: errors.New("score is not a number")}
	}

	eval := Evaluation{
		Score:          int(math.Round(math.Max(0, math.Min(100, score)))),
		Feedback:       ai.CoerceString(data["feedback"]),
		ImprovedAnswer: ai.CoerceString(data["improvedAnswer"]),
	}

	if eval.Feedback == "" && eval.ImprovedAnswer == "" {
		return Evaluation{}, &ai.SchemaViolationError{Raw: raw, Err: errors.New("feedback is missing")}
	}

	return eval, nil
}

func fallbackQuestions(job opportunity.Opportunity, analysis *profile.Analysis) []string {
	skill := analysis.FirstHardSkill()
	if skill == "" {
		skill = "your core skills"
	}

	return []string{
		fmt.Sprintf("Tell me about yourself and why you are interested in the %s role at %s.", job.Title, job.Company),
		fmt.Sprintf("Describe a challenging project where you relied on %s. What was the outcome?", skill),
		"How do you prioritize your work when several deadlines collide?",
		"Tell me about a time you had to learn something new quickly to solve a problem.",
		fmt.Sprintf("Where do you see yourself growing at %s over the next few years?", job.Company),
	}
}

func fallbackEvaluation() Evaluation {
	return Evaluation{
		Score:          75,
		Feedback:       "Solid answer overall. Add more concrete detail about your own contribution and the measurable results you achieved.",
		ImprovedAnswer: "Try restructuring your answer with the STAR method: describe the Situation, the Task you owned, the Action you took and the Result you delivered, ideally with a number.",
	}
}
