package opportunity

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/jobnado/internal/ai"
	"github.com/spigell/jobnado/internal/profile"
	"github.com/spigell/jobnado/internal/retry"
	"go.uber.org/zap"
)

const topSkills = 5

//go:embed prompt.md
var promptTemplate string

// DefaultPolicy makes 3 attempts waiting 1s then 2s.
func DefaultPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, Backoff: retry.Linear(time.Second)}
}

// FastPolicy makes 2 attempts back to back to bound total latency.
func FastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 2, Backoff: retry.None()}
}

type Searcher struct {
	client ai.GroundedSearcher
	policy retry.Policy
	logger *zap.Logger
	now    func() time.Time
}

func NewSearcher(client ai.GroundedSearcher, policy retry.Policy, logger *zap.Logger) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{client: client, policy: policy, logger: logger, now: time.Now}
}

// Search returns opportunities for the role in country. role defaults to the
// analysis primary role. It never fails: when the grounded search is unusable
// the simulated set is returned.
func (s *Searcher) Search(ctx context.Context, analysis *profile.Analysis, country, role string) []Opportunity {
	role = strings.TrimSpace(role)
	if role == "" {
		role = analysis.PrimaryRole()
	}
	country = strings.TrimSpace(country)

	log := s.logger.With(zap.String("role", role), zap.String("country", country))
	log.Info("searching opportunities")

	prompt := BuildPrompt(analysis, role, country)

	result, err := retry.Do(ctx, log, s.policy, func(ctx context.Context) (*ai.GroundedResult, error) {
		return s.client.SearchGrounded(ctx, prompt)
	})
	if err != nil {
		log.Warn("grounded search failed, using simulated opportunities", zap.Error(err))
		return Simulated(analysis, role, country)
	}

	opportunities := s.fromResult(result, country)
	if len(opportunities) == 0 {
		log.Warn("no job blocks parsed, using simulated opportunities")
		return Simulated(analysis, role, country)
	}

	log.Info("opportunities found",
		zap.Int("count", len(opportunities)),
		zap.Int("sources", len(result.Sources)),
	)

	return opportunities
}

func (s *Searcher) fromResult(result *ai.GroundedResult, country string) []Opportunity {
	if result == nil {
		return nil
	}

	blocks := ParseBlocks(result.Text)
	stamp := s.now().UnixMilli()

	opportunities := make([]Opportunity, 0, len(blocks))
	for i, block := range blocks {
		opportunities = append(opportunities, Opportunity{
			ID:             fmt.Sprintf("job-%d-%d", i, stamp),
			Title:          block.Title,
			Company:        block.Company,
			MatchScore:     block.Score,
			Reasoning:      block.Reason,
			ApplicationURL: ResolveURL(block, country, result.Sources),
		})
	}

	return opportunities
}

// BuildPrompt renders the search instruction for role and country.
func BuildPrompt(analysis *profile.Analysis, role, country string) string {
	level := ""
	if analysis != nil {
		level = analysis.ExperienceLevel
	}

	return strings.NewReplacer(
		"{{ROLE}}", role,
		"{{SKILLS}}", strings.Join(analysis.TopHardSkills(topSkills), ", "),
		"{{LEVEL}}", level,
		"{{COUNTRY}}", country,
	).Replace(promptTemplate)
}
