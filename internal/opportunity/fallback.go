package opportunity

import (
	"fmt"
	"strings"

	"github.com/spigell/jobnado/internal/profile"
)

const (
	fallbackSkill    = "your core skills"
	fallbackIndustry = "tech"
	fallbackSoft     = "collaboration"
	fallbackLevel    = "professional"
)

// Simulated returns the fixed set of 3 placeholder opportunities derived from the analysis.
// They point at job board searches rather than real postings.
func Simulated(analysis *profile.Analysis, role, country string) []Opportunity {
	skill := orDefault(analysis.FirstHardSkill(), fallbackSkill)
	industry := analysis.FirstAdjacentIndustry()
	soft := orDefault(analysis.FirstSoftSkill(), fallbackSoft)

	level := fallbackLevel
	if analysis != nil && strings.TrimSpace(analysis.ExperienceLevel) != "" {
		level = strings.TrimSpace(analysis.ExperienceLevel)
	}

	return []Opportunity{
		{
			ID:             "sim-1",
			Title:          role,
			Company:        "Confidential Tech Partner",
			MatchScore:     92,
			Reasoning:      fmt.Sprintf("Your experience with %s is in high demand for this role type in %s.", skill, country),
			ApplicationURL: linkedInSearchURL(role, country),
			IsSimulated:    true,
		},
		{
			ID:             "sim-2",
			Title:          role + " Lead",
			Company:        "Global Innovations Corp",
			MatchScore:     88,
			Reasoning:      fmt.Sprintf("Strong alignment with your background in %s.", orDefault(industry, fallbackIndustry)),
			ApplicationURL: indeedSearchURL(strings.TrimSpace(role+" "+industry), country),
			IsSimulated:    true,
		},
		{
			ID:             "sim-3",
			Title:          "Senior " + role,
			Company:        "Future Systems Ltd",
			MatchScore:     85,
			Reasoning:      fmt.Sprintf("Based on your %s level and soft skills in %s.", level, soft),
			ApplicationURL: googleJobsURL(fmt.Sprintf("Senior %s %s jobs", role, country)),
			IsSimulated:    true,
		},
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
