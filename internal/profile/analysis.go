// Package profile turns a raw CV into a structured candidate analysis.
package profile

import (
	"strings"

	"github.com/spigell/jobnado/internal/ai"
)

// BooleanSearch is a ready-to-paste query for job board search bars.
type BooleanSearch struct {
	Label       string `json:"label"`
	Query       string `json:"query"`
	Explanation string `json:"explanation"`
}

// Analysis is the structured view of a CV. SuggestedRoles is never empty on success.
type Analysis struct {
	HardSkills         []string        `json:"hardSkills"`
	SoftSkills         []string        `json:"softSkills"`
	ExperienceLevel    string          `json:"experienceLevel"`
	SuggestedRoles     []string        `json:"suggestedRoles"`
	AdjacentIndustries []string        `json:"adjacentIndustries"`
	BooleanSearches    []BooleanSearch `json:"antigravityBooleanStrings"`
}

// PrimaryRole returns the first suggested role or "".
func (a *Analysis) PrimaryRole() string {
	if a == nil {
		return ""
	}
	for _, role := range a.SuggestedRoles {
		if role = strings.TrimSpace(role); role != "" {
			return role
		}
	}
	return ""
}

// TopHardSkills returns at most n hard skills.
func (a *Analysis) TopHardSkills(n int) []string {
	if a == nil || n <= 0 {
		return nil
	}
	if len(a.HardSkills) <= n {
		return a.HardSkills
	}
	return a.HardSkills[:n]
}

func first(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func (a *Analysis) FirstHardSkill() string {
	if a == nil {
		return ""
	}
	return first(a.HardSkills)
}

func (a *Analysis) FirstSoftSkill() string {
	if a == nil {
		return ""
	}
	return first(a.SoftSkills)
}

func (a *Analysis) FirstAdjacentIndustry() string {
	if a == nil {
		return ""
	}
	return first(a.AdjacentIndustries)
}

var stringList = &ai.Schema{Type: ai.TypeArray, Items: &ai.Schema{Type: ai.TypeString}}

var analysisSchema = &ai.Schema{
	Type: ai.TypeObject,
	Properties: map[string]*ai.Schema{
		"hardSkills":      stringList,
		"softSkills":      stringList,
		"experienceLevel": {Type: ai.TypeString},
		"suggestedRoles": {
			Type:     ai.TypeArray,
			Items:    &ai.Schema{Type: ai.TypeString},
			MinItems: 1,
		},
		"adjacentIndustries": stringList,
		"antigravityBooleanStrings": {
			Type: ai.TypeArray,
			Items: &ai.Schema{
				Type: ai.TypeObject,
				Properties: map[string]*ai.Schema{
					"label":       {Type: ai.TypeString, Description: "Short name for this search strategy"},
					"query":       {Type: ai.TypeString, Description: "The boolean search string"},
					"explanation": {Type: ai.TypeString, Description: "Why this strategy works"},
				},
				Required: []string{"label", "query", "explanation"},
			},
		},
	},
	Required: []string{"hardSkills", "softSkills", "experienceLevel", "suggestedRoles", "antigravityBooleanStrings"},
}
