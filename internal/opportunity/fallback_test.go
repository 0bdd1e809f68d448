package opportunity

import (
	"strings"
	"testing"

	"github.com/spigell/jobnado/internal/profile"
)

func TestSimulated(t *testing.T) {
	analysis := &profile.Analysis{
		HardSkills:         []string{"Python"},
		SoftSkills:         []string{"Mentoring"},
		ExperienceLevel:    "Senior",
		SuggestedRoles:     []string{"Data Engineer"},
		AdjacentIndustries: []string{"Healthcare"},
	}

	got := Simulated(analysis, "Data Engineer", "Canada")
	if len(got) != 3 {
		t.Fatalf("expected 3 simulated opportunities, got %d", len(got))
	}

	for i, opp := range got {
		if !opp.IsSimulated {
			t.Fatalf("opportunity %d must be simulated", i)
		}
	}

	checks := []struct {
		id, title, company, urlPrefix, reason string
		score                                 int
	}{
		{"sim-1", "Data Engineer", "Confidential Tech Partner", "https://www.linkedin.com/jobs/search/?", "Python", 92},
		{"sim-2", "Data Engineer Lead", "Global Innovations Corp", "https://www.indeed.com/jobs?", "Healthcare", 88},
		{"sim-3", "Senior Data Engineer", "Future Systems Ltd", "https://www.google.com/search?ibp=htl;jobs&q=", "Mentoring", 85},
	}

	for i, want := range checks {
		opp := got[i]
		if opp.ID != want.id || opp.Title != want.title || opp.Company != want.company || opp.MatchScore != want.score {
			t.Fatalf("opportunity %d: unexpected %+v", i, opp)
		}
		if !strings.HasPrefix(opp.ApplicationURL, want.urlPrefix) {
			t.Fatalf("opportunity %d: unexpected url %q", i, opp.ApplicationURL)
		}
		if !strings.Contains(opp.Reasoning, want.reason) {
			t.Fatalf("opportunity %d: reasoning %q should mention %q", i, opp.Reasoning, want.reason)
		}
	}

	if !strings.Contains(got[0].ApplicationURL, "location=Canada") {
		t.Fatalf("linkedin url should carry the location: %q", got[0].ApplicationURL)
	}

	if !strings.Contains(got[2].Reasoning, "Senior level") {
		t.Fatalf("sim-3 should mention experience level: %q", got[2].Reasoning)
	}
}

func TestSimulatedWithSparseAnalysis(t *testing.T) {
	got := Simulated(&profile.Analysis{}, "Designer", "Spain")

	if !strings.Contains(got[1].Reasoning, "tech") {
		t.Fatalf("expected tech default industry, got %q", got[1].Reasoning)
	}

	for _, opp := range got {
		if strings.Contains(opp.Reasoning, "  ") || opp.ApplicationURL == "" {
			t.Fatalf("unexpected opportunity for sparse analysis: %+v", opp)
		}
	}

	if got := Simulated(nil, "Designer", "Spain"); len(got) != 3 {
		t.Fatalf("nil analysis must still produce 3 results, got %d", len(got))
	}
}
