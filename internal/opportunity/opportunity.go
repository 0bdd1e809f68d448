// Package opportunity finds live job postings for an analyzed profile.
package opportunity

// Opportunity is a single job posting. IDs are unique only within one search batch.
type Opportunity struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Company        string `json:"company"`
	MatchScore     int    `json:"matchScore"`
	Reasoning      string `json:"reasoning"`
	ApplicationURL string `json:"applicationUrl,omitempty"`
	IsSimulated    bool   `json:"isSimulated"`
}
