package opportunity

import (
	"net/url"
	"strings"

	"github.com/spigell/jobnado/internal/ai"
)

const minCompanyMatchLength = 2

// SearchURL builds a general web search link.
func SearchURL(query string) string {
	return "https://www.google.com/search?q=" + url.QueryEscape(query)
}

// ResolveURL picks the application link for a block: the first grounding source whose
// title mentions the company, or a synthesized search link.
func ResolveURL(block Block, country string, sources []ai.Source) string {
	if uri, ok := matchSource(block.Company, sources); ok {
		return uri
	}
	return SearchURL(strings.Join([]string{block.Title, block.Company, "job apply", country}, " "))
}

func matchSource(company string, sources []ai.Source) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(company))
	if len([]rune(name)) <= minCompanyMatchLength {
		return "", false
	}

	for _, src := range sources {
		if src.URI == "" {
			continue
		}
		if strings.Contains(strings.ToLower(src.Title), name) {
			return src.URI, true
		}
	}

	return "", false
}

func linkedInSearchURL(keywords, location string) string {
	q := url.Values{}
	q.Set("keywords", keywords)
	q.Set("location", location)
	return "https://www.linkedin.com/jobs/search/?" + q.Encode()
}

func indeedSearchURL(query, location string) string {
	q := url.Values{}
	q.Set("q", query)
	q.Set("l", location)
	return "https://www.indeed.com/jobs?" + q.Encode()
}

func googleJobsURL(query string) string {
	return "https://www.google.com/search?ibp=htl;jobs&q=" + url.QueryEscape(query)
}
