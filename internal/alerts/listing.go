package alerts

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/jobnado/internal/opportunity"
)

var listingArray = regexp.MustCompile(`(?s)\[.*\]`)

// Listing is one job posting found for an alert.
type Listing struct {
	Title   string `json:"title"`
	Company string `json:"company"`
	URL     string `json:"url"`
}

// ParseListings extracts the JSON array from a search answer. Text without a
// decodable array yields a single generic search entry. An empty array yields
// no listings.
func ParseListings(text, role, country string) []Listing {
	raw := listingArray.FindString(text)
	if raw == "" {
		return []Listing{fallbackListing(role, country)}
	}

	listings, err := decodeListings(raw)
	if err != nil {
		return []Listing{fallbackListing(role, country)}
	}

	for i := range listings {
		listings[i].Title = strings.TrimSpace(listings[i].Title)
		listings[i].Company = strings.TrimSpace(listings[i].Company)
		listings[i].URL = strings.TrimSpace(listings[i].URL)

		if listings[i].Title == "" {
			listings[i].Title = role
		}
		if listings[i].URL == "" {
			listings[i].URL = opportunity.SearchURL(strings.TrimSpace(fmt.Sprintf("%s %s jobs in %s", listings[i].Title, listings[i].Company, country)))
		}
	}

	return listings
}

// decodeListings tolerates loosely typed items such as numeric titles.
func decodeListings(raw string) ([]Listing, error) {
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}

	listings := make([]Listing, 0, len(items))
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           &listings,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(items); err != nil {
		return nil, err
	}

	return listings, nil
}

func fallbackListing(role, country string) Listing {
	return Listing{
		Title:   role + " Opportunities",
		Company: "Various",
		URL:     opportunity.SearchURL(fmt.Sprintf("%s jobs in %s", role, country)),
	}
}
