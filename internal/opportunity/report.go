package opportunity

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// ReportByCompany groups opportunities by company for a quick terminal overview.
func ReportByCompany(opps []Opportunity) map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, o := range opps {
		key := o.Company
		if key == "" {
			key = "Unknown company"
		}
		entry := map[string]string{
			"id":        o.ID,
			"title":     o.Title,
			"url":       o.ApplicationURL,
			"score":     strconv.Itoa(o.MatchScore),
			"reasoning": o.Reasoning,
		}
		if o.IsSimulated {
			entry["simulated"] = "true"
		}
		report[key] = append(report[key], entry)
	}
	return report
}

// DumpToTmpFile writes the opportunities as indented JSON into a new temp file and returns its name.
func DumpToTmpFile(opps []Opportunity) (string, error) {
	file, err := os.CreateTemp("", "opportunities_*.json")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(opps); err != nil {
		return "", fmt.Errorf("encode opportunities: %w", err)
	}

	return file.Name(), nil
}
