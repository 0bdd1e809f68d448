package opportunity

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	BlockDelimiter = "|||"
	minBlockLength = 10

	DefaultTitle   = "Opportunity"
	DefaultCompany = "Unknown Company"
	DefaultScore   = 75
	DefaultReason  = "Skills alignment detected."
)

var (
	titleRe   = regexp.MustCompile(`Title:\s*(.+)`)
	companyRe = regexp.MustCompile(`Company:\s*(.+)`)
	scoreRe   = regexp.MustCompile(`Score:\s*(\d+)`)
	reasonRe  = regexp.MustCompile(`Reason:\s*(.+)`)
)

// Block is one parsed job block with defaults applied to missing fields.
type Block struct {
	Title   string
	Company string
	Score   int
	Reason  string
}

// ParseBlocks reads the "|||"-delimited Title/Company/Score/Reason protocol.
// Segments of 10 characters or fewer are noise. It never fails.
func ParseBlocks(text string) []Block {
	segments := strings.Split(text, BlockDelimiter)
	blocks := make([]Block, 0, len(segments))

	for _, segment := range segments {
		if utf8.RuneCountInString(strings.TrimSpace(segment)) <= minBlockLength {
			continue
		}
		blocks = append(blocks, parseBlock(segment))
	}

	return blocks
}

func parseBlock(segment string) Block {
	block := Block{
		Title:   firstMatch(titleRe, segment),
		Company: firstMatch(companyRe, segment),
		Score:   DefaultScore,
		Reason:  firstMatch(reasonRe, segment),
	}

	if block.Title == "" {
		block.Title = DefaultTitle
	}
	if block.Company == "" {
		block.Company = DefaultCompany
	}
	if block.Reason == "" {
		block.Reason = DefaultReason
	}

	if raw := firstMatch(scoreRe, segment); raw != "" {
		if score, err := strconv.Atoi(raw); err == nil {
			block.Score = score
		}
	}

	return block
}

func firstMatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
