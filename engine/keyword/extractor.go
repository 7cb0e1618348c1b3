// Package keyword infers a candidate (make, model) pair from free-text
// query strings. The extractor is a heuristic over a fixed vocabulary, not a
// classifier, and is deliberately swappable behind the Extractor interface.
package keyword

import (
	"regexp"
	"strings"

	"github.com/usedlot/carsearch/engine/domain"
)

// Extractor derives a candidate make and model from a query string.
// Either result may be empty. Implementations must be pure.
type Extractor interface {
	Extract(query string) (make_, model string)
}

// tokenRe matches maximal contiguous alphanumeric runs.
var tokenRe = regexp.MustCompile(`[A-Z0-9]+`)

// VocabExtractor scans domain.KnownMakes in order and takes the longest
// remaining alphanumeric run as the model.
type VocabExtractor struct {
	makes []string
}

// NewVocabExtractor returns an extractor over the fixed make vocabulary.
func NewVocabExtractor() *VocabExtractor {
	return &VocabExtractor{makes: domain.KnownMakes}
}

// Extract returns the first make found in the query and the longest
// alphanumeric run left after the make and all hyphens are removed.
// Pure 4-digit numeric runs are treated as years, never models. Results are
// uppercase; empty strings mean nothing was found.
func (e *VocabExtractor) Extract(query string) (string, string) {
	upper := strings.ToUpper(query)
	if strings.TrimSpace(upper) == "" {
		return "", ""
	}

	var make_ string
	for _, m := range e.makes {
		if strings.Contains(upper, m) {
			make_ = m
			break
		}
	}

	rest := upper
	if make_ != "" {
		rest = strings.ReplaceAll(rest, make_, "")
		rest = strings.ReplaceAll(rest, "-", "")
		rest = strings.TrimSpace(rest)
	}

	model := ""
	for _, tok := range tokenRe.FindAllString(rest, -1) {
		if isYearToken(tok) {
			continue
		}
		if len(tok) > len(model) {
			model = tok
		}
	}

	return make_, model
}

// isYearToken reports whether tok is purely numeric and exactly 4 digits.
func isYearToken(tok string) bool {
	if len(tok) != 4 {
		return false
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
