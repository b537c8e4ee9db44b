package detection

import (
	"regexp"
	"sort"
	"strings"

	"honeypot-lab/internal/domain/models"
)

// Extractor pulls candidate financial and contact artifacts out of a message.
// It favours recall and performs no validation of what it finds.
type Extractor struct {
	patterns map[models.IntelCategory]*regexp.Regexp
}

// NewExtractor creates an extractor over the structured patterns
func NewExtractor() *Extractor {
	return &Extractor{
		patterns: map[models.IntelCategory]*regexp.Regexp{
			models.IntelBankAccounts: AccountPattern,
			models.IntelIFSCCodes:    IFSCPattern,
			models.IntelUPIIDs:       UPIPattern,
			models.IntelURLs:         URLPattern,
			models.IntelEmails:       EmailPattern,
			models.IntelPhones:       PhonePattern,
		},
	}
}

// Extract applies every pattern independently to the untrimmed text
func (e *Extractor) Extract(text string) models.ExtractedIntel {
	intel := models.NewExtractedIntel()
	for _, category := range models.IntelCategories {
		matches := e.patterns[category].FindAllString(text, -1)
		if category == models.IntelURLs {
			for i, m := range matches {
				matches[i] = trimURL(m)
			}
		}
		intel.Set(category, uniqueSorted(matches))
	}
	return intel
}

// trimURL drops trailing punctuation. A closing paren is dropped only when it
// has no opening partner inside the URL, so "a_(b)" survives but "(see x)" does not.
func trimURL(u string) string {
	for {
		trimmed := strings.TrimRight(u, urlTrailing)
		if strings.HasSuffix(trimmed, ")") && strings.Count(trimmed, "(") < strings.Count(trimmed, ")") {
			trimmed = trimmed[:len(trimmed)-1]
		}
		if trimmed == u {
			return u
		}
		u = trimmed
	}
}

// uniqueSorted returns the distinct values in lexicographic order, never nil
func uniqueSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
