// Package citations scans generated text for policy-document reference
// tokens and scrubs the ones that are not grounded in the context actually
// supplied for the turn.
package citations

import (
	"regexp"
	"strings"

	"github.com/shoplite/shoplite/api/pkg/models"
)

// tokenPattern is the citation token shape, e.g. [Returns1.1].
var tokenPattern = regexp.MustCompile(`\[[A-Z]\w*\d+\.\d+\]`)

// Token removal leaves double spaces and stray gaps before punctuation;
// these patterns clean them up without touching line structure.
var (
	spaceBeforePunct = regexp.MustCompile(`[ \t]+([.,!?;:])`)
	doubleSpace      = regexp.MustCompile(`[ \t]{2,}`)
)

// Validate classifies every citation token in text and strips the invalid
// ones. Only the policy-answering path may cite at all: for
// policy_question, a token is valid iff it matches one of expectedIDs (the
// documents placed into the composed context); for every other intent, any
// token is a hallucination. Returns the report and the cleaned text.
func Validate(text string, expectedIDs []string, intent models.Intent) (models.CitationReport, string) {
	report := models.CitationReport{IsValid: true, Valid: []string{}, Invalid: []string{}}

	tokens := tokenPattern.FindAllString(text, -1)
	if len(tokens) == 0 {
		return report, text
	}

	expected := make(map[string]bool, len(expectedIDs))
	if intent == models.IntentPolicyQuestion {
		for _, id := range expectedIDs {
			expected["["+id+"]"] = true
		}
	}

	for _, tok := range tokens {
		if expected[tok] {
			report.Valid = append(report.Valid, tok)
		} else {
			report.Invalid = append(report.Invalid, tok)
		}
	}
	report.IsValid = len(report.Invalid) == 0
	if report.IsValid {
		return report, text
	}

	cleaned := text
	for _, tok := range report.Invalid {
		cleaned = strings.ReplaceAll(cleaned, tok, "")
	}
	cleaned = spaceBeforePunct.ReplaceAllString(cleaned, "$1")
	cleaned = doubleSpace.ReplaceAllString(cleaned, " ")
	return report, strings.TrimSpace(cleaned)
}
