// Package knowledge is the static policy knowledge base: a read-only
// document set loaded once at startup, matched against queries by a coarse
// keyword-to-category lookup. It deliberately returns every document in the
// matched category rather than a ranked top-k; precision is deferred to the
// citation validator downstream.
package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shoplite/shoplite/api/pkg/models"
)

// categoryRule maps one category to its trigger keywords. Rules are tested
// in order; the first category with a keyword hit wins.
type categoryRule struct {
	category string
	keywords []string
}

var categoryRules = []categoryRule{
	{"returns", []string{"return", "refund", "exchange", "rma"}},
	{"shipping", []string{"shipping", "delivery", "track", "courier"}},
	{"payment", []string{"payment", "pay", "card", "paypal", "credit"}},
	{"security", []string{"secure", "privacy", "password", "gdpr"}},
	{"account", []string{"account", "profile", "email", "register"}},
}

// genericPhrases trigger the fallback subset when the query reads like a
// policy question but names no category.
var genericPhrases = []string{"how do i", "what is", "how can i", "what are"}

// fallbackCategories is the default subset served for generic phrasing.
var fallbackCategories = []string{"returns", "shipping"}

// Base holds the loaded policy documents.
type Base struct {
	docs []models.PolicyDoc
}

// Load reads and validates the knowledge base file. A missing or malformed
// file is a startup failure.
func Load(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}
	var docs []models.PolicyDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("knowledge base %s: no documents", path)
	}
	for i, d := range docs {
		if d.ID == "" || d.Category == "" || d.Answer == "" {
			return nil, fmt.Errorf("knowledge base %s: document %d missing id, category, or answer", path, i)
		}
	}
	return &Base{docs: docs}, nil
}

// NewBase wraps an already-built document set. Used by tests to inject
// fixtures.
func NewBase(docs []models.PolicyDoc) *Base {
	return &Base{docs: docs}
}

// Docs returns the full document set.
func (b *Base) Docs() []models.PolicyDoc {
	return b.docs
}

// FindRelevant returns every document of the first category whose keywords
// match the query, the generic fallback subset for unspecific policy
// phrasing, or nil when nothing matches.
func (b *Base) FindRelevant(query string) []models.PolicyDoc {
	q := strings.ToLower(query)

	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(q, kw) {
				return b.byCategory(rule.category)
			}
		}
	}

	for _, phrase := range genericPhrases {
		if strings.Contains(q, phrase) {
			var docs []models.PolicyDoc
			for _, cat := range fallbackCategories {
				docs = append(docs, b.byCategory(cat)...)
			}
			return docs
		}
	}
	return nil
}

func (b *Base) byCategory(category string) []models.PolicyDoc {
	var out []models.PolicyDoc
	for _, d := range b.docs {
		if strings.EqualFold(d.Category, category) {
			out = append(out, d)
		}
	}
	return out
}
