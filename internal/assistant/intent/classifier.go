// Package intent classifies free-text support queries into a closed intent
// set using an ordered keyword rule cascade. First match wins; there is no
// scoring. The precedence is fixed by the rules table below and pinned by
// tests, so overlapping keyword sets resolve deterministically.
package intent

import (
	"regexp"
	"strings"

	"github.com/shoplite/shoplite/api/pkg/models"
)

// Classification is the result of classifying one query. OrderID and
// SearchTerm are empty when not extracted.
type Classification struct {
	Intent     models.Intent
	OrderID    string
	SearchTerm string
}

// orderIDPattern matches a candidate order identifier: a long digit run or a
// 24-character hex token (the document-store id shape). The digit form is
// tried first by alternation order.
var orderIDPattern = regexp.MustCompile(`\b(\d{5,})\b|\b([a-f0-9]{24})\b`)

// Keyword tables. Single words are matched against whole tokens of the
// query; multi-word phrases are matched by substring. Violation tokens are
// the exception: they match by substring so inflected forms are caught.
var (
	violationKeywords = []string{
		"stupid", "idiot", "dumb", "useless", "garbage", "hate", "fuck", "shit",
	}

	// strongPolicyKeywords short-circuit to policy_question before the order
	// rules run, so "return my order" is a returns question, not a tracking
	// request.
	strongPolicyKeywords = []string{
		"return", "refund", "exchange", "warranty", "shipping policy", "privacy policy",
	}

	orderStatusKeywords = []string{
		"order status", "where is my order", "track my order", "track order",
		"where is my stuff", "my purchase", "my package", "delivery status",
	}

	orderCountKeywords = []string{
		"how many orders", "order count", "number of orders",
		"orders have i placed", "orders did i place",
	}

	lastOrderKeywords = []string{
		"last order", "most recent order", "latest order", "recent purchase",
	}

	spendingKeywords = []string{
		"total spend", "total spent", "spendings", "much have i spent",
		"total amount", "spent in total",
	}

	productCountKeywords = []string{
		"how many products", "total products", "number of products",
		"count items", "number of items",
	}

	accountKeywords = []string{
		"my account", "my details", "my address", "my email", "my phone",
	}

	// policyKeywords is the broad set guarded by the product-search check.
	// "stock" and "badge" are kept here even though they read product-centric;
	// the tables are the behavior.
	policyKeywords = []string{
		"policy", "how do i", "how to", "can i", "shipping", "payment",
		"warranty", "privacy", "account", "security", "taxes", "password",
		"stock", "badge",
	}

	productSearchKeywords = []string{
		"how much is", "do you sell", "do you have", "search for",
		"looking for", "find product", "show me", "i need", "price of",
		"find", "buy",
	}

	complaintKeywords = []string{
		"disappointed", "frustrated", "not happy", "unhappy", "complaint",
		"unacceptable", "terrible service", "angry", "broken", "not working",
		"wrong item", "damaged", "issue", "problem",
	}

	chitchatKeywords = []string{
		"hello", "hi", "hey", "thanks", "thank you", "who are you",
		"what is your name", "how are you", "good morning", "good afternoon",
		"good evening", "goodbye", "bye", "my name is",
	}
)

// terseFallbackMaxTokens bounds the short-query heuristic: an unmatched
// query of at most this many tokens is treated as a terse product lookup.
const terseFallbackMaxTokens = 6

// rule is one entry of the cascade. Evaluated top-down, first match wins.
type rule struct {
	name  string
	match func(q query) (Classification, bool)
}

// rules is the classifier precedence, a first-class ordered constant.
var rules = []rule{
	{"empty", func(q query) (Classification, bool) {
		if q.raw == "" {
			return Classification{Intent: models.IntentChitchat}, true
		}
		return Classification{}, false
	}},
	{"violation", func(q query) (Classification, bool) {
		for _, kw := range violationKeywords {
			if strings.Contains(q.raw, kw) {
				return Classification{Intent: models.IntentViolation}, true
			}
		}
		return Classification{}, false
	}},
	{"strong_policy", func(q query) (Classification, bool) {
		if q.matchesAny(strongPolicyKeywords) {
			return Classification{Intent: models.IntentPolicyQuestion}, true
		}
		return Classification{}, false
	}},
	{"order_status", func(q query) (Classification, bool) {
		id := extractOrderID(q.raw)
		if id != "" || q.matchesAny(orderStatusKeywords) {
			return Classification{Intent: models.IntentOrderStatus, OrderID: id}, true
		}
		return Classification{}, false
	}},
	{"order_count", func(q query) (Classification, bool) {
		if q.matchesAny(orderCountKeywords) {
			return Classification{Intent: models.IntentOrderCount}, true
		}
		return Classification{}, false
	}},
	{"last_order", func(q query) (Classification, bool) {
		if q.matchesAny(lastOrderKeywords) {
			return Classification{Intent: models.IntentLastOrder}, true
		}
		return Classification{}, false
	}},
	{"total_spendings", func(q query) (Classification, bool) {
		if q.matchesAny(spendingKeywords) || q.hasToken("spent") {
			return Classification{Intent: models.IntentTotalSpendings}, true
		}
		return Classification{}, false
	}},
	{"product_count", func(q query) (Classification, bool) {
		if q.matchesAny(productCountKeywords) {
			return Classification{Intent: models.IntentProductCount}, true
		}
		return Classification{}, false
	}},
	{"account_details", func(q query) (Classification, bool) {
		if q.matchesAny(accountKeywords) {
			return Classification{Intent: models.IntentAccountDetails}, true
		}
		return Classification{}, false
	}},
	{"policy_question", func(q query) (Classification, bool) {
		// The AND-NOT guard keeps "how much is X" out of the policy path.
		if q.matchesAny(policyKeywords) && !q.matchesAny(productSearchKeywords) {
			return Classification{Intent: models.IntentPolicyQuestion}, true
		}
		return Classification{}, false
	}},
	{"product_search", func(q query) (Classification, bool) {
		for _, kw := range productSearchKeywords {
			if q.matches(kw) {
				return Classification{
					Intent:     models.IntentProductSearch,
					SearchTerm: extractSearchTerm(q.raw, kw),
				}, true
			}
		}
		return Classification{}, false
	}},
	{"complaint", func(q query) (Classification, bool) {
		if q.matchesAny(complaintKeywords) {
			return Classification{Intent: models.IntentComplaint}, true
		}
		return Classification{}, false
	}},
	{"chitchat", func(q query) (Classification, bool) {
		if q.matchesAny(chitchatKeywords) {
			return Classification{Intent: models.IntentChitchat}, true
		}
		return Classification{}, false
	}},
	{"terse_fallback", func(q query) (Classification, bool) {
		if len(q.tokens) <= terseFallbackMaxTokens {
			return Classification{Intent: models.IntentProductSearch, SearchTerm: q.raw}, true
		}
		return Classification{}, false
	}},
	{"off_topic", func(q query) (Classification, bool) {
		return Classification{Intent: models.IntentOffTopic}, true
	}},
}

// Classify maps a raw query to an intent plus any extracted entities. Pure
// function; always returns a Classification with a non-empty Intent.
func Classify(raw string) Classification {
	q := newQuery(raw)
	for _, r := range rules {
		if c, ok := r.match(q); ok {
			return c
		}
	}
	// Unreachable: the off_topic rule always matches.
	return Classification{Intent: models.IntentOffTopic}
}

// query is the pre-tokenized, case-folded form a rule matches against.
type query struct {
	raw    string
	tokens map[string]bool
}

func newQuery(raw string) query {
	folded := strings.ToLower(strings.TrimSpace(raw))
	q := query{raw: folded, tokens: make(map[string]bool)}
	for _, tok := range strings.Fields(folded) {
		q.tokens[strings.Trim(tok, ".,!?;:'\"()")] = true
	}
	return q
}

// matches reports whether one keyword hits: phrases by substring, single
// words by whole-token membership (so "hi" does not match inside
// "shipping").
func (q query) matches(kw string) bool {
	if strings.Contains(kw, " ") {
		return strings.Contains(q.raw, kw)
	}
	return q.tokens[kw]
}

func (q query) matchesAny(kws []string) bool {
	for _, kw := range kws {
		if q.matches(kw) {
			return true
		}
	}
	return false
}

func (q query) hasToken(tok string) bool { return q.tokens[tok] }

// extractOrderID pulls a candidate order identifier out of the query, or ""
// if none is present.
func extractOrderID(q string) string {
	return orderIDPattern.FindString(q)
}

// extractSearchTerm removes the matched search keyword from the query and
// strips leading articles and trailing punctuation. Returns "" when nothing
// meaningful remains.
func extractSearchTerm(q, keyword string) string {
	term := strings.Replace(q, keyword, "", 1)
	term = strings.TrimSpace(term)
	for _, article := range []string{"a ", "an ", "the ", "some "} {
		if strings.HasPrefix(term, article) {
			term = strings.TrimSpace(strings.TrimPrefix(term, article))
			break
		}
	}
	term = strings.TrimRight(term, ".,!?;: ")
	return strings.TrimSpace(term)
}
