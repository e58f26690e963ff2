package processors

import (
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeDescription collapses all whitespace (including embedded
// newlines from multi-line statement text) into single spaces, trims,
// and lowercases. Every keyword and index lookup goes through this one
// function so matching behaves identically everywhere.
func NormalizeDescription(desc string) string {
	return strings.ToLower(strings.TrimSpace(whitespaceRe.ReplaceAllString(desc, " ")))
}

// Categorizer assigns business categories to bank transactions using
// an ordered keyword table with a ledger-section fallback.
type Categorizer struct {
	rules []CategoryRule
}

func NewCategorizer(rules []CategoryRule) *Categorizer {
	return &Categorizer{rules: rules}
}

// Categorize resolves a category for a transaction description.
// Keyword rules are checked first in table order. The ledger hint (the
// section name the description was first seen under in a non-bank
// ledger) is only a fallback: the keyword table encodes domain
// knowledge that overrides the bookkeeping software's own labeling.
func (c *Categorizer) Categorize(description, ledgerHint string) string {
	normalized := NormalizeDescription(description)

	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(normalized, keyword) {
				return rule.Category
			}
		}
	}

	if hint := strings.TrimSpace(ledgerHint); hint != "" {
		return normalizeLedgerHint(hint)
	}

	return "Uncategorized"
}

// normalizeLedgerHint folds the bookkeeping software's section names
// into the category vocabulary used by the keyword table. Unrecognized
// hints pass through verbatim.
func normalizeLedgerHint(hint string) string {
	lower := strings.ToLower(hint)
	switch {
	case strings.HasPrefix(lower, "bank charges"):
		return "Bank & Payment Fees"
	case strings.HasPrefix(lower, "payable vat"), strings.HasPrefix(lower, "sales tax"):
		return "Taxes & Accounting"
	case strings.HasPrefix(lower, "uncategorized income"), strings.HasPrefix(lower, "revenue"):
		return "Client Revenue"
	case strings.HasPrefix(lower, "office"), strings.Contains(lower, "meeting"):
		return "Office & Meetings"
	default:
		return hint
	}
}
