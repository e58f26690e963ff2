package processors

import (
	"strings"

	"github.com/username/ledgerlens/src/models"
	"github.com/username/ledgerlens/src/parsers"
)

// ledgerIndexExclusions lists section names that never contribute to
// the ledger category index: clearing and control accounts whose names
// say nothing about what a transaction was for.
var ledgerIndexExclusions = map[string]bool{
	"Transactions to be classified": true,
	"Settlements":                   true,
	"Cash control":                  true,
	"Unbilled revenue":              true,
	"Payable VAT":                   true,
	"Sales tax paid or received":    true,
	"Accounts receivable":           true,
}

// BuildLedgerIndex maps normalized transaction descriptions to the
// name of the ledger section they were first seen under. Bank sections
// and the exclusion set are skipped. First write wins, so an earlier
// section's label sticks even when the same description recurs later.
//
// The label is the section name truncated at its first '(' if present
// (the export appends account numbers in parentheses).
func BuildLedgerIndex(sections []models.Section, bankSectionPrefix string) map[string]string {
	index := make(map[string]string)
	for _, section := range sections {
		if strings.HasPrefix(section.Name, bankSectionPrefix) || ledgerIndexExclusions[section.Name] {
			continue
		}

		label := section.Name
		if i := strings.Index(label, "("); i >= 0 {
			label = strings.TrimSpace(label[:i])
		}

		for _, row := range parsers.TransactionRows(parsers.ParseRows(section)) {
			firstLine := strings.SplitN(row["Description"], "\n", 2)[0]
			key := NormalizeDescription(firstLine)
			if key == "" {
				continue
			}
			if _, seen := index[key]; !seen {
				index[key] = label
			}
		}
	}
	return index
}
