package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/username/ledgerlens/src/models"
)

const testBankPrefix = "Bunq NL75BUNQ"

func ledgerSection(name string, rows ...string) models.Section {
	lines := []string{name + ",,,,", "Date,Reference,Description,VAT,Amount"}
	lines = append(lines, rows...)
	return models.Section{Name: name, Lines: lines}
}

func TestBuildLedgerIndex(t *testing.T) {
	sections := []models.Section{
		ledgerSection("Bank charges (4000)",
			"2025-07-02,TRA Bunq,bunq BV invoice,,-13.99"),
		ledgerSection("Revenue (8000)",
			"2025-05-01,INV 2025-0006,Consulting work,,8470"),
	}

	index := BuildLedgerIndex(sections, testBankPrefix)
	assert.Equal(t, "Bank charges", index["bunq bv invoice"])
	assert.Equal(t, "Revenue", index["consulting work"])
}

func TestBuildLedgerIndexSkipsBankAndExcluded(t *testing.T) {
	sections := []models.Section{
		ledgerSection("Bunq NL75BUNQ2145840184 (10201)",
			"2025-07-02,TRA Bunq,bank side entry,,-13.99"),
		ledgerSection("Accounts receivable",
			"2025-05-01,INV 2025-0006,receivable side entry,,8470"),
		ledgerSection("Payable VAT",
			"2025-06-01,TRA Bunq,vat entry,,-100"),
	}

	index := BuildLedgerIndex(sections, testBankPrefix)
	assert.Empty(t, index)
}

func TestBuildLedgerIndexFirstWriteWins(t *testing.T) {
	sections := []models.Section{
		ledgerSection("Bank charges (4000)",
			"2025-07-02,TRA Bunq,bunq BV invoice,,-13.99"),
		ledgerSection("Office expenses (4100)",
			"2025-07-03,TRA Bunq,bunq BV invoice,,-13.99"),
	}

	index := BuildLedgerIndex(sections, testBankPrefix)
	assert.Equal(t, "Bank charges", index["bunq bv invoice"])
}

func TestBuildLedgerIndexUsesFirstDescriptionLine(t *testing.T) {
	sections := []models.Section{
		ledgerSection("Software (4200)",
			`2025-07-06,TRA Bunq,"CURSOR USAGE  JUN`+"\n"+`CURSOR USAGE  JUN NEW YORK, US",,-0.51`),
	}

	index := BuildLedgerIndex(sections, testBankPrefix)
	assert.Equal(t, "Software", index["cursor usage jun"])
}
