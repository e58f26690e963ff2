package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSectionHeader(t *testing.T) {
	tests := []struct {
		name string
		line string
		want bool
	}{
		{"plain section header", "Accounts receivable,,,,", true},
		{"header with account number", "Revenue (8000),,,,", true},
		{"total row with value", "Total,,,,5324", false},
		{"bare total row", "Total,,,,", false},
		{"transaction row", "2025-07-02,INV 2025-0009 - RebelsAI B.V.,2025-0009,,5324", false},
		{"column header row", "Date,Reference,Description,VAT,Amount", false},
		{"empty name", ",,,,", false},
		{"too few fields", "Revenue,,,", false},
		{"too many fields", "Revenue,,,,,", false},
		{"value in trailing field", "Revenue,,,,100", false},
		{"empty line", "", false},
		{"name starting with digit", "2025 summary,,,,", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSectionHeader(tt.line))
		})
	}
}

func TestSplitSections(t *testing.T) {
	raw := "Some export preamble\n" +
		"Revenue (8000),,,,\n" +
		"Date,Reference,Description,VAT,Amount\n" +
		"2025-05-01,INV 2025-0006 - Medio Zorg B.V.,Consulting work,,8470\n" +
		"Bank charges (4000),,,,\n" +
		"Date,Reference,Description,VAT,Amount\n" +
		"2025-05-02,TRA Bunq,bunq BV invoice,,-13.99\n"

	sections := SplitSections(raw)
	require.Len(t, sections, 2)

	assert.Equal(t, "Revenue (8000)", sections[0].Name)
	assert.Equal(t, "Revenue (8000),,,,", sections[0].Lines[0])
	assert.Len(t, sections[0].Lines, 3)

	assert.Equal(t, "Bank charges (4000)", sections[1].Name)
	assert.Len(t, sections[1].Lines, 4) // header, columns, row, trailing blank
}

func TestSplitSectionsCRLF(t *testing.T) {
	raw := "Revenue (8000),,,,\r\n" +
		"Date,Reference,Description,VAT,Amount\r\n" +
		"2025-05-01,INV 2025-0006,Consulting work,,8470\r\n"

	sections := SplitSections(raw)
	require.Len(t, sections, 1)
	assert.Equal(t, "Revenue (8000)", sections[0].Name)
}

func TestSplitSectionsNoHeaders(t *testing.T) {
	assert.Empty(t, SplitSections("just some text\nwith no headers at all"))
}

func TestSplitSectionsReceivablesTotalStitching(t *testing.T) {
	// The totals row for accounts receivable can land after the next
	// section's header line. It must still be readable as the
	// receivables total.
	raw := "Accounts receivable,,,,\n" +
		"Date,Reference,Description,VAT,Amount\n" +
		"2025-06-03,INV 2025-0007 - Medio Zorg B.V.,2025-0007,,4235\n" +
		"Bunq NL75BUNQ2145840184 (10201),,,,\n" +
		"Total,,,,4235\n" +
		"Date,Reference,Description,VAT,Amount\n" +
		"2025-07-10,TRA Bunq NL75BUNQ2145840184 (Ponto),bunq Payday,,0.22\n"

	sections := SplitSections(raw)
	require.Len(t, sections, 2)

	total, ok := SectionTotal(sections[0])
	require.True(t, ok, "receivables section should pick up the stitched total")
	assert.Equal(t, 4235.0, total)

	// The stray total row is moved out of the bank section, so its
	// column header row parses normally.
	rows := TransactionRows(ParseRows(sections[1]))
	require.Len(t, rows, 1)
	assert.Equal(t, "2025-07-10", rows[0]["Date"])
}

func TestSplitSectionsReceivablesTotalInline(t *testing.T) {
	// When the totals row sits inside the receivables block itself,
	// nothing needs stitching.
	raw := "Accounts receivable,,,,\n" +
		"Date,Reference,Description,VAT,Amount\n" +
		"2025-06-03,INV 2025-0007 - Medio Zorg B.V.,2025-0007,,4235\n" +
		"Total,,,,4235\n" +
		"Bunq NL75BUNQ2145840184 (10201),,,,\n" +
		"Date,Reference,Description,VAT,Amount\n"

	sections := SplitSections(raw)
	require.Len(t, sections, 2)

	total, ok := SectionTotal(sections[0])
	require.True(t, ok)
	assert.Equal(t, 4235.0, total)
}
