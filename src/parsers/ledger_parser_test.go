package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/ledgerlens/src/models"
)

func TestParseRows(t *testing.T) {
	section := models.Section{
		Name: "Bunq NL75BUNQ2145840184 (10201)",
		Lines: []string{
			"Bunq NL75BUNQ2145840184 (10201),,,,",
			"Date,Reference,Description,VAT,Amount",
			`2025-07-10,TRA Bunq NL75BUNQ2145840184 (Ponto),"HubSpot Netherlands B.` + "\n" + `HubSpot Netherlands B. Schiphol, NL",,-18.15`,
			"2025-07-09,TRA Bunq,short row",
			"",
		},
	}

	rows := ParseRows(section)
	require.Len(t, rows, 2)

	assert.Equal(t, "2025-07-10", rows[0]["Date"])
	assert.Contains(t, rows[0]["Description"], "\n")
	assert.Equal(t, "-18.15", rows[0]["Amount"])

	// Short rows read missing trailing fields as empty.
	assert.Equal(t, "2025-07-09", rows[1]["Date"])
	assert.Equal(t, "short row", rows[1]["Description"])
	assert.Equal(t, "", rows[1]["VAT"])
	assert.Equal(t, "", rows[1]["Amount"])
}

func TestParseRowsHeaderTrimming(t *testing.T) {
	section := models.Section{
		Name: "Revenue",
		Lines: []string{
			"Revenue,,,,",
			"Date , Reference ,Description,VAT,Amount",
			"2025-05-01,INV 2025-0006,Consulting work,,8470",
		},
	}

	rows := ParseRows(section)
	require.Len(t, rows, 1)
	assert.Equal(t, "2025-05-01", rows[0]["Date"])
	assert.Equal(t, "INV 2025-0006", rows[0]["Reference"])
}

func TestParseRowsHeaderOnly(t *testing.T) {
	assert.Nil(t, ParseRows(models.Section{Name: "Empty", Lines: []string{"Empty,,,,"}}))
}

func TestTransactionRows(t *testing.T) {
	rows := []map[string]string{
		{"Date": "2025-07-10", "Amount": "0.22"},
		{"Date": "Total", "Amount": "5324"},
		{"Date": "", "Amount": ""},
		{"Date": "2025-7-1", "Amount": "1"},
		{"Date": "2024-12-31", "Amount": "0"},
	}

	filtered := TransactionRows(rows)
	require.Len(t, filtered, 2)
	assert.Equal(t, "2025-07-10", filtered[0]["Date"])
	assert.Equal(t, "2024-12-31", filtered[1]["Date"])
}

func TestSectionTotal(t *testing.T) {
	section := models.Section{
		Name: "Bunq NL75BUNQ2145840184 (10201)",
		Lines: []string{
			"Bunq NL75BUNQ2145840184 (10201),,,,",
			"Date,Reference,Description,VAT,Amount",
			"2025-07-10,TRA Bunq,bunq Payday,,0.22",
			"Total,,,,-69.95",
		},
	}

	total, ok := SectionTotal(section)
	require.True(t, ok)
	assert.Equal(t, -69.95, total)
}

func TestSectionTotalMissing(t *testing.T) {
	section := models.Section{
		Name: "Revenue",
		Lines: []string{
			"Revenue,,,,",
			"Date,Reference,Description,VAT,Amount",
			"2025-05-01,INV 2025-0006,Consulting work,,8470",
		},
	}

	_, ok := SectionTotal(section)
	assert.False(t, ok)
}
