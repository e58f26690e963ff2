package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var processNow = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func newTestProcessor(balanceAdjustment float64) *ExportProcessor {
	return NewExportProcessor(
		NewCategorizer(DefaultCategoryRules),
		NewProjectExtractor(DefaultProjectKeywords),
		"Bunq NL75BUNQ",
		balanceAdjustment,
		processNow,
	)
}

func TestProcessEndToEnd(t *testing.T) {
	raw := "Accounts receivable,,,,\n" +
		"Date,Reference,Description,VAT,Amount\n" +
		"2025-01-10,INV 2025-0001 - Acme,2025-0001,,1000\n" +
		"2025-02-01,TRA Bunq NL75BUNQ2145840184 (Ponto),Acme payment 2025-0001,,-1000\n" +
		"Total,,,,0\n" +
		"Bunq NL75BUNQ2145840184 (10201),,,,\n" +
		"Date,Reference,Description,VAT,Amount\n" +
		"2025-01-05,TRA X,Google Cloud,,-50\n" +
		"2025-01-10,INV 2025-0001 - Acme,2025-0001,,1000\n" +
		"Total,,,,950\n"

	result, err := newTestProcessor(0).Process(raw)
	require.NoError(t, err)

	assert.Equal(t, 2, result.SectionCount)
	require.Len(t, result.Data.AllTransactions, 2)

	assert.Equal(t, "Software & AI Tools", result.Data.AllTransactions[0].Category)
	assert.Equal(t, 1000.0, result.Data.TotalRevenue)
	assert.Equal(t, 50.0, result.Data.TotalExpenses)
	assert.Equal(t, 950.0, result.Data.NetProfit)
	assert.Equal(t, 950.0, result.Data.CurrentBalance)
	assert.Equal(t, 0.0, result.Data.OutstandingReceivables)

	require.Len(t, result.Invoices, 1)
	assert.Equal(t, 0.0, result.Invoices[0].OutstandingAmount)
}

func TestProcessCategorizesViaLedgerIndex(t *testing.T) {
	raw := "Bank charges (4000),,,,\n" +
		"Date,Reference,Description,VAT,Amount\n" +
		"2025-01-08,TRA X,Acme Clearing BV,,-4.84\n" +
		"Bunq NL75BUNQ2145840184 (10201),,,,\n" +
		"Date,Reference,Description,VAT,Amount\n" +
		"2025-01-08,TRA X,Acme Clearing BV,,-4.84\n" +
		"Total,,,,-4.84\n"

	result, err := newTestProcessor(0).Process(raw)
	require.NoError(t, err)

	require.Len(t, result.Data.AllTransactions, 1)
	assert.Equal(t, "Bank & Payment Fees", result.Data.AllTransactions[0].Category)
}

func TestProcessTagsProjects(t *testing.T) {
	raw := "Bunq NL75BUNQ2145840184 (10201),,,,\n" +
		"Date,Reference,Description,VAT,Amount\n" +
		"2025-02-12,TRA Bunq,\"Medio Zorg B.V. NL15 INGB 0106 2158 17\n2025-0001 RF31YKQC4JYP\",,6352.5\n" +
		"Total,,,,6352.5\n"

	result, err := newTestProcessor(0).Process(raw)
	require.NoError(t, err)

	require.Len(t, result.Data.AllTransactions, 1)
	tx := result.Data.AllTransactions[0]
	assert.Equal(t, "Medio Zorg", tx.Project)
	assert.Equal(t, "Client Revenue", tx.Category)
}

func TestProcessBalanceAdjustment(t *testing.T) {
	raw := "Bunq NL75BUNQ2145840184 (10201),,,,\n" +
		"Date,Reference,Description,VAT,Amount\n" +
		"2025-01-05,TRA X,Google Cloud,,-50\n" +
		"Total,,,,950\n"

	result, err := newTestProcessor(100).Process(raw)
	require.NoError(t, err)
	assert.Equal(t, 1050.0, result.Data.CurrentBalance)
}

func TestProcessNoBankTotalFallsBackToNet(t *testing.T) {
	raw := "Bunq NL75BUNQ2145840184 (10201),,,,\n" +
		"Date,Reference,Description,VAT,Amount\n" +
		"2025-01-05,TRA X,Google Cloud,,-50\n" +
		"2025-01-08,TRA X,Acme payout,,200\n"

	result, err := newTestProcessor(0).Process(raw)
	require.NoError(t, err)
	assert.Equal(t, 150.0, result.Data.CurrentBalance)
}

func TestProcessNoSections(t *testing.T) {
	_, err := newTestProcessor(0).Process("just some text\nwith no headers")
	assert.ErrorIs(t, err, ErrNoSections)
}

func TestProcessSkipsHeaderOnlySections(t *testing.T) {
	raw := "Empty ledger,,,,\n" +
		"Bunq NL75BUNQ2145840184 (10201),,,,\n" +
		"Date,Reference,Description,VAT,Amount\n" +
		"2025-01-05,TRA X,Google Cloud,,-50\n" +
		"Total,,,,-50\n"

	result, err := newTestProcessor(0).Process(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, result.SectionCount)
	assert.Len(t, result.Data.AllTransactions, 1)
}
