package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/ledgerlens/src/models"
)

var reconcileNow = time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

func invoiceRow(date, reference, description, amount string) map[string]string {
	return map[string]string{
		"Date": date, "Reference": reference, "Description": description, "VAT": "", "Amount": amount,
	}
}

func newTestReconciler() *ReceivablesProcessor {
	return NewReceivablesProcessor(NewProjectExtractor(DefaultProjectKeywords), reconcileNow)
}

func TestReconcileExactReferenceMatch(t *testing.T) {
	rows := []map[string]string{
		invoiceRow("2025-02-11", "INV 2025-0001 - Medio Zorg B.V.", "2025-0001", "6352.5"),
		invoiceRow("2025-03-12", "TRA Bunq NL75BUNQ2145840184 (Ponto)", "Medio Zorg B.V. NL15 INGB 0106 2158 17\n2025-0001 RF31YKQC4JYP", "-6352.5"),
	}

	invoices := newTestReconciler().Reconcile(rows)
	require.Len(t, invoices, 1)

	inv := invoices[0]
	assert.Equal(t, "2025-0001", inv.ID)
	assert.Equal(t, "Medio Zorg", inv.Client)
	assert.Equal(t, 6352.5, inv.InvoicedAmount)
	assert.Equal(t, 6352.5, inv.PaidAmount)
	assert.Equal(t, 0.0, inv.OutstandingAmount)
}

func TestReconcileExactAmountPreferredOverFIFO(t *testing.T) {
	// Two open invoices for the same client. The payment exactly
	// matches the newer invoice, so it settles that one rather than
	// partially paying the older one.
	rows := []map[string]string{
		invoiceRow("2025-01-01", "INV 2025-0001 - Medio Zorg B.V.", "", "500"),
		invoiceRow("2025-02-01", "INV 2025-0002 - Medio Zorg B.V.", "", "300"),
		invoiceRow("2025-03-01", "TRA Bunq", "Medio Zorg B.V. payment", "-300"),
	}

	invoices := newTestReconciler().Reconcile(rows)
	require.Len(t, invoices, 2)

	assert.Equal(t, 500.0, invoices[0].OutstandingAmount)
	assert.Equal(t, 0.0, invoices[1].OutstandingAmount)
}

func TestReconcileFIFOAllocation(t *testing.T) {
	// No exact amount match: the payment fills the oldest invoice
	// first and the remainder goes to the next one.
	rows := []map[string]string{
		invoiceRow("2025-01-01", "INV 2025-0001 - Medio Zorg B.V.", "", "200"),
		invoiceRow("2025-02-01", "INV 2025-0002 - Medio Zorg B.V.", "", "300"),
		invoiceRow("2025-03-01", "TRA Bunq", "Medio Zorg B.V. payment", "-350"),
	}

	invoices := newTestReconciler().Reconcile(rows)
	require.Len(t, invoices, 2)

	assert.Equal(t, 0.0, invoices[0].OutstandingAmount)
	assert.InDelta(t, 150.0, invoices[1].OutstandingAmount, 1e-9)
}

func TestReconcileUnknownClientPaymentDropped(t *testing.T) {
	rows := []map[string]string{
		invoiceRow("2025-01-01", "INV 2025-0001 - Medio Zorg B.V.", "", "200"),
		invoiceRow("2025-02-01", "TRA Bunq", "Some Random GmbH payment", "-200"),
	}

	invoices := newTestReconciler().Reconcile(rows)
	require.Len(t, invoices, 1)
	assert.Equal(t, 200.0, invoices[0].OutstandingAmount)
}

func TestReconcileUnmatchedIdentifierFallsBackToClient(t *testing.T) {
	// The payment cites an identifier no invoice carries. It still
	// settles the client's open invoice via the amount match instead
	// of being dropped.
	rows := []map[string]string{
		invoiceRow("2025-01-01", "INV 2025-0001 - Medio Zorg B.V.", "", "200"),
		invoiceRow("2025-02-01", "TRA Bunq", "Medio Zorg B.V. 2099-0042", "-200"),
	}

	invoices := newTestReconciler().Reconcile(rows)
	require.Len(t, invoices, 1)
	assert.Equal(t, "2025-0001", invoices[0].ID)
	assert.Equal(t, 200.0, invoices[0].PaidAmount)
	assert.Equal(t, 0.0, invoices[0].OutstandingAmount)
}

func TestReconcileZeroPaymentIgnored(t *testing.T) {
	rows := []map[string]string{
		invoiceRow("2025-01-01", "INV 2025-0001 - Medio Zorg B.V.", "", "200"),
		invoiceRow("2024-12-31", "PAY Opening balance", "Medio Zorg", "0"),
	}

	invoices := newTestReconciler().Reconcile(rows)
	require.Len(t, invoices, 1)
	assert.Equal(t, 0.0, invoices[0].PaidAmount)
}

func TestReconcileInvoiceWithoutIdentifierSkipped(t *testing.T) {
	rows := []map[string]string{
		invoiceRow("2025-01-01", "INV no usable reference", "free text", "200"),
	}

	assert.Empty(t, newTestReconciler().Reconcile(rows))
}

func TestReconcileDuplicateInvoiceLastWriteWins(t *testing.T) {
	rows := []map[string]string{
		invoiceRow("2025-01-01", "INV 2025-0001 - Medio Zorg B.V.", "2025-0001", "100"),
		invoiceRow("2025-01-15", "INV 2025-0001 - Medio Zorg B.V.", "2025-0001", "250"),
	}

	invoices := newTestReconciler().Reconcile(rows)
	require.Len(t, invoices, 1)
	assert.Equal(t, "2025-01-15", invoices[0].IssueDate)
	assert.Equal(t, 250.0, invoices[0].InvoicedAmount)
}

func TestReconcileClientFallbacks(t *testing.T) {
	rows := []map[string]string{
		invoiceRow("2025-01-01", "INV 2025-0042 - Acme Corp", "2025-0042", "100"),
		invoiceRow("2025-01-02", "INV 2025-0043", "2025-0043", "100"),
	}

	invoices := newTestReconciler().Reconcile(rows)
	require.Len(t, invoices, 2)
	assert.Equal(t, "Acme Corp", invoices[0].Client)
	assert.Equal(t, "Unknown", invoices[1].Client)
}

func TestReconcileOverpaymentClampsAtZero(t *testing.T) {
	rows := []map[string]string{
		invoiceRow("2025-02-11", "INV 2025-0001 - Medio Zorg B.V.", "2025-0001", "100"),
		invoiceRow("2025-03-01", "TRA Bunq", "Medio Zorg 2025-0001 overpaid", "-150"),
	}

	invoices := newTestReconciler().Reconcile(rows)
	require.Len(t, invoices, 1)
	assert.Equal(t, 150.0, invoices[0].PaidAmount)
	assert.Equal(t, 0.0, invoices[0].OutstandingAmount)
}

func TestReconcileDeterministic(t *testing.T) {
	rows := []map[string]string{
		invoiceRow("2025-02-11", "INV 2025-0001 - Medio Zorg B.V.", "2025-0001", "6352.5"),
		invoiceRow("2025-04-26", "INV 2025-0003 - Patrick Burgermeister", "2025-0003", "1815"),
		invoiceRow("2025-03-12", "TRA Bunq", "Medio Zorg B.V. 2025-0001 RF31YKQC4JYP", "-6352.5"),
		invoiceRow("2025-05-12", "TRA Bunq", "Burgermeister Patrick CH56\nPitch deck / Branding / Logo", "-1815"),
	}

	p := newTestReconciler()
	first := p.Reconcile(rows)
	second := p.Reconcile(rows)
	assert.Equal(t, first, second)
}

func TestSummarize(t *testing.T) {
	invoices := []models.ReceivableInvoice{
		{ID: "2025-0001", Client: "Medio Zorg", IssueDate: "2025-07-25", InvoicedAmount: 100, PaidAmount: 0, OutstandingAmount: 100},
		{ID: "2025-0002", Client: "Medio Zorg", IssueDate: "2025-06-10", InvoicedAmount: 200, PaidAmount: 0, OutstandingAmount: 200},
		{ID: "2025-0003", Client: "RebelsAI", IssueDate: "2025-04-01", InvoicedAmount: 400, PaidAmount: 400, OutstandingAmount: 0},
		{ID: "2025-0004", Client: "RebelsAI", IssueDate: "2025-01-01", InvoicedAmount: 800, PaidAmount: 0, OutstandingAmount: 800},
	}

	summary := Summarize(invoices, reconcileNow)

	require.Len(t, summary.Invoices, 3)
	assert.Equal(t, 1100.0, summary.TotalOutstanding)
	assert.Equal(t, 300.0, summary.ByClient["Medio Zorg"])
	assert.Equal(t, 800.0, summary.ByClient["RebelsAI"])

	// 2025-07-25 is 7 days before "now", 2025-06-10 is 52, 2025-01-01
	// is well past 90.
	assert.Equal(t, 100.0, summary.Aging.D1To30)
	assert.Equal(t, 200.0, summary.Aging.D31To60)
	assert.Equal(t, 800.0, summary.Aging.D90Plus)
	assert.Equal(t, 0.0, summary.Aging.Current)
	assert.Equal(t, 0.0, summary.Aging.D61To90)

	bucketSum := summary.Aging.Current + summary.Aging.D1To30 + summary.Aging.D31To60 +
		summary.Aging.D61To90 + summary.Aging.D90Plus
	assert.Equal(t, summary.TotalOutstanding, bucketSum)
}

func TestSummarizeRecomputesDays(t *testing.T) {
	invoices := []models.ReceivableInvoice{
		{ID: "2025-0001", Client: "Medio Zorg", IssueDate: "2025-07-25", InvoicedAmount: 100, OutstandingAmount: 100, DaysOutstanding: 999},
	}

	summary := Summarize(invoices, reconcileNow)
	require.Len(t, summary.Invoices, 1)
	assert.Equal(t, 7, summary.Invoices[0].DaysOutstanding)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil, reconcileNow)
	assert.NotNil(t, summary.Invoices)
	assert.Empty(t, summary.Invoices)
	assert.Equal(t, 0.0, summary.TotalOutstanding)
}
