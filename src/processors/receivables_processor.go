package processors

import (
	"log"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/username/ledgerlens/src/models"
	"github.com/username/ledgerlens/src/utils"
)

var invoiceIDRe = regexp.MustCompile(`\b(\d{4}-\d{4})\b`)

// amountTolerance is the maximum difference under which two monetary
// values are considered equal when matching payments to invoices.
const amountTolerance = 0.01

// ReceivablesProcessor reconstructs invoices from the accounts
// receivable ledger and allocates payments against them.
//
// The matching is a two-pass heuristic: pass one creates one invoice
// per INV row, pass two walks TRA/PAY rows and applies each payment by
// exact invoice reference, then by exact amount for a known client,
// then FIFO by issue date across that client's open invoices.
type ReceivablesProcessor struct {
	extractor *ProjectExtractor
	now       time.Time
}

func NewReceivablesProcessor(extractor *ProjectExtractor, now time.Time) *ReceivablesProcessor {
	return &ReceivablesProcessor{extractor: extractor, now: now}
}

// Reconcile runs both passes over the receivables section's rows and
// returns all reconstructed invoices, settled ones included, ordered
// by ascending issue date with the invoice identifier as tie-break.
func (p *ReceivablesProcessor) Reconcile(rows []map[string]string) []models.ReceivableInvoice {
	invoices := make(map[string]*models.ReceivableInvoice)

	// Pass 1: invoice creation.
	for _, row := range rows {
		reference := row["Reference"]
		if !strings.HasPrefix(reference, "INV ") {
			continue
		}
		combined := reference + " " + row["Description"]
		match := invoiceIDRe.FindStringSubmatch(combined)
		if match == nil {
			log.Printf("Skipping invoice row without identifier: %q", reference)
			continue
		}
		id := match[1]

		amount := parseAmount(row["Amount"])
		issueDate := row["Date"]

		// Later rows with the same identifier replace earlier ones.
		invoices[id] = &models.ReceivableInvoice{
			ID:                id,
			Client:            p.resolveClient(combined, reference),
			IssueDate:         issueDate,
			InvoicedAmount:    amount,
			PaidAmount:        0,
			OutstandingAmount: amount,
			DaysOutstanding:   daysSince(issueDate, p.now),
		}
	}

	// Pass 2: payment allocation.
	for _, row := range rows {
		reference := row["Reference"]
		if !strings.HasPrefix(reference, "TRA ") && !strings.HasPrefix(reference, "PAY ") {
			continue
		}
		payment := math.Abs(parseAmount(row["Amount"]))
		if payment == 0 {
			continue
		}
		combined := reference + " " + row["Description"]

		// An identifier naming no known invoice falls through to the
		// client-name allocation below.
		if match := invoiceIDRe.FindStringSubmatch(combined); match != nil {
			if inv, ok := invoices[match[1]]; ok {
				applyPayment(inv, payment)
				continue
			}
		}

		client := p.extractor.Extract(combined)
		if client == "" {
			// Non-invoice bank activity, not an error.
			continue
		}
		p.allocateToClient(invoices, client, payment)
	}

	result := make([]models.ReceivableInvoice, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, *inv)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].IssueDate != result[j].IssueDate {
			return result[i].IssueDate < result[j].IssueDate
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// allocateToClient applies an unlabeled payment to one client's open
// invoices. An exact-amount match is a strong signal that a specific
// invoice was paid in full, so it is tried before the FIFO fallback.
func (p *ReceivablesProcessor) allocateToClient(invoices map[string]*models.ReceivableInvoice, client string, payment float64) {
	candidates := openInvoicesForClient(invoices, client)

	for _, inv := range candidates {
		if math.Abs(inv.OutstandingAmount-payment) < amountTolerance {
			applyPayment(inv, payment)
			return
		}
	}

	remaining := payment
	for _, inv := range candidates {
		if remaining <= 0 {
			break
		}
		if inv.OutstandingAmount <= 0 {
			continue
		}
		applied := utils.MinFloat(inv.OutstandingAmount, remaining)
		applyPayment(inv, applied)
		remaining -= applied
	}
}

// openInvoicesForClient returns a client's invoices with an open
// balance, oldest first.
func openInvoicesForClient(invoices map[string]*models.ReceivableInvoice, client string) []*models.ReceivableInvoice {
	var out []*models.ReceivableInvoice
	for _, inv := range invoices {
		if inv.Client == client && inv.OutstandingAmount > 0 {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IssueDate != out[j].IssueDate {
			return out[i].IssueDate < out[j].IssueDate
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func applyPayment(inv *models.ReceivableInvoice, amount float64) {
	inv.PaidAmount += amount
	inv.OutstandingAmount = math.Max(0, inv.InvoicedAmount-inv.PaidAmount)
}

// resolveClient names the invoice's client: a known project keyword in
// the combined text wins, else the text after the last " - " in the
// reference, else "Unknown".
func (p *ReceivablesProcessor) resolveClient(combined, reference string) string {
	if client := p.extractor.Extract(combined); client != "" {
		return client
	}
	if i := strings.LastIndex(reference, " - "); i >= 0 {
		if tail := strings.TrimSpace(reference[i+3:]); tail != "" {
			return tail
		}
	}
	return "Unknown"
}

func parseAmount(s string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return value
}

func daysSince(isoDate string, now time.Time) int {
	t := utils.ParseDate(strings.TrimSpace(isoDate))
	if t.IsZero() {
		return 0
	}
	return int(now.Sub(t).Hours() / 24)
}

// Summarize builds the receivables view served to clients: open
// invoices only, their total, and aging buckets. Day counts are
// recomputed against the supplied time, so the same invoice set ages
// across report runs.
func Summarize(invoices []models.ReceivableInvoice, now time.Time) models.ReceivablesSummary {
	summary := models.ReceivablesSummary{
		Invoices: []models.ReceivableInvoice{},
		ByClient: map[string]float64{},
	}
	for _, inv := range invoices {
		if inv.OutstandingAmount <= 0 {
			continue
		}
		days := inv.DaysOutstanding
		if !utils.ParseDate(strings.TrimSpace(inv.IssueDate)).IsZero() {
			days = daysSince(inv.IssueDate, now)
		}
		inv.DaysOutstanding = days
		summary.Invoices = append(summary.Invoices, inv)
		summary.TotalOutstanding += inv.OutstandingAmount
		summary.ByClient[inv.Client] += inv.OutstandingAmount

		switch {
		case days <= 0:
			summary.Aging.Current += inv.OutstandingAmount
		case days <= 30:
			summary.Aging.D1To30 += inv.OutstandingAmount
		case days <= 60:
			summary.Aging.D31To60 += inv.OutstandingAmount
		case days <= 90:
			summary.Aging.D61To90 += inv.OutstandingAmount
		default:
			summary.Aging.D90Plus += inv.OutstandingAmount
		}
	}
	return summary
}
