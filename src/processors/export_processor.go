package processors

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/username/ledgerlens/src/logger"
	"github.com/username/ledgerlens/src/models"
	"github.com/username/ledgerlens/src/parsers"
)

// ErrNoSections is returned when the input contains no recognizable
// ledger sections at all.
var ErrNoSections = errors.New("no ledger sections found in input")

const receivablesSectionName = "Accounts receivable"

// ProcessResult is the full outcome of one ingestion pass.
type ProcessResult struct {
	Data         models.FinancialData
	Invoices     []models.ReceivableInvoice
	SectionCount int
}

// ExportProcessor turns one raw bookkeeping export into a reconciled
// financial model. A single pass is synchronous and pure over the
// input text; re-running it on the same input with the same clock
// yields the same result.
type ExportProcessor struct {
	categorizer       *Categorizer
	extractor         *ProjectExtractor
	bankSectionPrefix string
	balanceAdjustment float64
	now               time.Time
}

func NewExportProcessor(categorizer *Categorizer, extractor *ProjectExtractor, bankSectionPrefix string, balanceAdjustment float64, now time.Time) *ExportProcessor {
	return &ExportProcessor{
		categorizer:       categorizer,
		extractor:         extractor,
		bankSectionPrefix: bankSectionPrefix,
		balanceAdjustment: balanceAdjustment,
		now:               now,
	}
}

func (p *ExportProcessor) Process(raw string) (*ProcessResult, error) {
	sections := parsers.SplitSections(raw)
	if len(sections) == 0 {
		return nil, ErrNoSections
	}

	ledgerIndex := BuildLedgerIndex(sections, p.bankSectionPrefix)

	var bankRows []map[string]string
	var bankTotal float64
	bankTotalFound := false
	var outstandingReceivables float64
	var invoices []models.ReceivableInvoice

	for _, section := range sections {
		if len(section.Lines) < 2 {
			continue
		}
		switch {
		case strings.HasPrefix(section.Name, p.bankSectionPrefix):
			bankRows = append(bankRows, parsers.TransactionRows(parsers.ParseRows(section))...)
			if !bankTotalFound {
				if total, ok := parsers.SectionTotal(section); ok {
					bankTotal = total
					bankTotalFound = true
				}
			}
		case section.Name == receivablesSectionName:
			if total, ok := parsers.SectionTotal(section); ok {
				outstandingReceivables = total
			}
			reconciler := NewReceivablesProcessor(p.extractor, p.now)
			invoices = reconciler.Reconcile(parsers.TransactionRows(parsers.ParseRows(section)))
		}
	}

	transactions := make([]models.Transaction, 0, len(bankRows))
	for i, row := range bankRows {
		description := row["Description"]
		firstLine := strings.SplitN(description, "\n", 2)[0]
		hint := ledgerIndex[NormalizeDescription(firstLine)]

		amount, err := strconv.ParseFloat(strings.TrimSpace(row["Amount"]), 64)
		if err != nil {
			amount = 0
		}

		transactions = append(transactions, models.Transaction{
			ID:          i,
			Date:        row["Date"],
			Reference:   row["Reference"],
			Description: description,
			VAT:         row["VAT"],
			Amount:      amount,
			Category:    p.categorizer.Categorize(description, hint),
			Project:     p.extractor.Extract(description),
		})
	}

	summarizer := NewSummaryProcessor(p.now)
	revenue, expenses, net := summarizer.Totals(transactions)

	// The bank ledger's own running total includes the opening balance,
	// so it is preferred over the recomputed net. The configured
	// adjustment covers amounts known to fall outside the export's
	// time range.
	currentBalance := net
	if bankTotalFound {
		currentBalance = bankTotal + p.balanceAdjustment
	} else if logger.L != nil {
		logger.L.Warn("No bank total line found, falling back to net profit for current balance")
	}

	return &ProcessResult{
		Data: models.FinancialData{
			AllTransactions:        transactions,
			TotalRevenue:           revenue,
			TotalExpenses:          expenses,
			NetProfit:              net,
			CurrentBalance:         currentBalance,
			OutstandingReceivables: outstandingReceivables,
		},
		Invoices:     invoices,
		SectionCount: len(sections),
	}, nil
}
