package models

import (
	"encoding/json"
	"math"
)

// Section is a contiguous slice of raw CSV lines belonging to one
// ledger account in a bookkeeping export.
type Section struct {
	Name  string   `json:"name"`
	Lines []string `json:"lines"`
}

// Transaction represents a single transaction row parsed from a ledger section.
type Transaction struct {
	ID          int     `json:"id"`
	Date        string  `json:"date"` // YYYY-MM-DD
	Reference   string  `json:"reference"`
	Description string  `json:"description"`
	VAT         string  `json:"vat"`
	Amount      float64 `json:"amount"` // Signed: positive revenue, negative expense
	Category    string  `json:"category"`
	Project     string  `json:"project,omitempty"`
}

// FinancialData is the top-level result of processing one export.
type FinancialData struct {
	AllTransactions        []Transaction `json:"allTransactions"`
	TotalRevenue           float64       `json:"totalRevenue"`
	TotalExpenses          float64       `json:"totalExpenses"`
	NetProfit              float64       `json:"netProfit"`
	CurrentBalance         float64       `json:"currentBalance"`
	OutstandingReceivables float64       `json:"outstandingReceivables"`
}

// CategoryData aggregates transactions for one spending category.
type CategoryData struct {
	Name         string        `json:"name"`
	Revenue      float64       `json:"revenue"`
	Expenses     float64       `json:"expenses"`
	Transactions []Transaction `json:"transactions"`
	IsExpense    bool          `json:"isExpense"`
}

// ProjectData aggregates transactions for one client project.
type ProjectData struct {
	Name         string        `json:"name"`
	Revenue      float64       `json:"revenue"`
	Expenses     float64       `json:"expenses"`
	NetProfit    float64       `json:"netProfit"`
	ROI          float64       `json:"roi"`
	Status       string        `json:"status"` // "Active" or "Completed"
	Transactions []Transaction `json:"transactions"`
}

// MarshalJSON renders an infinite ROI (all revenue, zero expenses) as
// null, which encoding/json cannot represent as a float64.
func (p ProjectData) MarshalJSON() ([]byte, error) {
	type alias ProjectData
	if math.IsInf(p.ROI, 0) || math.IsNaN(p.ROI) {
		return json.Marshal(struct {
			alias
			ROI interface{} `json:"roi"`
		}{alias: alias(p), ROI: nil})
	}
	return json.Marshal(alias(p))
}

// MonthlyData aggregates revenue and expenses for one calendar month.
type MonthlyData struct {
	Month     string  `json:"month"` // YYYY-MM
	Revenue   float64 `json:"revenue"`
	Expenses  float64 `json:"expenses"`
	NetProfit float64 `json:"netProfit"`
}

// ReceivableInvoice is one sales invoice reconstructed from the
// accounts receivable section, with payments applied against it.
type ReceivableInvoice struct {
	ID                string  `json:"id"` // e.g. "2024-0012"
	Client            string  `json:"client"`
	IssueDate         string  `json:"issueDate"` // YYYY-MM-DD
	InvoicedAmount    float64 `json:"invoicedAmount"`
	PaidAmount        float64 `json:"paidAmount"`
	OutstandingAmount float64 `json:"outstandingAmount"`
	DaysOutstanding   int     `json:"daysOutstanding"`
}

// AgingBuckets splits outstanding receivables by how long they have
// been open. Bucket edges are inclusive on the upper bound.
type AgingBuckets struct {
	Current float64 `json:"current"` // not yet due
	D1To30  float64 `json:"d1_30"`
	D31To60 float64 `json:"d31_60"`
	D61To90 float64 `json:"d61_90"`
	D90Plus float64 `json:"d90p"`
}

// ReceivablesSummary is the full receivables view served to clients.
type ReceivablesSummary struct {
	Invoices         []ReceivableInvoice `json:"invoices"`
	TotalOutstanding float64             `json:"totalOutstanding"`
	ByClient         map[string]float64  `json:"byClient"`
	Aging            AgingBuckets        `json:"aging"`
}

// Insight is a single AI-generated observation about the dataset.
type Insight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"` // high | medium | low
	Category    string `json:"category"` // runway | growth | optimization | risk | opportunity
}

// DatasetMeta describes the currently loaded dataset for a user.
type DatasetMeta struct {
	Version          string `json:"version"` // changes on every successful upload
	UploadedAt       string `json:"uploadedAt"`
	TransactionCount int    `json:"transactionCount"`
	SectionCount     int    `json:"sectionCount"`
}
