package services

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/username/ledgerlens/src/database"
	"github.com/username/ledgerlens/src/logger"
	"github.com/username/ledgerlens/src/models"
	"github.com/username/ledgerlens/src/processors"
	"github.com/username/ledgerlens/src/security/validation"
)

const (
	ckFinancialData = "fin_data_user_%d"
	ckDatasetMeta   = "dataset_meta_user_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type ingestionServiceImpl struct {
	categorizer       *processors.Categorizer
	extractor         *processors.ProjectExtractor
	bankSectionPrefix string
	balanceAdjustment float64
	sampleDataPath    string
	reportCache       *cache.Cache
	now               func() time.Time

	mu       sync.Mutex
	inFlight map[int64]bool
}

func NewIngestionService(
	categorizer *processors.Categorizer,
	extractor *processors.ProjectExtractor,
	bankSectionPrefix string,
	balanceAdjustment float64,
	sampleDataPath string,
	reportCache *cache.Cache,
	now func() time.Time,
) IngestionService {
	return &ingestionServiceImpl{
		categorizer:       categorizer,
		extractor:         extractor,
		bankSectionPrefix: bankSectionPrefix,
		balanceAdjustment: balanceAdjustment,
		sampleDataPath:    sampleDataPath,
		reportCache:       reportCache,
		now:               now,
		inFlight:          make(map[int64]bool),
	}
}

// beginIngestion marks a user's ingestion as in flight. Re-ingestion
// requests must be serialized per user: the previous snapshot is only
// replaced once the new one is fully built.
func (s *ingestionServiceImpl) beginIngestion(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[userID] {
		return ErrIngestionInFlight
	}
	s.inFlight[userID] = true
	return nil
}

func (s *ingestionServiceImpl) endIngestion(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, userID)
}

func (s *ingestionServiceImpl) ProcessUpload(fileReader io.Reader, userID int64) (*models.FinancialData, error) {
	if err := s.beginIngestion(userID); err != nil {
		return nil, err
	}
	defer s.endIngestion(userID)

	startTime := time.Now()
	logger.L.Info("ProcessUpload START", "userID", userID)

	data, err := io.ReadAll(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading input: %v", ErrParsingFailed, err)
	}

	processor := processors.NewExportProcessor(s.categorizer, s.extractor, s.bankSectionPrefix, s.balanceAdjustment, s.now())
	result, err := processor.Process(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	if err := s.persistSnapshot(userID, result); err != nil {
		return nil, err
	}

	s.InvalidateUserCache(userID)
	s.reportCache.Set(fmt.Sprintf(ckFinancialData, userID), &result.Data, DefaultCacheExpiration)

	logger.L.Info("ProcessUpload END", "userID", userID,
		"transactions", len(result.Data.AllTransactions),
		"invoices", len(result.Invoices),
		"duration", time.Since(startTime))
	return &result.Data, nil
}

func (s *ingestionServiceImpl) LoadSampleData(userID int64) (*models.FinancialData, error) {
	f, err := os.Open(s.sampleDataPath)
	if err != nil {
		return nil, fmt.Errorf("opening sample data %s: %w", s.sampleDataPath, err)
	}
	defer f.Close()
	return s.ProcessUpload(f, userID)
}

// persistSnapshot replaces a user's dataset wholesale inside one
// database transaction. The prior snapshot stays readable until the
// commit.
func (s *ingestionServiceImpl) persistSnapshot(userID int64, result *processors.ProcessResult) error {
	dbTx, err := database.DB.Begin()
	if err != nil {
		return fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.Exec(`DELETE FROM transactions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("error clearing previous transactions: %w", err)
	}
	if _, err := dbTx.Exec(`DELETE FROM receivable_invoices WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("error clearing previous invoices: %w", err)
	}

	txStmt, err := dbTx.Prepare(`INSERT INTO transactions (user_id, tx_id, date, reference, description, vat, amount, category, project) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing transaction insert: %w", err)
	}
	defer txStmt.Close()
	for _, t := range result.Data.AllTransactions {
		if _, err := txStmt.Exec(userID, t.ID, t.Date, t.Reference, t.Description, t.VAT, t.Amount, t.Category, t.Project); err != nil {
			return fmt.Errorf("error inserting transaction %d: %w", t.ID, err)
		}
	}

	invStmt, err := dbTx.Prepare(`INSERT INTO receivable_invoices (user_id, invoice_id, client, issue_date, invoiced_amount, paid_amount, outstanding_amount, days_outstanding) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing invoice insert: %w", err)
	}
	defer invStmt.Close()
	for _, inv := range result.Invoices {
		if _, err := invStmt.Exec(userID, inv.ID, inv.Client, inv.IssueDate, inv.InvoicedAmount, inv.PaidAmount, inv.OutstandingAmount, inv.DaysOutstanding); err != nil {
			return fmt.Errorf("error inserting invoice %s: %w", inv.ID, err)
		}
	}

	_, err = dbTx.Exec(`INSERT OR REPLACE INTO dataset_meta (user_id, version, uploaded_at, transaction_count, section_count, current_balance, outstanding_receivables) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, uuid.NewString(), s.now().Format(time.RFC3339),
		len(result.Data.AllTransactions), result.SectionCount,
		result.Data.CurrentBalance, result.Data.OutstandingReceivables)
	if err != nil {
		return fmt.Errorf("error writing dataset metadata: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("error committing snapshot: %w", err)
	}
	return nil
}

func (s *ingestionServiceImpl) InvalidateUserCache(userID int64) {
	s.reportCache.Delete(fmt.Sprintf(ckFinancialData, userID))
	s.reportCache.Delete(fmt.Sprintf(ckDatasetMeta, userID))
	logger.L.Info("Invalidated caches for user", "userID", userID)
}

func (s *ingestionServiceImpl) GetFinancialData(userID int64, month string) (*models.FinancialData, error) {
	data, err := s.loadFinancialData(userID)
	if err != nil {
		return nil, err
	}
	if month == "" {
		return data, nil
	}
	return filterDataByMonth(data, month, processors.NewSummaryProcessor(s.now())), nil
}

// loadFinancialData is the cached snapshot-wide read.
func (s *ingestionServiceImpl) loadFinancialData(userID int64) (*models.FinancialData, error) {
	cacheKey := fmt.Sprintf(ckFinancialData, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for GetFinancialData", "userID", userID)
		return cached.(*models.FinancialData), nil
	}

	meta, err := fetchDatasetMeta(userID)
	if err != nil {
		return nil, err
	}
	txs, err := fetchUserTransactions(userID)
	if err != nil {
		return nil, err
	}

	summarizer := processors.NewSummaryProcessor(s.now())
	revenue, expenses, net := summarizer.Totals(txs)
	data := &models.FinancialData{
		AllTransactions:        txs,
		TotalRevenue:           revenue,
		TotalExpenses:          expenses,
		NetProfit:              net,
		CurrentBalance:         meta.currentBalance,
		OutstandingReceivables: meta.outstandingReceivables,
	}
	s.reportCache.Set(cacheKey, data, DefaultCacheExpiration)
	return data, nil
}

func (s *ingestionServiceImpl) GetTransactions(userID int64, month string) ([]models.Transaction, error) {
	data, err := s.GetFinancialData(userID, month)
	if err != nil {
		return nil, err
	}
	return data.AllTransactions, nil
}

// filterDataByMonth narrows a dataset to one YYYY-MM month and
// recomputes the flow totals over the narrowed list. Balance and
// outstanding receivables remain the snapshot-wide values.
func filterDataByMonth(data *models.FinancialData, month string, summarizer *processors.SummaryProcessor) *models.FinancialData {
	filtered := []models.Transaction{}
	for _, t := range data.AllTransactions {
		if strings.HasPrefix(t.Date, month) {
			filtered = append(filtered, t)
		}
	}
	revenue, expenses, net := summarizer.Totals(filtered)
	return &models.FinancialData{
		AllTransactions:        filtered,
		TotalRevenue:           revenue,
		TotalExpenses:          expenses,
		NetProfit:              net,
		CurrentBalance:         data.CurrentBalance,
		OutstandingReceivables: data.OutstandingReceivables,
	}
}

func (s *ingestionServiceImpl) GetCategoryData(userID int64, month string) ([]models.CategoryData, error) {
	txs, err := s.GetTransactions(userID, month)
	if err != nil {
		return nil, err
	}
	return processors.NewSummaryProcessor(s.now()).CategoryRollup(txs), nil
}

func (s *ingestionServiceImpl) GetProjectData(userID int64, month string) ([]models.ProjectData, error) {
	txs, err := s.GetTransactions(userID, month)
	if err != nil {
		return nil, err
	}
	return processors.NewSummaryProcessor(s.now()).ProjectRollup(txs), nil
}

func (s *ingestionServiceImpl) GetMonthlyData(userID int64) ([]models.MonthlyData, error) {
	txs, err := s.GetTransactions(userID, "")
	if err != nil {
		return nil, err
	}
	return processors.NewSummaryProcessor(s.now()).MonthlyRollup(txs), nil
}

func (s *ingestionServiceImpl) GetReceivables(userID int64) (*models.ReceivablesSummary, error) {
	if _, err := fetchDatasetMeta(userID); err != nil {
		return nil, err
	}
	invoices, err := fetchUserInvoices(userID)
	if err != nil {
		return nil, err
	}
	summary := processors.Summarize(invoices, s.now())
	return &summary, nil
}

func (s *ingestionServiceImpl) GetDatasetMeta(userID int64) (*models.DatasetMeta, error) {
	cacheKey := fmt.Sprintf(ckDatasetMeta, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(*models.DatasetMeta), nil
	}
	meta, err := fetchDatasetMeta(userID)
	if err != nil {
		return nil, err
	}
	result := &models.DatasetMeta{
		Version:          meta.version,
		UploadedAt:       meta.uploadedAt,
		TransactionCount: meta.transactionCount,
		SectionCount:     meta.sectionCount,
	}
	s.reportCache.Set(cacheKey, result, DefaultCacheExpiration)
	return result, nil
}

// UpdateCategory writes a user-driven category correction for exactly
// one transaction. It does not re-run categorization or reconciliation.
func (s *ingestionServiceImpl) UpdateCategory(userID int64, transactionID int, newCategory string) error {
	result, err := database.DB.Exec(`UPDATE transactions SET category = ? WHERE user_id = ? AND tx_id = ?`,
		newCategory, userID, transactionID)
	if err != nil {
		return fmt.Errorf("error updating category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTransactionNotFound
	}
	s.InvalidateUserCache(userID)
	return nil
}

// ExportCSV streams the user's transactions as a flat CSV projection.
// Cell values are sanitized so spreadsheet software does not execute
// them as formulas.
func (s *ingestionServiceImpl) ExportCSV(userID int64, w io.Writer) error {
	txs, err := s.GetTransactions(userID, "")
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"date", "reference", "description", "amount", "category", "project"}); err != nil {
		return err
	}
	for _, t := range txs {
		record := []string{
			validation.SanitizeForFormulaInjection(t.Date),
			validation.SanitizeForFormulaInjection(t.Reference),
			validation.SanitizeForFormulaInjection(t.Description),
			strconv.FormatFloat(t.Amount, 'f', 2, 64),
			validation.SanitizeForFormulaInjection(t.Category),
			validation.SanitizeForFormulaInjection(t.Project),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

type datasetMetaRow struct {
	version                string
	uploadedAt             string
	transactionCount       int
	sectionCount           int
	currentBalance         float64
	outstandingReceivables float64
}

func fetchDatasetMeta(userID int64) (*datasetMetaRow, error) {
	var meta datasetMetaRow
	err := database.DB.QueryRow(`SELECT version, uploaded_at, transaction_count, section_count, current_balance, outstanding_receivables FROM dataset_meta WHERE user_id = ?`, userID).
		Scan(&meta.version, &meta.uploadedAt, &meta.transactionCount, &meta.sectionCount, &meta.currentBalance, &meta.outstandingReceivables)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNoDataset
		}
		return nil, fmt.Errorf("error fetching dataset metadata: %w", err)
	}
	return &meta, nil
}

func fetchUserTransactions(userID int64) ([]models.Transaction, error) {
	rows, err := database.DB.Query(`SELECT tx_id, date, reference, description, vat, amount, category, project FROM transactions WHERE user_id = ? ORDER BY tx_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.Date, &t.Reference, &t.Description, &t.VAT, &t.Amount, &t.Category, &t.Project); err != nil {
			return nil, fmt.Errorf("error scanning transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func fetchUserInvoices(userID int64) ([]models.ReceivableInvoice, error) {
	rows, err := database.DB.Query(`SELECT invoice_id, client, issue_date, invoiced_amount, paid_amount, outstanding_amount, days_outstanding FROM receivable_invoices WHERE user_id = ? ORDER BY issue_date, invoice_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching invoices: %w", err)
	}
	defer rows.Close()

	var invoices []models.ReceivableInvoice
	for rows.Next() {
		var inv models.ReceivableInvoice
		if err := rows.Scan(&inv.ID, &inv.Client, &inv.IssueDate, &inv.InvoicedAmount, &inv.PaidAmount, &inv.OutstandingAmount, &inv.DaysOutstanding); err != nil {
			return nil, fmt.Errorf("error scanning invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}
