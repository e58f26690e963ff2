package services

import (
	"context"
	"io"

	"github.com/username/ledgerlens/src/models"
)

// IngestionService is the core entry point: it turns uploaded exports
// into a reconciled dataset and answers all dashboard queries over it.
type IngestionService interface {
	ProcessUpload(fileReader io.Reader, userID int64) (*models.FinancialData, error)
	LoadSampleData(userID int64) (*models.FinancialData, error)

	GetFinancialData(userID int64, month string) (*models.FinancialData, error)
	GetTransactions(userID int64, month string) ([]models.Transaction, error)
	GetCategoryData(userID int64, month string) ([]models.CategoryData, error)
	GetProjectData(userID int64, month string) ([]models.ProjectData, error)
	GetMonthlyData(userID int64) ([]models.MonthlyData, error)
	GetReceivables(userID int64) (*models.ReceivablesSummary, error)
	GetDatasetMeta(userID int64) (*models.DatasetMeta, error)

	UpdateCategory(userID int64, transactionID int, newCategory string) error
	ExportCSV(userID int64, w io.Writer) error

	InvalidateUserCache(userID int64)
}

// InsightService produces AI-generated observations over a user's
// aggregated financials.
type InsightService interface {
	GenerateInsights(ctx context.Context, userID int64) ([]models.Insight, error)
}

// ReminderService emails a summary of overdue invoices.
type ReminderService interface {
	SendOverdueReminder(ctx context.Context, userID int64, toEmail string) (int, error)
}
