package processors

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/username/ledgerlens/src/models"
	"github.com/username/ledgerlens/src/utils"
)

// activeProjectWindow is how recently a project must have seen a
// transaction to still count as active.
const activeProjectWindow = 60 * 24 * time.Hour

// SummaryProcessor derives rollup views from the annotated transaction
// list. All methods are pure over their input; the injected clock only
// affects project status.
type SummaryProcessor struct {
	now time.Time
}

func NewSummaryProcessor(now time.Time) *SummaryProcessor {
	return &SummaryProcessor{now: now}
}

// Totals computes overall revenue, expenses and net profit. Expenses
// are reported as a positive number.
func (p *SummaryProcessor) Totals(txs []models.Transaction) (revenue, expenses, net float64) {
	for _, t := range txs {
		if t.Amount > 0 {
			revenue += t.Amount
		} else {
			expenses += -t.Amount
		}
	}
	return revenue, expenses, revenue - expenses
}

// CategoryRollup groups transactions by category. Groups where money
// mostly flows out are flagged as expense categories. The result is
// ordered by expenses descending, then name for a stable order.
func (p *SummaryProcessor) CategoryRollup(txs []models.Transaction) []models.CategoryData {
	byName := make(map[string]*models.CategoryData)
	var order []string
	for _, t := range txs {
		group, ok := byName[t.Category]
		if !ok {
			group = &models.CategoryData{Name: t.Category}
			byName[t.Category] = group
			order = append(order, t.Category)
		}
		if t.Amount > 0 {
			group.Revenue += t.Amount
		} else {
			group.Expenses += -t.Amount
		}
		group.Transactions = append(group.Transactions, t)
	}

	result := make([]models.CategoryData, 0, len(order))
	for _, name := range order {
		group := byName[name]
		group.IsExpense = group.Expenses > group.Revenue
		result = append(result, *group)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Expenses != result[j].Expenses {
			return result[i].Expenses > result[j].Expenses
		}
		return result[i].Name < result[j].Name
	})
	return result
}

// ProjectRollup groups transactions by project tag. Untagged
// transactions are excluded. A project is Active when its most recent
// transaction falls within the activity window.
func (p *SummaryProcessor) ProjectRollup(txs []models.Transaction) []models.ProjectData {
	byName := make(map[string]*models.ProjectData)
	lastDate := make(map[string]string)
	var order []string
	for _, t := range txs {
		if t.Project == "" {
			continue
		}
		group, ok := byName[t.Project]
		if !ok {
			group = &models.ProjectData{Name: t.Project}
			byName[t.Project] = group
			order = append(order, t.Project)
		}
		if t.Amount > 0 {
			group.Revenue += t.Amount
		} else {
			group.Expenses += -t.Amount
		}
		group.Transactions = append(group.Transactions, t)
		if t.Date > lastDate[t.Project] {
			lastDate[t.Project] = t.Date
		}
	}

	result := make([]models.ProjectData, 0, len(order))
	for _, name := range order {
		group := byName[name]
		group.NetProfit = group.Revenue - group.Expenses
		switch {
		case group.Expenses > 0:
			group.ROI = utils.RoundFloat(group.NetProfit/group.Expenses*100, 2)
		case group.Revenue > 0:
			group.ROI = math.Inf(1)
		default:
			group.ROI = 0
		}
		group.Status = "Completed"
		if last := utils.ParseDate(strings.TrimSpace(lastDate[name])); !last.IsZero() {
			if p.now.Sub(last) <= activeProjectWindow {
				group.Status = "Active"
			}
		}
		result = append(result, *group)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Revenue > result[j].Revenue
	})
	return result
}

// MonthlyRollup groups transactions by the YYYY-MM prefix of their
// date, sorted ascending by month.
func (p *SummaryProcessor) MonthlyRollup(txs []models.Transaction) []models.MonthlyData {
	byMonth := make(map[string]*models.MonthlyData)
	for _, t := range txs {
		if len(t.Date) < 7 {
			continue
		}
		month := t.Date[:7]
		group, ok := byMonth[month]
		if !ok {
			group = &models.MonthlyData{Month: month}
			byMonth[month] = group
		}
		if t.Amount > 0 {
			group.Revenue += t.Amount
		} else {
			group.Expenses += -t.Amount
		}
		group.NetProfit = group.Revenue - group.Expenses
	}

	result := make([]models.MonthlyData, 0, len(byMonth))
	for _, group := range byMonth {
		result = append(result, *group)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Month < result[j].Month
	})
	return result
}
