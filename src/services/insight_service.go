package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/username/ledgerlens/src/logger"
	"github.com/username/ledgerlens/src/models"
	"google.golang.org/genai"
)

const ckInsights = "insights_user_%d_%s" // keyed by dataset version

type insightServiceImpl struct {
	ingestion   IngestionService
	apiKey      string
	model       string
	reportCache *cache.Cache
}

func NewInsightService(ingestion IngestionService, apiKey, model string, reportCache *cache.Cache) InsightService {
	if apiKey == "" {
		logger.L.Warn("GEMINI_API_KEY not set, insights will use the built-in heuristics")
	}
	return &insightServiceImpl{
		ingestion:   ingestion,
		apiKey:      apiKey,
		model:       model,
		reportCache: reportCache,
	}
}

func (s *insightServiceImpl) GenerateInsights(ctx context.Context, userID int64) ([]models.Insight, error) {
	meta, err := s.ingestion.GetDatasetMeta(userID)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf(ckInsights, userID, meta.Version)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for insights", "userID", userID)
		return cached.([]models.Insight), nil
	}

	data, err := s.ingestion.GetFinancialData(userID, "")
	if err != nil {
		return nil, err
	}
	categories, err := s.ingestion.GetCategoryData(userID, "")
	if err != nil {
		return nil, err
	}
	monthly, err := s.ingestion.GetMonthlyData(userID)
	if err != nil {
		return nil, err
	}

	var insights []models.Insight
	if s.apiKey == "" {
		insights = heuristicInsights(data, categories)
	} else {
		insights, err = s.generateWithModel(ctx, data, categories, monthly)
		if err != nil {
			logger.L.Error("Model insight generation failed, falling back to heuristics", "userID", userID, "error", err)
			insights = heuristicInsights(data, categories)
		}
	}

	s.reportCache.Set(cacheKey, insights, cache.NoExpiration)
	return insights, nil
}

func (s *insightServiceImpl) generateWithModel(ctx context.Context, data *models.FinancialData, categories []models.CategoryData, monthly []models.MonthlyData) ([]models.Insight, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      s.apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create genai client: %v", ErrInsightsUnavailable, err)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: buildInsightPrompt(data, categories, monthly)}},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: generate content: %v", ErrInsightsUnavailable, err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("%w: empty response from model", ErrInsightsUnavailable)
	}

	var insights []models.Insight
	if err := json.Unmarshal([]byte(cleanModelJSON(rawText)), &insights); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v", ErrInsightsUnavailable, err)
	}
	return insights, nil
}

// buildInsightPrompt packs the pre-aggregated summaries into a compact
// prompt. Raw transaction text is deliberately not sent.
func buildInsightPrompt(data *models.FinancialData, categories []models.CategoryData, monthly []models.MonthlyData) string {
	var b strings.Builder
	b.WriteString("You are a financial analyst for a small consultancy. Based on the aggregated figures below, ")
	b.WriteString("return a JSON array of at most 5 insight objects with fields: ")
	b.WriteString(`"title", "description", "priority" (high|medium|low) and "category" (runway|growth|optimization|risk|opportunity). `)
	b.WriteString("Return only the JSON array, no markdown.\n\n")

	fmt.Fprintf(&b, "Total revenue: %.2f\nTotal expenses: %.2f\nNet profit: %.2f\nCurrent balance: %.2f\nOutstanding receivables: %.2f\n\n",
		data.TotalRevenue, data.TotalExpenses, data.NetProfit, data.CurrentBalance, data.OutstandingReceivables)

	b.WriteString("Per category (name, revenue, expenses):\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "- %s: %.2f / %.2f\n", c.Name, c.Revenue, c.Expenses)
	}
	b.WriteString("\nPer month (month, revenue, expenses):\n")
	for _, m := range monthly {
		fmt.Fprintf(&b, "- %s: %.2f / %.2f\n", m.Month, m.Revenue, m.Expenses)
	}
	return b.String()
}

// cleanModelJSON strips Markdown code fences the model sometimes wraps
// around its JSON output.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// heuristicInsights is the offline fallback when no model is
// configured or the call fails. It covers the obvious signals only.
func heuristicInsights(data *models.FinancialData, categories []models.CategoryData) []models.Insight {
	var insights []models.Insight

	if data.NetProfit < 0 {
		insights = append(insights, models.Insight{
			Title:       "Operating at a loss",
			Description: fmt.Sprintf("Expenses exceed revenue by %.2f over the loaded period. Review recurring costs against the current balance of %.2f.", -data.NetProfit, data.CurrentBalance),
			Priority:    "high",
			Category:    "runway",
		})
	}

	if data.TotalRevenue > 0 && data.OutstandingReceivables > 0.2*data.TotalRevenue {
		insights = append(insights, models.Insight{
			Title:       "High outstanding receivables",
			Description: fmt.Sprintf("%.2f is outstanding, more than 20%% of total revenue. Consider sending payment reminders.", data.OutstandingReceivables),
			Priority:    "medium",
			Category:    "risk",
		})
	}

	var topExpense *models.CategoryData
	for i := range categories {
		if categories[i].IsExpense && (topExpense == nil || categories[i].Expenses > topExpense.Expenses) {
			topExpense = &categories[i]
		}
	}
	if topExpense != nil && data.TotalExpenses > 0 {
		insights = append(insights, models.Insight{
			Title:       fmt.Sprintf("Largest expense category: %s", topExpense.Name),
			Description: fmt.Sprintf("%s accounts for %.0f%% of total expenses (%.2f).", topExpense.Name, topExpense.Expenses/data.TotalExpenses*100, topExpense.Expenses),
			Priority:    "low",
			Category:    "optimization",
		})
	}

	if len(insights) == 0 {
		insights = append(insights, models.Insight{
			Title:       "Healthy period",
			Description: fmt.Sprintf("Revenue %.2f against expenses %.2f leaves a net profit of %.2f.", data.TotalRevenue, data.TotalExpenses, data.NetProfit),
			Priority:    "low",
			Category:    "growth",
		})
	}
	return insights
}
