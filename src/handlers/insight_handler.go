package handlers

import (
	"errors"
	"net/http"

	"github.com/username/ledgerlens/src/logger"
	"github.com/username/ledgerlens/src/services"
	"github.com/username/ledgerlens/src/utils"
)

type InsightHandler struct {
	insightService services.InsightService
}

func NewInsightHandler(insightSvc services.InsightService) *InsightHandler {
	return &InsightHandler{insightService: insightSvc}
}

// HandleGetInsights returns model-generated or heuristic insights for the
// user's current dataset.
func (h *InsightHandler) HandleGetInsights(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "User not authenticated", http.StatusUnauthorized)
		return
	}

	insights, err := h.insightService.GenerateInsights(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNoDataset) {
			utils.SendJSONError(w, "No dataset loaded. Upload an export or load the sample data first.", http.StatusNotFound)
			return
		}
		if errors.Is(err, services.ErrInsightsUnavailable) {
			logger.L.Error("Insight generation unavailable", "userID", userID, "error", err)
			utils.SendJSONError(w, "Insights are temporarily unavailable", http.StatusBadGateway)
			return
		}
		logger.L.Error("Error generating insights", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to generate insights", http.StatusInternalServerError)
		return
	}

	writeJSONWithETag(w, r, userID, insights)
}
