package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/ledgerlens/src/logger"
	"github.com/username/ledgerlens/src/services"
	"github.com/username/ledgerlens/src/utils"
)

type DashboardHandler struct {
	ingestionService services.IngestionService
}

func NewDashboardHandler(service services.IngestionService) *DashboardHandler {
	return &DashboardHandler{
		ingestionService: service,
	}
}

// HandleGetFinancialData serves the reconciled dataset with ETag
// support, so unchanged dashboards cost a 304. An optional ?month
// filter narrows the transactions and the flow totals to one month.
func (h *DashboardHandler) HandleGetFinancialData(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	data, err := h.ingestionService.GetFinancialData(userID, monthParam(r))
	if err != nil {
		writeDatasetError(w, userID, err)
		return
	}

	writeJSONWithETag(w, r, userID, data)
}

func (h *DashboardHandler) HandleGetCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	categories, err := h.ingestionService.GetCategoryData(userID, monthParam(r))
	if err != nil {
		writeDatasetError(w, userID, err)
		return
	}

	writeJSONWithETag(w, r, userID, categories)
}

func (h *DashboardHandler) HandleGetProjects(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	projects, err := h.ingestionService.GetProjectData(userID, monthParam(r))
	if err != nil {
		writeDatasetError(w, userID, err)
		return
	}

	writeJSONWithETag(w, r, userID, projects)
}

func (h *DashboardHandler) HandleGetMonthly(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	monthly, err := h.ingestionService.GetMonthlyData(userID)
	if err != nil {
		writeDatasetError(w, userID, err)
		return
	}

	writeJSONWithETag(w, r, userID, monthly)
}

func (h *DashboardHandler) HandleGetDatasetMeta(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	meta, err := h.ingestionService.GetDatasetMeta(userID)
	if err != nil {
		writeDatasetError(w, userID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(meta); err != nil {
		logger.L.Error("Error encoding dataset metadata", "userID", userID, "error", err)
	}
}

// monthParam returns the optional ?month=YYYY-MM filter.
func monthParam(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("month"))
}

func writeDatasetError(w http.ResponseWriter, userID int64, err error) {
	if errors.Is(err, services.ErrNoDataset) {
		utils.SendJSONError(w, "No dataset loaded. Upload an export or load the sample data first.", http.StatusNotFound)
		return
	}
	logger.L.Error("Error retrieving dashboard data", "userID", userID, "error", err)
	utils.SendJSONError(w, fmt.Sprintf("Error retrieving data for userID %d", userID), http.StatusInternalServerError)
}

// writeJSONWithETag writes the payload with an ETag header and honors
// If-None-Match with a 304.
func writeJSONWithETag(w http.ResponseWriter, r *http.Request, userID int64, payload interface{}) {
	currentETag, etagErr := utils.GenerateETag(payload)
	if etagErr != nil {
		logger.L.Error("Failed to generate ETag", "userID", userID, "error", etagErr)
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("%q", currentETag)
		w.Header().Set("ETag", quotedETag)
		for _, cETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.L.Error("Error generating JSON response", "userID", userID, "error", err)
	}
}
