package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/username/ledgerlens/src/logger"
	"github.com/username/ledgerlens/src/models"
	"github.com/username/ledgerlens/src/services"
	"github.com/username/ledgerlens/src/utils"
)

type TransactionHandler struct {
	ingestionService services.IngestionService
}

func NewTransactionHandler(service services.IngestionService) *TransactionHandler {
	return &TransactionHandler{
		ingestionService: service,
	}
}

func (h *TransactionHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	transactions, err := h.ingestionService.GetTransactions(userID, monthParam(r))
	if err != nil {
		writeDatasetError(w, userID, err)
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	writeJSONWithETag(w, r, userID, transactions)
}

// HandleUpdateCategory applies a user-driven category correction to a
// single transaction. The categorizer is not re-run.
func (h *TransactionHandler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	transactionID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}

	var body struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	body.Category = strings.TrimSpace(body.Category)
	if body.Category == "" {
		utils.SendJSONError(w, "Category must not be empty", http.StatusBadRequest)
		return
	}

	if err := h.ingestionService.UpdateCategory(userID, transactionID, body.Category); err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			utils.SendJSONError(w, "Transaction not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error updating transaction category", "userID", userID, "transactionID", transactionID, "error", err)
		utils.SendJSONError(w, "Failed to update category", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Transaction category updated", "userID", userID, "transactionID", transactionID, "category", body.Category)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Category updated"})
}

// HandleExportCSV streams the user's transactions as a CSV download.
func (h *TransactionHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	if _, err := h.ingestionService.GetDatasetMeta(userID); err != nil {
		writeDatasetError(w, userID, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := h.ingestionService.ExportCSV(userID, w); err != nil {
		// Headers are already written at this point, so only log.
		logger.L.Error("Error exporting transactions CSV", "userID", userID, "error", err)
	}
}
