package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/username/ledgerlens/src/database"
	"github.com/username/ledgerlens/src/logger"
	"github.com/username/ledgerlens/src/model"
	"github.com/username/ledgerlens/src/services"
	"github.com/username/ledgerlens/src/utils"
)

type ReceivablesHandler struct {
	ingestionService services.IngestionService
	reminderService  services.ReminderService
}

func NewReceivablesHandler(ingestionSvc services.IngestionService, reminderSvc services.ReminderService) *ReceivablesHandler {
	return &ReceivablesHandler{ingestionService: ingestionSvc, reminderService: reminderSvc}
}

// HandleGetReceivables returns the open invoice list with aging buckets.
func (h *ReceivablesHandler) HandleGetReceivables(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "User not authenticated", http.StatusUnauthorized)
		return
	}

	summary, err := h.ingestionService.GetReceivables(userID)
	if err != nil {
		writeDatasetError(w, userID, err)
		return
	}

	writeJSONWithETag(w, r, userID, summary)
}

// HandleSendReminders emails the authenticated user a digest of overdue
// invoices and reports how many were included.
func (h *ReceivablesHandler) HandleSendReminders(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "User not authenticated", http.StatusUnauthorized)
		return
	}

	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		logger.L.Error("Error fetching user for reminder", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to send reminders", http.StatusInternalServerError)
		return
	}

	count, err := h.reminderService.SendOverdueReminder(r.Context(), userID, user.Email)
	if err != nil {
		writeDatasetError(w, userID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":  fmt.Sprintf("Reminder sent for %d overdue invoice(s)", count),
		"reminded": count,
	})
}
