package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"creatorflow/internal/repository"
	"creatorflow/internal/service"
)

// AdminHandler serves admin-only operations: pausing outbound
// notifications and database backup/restore
type AdminHandler struct {
	settings  *repository.SettingsRepository
	backupSvc *service.BackupService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(settings *repository.SettingsRepository, backupSvc *service.BackupService) *AdminHandler {
	return &AdminHandler{settings: settings, backupSvc: backupSvc}
}

// GetNotificationsPaused returns the current pause flag
func (h *AdminHandler) GetNotificationsPaused(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"paused": h.settings.NotificationsPaused()})
}

// SetNotificationsPaused flips the pause flag for outbound notifications
func (h *AdminHandler) SetNotificationsPaused(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Paused bool `json:"paused"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorKind(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	if err := h.settings.SetNotificationsPaused(req.Paused); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "failed to update setting", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"paused": req.Paused})
}

// ExportBackup streams a full database backup
func (h *AdminHandler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="creatorflow-backup.json"`)

	if err := h.backupSvc.ExportToWriter(w); err != nil {
		// Headers and part of the body may already be written.
		log.Printf("Backup export failed: %v", err)
	}
}

// ImportBackup restores a database backup from the request body
func (h *AdminHandler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	if err := h.backupSvc.ImportFromReader(r.Body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Backup import failed", "backup import failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "imported"})
}
