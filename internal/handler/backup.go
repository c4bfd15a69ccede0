package handler

import (
	"log/slog"
	"net/http"

	"github.com/githsimon/Findr/internal/backup"
)

// BackupHandler serves backup management endpoints.
type BackupHandler struct {
	manager *backup.Manager
	logger  *slog.Logger
}

func NewBackupHandler(manager *backup.Manager, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{
		manager: manager,
		logger:  logger.With("component", "backup_handler"),
	}
}

// Run triggers an immediate backup.
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	key, err := h.manager.RunNow(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"key": key})
}

// Status returns the backup manager status.
func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.manager.Status())
}

// List returns stored backups, newest first.
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	infos, err := h.manager.List(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, infos)
}
