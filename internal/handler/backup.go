package handler

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/paperbark/kindwords/internal/backup"
)

// BackupHandler triggers an on-demand encrypted database backup. The
// endpoint is operator-facing, guarded by a shared token rather than
// a user session, and answers 404 when backups are not configured so
// the feature's presence is not advertised.
type BackupHandler struct {
	manager *backup.Manager
	logger  *slog.Logger
}

func NewBackupHandler(m *backup.Manager, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, logger: logger}
}

func (h *BackupHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if !h.manager.Enabled() || h.manager.Token() == "" {
		writeMessage(w, http.StatusNotFound, "Not found.")
		return
	}

	token := r.Header.Get("X-Operator-Token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.manager.Token())) != 1 {
		writeMessage(w, http.StatusUnauthorized, "Not authorized.")
		return
	}

	key, err := h.manager.Run(r.Context())
	if err != nil {
		h.logger.Error("backup run", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Backup failed.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Backup complete.", "key": key})
}
