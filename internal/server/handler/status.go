package handler

import (
	"net/http"
	"time"

	"github.com/alanyoungcy/marketwatch/internal/domain"
)

// StatusSource reports the ingestion pipeline's last status line.
type StatusSource interface {
	Status() (status string, at time.Time, processed int64)
}

// ActiveProfile returns the profile used for trade calculations.
type ActiveProfile interface {
	Active() domain.Profile
}

// StatusHandler serves the backend status for the dashboard.
type StatusHandler struct {
	mode      string
	startedAt time.Time
	watch     DirState
	status    StatusSource
	profiles  ActiveProfile
}

// NewStatusHandler creates a StatusHandler. watch is nil when no watcher
// runs in this process.
func NewStatusHandler(mode string, startedAt time.Time, watch DirState, status StatusSource, profiles ActiveProfile) *StatusHandler {
	return &StatusHandler{
		mode:      mode,
		startedAt: startedAt,
		watch:     watch,
		status:    status,
		profiles:  profiles,
	}
}

type statusResponse struct {
	Mode          string `json:"mode"`
	WatchDir      string `json:"watchDir,omitempty"`
	ActiveProfile string `json:"activeProfile"`
	LastStatus    string `json:"lastStatus"`
	LastStatusAt  string `json:"lastStatusAt,omitempty"`
	Processed     int64  `json:"processed"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

// GetStatus responds with the mode, watched directory, and pipeline status.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, at, processed := h.status.Status()
	resp := statusResponse{
		Mode:          h.mode,
		ActiveProfile: h.profiles.Active().ProfileName,
		LastStatus:    status,
		Processed:     processed,
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	}
	if h.watch != nil {
		resp.WatchDir = h.watch.Dir()
	}
	if !at.IsZero() {
		resp.LastStatusAt = at.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}
