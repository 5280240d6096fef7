package handler

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DirState is the watched market log directory.
type DirState interface {
	Dir() string
	SetDir(dir string)
}

// WatchHandler reads and changes the watched directory.
type WatchHandler struct {
	state  DirState
	logger *slog.Logger
}

// NewWatchHandler creates a WatchHandler.
func NewWatchHandler(state DirState, logger *slog.Logger) *WatchHandler {
	return &WatchHandler{state: state, logger: logger}
}

type watchBody struct {
	Dir string `json:"dir"`
}

// GetWatch returns the watched directory.
// GET /api/watch
func (h *WatchHandler) GetWatch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, watchBody{Dir: h.state.Dir()})
}

// SetWatch points the watcher at a new directory. The directory does not
// have to exist yet; the watcher creates it or waits for it.
// PUT /api/watch
func (h *WatchHandler) SetWatch(w http.ResponseWriter, r *http.Request) {
	var body watchBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dir := strings.TrimSpace(body.Dir)
	if dir == "" {
		writeError(w, http.StatusBadRequest, "dir is required")
		return
	}
	if !filepath.IsAbs(dir) {
		writeError(w, http.StatusBadRequest, "dir must be an absolute path")
		return
	}
	if fi, err := os.Stat(dir); err == nil && !fi.IsDir() {
		writeError(w, http.StatusBadRequest, "dir is not a directory")
		return
	}

	dir = filepath.Clean(dir)
	h.state.SetDir(dir)
	h.logger.InfoContext(r.Context(), "handler: watch directory changed", slog.String("dir", dir))
	writeJSON(w, http.StatusOK, watchBody{Dir: dir})
}
