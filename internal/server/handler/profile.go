package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/marketwatch/internal/domain"
)

// ProfileService defines the methods that the profile and settings
// handlers require.
type ProfileService interface {
	Active() domain.Profile
	List(ctx context.Context) ([]string, error)
	Get(ctx context.Context, name string) (domain.Profile, error)
	Save(ctx context.Context, p domain.Profile) error
	Delete(ctx context.Context, name string) error
	Select(ctx context.Context, name string) (domain.Profile, error)
	Settings(ctx context.Context) (domain.AppSettings, error)
	UpdateSettings(ctx context.Context, settings domain.AppSettings) error
}

// ProfileHandler serves trader profile endpoints.
type ProfileHandler struct {
	profiles ProfileService
	logger   *slog.Logger
}

// NewProfileHandler creates a ProfileHandler with the given service and logger.
func NewProfileHandler(profiles ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// ListProfiles returns every profile name and the active one.
// GET /api/profiles
func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	names, err := h.profiles.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, "list profiles", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profiles": names,
		"active":   h.profiles.Active().ProfileName,
	})
}

// GetProfile returns a profile by name. Unknown names yield the defaults
// under that name.
// GET /api/profiles/{name}
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context(), pathParam(r, "name"))
	if err != nil {
		writeServiceError(w, r, h.logger, "get profile", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SaveProfile stores a profile. The name in the path wins over the body.
// PUT /api/profiles/{name}
func (h *ProfileHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var p domain.Profile
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p.ProfileName = pathParam(r, "name")
	if p.ProfileName == domain.DefaultProfileName {
		writeError(w, http.StatusConflict, "the Default profile is read-only")
		return
	}
	if err := h.profiles.Save(r.Context(), p); err != nil {
		writeServiceError(w, r, h.logger, "save profile", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProfile removes a profile.
// DELETE /api/profiles/{name}
func (h *ProfileHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.Delete(r.Context(), pathParam(r, "name")); err != nil {
		writeServiceError(w, r, h.logger, "delete profile", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectProfile makes a profile active.
// POST /api/profiles/{name}/select
func (h *ProfileHandler) SelectProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Select(r.Context(), pathParam(r, "name"))
	if err != nil {
		writeServiceError(w, r, h.logger, "select profile", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetSettings returns the application settings.
// GET /api/settings
func (h *ProfileHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.profiles.Settings(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, "get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// UpdateSettings replaces the application settings.
// PUT /api/settings
func (h *ProfileHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var s domain.AppSettings
	if err := decodeJSON(r, &s); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.profiles.UpdateSettings(r.Context(), s); err != nil {
		writeServiceError(w, r, h.logger, "update settings", err)
		return
	}
	updated, err := h.profiles.Settings(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, "get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
