package domain

import "context"

// ProfileStore persists trader profiles by name.
type ProfileStore interface {
	// List returns every profile name, with DefaultProfileName first.
	List(ctx context.Context) ([]string, error)
	// Load returns the named profile, or DefaultProfile(name) when none is stored.
	Load(ctx context.Context, name string) (Profile, error)
	// Save stores the profile. Saving the Default profile is a no-op.
	Save(ctx context.Context, p Profile) error
	// Delete removes the named profile. Deleting Default returns ErrDefaultProfile.
	Delete(ctx context.Context, name string) error
}

// SettingsStore persists the application settings document.
type SettingsStore interface {
	Load(ctx context.Context) (AppSettings, error)
	Save(ctx context.Context, s AppSettings) error
}
