package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alanyoungcy/marketwatch/internal/domain"
)

// ChangeNotifier is told the name of the newly active profile after every
// change, so other processes sharing the store can reload.
type ChangeNotifier interface {
	ProfileChanged(ctx context.Context, name string) error
}

// ProfileService owns the active trading profile and the persisted
// settings. The ingestion path reads the active profile's ranges once per
// dump through Ranges.
type ProfileService struct {
	profiles domain.ProfileStore
	settings domain.SettingsStore
	notifier ChangeNotifier
	logger   *slog.Logger

	mu     sync.RWMutex
	active domain.Profile
}

// NewProfileService creates a ProfileService with the Default profile active.
// Call Init to activate the persisted selection.
func NewProfileService(profiles domain.ProfileStore, settings domain.SettingsStore, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		settings: settings,
		logger:   logger,
		active:   domain.DefaultProfile(domain.DefaultProfileName),
	}
}

// SetChangeNotifier registers n for profile changes. Call before serving.
func (s *ProfileService) SetChangeNotifier(n ChangeNotifier) {
	s.notifier = n
}

// Init activates the profile named in the stored settings.
func (s *ProfileService) Init(ctx context.Context) error {
	return s.Reload(ctx)
}

// Reload re-reads the settings and activates the selected profile. An
// unreadable profile leaves Default active and is only logged.
func (s *ProfileService) Reload(ctx context.Context) error {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return fmt.Errorf("profile_service: load settings: %w", err)
	}
	p, err := s.profiles.Load(ctx, settings.SelectedProfile)
	if err != nil {
		s.logger.WarnContext(ctx, "profile_service: selected profile unavailable, using Default",
			slog.String("profile", settings.SelectedProfile),
			slog.String("error", err.Error()),
		)
		p = domain.DefaultProfile(domain.DefaultProfileName)
	}
	s.setActive(p)
	s.logger.InfoContext(ctx, "profile_service: active profile",
		slog.String("profile", p.ProfileName),
		slog.String("buy_range", p.BuyRange.String()),
		slog.String("sell_range", p.SellRange.String()),
	)
	return nil
}

// Active returns a copy of the active profile.
func (s *ProfileService) Active() domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Ranges returns the active profile's buy and sell ranges.
func (s *ProfileService) Ranges() (buy, sell domain.OrderRange) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active.BuyRange, s.active.SellRange
}

func (s *ProfileService) setActive(p domain.Profile) {
	s.mu.Lock()
	s.active = p
	s.mu.Unlock()
}

// announce tells the notifier about a change. The local change has already
// been applied, so a failure is only logged.
func (s *ProfileService) announce(ctx context.Context, name string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.ProfileChanged(ctx, name); err != nil {
		s.logger.WarnContext(ctx, "profile_service: announce change failed",
			slog.String("profile", name),
			slog.String("error", err.Error()),
		)
	}
}

// List returns all profile names, Default first.
func (s *ProfileService) List(ctx context.Context) ([]string, error) {
	names, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("profile_service: list: %w", err)
	}
	return names, nil
}

// Get loads a profile by name.
func (s *ProfileService) Get(ctx context.Context, name string) (domain.Profile, error) {
	p, err := s.profiles.Load(ctx, name)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("profile_service: get %s: %w", name, err)
	}
	return p, nil
}

// Save stores a profile. Saving the active profile applies it immediately.
func (s *ProfileService) Save(ctx context.Context, p domain.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.profiles.Save(ctx, p); err != nil {
		return fmt.Errorf("profile_service: save %s: %w", p.ProfileName, err)
	}
	if p.ProfileName != domain.DefaultProfileName && s.Active().ProfileName == p.ProfileName {
		s.setActive(p)
		s.announce(ctx, p.ProfileName)
	}
	return nil
}

// Delete removes a profile. Deleting the active profile selects Default.
func (s *ProfileService) Delete(ctx context.Context, name string) error {
	if err := s.profiles.Delete(ctx, name); err != nil {
		if errors.Is(err, domain.ErrDefaultProfile) {
			return err
		}
		return fmt.Errorf("profile_service: delete %s: %w", name, err)
	}
	if s.Active().ProfileName == name {
		if _, err := s.Select(ctx, domain.DefaultProfileName); err != nil {
			return err
		}
	}
	return nil
}

// Select activates the named profile and records it as selectedProfile.
func (s *ProfileService) Select(ctx context.Context, name string) (domain.Profile, error) {
	p, err := s.profiles.Load(ctx, name)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("profile_service: select %s: %w", name, err)
	}

	settings, err := s.settings.Load(ctx)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("profile_service: load settings: %w", err)
	}
	settings.SelectedProfile = p.ProfileName
	if err := s.settings.Save(ctx, settings); err != nil {
		return domain.Profile{}, fmt.Errorf("profile_service: save settings: %w", err)
	}

	s.setActive(p)
	s.logger.InfoContext(ctx, "profile_service: profile selected", slog.String("profile", p.ProfileName))
	s.announce(ctx, p.ProfileName)
	return p, nil
}

// Settings returns the stored settings.
func (s *ProfileService) Settings(ctx context.Context) (domain.AppSettings, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return domain.AppSettings{}, fmt.Errorf("profile_service: load settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings validates and stores settings. A different selectedProfile
// is activated as well.
func (s *ProfileService) UpdateSettings(ctx context.Context, settings domain.AppSettings) error {
	if settings.SelectedProfile == "" {
		settings.SelectedProfile = domain.DefaultProfileName
	}
	if settings.AutoCopyMode == "" {
		settings.AutoCopyMode = domain.AutoCopySell
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	var next *domain.Profile
	if settings.SelectedProfile != s.Active().ProfileName {
		p, err := s.profiles.Load(ctx, settings.SelectedProfile)
		if err != nil {
			return fmt.Errorf("profile_service: load %s: %w", settings.SelectedProfile, err)
		}
		next = &p
	}
	if err := s.settings.Save(ctx, settings); err != nil {
		return fmt.Errorf("profile_service: save settings: %w", err)
	}
	if next != nil {
		s.setActive(*next)
		s.announce(ctx, next.ProfileName)
	}
	return nil
}
