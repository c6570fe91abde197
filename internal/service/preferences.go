package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/marquee/marquee-go/internal/model"
	"github.com/marquee/marquee-go/internal/repository"
)

// DefaultRegion is used when a user has no region or it cannot be loaded.
const DefaultRegion = "US"

// PreferenceService manages region and streaming provider preferences.
type PreferenceService struct {
	users *repository.UserRepository
	prefs *repository.PreferenceRepository
}

func NewPreferenceService(users *repository.UserRepository, prefs *repository.PreferenceRepository) *PreferenceService {
	return &PreferenceService{users: users, prefs: prefs}
}

// ResolveRegion returns the user's region. Anonymous requests and lookup
// failures fall back to DefaultRegion; it never fails.
func (s *PreferenceService) ResolveRegion(ctx context.Context, userID string) Resolved[string] {
	if userID == "" {
		return fallback(DefaultRegion, nil)
	}
	region, err := s.users.GetRegion(ctx, userID)
	if err != nil {
		slog.Warn("region lookup failed, using default", "user_id", userID, "error", err)
		return fallback(DefaultRegion, err)
	}
	if region == "" {
		return fallback(DefaultRegion, nil)
	}
	return resolved(region)
}

// NormalizeRegion uppercases a region code and checks it is two ASCII letters.
func NormalizeRegion(region string) (string, error) {
	region, ok := model.ParseRegion(region)
	if !ok {
		return "", ErrInvalidRegion
	}
	return region, nil
}

// SetRegion stores the user's region.
func (s *PreferenceService) SetRegion(ctx context.Context, userID, region string) (string, error) {
	region, err := NormalizeRegion(region)
	if err != nil {
		return "", err
	}
	if err := s.users.SetRegion(ctx, userID, region); err != nil {
		slog.Error("region update failed", "user_id", userID, "error", err)
		return "", fmt.Errorf("failed to update region: %w", err)
	}
	return region, nil
}

// Providers returns the user's preferred provider ids.
func (s *PreferenceService) Providers(ctx context.Context, userID string) ([]int, error) {
	ids, err := s.prefs.ProviderIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load providers: %w", err)
	}
	return ids, nil
}

// SetProviders replaces the user's preferred provider ids.
func (s *PreferenceService) SetProviders(ctx context.Context, userID string, ids []int) error {
	for _, id := range ids {
		if id <= 0 {
			return ErrInvalidProvider
		}
	}
	if err := s.prefs.ReplaceProviders(ctx, userID, ids); err != nil {
		slog.Error("provider update failed", "user_id", userID, "error", err)
		return fmt.Errorf("failed to update providers: %w", err)
	}
	return nil
}
