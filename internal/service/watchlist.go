package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/marquee/marquee-go/internal/model"
	"github.com/marquee/marquee-go/internal/repository"
	"github.com/marquee/marquee-go/internal/tmdb"
)

// WatchAction is the outcome of a toggle.
type WatchAction string

const (
	ActionAdded   WatchAction = "added"
	ActionRemoved WatchAction = "removed"
)

// WatchlistPage is one hydrated page of a watchlist tab.
type WatchlistPage struct {
	MediaType    model.MediaType         `json:"mediaType"`
	Page         int                     `json:"page"`
	TotalPages   int                     `json:"totalPages"`
	TotalResults int                     `json:"totalResults"`
	Counts       map[model.MediaType]int `json:"counts"`
	Items        []HydratedItem          `json:"items"`
}

// WatchlistService handles watchlist business logic.
type WatchlistService struct {
	repo *repository.WatchlistRepository
	tmdb *tmdb.Client
}

// NewWatchlistService creates a new WatchlistService.
func NewWatchlistService(repo *repository.WatchlistRepository, client *tmdb.Client) *WatchlistService {
	return &WatchlistService{repo: repo, tmdb: client}
}

// ValidateWatchable checks a watchlist request body.
func ValidateWatchable(req model.ResourceRequest) (int, model.MediaType, error) {
	mt := model.MediaType(req.ResourceType)
	if req.ResourceID <= 0 || !mt.Watchable() {
		return 0, "", ErrInvalidResource
	}
	return req.ResourceID, mt, nil
}

// Add puts a resource in the user's watchlist.
func (s *WatchlistService) Add(ctx context.Context, userID string, req model.ResourceRequest) error {
	id, mt, err := ValidateWatchable(req)
	if err != nil {
		return err
	}

	err = s.repo.Add(ctx, &model.WatchlistEntry{UserID: userID, ResourceID: id, ResourceType: mt})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyInWatchlist
		}
		slog.Error("watchlist add failed", "user_id", userID, "resource_id", id, "error", err)
		return fmt.Errorf("failed to add to watchlist: %w", err)
	}
	return nil
}

// Remove takes a resource out of the watchlist. Removing an absent resource
// succeeds.
func (s *WatchlistService) Remove(ctx context.Context, userID string, req model.ResourceRequest) error {
	id, mt, err := ValidateWatchable(req)
	if err != nil {
		return err
	}

	if _, err := s.repo.Remove(ctx, userID, id, mt); err != nil {
		slog.Error("watchlist remove failed", "user_id", userID, "resource_id", id, "error", err)
		return fmt.Errorf("failed to remove from watchlist: %w", err)
	}
	return nil
}

// Toggle removes the resource when present and adds it otherwise.
func (s *WatchlistService) Toggle(ctx context.Context, userID string, req model.ResourceRequest) (WatchAction, error) {
	id, mt, err := ValidateWatchable(req)
	if err != nil {
		return "", err
	}

	removed, err := s.repo.Remove(ctx, userID, id, mt)
	if err != nil {
		slog.Error("watchlist toggle failed", "user_id", userID, "resource_id", id, "error", err)
		return "", fmt.Errorf("failed to toggle watchlist: %w", err)
	}
	if removed {
		return ActionRemoved, nil
	}

	err = s.repo.Add(ctx, &model.WatchlistEntry{UserID: userID, ResourceID: id, ResourceType: mt})
	if err != nil && !errors.Is(err, repository.ErrDuplicate) {
		slog.Error("watchlist toggle failed", "user_id", userID, "resource_id", id, "error", err)
		return "", fmt.Errorf("failed to toggle watchlist: %w", err)
	}
	// A concurrent add that won the race leaves the resource present, which
	// is what this toggle asked for.
	return ActionAdded, nil
}

// Status reports watchlist membership.
func (s *WatchlistService) Status(ctx context.Context, userID string, req model.ResourceRequest) (bool, error) {
	id, mt, err := ValidateWatchable(req)
	if err != nil {
		return false, err
	}
	ok, err := s.repo.Exists(ctx, userID, id, mt)
	if err != nil {
		return false, fmt.Errorf("failed to load watchlist status: %w", err)
	}
	return ok, nil
}

// List returns every entry, newest first.
func (s *WatchlistService) List(ctx context.Context, userID string) ([]model.WatchlistEntry, error) {
	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		slog.Error("watchlist list failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}
	return entries, nil
}

// Counts returns the number of entries per media type.
func (s *WatchlistService) Counts(ctx context.Context, userID string) (map[model.MediaType]int, error) {
	counts, err := s.repo.CountByType(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist counts: %w", err)
	}
	for _, mt := range []model.MediaType{model.MediaTypeMovie, model.MediaTypeTV} {
		if _, ok := counts[mt]; !ok {
			counts[mt] = 0
		}
	}
	return counts, nil
}

// Page returns one hydrated page of the movie or tv tab. Pages past the end
// come back empty with TotalPages set, so callers can redirect.
func (s *WatchlistService) Page(ctx context.Context, userID string, mt model.MediaType, page int) (*WatchlistPage, error) {
	if !mt.Watchable() {
		return nil, ErrInvalidMediaType
	}
	if page < 1 {
		page = 1
	}

	counts, err := s.Counts(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &WatchlistPage{
		MediaType:    mt,
		Page:         page,
		TotalResults: counts[mt],
		TotalPages:   totalPages(counts[mt]),
		Counts:       counts,
		Items:        []HydratedItem{},
	}
	if page > out.TotalPages {
		return out, nil
	}

	entries, err := s.repo.ListByType(ctx, userID, mt, PageSize, pageOffset(page))
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}
	refs := make([]ResourceRef, len(entries))
	for i, e := range entries {
		refs[i] = ResourceRef{ID: e.ResourceID, Kind: e.ResourceType}
	}
	out.Items = hydrate(ctx, s.tmdb, refs)
	return out, nil
}
