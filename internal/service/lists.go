package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/marquee/marquee-go/internal/model"
	"github.com/marquee/marquee-go/internal/repository"
	"github.com/marquee/marquee-go/internal/tmdb"
)

const (
	DefaultListEmoji = "🎬"
	maxListName      = 100
	maxListEmoji     = 16
)

// ListPage is one hydrated page of a list.
type ListPage struct {
	List         model.List     `json:"list"`
	Page         int            `json:"page"`
	TotalPages   int            `json:"totalPages"`
	TotalResults int            `json:"totalResults"`
	Items        []HydratedItem `json:"items"`
}

// ListService handles custom lists. Every operation is scoped to the owner;
// a list owned by someone else is reported as ErrListNotFound.
type ListService struct {
	repo *repository.ListRepository
	tmdb *tmdb.Client
}

func NewListService(repo *repository.ListRepository, client *tmdb.Client) *ListService {
	return &ListService{repo: repo, tmdb: client}
}

// ValidateListable checks a list item request body.
func ValidateListable(req model.ResourceRequest) (int, model.MediaType, error) {
	mt := model.MediaType(req.ResourceType)
	if req.ResourceID <= 0 || !mt.Listable() {
		return 0, "", ErrInvalidResource
	}
	return req.ResourceID, mt, nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrListNameRequired
	}
	if utf8.RuneCountInString(name) > maxListName {
		return "", ErrListNameTooLong
	}
	return name, nil
}

// normalizeEmoji trims emoji and checks it fits the column. ok is false when
// it is blank.
func normalizeEmoji(emoji string) (string, bool, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return "", false, nil
	}
	if utf8.RuneCountInString(emoji) > maxListEmoji {
		return "", false, ErrListEmojiTooLong
	}
	return emoji, true, nil
}

func normalizeDescription(desc *string) *string {
	if desc == nil {
		return nil
	}
	d := strings.TrimSpace(*desc)
	if d == "" {
		return nil
	}
	return &d
}

// Create adds a list for userID.
func (s *ListService) Create(ctx context.Context, userID string, req model.CreateListRequest) (*model.List, error) {
	name, err := normalizeName(req.Name)
	if err != nil {
		return nil, err
	}
	emoji, ok, err := normalizeEmoji(req.Emoji)
	if err != nil {
		return nil, err
	}
	if !ok {
		emoji = DefaultListEmoji
	}

	list := &model.List{
		UserID:      userID,
		Name:        name,
		Description: normalizeDescription(req.Description),
		Emoji:       emoji,
	}
	if err := s.repo.Create(ctx, list); err != nil {
		slog.Error("list create failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to create list: %w", err)
	}
	return list, nil
}

// Get returns a list owned by userID.
func (s *ListService) Get(ctx context.Context, userID, listID string) (*model.List, error) {
	list, err := s.repo.GetByID(ctx, userID, listID)
	if err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to load list: %w", err)
	}
	return list, nil
}

// Update applies the non-nil fields of req.
func (s *ListService) Update(ctx context.Context, userID, listID string, req model.UpdateListRequest) (*model.List, error) {
	list, err := s.Get(ctx, userID, listID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name, err := normalizeName(*req.Name)
		if err != nil {
			return nil, err
		}
		list.Name = name
	}
	if req.Description != nil {
		list.Description = normalizeDescription(req.Description)
	}
	if req.Emoji != nil {
		emoji, ok, err := normalizeEmoji(*req.Emoji)
		if err != nil {
			return nil, err
		}
		if ok {
			list.Emoji = emoji
		}
	}

	if err := s.repo.Update(ctx, list); err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			return nil, ErrListNotFound
		}
		slog.Error("list update failed", "user_id", userID, "list_id", listID, "error", err)
		return nil, fmt.Errorf("failed to update list: %w", err)
	}
	return list, nil
}

// Delete removes a list and its items.
func (s *ListService) Delete(ctx context.Context, userID, listID string) error {
	if err := s.repo.Delete(ctx, userID, listID); err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			return ErrListNotFound
		}
		slog.Error("list delete failed", "user_id", userID, "list_id", listID, "error", err)
		return fmt.Errorf("failed to delete list: %w", err)
	}
	return nil
}

// ListForUser returns the user's lists with item counts.
func (s *ListService) ListForUser(ctx context.Context, userID string) ([]model.ListSummary, error) {
	lists, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lists: %w", err)
	}
	counts, err := s.repo.ItemCounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load list counts: %w", err)
	}

	out := make([]model.ListSummary, len(lists))
	for i, l := range lists {
		out[i] = model.ListSummary{List: l, ItemCount: counts[l.ID]}
	}
	return out, nil
}

// AddItem puts a resource in a list owned by userID.
func (s *ListService) AddItem(ctx context.Context, userID, listID string, req model.ResourceRequest) error {
	id, mt, err := ValidateListable(req)
	if err != nil {
		return err
	}

	err = s.repo.AddItem(ctx, userID, &model.ListItem{ListID: listID, ResourceID: id, ResourceType: mt})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrListNotFound):
		return ErrListNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrAlreadyInList
	default:
		slog.Error("list add item failed", "user_id", userID, "list_id", listID, "error", err)
		return fmt.Errorf("failed to add to list: %w", err)
	}
}

// RemoveItem takes a resource out of a list owned by userID. Removing an
// absent resource succeeds.
func (s *ListService) RemoveItem(ctx context.Context, userID, listID string, req model.ResourceRequest) error {
	id, mt, err := ValidateListable(req)
	if err != nil {
		return err
	}
	if _, err := s.Get(ctx, userID, listID); err != nil {
		return err
	}
	if _, err := s.repo.RemoveItem(ctx, userID, listID, id, mt); err != nil {
		slog.Error("list remove item failed", "user_id", userID, "list_id", listID, "error", err)
		return fmt.Errorf("failed to remove from list: %w", err)
	}
	return nil
}

// Items returns one hydrated page of a list.
func (s *ListService) Items(ctx context.Context, userID, listID string, page int) (*ListPage, error) {
	list, err := s.Get(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}

	total, err := s.repo.CountItems(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to load list: %w", err)
	}
	out := &ListPage{
		List:         *list,
		Page:         page,
		TotalResults: total,
		TotalPages:   totalPages(total),
		Items:        []HydratedItem{},
	}
	if page > out.TotalPages {
		return out, nil
	}

	items, err := s.repo.Items(ctx, listID, PageSize, pageOffset(page))
	if err != nil {
		return nil, fmt.Errorf("failed to load list: %w", err)
	}
	refs := make([]ResourceRef, len(items))
	for i, it := range items {
		refs[i] = ResourceRef{ID: it.ResourceID, Kind: it.ResourceType}
	}
	out.Items = hydrate(ctx, s.tmdb, refs)
	return out, nil
}

// ListsContaining returns the ids of the user's lists holding the resource.
func (s *ListService) ListsContaining(ctx context.Context, userID string, req model.ResourceRequest) ([]string, error) {
	id, mt, err := ValidateListable(req)
	if err != nil {
		return nil, err
	}
	ids, err := s.repo.ListsContaining(ctx, userID, id, mt)
	if err != nil {
		return nil, fmt.Errorf("failed to load lists: %w", err)
	}
	return ids, nil
}
