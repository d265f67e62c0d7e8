package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/media"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

const (
	maxTitleLength = 200
	maxTextLength  = 4000
)

type ItemService struct {
	store         store.Store
	media         media.Store
	images        *imaging.Processor
	contactPrefix string
}

func NewItemService(s store.Store, m media.Store, images *imaging.Processor, contactPrefix string) *ItemService {
	if images == nil {
		images = imaging.NewProcessor()
	}
	return &ItemService{store: s, media: m, images: images, contactPrefix: contactPrefix}
}

type CreateItemRequest struct {
	Title       string
	Description string
	Type        string
	Location    string
	Contact     string
	// Image is the raw upload, or nil when no photo was attached.
	Image io.Reader
}

// Create stores a new report owned by actor. An empty contact falls back to
// the actor's profile contact.
func (s *ItemService) Create(ctx context.Context, actor Actor, req CreateItemRequest) (*model.Item, error) {
	item := &model.Item{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Type:        strings.ToLower(strings.TrimSpace(req.Type)),
		Location:    strings.TrimSpace(req.Location),
		UserID:      actor.UserID,
		Reporter:    actor.Username,
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}

	contact := req.Contact
	if strings.TrimSpace(contact) == "" {
		owner, err := s.store.GetUser(ctx, actor.UserID)
		if err != nil {
			return nil, fmt.Errorf("loading reporter: %w", err)
		}
		if owner == nil {
			return nil, fmt.Errorf("%w: reporter account no longer exists", ErrUnauthorized)
		}
		contact = owner.Contact
	}
	item.Contact = model.NormalizeContact(contact, s.contactPrefix)

	if req.Image != nil {
		img, err := s.images.Process(req.Image)
		if err != nil {
			if errors.Is(err, imaging.ErrUnsupportedFormat) || errors.Is(err, imaging.ErrTooLarge) {
				return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
			}
			return nil, fmt.Errorf("processing image: %w", err)
		}
		obj, err := s.media.Save(ctx, img.Data, img.MIME)
		if err != nil {
			return nil, fmt.Errorf("storing image: %w", err)
		}
		item.ImageURL = obj.URL
		item.ImageKey = obj.Key
	}

	if err := s.store.CreateItem(ctx, item); err != nil {
		if item.ImageKey != "" {
			if derr := s.media.Delete(ctx, item.ImageKey); derr != nil {
				slog.Warn("failed to remove orphaned image", "key", item.ImageKey, "error", derr)
			}
		}
		return nil, fmt.Errorf("creating item: %w", err)
	}
	return item, nil
}

func validateItem(item *model.Item) error {
	if item.Title == "" {
		return fmt.Errorf("%w: title required", ErrValidation)
	}
	if len(item.Title) > maxTitleLength {
		return fmt.Errorf("%w: title must be at most %d characters", ErrValidation, maxTitleLength)
	}
	if len(item.Description) > maxTextLength || len(item.Location) > maxTextLength {
		return fmt.Errorf("%w: description and location must be at most %d characters", ErrValidation, maxTextLength)
	}
	if err := model.ValidateItemType(item.Type); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// List returns reports matching filter, newest first.
func (s *ItemService) List(ctx context.Context, filter model.ItemFilter) ([]model.Item, error) {
	filter.Type = strings.ToLower(strings.TrimSpace(filter.Type))
	if filter.Type != "" {
		if err := model.ValidateItemType(filter.Type); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	items, err := s.store.ListItems(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// Get returns a single report.
func (s *ItemService) Get(ctx context.Context, id string) (*model.Item, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: item", ErrNotFound)
	}
	return item, nil
}

// Delete removes a report owned by actor along with its image.
func (s *ItemService) Delete(ctx context.Context, actor Actor, id string) (*model.Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.UserID != actor.UserID {
		return nil, ErrForbidden
	}

	deleted, err := s.store.DeleteItem(ctx, id, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("deleting item: %w", err)
	}
	if !deleted {
		return nil, fmt.Errorf("%w: item", ErrNotFound)
	}

	if item.ImageKey != "" {
		if err := s.media.Delete(ctx, item.ImageKey); err != nil {
			slog.Warn("failed to delete item image", "item", item.ID, "key", item.ImageKey, "error", err)
		}
	}
	return item, nil
}
