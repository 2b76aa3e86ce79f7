package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"catalog/domain"
	"catalog/pkg/events"
)

// ItemService owns item create, update and delete along with their image
// side effects, plus the read queries used by the API.
type ItemService struct {
	items    ItemRepository
	resolver *CategoryResolver
	images   ImageStore
	options
}

func NewItemService(items ItemRepository, categories CategoryRepository, images ImageStore, opts ...Option) *ItemService {
	return &ItemService{
		items:    items,
		resolver: NewCategoryResolver(categories),
		images:   images,
		options:  buildOptions(opts),
	}
}

// Create persists a new item. With an image the item is saved twice: the
// image key depends on the id assigned by the first save.
func (s *ItemService) Create(ctx context.Context, draft domain.ItemSnapshot, image *domain.Image) (created domain.Item, err error) {
	defer func(started time.Time) { s.observe("item.create", started, err) }(time.Now())

	if err := draft.Validate(); err != nil {
		return domain.Item{}, domain.InvalidInput("%v", err)
	}

	item := domain.Item{}.WithSnapshot(draft, nil)

	exists, err := s.items.ExistsByExample(ctx, item.Probe(), 0)
	if err != nil {
		return domain.Item{}, storeError(err)
	}
	if exists {
		return domain.Item{}, domain.AlreadyExists("item", item.Fingerprint())
	}

	categories, err := s.resolver.Resolve(ctx, draft.Categories)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Item{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		return domain.Item{}, err
	}
	item.Categories = categories

	saved, err := s.items.Save(ctx, item)
	if err != nil {
		return domain.Item{}, storeError(err)
	}

	if image != nil {
		uri, err := s.upload(ctx, *image, saved.ID)
		if err != nil {
			zap.L().Error("image upload failed after item was persisted",
				zap.Int64("itemId", saved.ID),
				zap.Error(err),
			)
			return domain.Item{}, err
		}

		saved.ImageURI = &uri
		withImage, err := s.items.Save(ctx, saved)
		if err != nil {
			s.reportOrphan(ctx, saved.ID, uri, err)
			return domain.Item{}, storeError(err)
		}
		saved = withImage

		s.emit(ctx, events.ItemImageUploadedEvent, events.ImagePayload{ItemID: saved.ID, ImageURI: uri, At: time.Now().UTC()})
	}

	s.emit(ctx, events.ItemCreatedEvent, itemPayload(saved, saved.CreatedAt))

	zap.L().Info("item created", zap.Int64("itemId", saved.ID), zap.Bool("withImage", image != nil))

	return saved, nil
}

// Update applies a merge patch and/or replaces the image of item id. Fields
// are merged first, then the image is uploaded, then the record is saved once.
// The previous image is left in the image store.
func (s *ItemService) Update(ctx context.Context, id int64, patch *domain.ItemPatch, image *domain.Image) (updated domain.Item, err error) {
	defer func(started time.Time) { s.observe("item.update", started, err) }(time.Now())

	if (patch == nil || patch.IsEmpty()) && image == nil {
		return domain.Item{}, fmt.Errorf("%w: nothing to update", domain.ErrInvalidUpdateRequest)
	}

	current, err := s.loadForWrite(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Item{}, domain.NotFound("item", id)
		}
		return domain.Item{}, storeError(err)
	}

	next := current
	if patch != nil && !patch.IsEmpty() {
		next, err = s.merge(ctx, current, *patch)
		if err != nil {
			return domain.Item{}, err
		}
	}

	var uploaded string
	if image != nil {
		uploaded, err = s.upload(ctx, *image, id)
		if err != nil {
			return domain.Item{}, err
		}
		next.ImageURI = &uploaded
	}

	saved, err := s.items.Save(ctx, next)
	if err != nil {
		if uploaded != "" {
			s.reportOrphan(ctx, id, uploaded, err)
		}
		return domain.Item{}, storeError(err)
	}

	s.emit(ctx, events.ItemUpdatedEvent, itemPayload(saved, saved.UpdatedAt))
	if uploaded != "" {
		now := time.Now().UTC()
		s.emit(ctx, events.ItemImageUploadedEvent, events.ImagePayload{ItemID: id, ImageURI: uploaded, At: now})
		if current.HasImage() && *current.ImageURI != uploaded {
			s.emit(ctx, events.ItemImageReplacedEvent, events.ImagePayload{
				ItemID:      id,
				ImageURI:    uploaded,
				PreviousURI: *current.ImageURI,
				At:          now,
			})
		}
	}

	return saved, nil
}

// merge applies the patch to current and resolves any replaced category set.
// current is not modified.
func (s *ItemService) merge(ctx context.Context, current domain.Item, patch domain.ItemPatch) (domain.Item, error) {
	snapshot, err := patch.Apply(current.Snapshot())
	if err != nil {
		return domain.Item{}, err
	}

	categories := current.Categories
	if patch.TouchesCategories() {
		categories, err = s.resolver.Resolve(ctx, snapshot.Categories)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Item{}, fmt.Errorf("%w: %w", domain.ErrInvalidUpdateRequest, err)
			}
			return domain.Item{}, err
		}
	}

	next := current.WithSnapshot(snapshot, categories)

	if next.Fingerprint() != current.Fingerprint() {
		exists, err := s.items.ExistsByExample(ctx, next.Probe(), current.ID)
		if err != nil {
			return domain.Item{}, storeError(err)
		}
		if exists {
			return domain.Item{}, domain.AlreadyExists("item", next.Fingerprint())
		}
	}

	return next, nil
}

// Delete removes the item image before the record. If the record delete then
// fails the image is already gone and the record keeps a dangling URI. An
// image the store cannot address is skipped so the record can still go.
func (s *ItemService) Delete(ctx context.Context, id int64) (err error) {
	defer func(started time.Time) { s.observe("item.delete", started, err) }(time.Now())

	item, err := s.loadForWrite(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound("item", id)
		}
		return storeError(err)
	}

	if item.HasImage() {
		err := s.images.Delete(ctx, *item.ImageURI)
		s.metrics.ObserveImage("delete", err)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrUnmanagedImage):
			zap.L().Warn("item image is not managed by the image store; deleting record only",
				zap.Int64("itemId", id),
				zap.String("imageUri", *item.ImageURI),
				zap.Error(err),
			)
		default:
			return domain.Unavailable(imageStore, err)
		}
	}

	if err := s.items.DeleteByID(ctx, id); err != nil {
		if item.HasImage() {
			zap.L().Error("image deleted but item delete failed; record has dangling image uri",
				zap.Int64("itemId", id),
				zap.String("imageUri", *item.ImageURI),
				zap.Error(err),
			)
		}
		return storeError(err)
	}

	s.emit(ctx, events.ItemDeletedEvent, events.ItemDeletedPayload{
		ID:        id,
		ImageURI:  item.ImageURI,
		DeletedAt: time.Now().UTC(),
	})

	return nil
}

func (s *ItemService) Get(ctx context.Context, id int64) (domain.Item, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Item{}, domain.NotFound("item", id)
		}
		return domain.Item{}, storeError(err)
	}
	return item, nil
}

func (s *ItemService) List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Item], error) {
	result, err := s.items.FindAll(ctx, page)
	if err != nil {
		return domain.Page[domain.Item]{}, storeError(err)
	}
	return result, nil
}

// GetByCategories returns items linked to any of the given categories.
// An empty result is reported as NotFound.
func (s *ItemService) GetByCategories(ctx context.Context, ids []int64, page domain.PageRequest) (domain.Page[domain.Item], error) {
	if len(ids) == 0 {
		return domain.Page[domain.Item]{}, domain.InvalidInput("at least one category id is required")
	}

	result, err := s.items.FindByCategoryIDs(ctx, ids, page)
	if err != nil {
		return domain.Page[domain.Item]{}, storeError(err)
	}
	if result.Empty() {
		return domain.Page[domain.Item]{}, domain.NotFound("item", fmt.Sprintf("categories %v", ids))
	}
	return result, nil
}

// GetByPartialName returns items whose name contains fragment, case-insensitively.
func (s *ItemService) GetByPartialName(ctx context.Context, fragment string, page domain.PageRequest) (domain.Page[domain.Item], error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return domain.Page[domain.Item]{}, domain.InvalidInput("name fragment is required")
	}

	result, err := s.items.FindByNameContaining(ctx, fragment, page)
	if err != nil {
		return domain.Page[domain.Item]{}, storeError(err)
	}
	if result.Empty() {
		return domain.Page[domain.Item]{}, domain.NotFound("item", fmt.Sprintf("name containing %q", fragment))
	}
	return result, nil
}

// loadForWrite reads the stored record, bypassing any read cache.
func (s *ItemService) loadForWrite(ctx context.Context, id int64) (domain.Item, error) {
	if r, ok := s.items.(uncachedReader); ok {
		return r.FindByIDUncached(ctx, id)
	}
	return s.items.FindByID(ctx, id)
}

func (s *ItemService) upload(ctx context.Context, image domain.Image, id int64) (string, error) {
	uri, err := s.images.Upload(ctx, image, strconv.FormatInt(id, 10))
	s.metrics.ObserveImage("upload", err)
	if err != nil {
		return "", domain.Unavailable(imageStore, err)
	}
	return uri, nil
}

func (s *ItemService) reportOrphan(ctx context.Context, id int64, uri string, cause error) {
	zap.L().Error("image uploaded but item persist failed; image orphaned",
		zap.Int64("itemId", id),
		zap.String("imageUri", uri),
		zap.Error(cause),
	)
	s.emit(ctx, events.ItemImageOrphanedEvent, events.ImagePayload{ItemID: id, ImageURI: uri, At: time.Now().UTC()})
}
