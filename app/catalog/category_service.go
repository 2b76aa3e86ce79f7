package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"catalog/domain"
	"catalog/pkg/events"
)

type CategoryService struct {
	categories CategoryRepository
	options
}

func NewCategoryService(categories CategoryRepository, opts ...Option) *CategoryService {
	return &CategoryService{
		categories: categories,
		options:    buildOptions(opts),
	}
}

// Create adds a category. Names are unique; an existing name is AlreadyExists.
func (s *CategoryService) Create(ctx context.Context, name string) (created domain.Category, err error) {
	defer func(started time.Time) { s.observe("category.create", started, err) }(time.Now())

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, domain.InvalidInput("category name is required")
	}

	if err := s.ensureNameFree(ctx, name, 0); err != nil {
		return domain.Category{}, err
	}

	saved, err := s.categories.Save(ctx, domain.Category{Name: name})
	if err != nil {
		return domain.Category{}, storeError(err)
	}

	s.emit(ctx, events.CategoryCreatedEvent, events.CategoryPayload{ID: saved.ID, Name: saved.Name, At: saved.CreatedAt})
	zap.L().Info("category created", zap.Int64("categoryId", saved.ID), zap.String("name", saved.Name))

	return saved, nil
}

func (s *CategoryService) Get(ctx context.Context, id int64) (domain.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Category{}, domain.NotFound("category", id)
		}
		return domain.Category{}, storeError(err)
	}
	return category, nil
}

func (s *CategoryService) List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Category], error) {
	result, err := s.categories.FindAll(ctx, page)
	if err != nil {
		return domain.Page[domain.Category]{}, storeError(err)
	}
	return result, nil
}

// Update renames a category. Renaming onto a name held by another category
// is AlreadyExists.
func (s *CategoryService) Update(ctx context.Context, id int64, patch *domain.CategoryPatch) (updated domain.Category, err error) {
	defer func(started time.Time) { s.observe("category.update", started, err) }(time.Now())

	if patch == nil || patch.IsEmpty() {
		return domain.Category{}, fmt.Errorf("%w: nothing to update", domain.ErrInvalidUpdateRequest)
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}

	next, err := patch.Apply(current)
	if err != nil {
		return domain.Category{}, err
	}
	next.Name = strings.TrimSpace(next.Name)

	if next.Name == current.Name {
		return current, nil
	}
	if err := s.ensureNameFree(ctx, next.Name, id); err != nil {
		return domain.Category{}, err
	}

	saved, err := s.categories.Save(ctx, next)
	if err != nil {
		return domain.Category{}, storeError(err)
	}

	s.emit(ctx, events.CategoryUpdatedEvent, events.CategoryPayload{ID: saved.ID, Name: saved.Name, At: saved.UpdatedAt})

	return saved, nil
}

// Delete removes a category that no item references. Referenced categories
// are ErrInUse; items are never cascaded.
func (s *CategoryService) Delete(ctx context.Context, id int64) (err error) {
	defer func(started time.Time) { s.observe("category.delete", started, err) }(time.Now())

	category, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.categories.DeleteByID(ctx, id); err != nil {
		return storeError(err)
	}

	s.emit(ctx, events.CategoryDeletedEvent, events.CategoryPayload{ID: id, Name: category.Name, At: time.Now().UTC()})

	return nil
}

func (s *CategoryService) ensureNameFree(ctx context.Context, name string, selfID int64) error {
	existing, err := s.categories.FindByName(ctx, name)
	switch {
	case err == nil && existing.ID != selfID:
		return domain.AlreadyExists("category", name)
	case err == nil, errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return storeError(err)
	}
}
