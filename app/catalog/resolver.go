package catalog

import (
	"context"
	"errors"

	"catalog/domain"
)

type CategoryResolver struct {
	categories CategoryRepository
}

func NewCategoryResolver(categories CategoryRepository) *CategoryResolver {
	return &CategoryResolver{categories: categories}
}

// Resolve maps refs to persisted categories in input order. The first
// reference without a match fails the whole call with a *domain.NotFoundError
// keyed by that reference. Duplicates by id are dropped.
func (r *CategoryResolver) Resolve(ctx context.Context, refs []domain.CategoryRef) ([]domain.Category, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	resolved := make([]domain.Category, 0, len(refs))
	seen := make(map[int64]struct{}, len(refs))

	for _, ref := range refs {
		category, err := r.lookup(ctx, ref)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.NotFound("category", ref)
			}
			return nil, domain.Unavailable("entity store", err)
		}

		if _, dup := seen[category.ID]; dup {
			continue
		}
		seen[category.ID] = struct{}{}
		resolved = append(resolved, category)
	}

	return resolved, nil
}

func (r *CategoryResolver) lookup(ctx context.Context, ref domain.CategoryRef) (domain.Category, error) {
	if ref.ByID() {
		return r.categories.FindByID(ctx, ref.ID)
	}
	return r.categories.FindByName(ctx, ref.Name)
}
