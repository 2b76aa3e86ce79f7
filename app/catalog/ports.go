package catalog

import (
	"context"

	"catalog/domain"
)

// ItemRepository is the entity store for items. Lookups that find nothing
// return a *domain.NotFoundError.
type ItemRepository interface {
	FindByID(ctx context.Context, id int64) (domain.Item, error)
	// ExistsByExample reports whether an item other than excludeID matches the
	// probe's name, price, description and long description. excludeID 0 checks all items.
	ExistsByExample(ctx context.Context, probe domain.Item, excludeID int64) (bool, error)
	// Save inserts the item when ID is 0 and updates it otherwise. Category
	// links are replaced with item.Categories in the same transaction.
	Save(ctx context.Context, item domain.Item) (domain.Item, error)
	DeleteByID(ctx context.Context, id int64) error
	FindAll(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Item], error)
	FindByCategoryIDs(ctx context.Context, ids []int64, page domain.PageRequest) (domain.Page[domain.Item], error)
	FindByNameContaining(ctx context.Context, fragment string, page domain.PageRequest) (domain.Page[domain.Item], error)
	// ImageInUse reports whether any item still references uri.
	ImageInUse(ctx context.Context, uri string) (bool, error)
}

// uncachedReader is implemented by item repositories that serve FindByID
// from a cache. Update and Delete load through it so a save is never based
// on a cached copy.
type uncachedReader interface {
	FindByIDUncached(ctx context.Context, id int64) (domain.Item, error)
}

type CategoryRepository interface {
	FindByID(ctx context.Context, id int64) (domain.Category, error)
	FindByName(ctx context.Context, name string) (domain.Category, error)
	Save(ctx context.Context, category domain.Category) (domain.Category, error)
	DeleteByID(ctx context.Context, id int64) error
	FindAll(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Category], error)
}

// ImageStore keeps item images. Timeouts and retries belong to the implementation.
type ImageStore interface {
	// Upload stores the image under the given item key and returns its URI.
	Upload(ctx context.Context, image domain.Image, key string) (string, error)
	Delete(ctx context.Context, uri string) error
}
