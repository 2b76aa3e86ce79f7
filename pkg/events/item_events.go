package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CatalogDomain   = "catalog"
	CatalogExchange = "catalog.item"
)

const (
	ItemCreatedEvent       = "item.created"
	ItemUpdatedEvent       = "item.updated"
	ItemDeletedEvent       = "item.deleted"
	ItemImageUploadedEvent = "item.image.uploaded"
	ItemImageReplacedEvent = "item.image.replaced"
	ItemImageOrphanedEvent = "item.image.orphaned"
	CategoryCreatedEvent   = "category.created"
	CategoryUpdatedEvent   = "category.updated"
	CategoryDeletedEvent   = "category.deleted"
)

const (
	EventVersionV1 = "v1"
)

// ItemPayload is carried by item.created and item.updated.
type ItemPayload struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	Description     string          `json:"description"`
	LongDescription string          `json:"longDescription"`
	CategoryIDs     []int64         `json:"categoryIds"`
	ImageURI        *string         `json:"imageUri"`
	At              time.Time       `json:"at"`
}

type ItemDeletedPayload struct {
	ID        int64     `json:"id"`
	ImageURI  *string   `json:"imageUri"`
	DeletedAt time.Time `json:"deletedAt"`
}

// ImagePayload is carried by the item.image.* events. PreviousURI is set
// only for item.image.replaced.
type ImagePayload struct {
	ItemID      int64     `json:"itemId"`
	ImageURI    string    `json:"imageUri"`
	PreviousURI string    `json:"previousUri,omitempty"`
	At          time.Time `json:"at"`
}

type CategoryPayload struct {
	ID   int64     `json:"id"`
	Name string    `json:"name"`
	At   time.Time `json:"at"`
}
