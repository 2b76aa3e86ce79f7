package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID              int64           `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	Price           decimal.Decimal `db:"price" json:"price"`
	Description     string          `db:"description" json:"description"`
	LongDescription string          `db:"long_description" json:"longDescription"`
	ImageURI        *string         `db:"image_uri" json:"imageUri"`
	Categories      []Category      `db:"-" json:"categories"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

func (i Item) HasImage() bool {
	return i.ImageURI != nil && *i.ImageURI != ""
}

// Fingerprint identifies an item for duplicate detection. It is the set of
// fields an example-based existence check compares.
func (i Item) Fingerprint() string {
	return fmt.Sprintf("name=%q price=%s description=%q longDescription=%q",
		i.Name, i.Price.String(), i.Description, i.LongDescription)
}

// Probe returns a copy of i carrying only the fields compared by an
// example-based existence check.
func (i Item) Probe() Item {
	return Item{
		Name:            i.Name,
		Price:           i.Price,
		Description:     i.Description,
		LongDescription: i.LongDescription,
	}
}

// Snapshot returns the mutable fields of the item with categories as references.
func (i Item) Snapshot() ItemSnapshot {
	refs := make([]CategoryRef, 0, len(i.Categories))
	for _, c := range i.Categories {
		refs = append(refs, c.Ref())
	}
	return ItemSnapshot{
		Name:            i.Name,
		Price:           i.Price,
		Description:     i.Description,
		LongDescription: i.LongDescription,
		Categories:      refs,
	}
}

// WithSnapshot returns a copy of i with the snapshot fields assigned and the
// given resolved categories attached. Identity, image and timestamps are kept.
func (i Item) WithSnapshot(s ItemSnapshot, resolved []Category) Item {
	next := i
	next.Name = s.Name
	next.Price = s.Price
	next.Description = s.Description
	next.LongDescription = s.LongDescription
	next.Categories = append([]Category(nil), resolved...)
	return next
}

// CategoryIDs returns the ids of the attached categories in order.
func (i Item) CategoryIDs() []int64 {
	ids := make([]int64, 0, len(i.Categories))
	for _, c := range i.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// ItemSnapshot is the mutable-field subset of an Item. Categories are raw
// references that still need resolution against the store.
type ItemSnapshot struct {
	Name            string
	Price           decimal.Decimal
	Description     string
	LongDescription string
	Categories      []CategoryRef
}

func (s ItemSnapshot) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if s.Price.IsNegative() {
		return fmt.Errorf("price cannot be negative")
	}
	for _, ref := range s.Categories {
		if err := ref.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s ItemSnapshot) clone() ItemSnapshot {
	c := s
	c.Categories = append([]CategoryRef(nil), s.Categories...)
	return c
}
