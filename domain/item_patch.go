package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ItemPatch is the typed merge patch for an Item. Each mutable field has one
// slot. name and price are not nullable; description, longDescription and
// categories are cleared by an explicit null.
type ItemPatch struct {
	Name            Field[string]          `json:"name"`
	Price           Field[decimal.Decimal] `json:"price"`
	Description     Field[string]          `json:"description"`
	LongDescription Field[string]          `json:"longDescription"`
	Categories      Field[[]CategoryRef]   `json:"categories"`
}

func DecodeItemPatch(data []byte) (*ItemPatch, error) {
	var patch ItemPatch
	if err := decodePatch(data, &patch); err != nil {
		return nil, err
	}
	return &patch, nil
}

// IsEmpty reports whether the patch touches no field at all.
func (p ItemPatch) IsEmpty() bool {
	return !p.Name.Present() &&
		!p.Price.Present() &&
		!p.Description.Present() &&
		!p.LongDescription.Present() &&
		!p.Categories.Present()
}

// TouchesCategories reports whether the patch replaces or clears the category set.
func (p ItemPatch) TouchesCategories() bool {
	return p.Categories.Present()
}

// Apply merges the patch over current and returns the result. current is
// never modified, so applying the same patch twice yields equal snapshots.
func (p ItemPatch) Apply(current ItemSnapshot) (ItemSnapshot, error) {
	next := current.clone()

	if p.Name.Null() {
		return current, InvalidPatch("name cannot be null")
	}
	if v, ok := p.Name.Get(); ok {
		next.Name = v
	}

	if p.Price.Null() {
		return current, InvalidPatch("price cannot be null")
	}
	if v, ok := p.Price.Get(); ok {
		next.Price = v
	}

	if p.Description.Present() {
		next.Description, _ = p.Description.Get()
	}
	if p.LongDescription.Present() {
		next.LongDescription, _ = p.LongDescription.Get()
	}

	if p.Categories.Present() {
		refs, _ := p.Categories.Get()
		next.Categories = append([]CategoryRef(nil), refs...)
	}

	if strings.TrimSpace(next.Name) == "" {
		return current, InvalidPatch("name cannot be blank")
	}
	if next.Price.IsNegative() {
		return current, InvalidPatch("price cannot be negative")
	}
	for _, ref := range next.Categories {
		if err := ref.Validate(); err != nil {
			return current, InvalidPatch("%v", err)
		}
	}

	return next, nil
}
