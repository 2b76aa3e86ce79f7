package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Category struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

func (c Category) Ref() CategoryRef {
	return CategoryRef{ID: c.ID, Name: c.Name}
}

// CategoryRef points at a category either by surrogate id or by name.
// When both are set the id wins.
//
// On the wire a reference may be a bare name ("Tools"), a bare id (3)
// or an object ({"id": 3} / {"name": "Tools"}).
type CategoryRef struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

func (r CategoryRef) ByID() bool {
	return r.ID > 0
}

func (r CategoryRef) String() string {
	if r.ByID() {
		return strconv.FormatInt(r.ID, 10)
	}
	return r.Name
}

func (r CategoryRef) Validate() error {
	if r.ID < 0 {
		return fmt.Errorf("category id must be positive, got %d", r.ID)
	}
	if r.ID == 0 && strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("category reference needs an id or a name")
	}
	return nil
}

func (r *CategoryRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty category reference")
	}

	switch data[0] {
	case '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*r = CategoryRef{Name: name}
	case '{':
		type plain CategoryRef
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*r = CategoryRef(p)
	default:
		var id int64
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("category reference must be a name, an id or an object: %w", err)
		}
		*r = CategoryRef{ID: id}
	}

	return r.Validate()
}

// CategoryPatch is the typed merge patch for a category. Only the name is mutable.
type CategoryPatch struct {
	Name Field[string] `json:"name"`
}

func (p CategoryPatch) IsEmpty() bool {
	return !p.Name.Present()
}

// Apply returns the category with the patch merged in. The input is not modified.
func (p CategoryPatch) Apply(current Category) (Category, error) {
	next := current
	if p.Name.Null() {
		return current, InvalidPatch("name cannot be null")
	}
	if v, ok := p.Name.Get(); ok {
		if strings.TrimSpace(v) == "" {
			return current, InvalidPatch("name cannot be blank")
		}
		next.Name = v
	}
	return next, nil
}

func DecodeCategoryPatch(data []byte) (*CategoryPatch, error) {
	var patch CategoryPatch
	if err := decodePatch(data, &patch); err != nil {
		return nil, err
	}
	return &patch, nil
}
