package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog/domain"
)

func TestKind(t *testing.T) {
	notFound := domain.NotFound("category", "Nonexistent")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "ok"},
		{"not_found", notFound, "not_found"},
		{"wrapped_not_found", fmt.Errorf("loading: %w", notFound), "not_found"},
		{"invalid_update_request_wins_over_not_found", fmt.Errorf("%w: %w", domain.ErrInvalidUpdateRequest, notFound), "invalid_update_request"},
		{"invalid_patch", domain.InvalidPatch("bad"), "invalid_patch"},
		{"invalid_input", domain.InvalidInput("bad"), "invalid_input"},
		{"already_exists", domain.AlreadyExists("item", "x"), "already_exists"},
		{"in_use", domain.ErrInUse, "in_use"},
		{"dependency", domain.Unavailable("entity store", errors.New("conn refused")), "dependency_unavailable"},
		{"other", errors.New("boom"), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.Kind(tt.err))
		})
	}
}

func TestDependencyError_Unwraps(t *testing.T) {
	cause := errors.New("timeout")
	err := fmt.Errorf("saving: %w", domain.Unavailable("image store", cause))

	assert.ErrorIs(t, err, domain.ErrDependencyUnavailable)
	assert.ErrorIs(t, err, cause)

	var dep *domain.DependencyError
	require.ErrorAs(t, err, &dep)
	assert.Equal(t, "image store", dep.Dependency)
}

func TestNotFoundError_CarriesKey(t *testing.T) {
	err := fmt.Errorf("%w: %w", domain.ErrInvalidUpdateRequest, domain.NotFound("category", domain.CategoryRef{Name: "Nonexistent"}))

	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "category", nf.Entity)
	assert.Contains(t, err.Error(), "category Nonexistent not found")
}

func TestNewImage(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		contentType string
		filename    string
		max         int64
		wantExt     string
		wantErr     bool
	}{
		{name: "png", data: []byte{1, 2, 3}, contentType: "image/png", filename: "a.PNG", wantExt: ".png"},
		{name: "jpeg_without_filename", data: []byte{1}, contentType: "image/jpeg", wantExt: ".jpg"},
		{name: "content_type_params_ignored", data: []byte{1}, contentType: "image/webp; q=1", wantExt: ".webp"},
		{name: "empty", data: nil, contentType: "image/png", wantErr: true},
		{name: "too_large", data: make([]byte, 11), contentType: "image/png", max: 10, wantErr: true},
		{name: "disallowed_type", data: []byte{1}, contentType: "application/pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := domain.NewImage(tt.data, tt.contentType, tt.filename, tt.max)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, img.Ext())
		})
	}
}

func TestNewPageRequest(t *testing.T) {
	tests := []struct {
		name             string
		page, size       int
		wantPage, wantSz int
		wantOffset       int
	}{
		{"defaults", 0, 0, 1, 10, 0},
		{"negative", -3, -1, 1, 10, 0},
		{"clamped", 3, 500, 3, 100, 200},
		{"passthrough", 2, 25, 2, 25, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := domain.NewPageRequest(tt.page, tt.size)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantSz, p.PageSize)
			assert.Equal(t, tt.wantOffset, p.Offset())
		})
	}
}

func TestNewPage_TotalPages(t *testing.T) {
	p := domain.NewPage([]int{1, 2}, domain.NewPageRequest(1, 2), 5)
	assert.Equal(t, 3, p.TotalPages)

	empty := domain.NewPage[int](nil, domain.NewPageRequest(1, 10), 0)
	assert.True(t, empty.Empty())
	assert.NotNil(t, empty.Items)
}

func TestCategoryPatch_Apply(t *testing.T) {
	current := domain.Category{ID: 1, Name: "Tools"}

	p, err := domain.DecodeCategoryPatch([]byte(`{"name":"Hardware"}`))
	require.NoError(t, err)
	next, err := p.Apply(current)
	require.NoError(t, err)
	assert.Equal(t, "Hardware", next.Name)
	assert.Equal(t, "Tools", current.Name)

	p, err = domain.DecodeCategoryPatch([]byte(`{"name":null}`))
	require.NoError(t, err)
	_, err = p.Apply(current)
	assert.ErrorIs(t, err, domain.ErrInvalidPatch)
}

func TestItem_SnapshotRoundTrip(t *testing.T) {
	uri := "img/7.jpg"
	item := domain.Item{
		ID:         7,
		Name:       "Widget",
		ImageURI:   &uri,
		Categories: []domain.Category{{ID: 1, Name: "Tools"}},
	}

	snap := item.Snapshot()
	assert.Equal(t, []domain.CategoryRef{{ID: 1, Name: "Tools"}}, snap.Categories)

	snap.Name = "Gadget"
	next := item.WithSnapshot(snap, []domain.Category{{ID: 2, Name: "Garden"}})
	assert.Equal(t, int64(7), next.ID)
	assert.Equal(t, &uri, next.ImageURI)
	assert.Equal(t, "Gadget", next.Name)
	assert.Equal(t, []int64{2}, next.CategoryIDs())
	assert.Equal(t, "Widget", item.Name)
}
