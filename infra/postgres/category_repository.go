package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"catalog/domain"
)

const categoryColumns = "id, name, created_at, updated_at"

type CategoryRepository struct {
	db *sqlx.DB
}

func (r *CategoryRepository) FindByID(ctx context.Context, id int64) (domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	if isNoRows(err) {
		return c, domain.NotFound("category", id)
	}
	return c, err
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string) (domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, `SELECT `+categoryColumns+` FROM categories WHERE name = $1`, name)
	if isNoRows(err) {
		return c, domain.NotFound("category", name)
	}
	return c, err
}

func (r *CategoryRepository) Save(ctx context.Context, category domain.Category) (domain.Category, error) {
	query := `
		INSERT INTO categories (name)
		VALUES (:name)
		RETURNING ` + categoryColumns
	if category.ID != 0 {
		query = `
			UPDATE categories
			SET name = :name, updated_at = NOW()
			WHERE id = :id
			RETURNING ` + categoryColumns
	}

	var saved domain.Category
	rows, err := r.db.NamedQueryContext(ctx, query, category)
	if err != nil {
		if pgCode(err) == uniqueViolation {
			return saved, domain.AlreadyExists("category", category.Name)
		}
		return saved, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return saved, err
		}
		return saved, domain.NotFound("category", category.ID)
	}
	err = rows.StructScan(&saved)
	return saved, err
}

// DeleteByID fails with domain.ErrInUse while any item still references the category.
func (r *CategoryRepository) DeleteByID(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if pgCode(err) == foreignKeyViolation {
			return domain.ErrInUse
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NotFound("category", id)
	}
	return nil
}

func (r *CategoryRepository) FindAll(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Category], error) {
	total, err := count(ctx, r.db, psql.Select("COUNT(*)").From("categories"))
	if err != nil {
		return domain.Page[domain.Category]{}, err
	}

	categories := []domain.Category{}
	err = r.db.SelectContext(ctx, &categories,
		`SELECT `+categoryColumns+` FROM categories ORDER BY name, id LIMIT $1 OFFSET $2`,
		page.Limit(), page.Offset())
	if err != nil {
		return domain.Page[domain.Category]{}, err
	}
	return domain.NewPage(categories, page, total), nil
}
