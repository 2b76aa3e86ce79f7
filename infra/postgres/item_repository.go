package postgres

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"catalog/domain"
)

const itemColumns = "id, name, price, description, long_description, image_uri, created_at, updated_at"

type ItemRepository struct {
	db *sqlx.DB
}

// itemCategoryRow is a category joined with the item that links it.
type itemCategoryRow struct {
	ItemID int64 `db:"item_id"`
	domain.Category
}

func (r *ItemRepository) FindByID(ctx context.Context, id int64) (domain.Item, error) {
	var it domain.Item
	err := r.db.GetContext(ctx, &it, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	if isNoRows(err) {
		return it, domain.NotFound("item", id)
	}
	if err != nil {
		return it, err
	}

	items := []domain.Item{it}
	if err := r.attachCategories(ctx, items); err != nil {
		return it, err
	}
	return items[0], nil
}

func (r *ItemRepository) ExistsByExample(ctx context.Context, probe domain.Item, excludeID int64) (bool, error) {
	builder := psql.Select("1").From("items").Where(sq.Eq{
		"name":             probe.Name,
		"price":            probe.Price,
		"description":      probe.Description,
		"long_description": probe.LongDescription,
	})
	if excludeID != 0 {
		builder = builder.Where(sq.NotEq{"id": excludeID})
	}
	query, args, err := builder.Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("build example query: %w", err)
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *ItemRepository) Save(ctx context.Context, item domain.Item) (domain.Item, error) {
	query := `
		INSERT INTO items (
			name, price, description, long_description, image_uri
		) VALUES (
			:name, :price, :description, :long_description, :image_uri
		) RETURNING ` + itemColumns
	if item.ID != 0 {
		query = `
			UPDATE items SET
				name = :name,
				price = :price,
				description = :description,
				long_description = :long_description,
				image_uri = :image_uri,
				updated_at = NOW()
			WHERE id = :id
			RETURNING ` + itemColumns
	}

	var saved domain.Item
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		rows, err := sqlx.NamedQueryContext(ctx, tx, query, item)
		if err != nil {
			return err
		}
		found := rows.Next()
		if found {
			err = rows.StructScan(&saved)
		} else {
			err = rows.Err()
		}
		rows.Close()
		if err != nil {
			return err
		}
		if !found {
			return domain.NotFound("item", item.ID)
		}

		return replaceCategoryLinks(ctx, tx, saved.ID, item.CategoryIDs())
	})
	if err != nil {
		return domain.Item{}, err
	}

	saved.Categories = append([]domain.Category{}, item.Categories...)
	return saved, nil
}

// replaceCategoryLinks rewrites the item's category links, keeping their order.
func replaceCategoryLinks(ctx context.Context, tx *sqlx.Tx, itemID int64, categoryIDs []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM item_categories WHERE item_id = $1`, itemID); err != nil {
		return err
	}
	if len(categoryIDs) == 0 {
		return nil
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO item_categories (item_id, category_id, position)
		SELECT $1, t.category_id, t.ord - 1
		FROM UNNEST($2::bigint[]) WITH ORDINALITY AS t(category_id, ord)`,
		itemID, pq.Array(categoryIDs))
	if pgCode(err) == foreignKeyViolation {
		return domain.InvalidInput("category removed while linking item %d", itemID)
	}
	return err
}

func (r *ItemRepository) DeleteByID(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NotFound("item", id)
	}
	return nil
}

func (r *ItemRepository) FindAll(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Item], error) {
	return r.findPage(ctx, nil, page)
}

// FindByCategoryIDs returns items linked to any of the given categories.
func (r *ItemRepository) FindByCategoryIDs(ctx context.Context, ids []int64, page domain.PageRequest) (domain.Page[domain.Item], error) {
	cond := sq.Expr(
		"EXISTS (SELECT 1 FROM item_categories ic WHERE ic.item_id = items.id AND ic.category_id = ANY(?))",
		pq.Array(ids),
	)
	return r.findPage(ctx, cond, page)
}

// FindByNameContaining matches the fragment case-insensitively and literally.
func (r *ItemRepository) FindByNameContaining(ctx context.Context, fragment string, page domain.PageRequest) (domain.Page[domain.Item], error) {
	return r.findPage(ctx, sq.ILike{"name": "%" + escapeLike(fragment) + "%"}, page)
}

func (r *ItemRepository) ImageInUse(ctx context.Context, uri string) (bool, error) {
	var used bool
	err := r.db.GetContext(ctx, &used, `SELECT EXISTS (SELECT 1 FROM items WHERE image_uri = $1)`, uri)
	return used, err
}

func (r *ItemRepository) findPage(ctx context.Context, cond sq.Sqlizer, page domain.PageRequest) (domain.Page[domain.Item], error) {
	counter := psql.Select("COUNT(*)").From("items")
	selector := psql.Select(itemColumns).From("items").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(page.Limit())).
		Offset(uint64(page.Offset()))
	if cond != nil {
		counter = counter.Where(cond)
		selector = selector.Where(cond)
	}

	total, err := count(ctx, r.db, counter)
	if err != nil {
		return domain.Page[domain.Item]{}, err
	}

	query, args, err := selector.ToSql()
	if err != nil {
		return domain.Page[domain.Item]{}, fmt.Errorf("build item query: %w", err)
	}
	items := []domain.Item{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return domain.Page[domain.Item]{}, err
	}
	if err := r.attachCategories(ctx, items); err != nil {
		return domain.Page[domain.Item]{}, err
	}
	return domain.NewPage(items, page, total), nil
}

// attachCategories loads the categories of all items with a single query.
func (r *ItemRepository) attachCategories(ctx context.Context, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]int64, len(items))
	for i := range items {
		ids[i] = items[i].ID
		items[i].Categories = []domain.Category{}
	}

	var rows []itemCategoryRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT ic.item_id, c.id, c.name, c.created_at, c.updated_at
		FROM item_categories ic
		JOIN categories c ON c.id = ic.category_id
		WHERE ic.item_id = ANY($1)
		ORDER BY ic.item_id, ic.position`, pq.Array(ids))
	if err != nil {
		return err
	}

	byItem := make(map[int64][]domain.Category, len(items))
	for _, row := range rows {
		byItem[row.ItemID] = append(byItem[row.ItemID], row.Category)
	}
	for i := range items {
		if cats, ok := byItem[items[i].ID]; ok {
			items[i].Categories = cats
		}
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
