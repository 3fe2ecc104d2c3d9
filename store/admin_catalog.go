package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"acai-store/models"
	"acai-store/pricing"
)

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, COALESCE(c.description, ''), c.created_at, COUNT(p.id)
		FROM categories c LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id, c.name, c.description, c.created_at
		ORDER BY c.name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer closeRows(rows)

	categories := make([]models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.ProductCount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return categories, nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	err := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.name, COALESCE(c.description, ''), c.created_at,
			(SELECT COUNT(*) FROM products p WHERE p.category_id = c.id)
		FROM categories c WHERE c.id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.ProductCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query category: %w", err)
	}
	return &c, nil
}

// CreateCategory inserts a category with a name no other category uses.
func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	c.ID = s.newID()
	c.CreatedAt = s.now()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := categoryNameFree(ctx, tx, c.Name, ""); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, name, description, created_at) VALUES (?, ?, ?, ?)`,
			c.ID, c.Name, c.Description, c.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert category: %w", err)
		}
		return nil
	})
}

func (s *Store) UpdateCategory(ctx context.Context, c *models.Category) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := categoryExists(ctx, tx, c.ID); err != nil {
			return err
		}
		if err := categoryNameFree(ctx, tx, c.Name, c.ID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE categories SET name = ?, description = ? WHERE id = ?`, c.Name, c.Description, c.ID)
		if err != nil {
			return fmt.Errorf("update category: %w", err)
		}
		return nil
	})
}

// DeleteCategory removes a category that no product references.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := categoryExists(ctx, tx, id); err != nil {
			return err
		}
		var products int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM products WHERE category_id = ?`, id).Scan(&products); err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		if products > 0 {
			return ErrCategoryInUse
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}

func categoryNameFree(ctx context.Context, q queryer, name, exceptID string) error {
	var id string
	err := q.QueryRowContext(ctx, `SELECT id FROM categories WHERE name = ? AND id <> ?`, name, exceptID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("query category name: %w", err)
	}
	return ErrDuplicateCategory
}

const complementColumns = `id, name, category, extra_price, included, COALESCE(image_url, ''), active`

func scanComplement(row scanner) (*models.Complement, error) {
	var c models.Complement
	if err := row.Scan(&c.ID, &c.Name, &c.Category, &c.ExtraPrice, &c.Included, &c.ImageURL, &c.Active); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListComplements(ctx context.Context) ([]models.Complement, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+complementColumns+` FROM complements ORDER BY category, name`)
	if err != nil {
		return nil, fmt.Errorf("query complements: %w", err)
	}
	defer closeRows(rows)

	complements := make([]models.Complement, 0)
	for rows.Next() {
		c, err := scanComplement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan complement: %w", err)
		}
		complements = append(complements, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return complements, nil
}

func (s *Store) GetComplement(ctx context.Context, id string) (*models.Complement, error) {
	c, err := scanComplement(s.db.QueryRowContext(ctx, `SELECT `+complementColumns+` FROM complements WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrComplementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query complement: %w", err)
	}
	return c, nil
}

func (s *Store) CreateComplement(ctx context.Context, c *models.Complement) error {
	c.ID = s.newID()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO complements (id, name, category, extra_price, included, image_url, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Category, pricing.RoundCents(c.ExtraPrice), c.Included, c.ImageURL, c.Active, s.now())
	if err != nil {
		return fmt.Errorf("insert complement: %w", err)
	}
	return nil
}

func (s *Store) UpdateComplement(ctx context.Context, c *models.Complement) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE complements SET name = ?, category = ?, extra_price = ?, included = ?, image_url = ?, active = ?
		WHERE id = ?`,
		c.Name, c.Category, pricing.RoundCents(c.ExtraPrice), c.Included, c.ImageURL, c.Active, c.ID)
	if err != nil {
		return fmt.Errorf("update complement: %w", err)
	}
	if err := affected(res, ErrComplementNotFound); err != nil {
		return complementExists(ctx, s.db, c.ID)
	}
	return nil
}

// DeleteComplement removes the complement and its product links.
func (s *Store) DeleteComplement(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_complements WHERE complement_id = ?`, id); err != nil {
			return fmt.Errorf("unlink complement: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM complements WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete complement: %w", err)
		}
		return affected(res, ErrComplementNotFound)
	})
}
