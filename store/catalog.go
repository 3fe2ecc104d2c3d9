package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"acai-store/models"
	"acai-store/pricing"
)

const productColumns = `
	p.id, p.name, COALESCE(p.description, ''), COALESCE(p.image_url, ''), p.category_id, p.active, p.created_at,
	c.id, c.name, COALESCE(c.description, '')`

// ListProducts returns products with variations, category and eligible complements.
// With activeOnly, inactive products and inactive complements are left out.
func (s *Store) ListProducts(ctx context.Context, activeOnly bool) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products p JOIN categories c ON c.id = p.category_id`
	if activeOnly {
		query += ` WHERE p.active = TRUE`
	}
	query += ` ORDER BY c.name, p.name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer closeRows(rows)

	products := make([]*models.Product, 0)
	byID := make(map[string]*models.Product)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	if err := s.attachVariations(ctx, byID, ""); err != nil {
		return nil, err
	}
	if err := s.attachComplements(ctx, byID, "", activeOnly); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct loads one product. With activeOnly, inactive complements are left out
// but the product itself is returned regardless of its flag.
func (s *Store) GetProduct(ctx context.Context, id string, activeOnly bool) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+`
		FROM products p JOIN categories c ON c.id = p.category_id
		WHERE p.id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	byID := map[string]*models.Product{p.ID: p}
	if err := s.attachVariations(ctx, byID, p.ID); err != nil {
		return nil, err
	}
	if err := s.attachComplements(ctx, byID, p.ID, activeOnly); err != nil {
		return nil, err
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*models.Product, error) {
	p := &models.Product{Category: &models.Category{}}
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.ImageURL, &p.CategoryID, &p.Active, &p.CreatedAt,
		&p.Category.ID, &p.Category.Name, &p.Category.Description,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	p.Variations = []models.ProductVariation{}
	p.Complements = []models.Complement{}
	return p, nil
}

// attachVariations fills Variations of the loaded products; productID narrows the query
// to a single product.
func (s *Store) attachVariations(ctx context.Context, byID map[string]*models.Product, productID string) error {
	if len(byID) == 0 {
		return nil
	}
	query := `
		SELECT id, product_id, name, base_price, included_complements, included_fruits, included_coverages
		FROM product_variations`
	var args []any
	if productID != "" {
		query += ` WHERE product_id = ?`
		args = append(args, productID)
	}
	query += ` ORDER BY product_id, sort_order`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query variations: %w", err)
	}
	defer closeRows(rows)

	for rows.Next() {
		var v models.ProductVariation
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.BasePrice,
			&v.IncludedComplements, &v.IncludedFruits, &v.IncludedCoverages); err != nil {
			return fmt.Errorf("scan variation: %w", err)
		}
		if p, ok := byID[v.ProductID]; ok {
			p.Variations = append(p.Variations, v)
		}
	}
	return rows.Err()
}

func (s *Store) attachComplements(ctx context.Context, byID map[string]*models.Product, productID string, activeOnly bool) error {
	if len(byID) == 0 {
		return nil
	}
	query := `
		SELECT pc.product_id, c.id, c.name, c.category, c.extra_price, c.included, COALESCE(c.image_url, ''), c.active
		FROM product_complements pc JOIN complements c ON c.id = pc.complement_id
		WHERE 1 = 1`
	var args []any
	if productID != "" {
		query += ` AND pc.product_id = ?`
		args = append(args, productID)
	}
	if activeOnly {
		query += ` AND c.active = TRUE`
	}
	query += ` ORDER BY c.category, c.name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query product complements: %w", err)
	}
	defer closeRows(rows)

	for rows.Next() {
		var productID string
		var c models.Complement
		if err := rows.Scan(&productID, &c.ID, &c.Name, &c.Category, &c.ExtraPrice, &c.Included, &c.ImageURL, &c.Active); err != nil {
			return fmt.Errorf("scan product complement: %w", err)
		}
		if p, ok := byID[productID]; ok {
			p.Complements = append(p.Complements, c)
		}
	}
	return rows.Err()
}

// CreateProduct inserts the product, its variations and complement links atomically.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product, complementIDs []string) error {
	if len(p.Variations) == 0 {
		return ErrNoVariations
	}
	p.ID = s.newID()
	p.CreatedAt = s.now()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := categoryExists(ctx, tx, p.CategoryID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, name, description, image_url, category_id, active, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Description, p.ImageURL, p.CategoryID, p.Active, p.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		return s.writeProductChildren(ctx, tx, p, complementIDs)
	})
}

// UpdateProduct overwrites the product row and replaces its variations and complement links.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product, complementIDs []string) error {
	if len(p.Variations) == 0 {
		return ErrNoVariations
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := categoryExists(ctx, tx, p.CategoryID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE products SET name = ?, description = ?, image_url = ?, category_id = ?, active = ?
			WHERE id = ?`,
			p.Name, p.Description, p.ImageURL, p.CategoryID, p.Active, p.ID)
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		if err := affected(res, ErrProductNotFound); err != nil {
			// MySQL reports zero affected rows when nothing changed.
			if err := productExists(ctx, tx, p.ID); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM product_variations WHERE product_id = ?`, p.ID); err != nil {
			return fmt.Errorf("delete variations: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_complements WHERE product_id = ?`, p.ID); err != nil {
			return fmt.Errorf("delete product complements: %w", err)
		}
		return s.writeProductChildren(ctx, tx, p, complementIDs)
	})
}

func (s *Store) writeProductChildren(ctx context.Context, tx *sql.Tx, p *models.Product, complementIDs []string) error {
	for i := range p.Variations {
		v := &p.Variations[i]
		if v.ID == "" {
			v.ID = s.newID()
		}
		v.ProductID = p.ID
		_, err := tx.ExecContext(ctx, `
			INSERT INTO product_variations
				(id, product_id, sort_order, name, base_price, included_complements, included_fruits, included_coverages)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			v.ID, p.ID, i, v.Name, pricing.RoundCents(v.BasePrice),
			v.IncludedComplements, v.IncludedFruits, v.IncludedCoverages)
		if err != nil {
			return fmt.Errorf("insert variation: %w", err)
		}
	}

	seen := make(map[string]bool, len(complementIDs))
	for _, cid := range complementIDs {
		if seen[cid] {
			continue
		}
		seen[cid] = true
		if err := complementExists(ctx, tx, cid); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO product_complements (product_id, complement_id) VALUES (?, ?)`, p.ID, cid); err != nil {
			return fmt.Errorf("link complement: %w", err)
		}
	}
	return nil
}

func (s *Store) SetProductActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE products SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("update product active: %w", err)
	}
	if err := affected(res, ErrProductNotFound); err != nil {
		return productExists(ctx, s.db, id)
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_complements WHERE product_id = ?`, id); err != nil {
			return fmt.Errorf("delete product complements: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_variations WHERE product_id = ?`, id); err != nil {
			return fmt.Errorf("delete variations: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		return affected(res, ErrProductNotFound)
	})
}

func productExists(ctx context.Context, q queryer, id string) error {
	var found string
	err := q.QueryRowContext(ctx, `SELECT id FROM products WHERE id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("query product: %w", err)
	}
	return nil
}

func categoryExists(ctx context.Context, q queryer, id string) error {
	var found string
	err := q.QueryRowContext(ctx, `SELECT id FROM categories WHERE id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("query category: %w", err)
	}
	return nil
}

func complementExists(ctx context.Context, q queryer, id string) error {
	var found string
	err := q.QueryRowContext(ctx, `SELECT id FROM complements WHERE id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrComplementNotFound
	}
	if err != nil {
		return fmt.Errorf("query complement: %w", err)
	}
	return nil
}
