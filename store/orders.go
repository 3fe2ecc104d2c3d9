package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"acai-store/models"
	"acai-store/pricing"
)

// CreateOrder upserts the customer by phone and writes the order with every line item
// and complement row in one transaction. Nothing is visible unless all rows commit, and
// the generated ids are copied onto customer and order only after the commit.
func (s *Store) CreateOrder(ctx context.Context, customer *models.Customer, order *models.Order) error {
	now := s.now()
	orderID := s.newID()
	itemIDs := make([]string, len(order.Items))
	complementIDs := make([][]string, len(order.Items))
	for i, item := range order.Items {
		itemIDs[i] = s.newID()
		complementIDs[i] = make([]string, len(item.Complements))
		for j := range item.Complements {
			complementIDs[i][j] = s.newID()
		}
	}

	var customerID string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		customerID, err = s.upsertCustomer(ctx, tx, customer, now)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO orders (id, customer_id, status, total, summary, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			orderID, customerID, order.Status, pricing.RoundCents(order.Total), order.Summary, now, now)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i, item := range order.Items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO order_items
					(id, order_id, sort_order, product_id, product_name, variation_id, variation_name, note, final_price)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				itemIDs[i], orderID, i, item.ProductID, item.ProductName, item.VariationID, item.VariationName,
				item.Note, pricing.RoundCents(item.FinalPrice))
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}

			for j, c := range item.Complements {
				_, err := tx.ExecContext(ctx, `
					INSERT INTO order_item_complements
						(id, order_item_id, sort_order, complement_id, name, type, allocation, quantity, price)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
					complementIDs[i][j], itemIDs[i], j, c.ComplementID, c.Name, c.Type, c.Allocation, c.Quantity,
					pricing.RoundCents(c.Price))
				if err != nil {
					return fmt.Errorf("insert order item complement: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	customer.ID = customerID
	order.ID = orderID
	order.CustomerID = customerID
	order.Customer = customer
	order.CreatedAt = now
	order.UpdatedAt = now
	for i := range order.Items {
		order.Items[i].ID = itemIDs[i]
		for j := range order.Items[i].Complements {
			order.Items[i].Complements[j].ID = complementIDs[i][j]
		}
	}
	return nil
}

// upsertCustomer returns the id of the customer with c's phone, creating the row when
// the phone is new and refreshing name and address otherwise.
func (s *Store) upsertCustomer(ctx context.Context, tx *sql.Tx, c *models.Customer, now time.Time) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM customers WHERE phone = ?`, c.Phone).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id = s.newID()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO customers (id, name, phone, address, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, c.Name, c.Phone, c.Address, now, now)
		if err != nil {
			return "", fmt.Errorf("insert customer: %w", err)
		}
	case err != nil:
		return "", fmt.Errorf("query customer: %w", err)
	default:
		_, err = tx.ExecContext(ctx,
			`UPDATE customers SET name = ?, address = ?, updated_at = ? WHERE id = ?`,
			c.Name, c.Address, now, id)
		if err != nil {
			return "", fmt.Errorf("update customer: %w", err)
		}
	}
	return id, nil
}

const orderColumns = `
	o.id, o.customer_id, o.status, o.total, COALESCE(o.summary, ''), o.created_at, o.updated_at,
	cu.id, cu.name, cu.phone, COALESCE(cu.address, ''), cu.created_at`

func scanOrder(row scanner) (*models.Order, error) {
	o := &models.Order{Customer: &models.Customer{}}
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.Status, &o.Total, &o.Summary, &o.CreatedAt, &o.UpdatedAt,
		&o.Customer.ID, &o.Customer.Name, &o.Customer.Phone, &o.Customer.Address, &o.Customer.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Items = []models.OrderItem{}
	return o, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, `SELECT `+orderColumns+`
		FROM orders o JOIN customers cu ON cu.id = o.customer_id
		WHERE o.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	if err := s.attachItems(ctx, map[string]*models.Order{o.ID: o}, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

// ListOrders returns the newest orders first with customer and full line items.
func (s *Store) ListOrders(ctx context.Context, limit int) ([]*models.Order, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+orderColumns+`
		FROM orders o JOIN customers cu ON cu.id = o.customer_id
		ORDER BY o.created_at DESC, o.id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer closeRows(rows)

	orders := make([]*models.Order, 0)
	byID := make(map[string]*models.Order)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
		byID[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, o := range orders {
		if err := s.attachItems(ctx, byID, o.ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *Store) attachItems(ctx context.Context, byID map[string]*models.Order, orderID string) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, variation_id, variation_name, COALESCE(note, ''), final_price
		FROM order_items WHERE order_id = ?
		ORDER BY sort_order`, orderID)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		var oid string
		if err := rows.Scan(&item.ID, &oid, &item.ProductID, &item.ProductName, &item.VariationID,
			&item.VariationName, &item.Note, &item.FinalPrice); err != nil {
			closeRows(rows)
			return fmt.Errorf("scan order item: %w", err)
		}
		item.Complements = []models.OrderItemComplement{}
		items = append(items, item)
	}
	closeRows(rows)
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}

	// rows must be closed before the next query on a single-connection pool
	for i := range items {
		if err := s.attachItemComplements(ctx, &items[i]); err != nil {
			return err
		}
	}
	if o, ok := byID[orderID]; ok && items != nil {
		o.Items = items
	}
	return nil
}

func (s *Store) attachItemComplements(ctx context.Context, item *models.OrderItem) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, complement_id, name, type, allocation, quantity, price
		FROM order_item_complements WHERE order_item_id = ?
		ORDER BY sort_order`, item.ID)
	if err != nil {
		return fmt.Errorf("query order item complements: %w", err)
	}
	defer closeRows(rows)

	for rows.Next() {
		var c models.OrderItemComplement
		if err := rows.Scan(&c.ID, &c.ComplementID, &c.Name, &c.Type, &c.Allocation, &c.Quantity, &c.Price); err != nil {
			return fmt.Errorf("scan order item complement: %w", err)
		}
		item.Complements = append(item.Complements, c)
	}
	return rows.Err()
}

// UpdateOrderStatus moves the order to a new status unless it already reached a
// terminal one. The check and the write share a transaction.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, to models.OrderStatus) (*models.Order, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var current models.OrderStatus
		err := tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = ?`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("query order status: %w", err)
		}
		if !current.CanTransition(to) {
			return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, current, to)
		}
		_, err = tx.ExecContext(ctx, `UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`, to, s.now(), id)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, id)
}

func (s *Store) GetOrderStatus(ctx context.Context, id string) (models.OrderStatus, error) {
	var status models.OrderStatus
	err := s.db.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrOrderNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query order status: %w", err)
	}
	return status, nil
}

// ListCustomers returns customers newest first with their order count.
func (s *Store) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cu.id, cu.name, cu.phone, COALESCE(cu.address, ''), cu.created_at, COUNT(o.id)
		FROM customers cu LEFT JOIN orders o ON o.customer_id = cu.id
		GROUP BY cu.id, cu.name, cu.phone, cu.address, cu.created_at
		ORDER BY cu.created_at DESC, cu.id`)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer closeRows(rows)

	customers := make([]models.Customer, 0)
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.CreatedAt, &c.OrderCount); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return customers, nil
}
