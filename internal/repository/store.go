package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/foodexpress/storefront/internal/domain"
)

func (r *Repository) FetchVendors(ctx context.Context) ([]domain.Vendor, error) {
	query := `SELECT id, name, description, image_url, rating, delivery_time
	          FROM vendors ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query vendors: %w", err)
	}
	defer rows.Close()

	var vendors []domain.Vendor
	for rows.Next() {
		var v domain.Vendor
		if err := rows.Scan(
			&v.ID,
			&v.Name,
			&v.Description,
			&v.ImageURL,
			&v.Rating,
			&v.DeliveryTime,
		); err != nil {
			return nil, fmt.Errorf("scan vendor row: %w", err)
		}
		vendors = append(vendors, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return vendors, nil
}

func (r *Repository) FetchItems(ctx context.Context, vendorID string) ([]domain.CatalogItem, error) {
	query := `SELECT id, vendor_id, name, description, price, image_url, category
	          FROM menu_items WHERE vendor_id = $1 ORDER BY category, name`

	rows, err := r.db.QueryContext(ctx, query, vendorID)
	if err != nil {
		return nil, fmt.Errorf("query items for vendor %s: %w", vendorID, err)
	}
	defer rows.Close()

	var items []domain.CatalogItem
	for rows.Next() {
		var it domain.CatalogItem
		if err := rows.Scan(
			&it.ID,
			&it.VendorID,
			&it.Name,
			&it.Description,
			&it.Price,
			&it.ImageURL,
			&it.Category,
		); err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

// CreateOrder inserts the order header and returns the generated id.
func (r *Repository) CreateOrder(ctx context.Context, sub domain.OrderSubmission) (uuid.UUID, error) {
	query := `INSERT INTO orders
	            (customer_name, customer_email, customer_phone, delivery_address, total_amount, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW())
	          RETURNING id`

	var orderID uuid.UUID
	err := r.db.QueryRowContext(ctx, query,
		sub.CustomerName,
		sub.CustomerEmail,
		sub.CustomerPhone,
		sub.DeliveryAddress,
		sub.Total,
		sub.Status,
	).Scan(&orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, ErrNoOrderID
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert order: %w", err)
	}

	return orderID, nil
}

// CreateOrderLines attaches the line records to an already-created order
// header. The insert is atomic across lines, but deliberately not atomic
// with the header insert; a failure here is reported to the caller and
// never rolled back against the header.
func (r *Repository) CreateOrderLines(ctx context.Context, orderID uuid.UUID, lines []domain.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order lines transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `INSERT INTO order_items (order_id, menu_item_id, quantity, price)
	          VALUES ($1, $2, $3, $4)`
	for _, line := range lines {
		if _, err = tx.ExecContext(ctx, query, orderID, line.ItemID, line.Quantity, line.UnitPrice); err != nil {
			return fmt.Errorf("insert order line for item %s: %w", line.ItemID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit order lines: %w", err)
	}

	return nil
}
