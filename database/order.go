package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/veldcommerce/veld/internal/apierror"
	"github.com/veldcommerce/veld/model"
)

func (d Datasource) RecordOrder(ctx context.Context, order *model.Order) (*model.Order, error) {
	metaDataJSON, err := json.Marshal(order.MetaData)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin order transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var discountCodeID interface{}
	if order.DiscountCodeID != "" {
		discountCodeID = order.DiscountCodeID
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders(order_id,discount_code_id,discount_amount,discount_redeemed,total_amount,status,created_at,updated_at,meta_data) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		order.OrderID, discountCodeID, order.DiscountAmount, order.DiscountRedeemed, order.TotalAmount, order.Status, order.CreatedAt, order.UpdatedAt, metaDataJSON,
	)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record order", err)
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items(order_id,product_id,quantity,unit_price) VALUES ($1,$2,$3,$4)`,
			order.OrderID, item.ProductID, item.Quantity, item.UnitPrice,
		)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record order item", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit order transaction", err)
	}
	return order, nil
}

func (d Datasource) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT order_id, discount_code_id, discount_amount, discount_redeemed, total_amount, status, created_at, updated_at, meta_data
		FROM orders
		WHERE order_id = $1
	`, orderID)

	order, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Order with ID '%s' not found", orderID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve order", err)
	}

	items, err := d.getOrderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func scanOrder(row interface{ Scan(...interface{}) error }) (*model.Order, error) {
	order := &model.Order{}
	var discountCodeID sql.NullString
	var metaDataJSON []byte

	err := row.Scan(&order.OrderID, &discountCodeID, &order.DiscountAmount, &order.DiscountRedeemed,
		&order.TotalAmount, &order.Status, &order.CreatedAt, &order.UpdatedAt, &metaDataJSON)
	if err != nil {
		return nil, err
	}
	if discountCodeID.Valid {
		order.DiscountCodeID = discountCodeID.String
	}
	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &order.MetaData); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
		}
	}
	return order, nil
}

func (d Datasource) getOrderItems(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT order_id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve order items", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		item := model.OrderItem{}
		if err := rows.Scan(&item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan order item data", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over order items", err)
	}
	return items, nil
}

// TransitionOrder moves an order to a new status after checking the central
// transition table. The UPDATE carries the expected current status so a
// concurrent transition makes this one a no-op rather than an overwrite.
func (d Datasource) TransitionOrder(ctx context.Context, orderID string, to string) error {
	order, err := d.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if !model.CanTransitionOrder(order.Status, to) {
		return apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Order '%s' cannot transition from %s to %s", orderID, order.Status, to), nil)
	}

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE order_id = $1 AND status = $3
	`, orderID, to, order.Status)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update order status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Order '%s' changed concurrently", orderID), nil)
	}

	return nil
}
