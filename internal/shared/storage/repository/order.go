package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hamutea-admin/internal/shared/model"
	"hamutea-admin/internal/shared/storage"

	"github.com/shopspring/decimal"
)

// moneyScale 金额列的小数位数
const moneyScale = 2

const orderSelect = `SELECT o.id, o.user_id, u.name, u.email, o.status, o.total_amount, o.created_at
	FROM orders o
	LEFT JOIN users u ON o.user_id = u.id`

func scanOrder(row interface{ Scan(...any) error }) (*model.Order, error) {
	o := &model.Order{}
	var userID sql.NullInt64
	var name, email sql.NullString
	if err := row.Scan(&o.ID, &userID, &name, &email, &o.Status, &o.TotalAmount, &o.CreatedAt); err != nil {
		return nil, err
	}
	if userID.Valid {
		o.UserID = &userID.Int64
	}
	if name.Valid {
		o.CustomerName = &name.String
	}
	if email.Valid {
		o.CustomerEmail = &email.String
	}
	return o, nil
}

func (s *Store) queryOrders(ctx context.Context, query string, args ...any) ([]*model.Order, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListOrders 列出订单（含下单用户信息）
func (s *Store) ListOrders(ctx context.Context, status model.OrderStatus) ([]*model.Order, error) {
	start := time.Now()
	query := orderSelect
	var args []any
	if status != "" {
		query += ` WHERE o.status = $1`
		args = append(args, string(status))
	}
	query += ` ORDER BY o.created_at DESC, o.id DESC`

	orders, err := s.queryOrders(ctx, query, args...)
	return orders, s.observe(ctx, "list", "orders", start, err)
}

// GetOrder 获取订单及其明细
func (s *Store) GetOrder(ctx context.Context, id int64) (*model.OrderDetail, error) {
	start := time.Now()
	o, err := scanOrder(s.db.QueryRowContext(ctx, s.rebind(orderSelect+` WHERE o.id = $1`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, s.observe(ctx, "get", "orders", start, err)
	}

	items, err := s.listOrderItems(ctx, id)
	if err != nil {
		return nil, s.observe(ctx, "list", "order_items", start, err)
	}
	return &model.OrderDetail{Order: *o, Items: items}, nil
}

func (s *Store) listOrderItems(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, p.name, p.image_url
		 FROM order_items oi
		 LEFT JOIN products p ON oi.product_id = p.id
		 WHERE oi.order_id = $1
		 ORDER BY oi.id`), orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		var it model.OrderItem
		var name, image sql.NullString
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price, &name, &image); err != nil {
			return nil, err
		}
		if name.Valid {
			it.ProductName = &name.String
		}
		if image.Valid {
			it.ImageURL = &image.String
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateOrderStatus 更新订单状态
func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status model.OrderStatus) error {
	start := time.Now()
	if !status.Valid() {
		return fmt.Errorf("invalid order status %q", status)
	}

	var exists int64
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT id FROM orders WHERE id = $1`), id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return s.observe(ctx, "get", "orders", start, err)
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`UPDATE orders SET status = $1 WHERE id = $2`), string(status), id)
	return s.observe(ctx, "update", "orders", start, err)
}

// GetOrderStats 订单统计：总数、按状态计数、有效营收、最近订单
func (s *Store) GetOrderStats(ctx context.Context) (*model.OrderStats, error) {
	start := time.Now()
	stats := &model.OrderStats{}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&stats.TotalOrders); err != nil {
		return nil, s.observe(ctx, "count", "orders", start, err)
	}

	byStatus, err := s.countOrdersByStatus(ctx)
	if err != nil {
		return nil, s.observe(ctx, "group", "orders", start, err)
	}
	stats.OrdersByStatus = byStatus

	var revenue decimal.NullDecimal
	if err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT SUM(total_amount) FROM orders WHERE status <> $1`), string(model.OrderStatusCancelled),
	).Scan(&revenue); err != nil {
		return nil, s.observe(ctx, "sum", "orders", start, err)
	}
	// SQLite 的 SUM 按浮点累加，统一收敛到金额列的两位小数
	stats.TotalRevenue = decimal.Zero
	if revenue.Valid {
		stats.TotalRevenue = revenue.Decimal.Round(moneyScale)
	}

	recent, err := s.queryOrders(ctx,
		fmt.Sprintf(`%s ORDER BY o.created_at DESC, o.id DESC LIMIT %d`, orderSelect, model.RecentOrdersLimit))
	if err != nil {
		return nil, s.observe(ctx, "list", "orders", start, err)
	}
	stats.RecentOrders = recent
	return stats, nil
}

func (s *Store) countOrdersByStatus(ctx context.Context) ([]model.StatusCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM orders GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []model.StatusCount{}
	for rows.Next() {
		var c model.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
