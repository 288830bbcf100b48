package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"hamutea-admin/internal/shared/model"
	"hamutea-admin/internal/shared/storage"
)

const productColumns = `id, name, description, price, stock_quantity, category, image_url,
	is_available, is_featured, created_at`

func scanProduct(row interface{ Scan(...any) error }) (*model.Product, error) {
	p := &model.Product{}
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity,
		&p.Category, &p.ImageURL, &p.IsAvailable, &p.IsFeatured, &p.CreatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProducts 列出商品，支持分类与推荐过滤
func (s *Store) ListProducts(ctx context.Context, filter model.ProductFilter) ([]*model.Product, error) {
	start := time.Now()

	var conditions []string
	var args []any
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.FeaturedOnly {
		args = append(args, true)
		conditions = append(conditions, fmt.Sprintf("is_featured = $%d", len(args)))
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, s.observe(ctx, "list", "products", start, err)
	}
	defer rows.Close()

	products := []*model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, s.observe(ctx, "list", "products", start, err)
		}
		products = append(products, p)
	}
	return products, s.observe(ctx, "list", "products", start, rows.Err())
}

// GetProduct 获取商品
func (s *Store) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	start := time.Now()
	p, err := scanProduct(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+productColumns+` FROM products WHERE id = $1`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return p, s.observe(ctx, "get", "products", start, err)
}

// CreateProduct 创建商品
func (s *Store) CreateProduct(ctx context.Context, p *model.Product) error {
	start := time.Now()
	createdAt := now()
	id, err := s.insertReturningID(ctx,
		`INSERT INTO products
		 (name, description, price, stock_quantity, category, image_url, is_available, is_featured, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.Name, p.Description, p.Price, p.StockQuantity, p.Category, p.ImageURL,
		p.IsAvailable, p.IsFeatured, createdAt,
	)
	if err != nil {
		return s.observe(ctx, "insert", "products", start, err)
	}
	p.ID = id
	p.CreatedAt = createdAt
	return nil
}

// UpdateProduct 更新商品（全字段覆盖，合并逻辑由调用方完成）
func (s *Store) UpdateProduct(ctx context.Context, p *model.Product) error {
	start := time.Now()
	_, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE products
		 SET name = $1, description = $2, price = $3, stock_quantity = $4, category = $5,
		     image_url = $6, is_available = $7, is_featured = $8
		 WHERE id = $9`),
		p.Name, p.Description, p.Price, p.StockQuantity, p.Category,
		p.ImageURL, p.IsAvailable, p.IsFeatured, p.ID,
	)
	return s.observe(ctx, "update", "products", start, err)
}

// ToggleProductFlag 在同一事务内翻转布尔字段并读回新值
//
// 使用 SET x = NOT x 而非先读后写，并发翻转不会丢失更新。
func (s *Store) ToggleProductFlag(ctx context.Context, id int64, flag model.ProductFlag) (bool, error) {
	start := time.Now()
	column, err := flagColumn(flag)
	if err != nil {
		return false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, s.observe(ctx, "toggle", "products", start, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		s.rebind(`UPDATE products SET `+column+` = NOT `+column+` WHERE id = $1`), id)
	if err != nil {
		return false, s.observe(ctx, "toggle", "products", start, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, s.observe(ctx, "toggle", "products", start, err)
	} else if n == 0 {
		return false, storage.ErrNotFound
	}

	var value bool
	if err := tx.QueryRowContext(ctx,
		s.rebind(`SELECT `+column+` FROM products WHERE id = $1`), id,
	).Scan(&value); err != nil {
		return false, s.observe(ctx, "toggle", "products", start, err)
	}
	if err := tx.Commit(); err != nil {
		return false, s.observe(ctx, "toggle", "products", start, err)
	}
	return value, nil
}

// DeleteProduct 删除商品（历史订单明细中的引用保留）
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	start := time.Now()
	return s.observe(ctx, "delete", "products", start,
		s.execAffectingOne(ctx, `DELETE FROM products WHERE id = $1`, id))
}

// flagColumn 白名单校验，防止拼接任意列名
func flagColumn(flag model.ProductFlag) (string, error) {
	switch flag {
	case model.ProductFlagAvailable, model.ProductFlagFeatured:
		return string(flag), nil
	}
	return "", fmt.Errorf("unknown product flag %q", flag)
}
