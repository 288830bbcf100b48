// Package repository SQLite 集成测试
//
// 使用 SQLite 内存数据库验证 repository 层所有存储接口的正确性。
// 无需外部数据库依赖，可在任何环境下运行。
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"hamutea-admin/internal/shared/model"
	"hamutea-admin/internal/shared/storage"
	"hamutea-admin/internal/shared/storage/dbutil"
	sqlitedriver "hamutea-admin/internal/shared/storage/driver/sqlite"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore 创建用于测试的 SQLite 内存数据库 Store
func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sqlitedriver.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlitedriver.NewDialect()
	require.NoError(t, dialect.AutoMigrate(context.Background(), db))
	store := NewStore(db, dialect, nil)
	t.Cleanup(func() { store.Close() })
	return store
}

func mustCreateUser(t *testing.T, s *Store, name, email string, role model.UserRole) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: email, PasswordHash: "hash", Role: role}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func mustCreateProduct(t *testing.T, s *Store, name string, price int64) *model.Product {
	t.Helper()
	p := &model.Product{Name: name, Price: decimal.NewFromInt(price), IsAvailable: true}
	require.NoError(t, s.CreateProduct(context.Background(), p))
	return p
}

// seedOrder 直接写表：订单没有创建接口
func seedOrder(t *testing.T, s *Store, userID any, status model.OrderStatus, total string, createdAt time.Time, items ...model.OrderItem) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := s.insertReturningID(ctx,
		`INSERT INTO orders (user_id, status, total_amount, created_at) VALUES ($1, $2, $3, $4)`,
		userID, string(status), total, createdAt)
	require.NoError(t, err)
	for _, it := range items {
		_, err := s.db.ExecContext(ctx, s.rebind(
			`INSERT INTO order_items (order_id, product_id, quantity, price) VALUES ($1, $2, $3, $4)`),
			id, it.ProductID, it.Quantity, it.Price)
		require.NoError(t, err)
	}
	return id
}

// ============================================================================
// Dialect 基础测试
// ============================================================================

func TestDialectTypes(t *testing.T) {
	d := sqlitedriver.NewDialect()
	assert.Equal(t, dbutil.DriverSQLite, d.DriverType())
	assert.True(t, d.SupportsReturning())
	assert.Equal(t, "SELECT * FROM t WHERE id = ? AND name = ?",
		d.Rebind("SELECT * FROM t WHERE id = $1 AND name = $2"))
}

func TestAutoMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Dialect().AutoMigrate(context.Background(), s.DB()))
	require.NoError(t, s.Ping(context.Background()))
}

// ============================================================================
// User 测试
// ============================================================================

func TestUserCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "Admin", "admin@hamutea.com", model.UserRoleAdmin)
	assert.NotZero(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Admin", got.Name)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, model.UserRoleAdmin, got.Role)

	byEmail, err := s.GetUserByEmail(ctx, "admin@hamutea.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)

	missing, err := s.GetUserByEmail(ctx, "nobody@hamutea.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// 邮箱大小写敏感
	missing, err = s.GetUserByEmail(ctx, "ADMIN@hamutea.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	got.Name = "Renamed"
	got.Role = model.UserRoleUser
	require.NoError(t, s.UpdateUser(ctx, got))
	got, err = s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, model.UserRoleUser, got.Role)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	_, err = s.GetUserByID(ctx, u.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteUser(ctx, u.ID), storage.ErrNotFound)
}

func TestListUsersNewestFirst(t *testing.T) {
	s := newTestStore(t)
	first := mustCreateUser(t, s, "A", "a@x.io", model.UserRoleUser)
	second := mustCreateUser(t, s, "B", "b@x.io", model.UserRoleUser)

	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, second.ID, users[0].ID)
	assert.Equal(t, first.ID, users[1].ID)
}

func TestEmailUniqueness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustCreateUser(t, s, "A", "a@x.io", model.UserRoleUser)
	b := mustCreateUser(t, s, "B", "b@x.io", model.UserRoleUser)

	taken, err := s.EmailTaken(ctx, "a@x.io", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = s.EmailTaken(ctx, "a@x.io", a.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	// 唯一约束兜底
	err = s.CreateUser(ctx, &model.User{Name: "C", Email: "a@x.io", PasswordHash: "h", Role: model.UserRoleUser})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	b.Email = "a@x.io"
	assert.ErrorIs(t, s.UpdateUser(ctx, b), storage.ErrDuplicate)
}

// ============================================================================
// Product 测试
// ============================================================================

func TestProductCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := &model.Product{
		Name:          "Milk Tea",
		Description:   "classic",
		Price:         decimal.RequireFromString("5.50"),
		StockQuantity: 3,
		Category:      "tea",
		IsAvailable:   true,
	}
	require.NoError(t, s.CreateProduct(ctx, p))
	assert.NotZero(t, p.ID)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Milk Tea", got.Name)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("5.5")), got.Price.String())
	assert.Equal(t, 3, got.StockQuantity)
	assert.True(t, got.IsAvailable)
	assert.False(t, got.IsFeatured)

	got.Price = decimal.NewFromInt(6)
	got.Description = ""
	require.NoError(t, s.UpdateProduct(ctx, got))
	got, err = s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(6)))
	assert.Equal(t, "", got.Description)
	assert.Equal(t, "tea", got.Category)

	require.NoError(t, s.DeleteProduct(ctx, p.ID))
	_, err = s.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteProduct(ctx, p.ID), storage.ErrNotFound)
}

func TestListProductsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	items := []*model.Product{
		{Name: "Green", Price: decimal.NewFromInt(4), Category: "tea", IsAvailable: true, IsFeatured: true},
		{Name: "Black", Price: decimal.NewFromInt(4), Category: "tea", IsAvailable: true},
		{Name: "Cookie", Price: decimal.NewFromInt(2), Category: "snack", IsAvailable: true, IsFeatured: true},
	}
	for _, p := range items {
		require.NoError(t, s.CreateProduct(ctx, p))
	}

	tests := []struct {
		name   string
		filter model.ProductFilter
		want   []string
	}{
		{"all newest first", model.ProductFilter{}, []string{"Cookie", "Black", "Green"}},
		{"category", model.ProductFilter{Category: "tea"}, []string{"Black", "Green"}},
		{"featured", model.ProductFilter{FeaturedOnly: true}, []string{"Cookie", "Green"}},
		{"category and featured", model.ProductFilter{Category: "tea", FeaturedOnly: true}, []string{"Green"}},
		{"no match", model.ProductFilter{Category: "coffee"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListProducts(ctx, tt.filter)
			require.NoError(t, err)
			names := []string{}
			for _, p := range got {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestToggleProductFlag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := mustCreateProduct(t, s, "Tea", 5)

	v, err := s.ToggleProductFlag(ctx, p.ID, model.ProductFlagAvailable)
	require.NoError(t, err)
	assert.False(t, v)
	v, err = s.ToggleProductFlag(ctx, p.ID, model.ProductFlagAvailable)
	require.NoError(t, err)
	assert.True(t, v)

	v, err = s.ToggleProductFlag(ctx, p.ID, model.ProductFlagFeatured)
	require.NoError(t, err)
	assert.True(t, v)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAvailable)
	assert.True(t, got.IsFeatured)

	_, err = s.ToggleProductFlag(ctx, 9999, model.ProductFlagFeatured)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.ToggleProductFlag(ctx, p.ID, model.ProductFlag("price"))
	assert.Error(t, err)
}

// ============================================================================
// Order 测试
// ============================================================================

func TestGetOrderWithItems(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, s, "Ann", "ann@x.io", model.UserRoleUser)
	tea := mustCreateProduct(t, s, "Tea", 5)
	cake := mustCreateProduct(t, s, "Cake", 7)
	base := time.Now().UTC().Add(-time.Hour)

	first := seedOrder(t, s, u.ID, model.OrderStatusPending, "17", base,
		model.OrderItem{ProductID: tea.ID, Quantity: 2, Price: decimal.NewFromInt(5)},
		model.OrderItem{ProductID: cake.ID, Quantity: 1, Price: decimal.NewFromInt(7)},
	)
	second := seedOrder(t, s, u.ID, model.OrderStatusPending, "5", base.Add(time.Minute),
		model.OrderItem{ProductID: tea.ID, Quantity: 1, Price: decimal.NewFromInt(5)},
	)
	empty := seedOrder(t, s, nil, model.OrderStatusCompleted, "0", base.Add(2*time.Minute))

	o, err := s.GetOrder(ctx, first)
	require.NoError(t, err)
	require.NotNil(t, o.CustomerName)
	assert.Equal(t, "Ann", *o.CustomerName)
	require.Len(t, o.Items, 2)
	for _, it := range o.Items {
		assert.Equal(t, first, it.OrderID)
	}
	require.NotNil(t, o.Items[0].ProductName)
	assert.Equal(t, "Tea", *o.Items[0].ProductName)

	o, err = s.GetOrder(ctx, second)
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, second, o.Items[0].OrderID)

	o, err = s.GetOrder(ctx, empty)
	require.NoError(t, err)
	assert.Empty(t, o.Items)
	assert.Nil(t, o.UserID)
	assert.Nil(t, o.CustomerName)

	_, err = s.GetOrder(ctx, 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// 商品被删除后明细仍保留，名称为空
	require.NoError(t, s.DeleteProduct(ctx, cake.ID))
	o, err = s.GetOrder(ctx, first)
	require.NoError(t, err)
	require.Len(t, o.Items, 2)
	assert.Nil(t, o.Items[1].ProductName)
}

func TestListOrdersAndStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)
	a := seedOrder(t, s, nil, model.OrderStatusPending, "10", base)
	b := seedOrder(t, s, nil, model.OrderStatusCompleted, "20", base.Add(time.Minute))

	orders, err := s.ListOrders(ctx, "")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, b, orders[0].ID)
	assert.Equal(t, a, orders[1].ID)

	orders, err = s.ListOrders(ctx, model.OrderStatusPending)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, a, orders[0].ID)

	require.NoError(t, s.UpdateOrderStatus(ctx, a, model.OrderStatusReadyForPickup))
	o, err := s.GetOrder(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusReadyForPickup, o.Status)

	assert.ErrorIs(t, s.UpdateOrderStatus(ctx, 9999, model.OrderStatusPending), storage.ErrNotFound)
	assert.Error(t, s.UpdateOrderStatus(ctx, a, model.OrderStatus("shipped")))
}

func TestGetOrderStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stats, err := s.GetOrderStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalOrders)
	assert.True(t, stats.TotalRevenue.IsZero())
	assert.Empty(t, stats.RecentOrders)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 6; i++ {
		seedOrder(t, s, nil, model.OrderStatusCompleted, "10", base.Add(time.Duration(i)*time.Minute))
	}
	cancelled := seedOrder(t, s, nil, model.OrderStatusCancelled, "100", base.Add(10*time.Minute))

	stats, err = s.GetOrderStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 7, stats.TotalOrders)
	assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(60)), stats.TotalRevenue.String())
	assert.Equal(t, []model.StatusCount{
		{Status: model.OrderStatusCancelled, Count: 1},
		{Status: model.OrderStatusCompleted, Count: 6},
	}, stats.OrdersByStatus)
	require.Len(t, stats.RecentOrders, model.RecentOrdersLimit)
	assert.Equal(t, cancelled, stats.RecentOrders[0].ID)
}

func TestGetOrderStatsRevenueKeepsCents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	seedOrder(t, s, nil, model.OrderStatusCompleted, "0.10", base)
	seedOrder(t, s, nil, model.OrderStatusPending, "0.20", base.Add(time.Minute))
	seedOrder(t, s, nil, model.OrderStatusReadyForPickup, "19.99", base.Add(2*time.Minute))

	stats, err := s.GetOrderStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "20.29", stats.TotalRevenue.String())

	raw, err := json.Marshal(stats)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"totalRevenue":20.29`)
}

// ============================================================================
// 故障注入
// ============================================================================

func TestStoreFailureIsWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewStore(db, sqlitedriver.NewDialect(), nil)
	boom := errors.New("connection reset")
	mock.ExpectQuery("SELECT (.+) FROM products").WillReturnError(boom)

	_, err = s.ListProducts(context.Background(), model.ProductFilter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleRollsBackOnMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewStore(db, sqlitedriver.NewDialect(), nil)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products SET is_featured = NOT is_featured").
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err = s.ToggleProductFlag(context.Background(), 42, model.ProductFlagFeatured)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
