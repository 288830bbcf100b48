// Package testutil 测试辅助：内存 SQLite 存储与数据准备
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hamutea-admin/internal/shared/model"
	sqlitedriver "hamutea-admin/internal/shared/storage/driver/sqlite"
	"hamutea-admin/internal/shared/storage/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// NewStore 创建已建表的内存 SQLite 存储，测试结束自动关闭
func NewStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := sqlitedriver.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlitedriver.NewDialect()
	require.NoError(t, dialect.AutoMigrate(context.Background(), db))
	store := repository.NewStore(db, dialect, nil)
	t.Cleanup(func() { store.Close() })
	return store
}

// CreateUser 创建账号，密码以最低代价哈希
func CreateUser(t *testing.T, store *repository.Store, name, email, password string, role model.UserRole) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{Name: name, Email: email, PasswordHash: string(hash), Role: role}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

// CreateProduct 创建上架商品
func CreateProduct(t *testing.T, store *repository.Store, name, price, category string) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Category:    category,
		IsAvailable: true,
	}
	require.NoError(t, store.CreateProduct(context.Background(), p))
	return p
}

// SeedItem 订单明细
type SeedItem struct {
	ProductID int64
	Quantity  int
	Price     string
}

// SeedOrder 直接写入订单及明细，userID 为 0 表示无下单用户
func SeedOrder(t *testing.T, store *repository.Store, userID int64, status model.OrderStatus, total string, createdAt time.Time, items ...SeedItem) int64 {
	t.Helper()
	ctx := context.Background()
	db, dialect := store.DB(), store.Dialect()

	var uid any
	if userID != 0 {
		uid = userID
	}
	var id int64
	require.NoError(t, db.QueryRowContext(ctx, dialect.Rebind(
		`INSERT INTO orders (user_id, status, total_amount, created_at) VALUES ($1, $2, $3, $4) RETURNING id`),
		uid, string(status), total, createdAt.UTC(),
	).Scan(&id))

	for _, it := range items {
		_, err := db.ExecContext(ctx, dialect.Rebind(
			`INSERT INTO order_items (order_id, product_id, quantity, price) VALUES ($1, $2, $3, $4)`),
			id, it.ProductID, it.Quantity, it.Price)
		require.NoError(t, err)
	}
	return id
}

// Request 构造请求，body 为 string 时原样发送，其他非 nil 值编码为 JSON
func Request(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// Serve 执行请求并返回记录器
func Serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// Do 发送请求，token 非空时带 Bearer 头
func Do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := Request(t, method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return Serve(h, req)
}

// Envelope 测试用的响应结构，data 保留原始 JSON
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
	Error   string          `json:"error"`
}

// Decode 解析响应信封，dataOut 非 nil 时解析 data
func Decode(t *testing.T, w *httptest.ResponseRecorder, dataOut any) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if dataOut != nil {
		require.NoError(t, json.Unmarshal(env.Data, dataOut), string(env.Data))
	}
	return env
}
