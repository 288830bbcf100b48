// Package storage 定义持久化存储层抽象接口
//
// 设计原则：依赖倒置 (DIP)
//   - 调用方只依赖接口，不知道具体实现
//   - 具体实现在 repository/ 中，SQL 方言由 driver/ 提供
//   - 初始化时通过依赖注入传入实现
//
// 约定：按 ID 查询/修改/删除时，记录不存在返回 ErrNotFound；
// 唯一约束冲突返回 ErrDuplicate。
package storage

import (
	"context"

	"hamutea-admin/internal/shared/model"
)

// UserStore 用户存储接口
type UserStore interface {
	ListUsers(ctx context.Context) ([]*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	// GetUserByEmail 邮箱不存在时返回 (nil, nil)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// EmailTaken 检查邮箱是否已被 excludeID 以外的用户占用（excludeID 为 0 表示不排除）
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	// CreateUser 插入用户并回填 ID、CreatedAt
	CreateUser(ctx context.Context, user *model.User) error
	// UpdateUser 覆盖 name/email/password/role
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id int64) error
}

// ProductStore 商品存储接口
type ProductStore interface {
	ListProducts(ctx context.Context, filter model.ProductFilter) ([]*model.Product, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	// CreateProduct 插入商品并回填 ID、CreatedAt
	CreateProduct(ctx context.Context, product *model.Product) error
	UpdateProduct(ctx context.Context, product *model.Product) error
	// ToggleProductFlag 翻转布尔字段并返回翻转后的值
	ToggleProductFlag(ctx context.Context, id int64, flag model.ProductFlag) (bool, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// OrderStore 订单存储接口
type OrderStore interface {
	// ListOrders status 为空时返回全部订单
	ListOrders(ctx context.Context, status model.OrderStatus) ([]*model.Order, error)
	// GetOrder 返回订单及其明细
	GetOrder(ctx context.Context, id int64) (*model.OrderDetail, error)
	UpdateOrderStatus(ctx context.Context, id int64, status model.OrderStatus) error
	GetOrderStats(ctx context.Context) (*model.OrderStats, error)
}

// PersistentStore 持久化存储组合接口
type PersistentStore interface {
	UserStore
	ProductStore
	OrderStore
	Ping(ctx context.Context) error
	Close() error
}
