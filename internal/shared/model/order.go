package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusReadyForPickup OrderStatus = "ready_for_pickup"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// OrderStatuses 全部合法状态，状态之间可任意切换
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusReadyForPickup,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// Valid 是否为合法状态
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Order 订单
//
// CustomerName/CustomerEmail 来自 LEFT JOIN users，下单用户被删除后为 nil。
type Order struct {
	ID            int64           `json:"id" db:"id"`
	UserID        *int64          `json:"user_id" db:"user_id"`
	CustomerName  *string         `json:"customer_name" db:"customer_name"`
	CustomerEmail *string         `json:"customer_email" db:"customer_email"`
	Status        OrderStatus     `json:"status" db:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// OrderDetail 单个订单及其明细，没有明细时 items 为空数组
type OrderDetail struct {
	Order
	Items []OrderItem `json:"items"`
}

// OrderItem 订单明细，Price 为下单时的价格快照
type OrderItem struct {
	ID          int64           `json:"id" db:"id"`
	OrderID     int64           `json:"order_id" db:"order_id"`
	ProductID   int64           `json:"product_id" db:"product_id"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
	ProductName *string         `json:"product_name" db:"product_name"`
	ImageURL    *string         `json:"image_url" db:"image_url"`
}

// StatusCount 按状态分组计数
type StatusCount struct {
	Status OrderStatus `json:"status"`
	Count  int64       `json:"count"`
}

// OrderStats 订单统计（只读聚合视图）
type OrderStats struct {
	TotalOrders    int64           `json:"totalOrders"`
	OrdersByStatus []StatusCount   `json:"ordersByStatus"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	RecentOrders   []*Order        `json:"recentOrders"`
}

// RecentOrdersLimit 统计中返回的最近订单数
const RecentOrdersLimit = 5
