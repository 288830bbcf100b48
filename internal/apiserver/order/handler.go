// Package order 订单领域 - HTTP 处理
package order

import (
	"net/http"

	"hamutea-admin/internal/apiserver/auth"
	"hamutea-admin/internal/apiserver/httpx"
	"hamutea-admin/internal/shared/model"
	"hamutea-admin/internal/shared/storage"
	"hamutea-admin/pkg/logging"
)

// Handler 订单 HTTP 处理器
type Handler struct {
	store storage.OrderStore
	gate  *auth.Gate
	rs    *httpx.Responder
	log   *logging.Logger
}

// NewHandler 创建订单处理器
func NewHandler(store storage.OrderStore, gate *auth.Gate, rs *httpx.Responder, log *logging.Logger) *Handler {
	if log == nil {
		log = logging.Discard()
	}
	return &Handler{store: store, gate: gate, rs: rs, log: log.Named("order")}
}

// RegisterRoutes 注册订单相关路由，全部需要管理员
// /stats 比 /{id} 更具体，ServeMux 优先匹配
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/orders", h.gate.RequireAdmin(h.List))
	mux.HandleFunc("GET /api/orders/stats", h.gate.RequireAdmin(h.Stats))
	mux.HandleFunc("GET /api/orders/{id}", h.gate.RequireAdmin(h.Get))
	mux.HandleFunc("PUT /api/orders/{id}", h.gate.RequireAdmin(h.UpdateStatus))
}

const msgOrderNotFound = "Order not found"

type updateStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

// List 订单列表（含下单人姓名和邮箱）
// GET /api/orders?status=pending
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	status := model.OrderStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		h.rs.Error(w, r, httpx.Validation("Invalid status value"))
		return
	}
	orders, err := h.store.ListOrders(r.Context(), status)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	httpx.List(w, orders, len(orders))
}

// Get 订单详情（含明细）
// GET /api/orders/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	o, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		h.rs.Error(w, r, httpx.OrNotFound(err, msgOrderNotFound))
		return
	}
	httpx.OK(w, http.StatusOK, o)
}

// UpdateStatus 修改订单状态，状态之间可任意切换
// PUT /api/orders/{id}
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	var req updateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if req.Status == "" {
		h.rs.Error(w, r, httpx.Validation("Status is required"))
		return
	}
	if !req.Status.Valid() {
		h.rs.Error(w, r, httpx.Validation("Invalid status value"))
		return
	}

	if err := h.store.UpdateOrderStatus(r.Context(), id, req.Status); err != nil {
		h.rs.Error(w, r, httpx.OrNotFound(err, msgOrderNotFound))
		return
	}
	h.log.WithContext(r.Context()).Info("order status updated", "order_id", id, "status", string(req.Status))
	httpx.Message(w, http.StatusOK, "Order status updated successfully", map[string]any{
		"id":     id,
		"status": req.Status,
	})
}

// Stats 订单统计
// GET /api/orders/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetOrderStats(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, stats)
}
