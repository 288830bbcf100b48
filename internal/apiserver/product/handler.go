// Package product 商品领域 - HTTP 处理
package product

import (
	"net/http"
	"strings"

	"hamutea-admin/internal/apiserver/auth"
	"hamutea-admin/internal/apiserver/httpx"
	"hamutea-admin/internal/shared/model"
	"hamutea-admin/internal/shared/storage"
	"hamutea-admin/pkg/logging"
)

// Handler 商品 HTTP 处理器
type Handler struct {
	store storage.ProductStore
	gate  *auth.Gate
	rs    *httpx.Responder
	log   *logging.Logger
}

// NewHandler 创建商品处理器
func NewHandler(store storage.ProductStore, gate *auth.Gate, rs *httpx.Responder, log *logging.Logger) *Handler {
	if log == nil {
		log = logging.Discard()
	}
	return &Handler{store: store, gate: gate, rs: rs, log: log.Named("product")}
}

// RegisterRoutes 注册商品相关路由，读接口公开，写接口需要管理员
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.List)
	mux.HandleFunc("GET /api/products/{id}", h.Get)
	mux.HandleFunc("POST /api/products", h.gate.RequireAdmin(h.Create))
	mux.HandleFunc("PUT /api/products/{id}", h.gate.RequireAdmin(h.Update))
	mux.HandleFunc("PATCH /api/products/{id}/availability", h.gate.RequireAdmin(h.ToggleAvailability))
	mux.HandleFunc("PATCH /api/products/{id}/featured", h.gate.RequireAdmin(h.ToggleFeatured))
	mux.HandleFunc("DELETE /api/products/{id}", h.gate.RequireAdmin(h.Delete))
}

const msgProductNotFound = "Product not found"

// List 商品列表
// GET /api/products?category=tea&featured=true
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.ProductFilter{
		Category:     q.Get("category"),
		FeaturedOnly: q.Get("featured") == "true",
	}
	products, err := h.store.ListProducts(r.Context(), filter)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	httpx.List(w, products, len(products))
}

// Get 商品详情
// GET /api/products/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	p, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		h.rs.Error(w, r, httpx.OrNotFound(err, msgProductNotFound))
		return
	}
	httpx.OK(w, http.StatusOK, p)
}

// Create 创建商品
// POST /api/products
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.ProductInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if missing := in.MissingForCreate(); len(missing) > 0 {
		h.rs.Error(w, r, httpx.Validation("Missing required fields: %s", strings.Join(missing, ", ")))
		return
	}

	p := in.NewProduct()
	if err := validate(p); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if err := h.store.CreateProduct(r.Context(), &p); err != nil {
		h.rs.Error(w, r, err)
		return
	}

	h.log.WithContext(r.Context()).Info("product created", "product_id", p.ID)
	httpx.Message(w, http.StatusCreated, "Product created successfully", p)
}

// Update 部分更新商品
// PUT /api/products/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	var in model.ProductInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.rs.Error(w, r, err)
		return
	}

	existing, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		h.rs.Error(w, r, httpx.OrNotFound(err, msgProductNotFound))
		return
	}
	updated := in.Apply(*existing)
	if err := validate(updated); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if err := h.store.UpdateProduct(r.Context(), &updated); err != nil {
		h.rs.Error(w, r, httpx.OrNotFound(err, msgProductNotFound))
		return
	}
	httpx.Message(w, http.StatusOK, "Product updated successfully", updated)
}

// ToggleAvailability 切换上架状态
// PATCH /api/products/{id}/availability
func (h *Handler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, model.ProductFlagAvailable, func(v bool) string {
		if v {
			return "Product is now available"
		}
		return "Product is now unavailable"
	})
}

// ToggleFeatured 切换推荐状态
// PATCH /api/products/{id}/featured
func (h *Handler) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, model.ProductFlagFeatured, func(v bool) string {
		if v {
			return "Product is now featured"
		}
		return "Product is no longer featured"
	})
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, flag model.ProductFlag, message func(bool) string) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	value, err := h.store.ToggleProductFlag(r.Context(), id, flag)
	if err != nil {
		h.rs.Error(w, r, httpx.OrNotFound(err, msgProductNotFound))
		return
	}
	httpx.Message(w, http.StatusOK, message(value), map[string]any{
		"id":         id,
		string(flag): value,
	})
}

// Delete 删除商品，历史订单明细不受影响
// DELETE /api/products/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		h.rs.Error(w, r, httpx.OrNotFound(err, msgProductNotFound))
		return
	}
	h.log.WithContext(r.Context()).Info("product deleted", "product_id", id)
	httpx.Message(w, http.StatusOK, "Product deleted successfully", nil)
}

func validate(p model.Product) error {
	if p.Price.IsNegative() {
		return httpx.Validation("Price must not be negative")
	}
	if p.StockQuantity < 0 {
		return httpx.Validation("Stock quantity must not be negative")
	}
	return nil
}
