// Package user 后台账号管理 - HTTP 处理
package user

import (
	"errors"
	"net/http"
	"strings"

	"hamutea-admin/internal/apiserver/auth"
	"hamutea-admin/internal/apiserver/httpx"
	"hamutea-admin/internal/shared/model"
	"hamutea-admin/internal/shared/storage"
	"hamutea-admin/pkg/logging"
)

// Handler 账号管理 HTTP 处理器
type Handler struct {
	store storage.UserStore
	gate  *auth.Gate
	rs    *httpx.Responder
	log   *logging.Logger
}

// NewHandler 创建账号处理器
func NewHandler(store storage.UserStore, gate *auth.Gate, rs *httpx.Responder, log *logging.Logger) *Handler {
	if log == nil {
		log = logging.Discard()
	}
	return &Handler{store: store, gate: gate, rs: rs, log: log.Named("user")}
}

// RegisterRoutes 注册账号相关路由，全部需要管理员
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/users", h.gate.RequireAdmin(h.List))
	mux.HandleFunc("POST /api/users", h.gate.RequireAdmin(h.Create))
	mux.HandleFunc("GET /api/users/{id}", h.gate.RequireAdmin(h.Get))
	mux.HandleFunc("PUT /api/users/{id}", h.gate.RequireAdmin(h.Update))
	mux.HandleFunc("DELETE /api/users/{id}", h.gate.RequireAdmin(h.Delete))
}

type createRequest struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Role     model.UserRole `json:"role"`
}

const msgUserNotFound = "User not found"

var (
	errEmailInUse  = httpx.Validation("Email already in use")
	errInvalidRole = httpx.Validation("Invalid role value")
)

// List 账号列表
// GET /api/users
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	httpx.List(w, users, len(users))
}

// Get 账号详情
// GET /api/users/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	u, err := h.store.GetUserByID(r.Context(), id)
	if err != nil {
		h.rs.Error(w, r, httpx.OrNotFound(err, msgUserNotFound))
		return
	}
	httpx.OK(w, http.StatusOK, u)
}

// Create 创建账号
// POST /api/users
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}

	var missing []string
	if req.Name == "" {
		missing = append(missing, "name")
	}
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		h.rs.Error(w, r, httpx.Validation("Missing required fields: %s", strings.Join(missing, ", ")))
		return
	}
	if req.Role == "" {
		req.Role = model.UserRoleUser
	}
	if !req.Role.Valid() {
		h.rs.Error(w, r, errInvalidRole)
		return
	}

	ctx := r.Context()
	taken, err := h.store.EmailTaken(ctx, req.Email, 0)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if taken {
		h.rs.Error(w, r, errEmailInUse)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	u := &model.User{Name: req.Name, Email: req.Email, PasswordHash: hash, Role: req.Role}
	if err := h.store.CreateUser(ctx, u); err != nil {
		h.rs.Error(w, r, duplicateEmail(err))
		return
	}

	h.log.WithContext(ctx).Info("user created", "user_id", u.ID, "role", string(u.Role))
	httpx.Message(w, http.StatusCreated, "User created successfully", u)
}

// Update 部分更新账号
// PUT /api/users/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	var patch model.UserPatch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		h.rs.Error(w, r, err)
		return
	}

	ctx := r.Context()
	existing, err := h.store.GetUserByID(ctx, id)
	if err != nil {
		h.rs.Error(w, r, httpx.OrNotFound(err, msgUserNotFound))
		return
	}

	updated := patch.Apply(*existing)
	if !updated.Role.Valid() {
		h.rs.Error(w, r, errInvalidRole)
		return
	}
	if updated.Email != existing.Email {
		taken, err := h.store.EmailTaken(ctx, updated.Email, id)
		if err != nil {
			h.rs.Error(w, r, err)
			return
		}
		if taken {
			h.rs.Error(w, r, errEmailInUse)
			return
		}
	}
	if patch.Password.Value != "" {
		hash, err := auth.HashPassword(patch.Password.Value)
		if err != nil {
			h.rs.Error(w, r, err)
			return
		}
		updated.PasswordHash = hash
	}

	if err := h.store.UpdateUser(ctx, &updated); err != nil {
		h.rs.Error(w, r, duplicateEmail(err))
		return
	}
	httpx.Message(w, http.StatusOK, "User updated successfully", updated)
}

// Delete 删除账号（历史订单的 user_id 置空）
// DELETE /api/users/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		h.rs.Error(w, r, httpx.OrNotFound(err, msgUserNotFound))
		return
	}
	h.log.WithContext(r.Context()).Info("user deleted", "user_id", id)
	httpx.Message(w, http.StatusOK, "User deleted successfully", nil)
}

// duplicateEmail 预检之后仍可能因并发写入撞上唯一约束
func duplicateEmail(err error) error {
	if errors.Is(err, storage.ErrDuplicate) {
		return errEmailInUse
	}
	return err
}
