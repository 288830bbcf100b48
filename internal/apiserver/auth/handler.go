package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"hamutea-admin/internal/apiserver/httpx"
	"hamutea-admin/internal/shared/model"
	"hamutea-admin/pkg/logging"
)

// UserStore 用户存储接口
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	UpdateUser(ctx context.Context, user *model.User) error
}

// Handler 认证 HTTP 处理器
type Handler struct {
	store UserStore
	cfg   Config
	gate  *Gate
	rs    *httpx.Responder
	log   *logging.Logger
}

// NewHandler 创建认证处理器
func NewHandler(store UserStore, cfg Config, gate *Gate, rs *httpx.Responder, log *logging.Logger) *Handler {
	if log == nil {
		log = logging.Discard()
	}
	return &Handler{store: store, cfg: cfg, gate: gate, rs: rs, log: log.Named("auth")}
}

// RegisterRoutes 注册认证相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("GET /api/auth/profile", h.gate.Authenticate(h.Profile))
}

// ============================================================================
// 请求/响应类型
// ============================================================================

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profile struct {
	ID    int64          `json:"id"`
	Name  string         `json:"name"`
	Email string         `json:"email"`
	Role  model.UserRole `json:"role"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      profile   `json:"user"`
}

// invalidCredentials 邮箱不存在与密码错误返回同一响应，避免账号枚举
var invalidCredentials = httpx.Unauthorized("Invalid credentials")

// dummyHash 邮箱不存在时也执行一次 bcrypt 比较，使两种失败耗时接近
var dummyHash = sync.OnceValue(func() string {
	h, _ := HashPassword("hamutea-dummy-password")
	return h
})

// ============================================================================
// Handlers
// ============================================================================

// Login 用户登录
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		h.rs.Error(w, r, httpx.Validation("Email and password are required"))
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if user == nil {
		CheckPassword(req.Password, dummyHash())
		h.rs.Error(w, r, invalidCredentials)
		return
	}
	if !CheckPassword(req.Password, user.PasswordHash) {
		h.rs.Error(w, r, invalidCredentials)
		return
	}

	token, expiresAt, err := IssueToken(h.cfg, user.ID, user.Role)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	h.log.WithContext(r.Context()).Info("user logged in", "user_id", user.ID)
	httpx.Message(w, http.StatusOK, "Login successful", loginResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC(),
		User:      profile{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role},
	})
}

// Profile 获取当前用户信息
// 令牌仍有效但账号已删除时返回 404
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	authUser := GetAuthUser(r.Context())
	if authUser == nil {
		h.rs.Error(w, r, httpx.Unauthorized("Access token required"))
		return
	}

	user, err := h.store.GetUserByID(r.Context(), authUser.ID)
	if err != nil {
		h.rs.Error(w, r, httpx.OrNotFound(err, "User not found"))
		return
	}
	httpx.OK(w, http.StatusOK, user)
}

// ============================================================================
// Admin Bootstrap
// ============================================================================

// EnsureAdminUser 确保管理员用户存在（启动时调用）
// 如果配置了 adminEmail 且数据库中不存在该用户，则自动创建；
// 已存在但不是管理员时提升为管理员，密码保持不变
func EnsureAdminUser(ctx context.Context, store UserStore, adminEmail, adminPassword string, log *logging.Logger) error {
	if adminEmail == "" || adminPassword == "" {
		return nil
	}
	if log == nil {
		log = logging.Discard()
	}

	existing, err := store.GetUserByEmail(ctx, adminEmail)
	if err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if existing != nil {
		if existing.Role != model.UserRoleAdmin {
			existing.Role = model.UserRoleAdmin
			if err := store.UpdateUser(ctx, existing); err != nil {
				return fmt.Errorf("promote admin user: %w", err)
			}
			log.Info("promoted user to admin", "email", adminEmail, "user_id", existing.ID)
			return nil
		}
		log.Info("admin user already exists", "email", adminEmail, "user_id", existing.ID)
		return nil
	}

	hash, err := HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	user := &model.User{
		Name:         "Admin User",
		Email:        adminEmail,
		PasswordHash: hash,
		Role:         model.UserRoleAdmin,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Info("created admin user", "email", adminEmail, "user_id", user.ID)
	return nil
}
