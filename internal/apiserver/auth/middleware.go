package auth

import (
	"net/http"
	"strings"

	"hamutea-admin/internal/apiserver/httpx"
	"hamutea-admin/pkg/logging"
)

// Gate 认证与授权中间件
//
// 路由注册时逐条声明：公开路由不包装，需要登录的包 Authenticate，
// 管理接口包 RequireAdmin。
type Gate struct {
	cfg Config
	rs  *httpx.Responder
	log *logging.Logger
}

// NewGate 创建认证中间件
func NewGate(cfg Config, rs *httpx.Responder, log *logging.Logger) *Gate {
	if log == nil {
		log = logging.Discard()
	}
	return &Gate{cfg: cfg, rs: rs, log: log.Named("auth")}
}

// Authenticate 校验 Bearer Token，成功后把身份写入 context
func (g *Gate) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			g.rs.Error(w, r, httpx.Unauthorized("Access token required"))
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			g.rs.Error(w, r, httpx.Unauthorized("Invalid authorization header"))
			return
		}

		user, err := VerifyToken(g.cfg, strings.TrimSpace(parts[1]))
		if err != nil {
			g.log.WithContext(r.Context()).Debug("token rejected", "error", err)
			g.rs.Error(w, r, httpx.Unauthorized("Invalid or expired token"))
			return
		}

		ctx := WithAuthUser(r.Context(), user)
		ctx = logging.WithAccountID(ctx, user.ID)
		next(w, r.WithContext(ctx))
	}
}

// AdminOnly 管理员专属路由中间件，必须位于 Authenticate 之后
func (g *Gate) AdminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !GetAuthUser(r.Context()).IsAdmin() {
			g.rs.Error(w, r, httpx.Forbidden("Admin access required"))
			return
		}
		next(w, r)
	}
}

// RequireAdmin Authenticate + AdminOnly
func (g *Gate) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return g.Authenticate(g.AdminOnly(next))
}
