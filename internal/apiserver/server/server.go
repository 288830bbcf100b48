// Package server 路由装配与 HTTP 中间件
//
// 路由规则：
//
//	GET  /                     欢迎信息
//	GET  /health               健康检查（含数据库 Ping）
//	GET  /metrics              Prometheus 指标
//	/api/auth/...              登录、个人资料（auth 包）
//	/api/users/...             用户管理（user 包，管理员）
//	/api/products/...          商品（product 包，读公开、写需管理员）
//	/api/orders/...            订单（order 包，管理员）
//	/api/upload/product-image  商品图片上传（upload 包，管理员）
//	GET  /uploads/{key...}     已上传文件
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"hamutea-admin/internal/apiserver/auth"
	"hamutea-admin/internal/apiserver/httpx"
	"hamutea-admin/internal/apiserver/order"
	"hamutea-admin/internal/apiserver/product"
	"hamutea-admin/internal/apiserver/upload"
	"hamutea-admin/internal/apiserver/user"
	"hamutea-admin/internal/config"
	"hamutea-admin/internal/shared/objstore"
	"hamutea-admin/internal/shared/storage"
	"hamutea-admin/pkg/logging"
)

// WelcomeMessage GET / 返回的欢迎语
const WelcomeMessage = "Welcome to Hamutea Admin API"

// healthTimeout 健康检查中数据库 Ping 的超时
const healthTimeout = 3 * time.Second

// Server HTTP 服务装配
type Server struct {
	cfg     *config.Config
	store   storage.PersistentStore
	objects objstore.Store
	log     *logging.Logger
	metrics *Metrics
	rs      *httpx.Responder
	gate    *auth.Gate
}

// New 创建 Server
func New(cfg *config.Config, store storage.PersistentStore, objects objstore.Store, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	rs := httpx.NewResponder(!cfg.IsProduction(), log.Named("http"))
	return &Server{
		cfg:     cfg,
		store:   store,
		objects: objects,
		log:     log,
		metrics: NewMetrics("hamutea"),
		rs:      rs,
		gate:    auth.NewGate(authConfig(cfg), rs, log.Named("auth")),
	}
}

func authConfig(cfg *config.Config) auth.Config {
	return auth.Config{JWTSecret: cfg.Auth.JWTSecret, TokenTTL: cfg.Auth.TokenTTL}
}

// Metrics 返回指标实例
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Router 返回装配好中间件的根 Handler
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.Root)
	mux.HandleFunc("GET /health", s.Health)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /uploads/{key...}", s.ServeUpload)

	auth.NewHandler(s.store, authConfig(s.cfg), s.gate, s.rs, s.log).RegisterRoutes(mux)
	user.NewHandler(s.store, s.gate, s.rs, s.log).RegisterRoutes(mux)
	product.NewHandler(s.store, s.gate, s.rs, s.log).RegisterRoutes(mux)
	order.NewHandler(s.store, s.gate, s.rs, s.log).RegisterRoutes(mux)
	upload.NewHandler(s.objects, s.cfg.Upload.MaxBytes, s.gate, s.rs, s.log).RegisterRoutes(mux)

	return chain(mux,
		recoverer(s.rs, s.metrics, s.log.Named("recover")),
		securityHeaders(s.cfg.IsProduction()),
		requestID,
		accessLog(s.log.Named("access")),
		s.metrics.Middleware,
		cors(!s.cfg.IsProduction(), s.cfg.Server.CORSOrigins),
	)
}

// Root 欢迎信息
// GET /
func (s *Server) Root(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": WelcomeMessage})
}

// Health 健康检查，数据库不可达时返回 503
// GET /health
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.log.WithContext(r.Context()).WithError(err).Warn("health check failed")
		httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unavailable",
			"database": "unreachable",
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}

// ServeUpload 读取已上传文件
// GET /uploads/{key...}
func (s *Server) ServeUpload(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	rc, info, err := s.objects.Open(r.Context(), key)
	if errors.Is(err, objstore.ErrNotFound) || errors.Is(err, objstore.ErrInvalidKey) {
		s.rs.Error(w, r, httpx.NotFound("File not found"))
		return
	}
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	defer rc.Close()

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	if rsk, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, key, info.ModTime, rsk)
		return
	}
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		s.log.WithContext(r.Context()).WithError(err).Warn("upload stream interrupted", "key", key)
	}
}
