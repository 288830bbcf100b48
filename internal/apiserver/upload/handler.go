// Package upload 商品图片上传
package upload

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"hamutea-admin/internal/apiserver/auth"
	"hamutea-admin/internal/apiserver/httpx"
	"hamutea-admin/internal/shared/objstore"
	"hamutea-admin/pkg/logging"

	"github.com/google/uuid"
)

// DefaultMaxBytes 默认请求体上限 5 MiB
const DefaultMaxBytes int64 = 5 << 20

// formField multipart 中的文件字段名
const formField = "image"

// URLPrefix 上传文件对外访问前缀
const URLPrefix = "/uploads/"

var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Handler 上传处理器
type Handler struct {
	objects  objstore.Store
	maxBytes int64
	gate     *auth.Gate
	rs       *httpx.Responder
	log      *logging.Logger
}

// NewHandler 创建上传处理器，maxBytes <= 0 时使用 DefaultMaxBytes
func NewHandler(objects objstore.Store, maxBytes int64, gate *auth.Gate, rs *httpx.Responder, log *logging.Logger) *Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Handler{objects: objects, maxBytes: maxBytes, gate: gate, rs: rs, log: log.Named("upload")}
}

// RegisterRoutes 注册上传路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/upload/product-image", h.gate.RequireAdmin(h.ProductImage))
}

type uploadResult struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
}

// ProductImage 上传商品图片
// POST /api/upload/product-image (multipart, 字段 image)
func (h *Handler) ProductImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.rs.Error(w, r, httpx.Validation("File too large (max %d bytes)", h.maxBytes))
			return
		}
		h.rs.Error(w, r, httpx.Validation("No file uploaded"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(formField)
	if err != nil {
		h.rs.Error(w, r, httpx.Validation("No file uploaded"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExts[ext] {
		h.rs.Error(w, r, httpx.Validation("Only image files are allowed (jpg, jpeg, png, gif, webp)"))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mime.TypeByExtension(ext)
	}

	filename := uuid.NewString() + ext
	key := "products/" + filename
	if err := h.objects.Put(r.Context(), key, file, header.Size, contentType); err != nil {
		h.rs.Error(w, r, &httpx.Error{Kind: httpx.KindInternal, Message: "Error uploading file", Err: err})
		return
	}

	h.log.WithContext(r.Context()).Info("product image uploaded", "key", key, "size", header.Size)
	httpx.Message(w, http.StatusOK, "File uploaded successfully", uploadResult{
		Filename: filename,
		Path:     URLPrefix + key,
		Size:     header.Size,
	})
}
