package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux
type Router struct {
	mux    *http.ServeMux
	base   string
	logger *zap.Logger
}

// NewRouter basePath 如 "/api"，为空时挂在根路径
func NewRouter(basePath string, logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		base:   strings.TrimSuffix(basePath, "/"),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleAPI 注册在 base path 下的路由
func (r *Router) HandleAPI(path string, h http.HandlerFunc) {
	r.mux.HandleFunc(r.base+path, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterHealthRoutes GET /health（不带 base path，供探活使用）
func (r *Router) RegisterHealthRoutes() {
	r.Handle("/health", allow(http.MethodGet, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}))
}

// RegisterChatRoutes POST /ai/chat
func (r *Router) RegisterChatRoutes(h *ChatHandler) {
	r.HandleAPI("/ai/chat", allow(http.MethodPost, h.Chat))
}

// RegisterAlertRoutes POST /telegram/alert
func (r *Router) RegisterAlertRoutes(h *AlertHandler) {
	r.HandleAPI("/telegram/alert", allow(http.MethodPost, h.SendAlert))
}

// RegisterReportRoutes 日报提交、查询和导出
func (r *Router) RegisterReportRoutes(h *ReportHandler) {
	r.HandleAPI("/eldercare/send-report", allow(http.MethodPost, h.SendReport))
	r.HandleAPI("/eldercare/reports", allow(http.MethodGet, h.ListReports))
	r.HandleAPI("/eldercare/reports/export", allow(http.MethodGet, h.ExportReports))
}

// RegisterHealthCheckRoutes 每日健康检查会话
func (r *Router) RegisterHealthCheckRoutes(h *HealthCheckHandler) {
	r.HandleAPI("/healthcheck/start", allow(http.MethodPost, h.Start))
	r.HandleAPI("/healthcheck/message", allow(http.MethodPost, h.Message))

	prefix := r.base + "/healthcheck/sessions/"
	r.Handle(prefix, allow(http.MethodGet, func(w http.ResponseWriter, req *http.Request) {
		id := strings.TrimPrefix(req.URL.Path, prefix)
		if id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.GetSession(w, req, id)
	}))
}
