package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"seniorsync/internal/config"

	"go.uber.org/zap"
)

// Server seniorsync HTTP 服务
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

func NewServer(cfg config.HTTPConfig, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}
}

// Start 阻塞直到服务停止；Stop 触发的正常关闭返回 nil
func (s *Server) Start() error {
	s.logger.Info("Starting seniorsync HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 在 shutdownTimeout 内等待进行中的请求（包括健康检查的收尾）完成
func (s *Server) Stop(ctx context.Context) error {
	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}
	s.logger.Info("Stopping seniorsync HTTP server")
	return s.httpServer.Shutdown(ctx)
}
