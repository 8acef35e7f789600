package server

import (
	"time"

	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/clawcast/internal/config"
	"github.com/iWorld-y/clawcast/internal/service"
)

// NewHTTPServer 创建 HTTP 服务并注册路由
func NewHTTPServer(c *config.ServerConfig, s *service.AnalysisService) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.Addr != "" {
		opts = append(opts, http.Address(c.Addr))
	}
	if c.Timeout != "" {
		if d, err := time.ParseDuration(c.Timeout); err == nil {
			opts = append(opts, http.Timeout(d))
		}
	}

	srv := http.NewServer(opts...)
	srv.HandleFunc("/api/v1/analyze", s.HandleAnalyze)

	return srv
}
