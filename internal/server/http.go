// Package server 负责组装对外 HTTP 服务。
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bionicotaku/lingo-services-feed/internal/conf"
	"github.com/bionicotaku/lingo-services-feed/internal/controllers"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/wire"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProviderSet 暴露传输层构造器供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(NewHTTPServer)

// NewHTTPServer 构造 HTTP 服务并挂载全部路由。
func NewHTTPServer(
	c *conf.Server,
	pool *pgxpool.Pool,
	userH *controllers.UserHandler,
	videoH *controllers.VideoHandler,
	feedH *controllers.FeedHandler,
	interactionH *controllers.InteractionHandler,
	logger log.Logger,
) *khttp.Server {
	opts := []khttp.ServerOption{
		khttp.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
		),
	}
	if c != nil && c.HTTP != nil {
		if c.HTTP.Network != "" {
			opts = append(opts, khttp.Network(c.HTTP.Network))
		}
		if c.HTTP.Addr != "" {
			opts = append(opts, khttp.Address(c.HTTP.Addr))
		}
		if d := c.HTTP.Timeout.AsDuration(); d > 0 {
			opts = append(opts, khttp.Timeout(d))
		}
	}
	srv := khttp.NewServer(opts...)

	srv.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	// readyz 额外验证数据库可达。
	srv.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r := srv.Route("/v1")
	userH.Register(r)
	videoH.Register(r)
	feedH.Register(r)
	interactionH.Register(r)

	return srv
}
