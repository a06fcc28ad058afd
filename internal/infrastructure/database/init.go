package database

import (
	"fmt"

	"github.com/bionicotaku/lingo-services-feed/internal/conf"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProviderSet 暴露数据库基础设施构造器供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(
	NewPgxPool,
	NewTxManager,
)

// NewTxManager 基于连接池构造事务管理器。
func NewTxManager(pool *pgxpool.Pool, c *conf.Data, logger log.Logger) (txmanager.Manager, error) {
	cfg := txmanager.Config{
		DefaultIsolation: "read_committed",
	}
	if c != nil && c.Postgres != nil {
		if d := c.Postgres.TxDefaultTimeout.AsDuration(); d > 0 {
			cfg.DefaultTimeout = d
		}
	}
	mgr, err := txmanager.NewManager(pool, cfg, txmanager.Dependencies{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("init tx manager: %w", err)
	}
	return mgr, nil
}
