// Package repositories 实现数据访问层：手写 SQL + pgx 执行。
// 所有写方法接受 txmanager.Session；为 nil 时直接走连接池。
package repositories

import (
	"context"
	"errors"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/google/wire"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProviderSet 暴露 Repository 层的构造函数供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(
	NewVideoRepository,
	NewUserRepository,
	NewInteractionRepository,
	NewAnalyticsRepository,
	NewCommentRepository,
)

// 哨兵错误：上层服务据此映射为对外错误码。
var (
	ErrVideoNotFound       = errors.New("video not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrInteractionNotFound = errors.New("interaction not found")
)

// querier 抽象连接池与事务的公共查询面。
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pick 返回当前应使用的执行器：事务内用 sess.Tx()，否则用连接池。
func pick(db *pgxpool.Pool, sess txmanager.Session) querier {
	if sess != nil {
		if tx := sess.Tx(); tx != nil {
			return tx
		}
	}
	return db
}
