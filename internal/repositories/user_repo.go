package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/bionicotaku/lingo-services-feed/internal/models/po"
	"github.com/bionicotaku/lingo-services-feed/internal/repositories/mappers"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository 维护 feed.users 表。
type UserRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewUserRepository 构造仓储。
func NewUserRepository(db *pgxpool.Pool, logger log.Logger) *UserRepository {
	return &UserRepository{
		db:  db,
		log: log.NewHelper(logger),
	}
}

const userColumns = `user_id, username, email, full_name, bio, avatar_url, embedding, created_at, updated_at`

// Upsert 写入或刷新用户画像。重复注册视为画像更新，主键不变。
func (r *UserRepository) Upsert(ctx context.Context, sess txmanager.Session, user *po.User) (*po.User, error) {
	q := pick(r.db, sess)
	row := q.QueryRow(ctx, `
		INSERT INTO feed.users (user_id, username, email, full_name, bio, avatar_url, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			username   = EXCLUDED.username,
			email      = EXCLUDED.email,
			full_name  = EXCLUDED.full_name,
			bio        = EXCLUDED.bio,
			avatar_url = EXCLUDED.avatar_url,
			embedding  = COALESCE(EXCLUDED.embedding, feed.users.embedding),
			updated_at = now()
		RETURNING `+userColumns,
		user.UserID, user.Username, user.Email, user.FullName, user.Bio, user.AvatarURL, user.Embedding,
	)
	saved, err := mappers.UserFromRow(row)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return saved, nil
}

// GetByID 按主键查询。
func (r *UserRepository) GetByID(ctx context.Context, sess txmanager.Session, userID string) (*po.User, error) {
	q := pick(r.db, sess)
	row := q.QueryRow(ctx, `SELECT `+userColumns+` FROM feed.users WHERE user_id = $1`, userID)
	user, err := mappers.UserFromRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetByIDs 批量查询，返回按 user_id 索引的映射，用于信息流作者信息拼装。
func (r *UserRepository) GetByIDs(ctx context.Context, sess txmanager.Session, userIDs []string) (map[string]*po.User, error) {
	if len(userIDs) == 0 {
		return map[string]*po.User{}, nil
	}
	q := pick(r.db, sess)
	rows, err := q.Query(ctx, `SELECT `+userColumns+` FROM feed.users WHERE user_id = ANY($1)`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("get users by ids: %w", err)
	}
	users, err := mappers.UsersFromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("get users by ids: %w", err)
	}
	indexed := make(map[string]*po.User, len(users))
	for _, u := range users {
		indexed[u.UserID] = u
	}
	return indexed, nil
}

var _ interface {
	Upsert(context.Context, txmanager.Session, *po.User) (*po.User, error)
	GetByID(context.Context, txmanager.Session, string) (*po.User, error)
	GetByIDs(context.Context, txmanager.Session, []string) (map[string]*po.User, error)
} = (*UserRepository)(nil)
