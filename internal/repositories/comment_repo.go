package repositories

import (
	"context"
	"fmt"

	"github.com/bionicotaku/lingo-services-feed/internal/models/po"
	"github.com/bionicotaku/lingo-services-feed/internal/repositories/mappers"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CommentRepository 维护 feed.comments 表。
type CommentRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewCommentRepository 构造仓储。
func NewCommentRepository(db *pgxpool.Pool, logger log.Logger) *CommentRepository {
	return &CommentRepository{
		db:  db,
		log: log.NewHelper(logger),
	}
}

const commentColumns = `comment_id, user_id, video_id, content, total_likes, created_at`

// Insert 写入一条评论。
func (r *CommentRepository) Insert(ctx context.Context, sess txmanager.Session, c *po.Comment) (*po.Comment, error) {
	q := pick(r.db, sess)
	row := q.QueryRow(ctx, `
		INSERT INTO feed.comments (comment_id, user_id, video_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING `+commentColumns,
		c.CommentID, c.UserID, c.VideoID, c.Content,
	)
	created, err := mappers.CommentFromRow(row)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return created, nil
}

// ListByVideo 按时间倒序列出视频评论。
func (r *CommentRepository) ListByVideo(ctx context.Context, sess txmanager.Session, videoID uuid.UUID, limit int32) ([]*po.Comment, error) {
	q := pick(r.db, sess)
	rows, err := q.Query(ctx, `
		SELECT `+commentColumns+`
		FROM feed.comments
		WHERE video_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		videoID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list comments by video: %w", err)
	}
	return mappers.CommentsFromRows(rows)
}

// DeleteByVideo 删除视频的全部评论（视频级联删除的一部分）。
func (r *CommentRepository) DeleteByVideo(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (int64, error) {
	q := pick(r.db, sess)
	tag, err := q.Exec(ctx, `DELETE FROM feed.comments WHERE video_id = $1`, videoID)
	if err != nil {
		return 0, fmt.Errorf("delete comments by video: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ interface {
	Insert(context.Context, txmanager.Session, *po.Comment) (*po.Comment, error)
	ListByVideo(context.Context, txmanager.Session, uuid.UUID, int32) ([]*po.Comment, error)
	DeleteByVideo(context.Context, txmanager.Session, uuid.UUID) (int64, error)
} = (*CommentRepository)(nil)
