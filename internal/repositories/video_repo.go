package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/bionicotaku/lingo-services-feed/internal/models/po"
	"github.com/bionicotaku/lingo-services-feed/internal/repositories/mappers"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VideoRepository 维护 feed.videos 表。
type VideoRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewVideoRepository 构造仓储。
func NewVideoRepository(db *pgxpool.Pool, logger log.Logger) *VideoRepository {
	return &VideoRepository{
		db:  db,
		log: log.NewHelper(logger),
	}
}

const videoColumns = `video_id, user_id, video_url, caption, video_size, video_length,
	transcription, summary, tags, metadata, embedding, created_at, updated_at`

// Create 插入一条视频记录并返回落库结果。
func (r *VideoRepository) Create(ctx context.Context, sess txmanager.Session, video *po.Video) (*po.Video, error) {
	q := pick(r.db, sess)
	row := q.QueryRow(ctx, `
		INSERT INTO feed.videos (video_id, user_id, video_url, caption, video_size, video_length, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+videoColumns,
		video.VideoID, video.UserID, video.VideoURL, video.Caption,
		video.VideoSize, video.VideoLength, video.Metadata,
	)
	created, err := mappers.VideoFromRow(row)
	if err != nil {
		return nil, fmt.Errorf("insert video: %w", err)
	}
	return created, nil
}

// Enrichment 表示 AI 富化阶段补写的字段集合；为 nil 的字段保持原值。
type Enrichment struct {
	Transcription *string
	Summary       *string
	Tags          []string
	Embedding     []float32
}

// UpdateEnrichment 补写富化字段。部分字段缺失时只更新成功的部分。
func (r *VideoRepository) UpdateEnrichment(ctx context.Context, sess txmanager.Session, videoID uuid.UUID, enr Enrichment) (*po.Video, error) {
	q := pick(r.db, sess)
	row := q.QueryRow(ctx, `
		UPDATE feed.videos
		SET transcription = COALESCE($2, transcription),
			summary       = COALESCE($3, summary),
			tags          = COALESCE($4, tags),
			embedding     = COALESCE($5, embedding),
			updated_at    = now()
		WHERE video_id = $1
		RETURNING `+videoColumns,
		videoID, enr.Transcription, enr.Summary, enr.Tags, enr.Embedding,
	)
	updated, err := mappers.VideoFromRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("update video enrichment: %w", err)
	}
	return updated, nil
}

// GetByID 按主键查询。
func (r *VideoRepository) GetByID(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (*po.Video, error) {
	q := pick(r.db, sess)
	row := q.QueryRow(ctx, `SELECT `+videoColumns+` FROM feed.videos WHERE video_id = $1`, videoID)
	video, err := mappers.VideoFromRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("get video: %w", err)
	}
	return video, nil
}

// ListByUser 按上传者倒序列出视频。
func (r *VideoRepository) ListByUser(ctx context.Context, sess txmanager.Session, userID string, limit int32) ([]*po.Video, error) {
	q := pick(r.db, sess)
	rows, err := q.Query(ctx, `
		SELECT `+videoColumns+`
		FROM feed.videos
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list videos by user: %w", err)
	}
	return mappers.VideosFromRows(rows)
}

// ListRecent 按创建时间倒序列出最新视频，用于召回兜底。
func (r *VideoRepository) ListRecent(ctx context.Context, sess txmanager.Session, limit int32) ([]*po.Video, error) {
	q := pick(r.db, sess)
	rows, err := q.Query(ctx, `
		SELECT `+videoColumns+`
		FROM feed.videos
		ORDER BY created_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent videos: %w", err)
	}
	return mappers.VideosFromRows(rows)
}

// ListEmbedded 列出携带向量的候选视频，排除指定集合（通常为用户已观看列表）。
// exclude 为空时等价于全量候选。
func (r *VideoRepository) ListEmbedded(ctx context.Context, sess txmanager.Session, exclude []uuid.UUID) ([]*po.Video, error) {
	if exclude == nil {
		exclude = []uuid.UUID{} // nil 会被编码成 SQL NULL，ANY(NULL) 恒为 NULL
	}
	q := pick(r.db, sess)
	rows, err := q.Query(ctx, `
		SELECT `+videoColumns+`
		FROM feed.videos
		WHERE embedding IS NOT NULL
		  AND NOT (video_id = ANY($1))
		ORDER BY created_at DESC`,
		exclude,
	)
	if err != nil {
		return nil, fmt.Errorf("list embedded videos: %w", err)
	}
	return mappers.VideosFromRows(rows)
}

// Delete 删除视频记录，返回被删行以便上层回收对象存储。
func (r *VideoRepository) Delete(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (*po.Video, error) {
	q := pick(r.db, sess)
	row := q.QueryRow(ctx, `DELETE FROM feed.videos WHERE video_id = $1 RETURNING `+videoColumns, videoID)
	deleted, err := mappers.VideoFromRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("delete video: %w", err)
	}
	return deleted, nil
}

var _ interface {
	Create(context.Context, txmanager.Session, *po.Video) (*po.Video, error)
	UpdateEnrichment(context.Context, txmanager.Session, uuid.UUID, Enrichment) (*po.Video, error)
	GetByID(context.Context, txmanager.Session, uuid.UUID) (*po.Video, error)
	ListByUser(context.Context, txmanager.Session, string, int32) ([]*po.Video, error)
	ListRecent(context.Context, txmanager.Session, int32) ([]*po.Video, error)
	ListEmbedded(context.Context, txmanager.Session, []uuid.UUID) ([]*po.Video, error)
	Delete(context.Context, txmanager.Session, uuid.UUID) (*po.Video, error)
} = (*VideoRepository)(nil)
