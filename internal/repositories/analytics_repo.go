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

// AnalyticsRepository 维护 feed.video_analytics 表（每视频一行的聚合计数）。
type AnalyticsRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewAnalyticsRepository 构造仓储。
func NewAnalyticsRepository(db *pgxpool.Pool, logger log.Logger) *AnalyticsRepository {
	return &AnalyticsRepository{
		db:  db,
		log: log.NewHelper(logger),
	}
}

// StatsDelta 表示需要应用的计数增量，可为负（取消点赞 / 收藏）。
type StatsDelta struct {
	ViewDelta     int64
	LikeDelta     int64
	CommentDelta  int64
	ShareDelta    int64
	BookmarkDelta int64
}

const analyticsColumns = `video_id, total_views, total_likes, total_comments, total_shares, total_bookmarks, updated_at`

// Increment 应用计数增量并返回最新聚合行。行不存在时先以零值创建。
// GREATEST 防止并发取消把计数推成负数。
func (r *AnalyticsRepository) Increment(ctx context.Context, sess txmanager.Session, videoID uuid.UUID, delta StatsDelta) (*po.VideoAnalytics, error) {
	q := pick(r.db, sess)
	row := q.QueryRow(ctx, `
		INSERT INTO feed.video_analytics
			(video_id, total_views, total_likes, total_comments, total_shares, total_bookmarks)
		VALUES ($1, GREATEST($2, 0), GREATEST($3, 0), GREATEST($4, 0), GREATEST($5, 0), GREATEST($6, 0))
		ON CONFLICT (video_id) DO UPDATE SET
			total_views     = GREATEST(feed.video_analytics.total_views + $2, 0),
			total_likes     = GREATEST(feed.video_analytics.total_likes + $3, 0),
			total_comments  = GREATEST(feed.video_analytics.total_comments + $4, 0),
			total_shares    = GREATEST(feed.video_analytics.total_shares + $5, 0),
			total_bookmarks = GREATEST(feed.video_analytics.total_bookmarks + $6, 0),
			updated_at      = now()
		RETURNING `+analyticsColumns,
		videoID, delta.ViewDelta, delta.LikeDelta, delta.CommentDelta, delta.ShareDelta, delta.BookmarkDelta,
	)
	stats, err := mappers.AnalyticsFromRow(row)
	if err != nil {
		return nil, fmt.Errorf("increment video analytics: %w", err)
	}
	return stats, nil
}

// Get 返回指定视频的当前计数；无行时返回全零视图。
func (r *AnalyticsRepository) Get(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (*po.VideoAnalytics, error) {
	q := pick(r.db, sess)
	row := q.QueryRow(ctx, `SELECT `+analyticsColumns+` FROM feed.video_analytics WHERE video_id = $1`, videoID)
	stats, err := mappers.AnalyticsFromRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &po.VideoAnalytics{VideoID: videoID}, nil
		}
		return nil, fmt.Errorf("get video analytics: %w", err)
	}
	return stats, nil
}

// DeleteByVideo 删除聚合行（视频级联删除的一部分）。
func (r *AnalyticsRepository) DeleteByVideo(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) error {
	q := pick(r.db, sess)
	if _, err := q.Exec(ctx, `DELETE FROM feed.video_analytics WHERE video_id = $1`, videoID); err != nil {
		return fmt.Errorf("delete video analytics: %w", err)
	}
	return nil
}

var _ interface {
	Increment(context.Context, txmanager.Session, uuid.UUID, StatsDelta) (*po.VideoAnalytics, error)
	Get(context.Context, txmanager.Session, uuid.UUID) (*po.VideoAnalytics, error)
	DeleteByVideo(context.Context, txmanager.Session, uuid.UUID) error
} = (*AnalyticsRepository)(nil)
