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

// InteractionRepository 维护 feed.video_interactions 表（交互台账，近似追加式）。
type InteractionRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewInteractionRepository 构造仓储。
func NewInteractionRepository(db *pgxpool.Pool, logger log.Logger) *InteractionRepository {
	return &InteractionRepository{
		db:  db,
		log: log.NewHelper(logger),
	}
}

const interactionColumns = `interaction_id, user_id, video_id, interaction_type,
	interaction_strength, view_duration, watch_percentage, created_at, updated_at`

// Insert 追加一条交互事件。类型未定义或权重非正的记录在写入前拒绝，
// 保证兴趣聚合的分母恒为正。
func (r *InteractionRepository) Insert(ctx context.Context, sess txmanager.Session, it *po.Interaction) (*po.Interaction, error) {
	if !it.InteractionType.Valid() {
		return nil, fmt.Errorf("insert interaction: unknown type %q", it.InteractionType)
	}
	if it.InteractionStrength <= 0 {
		return nil, fmt.Errorf("insert interaction: strength must be positive, got %d", it.InteractionStrength)
	}
	q := pick(r.db, sess)
	row := q.QueryRow(ctx, `
		INSERT INTO feed.video_interactions
			(interaction_id, user_id, video_id, interaction_type, interaction_strength, view_duration, watch_percentage)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+interactionColumns,
		it.InteractionID, it.UserID, it.VideoID, it.InteractionType,
		it.InteractionStrength, it.ViewDuration, it.WatchPercentage,
	)
	created, err := mappers.InteractionFromRow(row)
	if err != nil {
		return nil, fmt.Errorf("insert interaction: %w", err)
	}
	return created, nil
}

// Find 查询 (user, video, type) 的现存记录。
// view / like / bookmark 在该三元组下至多一行；不存在时返回 ErrInteractionNotFound。
func (r *InteractionRepository) Find(ctx context.Context, sess txmanager.Session, userID string, videoID uuid.UUID, typ po.InteractionType) (*po.Interaction, error) {
	q := pick(r.db, sess)
	row := q.QueryRow(ctx, `
		SELECT `+interactionColumns+`
		FROM feed.video_interactions
		WHERE user_id = $1 AND video_id = $2 AND interaction_type = $3
		ORDER BY created_at DESC
		LIMIT 1`,
		userID, videoID, typ,
	)
	it, err := mappers.InteractionFromRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInteractionNotFound
		}
		return nil, fmt.Errorf("find interaction: %w", err)
	}
	return it, nil
}

// Delete 按主键删除（仅开关型交互取消时使用）。
func (r *InteractionRepository) Delete(ctx context.Context, sess txmanager.Session, interactionID uuid.UUID) error {
	q := pick(r.db, sess)
	tag, err := q.Exec(ctx, `DELETE FROM feed.video_interactions WHERE interaction_id = $1`, interactionID)
	if err != nil {
		return fmt.Errorf("delete interaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInteractionNotFound
	}
	return nil
}

// UpdateViewProgress 刷新既有观看记录的时长与完播比；为 nil 的字段保持原值。
func (r *InteractionRepository) UpdateViewProgress(ctx context.Context, sess txmanager.Session, userID string, videoID uuid.UUID, duration, percentage *int64) (*po.Interaction, error) {
	q := pick(r.db, sess)
	row := q.QueryRow(ctx, `
		UPDATE feed.video_interactions
		SET view_duration    = COALESCE($3, view_duration),
			watch_percentage = COALESCE($4, watch_percentage),
			updated_at       = now()
		WHERE user_id = $1 AND video_id = $2 AND interaction_type = 'view'
		RETURNING `+interactionColumns,
		userID, videoID, duration, percentage,
	)
	it, err := mappers.InteractionFromRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInteractionNotFound
		}
		return nil, fmt.Errorf("update view progress: %w", err)
	}
	return it, nil
}

// ListByUserAndVideo 列出用户与单个视频的全部交互，时间倒序。
func (r *InteractionRepository) ListByUserAndVideo(ctx context.Context, sess txmanager.Session, userID string, videoID uuid.UUID) ([]*po.Interaction, error) {
	q := pick(r.db, sess)
	rows, err := q.Query(ctx, `
		SELECT `+interactionColumns+`
		FROM feed.video_interactions
		WHERE user_id = $1 AND video_id = $2
		ORDER BY created_at DESC`,
		userID, videoID,
	)
	if err != nil {
		return nil, fmt.Errorf("list interactions by user and video: %w", err)
	}
	return mappers.InteractionsFromRows(rows)
}

// ListWatchedVideoIDs 返回用户产生过观看记录的视频集合，用于信息流排除已看。
func (r *InteractionRepository) ListWatchedVideoIDs(ctx context.Context, sess txmanager.Session, userID string) ([]uuid.UUID, error) {
	q := pick(r.db, sess)
	rows, err := q.Query(ctx, `
		SELECT DISTINCT video_id
		FROM feed.video_interactions
		WHERE user_id = $1 AND interaction_type = 'view'`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list watched video ids: %w", err)
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list watched video ids: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list watched video ids: %w", err)
	}
	return ids, nil
}

// InterestSignal 表示一条参与兴趣聚合的信号：交互权重与对应视频向量。
type InterestSignal struct {
	Strength  int64
	Embedding []float32
}

// ListInterestSignals 联表返回用户全部交互的权重及视频向量，
// 只保留已有向量的视频。
func (r *InteractionRepository) ListInterestSignals(ctx context.Context, sess txmanager.Session, userID string) ([]InterestSignal, error) {
	q := pick(r.db, sess)
	rows, err := q.Query(ctx, `
		SELECT i.interaction_strength, v.embedding
		FROM feed.video_interactions i
		JOIN feed.videos v ON v.video_id = i.video_id
		WHERE i.user_id = $1 AND v.embedding IS NOT NULL`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list interest signals: %w", err)
	}
	defer rows.Close()
	var signals []InterestSignal
	for rows.Next() {
		var sig InterestSignal
		if err := rows.Scan(&sig.Strength, &sig.Embedding); err != nil {
			return nil, fmt.Errorf("list interest signals: %w", err)
		}
		signals = append(signals, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list interest signals: %w", err)
	}
	return signals, nil
}

// DeleteByVideo 删除某个视频的全部交互（视频级联删除的一部分）。
func (r *InteractionRepository) DeleteByVideo(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (int64, error) {
	q := pick(r.db, sess)
	tag, err := q.Exec(ctx, `DELETE FROM feed.video_interactions WHERE video_id = $1`, videoID)
	if err != nil {
		return 0, fmt.Errorf("delete interactions by video: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ interface {
	Insert(context.Context, txmanager.Session, *po.Interaction) (*po.Interaction, error)
	Find(context.Context, txmanager.Session, string, uuid.UUID, po.InteractionType) (*po.Interaction, error)
	Delete(context.Context, txmanager.Session, uuid.UUID) error
	UpdateViewProgress(context.Context, txmanager.Session, string, uuid.UUID, *int64, *int64) (*po.Interaction, error)
	ListByUserAndVideo(context.Context, txmanager.Session, string, uuid.UUID) ([]*po.Interaction, error)
	ListWatchedVideoIDs(context.Context, txmanager.Session, string) ([]uuid.UUID, error)
	ListInterestSignals(context.Context, txmanager.Session, string) ([]InterestSignal, error)
	DeleteByVideo(context.Context, txmanager.Session, uuid.UUID) (int64, error)
} = (*InteractionRepository)(nil)
