package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/bionicotaku/lingo-services-feed/internal/conf"
	"github.com/bionicotaku/lingo-services-feed/internal/models/po"
	"github.com/bionicotaku/lingo-services-feed/internal/models/vo"
	"github.com/bionicotaku/lingo-services-feed/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// InteractionLedger 定义交互台账需要的持久化行为。
type InteractionLedger interface {
	Insert(ctx context.Context, sess txmanager.Session, it *po.Interaction) (*po.Interaction, error)
	Find(ctx context.Context, sess txmanager.Session, userID string, videoID uuid.UUID, typ po.InteractionType) (*po.Interaction, error)
	Delete(ctx context.Context, sess txmanager.Session, interactionID uuid.UUID) error
	UpdateViewProgress(ctx context.Context, sess txmanager.Session, userID string, videoID uuid.UUID, duration, percentage *int64) (*po.Interaction, error)
	ListByUserAndVideo(ctx context.Context, sess txmanager.Session, userID string, videoID uuid.UUID) ([]*po.Interaction, error)
}

// AnalyticsCounter 定义聚合计数的持久化行为。
type AnalyticsCounter interface {
	Increment(ctx context.Context, sess txmanager.Session, videoID uuid.UUID, delta repositories.StatsDelta) (*po.VideoAnalytics, error)
	Get(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (*po.VideoAnalytics, error)
}

// CommentWriter 定义评论的持久化行为。
type CommentWriter interface {
	Insert(ctx context.Context, sess txmanager.Session, c *po.Comment) (*po.Comment, error)
	ListByVideo(ctx context.Context, sess txmanager.Session, videoID uuid.UUID, limit int32) ([]*po.Comment, error)
}

// VideoLookup 定义交互前的视频存在性校验。
type VideoLookup interface {
	GetByID(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (*po.Video, error)
}

// InteractionService 封装交互写入用例：观看、点赞、收藏、分享、评论。
// 台账写入与聚合计数增减在同一事务内完成。
type InteractionService struct {
	ledger    InteractionLedger
	counter   AnalyticsCounter
	comments  CommentWriter
	videos    VideoLookup
	txManager txmanager.Manager
	strengths *conf.Strengths
	log       *log.Helper
}

// NewInteractionService 构造交互服务。
func NewInteractionService(
	ledger InteractionLedger,
	counter AnalyticsCounter,
	comments CommentWriter,
	videos VideoLookup,
	tx txmanager.Manager,
	rec *conf.Recommend,
	logger log.Logger,
) *InteractionService {
	strengths := rec.Strengths
	if strengths == nil {
		strengths = conf.DefaultStrengths()
	}
	return &InteractionService{
		ledger:    ledger,
		counter:   counter,
		comments:  comments,
		videos:    videos,
		txManager: tx,
		strengths: strengths,
		log:       log.NewHelper(logger),
	}
}

// ViewProgress 表示一次观看上报携带的进度信息。
type ViewProgress struct {
	Duration        *int64
	WatchPercentage *int64
}

// RecordView 记录一次观看。(user, video) 已有观看记录时为幂等空操作，
// 不累加计数也不报错。匿名请求同样返回中性结果而非报错：
// 观看上报是旁路信号，缺少身份时静默降级。
func (s *InteractionService) RecordView(ctx context.Context, userID string, videoID uuid.UUID, progress ViewProgress) (*vo.ViewResult, error) {
	if userID == "" {
		s.log.WithContext(ctx).Debugf("anonymous view skipped: video_id=%s", videoID)
		return &vo.ViewResult{Recorded: false}, nil
	}
	if err := s.requireVideo(ctx, videoID); err != nil {
		return nil, err
	}
	if err := validateProgress(progress); err != nil {
		return nil, err
	}

	recorded := false
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		_, findErr := s.ledger.Find(txCtx, sess, userID, videoID, po.InteractionView)
		if findErr == nil {
			return nil // 已看过，幂等返回
		}
		if !errors.Is(findErr, repositories.ErrInteractionNotFound) {
			return findErr
		}

		if _, insErr := s.ledger.Insert(txCtx, sess, &po.Interaction{
			InteractionID:       uuid.New(),
			UserID:              userID,
			VideoID:             videoID,
			InteractionType:     po.InteractionView,
			InteractionStrength: s.strengths.View,
			ViewDuration:        progress.Duration,
			WatchPercentage:     progress.WatchPercentage,
		}); insErr != nil {
			return insErr
		}
		if _, incErr := s.counter.Increment(txCtx, sess, videoID, repositories.StatsDelta{ViewDelta: 1}); incErr != nil {
			return incErr
		}
		recorded = true
		return nil
	})
	if err != nil {
		return nil, s.persistenceError(ctx, "record view", videoID, err)
	}
	return &vo.ViewResult{Recorded: recorded}, nil
}

// UpdateViewProgress 刷新既有观看记录的时长与完播比。
// 观看记录不存在时返回 VIEW_NOT_FOUND：进度刷新不会隐式创建观看。
func (s *InteractionService) UpdateViewProgress(ctx context.Context, userID string, videoID uuid.UUID, progress ViewProgress) (*vo.ViewResult, error) {
	if err := validateProgress(progress); err != nil {
		return nil, err
	}
	if progress.Duration == nil && progress.WatchPercentage == nil {
		return nil, errors.BadRequest(ReasonValidationFailed, "no progress fields to update")
	}

	_, err := s.ledger.UpdateViewProgress(ctx, nil, userID, videoID, progress.Duration, progress.WatchPercentage)
	if err != nil {
		if errors.Is(err, repositories.ErrInteractionNotFound) {
			return nil, errors.NotFound(ReasonViewNotFound, "view record not found")
		}
		return nil, s.persistenceError(ctx, "update view progress", videoID, err)
	}
	return &vo.ViewResult{Recorded: false}, nil
}

// ToggleLike 切换点赞状态：无记录则写入，有记录则删除，计数同事务增减。
func (s *InteractionService) ToggleLike(ctx context.Context, userID string, videoID uuid.UUID) (*vo.LikeResult, error) {
	if err := s.requireVideo(ctx, videoID); err != nil {
		return nil, err
	}
	liked, stats, err := s.toggle(ctx, userID, videoID, po.InteractionLike, s.strengths.Like)
	if err != nil {
		return nil, err
	}
	return &vo.LikeResult{Liked: liked, TotalLikes: stats.TotalLikes}, nil
}

// ToggleBookmark 切换收藏状态，语义与点赞对称。
func (s *InteractionService) ToggleBookmark(ctx context.Context, userID string, videoID uuid.UUID) (*vo.BookmarkResult, error) {
	if err := s.requireVideo(ctx, videoID); err != nil {
		return nil, err
	}
	bookmarked, stats, err := s.toggle(ctx, userID, videoID, po.InteractionBookmark, s.strengths.Bookmark)
	if err != nil {
		return nil, err
	}
	return &vo.BookmarkResult{Bookmarked: bookmarked, TotalBookmarks: stats.TotalBookmarks}, nil
}

// toggle 实现开关型交互的公共路径。返回切换后的开关状态与最新计数。
func (s *InteractionService) toggle(ctx context.Context, userID string, videoID uuid.UUID, typ po.InteractionType, strength int64) (bool, *po.VideoAnalytics, error) {
	var (
		active bool
		stats  *po.VideoAnalytics
	)
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		existing, findErr := s.ledger.Find(txCtx, sess, userID, videoID, typ)
		switch {
		case findErr == nil:
			if delErr := s.ledger.Delete(txCtx, sess, existing.InteractionID); delErr != nil {
				return delErr
			}
			active = false
		case errors.Is(findErr, repositories.ErrInteractionNotFound):
			if _, insErr := s.ledger.Insert(txCtx, sess, &po.Interaction{
				InteractionID:       uuid.New(),
				UserID:              userID,
				VideoID:             videoID,
				InteractionType:     typ,
				InteractionStrength: strength,
			}); insErr != nil {
				return insErr
			}
			active = true
		default:
			return findErr
		}

		delta := int64(-1)
		if active {
			delta = 1
		}
		var statsDelta repositories.StatsDelta
		if typ == po.InteractionLike {
			statsDelta.LikeDelta = delta
		} else {
			statsDelta.BookmarkDelta = delta
		}
		updated, incErr := s.counter.Increment(txCtx, sess, videoID, statsDelta)
		if incErr != nil {
			return incErr
		}
		stats = updated
		return nil
	})
	if err != nil {
		return false, nil, s.persistenceError(ctx, fmt.Sprintf("toggle %s", typ), videoID, err)
	}
	return active, stats, nil
}

// RecordShare 记录一次分享。分享可重复，每次都追加台账并累加计数。
func (s *InteractionService) RecordShare(ctx context.Context, userID string, videoID uuid.UUID) (*vo.ShareResult, error) {
	if err := s.requireVideo(ctx, videoID); err != nil {
		return nil, err
	}

	var stats *po.VideoAnalytics
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		if _, insErr := s.ledger.Insert(txCtx, sess, &po.Interaction{
			InteractionID:       uuid.New(),
			UserID:              userID,
			VideoID:             videoID,
			InteractionType:     po.InteractionShare,
			InteractionStrength: s.strengths.Share,
		}); insErr != nil {
			return insErr
		}
		updated, incErr := s.counter.Increment(txCtx, sess, videoID, repositories.StatsDelta{ShareDelta: 1})
		if incErr != nil {
			return incErr
		}
		stats = updated
		return nil
	})
	if err != nil {
		return nil, s.persistenceError(ctx, "record share", videoID, err)
	}
	return &vo.ShareResult{TotalShares: stats.TotalShares}, nil
}

// AddComment 写入评论：评论行、comment 类型台账、计数累加三者同事务。
// 空白内容直接拒绝，不产生任何写入。
func (s *InteractionService) AddComment(ctx context.Context, userID string, videoID uuid.UUID, content string) (*vo.CommentCreated, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.BadRequest(ReasonValidationFailed, "comment content must not be empty")
	}
	if err := s.requireVideo(ctx, videoID); err != nil {
		return nil, err
	}

	var created *po.Comment
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		comment, insErr := s.comments.Insert(txCtx, sess, &po.Comment{
			CommentID: uuid.New(),
			UserID:    userID,
			VideoID:   videoID,
			Content:   content,
		})
		if insErr != nil {
			return insErr
		}
		if _, ledgerErr := s.ledger.Insert(txCtx, sess, &po.Interaction{
			InteractionID:       uuid.New(),
			UserID:              userID,
			VideoID:             videoID,
			InteractionType:     po.InteractionComment,
			InteractionStrength: s.strengths.Comment,
		}); ledgerErr != nil {
			return ledgerErr
		}
		if _, incErr := s.counter.Increment(txCtx, sess, videoID, repositories.StatsDelta{CommentDelta: 1}); incErr != nil {
			return incErr
		}
		created = comment
		return nil
	})
	if err != nil {
		return nil, s.persistenceError(ctx, "add comment", videoID, err)
	}
	return &vo.CommentCreated{CommentID: created.CommentID, CreatedAt: created.CreatedAt}, nil
}

// ListComments 按时间倒序返回视频评论。
func (s *InteractionService) ListComments(ctx context.Context, videoID uuid.UUID, limit int32) ([]*po.Comment, error) {
	if err := s.requireVideo(ctx, videoID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByVideo(ctx, nil, videoID, limit)
	if err != nil {
		return nil, s.persistenceError(ctx, "list comments", videoID, err)
	}
	return comments, nil
}

// GetVideoAnalytics 返回视频的聚合计数。
func (s *InteractionService) GetVideoAnalytics(ctx context.Context, videoID uuid.UUID) (*vo.AnalyticsView, error) {
	if err := s.requireVideo(ctx, videoID); err != nil {
		return nil, err
	}
	stats, err := s.counter.Get(ctx, nil, videoID)
	if err != nil {
		return nil, s.persistenceError(ctx, "get analytics", videoID, err)
	}
	return vo.NewAnalyticsView(stats), nil
}

// GetUserVideoInteractions 返回用户与单个视频的全部交互记录。
func (s *InteractionService) GetUserVideoInteractions(ctx context.Context, userID string, videoID uuid.UUID) ([]*vo.InteractionView, error) {
	if err := s.requireVideo(ctx, videoID); err != nil {
		return nil, err
	}
	items, err := s.ledger.ListByUserAndVideo(ctx, nil, userID, videoID)
	if err != nil {
		return nil, s.persistenceError(ctx, "list interactions", videoID, err)
	}
	return vo.NewInteractionViews(items), nil
}

// requireVideo 校验视频存在，不存在时返回 VIDEO_NOT_FOUND。
func (s *InteractionService) requireVideo(ctx context.Context, videoID uuid.UUID) error {
	if _, err := s.videos.GetByID(ctx, nil, videoID); err != nil {
		if errors.Is(err, repositories.ErrVideoNotFound) {
			return errors.NotFound(ReasonVideoNotFound, "video not found")
		}
		return s.persistenceError(ctx, "lookup video", videoID, err)
	}
	return nil
}

// persistenceError 把底层错误映射为对外错误：超时与内部错误分开。
func (s *InteractionService) persistenceError(ctx context.Context, op string, videoID uuid.UUID, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		s.log.WithContext(ctx).Warnf("%s timeout: video_id=%s", op, videoID)
		return errors.GatewayTimeout(ReasonQueryTimeout, op+" timeout")
	}
	s.log.WithContext(ctx).Errorf("%s failed: video_id=%s err=%v", op, videoID, err)
	return errors.InternalServer(ReasonPersistenceFailed, "failed to "+op).WithCause(fmt.Errorf("%s: %w", op, err))
}

func validateProgress(p ViewProgress) error {
	if p.Duration != nil && *p.Duration < 0 {
		return errors.BadRequest(ReasonValidationFailed, "view duration must be non-negative")
	}
	if p.WatchPercentage != nil && (*p.WatchPercentage < 0 || *p.WatchPercentage > 100) {
		return errors.BadRequest(ReasonValidationFailed, "watch percentage must be within [0, 100]")
	}
	return nil
}
