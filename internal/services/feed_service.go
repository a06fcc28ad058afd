package services

import (
	"context"
	"fmt"

	"github.com/bionicotaku/lingo-services-feed/internal/conf"
	"github.com/bionicotaku/lingo-services-feed/internal/models/po"
	"github.com/bionicotaku/lingo-services-feed/internal/models/vo"
	"github.com/bionicotaku/lingo-services-feed/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// FeedCandidateSource 定义信息流候选集的读取行为。
type FeedCandidateSource interface {
	ListEmbedded(ctx context.Context, sess txmanager.Session, exclude []uuid.UUID) ([]*po.Video, error)
	ListRecent(ctx context.Context, sess txmanager.Session, limit int32) ([]*po.Video, error)
}

// FeedSignalSource 定义兴趣信号与已观看集合的读取行为。
type FeedSignalSource interface {
	ListInterestSignals(ctx context.Context, sess txmanager.Session, userID string) ([]repositories.InterestSignal, error)
	ListWatchedVideoIDs(ctx context.Context, sess txmanager.Session, userID string) ([]uuid.UUID, error)
}

// FeedProfileSource 定义作者信息与画像向量的读取行为。
type FeedProfileSource interface {
	GetByID(ctx context.Context, sess txmanager.Session, userID string) (*po.User, error)
	GetByIDs(ctx context.Context, sess txmanager.Session, userIDs []string) (map[string]*po.User, error)
}

// FeedService 组装个性化信息流。
// 兴趣来源按优先级依次退化：交互加权质心 → 注册画像向量 → 按时间倒序。
type FeedService struct {
	videos   FeedCandidateSource
	signals  FeedSignalSource
	profiles FeedProfileSource
	rec      *conf.Recommend
	log      *log.Helper
}

// NewFeedService 构造信息流服务。
func NewFeedService(
	videos FeedCandidateSource,
	signals FeedSignalSource,
	profiles FeedProfileSource,
	rec *conf.Recommend,
	logger log.Logger,
) *FeedService {
	return &FeedService{
		videos:   videos,
		signals:  signals,
		profiles: profiles,
		rec:      rec,
		log:      log.NewHelper(logger),
	}
}

// GetFeed 返回最多 limit 条信息流条目。
// userID 为空表示匿名请求，直接走按时间倒序。
func (s *FeedService) GetFeed(ctx context.Context, userID string, limit int32) ([]*vo.FeedItem, error) {
	limit = s.clampLimit(limit)

	if userID == "" {
		return s.recentFeed(ctx, limit, nil)
	}

	var (
		signals []repositories.InterestSignal
		watched []uuid.UUID
		profile *po.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		signals, err = s.signals.ListInterestSignals(gctx, nil, userID)
		return err
	})
	g.Go(func() error {
		var err error
		watched, err = s.signals.ListWatchedVideoIDs(gctx, nil, userID)
		return err
	})
	g.Go(func() error {
		u, err := s.profiles.GetByID(gctx, nil, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return nil // 未注册用户按无画像处理
			}
			return err
		}
		profile = u
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, s.feedError(ctx, userID, err)
	}

	interest := s.interestVector(ctx, userID, signals, profile)
	if interest == nil {
		return s.recentFeed(ctx, limit, watched)
	}

	candidates, err := s.videos.ListEmbedded(ctx, nil, watched)
	if err != nil {
		return nil, s.feedError(ctx, userID, err)
	}
	ranked := RankBySimilarity(interest, candidates, int(limit))

	items := make([]*vo.FeedItem, 0, limit)
	seen := make(map[uuid.UUID]struct{}, limit)
	for _, rv := range ranked {
		sim := rv.Similarity
		items = append(items, vo.NewFeedItem(rv.Video, nil, &sim))
		seen[rv.Video.VideoID] = struct{}{}
	}

	// 相似度候选不足时用最新视频补齐，跳过已看与已出现的条目。
	if len(items) < int(limit) {
		backfill, err := s.backfillRecent(ctx, limit, watched, seen)
		if err != nil {
			return nil, s.feedError(ctx, userID, err)
		}
		items = append(items, backfill...)
	}

	if err := s.attachAuthors(ctx, items); err != nil {
		return nil, s.feedError(ctx, userID, err)
	}
	return items, nil
}

// interestVector 计算兴趣向量：优先交互加权质心，缺失时退化到画像向量。
func (s *FeedService) interestVector(ctx context.Context, userID string, signals []repositories.InterestSignal, profile *po.User) []float32 {
	weighted := make([]WeightedVector, 0, len(signals))
	for _, sig := range signals {
		weighted = append(weighted, WeightedVector{Vector: sig.Embedding, Weight: sig.Strength})
	}
	if interest := WeightedCentroid(weighted); interest != nil {
		return interest
	}
	if profile != nil && len(profile.Embedding) > 0 {
		s.log.WithContext(ctx).Debugf("feed fallback to profile embedding: user_id=%s", userID)
		return profile.Embedding
	}
	return nil
}

// recentFeed 返回按时间倒序的兜底信息流；watched 非空时排除已看。
func (s *FeedService) recentFeed(ctx context.Context, limit int32, watched []uuid.UUID) ([]*vo.FeedItem, error) {
	exclude := make(map[uuid.UUID]struct{}, len(watched))
	for _, id := range watched {
		exclude[id] = struct{}{}
	}
	// 多取一截，排除已看后仍能凑满 limit。
	videos, err := s.videos.ListRecent(ctx, nil, limit+int32(len(watched)))
	if err != nil {
		return nil, s.feedError(ctx, "", err)
	}
	items := make([]*vo.FeedItem, 0, limit)
	for _, v := range videos {
		if _, ok := exclude[v.VideoID]; ok {
			continue
		}
		items = append(items, vo.NewFeedItem(v, nil, nil))
		if len(items) == int(limit) {
			break
		}
	}
	if err := s.attachAuthors(ctx, items); err != nil {
		return nil, s.feedError(ctx, "", err)
	}
	return items, nil
}

// backfillRecent 用最新视频补齐信息流尾部，Similarity 为 nil 标记非相似度来源。
func (s *FeedService) backfillRecent(ctx context.Context, limit int32, watched []uuid.UUID, seen map[uuid.UUID]struct{}) ([]*vo.FeedItem, error) {
	exclude := make(map[uuid.UUID]struct{}, len(watched)+len(seen))
	for _, id := range watched {
		exclude[id] = struct{}{}
	}
	for id := range seen {
		exclude[id] = struct{}{}
	}
	videos, err := s.videos.ListRecent(ctx, nil, limit+int32(len(exclude)))
	if err != nil {
		return nil, err
	}
	var items []*vo.FeedItem
	remaining := int(limit) - len(seen)
	for _, v := range videos {
		if remaining <= 0 {
			break
		}
		if _, ok := exclude[v.VideoID]; ok {
			continue
		}
		items = append(items, vo.NewFeedItem(v, nil, nil))
		remaining--
	}
	return items, nil
}

// attachAuthors 批量补齐条目的作者信息。
func (s *FeedService) attachAuthors(ctx context.Context, items []*vo.FeedItem) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, 0, len(items))
	dedup := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := dedup[item.UserID]; ok {
			continue
		}
		dedup[item.UserID] = struct{}{}
		ids = append(ids, item.UserID)
	}
	authors, err := s.profiles.GetByIDs(ctx, nil, ids)
	if err != nil {
		return err
	}
	for _, item := range items {
		if author, ok := authors[item.UserID]; ok {
			item.Username = author.Username
			item.AvatarURL = author.AvatarURL
		}
	}
	return nil
}

func (s *FeedService) clampLimit(limit int32) int32 {
	if limit <= 0 {
		return s.rec.DefaultFeedLimit
	}
	if limit > s.rec.MaxFeedLimit {
		return s.rec.MaxFeedLimit
	}
	return limit
}

// feedError 把底层错误映射为对外错误。
func (s *FeedService) feedError(ctx context.Context, userID string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		s.log.WithContext(ctx).Warnf("compose feed timeout: user_id=%s", userID)
		return errors.GatewayTimeout(ReasonQueryTimeout, "compose feed timeout")
	}
	s.log.WithContext(ctx).Errorf("compose feed failed: user_id=%s err=%v", userID, err)
	return errors.InternalServer(ReasonPersistenceFailed, "failed to compose feed").WithCause(fmt.Errorf("compose feed: %w", err))
}
