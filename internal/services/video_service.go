package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bionicotaku/lingo-services-feed/internal/conf"
	"github.com/bionicotaku/lingo-services-feed/internal/models/po"
	"github.com/bionicotaku/lingo-services-feed/internal/models/vo"
	"github.com/bionicotaku/lingo-services-feed/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// VideoRepo 定义视频记录的持久化行为。
type VideoRepo interface {
	Create(ctx context.Context, sess txmanager.Session, video *po.Video) (*po.Video, error)
	UpdateEnrichment(ctx context.Context, sess txmanager.Session, videoID uuid.UUID, enr repositories.Enrichment) (*po.Video, error)
	GetByID(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (*po.Video, error)
	ListByUser(ctx context.Context, sess txmanager.Session, userID string, limit int32) ([]*po.Video, error)
	Delete(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (*po.Video, error)
}

// VideoCascade 定义删除视频时需要一并清理的关联数据。
type VideoCascade interface {
	DeleteByVideo(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (int64, error)
}

// AnalyticsCascade 定义删除视频时的聚合行清理。
type AnalyticsCascade interface {
	DeleteByVideo(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) error
}

// AuthorSource 定义视频详情所需的作者读取行为。
type AuthorSource interface {
	GetByID(ctx context.Context, sess txmanager.Session, userID string) (*po.User, error)
}

// BlobStore 定义视频对象的存取行为。实现见 infrastructure/gcs。
type BlobStore interface {
	Store(ctx context.Context, objectName, contentType string, content io.Reader) (string, error)
	Remove(ctx context.Context, videoURL string) error
}

// VideoService 封装视频生命周期用例：上传、富化、查询、级联删除。
type VideoService struct {
	videos       VideoRepo
	interactions VideoCascade
	comments     VideoCascade
	analytics    AnalyticsCascade
	authors      AuthorSource
	blobs        BlobStore
	analyzer     MediaAnalyzer
	embedder     Embedder
	txManager    txmanager.Manager
	ai           *conf.AI
	log          *log.Helper
}

// VideoServiceDeps 聚合视频服务的依赖，避免构造函数参数过长。
type VideoServiceDeps struct {
	Videos       VideoRepo
	Interactions VideoCascade
	Comments     VideoCascade
	Analytics    AnalyticsCascade
	Authors      AuthorSource
	Blobs        BlobStore
	Analyzer     MediaAnalyzer
	Embedder     Embedder
	TxManager    txmanager.Manager
	AI           *conf.AI
	Logger       log.Logger
}

// NewVideoService 构造视频服务。
func NewVideoService(deps VideoServiceDeps) *VideoService {
	return &VideoService{
		videos:       deps.Videos,
		interactions: deps.Interactions,
		comments:     deps.Comments,
		analytics:    deps.Analytics,
		authors:      deps.Authors,
		blobs:        deps.Blobs,
		analyzer:     deps.Analyzer,
		embedder:     deps.Embedder,
		txManager:    deps.TxManager,
		ai:           deps.AI,
		log:          log.NewHelper(deps.Logger),
	}
}

// CreateVideoInput 表示上传视频的输入。
type CreateVideoInput struct {
	UserID      string
	Caption     *string
	Metadata    map[string]any
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// CreateVideo 上传视频并写入记录，随后做 AI 富化。
// 富化各步骤失败不阻塞上传：失败字段保持 NULL，视频照常可见。
func (s *VideoService) CreateVideo(ctx context.Context, input CreateVideoInput) (*vo.VideoCreated, error) {
	if !strings.HasPrefix(input.ContentType, "video/") {
		return nil, errors.BadRequest(ReasonValidationFailed, "content type must be video/*")
	}
	if input.Size <= 0 {
		return nil, errors.BadRequest(ReasonValidationFailed, "video content must not be empty")
	}

	videoID := uuid.New()
	objectName := fmt.Sprintf("%s/%s", input.UserID, videoID)
	videoURL, err := s.blobs.Store(ctx, objectName, input.ContentType, input.Content)
	if err != nil {
		s.log.WithContext(ctx).Errorf("store video blob failed: video_id=%s err=%v", videoID, err)
		return nil, errors.InternalServer(ReasonPersistenceFailed, "failed to store video").WithCause(fmt.Errorf("store blob: %w", err))
	}

	var created *po.Video
	err = s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		video, repoErr := s.videos.Create(txCtx, sess, &po.Video{
			VideoID:   videoID,
			UserID:    input.UserID,
			VideoURL:  videoURL,
			Caption:   input.Caption,
			Metadata:  input.Metadata,
			VideoSize: &input.Size,
		})
		if repoErr != nil {
			return repoErr
		}
		created = video
		return nil
	})
	if err != nil {
		// 记录写入失败时回收已上传对象，避免产生孤儿文件。
		if rmErr := s.blobs.Remove(ctx, videoURL); rmErr != nil {
			s.log.WithContext(ctx).Warnf("orphan blob cleanup failed: video_id=%s err=%v", videoID, rmErr)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.GatewayTimeout(ReasonQueryTimeout, "create video timeout")
		}
		s.log.WithContext(ctx).Errorf("create video failed: video_id=%s err=%v", videoID, err)
		return nil, errors.InternalServer(ReasonPersistenceFailed, "failed to create video").WithCause(fmt.Errorf("create video: %w", err))
	}

	enriched := s.enrich(ctx, created)

	s.log.WithContext(ctx).Infof("CreateVideo: video_id=%s user_id=%s enriched=%t", created.VideoID, created.UserID, enriched)
	return vo.NewVideoCreated(created, enriched), nil
}

// enrich 执行 AI 富化并补写成功的字段。返回是否全部步骤成功。
func (s *VideoService) enrich(ctx context.Context, video *po.Video) bool {
	caption := ""
	if video.Caption != nil {
		caption = *video.Caption
	}

	var enr repositories.Enrichment
	complete := true

	insights, err := s.analyzer.AnalyzeVideo(ctx, video.VideoURL, caption)
	if err != nil {
		s.log.WithContext(ctx).Warnf("analyze video failed: video_id=%s err=%v", video.VideoID, err)
		insights = &MediaInsights{}
		complete = false
	}
	if insights.Transcription != "" {
		enr.Transcription = &insights.Transcription
	} else {
		complete = false
	}
	if insights.Summary != "" {
		enr.Summary = &insights.Summary
	} else {
		complete = false
	}
	if len(insights.Tags) > 0 {
		enr.Tags = insights.Tags
	} else {
		complete = false
	}

	if text := embeddingText(caption, insights); text != "" {
		embedding, embErr := s.embedder.EmbedText(ctx, text)
		switch {
		case embErr != nil:
			s.log.WithContext(ctx).Warnf("embed video failed: video_id=%s err=%v", video.VideoID, embErr)
			complete = false
		case len(embedding) != int(s.ai.EmbeddingDimensions):
			// 维度不一致的向量一旦入库会污染相似度计算，直接丢弃。
			s.log.WithContext(ctx).Warnf("embedding dimension mismatch: video_id=%s got=%d want=%d",
				video.VideoID, len(embedding), s.ai.EmbeddingDimensions)
			complete = false
		default:
			enr.Embedding = embedding
		}
	} else {
		complete = false
	}

	if enr.Transcription == nil && enr.Summary == nil && enr.Tags == nil && enr.Embedding == nil {
		return false
	}
	updated, err := s.videos.UpdateEnrichment(ctx, nil, video.VideoID, enr)
	if err != nil {
		s.log.WithContext(ctx).Warnf("persist enrichment failed: video_id=%s err=%v", video.VideoID, err)
		return false
	}
	*video = *updated
	return complete
}

// embeddingText 汇总所有可用文本作为向量化输入。
func embeddingText(caption string, insights *MediaInsights) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{caption, insights.Summary, insights.Transcription, strings.Join(insights.Tags, " ")} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, "\n")
}

// GetVideo 返回视频详情及作者信息。
func (s *VideoService) GetVideo(ctx context.Context, videoID uuid.UUID) (*vo.VideoDetail, error) {
	video, err := s.videos.GetByID(ctx, nil, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrVideoNotFound) {
			return nil, errors.NotFound(ReasonVideoNotFound, "video not found")
		}
		return nil, s.queryError(ctx, "get video", err)
	}
	author, err := s.authors.GetByID(ctx, nil, video.UserID)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, s.queryError(ctx, "get video author", err)
	}
	return vo.NewVideoDetail(video, author), nil
}

// ListUserVideos 返回用户上传的视频，时间倒序。
func (s *VideoService) ListUserVideos(ctx context.Context, userID string, limit int32) ([]*vo.VideoDetail, error) {
	if limit <= 0 {
		limit = conf.DefaultFeedLimit
	}
	videos, err := s.videos.ListByUser(ctx, nil, userID, limit)
	if err != nil {
		return nil, s.queryError(ctx, "list user videos", err)
	}
	author, err := s.authors.GetByID(ctx, nil, userID)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, s.queryError(ctx, "list user videos", err)
	}
	details := make([]*vo.VideoDetail, 0, len(videos))
	for _, v := range videos {
		details = append(details, vo.NewVideoDetail(v, author))
	}
	return details, nil
}

// DeleteVideo 删除视频及其全部关联数据。
// 记录、交互、评论、聚合计数在同一事务内删除；对象存储回收在事务提交后
// 尽力而为，失败只记日志。
func (s *VideoService) DeleteVideo(ctx context.Context, userID string, videoID uuid.UUID) (*vo.VideoDeleted, error) {
	video, err := s.videos.GetByID(ctx, nil, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrVideoNotFound) {
			return nil, errors.NotFound(ReasonVideoNotFound, "video not found")
		}
		return nil, s.queryError(ctx, "delete video", err)
	}
	if video.UserID != userID {
		return nil, errors.Forbidden(ReasonPermissionDenied, "only the uploader can delete the video")
	}

	var deleted *po.Video
	err = s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		if _, delErr := s.interactions.DeleteByVideo(txCtx, sess, videoID); delErr != nil {
			return delErr
		}
		if _, delErr := s.comments.DeleteByVideo(txCtx, sess, videoID); delErr != nil {
			return delErr
		}
		if delErr := s.analytics.DeleteByVideo(txCtx, sess, videoID); delErr != nil {
			return delErr
		}
		row, delErr := s.videos.Delete(txCtx, sess, videoID)
		if delErr != nil {
			return delErr
		}
		deleted = row
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrVideoNotFound) {
			return nil, errors.NotFound(ReasonVideoNotFound, "video not found")
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.GatewayTimeout(ReasonQueryTimeout, "delete video timeout")
		}
		s.log.WithContext(ctx).Errorf("delete video failed: video_id=%s err=%v", videoID, err)
		return nil, errors.InternalServer(ReasonPersistenceFailed, "failed to delete video").WithCause(fmt.Errorf("delete video: %w", err))
	}

	if rmErr := s.blobs.Remove(ctx, deleted.VideoURL); rmErr != nil {
		s.log.WithContext(ctx).Warnf("remove video blob failed: video_id=%s err=%v", videoID, rmErr)
	}

	s.log.WithContext(ctx).Infof("DeleteVideo: video_id=%s user_id=%s", videoID, userID)
	return &vo.VideoDeleted{VideoID: videoID, DeletedAt: time.Now().UTC()}, nil
}

func (s *VideoService) queryError(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		s.log.WithContext(ctx).Warnf("%s timeout", op)
		return errors.GatewayTimeout(ReasonQueryTimeout, op+" timeout")
	}
	s.log.WithContext(ctx).Errorf("%s failed: err=%v", op, err)
	return errors.InternalServer(ReasonPersistenceFailed, "failed to "+op).WithCause(fmt.Errorf("%s: %w", op, err))
}
