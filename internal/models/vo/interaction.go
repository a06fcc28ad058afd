// Package vo 定义服务层返回的视图对象（View Objects）。
// 每个操作对应一个封闭的结果类型，避免随调用点漂移的松散返回结构。
package vo

import (
	"time"

	"github.com/bionicotaku/lingo-services-feed/internal/models/po"
	"github.com/google/uuid"
)

// ViewResult 表示一次观看上报的结果。
// Recorded 为 false 表示 (user, video) 已存在观看记录，本次为幂等空操作。
type ViewResult struct {
	Recorded bool
}

// LikeResult 表示点赞开关后的最新状态。
type LikeResult struct {
	Liked      bool
	TotalLikes int64
}

// BookmarkResult 表示收藏开关后的最新状态。
type BookmarkResult struct {
	Bookmarked     bool
	TotalBookmarks int64
}

// ShareResult 表示一次分享记录的结果。
type ShareResult struct {
	TotalShares int64
}

// CommentCreated 表示评论写入成功后的回执。
type CommentCreated struct {
	CommentID uuid.UUID
	CreatedAt time.Time
}

// AnalyticsView 表示视频的聚合计数视图。
type AnalyticsView struct {
	VideoID        uuid.UUID
	TotalViews     int64
	TotalLikes     int64
	TotalComments  int64
	TotalShares    int64
	TotalBookmarks int64
}

// NewAnalyticsView 从 PO 构造聚合计数视图。
func NewAnalyticsView(a *po.VideoAnalytics) *AnalyticsView {
	if a == nil {
		return &AnalyticsView{}
	}
	return &AnalyticsView{
		VideoID:        a.VideoID,
		TotalViews:     a.TotalViews,
		TotalLikes:     a.TotalLikes,
		TotalComments:  a.TotalComments,
		TotalShares:    a.TotalShares,
		TotalBookmarks: a.TotalBookmarks,
	}
}

// InteractionView 表示用户与单个视频的一条交互记录。
type InteractionView struct {
	InteractionID   uuid.UUID
	InteractionType po.InteractionType
	Strength        int64
	ViewDuration    *int64
	WatchPercentage *int64
	CreatedAt       time.Time
}

// NewInteractionViews 从 PO 列表构造交互视图列表。
func NewInteractionViews(items []*po.Interaction) []*InteractionView {
	views := make([]*InteractionView, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		views = append(views, &InteractionView{
			InteractionID:   it.InteractionID,
			InteractionType: it.InteractionType,
			Strength:        it.InteractionStrength,
			ViewDuration:    it.ViewDuration,
			WatchPercentage: it.WatchPercentage,
			CreatedAt:       it.CreatedAt,
		})
	}
	return views
}
