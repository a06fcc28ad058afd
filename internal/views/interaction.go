package views

import (
	"time"

	"github.com/bionicotaku/lingo-services-feed/internal/models/po"
	"github.com/bionicotaku/lingo-services-feed/internal/models/vo"
)

// ViewResponse 是观看上报的 JSON 视图。
type ViewResponse struct {
	Recorded bool `json:"recorded"`
}

// NewViewResponse 将 ViewResult 转换为 JSON 视图。
func NewViewResponse(result *vo.ViewResult) *ViewResponse {
	if result == nil {
		return &ViewResponse{}
	}
	return &ViewResponse{Recorded: result.Recorded}
}

// LikeResponse 是点赞开关的 JSON 视图。
type LikeResponse struct {
	Liked      bool  `json:"liked"`
	TotalLikes int64 `json:"total_likes"`
}

// NewLikeResponse 将 LikeResult 转换为 JSON 视图。
func NewLikeResponse(result *vo.LikeResult) *LikeResponse {
	if result == nil {
		return &LikeResponse{}
	}
	return &LikeResponse{Liked: result.Liked, TotalLikes: result.TotalLikes}
}

// BookmarkResponse 是收藏开关的 JSON 视图。
type BookmarkResponse struct {
	Bookmarked     bool  `json:"bookmarked"`
	TotalBookmarks int64 `json:"total_bookmarks"`
}

// NewBookmarkResponse 将 BookmarkResult 转换为 JSON 视图。
func NewBookmarkResponse(result *vo.BookmarkResult) *BookmarkResponse {
	if result == nil {
		return &BookmarkResponse{}
	}
	return &BookmarkResponse{Bookmarked: result.Bookmarked, TotalBookmarks: result.TotalBookmarks}
}

// ShareResponse 是分享记录的 JSON 视图。
type ShareResponse struct {
	TotalShares int64 `json:"total_shares"`
}

// NewShareResponse 将 ShareResult 转换为 JSON 视图。
func NewShareResponse(result *vo.ShareResult) *ShareResponse {
	if result == nil {
		return &ShareResponse{}
	}
	return &ShareResponse{TotalShares: result.TotalShares}
}

// CommentCreatedResponse 是评论回执的 JSON 视图。
type CommentCreatedResponse struct {
	CommentID string    `json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCommentCreatedResponse 将 CommentCreated 转换为 JSON 视图。
func NewCommentCreatedResponse(created *vo.CommentCreated) *CommentCreatedResponse {
	if created == nil {
		return &CommentCreatedResponse{}
	}
	return &CommentCreatedResponse{
		CommentID: created.CommentID.String(),
		CreatedAt: created.CreatedAt,
	}
}

// CommentResponse 是单条评论的 JSON 视图。
type CommentResponse struct {
	CommentID  string    `json:"comment_id"`
	UserID     string    `json:"user_id"`
	Content    string    `json:"content"`
	TotalLikes int64     `json:"total_likes"`
	CreatedAt  time.Time `json:"created_at"`
}

// CommentListResponse 是评论列表的 JSON 视图。
type CommentListResponse struct {
	Comments []*CommentResponse `json:"comments"`
}

// NewCommentListResponse 将评论列表转换为 JSON 视图。
func NewCommentListResponse(comments []*po.Comment) *CommentListResponse {
	out := make([]*CommentResponse, 0, len(comments))
	for _, c := range comments {
		if c == nil {
			continue
		}
		out = append(out, &CommentResponse{
			CommentID:  c.CommentID.String(),
			UserID:     c.UserID,
			Content:    c.Content,
			TotalLikes: c.TotalLikes,
			CreatedAt:  c.CreatedAt,
		})
	}
	return &CommentListResponse{Comments: out}
}

// AnalyticsResponse 是聚合计数的 JSON 视图。
type AnalyticsResponse struct {
	VideoID        string `json:"video_id"`
	TotalViews     int64  `json:"total_views"`
	TotalLikes     int64  `json:"total_likes"`
	TotalComments  int64  `json:"total_comments"`
	TotalShares    int64  `json:"total_shares"`
	TotalBookmarks int64  `json:"total_bookmarks"`
}

// NewAnalyticsResponse 将 AnalyticsView 转换为 JSON 视图。
func NewAnalyticsResponse(view *vo.AnalyticsView) *AnalyticsResponse {
	if view == nil {
		return &AnalyticsResponse{}
	}
	return &AnalyticsResponse{
		VideoID:        view.VideoID.String(),
		TotalViews:     view.TotalViews,
		TotalLikes:     view.TotalLikes,
		TotalComments:  view.TotalComments,
		TotalShares:    view.TotalShares,
		TotalBookmarks: view.TotalBookmarks,
	}
}

// InteractionResponse 是单条交互记录的 JSON 视图。
type InteractionResponse struct {
	InteractionID   string    `json:"interaction_id"`
	InteractionType string    `json:"interaction_type"`
	Strength        int64     `json:"strength"`
	ViewDuration    *int64    `json:"view_duration,omitempty"`
	WatchPercentage *int64    `json:"watch_percentage,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// InteractionListResponse 是交互记录列表的 JSON 视图。
type InteractionListResponse struct {
	Interactions []*InteractionResponse `json:"interactions"`
}

// NewInteractionListResponse 将交互视图列表转换为 JSON 视图。
func NewInteractionListResponse(items []*vo.InteractionView) *InteractionListResponse {
	out := make([]*InteractionResponse, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, &InteractionResponse{
			InteractionID:   it.InteractionID.String(),
			InteractionType: string(it.InteractionType),
			Strength:        it.Strength,
			ViewDuration:    it.ViewDuration,
			WatchPercentage: it.WatchPercentage,
			CreatedAt:       it.CreatedAt,
		})
	}
	return &InteractionListResponse{Interactions: out}
}
