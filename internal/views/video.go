// Package views 负责将内部 VO 对象转换为 HTTP JSON 响应。
// 该层作为传输层的序列化适配器，隔离业务逻辑与协议细节。
package views

import (
	"time"

	"github.com/bionicotaku/lingo-services-feed/internal/models/vo"
)

// VideoDetailResponse 是视频详情的 JSON 视图。
type VideoDetailResponse struct {
	VideoID       string         `json:"video_id"`
	UserID        string         `json:"user_id"`
	Username      string         `json:"username,omitempty"`
	AvatarURL     *string        `json:"avatar_url,omitempty"`
	VideoURL      string         `json:"video_url"`
	Caption       *string        `json:"caption,omitempty"`
	VideoSize     *int64         `json:"video_size,omitempty"`
	VideoLength   *string        `json:"video_length,omitempty"`
	Transcription *string        `json:"transcription,omitempty"`
	Summary       *string        `json:"summary,omitempty"`
	Tags          []string       `json:"tags,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// NewVideoDetailResponse 将 VideoDetail 转换为 JSON 视图。
func NewVideoDetailResponse(detail *vo.VideoDetail) *VideoDetailResponse {
	if detail == nil {
		return &VideoDetailResponse{}
	}
	return &VideoDetailResponse{
		VideoID:       detail.VideoID.String(),
		UserID:        detail.UserID,
		Username:      detail.Username,
		AvatarURL:     detail.AvatarURL,
		VideoURL:      detail.VideoURL,
		Caption:       detail.Caption,
		VideoSize:     detail.VideoSize,
		VideoLength:   detail.VideoLength,
		Transcription: detail.Transcription,
		Summary:       detail.Summary,
		Tags:          append([]string(nil), detail.Tags...),
		Metadata:      detail.Metadata,
		CreatedAt:     detail.CreatedAt,
	}
}

// VideoListResponse 是视频列表的 JSON 视图。
type VideoListResponse struct {
	Videos []*VideoDetailResponse `json:"videos"`
}

// NewVideoListResponse 将 VideoDetail 列表转换为 JSON 视图。
func NewVideoListResponse(details []*vo.VideoDetail) *VideoListResponse {
	videos := make([]*VideoDetailResponse, 0, len(details))
	for _, d := range details {
		videos = append(videos, NewVideoDetailResponse(d))
	}
	return &VideoListResponse{Videos: videos}
}

// VideoCreatedResponse 是上传回执的 JSON 视图。
type VideoCreatedResponse struct {
	VideoID   string    `json:"video_id"`
	VideoURL  string    `json:"video_url"`
	CreatedAt time.Time `json:"created_at"`
	Enriched  bool      `json:"enriched"`
}

// NewVideoCreatedResponse 将 VideoCreated 转换为 JSON 视图。
func NewVideoCreatedResponse(created *vo.VideoCreated) *VideoCreatedResponse {
	if created == nil {
		return &VideoCreatedResponse{}
	}
	return &VideoCreatedResponse{
		VideoID:   created.VideoID.String(),
		VideoURL:  created.VideoURL,
		CreatedAt: created.CreatedAt,
		Enriched:  created.Enriched,
	}
}

// VideoDeletedResponse 是删除回执的 JSON 视图。
type VideoDeletedResponse struct {
	VideoID   string    `json:"video_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// NewVideoDeletedResponse 将 VideoDeleted 转换为 JSON 视图。
func NewVideoDeletedResponse(deleted *vo.VideoDeleted) *VideoDeletedResponse {
	if deleted == nil {
		return &VideoDeletedResponse{}
	}
	return &VideoDeletedResponse{
		VideoID:   deleted.VideoID.String(),
		DeletedAt: deleted.DeletedAt,
	}
}
