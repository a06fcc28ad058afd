package views

import (
	"time"

	"github.com/bionicotaku/lingo-services-feed/internal/models/vo"
)

// FeedItemResponse 是信息流条目的 JSON 视图。
// Similarity 仅在条目来自相似度排序时存在。
type FeedItemResponse struct {
	VideoID    string    `json:"video_id"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	AvatarURL  *string   `json:"avatar_url,omitempty"`
	VideoURL   string    `json:"video_url"`
	Caption    *string   `json:"caption,omitempty"`
	Summary    *string   `json:"summary,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Similarity *float64  `json:"similarity,omitempty"`
}

// FeedResponse 是信息流的 JSON 视图。
type FeedResponse struct {
	Items []*FeedItemResponse `json:"items"`
}

// NewFeedResponse 将信息流条目列表转换为 JSON 视图。
func NewFeedResponse(items []*vo.FeedItem) *FeedResponse {
	out := make([]*FeedItemResponse, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, &FeedItemResponse{
			VideoID:    item.VideoID.String(),
			UserID:     item.UserID,
			Username:   item.Username,
			AvatarURL:  item.AvatarURL,
			VideoURL:   item.VideoURL,
			Caption:    item.Caption,
			Summary:    item.Summary,
			Tags:       append([]string(nil), item.Tags...),
			CreatedAt:  item.CreatedAt,
			Similarity: item.Similarity,
		})
	}
	return &FeedResponse{Items: out}
}

// ProfileResponse 是用户画像的 JSON 视图。
type ProfileResponse struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     *string   `json:"full_name,omitempty"`
	Bio          *string   `json:"bio,omitempty"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	HasEmbedding bool      `json:"has_embedding"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewProfileResponse 将 Profile 转换为 JSON 视图。
func NewProfileResponse(profile *vo.Profile) *ProfileResponse {
	if profile == nil {
		return &ProfileResponse{}
	}
	return &ProfileResponse{
		UserID:       profile.UserID,
		Username:     profile.Username,
		Email:        profile.Email,
		FullName:     profile.FullName,
		Bio:          profile.Bio,
		AvatarURL:    profile.AvatarURL,
		HasEmbedding: profile.HasEmbedding,
		CreatedAt:    profile.CreatedAt,
	}
}
