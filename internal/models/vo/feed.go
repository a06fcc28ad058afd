package vo

import (
	"time"

	"github.com/bionicotaku/lingo-services-feed/internal/models/po"
	"github.com/google/uuid"
)

// FeedItem 表示信息流中的一个条目。
// Similarity 仅在条目来自相似度排序时存在；召回兜底（按时间倒序）时为 nil。
type FeedItem struct {
	VideoID    uuid.UUID
	UserID     string
	VideoURL   string
	Caption    *string
	Summary    *string
	Tags       []string
	CreatedAt  time.Time
	Username   string
	AvatarURL  *string
	Similarity *float64
}

// NewFeedItem 从 PO 构造信息流条目。
func NewFeedItem(v *po.Video, author *po.User, similarity *float64) *FeedItem {
	if v == nil {
		return &FeedItem{}
	}
	item := &FeedItem{
		VideoID:    v.VideoID,
		UserID:     v.UserID,
		VideoURL:   v.VideoURL,
		Caption:    v.Caption,
		Summary:    v.Summary,
		Tags:       append([]string(nil), v.Tags...),
		CreatedAt:  v.CreatedAt,
		Similarity: similarity,
	}
	if author != nil {
		item.Username = author.Username
		item.AvatarURL = author.AvatarURL
	}
	return item
}

// Profile 表示用户画像视图。
type Profile struct {
	UserID       string
	Username     string
	Email        string
	FullName     *string
	Bio          *string
	AvatarURL    *string
	HasEmbedding bool
	CreatedAt    time.Time
}

// NewProfile 从 PO 构造画像视图；向量本身不对外暴露。
func NewProfile(u *po.User) *Profile {
	if u == nil {
		return &Profile{}
	}
	return &Profile{
		UserID:       u.UserID,
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		Bio:          u.Bio,
		AvatarURL:    u.AvatarURL,
		HasEmbedding: len(u.Embedding) > 0,
		CreatedAt:    u.CreatedAt,
	}
}
