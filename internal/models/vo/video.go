package vo

import (
	"time"

	"github.com/bionicotaku/lingo-services-feed/internal/models/po"
	"github.com/google/uuid"
)

// VideoDetail 表示视频详情视图，附带作者信息。
type VideoDetail struct {
	VideoID       uuid.UUID
	UserID        string
	VideoURL      string
	Caption       *string
	VideoSize     *int64
	VideoLength   *string
	Transcription *string
	Summary       *string
	Tags          []string
	Metadata      map[string]any
	CreatedAt     time.Time
	Username      string
	AvatarURL     *string
}

// NewVideoDetail 从 PO 构造视频详情视图。
func NewVideoDetail(v *po.Video, author *po.User) *VideoDetail {
	if v == nil {
		return &VideoDetail{}
	}
	detail := &VideoDetail{
		VideoID:       v.VideoID,
		UserID:        v.UserID,
		VideoURL:      v.VideoURL,
		Caption:       v.Caption,
		VideoSize:     v.VideoSize,
		VideoLength:   v.VideoLength,
		Transcription: v.Transcription,
		Summary:       v.Summary,
		Tags:          append([]string(nil), v.Tags...),
		Metadata:      v.Metadata,
		CreatedAt:     v.CreatedAt,
	}
	if author != nil {
		detail.Username = author.Username
		detail.AvatarURL = author.AvatarURL
	}
	return detail
}

// VideoCreated 表示上传成功后的回执。
// Enriched 标记 AI 富化是否全部成功；部分失败时对应字段为 NULL，上传本身不失败。
type VideoCreated struct {
	VideoID   uuid.UUID
	VideoURL  string
	CreatedAt time.Time
	Enriched  bool
}

// NewVideoCreated 构造上传回执。
func NewVideoCreated(v *po.Video, enriched bool) *VideoCreated {
	if v == nil {
		return &VideoCreated{}
	}
	return &VideoCreated{
		VideoID:   v.VideoID,
		VideoURL:  v.VideoURL,
		CreatedAt: v.CreatedAt,
		Enriched:  enriched,
	}
}

// VideoDeleted 表示删除成功后的回执。
type VideoDeleted struct {
	VideoID   uuid.UUID
	DeletedAt time.Time
}
