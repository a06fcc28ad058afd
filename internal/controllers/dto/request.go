// Package dto 提供控制器层的请求解析工具。
// 单独的 dto 层可以隔离协议对象与业务用例之间的转换逻辑。
package dto

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bionicotaku/lingo-services-feed/internal/services"

	"github.com/google/uuid"
)

// ParseVideoID 解析路径中的视频 ID。
func ParseVideoID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid video id: %w", err)
	}
	return id, nil
}

// ParseLimit 解析 limit 查询参数；缺省或非法时返回 0，由服务层套默认值。
func ParseLimit(query url.Values) int32 {
	raw := query.Get("limit")
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v < 0 {
		return 0
	}
	return int32(v)
}

// ParseMetadata 解析上传表单中的 metadata 字段（JSON 对象，如类目、位置）。
// 缺省返回 nil；非法 JSON 或非对象返回错误。
func ParseMetadata(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var meta map[string]any
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("invalid metadata: %w", err)
	}
	if len(meta) == 0 {
		return nil, nil
	}
	return meta, nil
}

// OnboardRequest 表示注册 / 画像更新请求体。
type OnboardRequest struct {
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FullName  *string  `json:"full_name"`
	Bio       *string  `json:"bio"`
	AvatarURL *string  `json:"avatar_url"`
	Interests []string `json:"interests"`
}

// ToOnboardInput 把请求体映射为服务层输入。
func (r *OnboardRequest) ToOnboardInput(userID string) services.OnboardInput {
	return services.OnboardInput{
		UserID:    userID,
		Username:  r.Username,
		Email:     r.Email,
		FullName:  r.FullName,
		Bio:       r.Bio,
		AvatarURL: r.AvatarURL,
		Interests: r.Interests,
	}
}

// CommentRequest 表示评论请求体。
type CommentRequest struct {
	Content string `json:"content"`
}

// ViewRequest 表示观看上报 / 进度刷新请求体。
type ViewRequest struct {
	ViewDuration    *int64 `json:"view_duration"`
	WatchPercentage *int64 `json:"watch_percentage"`
}

// ToViewProgress 把请求体映射为服务层输入。
func (r *ViewRequest) ToViewProgress() services.ViewProgress {
	return services.ViewProgress{
		Duration:        r.ViewDuration,
		WatchPercentage: r.WatchPercentage,
	}
}
