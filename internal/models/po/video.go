// Package po 定义面向持久化的数据对象（Persistent Objects），由 Repository 层使用。
// PO 对象映射数据库表结构，不直接暴露给上层业务逻辑。
package po

import (
	"time"

	"github.com/google/uuid"
)

// Video 表示 feed.videos 表的数据库实体。
// 记录在上传时创建，转写 / 摘要 / 标签 / 向量由 AI 富化阶段异步补写，
// 任一富化步骤失败时对应字段保持 NULL，不影响记录本身。
type Video struct {
	// 基础字段
	VideoID   uuid.UUID `db:"video_id"`   // 主键（UUID v4）
	UserID    string    `db:"user_id"`    // 上传者外部身份标识（身份提供方颁发）
	VideoURL  string    `db:"video_url"`  // 对象存储访问 URL（唯一）
	Caption   *string   `db:"caption"`    // 上传时的说明文字（可选）
	CreatedAt time.Time `db:"created_at"` // 记录创建时间
	UpdatedAt time.Time `db:"updated_at"` // 最近更新时间

	// 原始媒体属性
	VideoSize   *int64  `db:"video_size"`   // 文件大小（字节）
	VideoLength *string `db:"video_length"` // 时长描述

	// AI 富化阶段补写
	Transcription *string        `db:"transcription"` // 语音转写文本
	Summary       *string        `db:"summary"`       // AI 生成摘要
	Tags          []string       `db:"tags"`          // AI 生成标签（text[]）
	Metadata      map[string]any `db:"metadata"`      // 自由元数据（类目、位置等，jsonb）
	Embedding     []float32      `db:"embedding"`     // 内容向量（real[]，全库维度一致）
}

// HasEmbedding 判断该视频是否可参与相似度排序。
func (v *Video) HasEmbedding() bool {
	return v != nil && len(v.Embedding) > 0
}
