package services

import "context"

// Embedder 把文本映射为定长向量。实现见 infrastructure/genai。
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// MediaInsights 表示对单个视频的理解结果。
type MediaInsights struct {
	Transcription string
	Summary       string
	Tags          []string
}

// MediaAnalyzer 对已上传的视频做转写 / 摘要 / 标签提取。
// 各字段独立失败：返回值里为空的字段表示对应步骤未成功。
type MediaAnalyzer interface {
	AnalyzeVideo(ctx context.Context, videoURL string, caption string) (*MediaInsights, error)
}
