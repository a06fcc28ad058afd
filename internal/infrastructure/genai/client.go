// Package genai 封装 Gemini 模型调用：文本向量化与视频理解。
package genai

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"google.golang.org/genai"

	"github.com/bionicotaku/lingo-services-feed/internal/conf"
	"github.com/bionicotaku/lingo-services-feed/internal/services"
)

// Client 实现 services.Embedder 与 services.MediaAnalyzer。
type Client struct {
	client          *genai.Client
	embeddingModel  string
	generativeModel string
	dimensions      int32
	timeout         time.Duration
	log             *log.Helper
}

// NewClient 创建 Gemini 客户端。
func NewClient(ctx context.Context, c *conf.AI, logger log.Logger) (*Client, error) {
	if c == nil || c.APIKey == "" {
		return nil, errors.New("genai: api key is required (set GEMINI_API_KEY)")
	}
	inner, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init genai client: %w", err)
	}
	timeout := c.RequestTimeout.AsDuration()
	if timeout <= 0 {
		timeout = conf.DefaultAIRequestTimeout
	}
	return &Client{
		client:          inner,
		embeddingModel:  c.EmbeddingModel,
		generativeModel: c.GenerativeModel,
		dimensions:      c.EmbeddingDimensions,
		timeout:         timeout,
		log:             log.NewHelper(logger),
	}, nil
}

// EmbedText 把文本映射为定长向量。
func (c *Client) EmbedText(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("genai: text is empty")
	}
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Models.EmbedContent(callCtx, c.embeddingModel,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{OutputDimensionality: genai.Ptr(c.dimensions)},
	)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("embed content: empty embedding")
	}
	values := resp.Embeddings[0].Values
	// 全库向量维度必须一致，长度不符的结果不允许流向任何写入路径。
	if len(values) != int(c.dimensions) {
		return nil, fmt.Errorf("embed content: got %d dimensions, want %d", len(values), c.dimensions)
	}
	return values, nil
}

const (
	transcribePrompt = "Transcribe the spoken audio of this video verbatim. Return only the transcription text."
	summarizePrompt  = "Summarize this video in 2-3 sentences for a feed preview. Return only the summary."
	tagsPrompt       = "List up to 8 short topical tags describing this video, as a single comma-separated line. Return only the tags."
)

// AnalyzeVideo 对视频做转写、摘要与标签提取。三个调用并发执行，
// 单项失败只记日志；全部失败时才返回错误。
func (c *Client) AnalyzeVideo(ctx context.Context, videoURL, caption string) (*services.MediaInsights, error) {
	insights := &services.MediaInsights{}
	errs := make([]error, 3)

	var wg sync.WaitGroup
	run := func(idx int, prompt string, assign func(string)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text, err := c.generateFromVideo(ctx, videoURL, caption, prompt)
			if err != nil {
				errs[idx] = err
				return
			}
			assign(text)
		}()
	}
	run(0, transcribePrompt, func(v string) { insights.Transcription = v })
	run(1, summarizePrompt, func(v string) { insights.Summary = v })
	run(2, tagsPrompt, func(v string) { insights.Tags = splitTags(v) })
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			c.log.WithContext(ctx).Warnf("video analysis step %d failed: err=%v", i, err)
		}
	}
	if errs[0] != nil && errs[1] != nil && errs[2] != nil {
		return nil, fmt.Errorf("analyze video: %w", errors.Join(errs...))
	}
	return insights, nil
}

// generateFromVideo 以视频 URI 与提示词调用生成模型，返回纯文本输出。
func (c *Client) generateFromVideo(ctx context.Context, videoURL, caption, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if caption != "" {
		prompt = prompt + "\nUploader caption: " + caption
	}
	parts := []*genai.Part{
		genai.NewPartFromURI(videoURL, mimeTypeFromURL(videoURL)),
		genai.NewPartFromText(prompt),
	}
	resp, err := c.client.Models.GenerateContent(callCtx, c.generativeModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("generate content: empty response")
	}
	return text, nil
}

// mimeTypeFromURL 从 URL 扩展名推断视频 MIME；未知时按 mp4 处理。
func mimeTypeFromURL(videoURL string) string {
	if ext := path.Ext(videoURL); ext != "" {
		if typ := mime.TypeByExtension(ext); strings.HasPrefix(typ, "video/") {
			return typ
		}
	}
	return "video/mp4"
}

func splitTags(line string) []string {
	raw := strings.Split(line, ",")
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		if v := strings.TrimSpace(strings.Trim(strings.TrimSpace(t), "#")); v != "" {
			tags = append(tags, v)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

var (
	_ services.Embedder      = (*Client)(nil)
	_ services.MediaAnalyzer = (*Client)(nil)
)
