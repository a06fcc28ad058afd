// Package conf 定义服务启动配置结构。
// 配置文件为 YAML，经 kratos config 统一扫描进 Bootstrap。
package conf

import (
	"fmt"
	"time"
)

// Duration 是配置文件中的时长字符串（如 "5s"、"1m"）。
type Duration string

// AsDuration 解析时长；为空或非法时返回 0，由调用方套默认值。
func (d Duration) AsDuration() time.Duration {
	if d == "" {
		return 0
	}
	v, err := time.ParseDuration(string(d))
	if err != nil {
		return 0
	}
	return v
}

// 默认值：配置缺省时由 Normalize 填入。
const (
	DefaultEmbeddingDimensions = 768
	DefaultFeedLimit           = 20
	DefaultMaxFeedLimit        = 100
	DefaultMaxUploadSize       = 200 << 20 // 200 MiB
	DefaultEmbeddingModel      = "gemini-embedding-001"
	DefaultGenerativeModel     = "gemini-2.0-flash"
)

// DefaultAIRequestTimeout 是单次模型调用的默认超时。
const DefaultAIRequestTimeout = 30 * time.Second

// Bootstrap 聚合全部启动配置。
type Bootstrap struct {
	Server    *Server    `json:"server"`
	Data      *Data      `json:"data"`
	Storage   *Storage   `json:"storage"`
	AI        *AI        `json:"ai"`
	Recommend *Recommend `json:"recommend"`
}

// Server 描述对外服务监听。
type Server struct {
	HTTP *HTTPServer `json:"http"`
}

// HTTPServer 描述 HTTP 监听参数。
type HTTPServer struct {
	Network string   `json:"network"`
	Addr    string   `json:"addr"`
	Timeout Duration `json:"timeout"`
}

// Data 聚合数据层配置。
type Data struct {
	Postgres *Postgres `json:"postgres"`
}

// Postgres 描述连接池与事务默认值。
type Postgres struct {
	DSN                      string   `json:"dsn"`
	Schema                   string   `json:"schema"`
	MaxOpenConns             int32    `json:"max_open_conns"`
	MinOpenConns             int32    `json:"min_open_conns"`
	MaxConnLifetime          Duration `json:"max_conn_lifetime"`
	MaxConnIdleTime          Duration `json:"max_conn_idle_time"`
	HealthCheckPeriod        Duration `json:"health_check_period"`
	EnablePreparedStatements bool     `json:"enable_prepared_statements"`
	TxDefaultTimeout         Duration `json:"tx_default_timeout"`
}

// Storage 描述视频对象存储。
type Storage struct {
	Bucket        string `json:"bucket"`
	ObjectPrefix  string `json:"object_prefix"`
	PublicBaseURL string `json:"public_base_url"`
	MaxUploadSize int64  `json:"max_upload_size"`
}

// AI 描述模型接入参数。
type AI struct {
	APIKey              string   `json:"api_key"`
	EmbeddingModel      string   `json:"embedding_model"`
	GenerativeModel     string   `json:"generative_model"`
	EmbeddingDimensions int32    `json:"embedding_dimensions"`
	RequestTimeout      Duration `json:"request_timeout"`
}

// Recommend 描述信息流与兴趣聚合参数。
type Recommend struct {
	DefaultFeedLimit int32      `json:"default_feed_limit"`
	MaxFeedLimit     int32      `json:"max_feed_limit"`
	Strengths        *Strengths `json:"strengths"`
}

// Strengths 定义各交互类型写入台账的兴趣权重。
type Strengths struct {
	View     int64 `json:"view"`
	Like     int64 `json:"like"`
	Share    int64 `json:"share"`
	Bookmark int64 `json:"bookmark"`
	Comment  int64 `json:"comment"`
}

// DefaultStrengths 返回默认权重表。
func DefaultStrengths() *Strengths {
	return &Strengths{View: 1, Like: 1, Share: 2, Bookmark: 3, Comment: 3}
}

// Normalize 填充缺省段与默认值，使下游无需判空。
func (b *Bootstrap) Normalize() {
	if b.Server == nil {
		b.Server = &Server{}
	}
	if b.Server.HTTP == nil {
		b.Server.HTTP = &HTTPServer{}
	}
	if b.Data == nil {
		b.Data = &Data{}
	}
	if b.Data.Postgres == nil {
		b.Data.Postgres = &Postgres{}
	}
	if b.Storage == nil {
		b.Storage = &Storage{}
	}
	if b.Storage.MaxUploadSize <= 0 {
		b.Storage.MaxUploadSize = DefaultMaxUploadSize
	}
	if b.AI == nil {
		b.AI = &AI{}
	}
	if b.AI.EmbeddingModel == "" {
		b.AI.EmbeddingModel = DefaultEmbeddingModel
	}
	if b.AI.GenerativeModel == "" {
		b.AI.GenerativeModel = DefaultGenerativeModel
	}
	if b.AI.EmbeddingDimensions <= 0 {
		b.AI.EmbeddingDimensions = DefaultEmbeddingDimensions
	}
	if b.Recommend == nil {
		b.Recommend = &Recommend{}
	}
	if b.Recommend.DefaultFeedLimit <= 0 {
		b.Recommend.DefaultFeedLimit = DefaultFeedLimit
	}
	if b.Recommend.MaxFeedLimit <= 0 {
		b.Recommend.MaxFeedLimit = DefaultMaxFeedLimit
	}
	if b.Recommend.Strengths == nil {
		b.Recommend.Strengths = DefaultStrengths()
	}
}

// Validate 校验启动必需项。
func (b *Bootstrap) Validate() error {
	if b.Server == nil || b.Server.HTTP == nil || b.Server.HTTP.Addr == "" {
		return fmt.Errorf("server.http.addr is required")
	}
	if b.Data == nil || b.Data.Postgres == nil || b.Data.Postgres.DSN == "" {
		return fmt.Errorf("data.postgres.dsn is required")
	}
	if b.Storage == nil || b.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	s := b.Recommend.Strengths
	if s.View <= 0 || s.Like <= 0 || s.Share <= 0 || s.Bookmark <= 0 || s.Comment <= 0 {
		return fmt.Errorf("recommend.strengths must all be positive")
	}
	return nil
}
