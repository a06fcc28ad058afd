// Package config 负责加载并校验启动配置。
// 优先级：环境变量 > 配置文件 > 默认值。
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/bionicotaku/lingo-services-feed/internal/conf"

	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/joho/godotenv"
)

const (
	envConfPath    = "CONF_PATH"
	envDatabaseURL = "DATABASE_URL"
	envPort        = "PORT"
	envGeminiKey   = "GEMINI_API_KEY"
	envBucket      = "STORAGE_BUCKET"

	defaultConfPath = "configs"
)

var envFileNames = []string{".env.local", ".env"}

// BuildError 捕获配置构建过程中的上下文错误信息。
type BuildError struct {
	Stage string
	Path  string
	Err   error
}

// Error 实现 error 接口。
func (e BuildError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s at %q: %v", e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Stage, e.Err)
}

// Unwrap 暴露底层错误，支持 errors.Is/As。
func (e BuildError) Unwrap() error { return e.Err }

// Load 从配置文件与环境变量构建 Bootstrap。
func Load(confPath string) (*conf.Bootstrap, error) {
	confPath = ResolveConfPath(confPath)
	loadEnvFiles(confPath)

	c := config.New(config.WithSource(file.NewSource(confPath)))
	if err := c.Load(); err != nil {
		return nil, BuildError{Stage: "load", Path: confPath, Err: err}
	}
	defer c.Close()

	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		return nil, BuildError{Stage: "scan", Path: confPath, Err: err}
	}

	bc.Normalize()
	applyEnvOverrides(&bc)
	if err := bc.Validate(); err != nil {
		return nil, BuildError{Stage: "validate", Path: confPath, Err: err}
	}
	return &bc, nil
}

// ResolveConfPath 确定配置路径。优先级：显式传入 > CONF_PATH > 默认路径。
func ResolveConfPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(envConfPath); env != "" {
		return env
	}
	return defaultConfPath
}

// applyEnvOverrides 应用环境变量覆盖：敏感信息与部署相关项不进配置文件。
func applyEnvOverrides(bc *conf.Bootstrap) {
	if dsn := os.Getenv(envDatabaseURL); dsn != "" {
		bc.Data.Postgres.DSN = dsn
	}
	// Cloud Run 会注入 $PORT，覆盖监听端口但保留 host。
	if port := os.Getenv(envPort); port != "" {
		bc.Server.HTTP.Addr = replacePort(bc.Server.HTTP.Addr, port)
	}
	if key := os.Getenv(envGeminiKey); key != "" {
		bc.AI.APIKey = key
	}
	if bucket := os.Getenv(envBucket); bucket != "" {
		bc.Storage.Bucket = bucket
	}
}

// replacePort 替换 addr 的端口部分；addr 不含端口时直接拼接。
func replacePort(addr, port string) string {
	if addr == "" {
		return ":" + port
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr + ":" + port
	}
	return net.JoinHostPort(host, port)
}

// loadEnvFiles best-effort 加载 .env 文件，缺失时静默忽略。
func loadEnvFiles(confPath string) {
	dirs := []string{filepath.Dir(confPath), "."}
	seen := map[string]struct{}{}
	var files []string
	for _, dir := range dirs {
		for _, name := range envFileNames {
			path := filepath.Join(dir, name)
			if _, ok := seen[path]; ok {
				continue
			}
			seen[path] = struct{}{}
			if _, err := os.Stat(path); err == nil {
				files = append(files, path)
			}
		}
	}
	if len(files) > 0 {
		_ = godotenv.Load(files...)
	}
}
