// Package metadata 提供 HandlerMetadata 在 Context 中的存取工具，供控制器与服务层共享。
package metadata

import (
	"context"
	"strings"
)

// HandlerMetadata 描述从请求头或上游网关解析出的上下文信息。
// UserID 是身份提供方颁发的外部主体标识（非本服务生成）。
type HandlerMetadata struct {
	UserID string
}

// IsZero 判断 Metadata 是否为空。
func (m HandlerMetadata) IsZero() bool {
	return m.UserID == ""
}

// Subject 返回去除空白后的用户主体标识；空串表示匿名请求。
func (m HandlerMetadata) Subject() (string, bool) {
	id := strings.TrimSpace(m.UserID)
	return id, id != ""
}

type ctxKey struct{}

// Inject 将 HandlerMetadata 注入 Context。
func Inject(ctx context.Context, meta HandlerMetadata) context.Context {
	if meta.IsZero() {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, meta)
}

// FromContext 读取上游注入的 HandlerMetadata。
func FromContext(ctx context.Context) (HandlerMetadata, bool) {
	if ctx == nil {
		return HandlerMetadata{}, false
	}
	meta, ok := ctx.Value(ctxKey{}).(HandlerMetadata)
	return meta, ok
}
