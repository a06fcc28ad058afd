// Package controllers 实现 HTTP 传输层：路由注册、请求解析、身份提取。
package controllers

import "github.com/google/wire"

// ProviderSet exposes controller/handler constructors for DI.
var ProviderSet = wire.NewSet(
	NewHandlerTimeouts,
	NewBaseHandler,
	NewUserHandler,
	NewVideoHandler,
	NewFeedHandler,
	NewInteractionHandler,
)
