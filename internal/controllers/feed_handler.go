package controllers

import (
	"github.com/bionicotaku/lingo-services-feed/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-feed/internal/metadata"
	"github.com/bionicotaku/lingo-services-feed/internal/services"
	"github.com/bionicotaku/lingo-services-feed/internal/views"

	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// FeedHandler 负责信息流相关的 HTTP 请求。
type FeedHandler struct {
	*BaseHandler
	svc *services.FeedService
}

// NewFeedHandler 构造信息流 Handler。
func NewFeedHandler(svc *services.FeedService, base *BaseHandler) *FeedHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	return &FeedHandler{BaseHandler: base, svc: svc}
}

// Register 挂载信息流路由。
func (h *FeedHandler) Register(r *khttp.Router) {
	r.GET("/feed", h.GetFeed)
}

// GetFeed 处理 GET /v1/feed。匿名请求合法，返回按时间倒序的兜底流。
func (h *FeedHandler) GetFeed(ctx khttp.Context) error {
	meta := h.ExtractMetadata(ctx.Request())
	subject, _ := meta.Subject()
	limit := dto.ParseLimit(ctx.Query())

	timeoutCtx, cancel := h.WithTimeout(ctx, HandlerTypeQuery)
	defer cancel()
	timeoutCtx = metadata.Inject(timeoutCtx, meta)

	items, err := h.svc.GetFeed(timeoutCtx, subject, limit)
	if err != nil {
		return err
	}
	return ctx.Result(200, views.NewFeedResponse(items))
}
