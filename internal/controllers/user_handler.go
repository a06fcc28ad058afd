package controllers

import (
	"github.com/bionicotaku/lingo-services-feed/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-feed/internal/metadata"
	"github.com/bionicotaku/lingo-services-feed/internal/services"
	"github.com/bionicotaku/lingo-services-feed/internal/views"

	"github.com/go-kratos/kratos/v2/errors"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// UserHandler 负责用户注册 / 画像相关的 HTTP 请求。
type UserHandler struct {
	*BaseHandler
	svc *services.UserService
}

// NewUserHandler 构造用户 Handler。
func NewUserHandler(svc *services.UserService, base *BaseHandler) *UserHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	return &UserHandler{BaseHandler: base, svc: svc}
}

// Register 挂载用户路由。
func (h *UserHandler) Register(r *khttp.Router) {
	r.POST("/users/onboarding", h.Onboard)
	r.GET("/users/me", h.GetProfile)
}

// Onboard 处理 POST /v1/users/onboarding。
func (h *UserHandler) Onboard(ctx khttp.Context) error {
	meta := h.ExtractMetadata(ctx.Request())
	subject, ok := meta.Subject()
	if !ok {
		return errors.Unauthorized(services.ReasonUnauthenticated, "missing user identity")
	}

	var req dto.OnboardRequest
	if err := ctx.Bind(&req); err != nil {
		return errors.BadRequest(services.ReasonValidationFailed, err.Error())
	}

	timeoutCtx, cancel := h.WithTimeout(ctx, HandlerTypeCommand)
	defer cancel()
	timeoutCtx = metadata.Inject(timeoutCtx, meta)

	profile, err := h.svc.Onboard(timeoutCtx, req.ToOnboardInput(subject))
	if err != nil {
		return err
	}
	return ctx.Result(200, views.NewProfileResponse(profile))
}

// GetProfile 处理 GET /v1/users/me。
func (h *UserHandler) GetProfile(ctx khttp.Context) error {
	meta := h.ExtractMetadata(ctx.Request())
	subject, ok := meta.Subject()
	if !ok {
		return errors.Unauthorized(services.ReasonUnauthenticated, "missing user identity")
	}

	timeoutCtx, cancel := h.WithTimeout(ctx, HandlerTypeQuery)
	defer cancel()
	timeoutCtx = metadata.Inject(timeoutCtx, meta)

	profile, err := h.svc.GetProfile(timeoutCtx, subject)
	if err != nil {
		return err
	}
	return ctx.Result(200, views.NewProfileResponse(profile))
}
