package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/bionicotaku/lingo-services-feed/internal/models/po"
	"github.com/bionicotaku/lingo-services-feed/internal/models/vo"
	"github.com/bionicotaku/lingo-services-feed/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// UserRepo 定义用户画像的持久化行为。
type UserRepo interface {
	Upsert(ctx context.Context, sess txmanager.Session, user *po.User) (*po.User, error)
	GetByID(ctx context.Context, sess txmanager.Session, userID string) (*po.User, error)
}

// UserService 封装用户注册 / 画像用例。
type UserService struct {
	users    UserRepo
	embedder Embedder
	log      *log.Helper
}

// NewUserService 构造用户服务。
func NewUserService(users UserRepo, embedder Embedder, logger log.Logger) *UserService {
	return &UserService{
		users:    users,
		embedder: embedder,
		log:      log.NewHelper(logger),
	}
}

// OnboardInput 表示注册 / 画像更新的输入。
type OnboardInput struct {
	UserID    string
	Username  string
	Email     string
	FullName  *string
	Bio       *string
	AvatarURL *string
	Interests []string
}

// Onboard 写入或刷新用户画像。
// 声明了兴趣时把兴趣文本向量化为画像向量，作为冷启动兜底；
// 向量化失败不阻塞注册，只是少了兜底信号。
func (s *UserService) Onboard(ctx context.Context, input OnboardInput) (*vo.Profile, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" {
		return nil, errors.BadRequest(ReasonValidationFailed, "username must not be empty")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.BadRequest(ReasonValidationFailed, "a valid email is required")
	}

	var embedding []float32
	if interests := joinInterests(input.Interests); interests != "" {
		vec, err := s.embedder.EmbedText(ctx, interests)
		if err != nil {
			s.log.WithContext(ctx).Warnf("embed interests failed: user_id=%s err=%v", input.UserID, err)
		} else {
			embedding = vec
		}
	}

	saved, err := s.users.Upsert(ctx, nil, &po.User{
		UserID:    input.UserID,
		Username:  username,
		Email:     email,
		FullName:  input.FullName,
		Bio:       input.Bio,
		AvatarURL: input.AvatarURL,
		Embedding: embedding,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.GatewayTimeout(ReasonQueryTimeout, "onboard timeout")
		}
		s.log.WithContext(ctx).Errorf("onboard failed: user_id=%s err=%v", input.UserID, err)
		return nil, errors.InternalServer(ReasonPersistenceFailed, "failed to onboard user").WithCause(fmt.Errorf("onboard: %w", err))
	}

	s.log.WithContext(ctx).Infof("Onboard: user_id=%s username=%s has_embedding=%t", saved.UserID, saved.Username, len(saved.Embedding) > 0)
	return vo.NewProfile(saved), nil
}

// GetProfile 返回用户画像。
func (s *UserService) GetProfile(ctx context.Context, userID string) (*vo.Profile, error) {
	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, errors.NotFound(ReasonUserNotFound, "user not found")
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.GatewayTimeout(ReasonQueryTimeout, "get profile timeout")
		}
		s.log.WithContext(ctx).Errorf("get profile failed: user_id=%s err=%v", userID, err)
		return nil, errors.InternalServer(ReasonPersistenceFailed, "failed to get profile").WithCause(fmt.Errorf("get profile: %w", err))
	}
	return vo.NewProfile(user), nil
}

func joinInterests(interests []string) string {
	cleaned := make([]string, 0, len(interests))
	for _, it := range interests {
		if v := strings.TrimSpace(it); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	return strings.Join(cleaned, ", ")
}
