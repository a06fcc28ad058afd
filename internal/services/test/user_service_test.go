package services_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/bionicotaku/lingo-services-feed/internal/models/po"
	"github.com/bionicotaku/lingo-services-feed/internal/repositories"
	"github.com/bionicotaku/lingo-services-feed/internal/services"

	"github.com/bionicotaku/lingo-utils/txmanager"
	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// stubUserRepo 以内存映射模拟用户表。
type stubUserRepo struct {
	users map[string]*po.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[string]*po.User{}}
}

func (s *stubUserRepo) Upsert(_ context.Context, _ txmanager.Session, user *po.User) (*po.User, error) {
	copied := *user
	if existing, ok := s.users[user.UserID]; ok && copied.Embedding == nil {
		copied.Embedding = existing.Embedding
	}
	s.users[user.UserID] = &copied
	return &copied, nil
}

func (s *stubUserRepo) GetByID(_ context.Context, _ txmanager.Session, userID string) (*po.User, error) {
	if u, ok := s.users[userID]; ok {
		return u, nil
	}
	return nil, repositories.ErrUserNotFound
}

// stubEmbedder 返回固定向量，可配置为失败。
type stubEmbedder struct {
	vector []float32
	err    error
	calls  int
	lastIn string
}

func (s *stubEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	s.calls++
	s.lastIn = text
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}

func newUserService(repo *stubUserRepo, embedder *stubEmbedder) *services.UserService {
	return services.NewUserService(repo, embedder, log.NewStdLogger(io.Discard))
}

func TestOnboardStoresProfileEmbedding(t *testing.T) {
	repo := newStubUserRepo()
	embedder := &stubEmbedder{vector: []float32{0.1, 0.2}}
	svc := newUserService(repo, embedder)

	profile, err := svc.Onboard(context.Background(), services.OnboardInput{
		UserID:    "user-1",
		Username:  "alice",
		Email:     "alice@example.com",
		Interests: []string{"cooking", "travel"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !profile.HasEmbedding {
		t.Fatal("expected profile embedding from declared interests")
	}
	if embedder.calls != 1 {
		t.Fatalf("expected 1 embed call, got %d", embedder.calls)
	}
	if embedder.lastIn != "cooking, travel" {
		t.Fatalf("unexpected embedding input: %q", embedder.lastIn)
	}
}

func TestOnboardWithoutInterestsSkipsEmbedding(t *testing.T) {
	repo := newStubUserRepo()
	embedder := &stubEmbedder{vector: []float32{0.1}}
	svc := newUserService(repo, embedder)

	profile, err := svc.Onboard(context.Background(), services.OnboardInput{
		UserID:   "user-1",
		Username: "alice",
		Email:    "alice@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.HasEmbedding {
		t.Fatal("expected no embedding without interests")
	}
	if embedder.calls != 0 {
		t.Fatalf("embedder must not be called, got %d calls", embedder.calls)
	}
}

func TestOnboardSurvivesEmbedderFailure(t *testing.T) {
	repo := newStubUserRepo()
	embedder := &stubEmbedder{err: errors.New("quota exceeded")}
	svc := newUserService(repo, embedder)

	profile, err := svc.Onboard(context.Background(), services.OnboardInput{
		UserID:    "user-1",
		Username:  "alice",
		Email:     "alice@example.com",
		Interests: []string{"cooking"},
	})
	if err != nil {
		t.Fatalf("embedder failure must not block onboarding: %v", err)
	}
	if profile.HasEmbedding {
		t.Fatal("failed embedding must not be stored")
	}
	if _, ok := repo.users["user-1"]; !ok {
		t.Fatal("user must be persisted despite embedder failure")
	}
}

func TestOnboardValidation(t *testing.T) {
	svc := newUserService(newStubUserRepo(), &stubEmbedder{})

	_, err := svc.Onboard(context.Background(), services.OnboardInput{
		UserID: "user-1", Username: "  ", Email: "alice@example.com",
	})
	if kerrors.Reason(err) != services.ReasonValidationFailed {
		t.Fatalf("blank username: unexpected reason %s", kerrors.Reason(err))
	}

	_, err = svc.Onboard(context.Background(), services.OnboardInput{
		UserID: "user-1", Username: "alice", Email: "not-an-email",
	})
	if kerrors.Reason(err) != services.ReasonValidationFailed {
		t.Fatalf("invalid email: unexpected reason %s", kerrors.Reason(err))
	}
}

func TestGetProfileNotFound(t *testing.T) {
	svc := newUserService(newStubUserRepo(), &stubEmbedder{})

	_, err := svc.GetProfile(context.Background(), "ghost")
	if err == nil {
		t.Fatal("expected error")
	}
	if kerrors.Reason(err) != services.ReasonUserNotFound {
		t.Fatalf("unexpected reason: %s", kerrors.Reason(err))
	}
}
