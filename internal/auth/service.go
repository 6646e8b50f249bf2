// Package auth は資格情報認証とセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/eventman/internal/model"
	"github.com/hitoshi/eventman/internal/repository"
)

// BcryptCost はパスワードハッシュの固定ワークファクタ。
const BcryptCost = 12

// MetricsRecorder は認証イベントのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordSignup()
	RecordLogin()
	RecordLoginFailure(reason string)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	metrics     MetricsRecorder
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	metrics MetricsRecorder,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		metrics:     metrics,
		config:      config,
	}
}

// Result はサインアップ・サインイン成功時の結果。
// IdentityはレスポンスBodyに、SessionはCookie設定に使う。
type Result struct {
	Identity model.Identity
	Session  *model.Session
}

// SignUp は新規アカウントを作成し、セッションを発行する。
// メールアドレスは小文字に正規化し、パスワードはbcrypt（コスト12）で
// ハッシュ化して保存する。事前の存在チェックは高速パスのUX最適化で、
// 一意性の最終的な保証はストレージ層の制約が担う。並行サインアップで
// 制約違反が返った場合も同じConflictとして扱う。
func (s *Service) SignUp(ctx context.Context, email, password string) (*Result, error) {
	normalized := normalizeEmail(email)

	existing, err := s.userRepo.FindByEmail(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, model.NewUserExistsError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        normalized,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewUserExistsError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.metrics.RecordSignup()
	slog.Info("new user signed up", slog.String("user_id", user.ID))

	return &Result{
		Identity: model.Identity{ID: user.ID, Email: user.Email},
		Session:  session,
	}, nil
}

// SignIn は資格情報を検証し、セッションを発行する。
// 未登録メールとパスワード不一致はどちらも401だが、呼び出し側が
// 区別できるようメッセージは分ける。
func (s *Service) SignIn(ctx context.Context, email, password string) (*Result, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		s.metrics.RecordLoginFailure("unknown_email")
		return nil, model.NewNoUserError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.metrics.RecordLoginFailure("bad_password")
		return nil, model.NewInvalidCredentialsError()
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.metrics.RecordLogin()
	slog.Info("user signed in", slog.String("user_id", user.ID))

	return &Result{
		Identity: model.Identity{ID: user.ID, Email: user.Email},
		Session:  session,
	}, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// normalizeEmail はメールアドレスを比較・保存用に正規化する。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
