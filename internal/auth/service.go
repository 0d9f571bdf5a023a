package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/lockin90/internal/model"
	"github.com/hitoshi/lockin90/internal/repository"
)

// ExchangeProvider は外部ID交換のインターフェース。
// テストではモック実装に差し替える。
type ExchangeProvider interface {
	// Exchange は外部セッションIDをユーザー情報に交換する。
	Exchange(ctx context.Context, sessionID string) (*IdentityPayload, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	// SessionTTL はセッションの有効期間。
	SessionTTL time.Duration
}

// Service はセッション認証に関するビジネスロジックを提供する。
// セッションはユーザーとは独立したレコードとして管理されるため、
// ログアウトや期限切れでユーザーレコードが消えることはない。
type Service struct {
	exchange    ExchangeProvider
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	config      ServiceConfig

	// now はテストで時刻を固定するためのフック。
	now func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	exchange ExchangeProvider,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		exchange:    exchange,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		config:      config,
		now:         time.Now,
	}
}

// CreateSession は外部セッションIDを検証し、ログインセッションを発行する。
// 未登録ユーザーの場合はchallenge_start_date=nowでユーザーを自動作成する。
// 登録済みユーザーの場合はname/pictureを更新し、challenge_start_dateは保持する。
// いずれの場合も直前のセッションは破棄される（最終ログイン優先）。
func (s *Service) CreateSession(ctx context.Context, externalSessionID string) (*model.User, *model.Session, error) {
	if externalSessionID == "" {
		return nil, nil, model.NewSessionIDRequiredError()
	}

	// 1. 外部ID交換でユーザー情報を取得
	payload, err := s.exchange.Exchange(ctx, externalSessionID)
	if err != nil {
		// トランスポートエラーの詳細はログのみに残し、呼び出し元には401を返す
		slog.Warn("identity exchange failed", slog.String("error", err.Error()))
		return nil, nil, model.NewAuthExchangeFailedError()
	}

	now := s.now()

	// 2. emailで既存ユーザーを検索
	user, err := s.userRepo.FindByEmail(ctx, payload.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if user == nil {
		// 3a. 新規ユーザー: 初回ログイン時刻がチャレンジ開始日になる
		start := now
		user = &model.User{
			ID:                 uuid.New().String(),
			Email:              payload.Email,
			Name:               payload.Name,
			Picture:            payload.Picture,
			CreatedAt:          now,
			UpdatedAt:          now,
			ChallengeStartDate: &start,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, nil, fmt.Errorf("failed to create user: %w", err)
		}
		slog.Info("new user created",
			slog.String("user_id", user.ID),
			slog.String("email", user.Email),
		)
	} else {
		// 3b. 既存ユーザー: プロフィールのみ更新（challenge_start_dateは保持）
		user.Name = payload.Name
		user.Picture = payload.Picture
		user.UpdatedAt = now
		if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
			return nil, nil, fmt.Errorf("failed to update user profile: %w", err)
		}
		slog.Info("existing user logged in", slog.String("user_id", user.ID))
	}

	// 4. 既存セッションを破棄し、新しいセッションを発行
	if err := s.sessionRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return nil, nil, fmt.Errorf("failed to revoke previous sessions: %w", err)
	}

	session := &model.Session{
		Token:     payload.SessionToken,
		UserID:    user.ID,
		ExpiresAt: now.Add(s.config.SessionTTL),
		CreatedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	return user, session, nil
}

// Resolve はセッショントークンから認証済みユーザーを解決する。
// 認証できない場合（トークンなし、未知のトークン、期限切れ、所有者不在）は
// エラーではなくnilを返す。認証必須かどうかは呼び出し側が決める。
func (s *Service) Resolve(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}

	session, err := s.sessionRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	if session.Expired(s.now()) {
		// TTLモニターの削除は非同期のため、観測した期限切れはここで破棄する
		if err := s.sessionRepo.DeleteByToken(ctx, token); err != nil {
			slog.Error("failed to delete expired session", slog.String("error", err.Error()))
		}
		return nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session user: %w", err)
	}
	if user == nil {
		// 退会済みユーザーの残留セッション
		if err := s.sessionRepo.DeleteByToken(ctx, token); err != nil {
			slog.Error("failed to delete orphaned session", slog.String("error", err.Error()))
		}
		return nil, nil
	}

	return user, nil
}

// Logout はセッションを破棄する。ユーザーレコードは削除しない。
// トークンが空または無効でも成功として扱う。
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessionRepo.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	slog.Info("user logged out")
	return nil
}
