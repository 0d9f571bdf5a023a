// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/lockin90/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はemail（ビジネスキー）でユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// UpdateProfile は再ログイン時のプロフィール更新を行う。
	// name、picture、updated_atのみを上書きし、challenge_start_dateとcreated_atは保持する。
	UpdateProfile(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 対象が存在しない場合はエラーを返す。プロジェクトはカスケード削除しない。
	DeleteByID(ctx context.Context, id string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。同一トークンの既存セッションは置き換える。
	Create(ctx context.Context, session *model.Session) error

	// FindByToken は指定トークンのセッションを取得する。見つからない場合はnilを返す。
	// 期限切れ判定は呼び出し側で行う（TTLモニターの削除は非同期のため）。
	FindByToken(ctx context.Context, token string) (*model.Session, error)

	// DeleteByToken は指定トークンのセッションを削除する。
	DeleteByToken(ctx context.Context, token string) error

	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// ProjectRepository はプロジェクトデータの永続化インターフェース。
type ProjectRepository interface {
	// Create はプロジェクトを作成する。
	Create(ctx context.Context, project *model.Project) error

	// ListByUser は指定ユーザーのプロジェクトをcreated_at降順で返す。
	// カーソルページネーションに対応し、次ページのカーソル（最終ページは空文字）を返す。
	ListByUser(ctx context.Context, userID string, page Page) ([]*model.Project, string, error)

	// ListAllByUser は指定ユーザーの全プロジェクトをcreated_at降順で返す。
	// ダッシュボード集計用。上限listAllCap件で打ち切る。
	ListAllByUser(ctx context.Context, userID string) ([]*model.Project, error)

	// Update はid AND user_idが一致するプロジェクトにパッチを適用し、更新後のレコードを返す。
	// 一致するプロジェクトがない場合はnilを返す（不存在と非所有は区別しない）。
	Update(ctx context.Context, id, userID string, patch *model.ProjectPatch, updatedAt time.Time) (*model.Project, error)

	// Delete はid AND user_idが一致するプロジェクトを削除する。
	// 削除が行われたかどうかを返す。
	Delete(ctx context.Context, id, userID string) (bool, error)

	// ListExplore は全ユーザーのプロジェクトを作成者情報付きでcreated_at降順で返す。
	// 作成者が存在しないプロジェクトは除外される（内部結合）。
	ListExplore(ctx context.Context, page Page) ([]*model.ExploreProject, string, error)
}
