// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// セッション情報はSessionに分離されており、ユーザーレコードは
// ログアウトやセッション期限切れでは削除されない。
type User struct {
	ID        string    `bson:"_id" json:"id"`
	Email     string    `bson:"email" json:"email"`
	Name      string    `bson:"name" json:"name"`
	Picture   string    `bson:"picture" json:"picture"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`

	// ChallengeStartDate は初回ログイン時に1度だけ設定される90日チャレンジの開始日。
	// 以降の再ログインでは更新されない。
	ChallengeStartDate *time.Time `bson:"challenge_start_date,omitempty" json:"challenge_start_date,omitempty"`
}

// Session はユーザーのログインセッションを表す。
// トークンは外部ID交換で発行されたopaqueな資格情報で、
// Cookieまたは Authorization: Bearer ヘッダーで運搬される。
type Session struct {
	Token     string    `bson:"_id" json:"-"`
	UserID    string    `bson:"user_id" json:"user_id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Expired はセッションが指定時刻の時点で期限切れかどうかを返す。
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
