// Package model はドメインモデルを定義する。
package model

import "time"

// ProjectStatus はプロジェクトの進行状態を表す列挙型。
// 未定義の値はバリデーションで拒否され、集計で暗黙に別バケットへ
// 丸め込まれることはない。
type ProjectStatus string

const (
	// StatusPlanning は計画中（作成時のデフォルト）。
	StatusPlanning ProjectStatus = "planning"
	// StatusInProgress は進行中。
	StatusInProgress ProjectStatus = "in-progress"
	// StatusCompleted は完了。
	StatusCompleted ProjectStatus = "completed"
	// StatusPaused は一時停止中。
	StatusPaused ProjectStatus = "paused"
)

// Valid はステータスが定義済みの値かどうかを返す。
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusPlanning, StatusInProgress, StatusCompleted, StatusPaused:
		return true
	default:
		return false
	}
}

// Project は90日チャレンジ内の個人プロジェクトを表す。
// user_idは作成時に確定し、以降変更されない。
type Project struct {
	ID           string        `bson:"_id" json:"id"`
	UserID       string        `bson:"user_id" json:"user_id"`
	Title        string        `bson:"title" json:"title"`
	Description  string        `bson:"description" json:"description"`
	TechStack    []string      `bson:"tech_stack" json:"tech_stack"`
	DeployedLink string        `bson:"deployed_link,omitempty" json:"deployed_link,omitempty"`
	GithubLink   string        `bson:"github_link,omitempty" json:"github_link,omitempty"`
	Status       ProjectStatus `bson:"status" json:"status"`
	Month        int           `bson:"month" json:"month"`
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updated_at"`
}

// ProjectPatch は部分更新の入力を表す。nilのフィールドは変更されない。
// user_id、month、created_atは更新対象外。
type ProjectPatch struct {
	Title        *string
	Description  *string
	TechStack    []string
	DeployedLink *string
	GithubLink   *string
	Status       *ProjectStatus
}

// Empty はパッチに変更対象フィールドが1つも含まれないかどうかを返す。
func (p *ProjectPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.TechStack == nil &&
		p.DeployedLink == nil && p.GithubLink == nil && p.Status == nil
}

// ExploreProject は公開フィード用にプロジェクトと作成者情報を結合したビュー。
// 作成者が解決できないプロジェクトは結合段階で除外される。
type ExploreProject struct {
	ID             string        `bson:"_id" json:"id"`
	Title          string        `bson:"title" json:"title"`
	Description    string        `bson:"description" json:"description"`
	TechStack      []string      `bson:"tech_stack" json:"tech_stack"`
	DeployedLink   string        `bson:"deployed_link,omitempty" json:"deployed_link,omitempty"`
	GithubLink     string        `bson:"github_link,omitempty" json:"github_link,omitempty"`
	Status         ProjectStatus `bson:"status" json:"status"`
	Month          int           `bson:"month" json:"month"`
	CreatedAt      time.Time     `bson:"created_at" json:"created_at"`
	CreatorName    string        `bson:"creator_name" json:"creator_name"`
	CreatorPicture string        `bson:"creator_picture" json:"creator_picture"`
}
