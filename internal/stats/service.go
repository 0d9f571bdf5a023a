// Package stats はダッシュボード集計と公開フィードを提供する。
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/lockin90/internal/model"
	"github.com/hitoshi/lockin90/internal/repository"
)

// challengeDays はチャレンジ期間の日数。
const challengeDays = 90

// MonthStats は1ヶ月分のプロジェクト集計。
// ステータスは列挙型の値ごとに明示的なバケットを持ち、
// 未定義ステータスが暗黙に丸め込まれることはない。
type MonthStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	Planning   int `json:"planning"`
	Paused     int `json:"paused"`
}

// Dashboard は認証ユーザーのチャレンジ進捗ビュー。
type Dashboard struct {
	User              *model.User            `json:"user"`
	DaysElapsed       int                    `json:"days_elapsed"`
	DaysRemaining     int                    `json:"days_remaining"`
	ChallengeProgress float64                `json:"challenge_progress"`
	TotalProjects     int                    `json:"total_projects"`
	MonthStats        map[string]*MonthStats `json:"month_stats"`
	Projects          []*model.Project       `json:"projects"`
}

// Service はダッシュボード集計と公開フィードのビジネスロジックを提供する。
type Service struct {
	projectRepo repository.ProjectRepository

	// now はテストで時刻を固定するためのフック。
	now func() time.Time
}

// NewService はServiceを生成する。
func NewService(projectRepo repository.ProjectRepository) *Service {
	return &Service{
		projectRepo: projectRepo,
		now:         time.Now,
	}
}

// BuildDashboard は認証ユーザーのダッシュボードを構築する。
// 経過日数はチャレンジ開始日からの床関数で計算し、開始日未設定の
// ユーザー（通常は存在しない）は経過0日として扱う。
func (s *Service) BuildDashboard(ctx context.Context, user *model.User) (*Dashboard, error) {
	projects, err := s.projectRepo.ListAllByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects for dashboard: %w", err)
	}

	daysElapsed := 0
	if user.ChallengeStartDate != nil {
		elapsed := s.now().Sub(*user.ChallengeStartDate)
		if elapsed > 0 {
			daysElapsed = int(elapsed.Hours() / 24)
		}
	}

	daysRemaining := challengeDays - daysElapsed
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	progress := float64(daysElapsed) / challengeDays * 100
	if progress > 100 {
		progress = 100
	}

	monthStats := map[string]*MonthStats{
		"month_1": {},
		"month_2": {},
		"month_3": {},
	}
	for _, p := range projects {
		stats, ok := monthStats[fmt.Sprintf("month_%d", p.Month)]
		if !ok {
			// monthは作成時に1..3へ検証済み
			continue
		}
		stats.Total++
		switch p.Status {
		case model.StatusCompleted:
			stats.Completed++
		case model.StatusInProgress:
			stats.InProgress++
		case model.StatusPlanning:
			stats.Planning++
		case model.StatusPaused:
			stats.Paused++
		}
	}

	return &Dashboard{
		User:              user,
		DaysElapsed:       daysElapsed,
		DaysRemaining:     daysRemaining,
		ChallengeProgress: progress,
		TotalProjects:     len(projects),
		MonthStats:        monthStats,
		Projects:          projects,
	}, nil
}

// Explore は全ユーザーのプロジェクトを作成者情報付きで返す公開フィード。
// 作成者が退会済みのプロジェクトは結合段階で除外される。
func (s *Service) Explore(ctx context.Context, page repository.Page) ([]*model.ExploreProject, string, error) {
	projects, nextCursor, err := s.projectRepo.ListExplore(ctx, page)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list explore feed: %w", err)
	}
	return projects, nextCursor, nil
}
