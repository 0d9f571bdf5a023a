package stats

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/hitoshi/lockin90/internal/model"
	"github.com/hitoshi/lockin90/internal/repository"
)

// --- モック ---

type mockProjectRepo struct {
	listAllByUserFunc func(ctx context.Context, userID string) ([]*model.Project, error)
	listExploreFunc   func(ctx context.Context, page repository.Page) ([]*model.ExploreProject, string, error)
}

func (m *mockProjectRepo) Create(ctx context.Context, project *model.Project) error {
	panic("not implemented")
}

func (m *mockProjectRepo) ListByUser(ctx context.Context, userID string, page repository.Page) ([]*model.Project, string, error) {
	panic("not implemented")
}

func (m *mockProjectRepo) ListAllByUser(ctx context.Context, userID string) ([]*model.Project, error) {
	return m.listAllByUserFunc(ctx, userID)
}

func (m *mockProjectRepo) Update(ctx context.Context, id, userID string, patch *model.ProjectPatch, updatedAt time.Time) (*model.Project, error) {
	panic("not implemented")
}

func (m *mockProjectRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	panic("not implemented")
}

func (m *mockProjectRepo) ListExplore(ctx context.Context, page repository.Page) ([]*model.ExploreProject, string, error) {
	return m.listExploreFunc(ctx, page)
}

func newTestService(repo *mockProjectRepo, now time.Time) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return now }
	return svc
}

func userWithStart(start time.Time) *model.User {
	return &model.User{
		ID:                 "user-1",
		Email:              "taro@example.com",
		ChallengeStartDate: &start,
	}
}

// 開始5日後のダッシュボード集計を検証
func TestService_BuildDashboard_FiveDaysIn(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := start.Add(5*24*time.Hour + 6*time.Hour) // 5日と6時間後 → 床関数で5日

	repo := &mockProjectRepo{
		listAllByUserFunc: func(ctx context.Context, userID string) ([]*model.Project, error) {
			return []*model.Project{
				{ID: "p1", Month: 1, Status: model.StatusCompleted},
				{ID: "p2", Month: 1, Status: model.StatusInProgress},
				{ID: "p3", Month: 1, Status: model.StatusPaused},
				{ID: "p4", Month: 2, Status: model.StatusPlanning},
			}, nil
		},
	}
	svc := newTestService(repo, now)

	dashboard, err := svc.BuildDashboard(context.Background(), userWithStart(start))
	if err != nil {
		t.Fatalf("BuildDashboard() error = %v", err)
	}

	if dashboard.DaysElapsed != 5 {
		t.Errorf("days_elapsed = %d, want 5", dashboard.DaysElapsed)
	}
	if dashboard.DaysRemaining != 85 {
		t.Errorf("days_remaining = %d, want 85", dashboard.DaysRemaining)
	}
	wantProgress := 5.0 / 90 * 100
	if math.Abs(dashboard.ChallengeProgress-wantProgress) > 1e-9 {
		t.Errorf("challenge_progress = %f, want %f", dashboard.ChallengeProgress, wantProgress)
	}
	if dashboard.TotalProjects != 4 {
		t.Errorf("total_projects = %d, want 4", dashboard.TotalProjects)
	}

	m1 := dashboard.MonthStats["month_1"]
	if m1.Total != 3 || m1.Completed != 1 || m1.InProgress != 1 || m1.Paused != 1 || m1.Planning != 0 {
		t.Errorf("month_1 = %+v", m1)
	}
	m2 := dashboard.MonthStats["month_2"]
	if m2.Total != 1 || m2.Planning != 1 {
		t.Errorf("month_2 = %+v", m2)
	}
	m3 := dashboard.MonthStats["month_3"]
	if m3.Total != 0 {
		t.Errorf("month_3 = %+v", m3)
	}
	if len(dashboard.Projects) != 4 {
		t.Errorf("projects count = %d, want 4", len(dashboard.Projects))
	}
}

// 90日経過後は残り0日・進捗100%で頭打ちになることを検証
func TestService_BuildDashboard_AfterChallengeEnds(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start.Add(120 * 24 * time.Hour)

	repo := &mockProjectRepo{
		listAllByUserFunc: func(ctx context.Context, userID string) ([]*model.Project, error) {
			return nil, nil
		},
	}
	svc := newTestService(repo, now)

	dashboard, err := svc.BuildDashboard(context.Background(), userWithStart(start))
	if err != nil {
		t.Fatalf("BuildDashboard() error = %v", err)
	}
	if dashboard.DaysElapsed != 120 {
		t.Errorf("days_elapsed = %d, want 120", dashboard.DaysElapsed)
	}
	if dashboard.DaysRemaining != 0 {
		t.Errorf("days_remaining = %d, want 0", dashboard.DaysRemaining)
	}
	if dashboard.ChallengeProgress != 100 {
		t.Errorf("challenge_progress = %f, want 100", dashboard.ChallengeProgress)
	}
	if dashboard.TotalProjects != 0 {
		t.Errorf("total_projects = %d, want 0", dashboard.TotalProjects)
	}
}

// 開始日未設定のユーザーは経過0日として扱われることを検証
func TestService_BuildDashboard_NoStartDate(t *testing.T) {
	repo := &mockProjectRepo{
		listAllByUserFunc: func(ctx context.Context, userID string) ([]*model.Project, error) {
			return nil, nil
		},
	}
	svc := newTestService(repo, time.Now())

	user := &model.User{ID: "user-1"}
	dashboard, err := svc.BuildDashboard(context.Background(), user)
	if err != nil {
		t.Fatalf("BuildDashboard() error = %v", err)
	}
	if dashboard.DaysElapsed != 0 {
		t.Errorf("days_elapsed = %d, want 0", dashboard.DaysElapsed)
	}
	if dashboard.DaysRemaining != 90 {
		t.Errorf("days_remaining = %d, want 90", dashboard.DaysRemaining)
	}
	if dashboard.ChallengeProgress != 0 {
		t.Errorf("challenge_progress = %f, want 0", dashboard.ChallengeProgress)
	}
}

// 公開フィードがリポジトリへ委譲されることを検証
func TestService_Explore(t *testing.T) {
	repo := &mockProjectRepo{
		listExploreFunc: func(ctx context.Context, page repository.Page) ([]*model.ExploreProject, string, error) {
			return []*model.ExploreProject{
				{ID: "p1", CreatorName: "Taro"},
			}, "next-1", nil
		},
	}
	svc := newTestService(repo, time.Now())

	projects, next, err := svc.Explore(context.Background(), repository.Page{})
	if err != nil {
		t.Fatalf("Explore() error = %v", err)
	}
	if len(projects) != 1 || projects[0].CreatorName != "Taro" {
		t.Errorf("projects = %v", projects)
	}
	if next != "next-1" {
		t.Errorf("next cursor = %q", next)
	}
}
