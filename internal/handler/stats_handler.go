package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/lockin90/internal/middleware"
	"github.com/hitoshi/lockin90/internal/model"
	"github.com/hitoshi/lockin90/internal/repository"
	"github.com/hitoshi/lockin90/internal/stats"
)

// StatsServiceInterface は集計ハンドラーが必要とするサービスインターフェース。
type StatsServiceInterface interface {
	BuildDashboard(ctx context.Context, user *model.User) (*stats.Dashboard, error)
	Explore(ctx context.Context, page repository.Page) ([]*model.ExploreProject, string, error)
}

// StatsHandler はダッシュボードと公開フィードのHTTPハンドラー。
type StatsHandler struct {
	service StatsServiceInterface
}

// NewStatsHandler はStatsHandlerを生成する。
func NewStatsHandler(service StatsServiceInterface) *StatsHandler {
	return &StatsHandler{service: service}
}

// exploreResponse は公開フィードのAPIレスポンス。
type exploreResponse struct {
	Projects   []*model.ExploreProject `json:"projects"`
	NextCursor string                  `json:"next_cursor"`
}

// Dashboard は認証ユーザーのチャレンジ進捗を返す。
// GET /api/dashboard
func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	dashboard, err := h.service.BuildDashboard(r.Context(), user)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if dashboard.Projects == nil {
		dashboard.Projects = []*model.Project{}
	}

	writeJSON(w, http.StatusOK, dashboard)
}

// Explore は全ユーザーのプロジェクトを作成者情報付きで返す。
// GET /api/projects/explore （認証不要）
func (h *StatsHandler) Explore(w http.ResponseWriter, r *http.Request) {
	projects, nextCursor, err := h.service.Explore(r.Context(), pageFromQuery(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if projects == nil {
		projects = []*model.ExploreProject{}
	}

	writeJSON(w, http.StatusOK, exploreResponse{
		Projects:   projects,
		NextCursor: nextCursor,
	})
}
