// Package project はプロジェクトのCRUDに関するビジネスロジックを提供する。
package project

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/lockin90/internal/model"
	"github.com/hitoshi/lockin90/internal/repository"
	"github.com/hitoshi/lockin90/internal/security"
)

// CreateInput はプロジェクト作成の入力。
type CreateInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	TechStack    []string `json:"tech_stack"`
	DeployedLink string   `json:"deployed_link"`
	GithubLink   string   `json:"github_link"`
	Month        int      `json:"month"`
}

// Service はプロジェクトに関するビジネスロジックを提供する。
// テキストフィールドは保存前にサニタイズされ、リンクURLは
// SSRFガードの静的検証を通過したものだけが保存される。
type Service struct {
	projectRepo repository.ProjectRepository
	sanitizer   security.TextSanitizerService
	ssrfGuard   security.SSRFGuardService

	// now はテストで時刻を固定するためのフック。
	now func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	projectRepo repository.ProjectRepository,
	sanitizer security.TextSanitizerService,
	ssrfGuard security.SSRFGuardService,
) *Service {
	return &Service{
		projectRepo: projectRepo,
		sanitizer:   sanitizer,
		ssrfGuard:   ssrfGuard,
		now:         time.Now,
	}
}

// Create は認証ユーザーのプロジェクトを作成する。
// ステータスは常にplanningで始まり、作成後の変更はUpdateで行う。
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*model.Project, error) {
	title := s.sanitizer.Sanitize(input.Title)
	if title == "" {
		return nil, model.NewMissingFieldError("title")
	}

	description := s.sanitizer.Sanitize(input.Description)
	if description == "" {
		return nil, model.NewMissingFieldError("description")
	}

	techStack := s.sanitizeTechStack(input.TechStack)
	if len(techStack) == 0 {
		return nil, model.NewMissingFieldError("tech_stack")
	}

	if input.Month < 1 || input.Month > 3 {
		return nil, model.NewInvalidMonthError(input.Month)
	}

	if err := s.validateLink(input.DeployedLink); err != nil {
		return nil, err
	}
	if err := s.validateLink(input.GithubLink); err != nil {
		return nil, err
	}

	now := s.now()
	project := &model.Project{
		ID:           uuid.New().String(),
		UserID:       userID,
		Title:        title,
		Description:  description,
		TechStack:    techStack,
		DeployedLink: input.DeployedLink,
		GithubLink:   input.GithubLink,
		Status:       model.StatusPlanning,
		Month:        input.Month,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	slog.Info("project created",
		slog.String("project_id", project.ID),
		slog.String("user_id", userID),
		slog.Int("month", project.Month),
	)
	return project, nil
}

// List は認証ユーザーのプロジェクトをcreated_at降順で返す。
func (s *Service) List(ctx context.Context, userID string, page repository.Page) ([]*model.Project, string, error) {
	projects, nextCursor, err := s.projectRepo.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nextCursor, nil
}

// UpdateInput はプロジェクト部分更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	TechStack    []string `json:"tech_stack"`
	DeployedLink *string  `json:"deployed_link"`
	GithubLink   *string  `json:"github_link"`
	Status       *string  `json:"status"`
}

// Update は認証ユーザーが所有するプロジェクトに部分更新を適用する。
// 存在しない場合と他ユーザー所有の場合は同一のPROJECT_NOT_FOUNDを返す。
// user_id、month、created_atは変更できない。
func (s *Service) Update(ctx context.Context, userID, projectID string, input UpdateInput) (*model.Project, error) {
	patch := &model.ProjectPatch{}

	if input.Title != nil {
		title := s.sanitizer.Sanitize(*input.Title)
		if title == "" {
			return nil, model.NewMissingFieldError("title")
		}
		patch.Title = &title
	}

	if input.Description != nil {
		description := s.sanitizer.Sanitize(*input.Description)
		if description == "" {
			return nil, model.NewMissingFieldError("description")
		}
		patch.Description = &description
	}

	if input.TechStack != nil {
		techStack := s.sanitizeTechStack(input.TechStack)
		if len(techStack) == 0 {
			return nil, model.NewMissingFieldError("tech_stack")
		}
		patch.TechStack = techStack
	}

	if input.DeployedLink != nil {
		if err := s.validateLink(*input.DeployedLink); err != nil {
			return nil, err
		}
		patch.DeployedLink = input.DeployedLink
	}

	if input.GithubLink != nil {
		if err := s.validateLink(*input.GithubLink); err != nil {
			return nil, err
		}
		patch.GithubLink = input.GithubLink
	}

	if input.Status != nil {
		status := model.ProjectStatus(*input.Status)
		if !status.Valid() {
			return nil, model.NewInvalidStatusError(*input.Status)
		}
		patch.Status = &status
	}

	updated, err := s.projectRepo.Update(ctx, projectID, userID, patch, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	if updated == nil {
		return nil, model.NewProjectNotFoundError(projectID)
	}

	slog.Info("project updated",
		slog.String("project_id", projectID),
		slog.String("user_id", userID),
	)
	return updated, nil
}

// Delete は認証ユーザーが所有するプロジェクトを削除する。
// 存在しない場合と他ユーザー所有の場合は同一のPROJECT_NOT_FOUNDを返す。
func (s *Service) Delete(ctx context.Context, userID, projectID string) error {
	deleted, err := s.projectRepo.Delete(ctx, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if !deleted {
		return model.NewProjectNotFoundError(projectID)
	}

	slog.Info("project deleted",
		slog.String("project_id", projectID),
		slog.String("user_id", userID),
	)
	return nil
}

// sanitizeTechStack は各要素をサニタイズし、空になった要素を除外する。
func (s *Service) sanitizeTechStack(raw []string) []string {
	if raw == nil {
		return nil
	}
	cleaned := make([]string, 0, len(raw))
	for _, item := range raw {
		if v := s.sanitizer.Sanitize(item); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	return cleaned
}

// validateLink はリンクURLの安全性を検証する。空文字列はリンク未設定
// （またはクリア）として許可する。
func (s *Service) validateLink(rawURL string) error {
	if rawURL == "" {
		return nil
	}
	if err := s.ssrfGuard.ValidateURL(rawURL); err != nil {
		return model.NewInvalidLinkError(err.Error())
	}
	return nil
}
