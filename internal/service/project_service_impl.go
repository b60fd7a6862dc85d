package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/backend"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

type projectService struct {
	projects backend.Projects
	actor    domain.Actor
	clock    func() time.Time
	observer UseCaseObserver
}

func NewProjectService(projects backend.Projects, actor domain.Actor, observers ...UseCaseObserver) ProjectService {
	return &projectService{
		projects: projects,
		actor:    actor,
		clock:    time.Now,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *projectService) CreateDraft(ctx context.Context, req app.CreateDraftRequest) (p *domain.Project, err error) {
	fields := map[string]any{"name": req.Name}
	defer observe(ctx, s.observer, "project.create_draft", s.clock(), fields, &err)

	draft := &domain.Project{
		Name:          req.Name,
		Description:   req.Description,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		ClientName:    req.ClientName,
		ContractValue: req.ContractValue,
		CreatedByID:   s.actor.UserID,
		CreatedByName: s.actor.Name,
	}
	if err := draft.PrepareDraft(s.clock()); err != nil {
		return nil, err
	}
	p, err = s.projects.CreateProject(ctx, draft, domain.CoalesceStr(req.IdempotencyKey, uuid.New().String()))
	if err != nil {
		return nil, err
	}
	fields["project_id"] = p.ID
	return p, nil
}

func (s *projectService) Publish(ctx context.Context, projectID string, to domain.ProjectStatus) (*domain.Project, error) {
	current, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := current.Publish(to, s.clock()); err != nil {
		return nil, err
	}
	return s.projects.PublishProject(ctx, projectID, to)
}

func (s *projectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.GetProject(ctx, id)
}

func (s *projectService) List(ctx context.Context, statuses ...domain.ProjectStatus) ([]*domain.Project, error) {
	return s.projects.ListProjects(ctx, statuses...)
}
