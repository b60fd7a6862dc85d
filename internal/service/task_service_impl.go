package service

import (
	"context"
	"time"

	"github.com/alexanderramin/fieldbridge/internal/backend"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

type taskService struct {
	tasks    backend.Tasks
	actor    domain.Actor
	clock    func() time.Time
	observer UseCaseObserver
}

func NewTaskService(tasks backend.Tasks, actor domain.Actor, observers ...UseCaseObserver) TaskService {
	return &taskService{
		tasks:    tasks,
		actor:    actor,
		clock:    time.Now,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *taskService) Create(ctx context.Context, t *domain.Task) (created *domain.Task, err error) {
	fields := map[string]any{"project_id": t.ProjectID}
	defer observe(ctx, s.observer, "task.create", s.clock(), fields, &err)

	draft := *t
	draft.CreatedByID = domain.CoalesceStr(draft.CreatedByID, s.actor.UserID)
	if err := draft.PrepareNew(s.clock()); err != nil {
		return nil, err
	}
	created, err = s.tasks.CreateTask(ctx, &draft)
	if err == nil {
		fields["task_id"] = created.ID
	}
	return created, err
}

func (s *taskService) ListMine(ctx context.Context, statuses ...domain.TaskStatus) ([]*domain.Task, error) {
	if s.actor.UserID == "" {
		return nil, domain.NewValidationError("user_id", "is required to list assigned tasks")
	}
	return s.tasks.ListTasks(ctx, backend.TaskQuery{AssigneeID: s.actor.UserID, Statuses: statuses})
}

func (s *taskService) ListByProject(ctx context.Context, projectID string, statuses ...domain.TaskStatus) ([]*domain.Task, error) {
	return s.tasks.ListTasks(ctx, backend.TaskQuery{ProjectID: projectID, Statuses: statuses})
}

func (s *taskService) Acknowledge(ctx context.Context, id string) (*domain.Task, error) {
	return s.act(ctx, "task.acknowledge", id, s.tasks.AcknowledgeTask)
}

func (s *taskService) Start(ctx context.Context, id string) (*domain.Task, error) {
	return s.act(ctx, "task.start", id, s.tasks.StartTask)
}

func (s *taskService) Complete(ctx context.Context, id string) (*domain.Task, error) {
	return s.act(ctx, "task.complete", id, s.tasks.CompleteTask)
}

func (s *taskService) Block(ctx context.Context, id string) (*domain.Task, error) {
	return s.act(ctx, "task.block", id, s.tasks.BlockTask)
}

func (s *taskService) Unblock(ctx context.Context, id string) (*domain.Task, error) {
	return s.act(ctx, "task.unblock", id, s.tasks.UnblockTask)
}

func (s *taskService) act(ctx context.Context, name, id string, fn func(context.Context, string, domain.Actor) (*domain.Task, error)) (t *domain.Task, err error) {
	fields := map[string]any{"task_id": id, "user_id": s.actor.UserID}
	defer observe(ctx, s.observer, name, s.clock(), fields, &err)
	return fn(ctx, id, s.actor)
}
