package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/simgebenzerr/planner-core/internal/domain/entities"
	"github.com/simgebenzerr/planner-core/internal/infrastructure/logger"
	"github.com/simgebenzerr/planner-core/internal/ports"
)

// TaskService handles the task store operations. Reads are served as
// due-ascending snapshots; subscribers receive a fresh snapshot after every
// mutation so active observers never have to re-issue their query.
type TaskService struct {
	taskRepo ports.TaskRepository
	logger   *logger.Logger

	mu          sync.Mutex
	subscribers map[int]func([]*entities.Task)
	nextSubID   int
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo ports.TaskRepository, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		logger:      logger,
		subscribers: make(map[int]func([]*entities.Task)),
	}
}

// CreateTask creates a new task. The store accepts any input, including an
// empty title; the required-title rule is enforced at the form boundary.
func (s *TaskService) CreateTask(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error) {
	task := entities.NewTask(req.Title, req.Note, req.Due)

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Infow("Task created", "task_id", task.ID, "title", task.Title, "due", task.Due)

	s.publish(ctx)
	return task, nil
}

// GetTask retrieves a task by ID
func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("task not found: %w", err)
	}

	return task, nil
}

// UpdateTask mutates task fields in place. Last writer wins; there is no
// versioning or conflict detection in this single-writer system.
func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, req ports.UpdateTaskRequest) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("task not found: %w", err)
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Note != nil {
		task.Note = *req.Note
	}
	if req.Due != nil {
		task.Due = *req.Due
	}
	if req.IsCompleted != nil {
		task.IsCompleted = *req.IsCompleted
	}

	task.UpdatedAt = time.Now()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Infow("Task updated", "task_id", task.ID, "title", task.Title)

	s.publish(ctx)
	return task, nil
}

// ToggleTask flips a task's completion flag
func (s *TaskService) ToggleTask(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("task not found: %w", err)
	}

	task.ToggleCompleted()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Infow("Task completion toggled", "task_id", task.ID, "is_completed", task.IsCompleted)

	s.publish(ctx)
	return task, nil
}

// DeleteTask removes a task permanently. A previously scheduled alert for
// the task is left in place; cancellation is a separate, explicit call.
func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if _, err := s.taskRepo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("task not found: %w", err)
	}

	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.Infow("Task deleted", "task_id", id)

	s.publish(ctx)
	return nil
}

// ListTasks returns all tasks ordered by due timestamp ascending
func (s *TaskService) ListTasks(ctx context.Context) ([]*entities.Task, error) {
	tasks, err := s.taskRepo.ListByDue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// Subscribe registers fn to receive a due-ascending snapshot after every
// mutation. The returned function unsubscribes.
func (s *TaskService) Subscribe(fn func(snapshot []*entities.Task)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *TaskService) publish(ctx context.Context) {
	snapshot, err := s.taskRepo.ListByDue(ctx)
	if err != nil {
		s.logger.LogBackgroundSyncError("task_snapshot", err)
		return
	}

	s.mu.Lock()
	fns := make([]func([]*entities.Task), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
