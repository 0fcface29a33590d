package services

import (
	"context"
	"fmt"

	"github.com/simgebenzerr/planner-core/internal/domain/entities"
)

// AnalyticsService derives completion statistics over task snapshots.
// Nothing is persisted; stats are recomputed from the current snapshot on
// every call.
type AnalyticsService struct {
	taskService *TaskService
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(taskService *TaskService) *AnalyticsService {
	return &AnalyticsService{taskService: taskService}
}

// Snapshot computes stats over the store's current task sequence
func (s *AnalyticsService) Snapshot(ctx context.Context) (entities.Stats, error) {
	tasks, err := s.taskService.ListTasks(ctx)
	if err != nil {
		return entities.Stats{}, fmt.Errorf("failed to load task snapshot: %w", err)
	}

	return Compute(tasks), nil
}

// Compute derives stats from a task sequence. The success ratio is defined
// as exactly 0 for an empty sequence.
func Compute(tasks []*entities.Task) entities.Stats {
	stats := entities.Stats{TotalCount: len(tasks)}

	for _, t := range tasks {
		if t.IsCompleted {
			stats.CompletedCount++
		} else {
			stats.PendingCount++
		}
	}

	if stats.TotalCount > 0 {
		stats.SuccessRatio = float64(stats.CompletedCount) / float64(stats.TotalCount)
	}

	return stats
}
