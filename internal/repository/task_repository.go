package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"taskboard/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task row and fills in its generated ID and CreatedAt.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a task by its ID. Returns (nil, nil) when no such task exists.
func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByBoard retrieves all tasks on a board, newest first.
func (r *TaskRepository) ListByBoard(ctx context.Context, boardID uint) ([]model.Task, error) {
	var tasks []model.Task
	result := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("created_at DESC").
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// SetCompleted writes a task's completion flag and reports how many rows changed.
func (r *TaskRepository) SetCompleted(ctx context.Context, id uint, completed bool) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Update("completed", completed)
	return result.RowsAffected, result.Error
}

// SetAssignedTo writes a task's assignment nickname (nil clears it) and reports
// how many rows changed.
func (r *TaskRepository) SetAssignedTo(ctx context.Context, id uint, assignedTo *string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Update("assigned_to", assignedTo)
	return result.RowsAffected, result.Error
}

// Delete removes a task by its ID and reports how many rows were deleted.
func (r *TaskRepository) Delete(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	return result.RowsAffected, result.Error
}
