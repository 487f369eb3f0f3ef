package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"focusflow/internal/models"
)

// TaskRepository stores the per-user task lists. Every mutation is scoped to
// the owning user id.
type TaskRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewTaskRepository(db *sql.DB, dialect Dialect) *TaskRepository {
	return &TaskRepository{db: db, dialect: dialect}
}

// List returns the user's tasks, incomplete first, then newest first. Rows of
// one sync batch share a timestamp and keep their payload order.
func (r *TaskRepository) List(ctx context.Context, userID int) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		r.dialect.Rebind(`SELECT id, user_id, text, completed, created_at
			FROM tasks
			WHERE user_id = ?
			ORDER BY completed ASC, created_at DESC, id ASC`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(&task.ID, &task.UserID, &task.Text, &task.Completed, &task.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, nil
}

// ReplaceAll swaps the user's whole list for tasks. Either every row is
// replaced or nothing changes.
func (r *TaskRepository) ReplaceAll(ctx context.Context, userID int, tasks []models.TaskInput) error {
	batchAt := time.Now().UTC()

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			r.dialect.Rebind("DELETE FROM tasks WHERE user_id = ?"),
			userID,
		); err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}

		if len(tasks) == 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx,
			r.dialect.Rebind("INSERT INTO tasks (user_id, text, completed, created_at) VALUES (?, ?, ?, ?)"),
		)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, task := range tasks {
			if _, err := stmt.ExecContext(ctx, userID, task.Text, task.IsCompleted(), batchAt); err != nil {
				return fmt.Errorf("insert task %d: %w", i, err)
			}
		}

		return nil
	})
}

// SetCompleted updates the flag of one owned task and reports whether a row
// matched.
func (r *TaskRepository) SetCompleted(ctx context.Context, taskID, userID int, completed bool) (bool, error) {
	var matched bool

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			r.dialect.Rebind("UPDATE tasks SET completed = ? WHERE id = ? AND user_id = ?"),
			completed, taskID, userID,
		)
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}

		matched, err = affectedOne(res)
		return err
	})

	return matched, err
}

// Delete removes one owned task and reports whether a row matched.
func (r *TaskRepository) Delete(ctx context.Context, taskID, userID int) (bool, error) {
	var matched bool

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			r.dialect.Rebind("DELETE FROM tasks WHERE id = ? AND user_id = ?"),
			taskID, userID,
		)
		if err != nil {
			return fmt.Errorf("delete task: %w", err)
		}

		matched, err = affectedOne(res)
		return err
	})

	return matched, err
}

func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
