package handlers

import (
	"focusflow/internal/config"
	"focusflow/internal/middleware"
	"focusflow/internal/models"
	myws "focusflow/internal/websocket"
	"focusflow/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type syncRequest struct {
	Tasks []models.TaskInput `json:"tasks" validate:"required,dive"`
}

type toggleRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

func ListTasks(d *config.Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := middleware.CurrentIdentity(c)
		if !ok {
			return fail(c, models.ErrUnauthenticated)
		}

		tasks, err := d.Tasks.List(c.UserContext(), id.ID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(tasks)
	}
}

// SyncTasks replaces the caller's whole task list with the payload.
func SyncTasks(d *config.Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := middleware.CurrentIdentity(c)
		if !ok {
			return fail(c, models.ErrUnauthenticated)
		}

		var req syncRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid data")
		}
		if err := d.Validate.Struct(req); err != nil {
			return badRequest(c, "invalid data")
		}

		if err := d.Tasks.ReplaceAll(c.UserContext(), id.ID, req.Tasks); err != nil {
			return fail(c, err)
		}

		logger.AuditLogger.Info("Tasks synced", zap.Int("user_id", id.ID), zap.Int("count", len(req.Tasks)))
		d.Hub.Notify(id.ID, myws.EventTasksChanged)
		return c.JSON(fiber.Map{"success": true})
	}
}

func UpdateTask(d *config.Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := middleware.CurrentIdentity(c)
		if !ok {
			return fail(c, models.ErrUnauthenticated)
		}

		taskID, err := c.ParamsInt("id")
		if err != nil {
			return badRequest(c, "invalid task id")
		}

		var req toggleRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "missing completed status")
		}
		if err := d.Validate.Struct(req); err != nil {
			return badRequest(c, "missing completed status")
		}

		matched, err := d.Tasks.SetCompleted(c.UserContext(), taskID, id.ID, *req.Completed)
		if err != nil {
			return fail(c, err)
		}
		settle(d, c, id.ID, taskID, matched)

		return c.JSON(fiber.Map{"success": true})
	}
}

func DeleteTask(d *config.Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := middleware.CurrentIdentity(c)
		if !ok {
			return fail(c, models.ErrUnauthenticated)
		}

		taskID, err := c.ParamsInt("id")
		if err != nil {
			return badRequest(c, "invalid task id")
		}

		matched, err := d.Tasks.Delete(c.UserContext(), taskID, id.ID)
		if err != nil {
			return fail(c, err)
		}
		settle(d, c, id.ID, taskID, matched)

		return c.JSON(fiber.Map{"success": true})
	}
}

// settle records the outcome of a single-task write. A write that matched no
// row still answers success, so it is only logged.
func settle(d *config.Dependencies, c *fiber.Ctx, userID, taskID int, matched bool) {
	if !matched {
		logger.SecurityLogger.Warn("Task write matched no owned row",
			zap.String("method", c.Method()),
			zap.Int("user_id", userID),
			zap.Int("task_id", taskID),
		)
		return
	}

	logger.AuditLogger.Info("Task updated",
		zap.String("method", c.Method()),
		zap.Int("user_id", userID),
		zap.Int("task_id", taskID),
	)
	d.Hub.Notify(userID, myws.EventTasksChanged)
}
