package config

import (
	"context"

	"focusflow/internal/models"
	"focusflow/internal/service"
	"focusflow/internal/session"
	myws "focusflow/internal/websocket"

	"github.com/go-playground/validator/v10"
)

// TaskStore is the task persistence the handlers drive.
type TaskStore interface {
	List(ctx context.Context, userID int) ([]models.Task, error)
	ReplaceAll(ctx context.Context, userID int, tasks []models.TaskInput) error
	SetCompleted(ctx context.Context, taskID, userID int, completed bool) (bool, error)
	Delete(ctx context.Context, taskID, userID int) (bool, error)
}

// Cookie describes the session cookie.
type Cookie struct {
	Name     string
	Secure   bool
	SameSite string
}

// Dependencies is everything a request handler may use. It is built once in
// main and passed to the router.
type Dependencies struct {
	Credentials *service.Credentials
	Tasks       TaskStore
	Sessions    *session.Manager
	Hub         *myws.Hub
	Validate    *validator.Validate
	Cookie      Cookie
	StaticDir   string
	AudioDir    string
}
