package models

import (
	"time"
)

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is what a live session knows about its user.
type Identity struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

func (u User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username}
}

type Task struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskInput is one entry of a task list sync payload.
type TaskInput struct {
	Text      string `json:"text" validate:"required"`
	Completed *bool  `json:"completed" validate:"required"`
}

func (in TaskInput) IsCompleted() bool {
	return in.Completed != nil && *in.Completed
}
