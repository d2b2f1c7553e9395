// Package service defines the backend-agnostic interface for project and task operations.
package service

import (
	"context"

	"github.com/idilsaglam/taskmgr/internal/model"
)

// Service is everything the views and commands need from the remote API.
// Every call carries the session credential; implementations never store it.
type Service interface {
	// ListProjects returns the project collection.
	ListProjects(ctx context.Context, token string) ([]model.Project, error)

	// CreateProject creates a project and returns the server's copy.
	CreateProject(ctx context.Context, token string, in model.NewProject) (model.Project, error)

	// ListTasks returns the task collection.
	ListTasks(ctx context.Context, token string) ([]model.Task, error)

	// CreateTask creates a task and returns the server's copy.
	CreateTask(ctx context.Context, token string, in model.NewTask) (model.Task, error)

	// UpdateTaskStatus sets a task's status and returns the task as the server reports it.
	UpdateTaskStatus(ctx context.Context, token, id string, status model.Status) (model.Task, error)

	// DeleteTask removes a task.
	DeleteTask(ctx context.Context, token, id string) error
}
