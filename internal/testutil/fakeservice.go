// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/idilsaglam/taskmgr/internal/model"
)

// ErrNotFound is returned when a task id is unknown.
var ErrNotFound = errors.New("not found")

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu       sync.Mutex
	projects []model.Project
	tasks    []model.Task
	nextID   int

	// Error injection for testing
	ListProjectsErr     error
	CreateProjectErr    error
	ListTasksErr        error
	CreateTaskErr       error
	UpdateTaskStatusErr error
	DeleteTaskErr       error

	// ProjectsGate, when set, blocks ListProjects until it is closed or receives.
	ProjectsGate chan struct{}

	// UpdateResponse, when set, replaces the task returned by UpdateTaskStatus.
	UpdateResponse *model.Task

	// Call log
	Calls  []string
	Tokens []string
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{}
}

// AddProject adds a project.
func (f *FakeService) AddProject(id, name, description string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects = append(f.projects, model.Project{ID: id, Name: name, Description: description})
}

// AddTask adds a task.
func (f *FakeService) AddTask(t model.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, t)
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// CallCount returns how many times op was called.
func (f *FakeService) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *FakeService) record(op, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, op)
	f.Tokens = append(f.Tokens, token)
}

// ListProjects implements service.Service.
func (f *FakeService) ListProjects(ctx context.Context, token string) ([]model.Project, error) {
	f.record("ListProjects", token)
	if f.ProjectsGate != nil {
		select {
		case <-f.ProjectsGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.ListProjectsErr != nil {
		return nil, f.ListProjectsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Project, len(f.projects))
	copy(out, f.projects)
	return out, nil
}

// CreateProject implements service.Service.
func (f *FakeService) CreateProject(ctx context.Context, token string, in model.NewProject) (model.Project, error) {
	f.record("CreateProject", token)
	if f.CreateProjectErr != nil {
		return model.Project{}, f.CreateProjectErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p := model.Project{ID: fmt.Sprintf("p%d", f.nextID), Name: in.Name, Description: in.Description}
	f.projects = append(f.projects, p)
	return p, nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, token string) ([]model.Task, error) {
	f.record("ListTasks", token)
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.Tasks(), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, token string, in model.NewTask) (model.Task, error) {
	f.record("CreateTask", token)
	if f.CreateTaskErr != nil {
		return model.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	status := in.Status
	if status == "" {
		status = model.StatusPending
	}
	t := model.Task{
		ID:          fmt.Sprintf("t%d", f.nextID),
		Name:        in.Name,
		Description: in.Description,
		Priority:    in.Priority,
		Status:      status,
		ProjectID:   in.ProjectID,
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTaskStatus implements service.Service.
func (f *FakeService) UpdateTaskStatus(ctx context.Context, token, id string, status model.Status) (model.Task, error) {
	f.record("UpdateTaskStatus", token)
	if f.UpdateTaskStatusErr != nil {
		return model.Task{}, f.UpdateTaskStatusErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Status = status
			if f.UpdateResponse != nil {
				return *f.UpdateResponse, nil
			}
			return f.tasks[i], nil
		}
	}
	return model.Task{}, ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, token, id string) error {
	f.record("DeleteTask", token)
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
