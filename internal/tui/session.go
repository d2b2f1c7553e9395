// Package tui is the interactive terminal client: a dashboard of projects and
// a task list, each keeping its own copy of server state.
//
// All network calls run as tea.Cmds; their results come back as messages and
// are applied in Update, so view state is only touched on the program's
// update goroutine.
package tui

import (
	"context"
	"io"
	"log"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/taskmgr/internal/model"
	"github.com/idilsaglam/taskmgr/internal/service"
)

// Session is the scope shared by every view: the credential, the backend
// and where diagnostics go.
type Session struct {
	Context context.Context
	Token   string
	Service service.Service
	Logger  *log.Logger

	// SaveToken persists a credential typed into the login prompt. Optional.
	SaveToken func(token string) error
}

func (s Session) ctx() context.Context {
	if s.Context == nil {
		return context.Background()
	}
	return s.Context
}

func (s Session) logger() *log.Logger {
	if s.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return s.Logger
}

// TaskCountMsg reports the number of tasks not yet Completed.
type TaskCountMsg struct{ Count int }

// TokenMsg replaces the session credential; every view reloads.
type TokenMsg struct{ Token string }

// ProjectCreatedMsg is broadcast to every view after a project is created.
type ProjectCreatedMsg struct{ Project model.Project }

// TaskCreatedMsg is sent after a task is created.
type TaskCreatedMsg struct{ Task model.Task }

// owner tags results of a view's own commands so that broadcast routing
// never delivers them to the wrong view.
type owner int64

var lastOwner atomic.Int64

func nextOwner() owner { return owner(lastOwner.Add(1)) }

type projectsLoadedMsg struct {
	owner    owner
	token    string
	projects []model.Project
	err      error
}

type tasksLoadedMsg struct {
	owner owner
	token string
	tasks []model.Task
	err   error
}

type statusUpdatedMsg struct {
	owner     owner
	token     string
	id        string
	requested model.Status
	task      model.Task
	err       error
}

type taskDeletedMsg struct {
	owner owner
	token string
	id    string
	err   error
}

func countCmd(tasks []model.Task) tea.Cmd {
	n := model.IncompleteCount(tasks)
	return func() tea.Msg { return TaskCountMsg{Count: n} }
}

func loadProjectsCmd(ctx context.Context, svc service.Service, o owner, token string) tea.Cmd {
	return func() tea.Msg {
		ps, err := svc.ListProjects(ctx, token)
		return projectsLoadedMsg{owner: o, token: token, projects: ps, err: err}
	}
}
