package tui

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/taskmgr/internal/model"
	"github.com/idilsaglam/taskmgr/internal/service"
	"github.com/idilsaglam/taskmgr/internal/ui"
)

// formFailedMsg re-enables a form after its create call failed.
type formFailedMsg struct{ owner owner }

// formEnv is what a form borrows from the view that opened it.
type formEnv struct {
	owner owner
	ctx   context.Context
	svc   service.Service
	log   *log.Logger
	token string
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	return ti
}

func formBox(title, body, errMsg string) string {
	if errMsg != "" {
		title += ": " + ui.Current().Error.Render(errMsg)
	}
	bar := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.Current().BorderColor).
		Padding(0, 1)
	return bar.Render(title + "\n" + body)
}

func fieldLabel(label string, focused bool) string {
	if focused {
		return ui.Current().Accent.Render(label)
	}
	return ui.Current().Muted.Render(label)
}

// ProjectForm collects a name and description and creates a project.
type ProjectForm struct {
	env        formEnv
	inputs     []textinput.Model
	focus      int
	err        string
	submitting bool
}

func newProjectForm(env formEnv) ProjectForm {
	f := ProjectForm{
		env: env,
		inputs: []textinput.Model{
			newInput("Project name...", 120),
			newInput("Description (optional)...", 400),
		},
	}
	f.inputs[0].Focus()
	return f
}

// Submitting reports whether a create call is in flight.
func (f ProjectForm) Submitting() bool { return f.submitting }

func (f ProjectForm) setFocus(i int) ProjectForm {
	n := len(f.inputs)
	f.focus = ((i % n) + n) % n
	for j := range f.inputs {
		if j == f.focus {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return f
}

func (f ProjectForm) Update(msg tea.Msg) (ProjectForm, tea.Cmd) {
	switch msg := msg.(type) {
	case formFailedMsg:
		if msg.owner == f.env.owner {
			f.submitting = false
			f.err = "could not save, see log"
		}
		return f, nil
	case tea.KeyMsg:
		if f.submitting {
			return f, nil
		}
		switch {
		case key.Matches(msg, keys.Submit):
			name := strings.TrimSpace(f.inputs[0].Value())
			if name == "" {
				f.err = "Name cannot be empty"
				return f, nil
			}
			f.err = ""
			f.submitting = true
			return f, createProjectCmd(f.env, model.NewProject{
				Name:        name,
				Description: strings.TrimSpace(f.inputs[1].Value()),
			})
		case key.Matches(msg, keys.Next):
			return f.setFocus(f.focus + 1), nil
		case key.Matches(msg, keys.Prev):
			return f.setFocus(f.focus - 1), nil
		}
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f ProjectForm) View() string {
	body := strings.Join([]string{
		fieldLabel("Name", f.focus == 0),
		f.inputs[0].View(),
		fieldLabel("Description", f.focus == 1),
		f.inputs[1].View(),
		formHelp(),
	}, "\n")
	title := "Add project"
	if f.submitting {
		title += " (saving...)"
	}
	return formBox(title, body, f.err)
}

func createProjectCmd(env formEnv, in model.NewProject) tea.Cmd {
	return func() tea.Msg {
		p, err := env.svc.CreateProject(env.ctx, env.token, in)
		if err != nil {
			env.log.Printf("Error creating project: %v", err)
			return formFailedMsg{owner: env.owner}
		}
		return ProjectCreatedMsg{Project: p}
	}
}

// Task form fields.
const (
	taskFieldName = iota
	taskFieldDescription
	taskFieldPriority
	taskFieldProject
	taskFieldCount
)

// TaskForm collects a task and creates it under one of the known projects.
type TaskForm struct {
	env        formEnv
	inputs     []textinput.Model // name, description
	priority   int
	projects   []model.Project
	project    int
	focus      int
	err        string
	submitting bool
}

func newTaskForm(env formEnv, projects []model.Project) TaskForm {
	f := TaskForm{
		env: env,
		inputs: []textinput.Model{
			newInput("Task name...", 200),
			newInput("Description (optional)...", 400),
		},
		priority: 1, // Medium
		projects: projects,
	}
	f.inputs[0].Focus()
	return f
}

// Submitting reports whether a create call is in flight.
func (f TaskForm) Submitting() bool { return f.submitting }

// SetProjects refreshes the project picker, keeping the current choice when it still exists.
func (f TaskForm) SetProjects(projects []model.Project) TaskForm {
	var keep string
	if f.project < len(f.projects) {
		keep = f.projects[f.project].ID
	}
	f.projects = projects
	f.project = 0
	for i, p := range projects {
		if p.ID == keep {
			f.project = i
		}
	}
	return f
}

func (f TaskForm) setFocus(i int) TaskForm {
	f.focus = ((i % taskFieldCount) + taskFieldCount) % taskFieldCount
	for j := range f.inputs {
		if j == f.focus {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return f
}

func (f TaskForm) choose(delta int) TaskForm {
	switch f.focus {
	case taskFieldPriority:
		n := len(model.Priorities)
		f.priority = ((f.priority+delta)%n + n) % n
	case taskFieldProject:
		if n := len(f.projects); n > 0 {
			f.project = ((f.project+delta)%n + n) % n
		}
	}
	return f
}

func (f TaskForm) Update(msg tea.Msg) (TaskForm, tea.Cmd) {
	switch msg := msg.(type) {
	case formFailedMsg:
		if msg.owner == f.env.owner {
			f.submitting = false
			f.err = "could not save, see log"
		}
		return f, nil
	case tea.KeyMsg:
		if f.submitting {
			return f, nil
		}
		switch {
		case key.Matches(msg, keys.Submit):
			name := strings.TrimSpace(f.inputs[taskFieldName].Value())
			if name == "" {
				f.err = "Name cannot be empty"
				return f, nil
			}
			if len(f.projects) == 0 {
				f.err = "Add a project first"
				return f, nil
			}
			f.err = ""
			f.submitting = true
			return f, createTaskCmd(f.env, model.NewTask{
				Name:        name,
				Description: strings.TrimSpace(f.inputs[taskFieldDescription].Value()),
				Priority:    model.Priorities[f.priority],
				Status:      model.StatusPending,
				ProjectID:   f.projects[f.project].ID,
			})
		case key.Matches(msg, keys.Next):
			return f.setFocus(f.focus + 1), nil
		case key.Matches(msg, keys.Prev):
			return f.setFocus(f.focus - 1), nil
		case f.focus >= taskFieldPriority && key.Matches(msg, keys.Left):
			return f.choose(-1), nil
		case f.focus >= taskFieldPriority && key.Matches(msg, keys.Right):
			return f.choose(+1), nil
		}
	}
	if f.focus >= len(f.inputs) {
		return f, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f TaskForm) View() string {
	pr := model.Priorities[f.priority]
	projectName := ui.Current().Muted.Render("(no projects yet)")
	if f.project < len(f.projects) {
		projectName = f.projects[f.project].Name
	}
	body := strings.Join([]string{
		fieldLabel("Name", f.focus == taskFieldName),
		f.inputs[taskFieldName].View(),
		fieldLabel("Description", f.focus == taskFieldDescription),
		f.inputs[taskFieldDescription].View(),
		fmt.Sprintf("%s  ‹ %s ›", fieldLabel("Priority", f.focus == taskFieldPriority), ui.PriorityStyle(pr).Render(string(pr))),
		fmt.Sprintf("%s   ‹ %s ›", fieldLabel("Project", f.focus == taskFieldProject), projectName),
		formHelp(),
	}, "\n")
	title := "Add task"
	if f.submitting {
		title += " (saving...)"
	}
	return formBox(title, body, f.err)
}

func createTaskCmd(env formEnv, in model.NewTask) tea.Cmd {
	return func() tea.Msg {
		t, err := env.svc.CreateTask(env.ctx, env.token, in)
		if err != nil {
			env.log.Printf("Error creating task: %v", err)
			return formFailedMsg{owner: env.owner}
		}
		return TaskCreatedMsg{Task: t}
	}
}

func formHelp() string {
	h := help.New()
	return h.ShortHelpView([]key.Binding{keys.Next, keys.Left, keys.Submit, keys.Cancel})
}
