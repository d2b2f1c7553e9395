package tui

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/taskmgr/internal/api"
	"github.com/idilsaglam/taskmgr/internal/model"
	"github.com/idilsaglam/taskmgr/internal/service"
	"github.com/idilsaglam/taskmgr/internal/ui"
)

// NoTasksText is shown instead of the list when there are no tasks.
const NoTasksText = "No tasks available"

// DeletePrompt is asked before a task is deleted.
const DeletePrompt = "Are you sure you want to delete this task?"

// taskItem adapts model.Task to bubbles/list.Item
type taskItem struct {
	t       model.Task
	project string
}

func (i taskItem) Title() string       { return i.t.Name }
func (i taskItem) Description() string { return i.t.Description }
func (i taskItem) FilterValue() string { return i.t.Name }

// Custom delegate: name and status label, then priority, project and description
type taskDelegate struct{}

func (d taskDelegate) Height() int                               { return 2 }
func (d taskDelegate) Spacing() int                              { return 1 }
func (d taskDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(taskItem)
	if !ok {
		return
	}
	t := ui.Current()
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	name := t.Title.Render(it.t.Name)
	if it.t.Status == model.StatusCompleted {
		name = t.Done.Render(it.t.Name)
	}
	status := ui.StatusStyle(it.t.Status).Render("[" + string(it.t.Status) + "]")

	details := []string{"Priority: " + ui.PriorityStyle(it.t.Priority).Render(string(it.t.Priority))}
	if it.project != "" {
		details = append(details, "Project: "+it.project)
	}
	if it.t.Description != "" {
		details = append(details, t.Muted.Render(it.t.Description))
	}
	fmt.Fprintf(w, "%s%s  %s\n  %s", prefix, name, status, strings.Join(details, "  "))
}

// TasksModel is the task list. It loads projects (for the task form) and
// tasks, cycles statuses, deletes after confirmation and reports the count
// of unfinished tasks with TaskCountMsg after every change.
type TasksModel struct {
	owner owner
	ctx   context.Context
	svc   service.Service
	log   *log.Logger
	token string

	tasks    []model.Task
	projects []model.Project
	list     list.Model

	showForm bool
	form     TaskForm

	confirming bool
	confirmID  string
}

// NewTasksModel creates the task list for sess.
func NewTasksModel(sess Session) TasksModel {
	l := list.New(nil, taskDelegate{}, 80, 20)
	l.Title = "Your Tasks"
	l.Styles.Title = ui.Current().Title
	l.SetShowHelp(true)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("task", "tasks")
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	extra := func() []key.Binding { return []key.Binding{keys.Cycle, keys.Delete, keys.New} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	return TasksModel{
		owner:    nextOwner(),
		ctx:      sess.ctx(),
		svc:      sess.Service,
		log:      sess.logger(),
		token:    sess.Token,
		tasks:    []model.Task{},
		projects: []model.Project{},
		list:     l,
	}
}

// Init loads projects and tasks when a credential is present.
func (m TasksModel) Init() tea.Cmd { return m.load() }

func (m TasksModel) load() tea.Cmd {
	if m.token == "" {
		return nil
	}
	return tea.Batch(
		loadProjectsCmd(m.ctx, m.svc, m.owner, m.token),
		m.loadTasks(),
	)
}

func (m TasksModel) loadTasks() tea.Cmd {
	ctx, svc, o, token := m.ctx, m.svc, m.owner, m.token
	return func() tea.Msg {
		ts, err := svc.ListTasks(ctx, token)
		return tasksLoadedMsg{owner: o, token: token, tasks: ts, err: err}
	}
}

// SetToken switches the credential and reloads everything for a non-empty one.
func (m TasksModel) SetToken(token string) (TasksModel, tea.Cmd) {
	if token == m.token {
		return m, nil
	}
	m.token = token
	return m, m.load()
}

// Tasks returns the local task collection.
func (m TasksModel) Tasks() []model.Task { return m.tasks }

// Projects returns the local project collection.
func (m TasksModel) Projects() []model.Project { return m.projects }

// Confirming reports whether a delete confirmation is pending.
func (m TasksModel) Confirming() bool { return m.confirming }

// ShowingForm reports whether the task form is open.
func (m TasksModel) ShowingForm() bool { return m.showForm }

// Capturing reports whether keys belong to a form, a prompt or the filter input.
func (m TasksModel) Capturing() bool {
	return m.showForm || m.confirming || m.list.SettingFilter()
}

// SetSize resizes the list.
func (m TasksModel) SetSize(w, h int) TasksModel {
	m.list.SetSize(w, max(h-2, 4))
	return m
}

// Select moves the cursor to the task with id.
func (m TasksModel) Select(id string) TasksModel {
	for i, it := range m.list.Items() {
		if ti, ok := it.(taskItem); ok && ti.t.ID == id {
			m.list.Select(i)
		}
	}
	return m
}

// setTasks replaces the collection, refreshes the list and reports the count.
func (m TasksModel) setTasks(ts []model.Task) (TasksModel, tea.Cmd) {
	m.tasks = ts
	cmd := m.refreshItems()
	return m, tea.Batch(cmd, countCmd(ts))
}

func (m *TasksModel) refreshItems() tea.Cmd {
	items := make([]list.Item, 0, len(m.tasks))
	for _, t := range m.tasks {
		items = append(items, taskItem{t: t, project: model.ProjectName(m.projects, t.ProjectID)})
	}
	return m.list.SetItems(items)
}

func (m TasksModel) selected() (model.Task, bool) {
	it, ok := m.list.SelectedItem().(taskItem)
	if !ok {
		return model.Task{}, false
	}
	return model.Find(m.tasks, it.t.ID)
}

// UpdateTaskStatus asks the server to move task id to status.
func (m TasksModel) UpdateTaskStatus(id string, status model.Status) tea.Cmd {
	ctx, svc, o, token := m.ctx, m.svc, m.owner, m.token
	return func() tea.Msg {
		t, err := svc.UpdateTaskStatus(ctx, token, id, status)
		return statusUpdatedMsg{owner: o, token: token, id: id, requested: status, task: t, err: err}
	}
}

// DeleteTask asks the server to delete task id. Callers confirm first.
func (m TasksModel) DeleteTask(id string) tea.Cmd {
	ctx, svc, o, token := m.ctx, m.svc, m.owner, m.token
	return func() tea.Msg {
		return taskDeletedMsg{owner: o, token: token, id: id, err: svc.DeleteTask(ctx, token, id)}
	}
}

func (m TasksModel) Update(msg tea.Msg) (TasksModel, tea.Cmd) {
	switch msg := msg.(type) {
	case projectsLoadedMsg:
		if msg.owner != m.owner || msg.token != m.token {
			return m, nil
		}
		if msg.err != nil {
			m.log.Printf("Error fetching projects: %v", msg.err)
			return m, nil
		}
		m.projects = msg.projects
		if m.projects == nil {
			m.projects = []model.Project{}
		}
		m.form = m.form.SetProjects(m.projects)
		cmd := m.refreshItems()
		return m, cmd

	case ProjectCreatedMsg:
		next := make([]model.Project, 0, len(m.projects)+1)
		m.projects = append(append(next, m.projects...), msg.Project)
		m.form = m.form.SetProjects(m.projects)
		cmd := m.refreshItems()
		return m, cmd

	case tasksLoadedMsg:
		if msg.owner != m.owner || msg.token != m.token {
			return m, nil
		}
		if msg.err != nil {
			m.log.Printf("Error fetching tasks: %v", msg.err)
			return m, nil
		}
		ts := msg.tasks
		if ts == nil {
			ts = []model.Task{}
		}
		return m.setTasks(ts)

	case statusUpdatedMsg:
		// issued under a credential that is no longer current
		if msg.owner != m.owner || msg.token != m.token {
			return m, nil
		}
		if msg.err != nil {
			if api.KindOf(msg.err) == api.KindStatus {
				m.log.Printf("Failed to update task status: %v", msg.err)
			} else {
				m.log.Printf("Error updating task status: %v", msg.err)
			}
			return m, nil
		}
		status := msg.task.Status
		if status == "" {
			status = msg.requested
		}
		return m.setTasks(model.WithStatus(m.tasks, msg.id, status))

	case taskDeletedMsg:
		if msg.owner != m.owner || msg.token != m.token {
			return m, nil
		}
		if msg.err != nil {
			if api.KindOf(msg.err) == api.KindStatus {
				m.log.Printf("Failed to delete task: %v", msg.err)
			} else {
				m.log.Printf("Error deleting task: %v", msg.err)
			}
			return m, nil
		}
		return m.setTasks(model.Without(m.tasks, msg.id))

	case TaskCreatedMsg:
		next := make([]model.Task, 0, len(m.tasks)+1)
		next = append(append(next, m.tasks...), msg.Task)
		m.showForm = false
		return m.setTasks(next)

	case formFailedMsg:
		if m.showForm {
			var cmd tea.Cmd
			m.form, cmd = m.form.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m TasksModel) handleKey(msg tea.KeyMsg) (TasksModel, tea.Cmd) {
	// delete confirmation: only y confirms, anything else cancels
	if m.confirming {
		id := m.confirmID
		m.confirming = false
		m.confirmID = ""
		if key.Matches(msg, keys.Confirm) {
			return m, m.DeleteTask(id)
		}
		return m, nil
	}

	if m.showForm {
		if key.Matches(msg, keys.Cancel) && !m.form.Submitting() {
			m.showForm = false
			return m, nil
		}
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}

	if !m.list.SettingFilter() {
		switch {
		case key.Matches(msg, keys.New):
			m.showForm = true
			m.form = newTaskForm(formEnv{owner: m.owner, ctx: m.ctx, svc: m.svc, log: m.log, token: m.token}, m.projects)
			return m, nil
		case key.Matches(msg, keys.Cycle):
			if t, ok := m.selected(); ok {
				return m, m.UpdateTaskStatus(t.ID, t.Status.Next())
			}
			return m, nil
		case key.Matches(msg, keys.Delete):
			if t, ok := m.selected(); ok {
				m.confirming = true
				m.confirmID = t.ID
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m TasksModel) View() string {
	var out string
	if m.showForm {
		out += m.form.View() + "\n\n"
	}
	if m.confirming {
		name := m.confirmID
		if t, ok := model.Find(m.tasks, m.confirmID); ok {
			name = t.Name
		}
		out += ui.Current().Error.Render(DeletePrompt) + " " +
			ui.Current().Muted.Render(fmt.Sprintf("(%s) [y/N]", name)) + "\n\n"
	}
	if len(m.tasks) == 0 {
		h := help.New()
		out += ui.Current().Title.Render("Your Tasks") + "\n\n" +
			ui.Current().Muted.Render(NoTasksText) + "\n\n" +
			h.ShortHelpView([]key.Binding{keys.New, keys.Tab, keys.Quit})
		return out
	}
	return out + m.list.View()
}
