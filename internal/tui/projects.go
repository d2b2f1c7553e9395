package tui

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/taskmgr/internal/model"
	"github.com/idilsaglam/taskmgr/internal/service"
	"github.com/idilsaglam/taskmgr/internal/ui"
)

// NoProjectsText is shown instead of the list when there are no projects.
const NoProjectsText = "No projects added yet."

// projectItem adapts model.Project to bubbles/list.Item
type projectItem struct{ p model.Project }

func (i projectItem) Title() string       { return i.p.Name }
func (i projectItem) Description() string { return i.p.Description }
func (i projectItem) FilterValue() string { return i.p.Name }

// Two lines per project: name, then description
type projectDelegate struct{}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(projectItem)
	if !ok {
		return
	}
	t := ui.Current()
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	desc := it.p.Description
	if desc == "" {
		desc = "(no description)"
	}
	fmt.Fprintf(w, "%s%s\n  %s", prefix, t.Title.Render(it.p.Name), t.Muted.Render(desc))
}

// ProjectsModel is the dashboard: the project collection, a greeting with the
// remaining task count and a toggleable project form.
type ProjectsModel struct {
	owner owner
	ctx   context.Context
	svc   service.Service
	log   *log.Logger
	token string

	projects  []model.Project
	list      list.Model
	taskCount int

	showForm bool
	form     ProjectForm
}

// NewProjectsModel creates the dashboard for sess.
func NewProjectsModel(sess Session) ProjectsModel {
	l := list.New(nil, projectDelegate{}, 80, 20)
	l.Title = "Your Projects"
	l.Styles.Title = ui.Current().Title
	l.SetShowHelp(true)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("project", "projects")
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{keys.New} }
	l.AdditionalFullHelpKeys = func() []key.Binding { return []key.Binding{keys.New} }

	return ProjectsModel{
		owner:    nextOwner(),
		ctx:      sess.ctx(),
		svc:      sess.Service,
		log:      sess.logger(),
		token:    sess.Token,
		projects: []model.Project{},
		list:     l,
	}
}

// Init loads projects when a credential is present.
func (m ProjectsModel) Init() tea.Cmd { return m.load() }

func (m ProjectsModel) load() tea.Cmd {
	if m.token == "" {
		return nil
	}
	return loadProjectsCmd(m.ctx, m.svc, m.owner, m.token)
}

// SetToken switches the credential. Only a change to a non-empty value triggers a load.
func (m ProjectsModel) SetToken(token string) (ProjectsModel, tea.Cmd) {
	if token == m.token {
		return m, nil
	}
	m.token = token
	return m, m.load()
}

// SetTaskCount updates the greeting.
func (m ProjectsModel) SetTaskCount(n int) ProjectsModel {
	m.taskCount = n
	return m
}

// Projects returns the local project collection.
func (m ProjectsModel) Projects() []model.Project { return m.projects }

// ShowingForm reports whether the project form is open.
func (m ProjectsModel) ShowingForm() bool { return m.showForm }

// Capturing reports whether keys belong to a form or the filter input.
func (m ProjectsModel) Capturing() bool {
	return m.showForm || m.list.SettingFilter()
}

// SetSize resizes the list.
func (m ProjectsModel) SetSize(w, h int) ProjectsModel {
	m.list.SetSize(w, max(h-4, 4))
	return m
}

func (m ProjectsModel) setProjects(ps []model.Project) (ProjectsModel, tea.Cmd) {
	m.projects = ps
	items := make([]list.Item, 0, len(ps))
	for _, p := range ps {
		items = append(items, projectItem{p})
	}
	cmd := m.list.SetItems(items)
	return m, cmd
}

func (m ProjectsModel) Update(msg tea.Msg) (ProjectsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case projectsLoadedMsg:
		if msg.owner != m.owner || msg.token != m.token {
			return m, nil
		}
		if msg.err != nil {
			m.log.Printf("Error fetching projects: %v", msg.err)
			return m, nil
		}
		ps := msg.projects
		if ps == nil {
			ps = []model.Project{}
		}
		return m.setProjects(ps)

	case ProjectCreatedMsg:
		next := make([]model.Project, 0, len(m.projects)+1)
		next = append(append(next, m.projects...), msg.Project)
		m.showForm = false
		return m.setProjects(next)

	case formFailedMsg:
		if m.showForm {
			var cmd tea.Cmd
			m.form, cmd = m.form.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.showForm {
			if key.Matches(msg, keys.Cancel) && !m.form.Submitting() {
				m.showForm = false
				return m, nil
			}
			var cmd tea.Cmd
			m.form, cmd = m.form.Update(msg)
			return m, cmd
		}
		if !m.list.SettingFilter() && key.Matches(msg, keys.New) {
			m.showForm = true
			m.form = newProjectForm(formEnv{owner: m.owner, ctx: m.ctx, svc: m.svc, log: m.log, token: m.token})
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Greeting is the line above the projects.
func (m ProjectsModel) Greeting() string {
	return fmt.Sprintf("Hello user, you have %s tasks remaining",
		ui.Current().Title.Render(fmt.Sprint(m.taskCount)))
}

func (m ProjectsModel) View() string {
	out := m.Greeting() + "\n\n"
	if m.showForm {
		out += m.form.View() + "\n\n"
	}
	if len(m.projects) == 0 {
		h := help.New()
		out += ui.Current().Title.Render("Your Projects") + "\n\n" +
			ui.Current().Muted.Render(NoProjectsText) + "\n\n" +
			h.ShortHelpView([]key.Binding{keys.New, keys.Tab, keys.Quit})
		return out
	}
	return out + m.list.View()
}
