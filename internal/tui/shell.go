package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/taskmgr/internal/ui"
)

type tab int

const (
	tabProjects tab = iota
	tabTasks
)

// Shell owns the credential and the task count and hosts both views.
// Results of background commands are broadcast; each view keeps only its own
// by owner tag.
type Shell struct {
	sess      Session
	active    tab
	projects  ProjectsModel
	tasks     TasksModel
	taskCount int

	// login prompt, shown when there is no credential or on ctrl+t
	prompting bool
	prompt    textinput.Model
	promptErr string

	width, height int
}

// NewShell builds both views from sess.
func NewShell(sess Session) Shell {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Paste your token..."
	ti.EchoMode = textinput.EchoPassword
	ti.CharLimit = 4096

	s := Shell{
		sess:     sess,
		projects: NewProjectsModel(sess),
		tasks:    NewTasksModel(sess),
		prompt:   ti,
		width:    80,
		height:   24,
	}
	if strings.TrimSpace(sess.Token) == "" {
		s.prompting = true
		s.prompt.Focus()
	}
	return s
}

// TaskCount is the last count reported by the task list.
func (s Shell) TaskCount() int { return s.taskCount }

// Token is the current credential.
func (s Shell) Token() string { return s.sess.Token }

// Projects and Tasks expose the hosted views.
func (s Shell) Projects() ProjectsModel { return s.projects }
func (s Shell) Tasks() TasksModel       { return s.tasks }

func (s Shell) Init() tea.Cmd {
	return tea.Batch(s.projects.Init(), s.tasks.Init())
}

func (s Shell) capturing() bool {
	if s.prompting {
		return true
	}
	if s.active == tabProjects {
		return s.projects.Capturing()
	}
	return s.tasks.Capturing()
}

func (s Shell) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.Force) {
			return s, tea.Quit
		}
		if s.prompting {
			return s.updatePrompt(msg)
		}
		if !s.capturing() {
			switch {
			case key.Matches(msg, keys.Quit):
				return s, tea.Quit
			case key.Matches(msg, keys.Tab):
				s.active = (s.active + 1) % 2
				return s, nil
			case key.Matches(msg, keys.View1):
				s.active = tabProjects
				return s, nil
			case key.Matches(msg, keys.View2):
				s.active = tabTasks
				return s, nil
			case key.Matches(msg, keys.Login):
				s.prompting = true
				s.promptErr = ""
				s.prompt.SetValue("")
				return s, s.prompt.Focus()
			}
		}
		var cmd tea.Cmd
		if s.active == tabProjects {
			s.projects, cmd = s.projects.Update(msg)
		} else {
			s.tasks, cmd = s.tasks.Update(msg)
		}
		return s, cmd

	case tea.WindowSizeMsg:
		s.width, s.height = msg.Width, msg.Height
		// panel border and padding take 4 columns, tab bar and border 4 rows
		s.projects = s.projects.SetSize(msg.Width-4, msg.Height-4)
		s.tasks = s.tasks.SetSize(msg.Width-4, msg.Height-4)
		return s, nil

	case TaskCountMsg:
		s.taskCount = msg.Count
		s.projects = s.projects.SetTaskCount(msg.Count)
		return s, nil

	case TokenMsg:
		return s.setToken(msg.Token)
	}

	return s.route(msg)
}

// route broadcasts this package's results to both views. Widget messages
// (list filtering, cursor blink, spinners) carry no view identity, so they
// go to the active view only.
func (s Shell) route(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case projectsLoadedMsg, tasksLoadedMsg, statusUpdatedMsg, taskDeletedMsg,
		ProjectCreatedMsg, TaskCreatedMsg, formFailedMsg:
		var pc, tc tea.Cmd
		s.projects, pc = s.projects.Update(msg)
		s.tasks, tc = s.tasks.Update(msg)
		return s, tea.Batch(pc, tc)
	}
	var cmd tea.Cmd
	switch {
	case s.prompting:
		s.prompt, cmd = s.prompt.Update(msg)
	case s.active == tabProjects:
		s.projects, cmd = s.projects.Update(msg)
	default:
		s.tasks, cmd = s.tasks.Update(msg)
	}
	return s, cmd
}

func (s Shell) setToken(token string) (Shell, tea.Cmd) {
	s.sess.Token = token
	var pc, tc tea.Cmd
	s.projects, pc = s.projects.SetToken(token)
	s.tasks, tc = s.tasks.SetToken(token)
	return s, tea.Batch(pc, tc)
}

func (s Shell) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		token := strings.TrimSpace(s.prompt.Value())
		if token == "" {
			s.promptErr = "Token cannot be empty"
			return s, nil
		}
		if s.sess.SaveToken != nil {
			if err := s.sess.SaveToken(token); err != nil {
				s.promptErr = "save token: " + err.Error()
				return s, nil
			}
		}
		s.prompting = false
		s.prompt.SetValue("")
		s.prompt.Blur()
		return s.setToken(token)
	case tea.KeyEsc:
		if s.sess.Token == "" {
			return s, tea.Quit
		}
		s.prompting = false
		s.prompt.Blur()
		return s, nil
	}
	var cmd tea.Cmd
	s.prompt, cmd = s.prompt.Update(msg)
	return s, cmd
}

func (s Shell) tabBar() string {
	t := ui.Current()
	names := []string{"1 Projects", "2 Tasks"}
	parts := make([]string, len(names))
	for i, n := range names {
		if tab(i) == s.active {
			parts[i] = t.Selected.Render(" " + n + " ")
		} else {
			parts[i] = t.Muted.Render(" " + n + " ")
		}
	}
	count := fmt.Sprintf("%s %d remaining", t.Pending.Render(t.SymUnchecked), s.taskCount)
	return strings.Join(parts, " ") + "   " + count
}

func (s Shell) View() string {
	if s.prompting {
		title := ui.Current().Title.Render("Sign in")
		if s.promptErr != "" {
			title += ": " + ui.Current().Error.Render(s.promptErr)
		}
		hint := ui.Current().Muted.Render("enter to continue, esc to cancel")
		return ui.PanelString(title + "\n" + s.prompt.View() + "\n" + hint)
	}
	body := s.projects.View()
	if s.active == tabTasks {
		body = s.tasks.View()
	}
	return ui.PanelString(s.tabBar() + "\n\n" + body)
}

// Run starts the program and blocks until the user quits or ctx is done.
func Run(ctx context.Context, sess Session, opts ...tea.ProgramOption) error {
	if sess.Context == nil {
		sess.Context = ctx
	}
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(NewShell(sess), opts...)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
