package cli

import (
	"bufio"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/taskmgr/internal/model"
	"github.com/idilsaglam/taskmgr/internal/ui"
)

func newTasksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task", "t"},
		Short:   "List, create, update and delete tasks",
	}

	var group bool
	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.tasksList(cmd, group)
		},
	}
	ls.Flags().BoolVarP(&group, "group", "g", false, "group tasks by project")

	var (
		in               model.NewTask
		priority, projectRef string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.tasksAdd(cmd, in, priority, projectRef)
		},
	}
	add.Flags().StringVar(&in.Name, "name", "", "task name (required)")
	add.Flags().StringVar(&in.Description, "description", "", "task description")
	add.Flags().StringVar(&priority, "priority", string(model.PriorityMedium), "High, Medium or Low")
	add.Flags().StringVar(&projectRef, "project", "", "project id or name (required)")

	cycle := &cobra.Command{
		Use:   "cycle <id>",
		Short: "Advance a task: Pending, In Progress, Completed, Pending...",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.tasksCycle(cmd, args[0])
		},
	}

	status := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Set a task's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := model.ParseStatus(args[1])
			if err != nil {
				return usagef("%v", err)
			}
			return a.tasksSetStatus(cmd, args[0], s)
		},
	}

	var yes bool
	rm := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.tasksRemove(cmd, args[0], yes)
		},
	}
	rm.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(ls, add, cycle, status, rm)
	return cmd
}

func (a *app) tasksList(cmd *cobra.Command, group bool) error {
	token, err := a.ensureAuth()
	if err != nil {
		return err
	}
	svc := a.service()
	tasks, err := svc.ListTasks(cmd.Context(), token)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(tasks) == 0 {
		fmt.Fprintln(out, ui.Current().Muted.Render("No tasks available"))
		return nil
	}
	// Project names are decoration; without them rows fall back to ids.
	projects, err := svc.ListProjects(cmd.Context(), token)
	if err != nil {
		projects = nil
	}
	if group {
		ui.Panel(out, groupLines(tasks, projects))
	} else {
		ui.Panel(out, flatLines(tasks, projects))
	}
	return nil
}

func header(tasks []model.Task) []string {
	t := ui.Current()
	done := len(tasks) - model.IncompleteCount(tasks)
	return []string{
		t.Title.Render(fmt.Sprintf("Tasks (%d remaining)", model.IncompleteCount(tasks))),
		ui.ProgressBar(done, len(tasks), 24),
		"",
	}
}

func taskLine(task model.Task, projects []model.Project, withProject bool) []string {
	t := ui.Current()
	sym := t.SymUnchecked
	name := task.Name
	if task.Status == model.StatusCompleted {
		sym = t.SymDone
		name = t.Done.Render(name)
	}
	line := fmt.Sprintf("%s %s %s  %s  %s",
		sym,
		ui.StatusStyle(task.Status).Render("["+string(task.Status)+"]"),
		name,
		ui.PriorityStyle(task.Priority).Render(string(task.Priority)),
		t.Muted.Render(task.ID))
	if withProject && task.ProjectID != "" {
		line += "  " + t.Muted.Render("Project: "+projectLabel(projects, task.ProjectID))
	}
	lines := []string{line}
	if d := strings.TrimSpace(task.Description); d != "" {
		lines = append(lines, "    "+t.Muted.Render(d))
	}
	return lines
}

func projectLabel(projects []model.Project, id string) string {
	if name := model.ProjectName(projects, id); name != "" {
		return name
	}
	return id
}

func flatLines(tasks []model.Task, projects []model.Project) []string {
	lines := header(tasks)
	for _, task := range tasks {
		lines = append(lines, taskLine(task, projects, true)...)
	}
	return lines
}

func groupLines(tasks []model.Task, projects []model.Project) []string {
	lines := header(tasks)
	byProject := map[string][]model.Task{}
	for _, task := range tasks {
		byProject[task.ProjectID] = append(byProject[task.ProjectID], task)
	}
	keys := make([]string, 0, len(byProject))
	for k := range byProject {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		// ungrouped last
		if keys[i] == "" || keys[j] == "" {
			return keys[j] == ""
		}
		return projectLabel(projects, keys[i]) < projectLabel(projects, keys[j])
	})
	t := ui.Current()
	for i, k := range keys {
		if i > 0 {
			lines = append(lines, "")
		}
		group := byProject[k]
		title := "(no project)"
		if k != "" {
			title = projectLabel(projects, k)
		}
		done := len(group) - model.IncompleteCount(group)
		lines = append(lines, fmt.Sprintf("%s  %s", t.Accent.Render(title), ui.ProgressBar(done, len(group), 10)))
		for _, task := range group {
			lines = append(lines, taskLine(task, projects, false)...)
		}
	}
	return lines
}

// resolveProject matches ref against project ids first, then names.
func resolveProject(projects []model.Project, ref string) (model.Project, bool) {
	for _, p := range projects {
		if p.ID == ref {
			return p, true
		}
	}
	for _, p := range projects {
		if strings.EqualFold(p.Name, ref) {
			return p, true
		}
	}
	return model.Project{}, false
}

func (a *app) tasksAdd(cmd *cobra.Command, in model.NewTask, priority, projectRef string) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return usagef("Name cannot be empty")
	}
	p, err := model.ParsePriority(priority)
	if err != nil {
		return usagef("%v", err)
	}
	in.Priority = p
	in.Status = model.StatusPending
	projectRef = strings.TrimSpace(projectRef)
	if projectRef == "" {
		return usagef("--project is required")
	}

	token, err := a.ensureAuth()
	if err != nil {
		return err
	}
	svc := a.service()
	projects, err := svc.ListProjects(cmd.Context(), token)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		return usagef("Add a project first")
	}
	project, ok := resolveProject(projects, projectRef)
	if !ok {
		return usagef("unknown project %q", projectRef)
	}
	in.ProjectID = project.ID

	task, err := svc.CreateTask(cmd.Context(), token, in)
	if err != nil {
		return err
	}
	ui.OK(cmd.OutOrStdout(), fmt.Sprintf("created task %s (%s) in %s", task.Name, task.ID, project.Name))
	return nil
}

func (a *app) tasksCycle(cmd *cobra.Command, id string) error {
	token, err := a.ensureAuth()
	if err != nil {
		return err
	}
	tasks, err := a.service().ListTasks(cmd.Context(), token)
	if err != nil {
		return err
	}
	task, ok := model.Find(tasks, id)
	if !ok {
		return notFound(id)
	}
	return a.tasksSetStatus(cmd, id, task.Status.Next())
}

func (a *app) tasksSetStatus(cmd *cobra.Command, id string, status model.Status) error {
	token, err := a.ensureAuth()
	if err != nil {
		return err
	}
	task, err := a.service().UpdateTaskStatus(cmd.Context(), token, id, status)
	if err != nil {
		return err
	}
	// Only the status is taken from the response.
	if task.Status == "" {
		task.Status = status
	}
	ui.OK(cmd.OutOrStdout(), fmt.Sprintf("%s: %s", id, task.Status))
	return nil
}

func (a *app) tasksRemove(cmd *cobra.Command, id string, yes bool) error {
	token, err := a.ensureAuth()
	if err != nil {
		return err
	}
	if !yes {
		fmt.Fprint(cmd.OutOrStdout(), "Are you sure you want to delete this task? [y/N] ")
		sc := bufio.NewScanner(cmd.InOrStdin())
		answer := ""
		if sc.Scan() {
			answer = strings.ToLower(strings.TrimSpace(sc.Text()))
		}
		fmt.Fprintln(cmd.OutOrStdout())
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Current().Muted.Render("cancelled"))
			return nil
		}
	}
	if err := a.service().DeleteTask(cmd.Context(), token, id); err != nil {
		return err
	}
	ui.OK(cmd.OutOrStdout(), "deleted "+id)
	return nil
}

func notFound(id string) error {
	return usagef("no task with id %q; run `taskmgr tasks ls` to see ids", id)
}
